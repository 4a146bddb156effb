// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return &discardHandler{}
}

const (
	timeFormat   = "Jan 02 15:04:05"
	escapeReset  = "\x1b[0m"
	escapeRed    = "\x1b[31m"
	escapeGreen  = "\x1b[32m"
	escapeYellow = "\x1b[33m"
	escapeCyan   = "\x1b[36m"
	escapeGray   = "\x1b[90m"
)

// TerminalHandler formats log records for human readability on a terminal:
//
//	[LEVEL] [TIME] MESSAGE key=value key=value ...
//
// This format should only be used for interactive programs or while developing.
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr

	buf []byte
}

// NewTerminalHandler returns a terminal handler writing records at all levels.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	var level slog.LevelVar
	level.Set(levelMaxVerbosity)
	return NewTerminalHandlerWithLevel(wr, &level, useColor)
}

// NewTerminalHandlerWithLevel returns a terminal handler restricted to records
// at level or above.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) *TerminalHandler {
	return &TerminalHandler{
		wr:       wr,
		lvl:      lvl,
		useColor: useColor,
	}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	panic("not implemented")
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:       h.wr,
		lvl:      h.lvl,
		useColor: h.useColor,
		attrs:    append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.buf[:0]
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, " ["...)
	buf = r.Time.AppendFormat(buf, timeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = h.appendAttr(buf, attr)
		return true
	})
	buf = append(buf, '\n')

	h.buf = buf[:0]
	_, err := h.wr.Write(buf)
	return err
}

func (h *TerminalHandler) appendLevel(buf []byte, level slog.Level) []byte {
	label, color := "INFO", escapeGreen
	switch {
	case level >= LevelCrit:
		label, color = "CRIT", escapeRed
	case level >= slog.LevelError:
		label, color = "EROR", escapeRed
	case level >= slog.LevelWarn:
		label, color = "WARN", escapeYellow
	case level >= slog.LevelInfo:
	case level >= slog.LevelDebug:
		label, color = "DBUG", escapeCyan
	default:
		label, color = "TRCE", escapeGray
	}
	if h.useColor {
		return fmt.Appendf(buf, "%s[%s]%s", color, label, escapeReset)
	}
	return fmt.Appendf(buf, "[%s]", label)
}

func (h *TerminalHandler) appendAttr(buf []byte, attr slog.Attr) []byte {
	buf = append(buf, ' ')
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')
	return appendValue(buf, attr.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	if v.Kind() == slog.KindAny {
		switch n := v.Any().(type) {
		case *big.Int:
			if n == nil {
				return append(buf, "<nil>"...)
			}
			return append(buf, n.String()...)
		case *uint256.Int:
			if n == nil {
				return append(buf, "<nil>"...)
			}
			return append(buf, n.Dec()...)
		case error:
			if n == nil {
				return append(buf, "<nil>"...)
			}
			return strconv.AppendQuote(buf, n.Error())
		case fmt.Stringer:
			if n == nil {
				return append(buf, "<nil>"...)
			}
			return append(buf, n.String()...)
		case time.Duration:
			return append(buf, n.String()...)
		}
	}
	s := v.String()
	if needsQuoting(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}
