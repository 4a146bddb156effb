// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestTerminalHandlerOutput(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandler(&out, false))

	l.Info("provision created",
		"tokens", uint256.NewInt(100),
		"deposit", big.NewInt(42),
		"note", "has space")

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "[INFO]"))
	assert.Contains(t, line, "provision created")
	assert.Contains(t, line, "tokens=100")
	assert.Contains(t, line, "deposit=42")
	assert.Contains(t, line, `note="has space"`)
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestTerminalHandlerLevel(t *testing.T) {
	var out bytes.Buffer
	h := NewTerminalHandler(&out, false)
	h.lvl.Set(LevelInfo)
	l := NewLogger(h)

	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.Warn("shown")
	assert.True(t, strings.HasPrefix(out.String(), "[WARN]"))
}

func TestWithContext(t *testing.T) {
	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))
	defer SetDefault(NewLogger(DiscardHandler()))

	l := WithContext("pkg", "staking")
	l.Info("hello")
	assert.Contains(t, out.String(), "pkg=staking")
}
