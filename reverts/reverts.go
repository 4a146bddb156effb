// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error taxonomy of rejected ledger operations.
// Every failure is a rejected call with no state mutation; the kind tells the
// caller whether retrying can ever help.
package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a rejection.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindAuthorization caller not permitted. Surfaced verbatim.
	KindAuthorization
	// KindInvalidInput zero address/amount, malformed bytes, wrong lengths.
	KindInvalidInput
	// KindStateConflict wrong status for the requested transition, or a
	// legitimate double-submission.
	KindStateConflict
	// KindProofVerification root/node hash mismatch, key not found. A fresh
	// proof is required; retrying with the same one cannot succeed.
	KindProofVerification
	// KindArithmetic overflow or insufficient balance/capacity for the
	// requested amounts.
	KindArithmetic
	// KindCapacityExceeded a bounded queue is full; the caller must wait for
	// fulfillment before issuing more.
	KindCapacityExceeded
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindInvalidInput:
		return "invalid input"
	case KindStateConflict:
		return "state conflict"
	case KindProofVerification:
		return "proof verification"
	case KindArithmetic:
		return "arithmetic"
	case KindCapacityExceeded:
		return "capacity exceeded"
	default:
		return "unknown"
	}
}

// ErrRevert is a rejected operation.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Kind returns the error's classification.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Authorization creates an authorization rejection.
func Authorization(format string, args ...any) *ErrRevert {
	return New(KindAuthorization, fmt.Sprintf(format, args...))
}

// InvalidInput creates an invalid-input rejection.
func InvalidInput(format string, args ...any) *ErrRevert {
	return New(KindInvalidInput, fmt.Sprintf(format, args...))
}

// KindOf extracts the kind from an error chain. KindUnknown if none present.
func KindOf(err error) Kind {
	var e *ErrRevert
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsRevert returns whether the error chain contains a rejection.
func IsRevert(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
