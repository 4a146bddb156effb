// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/meridian-index/meridian/reverts"

var (
	ErrNotAuthorized = reverts.New(reverts.KindAuthorization, "caller is not authorized for the provider")

	ErrZeroTokens            = reverts.New(reverts.KindInvalidInput, "token amount must not be zero")
	ErrZeroAddress           = reverts.New(reverts.KindInvalidInput, "address must not be zero")
	ErrProvisionTooSmall     = reverts.New(reverts.KindInvalidInput, "tokens below the minimum provision size")
	ErrDelegationTooSmall    = reverts.New(reverts.KindInvalidInput, "tokens below the minimum delegation size")
	ErrInvalidVerifierCut    = reverts.New(reverts.KindInvalidInput, "verifier cut exceeds the ppm ceiling")
	ErrInvalidThawingPeriod  = reverts.New(reverts.KindInvalidInput, "thawing period exceeds the maximum")
	ErrVerifierCutTooHigh    = reverts.New(reverts.KindInvalidInput, "verifier cut amount exceeds the provision limit")
	ErrSameProvision         = reverts.New(reverts.KindInvalidInput, "source and target provisions are the same")

	ErrProvisionExists    = reverts.New(reverts.KindStateConflict, "provision already exists")
	ErrProvisionNotFound  = reverts.New(reverts.KindStateConflict, "provision not found")
	ErrDelegationNotFound = reverts.New(reverts.KindStateConflict, "delegation not found")
	ErrNoPendingParams    = reverts.New(reverts.KindStateConflict, "no pending provision parameters")
	ErrTokensStillLocked  = reverts.New(reverts.KindStateConflict, "locked tokens have not matured")
	ErrNothingLocked      = reverts.New(reverts.KindStateConflict, "no tokens locked for withdrawal")

	ErrInsufficientIdleStake       = reverts.New(reverts.KindArithmetic, "insufficient idle stake")
	ErrInsufficientTokensAvailable = reverts.New(reverts.KindArithmetic, "insufficient tokens available in the provision")
	ErrInsufficientThawedTokens    = reverts.New(reverts.KindArithmetic, "insufficient thawed tokens at the queue head")
	ErrInsufficientDelegation      = reverts.New(reverts.KindArithmetic, "insufficient delegation shares")
	ErrNothingThawed               = reverts.New(reverts.KindArithmetic, "no releasable thaw requests")

	ErrTooManyThawRequests = reverts.New(reverts.KindCapacityExceeded, "thaw request queue is full")
)
