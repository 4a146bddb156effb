// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/meridian"
)

// LegacyOperations is the deprecated pre-provision unstake path: a single
// global lock per provider instead of per-verifier thaw queues. It exists
// so providers holding locked tokens from before the provision model can
// still withdraw them; new withdrawals should thaw through a provision.
type LegacyOperations struct {
	store      *storageLayer
	lockPeriod uint64
}

// Unstake locks idle stake behind the global lock. A repeat call while a
// lock is pending adds tokens and restarts the full lock period.
func (l *LegacyOperations) Unstake(provider meridian.Address, tokens *uint256.Int, now uint64) error {
	if tokens.IsZero() {
		return ErrZeroTokens
	}
	account, err := l.store.getProvider(provider)
	if err != nil {
		return err
	}
	if account.IsEmpty() || account.IdleStake().Lt(tokens) {
		return ErrInsufficientIdleStake
	}
	account.TokensLocked.Add(account.TokensLocked, tokens)
	account.TokensLockedUntil = now + l.lockPeriod
	return l.store.setProvider(provider, account)
}

// Withdraw releases the global lock once it matures and returns the
// released amount.
func (l *LegacyOperations) Withdraw(provider meridian.Address, now uint64) (*uint256.Int, error) {
	account, err := l.store.getProvider(provider)
	if err != nil {
		return nil, err
	}
	if account.IsEmpty() || account.TokensLocked.IsZero() {
		return nil, ErrNothingLocked
	}
	if now < account.TokensLockedUntil {
		return nil, ErrTokensStillLocked
	}
	released := account.TokensLocked.Clone()
	account.TokensStaked.Sub(account.TokensStaked, released)
	account.TokensLocked = uint256.NewInt(0)
	account.TokensLockedUntil = 0
	if err := l.store.setProvider(provider, account); err != nil {
		return nil, err
	}
	return released, nil
}
