// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package shares implements pooled share accounting over unsigned fixed-point
// token amounts. Conversions truncate toward the pool, never toward the
// holder, so no sequence of issues and redeems can extract value via rounding.
package shares

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/reverts"
)

var (
	// ErrZeroShares a deposit too small to mint a single share.
	ErrZeroShares = reverts.New(reverts.KindInvalidInput, "deposit yields zero shares")
	// ErrArithmeticOverflow a conversion exceeding 256 bits.
	ErrArithmeticOverflow = reverts.New(reverts.KindArithmetic, "arithmetic overflow")
	// ErrInsufficientShares a redeem of more shares than outstanding.
	ErrInsufficientShares = reverts.New(reverts.KindArithmetic, "insufficient shares")
	// ErrInsolventPool a pool with outstanding shares but no backing capital.
	ErrInsolventPool = reverts.New(reverts.KindStateConflict, "pool has shares but no capital")
)

// Pool tracks a pooled token balance and the shares issued against it.
// The invariant held across all operations is that a holder's claim is
// holder.shares/pool.Shares of the pool's capital at all times.
type Pool struct {
	Tokens *uint256.Int
	Shares *uint256.Int
}

// Issue computes the shares minted by depositing tokens, with capital being
// the portion of the pool backing live shares. The first deposit bootstraps
// the pool 1:1. Pure computation, mutate via Mint.
func (p *Pool) Issue(capital, tokens *uint256.Int) (*uint256.Int, error) {
	if p.Shares.IsZero() {
		if tokens.IsZero() {
			return nil, ErrZeroShares
		}
		return tokens.Clone(), nil
	}
	if capital.IsZero() {
		return nil, ErrInsolventPool
	}
	minted, overflow := new(uint256.Int).MulDivOverflow(tokens, p.Shares, capital)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	if minted.IsZero() {
		return nil, ErrZeroShares
	}
	return minted, nil
}

// Redeem computes the token value of shares against the given capital,
// rounded down. Pure computation, mutate via Burn.
func (p *Pool) Redeem(capital, sharesIn *uint256.Int) (*uint256.Int, error) {
	if sharesIn.IsZero() {
		return uint256.NewInt(0), nil
	}
	if p.Shares.Lt(sharesIn) {
		return nil, ErrInsufficientShares
	}
	tokens, overflow := new(uint256.Int).MulDivOverflow(sharesIn, capital, p.Shares)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return tokens, nil
}

// Mint adds tokens and the shares issued for them to the pool.
func (p *Pool) Mint(tokens, sharesIn *uint256.Int) error {
	sumTokens, overflow := new(uint256.Int).AddOverflow(p.Tokens, tokens)
	if overflow {
		return ErrArithmeticOverflow
	}
	sumShares, overflow := new(uint256.Int).AddOverflow(p.Shares, sharesIn)
	if overflow {
		return ErrArithmeticOverflow
	}
	p.Tokens.Set(sumTokens)
	p.Shares.Set(sumShares)
	return nil
}

// Burn removes tokens and the shares redeemed for them from the pool.
func (p *Pool) Burn(tokens, sharesIn *uint256.Int) error {
	if p.Tokens.Lt(tokens) || p.Shares.Lt(sharesIn) {
		return ErrInsufficientShares
	}
	p.Tokens.Sub(p.Tokens, tokens)
	p.Shares.Sub(p.Shares, sharesIn)
	return nil
}
