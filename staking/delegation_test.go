// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-index/meridian/meridian"
)

var delegator2 = meridian.BytesToAddress([]byte("delegator-2"))

func setupProvision(t *testing.T, config Config) *Staking {
	s := newTestStaking(t, config)
	require.NoError(t, s.Stake(provider, provider, grt(100)))
	require.NoError(t, s.ProvisionCreate(provider, provider, verifier, grt(100), 0, 100, 0))
	return s
}

func TestDelegate(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})

	assert.ErrorIs(t, s.Delegate(delegator, provider, verifier, uint256.NewInt(1)), ErrDelegationTooSmall)
	assert.ErrorIs(t, s.Delegate(delegator, provider, verifier2, grt(10)), ErrProvisionNotFound)

	// first delegation bootstraps shares 1:1
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(10)))
	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(10), pool.Tokens)
	assert.Equal(t, grt(10), pool.Shares)

	del, err := s.GetDelegation(provider, verifier, delegator)
	require.NoError(t, err)
	assert.Equal(t, grt(10), del.Shares)

	// rewards double the share price
	require.NoError(t, s.AddToDelegationPool(provider, provider, verifier, grt(10)))

	// a later delegator pays the higher price
	require.NoError(t, s.Delegate(delegator2, provider, verifier, grt(10)))
	pool, err = s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(30), pool.Tokens)
	assert.Equal(t, grt(15), pool.Shares)

	del2, err := s.GetDelegation(provider, verifier, delegator2)
	require.NoError(t, err)
	assert.Equal(t, grt(5), del2.Shares)
}

func TestUndelegateAndWithdraw(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(10)))
	require.NoError(t, s.AddToDelegationPool(provider, provider, verifier, grt(10)))
	require.NoError(t, s.Delegate(delegator2, provider, verifier, grt(10)))

	_, err := s.Undelegate(delegator, provider, verifier, new(uint256.Int).Add(grt(10), uint256.NewInt(1)), 0)
	assert.ErrorIs(t, err, ErrInsufficientDelegation)

	// 10 shares of 15 backed by 30 tokens
	id, err := s.Undelegate(delegator, provider, verifier, grt(10), 0)
	require.NoError(t, err)

	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(30), pool.Tokens)
	assert.Equal(t, grt(5), pool.Shares)
	assert.Equal(t, grt(20), pool.TokensThawing)

	req, err := s.GetThawRequest(id)
	require.NoError(t, err)
	require.False(t, req.IsEmpty())
	assert.Equal(t, uint64(100), req.ThawingUntil)

	// remaining delegator unaffected: 5 shares back 10 tokens
	del2, err := s.GetDelegation(provider, verifier, delegator2)
	require.NoError(t, err)
	assert.Equal(t, grt(5), del2.Shares)
	assert.Equal(t, grt(10), pool.Available())

	_, err = s.WithdrawDelegated(delegator, provider, verifier, nil, 99)
	assert.ErrorIs(t, err, ErrNothingThawed)

	collected, err := s.WithdrawDelegated(delegator, provider, verifier, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, grt(20), collected)

	pool, err = s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(10), pool.Tokens)
	assert.True(t, pool.TokensThawing.IsZero())
}

func TestRedelegate(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	other := meridian.BytesToAddress([]byte("provider-2"))
	require.NoError(t, s.Stake(other, other, grt(50)))
	require.NoError(t, s.ProvisionCreate(other, other, verifier, grt(50), 0, 100, 0))

	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(10)))
	_, err := s.Undelegate(delegator, provider, verifier, grt(10), 0)
	require.NoError(t, err)

	target := &RedelegateTarget{Provider: other, Verifier: verifier}
	collected, err := s.WithdrawDelegated(delegator, provider, verifier, target, 100)
	require.NoError(t, err)
	assert.Equal(t, grt(10), collected)

	del, err := s.GetDelegation(other, verifier, delegator)
	require.NoError(t, err)
	assert.Equal(t, grt(10), del.Shares)
}

func TestDelegationSlashing(t *testing.T) {
	s := newTestStaking(t, Config{MaxThawingPeriod: 1000, DelegationSlashing: true})
	require.NoError(t, s.Stake(provider, provider, grt(10)))
	require.NoError(t, s.ProvisionCreate(provider, provider, verifier, grt(10), 0, 100, 0))
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(90)))

	// provision covers 10, the remaining 40 comes out of the pool
	result, err := s.Slash(verifier, provider, grt(50), uint256.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, grt(10), result.ProviderTokens)
	assert.Equal(t, grt(40), result.DelegationTokens)
	assert.False(t, result.DelegationSkip)

	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(50), pool.Tokens)
	assert.Equal(t, grt(90), pool.Shares)

	// shares devalued, not burned
	del, err := s.GetDelegation(provider, verifier, delegator)
	require.NoError(t, err)
	assert.Equal(t, grt(90), del.Shares)
}

func TestDelegationPoolWipedOut(t *testing.T) {
	s := newTestStaking(t, Config{MaxThawingPeriod: 1000, DelegationSlashing: true})
	require.NoError(t, s.Stake(provider, provider, grt(10)))
	require.NoError(t, s.ProvisionCreate(provider, provider, verifier, grt(10), 0, 100, 0))
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(20)))

	_, err := s.Slash(verifier, provider, grt(30), uint256.NewInt(0))
	require.NoError(t, err)

	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.True(t, pool.Tokens.IsZero())
	assert.Equal(t, grt(20), pool.Shares)

	// worthless shares cannot undelegate
	_, err = s.Undelegate(delegator, provider, verifier, grt(20), 0)
	assert.ErrorIs(t, err, ErrZeroTokens)
}

func TestWithdrawAfterProviderExit(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(10)))
	_, err := s.Undelegate(delegator, provider, verifier, grt(5), 0)
	require.NoError(t, err)

	// provider loses its entire local stake
	_, err = s.Slash(verifier, provider, grt(100), uint256.NewInt(0))
	require.NoError(t, err)
	account, err := s.GetProvider(provider)
	require.NoError(t, err)
	require.True(t, account.TokensStaked.IsZero())

	// maturity is ignored so the delegator is not stranded
	collected, err := s.WithdrawDelegated(delegator, provider, verifier, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, grt(5), collected)
}

func TestDelegationShareConservation(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(13)))
	require.NoError(t, s.Delegate(delegator2, provider, verifier, grt(7)))
	require.NoError(t, s.AddToDelegationPool(provider, provider, verifier, grt(3)))
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(5)))

	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	d1, err := s.GetDelegation(provider, verifier, delegator)
	require.NoError(t, err)
	d2, err := s.GetDelegation(provider, verifier, delegator2)
	require.NoError(t, err)

	sum := new(uint256.Int).Add(d1.Shares, d2.Shares)
	assert.Equal(t, pool.Shares, sum)

	// pool never pays out more than it holds
	v1, err := pool.sharePool().Redeem(pool.Available(), d1.Shares)
	require.NoError(t, err)
	v2, err := pool.sharePool().Redeem(pool.Available(), d2.Shares)
	require.NoError(t, err)
	total := new(uint256.Int).Add(v1, v2)
	assert.True(t, total.Cmp(pool.Tokens) <= 0)
}

func TestRedelegateTargetMissing(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(10)))
	_, err := s.Undelegate(delegator, provider, verifier, grt(10), 0)
	require.NoError(t, err)

	target := &RedelegateTarget{Provider: provider, Verifier: meridian.BytesToAddress([]byte("nobody"))}
	_, err = s.WithdrawDelegated(delegator, provider, verifier, target, 100)
	assert.ErrorIs(t, err, ErrProvisionNotFound)

	// the failed call left the thaw queue and the pool untouched
	del, err := s.GetDelegation(provider, verifier, delegator)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), del.Queue.Count)

	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(10), pool.Tokens)
	assert.Equal(t, grt(10), pool.TokensThawing)

	// releasing without a target still pays the full amount
	collected, err := s.WithdrawDelegated(delegator, provider, verifier, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, grt(10), collected)
}

func TestRedelegateBelowMinimum(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	other := meridian.BytesToAddress([]byte("provider-2"))
	require.NoError(t, s.Stake(other, other, grt(50)))
	require.NoError(t, s.ProvisionCreate(other, other, verifier, grt(50), 0, 100, 0))

	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(1)))
	half := new(uint256.Int).Div(grt(1), uint256.NewInt(2))
	_, err := s.Undelegate(delegator, provider, verifier, half, 0)
	require.NoError(t, err)

	target := &RedelegateTarget{Provider: other, Verifier: verifier}
	_, err = s.WithdrawDelegated(delegator, provider, verifier, target, 100)
	assert.ErrorIs(t, err, ErrDelegationTooSmall)

	del, err := s.GetDelegation(provider, verifier, delegator)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), del.Queue.Count)

	collected, err := s.WithdrawDelegated(delegator, provider, verifier, nil, 100)
	require.NoError(t, err)
	assert.Equal(t, half, collected)
}

func TestRedelegateIntoSamePool(t *testing.T) {
	s := setupProvision(t, Config{MaxThawingPeriod: 1000})
	require.NoError(t, s.Delegate(delegator, provider, verifier, grt(10)))
	_, err := s.Undelegate(delegator, provider, verifier, grt(10), 0)
	require.NoError(t, err)

	target := &RedelegateTarget{Provider: provider, Verifier: verifier}
	collected, err := s.WithdrawDelegated(delegator, provider, verifier, target, 100)
	require.NoError(t, err)
	assert.Equal(t, grt(10), collected)

	pool, err := s.GetDelegationPool(provider, verifier)
	require.NoError(t, err)
	assert.Equal(t, grt(10), pool.Tokens)
	assert.Equal(t, grt(10), pool.Shares)
	assert.True(t, pool.TokensThawing.IsZero())

	del, err := s.GetDelegation(provider, verifier, delegator)
	require.NoError(t, err)
	assert.Equal(t, grt(10), del.Shares)
	assert.Equal(t, uint32(0), del.Queue.Count)
}
