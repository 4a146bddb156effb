// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/meridian"
)

// delegationService owns third-party delegation accounting against a
// provider's provisions.
type delegationService struct {
	store *storageLayer
	queue *thawQueue
}

// Delegate adds tokens to the (provider, verifier) delegation pool and
// issues shares to the delegator against the pool's non-thawing capital.
func (d *delegationService) Delegate(delegator, provider, verifier meridian.Address, tokens *uint256.Int) error {
	if tokens.Lt(meridian.MinDelegationTokens) {
		return ErrDelegationTooSmall
	}
	prov, err := d.store.getProvision(provider, verifier)
	if err != nil {
		return err
	}
	if prov.IsEmpty() {
		return ErrProvisionNotFound
	}
	pool, err := d.store.getPool(provider, verifier)
	if err != nil {
		return err
	}
	if pool.IsEmpty() {
		pool = newDelegationPool()
	}

	ledger := pool.sharePool()
	minted, err := ledger.Issue(pool.Available(), tokens)
	if err != nil {
		return err
	}
	if err := ledger.Mint(tokens, minted); err != nil {
		return err
	}
	del, err := d.store.getDelegation(provider, verifier, delegator)
	if err != nil {
		return err
	}
	if del.IsEmpty() {
		del.Shares = uint256.NewInt(0)
	}
	del.Shares.Add(del.Shares, minted)
	if err := d.store.setPool(provider, verifier, pool); err != nil {
		return err
	}
	return d.store.setDelegation(provider, verifier, delegator, del)
}

// AddToPool adds tokens to the pool without issuing shares, raising the
// value of every existing share. Used to pass through delegation rewards.
func (d *delegationService) AddToPool(provider, verifier meridian.Address, tokens *uint256.Int) error {
	if tokens.IsZero() {
		return ErrZeroTokens
	}
	pool, err := d.store.getPool(provider, verifier)
	if err != nil {
		return err
	}
	if pool.IsEmpty() || pool.Shares.IsZero() {
		return ErrDelegationNotFound
	}
	pool.Tokens.Add(pool.Tokens, tokens)
	return d.store.setPool(provider, verifier, pool)
}

// Undelegate redeems shares into tokens at the current rate and moves
// the tokens into the pool's thawing sub-ledger behind a thaw request.
// Pool tokens do not change; they stop backing live shares.
func (d *delegationService) Undelegate(
	delegator, provider, verifier meridian.Address,
	sharesIn *uint256.Int,
	now uint64,
) (meridian.Bytes32, error) {
	if sharesIn.IsZero() {
		return meridian.Bytes32{}, ErrZeroTokens
	}
	prov, err := d.store.getProvision(provider, verifier)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if prov.IsEmpty() {
		return meridian.Bytes32{}, ErrProvisionNotFound
	}
	del, err := d.store.getDelegation(provider, verifier, delegator)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if del.IsEmpty() || del.Shares.Lt(sharesIn) {
		return meridian.Bytes32{}, ErrInsufficientDelegation
	}
	pool, err := d.store.getPool(provider, verifier)
	if err != nil {
		return meridian.Bytes32{}, err
	}

	ledger := pool.sharePool()
	tokens, err := ledger.Redeem(pool.Available(), sharesIn)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if tokens.IsZero() {
		return meridian.Bytes32{}, ErrZeroTokens
	}
	if err := ledger.Burn(uint256.NewInt(0), sharesIn); err != nil {
		return meridian.Bytes32{}, err
	}
	del.Shares.Sub(del.Shares, sharesIn)

	id, err := d.queue.enqueue(&del.Queue, delegator, verifier, pool.thawPool(), tokens, now+prov.ThawingPeriod)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if err := d.store.setPool(provider, verifier, pool); err != nil {
		return meridian.Bytes32{}, err
	}
	if err := d.store.setDelegation(provider, verifier, delegator, del); err != nil {
		return meridian.Bytes32{}, err
	}
	return id, nil
}

// Withdraw collects the delegator's matured thaw requests and removes
// their value from the pool. When the provider has no stake left locally,
// maturity is ignored so delegators are not stranded behind a provider
// that moved away.
func (d *delegationService) Withdraw(delegator, provider, verifier meridian.Address, now uint64) (*uint256.Int, error) {
	del, err := d.store.getDelegation(provider, verifier, delegator)
	if err != nil {
		return nil, err
	}
	if del.IsEmpty() {
		return nil, ErrDelegationNotFound
	}
	pool, err := d.store.getPool(provider, verifier)
	if err != nil {
		return nil, err
	}
	if pool.IsEmpty() {
		return nil, ErrDelegationNotFound
	}
	account, err := d.store.getProvider(provider)
	if err != nil {
		return nil, err
	}
	ignoreTime := !account.IsEmpty() && account.TokensStaked.IsZero()

	collected, consumed, err := d.queue.collect(&del.Queue, pool.thawPool(), now, ignoreTime)
	if err != nil {
		return nil, err
	}
	if collected.IsZero() {
		return nil, ErrNothingThawed
	}
	if err := pool.sharePool().Burn(collected, uint256.NewInt(0)); err != nil {
		return nil, err
	}
	if err := d.queue.remove(consumed); err != nil {
		return nil, err
	}
	if err := d.store.setPool(provider, verifier, pool); err != nil {
		return nil, err
	}
	if err := d.store.setDelegation(provider, verifier, delegator, del); err != nil {
		return nil, err
	}
	return collected, nil
}

// Redelegate collects the delegator's matured undelegations and delegates
// them into the target pool in one step. Guards on both legs run before
// anything is persisted, so a failed call leaves the ledger untouched.
func (d *delegationService) Redelegate(
	delegator, provider, verifier, toProvider, toVerifier meridian.Address,
	now uint64,
) (*uint256.Int, error) {
	toProv, err := d.store.getProvision(toProvider, toVerifier)
	if err != nil {
		return nil, err
	}
	if toProv.IsEmpty() {
		return nil, ErrProvisionNotFound
	}
	del, err := d.store.getDelegation(provider, verifier, delegator)
	if err != nil {
		return nil, err
	}
	if del.IsEmpty() {
		return nil, ErrDelegationNotFound
	}
	pool, err := d.store.getPool(provider, verifier)
	if err != nil {
		return nil, err
	}
	if pool.IsEmpty() {
		return nil, ErrDelegationNotFound
	}
	account, err := d.store.getProvider(provider)
	if err != nil {
		return nil, err
	}
	ignoreTime := !account.IsEmpty() && account.TokensStaked.IsZero()

	collected, consumed, err := d.queue.collect(&del.Queue, pool.thawPool(), now, ignoreTime)
	if err != nil {
		return nil, err
	}
	if collected.IsZero() {
		return nil, ErrNothingThawed
	}
	if collected.Lt(meridian.MinDelegationTokens) {
		return nil, ErrDelegationTooSmall
	}
	if err := pool.sharePool().Burn(collected, uint256.NewInt(0)); err != nil {
		return nil, err
	}

	// when the target is the source pool, operate on the same copies
	toPool, toDel := pool, del
	sameTarget := toProvider == provider && toVerifier == verifier
	if !sameTarget {
		if toPool, err = d.store.getPool(toProvider, toVerifier); err != nil {
			return nil, err
		}
		if toPool.IsEmpty() {
			toPool = newDelegationPool()
		}
		if toDel, err = d.store.getDelegation(toProvider, toVerifier, delegator); err != nil {
			return nil, err
		}
		if toDel.IsEmpty() {
			toDel.Shares = uint256.NewInt(0)
		}
	}
	ledger := toPool.sharePool()
	minted, err := ledger.Issue(toPool.Available(), collected)
	if err != nil {
		return nil, err
	}
	if err := ledger.Mint(collected, minted); err != nil {
		return nil, err
	}
	toDel.Shares.Add(toDel.Shares, minted)

	if err := d.queue.remove(consumed); err != nil {
		return nil, err
	}
	if err := d.store.setPool(provider, verifier, pool); err != nil {
		return nil, err
	}
	if err := d.store.setDelegation(provider, verifier, delegator, del); err != nil {
		return nil, err
	}
	if !sameTarget {
		if err := d.store.setPool(toProvider, toVerifier, toPool); err != nil {
			return nil, err
		}
		if err := d.store.setDelegation(toProvider, toVerifier, delegator, toDel); err != nil {
			return nil, err
		}
	}
	return collected, nil
}
