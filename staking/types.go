// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/staking/shares"
)

// ThawQueue holds the FIFO queue links of a provision's or delegation's
// outstanding thaw requests. Queue order is creation order is release order.
type ThawQueue struct {
	Head  meridian.Bytes32
	Tail  meridian.Bytes32
	Count uint32
}

// ThawRequest is one time-locked partial withdrawal. Shares denominate a
// claim on the owning entry's thawing sub-pool, so an intervening slash
// devalues in-flight requests pro-rata.
type ThawRequest struct {
	Shares       *uint256.Int
	ThawingUntil uint64           // absolute time, seconds
	Next         meridian.Bytes32 // queue link, zero at the tail
}

// IsEmpty returns whether the entry can be treated as empty.
func (r *ThawRequest) IsEmpty() bool {
	return r.Shares == nil
}

// Provision is the stake a provider commits to a specific verifier.
// A provision is never deleted; zero tokens is a valid terminal state.
type Provision struct {
	Tokens        *uint256.Int
	TokensThawing *uint256.Int
	SharesThawing *uint256.Int

	MaxVerifierCut uint32 // ppm
	ThawingPeriod  uint64 // seconds
	CreatedAt      uint64

	// parameters staged by the provider, pending verifier acceptance
	MaxVerifierCutPending uint32
	ThawingPeriodPending  uint64
	ParametersPending     bool

	Queue ThawQueue
}

// IsEmpty returns whether the entry can be treated as empty.
func (p *Provision) IsEmpty() bool {
	return p.Tokens == nil
}

// Available returns the provision tokens not already thawing.
func (p *Provision) Available() *uint256.Int {
	return new(uint256.Int).Sub(p.Tokens, p.TokensThawing)
}

// thawPool views the thawing sub-ledger as a share pool.
func (p *Provision) thawPool() *shares.Pool {
	return &shares.Pool{Tokens: p.TokensThawing, Shares: p.SharesThawing}
}

// ServiceProvider is the top level stake accounting of one provider.
type ServiceProvider struct {
	TokensStaked      *uint256.Int
	TokensProvisioned *uint256.Int

	// deprecated global-lock withdrawal mode, kept for providers that
	// still hold locked tokens; see LegacyOperations
	TokensLocked      *uint256.Int
	TokensLockedUntil uint64
}

// IsEmpty returns whether the entry can be treated as empty.
func (s *ServiceProvider) IsEmpty() bool {
	return s.TokensStaked == nil
}

// IdleStake returns stake neither provisioned nor legacy-locked.
func (s *ServiceProvider) IdleStake() *uint256.Int {
	if s.IsEmpty() {
		return uint256.NewInt(0)
	}
	idle := new(uint256.Int).Sub(s.TokensStaked, s.TokensProvisioned)
	return idle.Sub(idle, s.TokensLocked)
}

// DelegationPool is the pooled third-party stake behind one provision.
type DelegationPool struct {
	Tokens        *uint256.Int
	Shares        *uint256.Int
	TokensThawing *uint256.Int
	SharesThawing *uint256.Int
}

// IsEmpty returns whether the entry can be treated as empty.
func (p *DelegationPool) IsEmpty() bool {
	return p.Tokens == nil
}

// Available returns the pool tokens backing live shares.
func (p *DelegationPool) Available() *uint256.Int {
	return new(uint256.Int).Sub(p.Tokens, p.TokensThawing)
}

// sharePool views the pool's main ledger as a share pool.
func (p *DelegationPool) sharePool() *shares.Pool {
	return &shares.Pool{Tokens: p.Tokens, Shares: p.Shares}
}

// thawPool views the undelegation sub-ledger as a share pool.
func (p *DelegationPool) thawPool() *shares.Pool {
	return &shares.Pool{Tokens: p.TokensThawing, Shares: p.SharesThawing}
}

func newDelegationPool() *DelegationPool {
	return &DelegationPool{
		Tokens:        uint256.NewInt(0),
		Shares:        uint256.NewInt(0),
		TokensThawing: uint256.NewInt(0),
		SharesThawing: uint256.NewInt(0),
	}
}

// Delegation is one delegator's position in a delegation pool.
type Delegation struct {
	Shares *uint256.Int
	Queue  ThawQueue
}

// IsEmpty returns whether the entry can be treated as empty.
func (d *Delegation) IsEmpty() bool {
	return d.Shares == nil
}

// SlashResult reports the outcome of a slash.
type SlashResult struct {
	ProviderTokens   *uint256.Int // slashed from the provision
	DelegationTokens *uint256.Int // slashed from the delegation pool
	VerifierCut      *uint256.Int // portion owed to the verifier cut destination
	DelegationSkip   bool         // delegation remainder skipped because slashing is disabled
}
