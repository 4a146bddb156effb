// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/reverts"
)

// provisionService owns provider-side provision accounting. Callers are
// assumed authorized; authorization happens in the orchestrator.
type provisionService struct {
	store            *storageLayer
	queue            *thawQueue
	maxThawingPeriod uint64
}

// Create locks idle stake into a new provision for verifier.
func (p *provisionService) Create(
	provider, verifier meridian.Address,
	tokens *uint256.Int,
	maxVerifierCut uint32,
	thawingPeriod uint64,
	now uint64,
) error {
	if verifier.IsZero() {
		return ErrZeroAddress
	}
	if tokens.Lt(meridian.MinProvisionTokens) {
		return ErrProvisionTooSmall
	}
	if maxVerifierCut > meridian.MaxVerifierCutPPM {
		return ErrInvalidVerifierCut
	}
	if thawingPeriod > p.maxThawingPeriod {
		return ErrInvalidThawingPeriod
	}
	existing, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return ErrProvisionExists
	}
	account, err := p.store.getProvider(provider)
	if err != nil {
		return err
	}
	if account.IdleStake().Lt(tokens) {
		return ErrInsufficientIdleStake
	}

	account.TokensProvisioned.Add(account.TokensProvisioned, tokens)
	prov := &Provision{
		Tokens:         tokens.Clone(),
		TokensThawing:  uint256.NewInt(0),
		SharesThawing:  uint256.NewInt(0),
		MaxVerifierCut: maxVerifierCut,
		ThawingPeriod:  thawingPeriod,
		CreatedAt:      now,
	}
	if err := p.store.setProvision(provider, verifier, prov); err != nil {
		return err
	}
	return p.store.setProvider(provider, account)
}

// AddTokens moves more idle stake into an existing provision.
func (p *provisionService) AddTokens(provider, verifier meridian.Address, tokens *uint256.Int) error {
	if tokens.IsZero() {
		return ErrZeroTokens
	}
	prov, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return err
	}
	if prov.IsEmpty() {
		return ErrProvisionNotFound
	}
	account, err := p.store.getProvider(provider)
	if err != nil {
		return err
	}
	if account.IdleStake().Lt(tokens) {
		return ErrInsufficientIdleStake
	}

	account.TokensProvisioned.Add(account.TokensProvisioned, tokens)
	prov.Tokens.Add(prov.Tokens, tokens)
	if err := p.store.setProvision(provider, verifier, prov); err != nil {
		return err
	}
	return p.store.setProvider(provider, account)
}

// Thaw starts releasing tokens from a provision. The tokens stay counted
// in the provision until removed; they only stop being available.
func (p *provisionService) Thaw(provider, verifier meridian.Address, tokens *uint256.Int, now uint64) (meridian.Bytes32, error) {
	if tokens.IsZero() {
		return meridian.Bytes32{}, ErrZeroTokens
	}
	prov, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if prov.IsEmpty() {
		return meridian.Bytes32{}, ErrProvisionNotFound
	}
	if prov.Available().Lt(tokens) {
		return meridian.Bytes32{}, ErrInsufficientTokensAvailable
	}

	id, err := p.queue.enqueue(&prov.Queue, provider, verifier, prov.thawPool(), tokens, now+prov.ThawingPeriod)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	if err := p.store.setProvision(provider, verifier, prov); err != nil {
		return meridian.Bytes32{}, err
	}
	return id, nil
}

// Deprovision moves fully thawed tokens back to the provider's idle stake.
func (p *provisionService) Deprovision(provider, verifier meridian.Address, tokens *uint256.Int, now uint64) error {
	prov, err := p.removeThawed(provider, verifier, tokens, now)
	if err != nil {
		return err
	}
	account, err := p.store.getProvider(provider)
	if err != nil {
		return err
	}
	account.TokensProvisioned.Sub(account.TokensProvisioned, tokens)
	if err := p.store.setProvision(provider, verifier, prov); err != nil {
		return err
	}
	return p.store.setProvider(provider, account)
}

// Reprovision moves fully thawed tokens from one provision directly into
// another, without passing through idle stake.
func (p *provisionService) Reprovision(provider, fromVerifier, toVerifier meridian.Address, tokens *uint256.Int, now uint64) error {
	// to and from are separate in-memory copies, an aliased pair would
	// let the stale one overwrite the fulfilled queue
	if fromVerifier == toVerifier {
		return ErrSameProvision
	}
	to, err := p.store.getProvision(provider, toVerifier)
	if err != nil {
		return err
	}
	if to.IsEmpty() {
		return ErrProvisionNotFound
	}
	from, err := p.removeThawed(provider, fromVerifier, tokens, now)
	if err != nil {
		return err
	}
	to.Tokens.Add(to.Tokens, tokens)
	if err := p.store.setProvision(provider, fromVerifier, from); err != nil {
		return err
	}
	return p.store.setProvision(provider, toVerifier, to)
}

// removeThawed fulfills tokens from the thaw queue and deducts them from
// the provision. The mutated provision is returned unpersisted.
func (p *provisionService) removeThawed(provider, verifier meridian.Address, tokens *uint256.Int, now uint64) (*Provision, error) {
	if tokens.IsZero() {
		return nil, ErrZeroTokens
	}
	prov, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return nil, err
	}
	if prov.IsEmpty() {
		return nil, ErrProvisionNotFound
	}
	if err := p.queue.fulfill(&prov.Queue, prov.thawPool(), tokens, now); err != nil {
		return nil, err
	}
	prov.Tokens.Sub(prov.Tokens, tokens)
	return prov, nil
}

// StageParameters stages new provision parameters for verifier acceptance.
func (p *provisionService) StageParameters(provider, verifier meridian.Address, maxVerifierCut uint32, thawingPeriod uint64) error {
	if maxVerifierCut > meridian.MaxVerifierCutPPM {
		return ErrInvalidVerifierCut
	}
	if thawingPeriod > p.maxThawingPeriod {
		return ErrInvalidThawingPeriod
	}
	prov, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return err
	}
	if prov.IsEmpty() {
		return ErrProvisionNotFound
	}
	prov.MaxVerifierCutPending = maxVerifierCut
	prov.ThawingPeriodPending = thawingPeriod
	prov.ParametersPending = true
	return p.store.setProvision(provider, verifier, prov)
}

// AcceptParameters applies staged parameters. Only the verifier calls
// this, through the orchestrator.
func (p *provisionService) AcceptParameters(provider, verifier meridian.Address) error {
	prov, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return err
	}
	if prov.IsEmpty() {
		return ErrProvisionNotFound
	}
	if !prov.ParametersPending {
		return ErrNoPendingParams
	}
	prov.MaxVerifierCut = prov.MaxVerifierCutPending
	prov.ThawingPeriod = prov.ThawingPeriodPending
	prov.MaxVerifierCutPending = 0
	prov.ThawingPeriodPending = 0
	prov.ParametersPending = false
	return p.store.setProvision(provider, verifier, prov)
}

// Slash burns tokens from the provision and, when the provision does not
// cover the full amount and delegation slashing is enabled, from the
// delegation pool. Thawing sub-ledgers are scaled so in-flight requests
// lose value pro-rata. The token burn itself happens outside this ledger;
// the result reports the amounts for the caller to settle.
func (p *provisionService) Slash(
	provider, verifier meridian.Address,
	tokens, verifierCutAmount *uint256.Int,
	delegationSlashing bool,
) (*SlashResult, error) {
	if tokens.IsZero() {
		return nil, ErrZeroTokens
	}
	prov, err := p.store.getProvision(provider, verifier)
	if err != nil {
		return nil, err
	}
	if prov.IsEmpty() {
		return nil, ErrProvisionNotFound
	}
	maxCut := new(uint256.Int).Mul(tokens, uint256.NewInt(uint64(prov.MaxVerifierCut)))
	maxCut.Div(maxCut, uint256.NewInt(uint64(meridian.PPMDenominator)))
	if verifierCutAmount.Gt(maxCut) {
		return nil, ErrVerifierCutTooHigh
	}

	result := &SlashResult{
		ProviderTokens:   uint256.NewInt(0),
		DelegationTokens: uint256.NewInt(0),
		VerifierCut:      verifierCutAmount.Clone(),
	}

	providerSlash := tokens.Clone()
	if providerSlash.Gt(prov.Tokens) {
		providerSlash.Set(prov.Tokens)
	}
	if !providerSlash.IsZero() {
		before := prov.Tokens.Clone()
		prov.Tokens.Sub(prov.Tokens, providerSlash)
		if err := scaleThawing(prov.TokensThawing, prov.Tokens, before); err != nil {
			return nil, err
		}
		account, err := p.store.getProvider(provider)
		if err != nil {
			return nil, err
		}
		account.TokensProvisioned.Sub(account.TokensProvisioned, providerSlash)
		account.TokensStaked.Sub(account.TokensStaked, providerSlash)
		if err := p.store.setProvider(provider, account); err != nil {
			return nil, err
		}
		if err := p.store.setProvision(provider, verifier, prov); err != nil {
			return nil, err
		}
		result.ProviderTokens = providerSlash
	}

	remainder := new(uint256.Int).Sub(tokens, providerSlash)
	if remainder.IsZero() {
		return result, nil
	}
	if !delegationSlashing {
		result.DelegationSkip = true
		return result, nil
	}
	pool, err := p.store.getPool(provider, verifier)
	if err != nil {
		return nil, err
	}
	if pool.IsEmpty() {
		return result, nil
	}
	poolSlash := remainder
	if poolSlash.Gt(pool.Tokens) {
		poolSlash = pool.Tokens.Clone()
	}
	if !poolSlash.IsZero() {
		before := pool.Tokens.Clone()
		pool.Tokens.Sub(pool.Tokens, poolSlash)
		if err := scaleThawing(pool.TokensThawing, pool.Tokens, before); err != nil {
			return nil, err
		}
		if err := p.store.setPool(provider, verifier, pool); err != nil {
			return nil, err
		}
		result.DelegationTokens = poolSlash
	}
	return result, nil
}

// scaleThawing rescales a thawing token balance after the backing balance
// went from before to after, rounding down. Thawing shares are untouched,
// devaluing queued requests instead of editing them.
func scaleThawing(thawing, after, before *uint256.Int) error {
	if before.IsZero() || thawing.IsZero() {
		return nil
	}
	scaled, overflow := new(uint256.Int).MulDivOverflow(thawing, after, before)
	if overflow {
		return reverts.New(reverts.KindArithmetic, "thawing rescale overflow")
	}
	thawing.Set(scaled)
	return nil
}
