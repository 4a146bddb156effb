// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the share based stake, provision and
// delegation ledger. Providers lock stake behind verifiers, third
// parties delegate into pooled positions, and every withdrawal passes
// through a FIFO thaw queue denominated in thawing shares.
package staking

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/kv"
	"github.com/meridian-index/meridian/log"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/metrics"
	"github.com/meridian-index/meridian/storage"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricsOps = metrics.LazyLoadCounterVec("staking_ops_total", []string{"op"})
)

func countOp(op string) {
	metricsOps().AddWithLabel(1, map[string]string{"op": op})
}

// Authorizer answers whether caller may act for provider against verifier.
type Authorizer interface {
	Authorized(caller, provider, verifier meridian.Address) (bool, error)
}

// Config carries the governance knobs of the ledger.
type Config struct {
	MaxThawingPeriod   uint64 // upper bound for provision thawing periods, seconds
	DelegationSlashing bool   // whether slashing reaches the delegation pool
}

// Staking is the ledger entry point. All mutating operations take the
// caller and check authorization before touching state.
type Staking struct {
	store       *storageLayer
	provisions  *provisionService
	delegations *delegationService
	config      Config
	auth        Authorizer
}

// New creates the ledger over the given store. With a nil authorizer the
// built-in operator registry is used: the provider itself, its per
// verifier operators and its global operators are authorized.
func New(store kv.Store, auth Authorizer, config Config) *Staking {
	if config.MaxThawingPeriod == 0 {
		config.MaxThawingPeriod = meridian.DefaultMaxThawingPeriod
	}
	layer := newStorageLayer(storage.NewContext("staking", store))
	queue := &thawQueue{store: layer}
	s := &Staking{
		store: layer,
		provisions: &provisionService{
			store:            layer,
			queue:            queue,
			maxThawingPeriod: config.MaxThawingPeriod,
		},
		delegations: &delegationService{store: layer, queue: queue},
		config:      config,
	}
	if auth == nil {
		auth = &operatorAuthorizer{store: layer}
	}
	s.auth = auth
	return s
}

// operatorAuthorizer is the storage backed default Authorizer.
type operatorAuthorizer struct {
	store *storageLayer
}

func (a *operatorAuthorizer) Authorized(caller, provider, verifier meridian.Address) (bool, error) {
	if caller == provider {
		return true, nil
	}
	return a.store.isOperator(provider, verifier, caller)
}

func (s *Staking) authorize(caller, provider, verifier meridian.Address) error {
	ok, err := s.auth.Authorized(caller, provider, verifier)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// Stake adds tokens to provider's idle stake. Anyone may stake to any
// provider; custody of the tokens themselves is outside this ledger.
func (s *Staking) Stake(caller, provider meridian.Address, tokens *uint256.Int) error {
	if tokens.IsZero() {
		return ErrZeroTokens
	}
	if provider.IsZero() {
		return ErrZeroAddress
	}
	account, err := s.store.getProvider(provider)
	if err != nil {
		return err
	}
	if account.IsEmpty() {
		account = &ServiceProvider{
			TokensStaked:      uint256.NewInt(0),
			TokensProvisioned: uint256.NewInt(0),
			TokensLocked:      uint256.NewInt(0),
		}
	}
	account.TokensStaked.Add(account.TokensStaked, tokens)
	if err := s.store.setProvider(provider, account); err != nil {
		return err
	}
	countOp("stake")
	logger.Debug("staked", "caller", caller, "provider", provider, "tokens", tokens)
	return nil
}

// ProvisionCreate locks provider idle stake into a new provision.
func (s *Staking) ProvisionCreate(
	caller, provider, verifier meridian.Address,
	tokens *uint256.Int,
	maxVerifierCut uint32,
	thawingPeriod uint64,
	now uint64,
) error {
	if err := s.authorize(caller, provider, verifier); err != nil {
		return err
	}
	if err := s.provisions.Create(provider, verifier, tokens, maxVerifierCut, thawingPeriod, now); err != nil {
		return err
	}
	countOp("provision_create")
	logger.Debug("provision created", "provider", provider, "verifier", verifier, "tokens", tokens)
	return nil
}

// ProvisionAddTokens moves more idle stake into an existing provision.
func (s *Staking) ProvisionAddTokens(caller, provider, verifier meridian.Address, tokens *uint256.Int) error {
	if err := s.authorize(caller, provider, verifier); err != nil {
		return err
	}
	if err := s.provisions.AddTokens(provider, verifier, tokens); err != nil {
		return err
	}
	countOp("provision_add")
	return nil
}

// Thaw starts releasing provision tokens and returns the thaw request id.
func (s *Staking) Thaw(caller, provider, verifier meridian.Address, tokens *uint256.Int, now uint64) (meridian.Bytes32, error) {
	if err := s.authorize(caller, provider, verifier); err != nil {
		return meridian.Bytes32{}, err
	}
	id, err := s.provisions.Thaw(provider, verifier, tokens, now)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	countOp("thaw")
	logger.Debug("thaw started", "provider", provider, "verifier", verifier, "tokens", tokens, "request", id)
	return id, nil
}

// Deprovision moves fully thawed tokens back to idle stake.
func (s *Staking) Deprovision(caller, provider, verifier meridian.Address, tokens *uint256.Int, now uint64) error {
	if err := s.authorize(caller, provider, verifier); err != nil {
		return err
	}
	if err := s.provisions.Deprovision(provider, verifier, tokens, now); err != nil {
		return err
	}
	countOp("deprovision")
	return nil
}

// Reprovision moves fully thawed tokens between two of the provider's
// provisions without passing through idle stake.
func (s *Staking) Reprovision(caller, provider, fromVerifier, toVerifier meridian.Address, tokens *uint256.Int, now uint64) error {
	if err := s.authorize(caller, provider, fromVerifier); err != nil {
		return err
	}
	if err := s.authorize(caller, provider, toVerifier); err != nil {
		return err
	}
	if err := s.provisions.Reprovision(provider, fromVerifier, toVerifier, tokens, now); err != nil {
		return err
	}
	countOp("reprovision")
	return nil
}

// SetProvisionParameters stages new provision parameters; the verifier
// must accept them before they apply.
func (s *Staking) SetProvisionParameters(caller, provider, verifier meridian.Address, maxVerifierCut uint32, thawingPeriod uint64) error {
	if err := s.authorize(caller, provider, verifier); err != nil {
		return err
	}
	return s.provisions.StageParameters(provider, verifier, maxVerifierCut, thawingPeriod)
}

// AcceptProvisionParameters applies parameters staged for the calling
// verifier.
func (s *Staking) AcceptProvisionParameters(caller, provider meridian.Address) error {
	return s.provisions.AcceptParameters(provider, caller)
}

// Slash burns tokens from the provision the calling verifier holds over
// provider. When the provision does not cover the amount, the remainder
// comes out of the delegation pool if delegation slashing is enabled, and
// is forgiven otherwise.
func (s *Staking) Slash(caller, provider meridian.Address, tokens, verifierCutAmount *uint256.Int) (*SlashResult, error) {
	result, err := s.provisions.Slash(provider, caller, tokens, verifierCutAmount, s.config.DelegationSlashing)
	if err != nil {
		return nil, err
	}
	countOp("slash")
	logger.Info("provision slashed",
		"provider", provider, "verifier", caller,
		"providerTokens", result.ProviderTokens,
		"delegationTokens", result.DelegationTokens,
		"verifierCut", result.VerifierCut,
		"delegationSkipped", result.DelegationSkip,
	)
	return result, nil
}

// Delegate adds caller tokens to the (provider, verifier) delegation pool.
func (s *Staking) Delegate(caller, provider, verifier meridian.Address, tokens *uint256.Int) error {
	if err := s.delegations.Delegate(caller, provider, verifier, tokens); err != nil {
		return err
	}
	countOp("delegate")
	logger.Debug("delegated", "delegator", caller, "provider", provider, "verifier", verifier, "tokens", tokens)
	return nil
}

// AddToDelegationPool raises the value of existing delegation shares.
func (s *Staking) AddToDelegationPool(caller, provider, verifier meridian.Address, tokens *uint256.Int) error {
	if err := s.delegations.AddToPool(provider, verifier, tokens); err != nil {
		return err
	}
	countOp("delegation_pool_add")
	return nil
}

// Undelegate redeems caller shares and starts thawing their token value.
func (s *Staking) Undelegate(caller, provider, verifier meridian.Address, sharesIn *uint256.Int, now uint64) (meridian.Bytes32, error) {
	id, err := s.delegations.Undelegate(caller, provider, verifier, sharesIn, now)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	countOp("undelegate")
	return id, nil
}

// RedelegateTarget names where withdrawn delegation moves instead of
// being released.
type RedelegateTarget struct {
	Provider meridian.Address
	Verifier meridian.Address
}

// WithdrawDelegated collects the caller's matured undelegations. With a
// redelegate target the collected tokens delegate there directly instead
// of being released.
func (s *Staking) WithdrawDelegated(caller, provider, verifier meridian.Address, redelegate *RedelegateTarget, now uint64) (*uint256.Int, error) {
	var (
		collected *uint256.Int
		err       error
	)
	if redelegate != nil {
		collected, err = s.delegations.Redelegate(caller, provider, verifier, redelegate.Provider, redelegate.Verifier, now)
	} else {
		collected, err = s.delegations.Withdraw(caller, provider, verifier, now)
	}
	if err != nil {
		return nil, err
	}
	countOp("withdraw_delegated")
	logger.Debug("delegation withdrawn", "delegator", caller, "provider", provider, "verifier", verifier, "tokens", collected)
	return collected, nil
}

// SetOperator allows or revokes account acting for the caller against
// one verifier.
func (s *Staking) SetOperator(caller, verifier, account meridian.Address, allowed bool) error {
	if account.IsZero() {
		return ErrZeroAddress
	}
	return s.store.setOperator(caller, verifier, account, allowed)
}

// SetGlobalOperator allows or revokes account acting for the caller
// against every verifier.
func (s *Staking) SetGlobalOperator(caller, account meridian.Address, allowed bool) error {
	if account.IsZero() {
		return ErrZeroAddress
	}
	return s.store.setGlobalOperator(caller, account, allowed)
}

// GetProvider returns the provider's top level accounting, empty if the
// provider never staked.
func (s *Staking) GetProvider(provider meridian.Address) (*ServiceProvider, error) {
	return s.store.getProvider(provider)
}

// GetProvision returns the (provider, verifier) provision, empty if it
// was never created.
func (s *Staking) GetProvision(provider, verifier meridian.Address) (*Provision, error) {
	return s.store.getProvision(provider, verifier)
}

// GetDelegationPool returns the (provider, verifier) delegation pool.
func (s *Staking) GetDelegationPool(provider, verifier meridian.Address) (*DelegationPool, error) {
	return s.store.getPool(provider, verifier)
}

// GetDelegation returns a delegator's position in a pool.
func (s *Staking) GetDelegation(provider, verifier, delegator meridian.Address) (*Delegation, error) {
	return s.store.getDelegation(provider, verifier, delegator)
}

// GetThawRequest returns a thaw request by id, empty if unknown or
// already consumed.
func (s *Staking) GetThawRequest(id meridian.Bytes32) (*ThawRequest, error) {
	return s.store.getThawRequest(id)
}

// IdleStake returns the provider stake neither provisioned nor locked.
func (s *Staking) IdleStake(provider meridian.Address) (*uint256.Int, error) {
	account, err := s.store.getProvider(provider)
	if err != nil {
		return nil, err
	}
	return account.IdleStake(), nil
}

// Legacy exposes the deprecated global-lock unstake path.
func (s *Staking) Legacy() *LegacyOperations {
	return &LegacyOperations{store: s.store, lockPeriod: s.config.MaxThawingPeriod}
}
