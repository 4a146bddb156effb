// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dispute arbitrates signed query attestations. A fisherman
// bonds a deposit against a provider's attestation; the arbitrator
// resolves the dispute, slashing the provider's provision on accept.
package dispute

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/kv"
	"github.com/meridian-index/meridian/log"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/metrics"
	"github.com/meridian-index/meridian/reverts"
	"github.com/meridian-index/meridian/staking"
	"github.com/meridian-index/meridian/storage"
)

var (
	logger = log.WithContext("pkg", "dispute")

	metricsResolved = metrics.LazyLoadCounterVec("dispute_resolutions_total", []string{"outcome"})
)

var (
	ErrNotArbitrator      = reverts.New(reverts.KindAuthorization, "caller is not the arbitrator")
	ErrNotFisherman       = reverts.New(reverts.KindAuthorization, "caller did not open the dispute")
	ErrDepositTooSmall    = reverts.New(reverts.KindInvalidInput, "deposit below the minimum")
	ErrNotConflicting     = reverts.New(reverts.KindInvalidInput, "attestations do not conflict")
	ErrDisputeExists      = reverts.New(reverts.KindStateConflict, "dispute already exists")
	ErrDisputeNotFound    = reverts.New(reverts.KindStateConflict, "dispute not found")
	ErrDisputeNotPending  = reverts.New(reverts.KindStateConflict, "dispute already resolved")
	ErrConflictingDispute = reverts.New(reverts.KindStateConflict, "conflicting disputes resolve together; accept or draw")
	ErrCancelTooSoon      = reverts.New(reverts.KindStateConflict, "cancellation window not reached")
)

// Status of a dispute.
type Status uint8

const (
	StatusNull Status = iota
	StatusPending
	StatusAccepted
	StatusRejected
	StatusDrawn
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusNull:
		return "null"
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusDrawn:
		return "drawn"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Dispute is one open or resolved query dispute.
type Dispute struct {
	Provider  meridian.Address
	Fisherman meridian.Address
	Deposit   *uint256.Int
	CreatedAt uint64
	Status    Status
	// RelatedID links the twin dispute of a conflicting pair, zero
	// otherwise.
	RelatedID meridian.Bytes32
}

// IsEmpty returns whether the entry can be treated as empty.
func (d *Dispute) IsEmpty() bool {
	return d.Deposit == nil
}

// Slasher burns provider stake when a dispute is accepted.
// *staking.Staking satisfies it.
type Slasher interface {
	Slash(caller, provider meridian.Address, tokens, verifierCutAmount *uint256.Int) (*staking.SlashResult, error)
}

// Config carries the arbitration parameters.
type Config struct {
	// Self is the verifier identity provisions are keyed under.
	Self       meridian.Address
	Arbitrator meridian.Address
	// DomainSeparator binds attestations to one deployment of the
	// protocol.
	DomainSeparator meridian.Bytes32
	MinDeposit      *uint256.Int
	// FishermanRewardCutPPM of the slashed amount goes to the
	// fisherman, through the verifier cut.
	FishermanRewardCutPPM uint32
	// CancelWindow is how long a dispute must sit unresolved before
	// the fisherman can cancel, seconds.
	CancelWindow uint64
}

// Manager is the dispute entry point.
type Manager struct {
	disputes *storage.Mapping[meridian.Bytes32, *Dispute]
	slasher  Slasher
	config   Config
}

// New creates the manager over the given store.
func New(store kv.Store, slasher Slasher, config Config) *Manager {
	context := storage.NewContext("dispute", store)
	return &Manager{
		disputes: storage.NewMapping[meridian.Bytes32, *Dispute](context, meridian.Keccak256([]byte("disputes"))),
		slasher:  slasher,
		config:   config,
	}
}

// disputeID derives the dispute key from the attested receipt and the
// attesting provider.
func disputeID(a *Attestation, provider meridian.Address) meridian.Bytes32 {
	return meridian.Keccak256(
		a.RequestCID.Bytes(),
		a.ResponseCID.Bytes(),
		a.SubgraphDeploymentID.Bytes(),
		provider.Bytes(),
	)
}

// CreateQueryDispute opens a dispute against the signer of attestation.
func (m *Manager) CreateQueryDispute(fisherman meridian.Address, deposit *uint256.Int, attestation []byte, now uint64) (meridian.Bytes32, error) {
	if deposit.Lt(m.config.MinDeposit) {
		return meridian.Bytes32{}, ErrDepositTooSmall
	}
	att, err := DecodeAttestation(attestation)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	provider, err := att.Signer(m.config.DomainSeparator)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	id := disputeID(att, provider)
	if err := m.create(id, &Dispute{
		Provider:  provider,
		Fisherman: fisherman,
		Deposit:   deposit.Clone(),
		CreatedAt: now,
		Status:    StatusPending,
	}); err != nil {
		return meridian.Bytes32{}, err
	}
	logger.Info("query dispute created", "id", id, "provider", provider, "fisherman", fisherman)
	return id, nil
}

// CreateQueryDisputeConflict opens a linked pair of disputes for two
// attestations answering the same request differently. Either both
// providers are wrong or exactly one is; resolution keeps the pair
// consistent.
func (m *Manager) CreateQueryDisputeConflict(fisherman meridian.Address, deposit *uint256.Int, attestation1, attestation2 []byte, now uint64) (meridian.Bytes32, meridian.Bytes32, error) {
	if deposit.Lt(m.config.MinDeposit) {
		return meridian.Bytes32{}, meridian.Bytes32{}, ErrDepositTooSmall
	}
	att1, err := DecodeAttestation(attestation1)
	if err != nil {
		return meridian.Bytes32{}, meridian.Bytes32{}, err
	}
	att2, err := DecodeAttestation(attestation2)
	if err != nil {
		return meridian.Bytes32{}, meridian.Bytes32{}, err
	}
	conflicting := att1.RequestCID == att2.RequestCID &&
		att1.SubgraphDeploymentID == att2.SubgraphDeploymentID &&
		att1.ResponseCID != att2.ResponseCID
	if !conflicting {
		return meridian.Bytes32{}, meridian.Bytes32{}, ErrNotConflicting
	}

	provider1, err := att1.Signer(m.config.DomainSeparator)
	if err != nil {
		return meridian.Bytes32{}, meridian.Bytes32{}, err
	}
	provider2, err := att2.Signer(m.config.DomainSeparator)
	if err != nil {
		return meridian.Bytes32{}, meridian.Bytes32{}, err
	}
	id1 := disputeID(att1, provider1)
	id2 := disputeID(att2, provider2)

	if err := m.create(id1, &Dispute{
		Provider:  provider1,
		Fisherman: fisherman,
		Deposit:   deposit.Clone(),
		CreatedAt: now,
		Status:    StatusPending,
		RelatedID: id2,
	}); err != nil {
		return meridian.Bytes32{}, meridian.Bytes32{}, err
	}
	if err := m.create(id2, &Dispute{
		Provider:  provider2,
		Fisherman: fisherman,
		Deposit:   deposit.Clone(),
		CreatedAt: now,
		Status:    StatusPending,
		RelatedID: id1,
	}); err != nil {
		return meridian.Bytes32{}, meridian.Bytes32{}, err
	}
	logger.Info("conflicting query disputes created", "id1", id1, "id2", id2)
	return id1, id2, nil
}

func (m *Manager) create(id meridian.Bytes32, dispute *Dispute) error {
	existing, err := m.disputes.Get(id)
	if err != nil {
		return errors.Wrap(err, "get dispute")
	}
	if !existing.IsEmpty() {
		return ErrDisputeExists
	}
	return errors.Wrap(m.disputes.Set(id, dispute), "set dispute")
}

// Accept resolves a dispute in the fisherman's favor: the provider's
// provision is slashed by slashTokens, with the fisherman's reward cut
// routed through the verifier cut. The twin of a conflicting pair is
// rejected.
func (m *Manager) Accept(caller meridian.Address, id meridian.Bytes32, slashTokens *uint256.Int) error {
	if caller != m.config.Arbitrator {
		return ErrNotArbitrator
	}
	dispute, err := m.pending(id)
	if err != nil {
		return err
	}

	reward, overflow := new(uint256.Int).MulDivOverflow(
		slashTokens,
		uint256.NewInt(uint64(m.config.FishermanRewardCutPPM)),
		uint256.NewInt(uint64(meridian.PPMDenominator)),
	)
	if overflow {
		return reverts.New(reverts.KindArithmetic, "fisherman reward overflow")
	}
	if _, err := m.slasher.Slash(m.config.Self, dispute.Provider, slashTokens, reward); err != nil {
		return err
	}
	dispute.Status = StatusAccepted
	if err := m.disputes.Set(id, dispute); err != nil {
		return errors.Wrap(err, "set dispute")
	}
	if err := m.resolveRelated(dispute.RelatedID, StatusRejected); err != nil {
		return err
	}
	metricsResolved().AddWithLabel(1, map[string]string{"outcome": "accepted"})
	logger.Info("dispute accepted", "id", id, "provider", dispute.Provider, "slashed", slashTokens, "reward", reward)
	return nil
}

// Reject resolves a dispute against the fisherman. A conflicting pair
// cannot be rejected one-sided; accept the other or draw both.
func (m *Manager) Reject(caller meridian.Address, id meridian.Bytes32) error {
	if caller != m.config.Arbitrator {
		return ErrNotArbitrator
	}
	dispute, err := m.pending(id)
	if err != nil {
		return err
	}
	if !dispute.RelatedID.IsZero() {
		return ErrConflictingDispute
	}
	dispute.Status = StatusRejected
	if err := m.disputes.Set(id, dispute); err != nil {
		return errors.Wrap(err, "set dispute")
	}
	metricsResolved().AddWithLabel(1, map[string]string{"outcome": "rejected"})
	return nil
}

// Draw resolves a dispute with no winner; the twin of a conflicting
// pair draws too.
func (m *Manager) Draw(caller meridian.Address, id meridian.Bytes32) error {
	if caller != m.config.Arbitrator {
		return ErrNotArbitrator
	}
	dispute, err := m.pending(id)
	if err != nil {
		return err
	}
	dispute.Status = StatusDrawn
	if err := m.disputes.Set(id, dispute); err != nil {
		return errors.Wrap(err, "set dispute")
	}
	if err := m.resolveRelated(dispute.RelatedID, StatusDrawn); err != nil {
		return err
	}
	metricsResolved().AddWithLabel(1, map[string]string{"outcome": "drawn"})
	return nil
}

// Cancel lets the fisherman withdraw a dispute the arbitrator has not
// resolved within the cancellation window.
func (m *Manager) Cancel(caller meridian.Address, id meridian.Bytes32, now uint64) error {
	dispute, err := m.pending(id)
	if err != nil {
		return err
	}
	if caller != dispute.Fisherman {
		return ErrNotFisherman
	}
	if now < dispute.CreatedAt+m.config.CancelWindow {
		return ErrCancelTooSoon
	}
	dispute.Status = StatusCancelled
	if err := m.disputes.Set(id, dispute); err != nil {
		return errors.Wrap(err, "set dispute")
	}
	if err := m.resolveRelated(dispute.RelatedID, StatusCancelled); err != nil {
		return err
	}
	metricsResolved().AddWithLabel(1, map[string]string{"outcome": "cancelled"})
	return nil
}

func (m *Manager) pending(id meridian.Bytes32) (*Dispute, error) {
	dispute, err := m.disputes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "get dispute")
	}
	if dispute.IsEmpty() {
		return nil, ErrDisputeNotFound
	}
	if dispute.Status != StatusPending {
		return nil, ErrDisputeNotPending
	}
	return dispute, nil
}

func (m *Manager) resolveRelated(id meridian.Bytes32, status Status) error {
	if id.IsZero() {
		return nil
	}
	related, err := m.disputes.Get(id)
	if err != nil {
		return errors.Wrap(err, "get related dispute")
	}
	if related.IsEmpty() || related.Status != StatusPending {
		return nil
	}
	related.Status = status
	return errors.Wrap(m.disputes.Set(id, related), "set related dispute")
}

// Get returns a dispute by id, empty if unknown.
func (m *Manager) Get(id meridian.Bytes32) (*Dispute, error) {
	dispute, err := m.disputes.Get(id)
	return dispute, errors.Wrap(err, "get dispute")
}
