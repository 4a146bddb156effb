// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package migration coordinates one-way subgraph migrations from the
// counterpart chain: the bridge announces a migration, the owner
// finishes it, and curators claim their locked balances with state
// proofs against the lock block.
package migration

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/kv"
	"github.com/meridian-index/meridian/l1"
	"github.com/meridian-index/meridian/log"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/metrics"
	"github.com/meridian-index/meridian/mpt"
	"github.com/meridian-index/meridian/storage"
)

var (
	logger = log.WithContext("pkg", "migration")

	metricsClaims     = metrics.LazyLoadCounter("migration_claims_total")
	metricsMigrations = metrics.LazyLoadCounterVec("migration_transitions_total", []string{"stage"})
)

// Config carries the trusted identities and the counterpart contract's
// storage layout.
type Config struct {
	Gateway  meridian.Address // bridge identity delivering migration messages
	Governor meridian.Address
	// Counterpart seeds the trusted counterpart contract address; the
	// governor can change it later.
	Counterpart meridian.Address
	// CuratorBalancesSlot is the storage slot of the counterpart
	// contract's (subgraph => curator => signal) mapping.
	CuratorBalancesSlot uint64
}

// Coordinator is the migration entry point.
type Coordinator struct {
	store   *storageLayer
	signal  SignalPool
	headers *l1.Codec
	config  Config
}

// New creates the coordinator over the given store.
func New(store kv.Store, signal SignalPool, headers *l1.Codec, config Config) (*Coordinator, error) {
	layer := newStorageLayer(storage.NewContext("migration", store))
	if !config.Counterpart.IsZero() {
		current, err := layer.counterpart.Get()
		if err != nil {
			return nil, err
		}
		if current.IsZero() {
			if err := layer.counterpart.Set(config.Counterpart); err != nil {
				return nil, err
			}
		}
	}
	return &Coordinator{
		store:   layer,
		signal:  signal,
		headers: headers,
		config:  config,
	}, nil
}

// ReceiveSubgraph handles the bridge callback announcing a migration.
// It creates or overwrites the pending record and a disabled subgraph;
// a finished migration cannot be overwritten.
func (c *Coordinator) ReceiveSubgraph(caller meridian.Address, msg *Message) error {
	if caller != c.config.Gateway {
		return ErrNotGateway
	}
	if msg.Owner.IsZero() {
		return ErrZeroAddress
	}
	if msg.Tokens == nil || msg.Tokens.IsZero() {
		return ErrZeroTokens
	}
	record, err := c.store.getRecord(msg.SubgraphID)
	if err != nil {
		return err
	}
	if !record.IsEmpty() && record.Done {
		return ErrAlreadyMigrated
	}

	nSignal := uint256.NewInt(0)
	if msg.NSignal != nil {
		nSignal = msg.NSignal.Clone()
	}
	record = &Record{
		Tokens:            msg.Tokens.Clone(),
		NSignal:           nSignal,
		LockedAtBlockHash: msg.LockedAtBlockHash,
		Owner:             msg.Owner,
		ReserveRatio:      msg.ReserveRatio,
		Metadata:          msg.Metadata,
	}
	if err := c.store.setRecord(msg.SubgraphID, record); err != nil {
		return err
	}
	if err := c.store.setSubgraph(msg.SubgraphID, &Subgraph{
		NSignal:      nSignal.Clone(),
		VSignal:      uint256.NewInt(0),
		ReserveRatio: msg.ReserveRatio,
		Disabled:     true,
		Metadata:     msg.Metadata,
	}); err != nil {
		return err
	}
	metricsMigrations().AddWithLabel(1, map[string]string{"stage": "received"})
	logger.Info("subgraph migration received",
		"subgraph", msg.SubgraphID, "owner", msg.Owner, "tokens", msg.Tokens)
	return nil
}

// FinishMigration mints version signal for the locked tokens and
// enables the subgraph. Only the recorded owner may finish, exactly once.
func (c *Coordinator) FinishMigration(caller meridian.Address, subgraphID, deploymentID meridian.Bytes32, metadata []byte) error {
	record, err := c.store.getRecord(subgraphID)
	if err != nil {
		return err
	}
	if record.IsEmpty() || record.Done {
		return ErrNotMigrated
	}
	if caller != record.Owner {
		return ErrNotOwner
	}
	if deploymentID.IsZero() {
		return ErrDeploymentZero
	}
	existing, err := c.signal.Signal(deploymentID)
	if err != nil {
		return err
	}
	if !existing.IsZero() {
		return ErrPreCurated
	}

	vSignal, err := c.signal.MintSignalNoTax(deploymentID, record.Tokens)
	if err != nil {
		return err
	}
	subgraph, err := c.store.getSubgraph(subgraphID)
	if err != nil {
		return err
	}
	subgraph.VSignal = vSignal
	subgraph.DeploymentID = deploymentID
	subgraph.Disabled = false
	if len(metadata) > 0 {
		subgraph.Metadata = metadata
	}
	record.Done = true
	if err := c.store.setSubgraph(subgraphID, subgraph); err != nil {
		return err
	}
	if err := c.store.setRecord(subgraphID, record); err != nil {
		return err
	}
	metricsMigrations().AddWithLabel(1, map[string]string{"stage": "finished"})
	logger.Info("subgraph migration finished",
		"subgraph", subgraphID, "deployment", deploymentID, "vSignal", vSignal)
	return nil
}

// ClaimCuratorBalance proves the caller's locked signal balance on the
// counterpart chain at the migration's lock block and credits it here.
// Each curator claims at most once per subgraph.
func (c *Coordinator) ClaimCuratorBalance(
	caller meridian.Address,
	subgraphID meridian.Bytes32,
	headerRLP []byte,
	accountProof, storageProof [][]byte,
) (*uint256.Int, error) {
	record, err := c.claimableRecord(subgraphID, caller)
	if err != nil {
		return nil, err
	}
	counterpart, err := c.store.counterpart.Get()
	if err != nil {
		return nil, err
	}
	if counterpart.IsZero() {
		return nil, ErrCounterpartUnset
	}

	stateRoot, err := c.headers.StateRoot(record.LockedAtBlockHash, headerRLP)
	if err != nil {
		return nil, err
	}
	account, err := mpt.VerifyAccount(stateRoot, counterpart, accountProof)
	if err != nil {
		return nil, err
	}
	slot := curatorSlot(subgraphID, caller, c.config.CuratorBalancesSlot)
	balance, err := mpt.VerifyStorage(account.StorageRoot, slot, storageProof)
	if err != nil {
		return nil, err
	}
	if balance.IsZero() {
		return nil, ErrNoBalance
	}
	if err := c.credit(subgraphID, caller, caller, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// ClaimCuratorBalanceToBeneficiary credits a pre-validated balance the
// gateway relays on behalf of a counterpart-chain curator. The claimed
// flag is keyed by the original curator, so the proof path and this
// path cannot both pay out.
func (c *Coordinator) ClaimCuratorBalanceToBeneficiary(
	caller meridian.Address,
	subgraphID meridian.Bytes32,
	curator, beneficiary meridian.Address,
	amount *uint256.Int,
) error {
	if caller != c.config.Gateway {
		return ErrNotGateway
	}
	if beneficiary.IsZero() {
		return ErrZeroAddress
	}
	if _, err := c.claimableRecord(subgraphID, curator); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrNoBalance
	}
	return c.credit(subgraphID, curator, beneficiary, amount)
}

// claimableRecord loads the record and enforces the finalized-once
// claim guards for curator.
func (c *Coordinator) claimableRecord(subgraphID meridian.Bytes32, curator meridian.Address) (*Record, error) {
	record, err := c.store.getRecord(subgraphID)
	if err != nil {
		return nil, err
	}
	if record.IsEmpty() || !record.Done {
		return nil, ErrNotMigrated
	}
	claimed, err := c.store.isClaimed(subgraphID, curator)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, ErrAlreadyClaimed
	}
	return record, nil
}

func (c *Coordinator) credit(subgraphID meridian.Bytes32, curator, beneficiary meridian.Address, amount *uint256.Int) error {
	if err := c.store.setClaimed(subgraphID, curator); err != nil {
		return err
	}
	if err := c.store.addCuratorSignal(subgraphID, beneficiary, amount); err != nil {
		return err
	}
	metricsClaims().Add(1)
	logger.Info("curator balance claimed",
		"subgraph", subgraphID, "curator", curator, "beneficiary", beneficiary, "signal", amount)
	return nil
}

// SetCounterpartAddress changes which counterpart contract is trusted
// in claim proofs. Governor only.
func (c *Coordinator) SetCounterpartAddress(caller, addr meridian.Address) error {
	if caller != c.config.Governor {
		return ErrNotGovernor
	}
	if addr.IsZero() {
		return ErrZeroAddress
	}
	if err := c.store.counterpart.Set(addr); err != nil {
		return err
	}
	logger.Info("counterpart address updated", "address", addr)
	return nil
}

// CounterpartAddress returns the trusted counterpart contract address.
func (c *Coordinator) CounterpartAddress() (meridian.Address, error) {
	return c.store.counterpart.Get()
}

// GetRecord returns the migration record for a subgraph id.
func (c *Coordinator) GetRecord(subgraphID meridian.Bytes32) (*Record, error) {
	return c.store.getRecord(subgraphID)
}

// GetSubgraph returns the local subgraph entity.
func (c *Coordinator) GetSubgraph(subgraphID meridian.Bytes32) (*Subgraph, error) {
	return c.store.getSubgraph(subgraphID)
}

// CuratorSignal returns the signal credited to curator on a subgraph.
func (c *Coordinator) CuratorSignal(subgraphID meridian.Bytes32, curator meridian.Address) (*uint256.Int, error) {
	return c.store.getCuratorSignal(subgraphID, curator)
}

// curatorSlot derives the counterpart contract storage slot holding
// curator's signal: the nested mapping entry at
// keccak(pad32(curator) . keccak(subgraphID . pad32(baseSlot))).
func curatorSlot(subgraphID meridian.Bytes32, curator meridian.Address, baseSlot uint64) meridian.Bytes32 {
	base := uint256.NewInt(baseSlot).Bytes32()
	inner := meridian.Keccak256(subgraphID.Bytes(), base[:])
	var padded [32]byte
	copy(padded[12:], curator.Bytes())
	return meridian.Keccak256(padded[:], inner.Bytes())
}
