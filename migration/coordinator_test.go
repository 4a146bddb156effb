// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-index/meridian/l1"
	"github.com/meridian-index/meridian/lvldb"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/mpt"
)

var (
	gateway     = meridian.BytesToAddress([]byte("gateway"))
	governor    = meridian.BytesToAddress([]byte("governor"))
	counterpart = meridian.BytesToAddress([]byte("counterpart"))
	owner       = meridian.BytesToAddress([]byte("owner"))
	curator     = meridian.BytesToAddress([]byte("curator"))

	subgraphID   = meridian.BytesToBytes32([]byte("subgraph-1"))
	deploymentID = meridian.BytesToBytes32([]byte("deployment-1"))
)

const balancesSlot = 8

func newTestCoordinator(t *testing.T) *Coordinator {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	headers, err := l1.NewCodec(16)
	require.NoError(t, err)
	coordinator, err := New(db, NewLinearSignalPool(db), headers, Config{
		Gateway:             gateway,
		Governor:            governor,
		Counterpart:         counterpart,
		CuratorBalancesSlot: balancesSlot,
	})
	require.NoError(t, err)
	return coordinator
}

func migrationMessage(tokens uint64) *Message {
	return &Message{
		SubgraphID:        subgraphID,
		Owner:             owner,
		Tokens:            grt(tokens),
		LockedAtBlockHash: meridian.BytesToBytes32([]byte("lock-block")),
		NSignal:           uint256.NewInt(4567),
		ReserveRatio:      500_000,
		Metadata:          []byte("meta"),
	}
}

func grt(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

func TestReceiveSubgraph(t *testing.T) {
	c := newTestCoordinator(t)
	msg := migrationMessage(1337)

	assert.ErrorIs(t, c.ReceiveSubgraph(owner, msg), ErrNotGateway)

	zeroOwner := *msg
	zeroOwner.Owner = meridian.Address{}
	assert.ErrorIs(t, c.ReceiveSubgraph(gateway, &zeroOwner), ErrZeroAddress)

	zeroTokens := *msg
	zeroTokens.Tokens = uint256.NewInt(0)
	assert.ErrorIs(t, c.ReceiveSubgraph(gateway, &zeroTokens), ErrZeroTokens)

	require.NoError(t, c.ReceiveSubgraph(gateway, msg))

	record, err := c.GetRecord(subgraphID)
	require.NoError(t, err)
	require.False(t, record.IsEmpty())
	assert.Equal(t, grt(1337), record.Tokens)
	assert.Equal(t, owner, record.Owner)
	assert.False(t, record.Done)

	subgraph, err := c.GetSubgraph(subgraphID)
	require.NoError(t, err)
	assert.True(t, subgraph.Disabled)
	assert.True(t, subgraph.VSignal.IsZero())
	assert.True(t, subgraph.DeploymentID.IsZero())
	assert.Equal(t, uint256.NewInt(4567), subgraph.NSignal)

	// a pending migration may be re-delivered and overwritten
	redelivered := migrationMessage(2000)
	require.NoError(t, c.ReceiveSubgraph(gateway, redelivered))
	record, err = c.GetRecord(subgraphID)
	require.NoError(t, err)
	assert.Equal(t, grt(2000), record.Tokens)
}

func TestFinishMigration(t *testing.T) {
	c := newTestCoordinator(t)

	err := c.FinishMigration(owner, subgraphID, deploymentID, nil)
	assert.ErrorIs(t, err, ErrNotMigrated)

	require.NoError(t, c.ReceiveSubgraph(gateway, migrationMessage(1337)))

	assert.ErrorIs(t, c.FinishMigration(curator, subgraphID, deploymentID, nil), ErrNotOwner)
	assert.ErrorIs(t, c.FinishMigration(owner, subgraphID, meridian.Bytes32{}, nil), ErrDeploymentZero)

	require.NoError(t, c.FinishMigration(owner, subgraphID, deploymentID, []byte("v2")))

	subgraph, err := c.GetSubgraph(subgraphID)
	require.NoError(t, err)
	assert.False(t, subgraph.Disabled)
	assert.Equal(t, deploymentID, subgraph.DeploymentID)
	assert.Equal(t, grt(1337), subgraph.VSignal)
	assert.Equal(t, []byte("v2"), subgraph.Metadata)

	record, err := c.GetRecord(subgraphID)
	require.NoError(t, err)
	assert.True(t, record.Done)

	// finishing twice fails, as does re-delivering a finished migration
	assert.ErrorIs(t, c.FinishMigration(owner, subgraphID, deploymentID, nil), ErrNotMigrated)
	assert.ErrorIs(t, c.ReceiveSubgraph(gateway, migrationMessage(1)), ErrAlreadyMigrated)
}

func TestFinishMigrationPreCurated(t *testing.T) {
	c := newTestCoordinator(t)
	require.NoError(t, c.ReceiveSubgraph(gateway, migrationMessage(1337)))

	// someone curated the target deployment before the migration landed
	_, err := c.signal.MintSignalNoTax(deploymentID, grt(1))
	require.NoError(t, err)

	assert.ErrorIs(t, c.FinishMigration(owner, subgraphID, deploymentID, nil), ErrPreCurated)
}

// headerBody mirrors the counterpart chain header layout for building
// test fixtures.
type headerBody struct {
	ParentHash  meridian.Bytes32
	UncleHash   meridian.Bytes32
	Coinbase    meridian.Address
	StateRoot   meridian.Bytes32
	TxRoot      meridian.Bytes32
	ReceiptRoot meridian.Bytes32
	Bloom       [256]byte
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   meridian.Bytes32
	Nonce       [8]byte
}

func compact(nibbles []byte, leaf bool) []byte {
	var flags byte
	if leaf {
		flags = 2
	}
	var out []byte
	if len(nibbles)%2 == 1 {
		out = append(out, (flags|1)<<4|nibbles[0])
		nibbles = nibbles[1:]
	} else {
		out = append(out, flags<<4)
	}
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, nibbles[i]<<4|nibbles[i+1])
	}
	return out
}

func leafNode(t *testing.T, key meridian.Bytes32, val []byte) []byte {
	var nibbles []byte
	for _, b := range key.Bytes() {
		nibbles = append(nibbles, b>>4, b&0x0f)
	}
	raw, err := rlp.EncodeToBytes([][]byte{compact(nibbles, true), val})
	require.NoError(t, err)
	return raw
}

// claimFixture builds a header plus the two proofs backing a claim of
// balance for curator on subgraphID.
type claimFixture struct {
	headerRLP    []byte
	blockHash    meridian.Bytes32
	accountProof [][]byte
	storageProof [][]byte
}

func buildClaimFixture(t *testing.T, balance *uint256.Int) *claimFixture {
	slot := curatorSlot(subgraphID, curator, balancesSlot)
	storageValue, err := rlp.EncodeToBytes(balance)
	require.NoError(t, err)
	storageLeaf := leafNode(t, meridian.Keccak256(slot.Bytes()), storageValue)
	storageRoot := meridian.Keccak256(storageLeaf)

	accountRLP, err := rlp.EncodeToBytes(&mpt.Account{
		Balance:     uint256.NewInt(0),
		StorageRoot: storageRoot,
		CodeHash:    meridian.Keccak256(nil).Bytes(),
	})
	require.NoError(t, err)
	accountLeaf := leafNode(t, meridian.Keccak256(counterpart.Bytes()), accountRLP)
	stateRoot := meridian.Keccak256(accountLeaf)

	headerRLP, err := rlp.EncodeToBytes(&headerBody{
		StateRoot:  stateRoot,
		Difficulty: big.NewInt(1),
		Number:     big.NewInt(15_000_000),
		Time:       1700000000,
	})
	require.NoError(t, err)

	return &claimFixture{
		headerRLP:    headerRLP,
		blockHash:    meridian.Keccak256(headerRLP),
		accountProof: [][]byte{accountLeaf},
		storageProof: [][]byte{storageLeaf},
	}
}

func receiveAndFinish(t *testing.T, c *Coordinator, lockBlockHash meridian.Bytes32) {
	msg := migrationMessage(1337)
	msg.LockedAtBlockHash = lockBlockHash
	require.NoError(t, c.ReceiveSubgraph(gateway, msg))
	require.NoError(t, c.FinishMigration(owner, subgraphID, deploymentID, nil))
}

func TestClaimCuratorBalance(t *testing.T) {
	c := newTestCoordinator(t)
	fixture := buildClaimFixture(t, uint256.NewInt(500))

	_, err := c.ClaimCuratorBalance(curator, subgraphID, fixture.headerRLP, fixture.accountProof, fixture.storageProof)
	assert.ErrorIs(t, err, ErrNotMigrated)

	receiveAndFinish(t, c, fixture.blockHash)

	claimed, err := c.ClaimCuratorBalance(curator, subgraphID, fixture.headerRLP, fixture.accountProof, fixture.storageProof)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), claimed)

	signal, err := c.CuratorSignal(subgraphID, curator)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), signal)

	// once per curator, no matter the proof
	_, err = c.ClaimCuratorBalance(curator, subgraphID, fixture.headerRLP, fixture.accountProof, fixture.storageProof)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestClaimProofFailures(t *testing.T) {
	c := newTestCoordinator(t)
	fixture := buildClaimFixture(t, uint256.NewInt(500))
	receiveAndFinish(t, c, fixture.blockHash)

	// header not matching the lock block hash fails before any proof walk
	_, err := c.ClaimCuratorBalance(curator, subgraphID, []byte("bogus header"), fixture.accountProof, fixture.storageProof)
	assert.ErrorIs(t, err, l1.ErrBlockHashMismatch)

	// account proof against the wrong root
	_, err = c.ClaimCuratorBalance(curator, subgraphID, fixture.headerRLP, fixture.storageProof, fixture.storageProof)
	assert.ErrorIs(t, err, mpt.ErrInvalidRootHash)

	// a proof for a different curator's slot: right root, absent key
	other := meridian.BytesToAddress([]byte("other-curator"))
	_, err = c.ClaimCuratorBalance(other, subgraphID, fixture.headerRLP, fixture.accountProof, fixture.storageProof)
	assert.ErrorIs(t, err, mpt.ErrKeyNotFound)

	// claims failed on proof grounds stay claimable
	claimed, err := c.ClaimCuratorBalance(curator, subgraphID, fixture.headerRLP, fixture.accountProof, fixture.storageProof)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), claimed)
}

func TestClaimToBeneficiary(t *testing.T) {
	c := newTestCoordinator(t)
	fixture := buildClaimFixture(t, uint256.NewInt(500))
	receiveAndFinish(t, c, fixture.blockHash)
	beneficiary := meridian.BytesToAddress([]byte("beneficiary"))

	err := c.ClaimCuratorBalanceToBeneficiary(owner, subgraphID, curator, beneficiary, uint256.NewInt(300))
	assert.ErrorIs(t, err, ErrNotGateway)

	err = c.ClaimCuratorBalanceToBeneficiary(gateway, subgraphID, curator, beneficiary, uint256.NewInt(0))
	assert.ErrorIs(t, err, ErrNoBalance)

	require.NoError(t, c.ClaimCuratorBalanceToBeneficiary(gateway, subgraphID, curator, beneficiary, uint256.NewInt(300)))

	signal, err := c.CuratorSignal(subgraphID, beneficiary)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(300), signal)

	// the gateway claim consumes the curator's once-only claim
	_, err = c.ClaimCuratorBalance(curator, subgraphID, fixture.headerRLP, fixture.accountProof, fixture.storageProof)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestSetCounterpartAddress(t *testing.T) {
	c := newTestCoordinator(t)
	next := meridian.BytesToAddress([]byte("counterpart-2"))

	assert.ErrorIs(t, c.SetCounterpartAddress(owner, next), ErrNotGovernor)
	assert.ErrorIs(t, c.SetCounterpartAddress(governor, meridian.Address{}), ErrZeroAddress)

	require.NoError(t, c.SetCounterpartAddress(governor, next))
	current, err := c.CounterpartAddress()
	require.NoError(t, err)
	assert.Equal(t, next, current)
}
