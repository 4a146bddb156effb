// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package l1 decodes counterpart-chain block headers so that state
// roots used for proof verification are bound to a block hash the
// caller already trusts.
package l1

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/reverts"
)

var ErrBlockHashMismatch = reverts.New(reverts.KindProofVerification, "header does not hash to the expected block hash")

// headerBody is the consensus RLP layout of a counterpart chain block
// header. Fields after Nonce are fork-dependent and optional.
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

	BaseFee          *big.Int          `rlp:"optional"`
	WithdrawalsRoot  *meridian.Bytes32 `rlp:"optional"`
	BlobGasUsed      *uint64           `rlp:"optional"`
	ExcessBlobGas    *uint64           `rlp:"optional"`
	ParentBeaconRoot *meridian.Bytes32 `rlp:"optional"`
	RequestsHash     *meridian.Bytes32 `rlp:"optional"`
}

// Header is a decoded counterpart chain block header, bound to the
// block hash it was verified against.
type Header struct {
	body headerBody
	hash meridian.Bytes32
}

// DecodeHeader decodes raw and verifies it hashes to blockHash.
func DecodeHeader(raw []byte, blockHash meridian.Bytes32) (*Header, error) {
	if meridian.Keccak256(raw) != blockHash {
		return nil, ErrBlockHashMismatch
	}
	var body headerBody
	if err := rlp.DecodeBytes(raw, &body); err != nil {
		return nil, errors.Wrap(err, "decode header")
	}
	return &Header{body: body, hash: blockHash}, nil
}

// Hash returns the verified block hash.
func (h *Header) Hash() meridian.Bytes32 { return h.hash }

// ParentHash returns the parent block hash.
func (h *Header) ParentHash() meridian.Bytes32 { return h.body.ParentHash }

// StateRoot returns the state trie root sealed by this header.
func (h *Header) StateRoot() meridian.Bytes32 { return h.body.StateRoot }

// Number returns the block number.
func (h *Header) Number() *big.Int { return new(big.Int).Set(h.body.Number) }

// Time returns the block timestamp, seconds.
func (h *Header) Time() uint64 { return h.body.Time }
