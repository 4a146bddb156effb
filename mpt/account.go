// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mpt

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
)

// Account is the state trie entry of an externally observed account.
type Account struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot meridian.Bytes32
	CodeHash    []byte
}

// VerifyAccount proves an account against a state root and returns it.
// The trie key is the keccak hash of the address.
func VerifyAccount(stateRoot meridian.Bytes32, addr meridian.Address, proof [][]byte) (*Account, error) {
	key := meridian.Keccak256(addr.Bytes())
	raw, err := Verify(stateRoot, key.Bytes(), proof)
	if err != nil {
		return nil, err
	}
	var account Account
	if err := rlp.DecodeBytes(raw, &account); err != nil {
		return nil, errors.Wrap(err, "decode account")
	}
	return &account, nil
}

// VerifyStorage proves one storage slot of an account against its
// storage root. Only membership proofs are supported: a slot that is
// absent from the trie fails with ErrKeyNotFound.
func VerifyStorage(storageRoot meridian.Bytes32, slot meridian.Bytes32, proof [][]byte) (*uint256.Int, error) {
	key := meridian.Keccak256(slot.Bytes())
	raw, err := Verify(storageRoot, key.Bytes(), proof)
	if err != nil {
		return nil, err
	}
	value := new(uint256.Int)
	if err := rlp.DecodeBytes(raw, value); err != nil {
		return nil, errors.Wrap(err, "decode storage value")
	}
	return value, nil
}
