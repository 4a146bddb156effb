// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mpt

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-index/meridian/meridian"
)

// compact hex-prefix encodes a nibble path.
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

func shortNode(t *testing.T, compactKey, val []byte) []byte {
	raw, err := rlp.EncodeToBytes([][]byte{compactKey, val})
	require.NoError(t, err)
	return raw
}

// branchNode builds a 17-item node; children values are raw RLP items.
func branchNode(t *testing.T, children map[int][]byte) []byte {
	items := make([]rlp.RawValue, 17)
	for i := range items {
		items[i] = rlp.RawValue{0x80}
	}
	for i, c := range children {
		items[i] = c
	}
	raw, err := rlp.EncodeToBytes(items)
	require.NoError(t, err)
	return raw
}

// hashRef returns the RLP string item referencing node by hash.
func hashRef(t *testing.T, node []byte) []byte {
	raw, err := rlp.EncodeToBytes(meridian.Keccak256(node).Bytes())
	require.NoError(t, err)
	return raw
}

func TestVerifySingleLeaf(t *testing.T) {
	key := []byte("key-1")
	value := []byte("a value long enough to keep the node from being embedded")
	leaf := shortNode(t, compact(toNibbles(key), true), value)
	root := meridian.Keccak256(leaf)

	got, err := Verify(root, key, [][]byte{leaf})
	require.NoError(t, err)
	assert.Equal(t, value, got)

	_, err = Verify(meridian.Bytes32{}, key, [][]byte{leaf})
	assert.ErrorIs(t, err, ErrInvalidRootHash)

	_, err = Verify(root, []byte("key-2"), [][]byte{leaf})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = Verify(root, key, nil)
	assert.ErrorIs(t, err, ErrProofExhausted)
}

func TestVerifyBranchEmbedded(t *testing.T) {
	// keys "a" (0x61) and "q" (0x71) split at the first nibble; the
	// leaves are small, so they embed into the branch directly
	leafA := shortNode(t, compact([]byte{1}, true), []byte("short-a"))
	leafQ := shortNode(t, compact([]byte{1}, true), []byte("short-q"))
	branch := branchNode(t, map[int][]byte{6: leafA, 7: leafQ})
	root := meridian.Keccak256(branch)

	got, err := Verify(root, []byte("a"), [][]byte{branch})
	require.NoError(t, err)
	assert.Equal(t, []byte("short-a"), got)

	got, err = Verify(root, []byte("q"), [][]byte{branch})
	require.NoError(t, err)
	assert.Equal(t, []byte("short-q"), got)

	// same first nibble, diverging second
	_, err = Verify(root, []byte("b"), [][]byte{branch})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// empty branch slot
	_, err = Verify(root, []byte("Q"), [][]byte{branch})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestVerifyBranchHashed(t *testing.T) {
	valueA := []byte("value a, padded well past thirty-two bytes ........")
	valueQ := []byte("value q, padded well past thirty-two bytes ........")
	leafA := shortNode(t, compact([]byte{1}, true), valueA)
	leafQ := shortNode(t, compact([]byte{1}, true), valueQ)
	branch := branchNode(t, map[int][]byte{
		6: hashRef(t, leafA),
		7: hashRef(t, leafQ),
	})
	root := meridian.Keccak256(branch)

	got, err := Verify(root, []byte("a"), [][]byte{branch, leafA})
	require.NoError(t, err)
	assert.Equal(t, valueA, got)

	// the second element must hash to the branch's reference
	_, err = Verify(root, []byte("a"), [][]byte{branch, leafQ})
	assert.ErrorIs(t, err, ErrInvalidNodeHash)

	_, err = Verify(root, []byte("a"), [][]byte{branch})
	assert.ErrorIs(t, err, ErrProofExhausted)
}

func TestVerifyExtension(t *testing.T) {
	// keys "ab" and "ac" share the nibble prefix [6 1 6]
	leafB := shortNode(t, compact(nil, true), []byte("vb"))
	leafC := shortNode(t, compact(nil, true), []byte("vc"))
	branch := branchNode(t, map[int][]byte{2: leafB, 3: leafC})
	// splice the embedded branch in as the extension's child
	items := []rlp.RawValue{mustEncode(t, compact([]byte{6, 1, 6}, false)), branch}
	ext, err := rlp.EncodeToBytes(items)
	require.NoError(t, err)
	root := meridian.Keccak256(ext)

	got, err := Verify(root, []byte("ab"), [][]byte{ext})
	require.NoError(t, err)
	assert.Equal(t, []byte("vb"), got)

	got, err = Verify(root, []byte("ac"), [][]byte{ext})
	require.NoError(t, err)
	assert.Equal(t, []byte("vc"), got)

	_, err = Verify(root, []byte("ad"), [][]byte{ext})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = Verify(root, []byte("xy"), [][]byte{ext})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func mustEncode(t *testing.T, b []byte) rlp.RawValue {
	raw, err := rlp.EncodeToBytes(b)
	require.NoError(t, err)
	return raw
}

func TestVerifyAccountAndStorage(t *testing.T) {
	addr := meridian.BytesToAddress([]byte("some-account"))
	slot := meridian.BytesToBytes32([]byte{7})

	// single-leaf storage trie holding 42 at the slot
	storageValue, err := rlp.EncodeToBytes(uint256.NewInt(42))
	require.NoError(t, err)
	storageKey := meridian.Keccak256(slot.Bytes())
	storageLeaf := shortNode(t, compact(toNibbles(storageKey.Bytes()), true), storageValue)
	storageRoot := meridian.Keccak256(storageLeaf)

	account := &Account{
		Nonce:       1,
		Balance:     uint256.NewInt(1000),
		StorageRoot: storageRoot,
		CodeHash:    meridian.Keccak256(nil).Bytes(),
	}
	accountRLP, err := rlp.EncodeToBytes(account)
	require.NoError(t, err)
	accountKey := meridian.Keccak256(addr.Bytes())
	accountLeaf := shortNode(t, compact(toNibbles(accountKey.Bytes()), true), accountRLP)
	stateRoot := meridian.Keccak256(accountLeaf)

	proven, err := VerifyAccount(stateRoot, addr, [][]byte{accountLeaf})
	require.NoError(t, err)
	assert.Equal(t, account.Nonce, proven.Nonce)
	assert.Equal(t, account.Balance, proven.Balance)
	assert.Equal(t, storageRoot, proven.StorageRoot)

	_, err = VerifyAccount(stateRoot, meridian.BytesToAddress([]byte("other")), [][]byte{accountLeaf})
	assert.ErrorIs(t, err, ErrKeyNotFound)

	value, err := VerifyStorage(proven.StorageRoot, slot, [][]byte{storageLeaf})
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42), value)

	// membership proofs only: an absent slot is an error, not zero
	_, err = VerifyStorage(proven.StorageRoot, meridian.BytesToBytes32([]byte{9}), [][]byte{storageLeaf})
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
