// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package mpt verifies Merkle-Patricia inclusion proofs against a state
// root, without materializing a trie. Proofs are the ordered list of
// trie nodes on the path from the root to the proven key, as produced
// by eth_getProof.
package mpt

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/reverts"
)

var (
	ErrInvalidRootHash = reverts.New(reverts.KindProofVerification, "proof does not match the expected root hash")
	ErrInvalidNodeHash = reverts.New(reverts.KindProofVerification, "proof node does not match its reference hash")
	ErrKeyNotFound     = reverts.New(reverts.KindProofVerification, "key not present in the trie")
	ErrProofExhausted  = reverts.New(reverts.KindProofVerification, "proof ended before resolving the key")
	ErrMalformedNode   = reverts.New(reverts.KindProofVerification, "malformed proof node")
)

// Verify walks proof from root towards key and returns the proven value.
// Every node must hash to the reference held by its parent; the first
// node must hash to root itself.
func Verify(root meridian.Bytes32, key []byte, proof [][]byte) ([]byte, error) {
	nibbles := toNibbles(key)
	want := root.Bytes()
	for i, elem := range proof {
		h := meridian.Keccak256(elem)
		if !bytes.Equal(h.Bytes(), want) {
			if i == 0 {
				return nil, ErrInvalidRootHash
			}
			return nil, ErrInvalidNodeHash
		}
		value, next, rest, err := step(elem, nibbles)
		if err != nil {
			return nil, err
		}
		if value != nil {
			return value, nil
		}
		want, nibbles = next, rest
	}
	return nil, ErrProofExhausted
}

// step walks a single proof element, descending embedded child nodes in
// place, until it resolves the value or a hash reference to the next
// element. Exactly one of value and next is returned.
func step(node, nibbles []byte) (value, next, rest []byte, err error) {
	for {
		elems, _, err := rlp.SplitList(node)
		if err != nil {
			return nil, nil, nil, ErrMalformedNode
		}
		switch count, _ := rlp.CountValues(elems); count {
		case 17:
			idx := 16
			if len(nibbles) > 0 {
				idx = int(nibbles[0])
				nibbles = nibbles[1:]
			}
			item, content, isList, err := child(elems, idx)
			if err != nil {
				return nil, nil, nil, err
			}
			if idx == 16 {
				// value slot of the branch
				if isList {
					return nil, nil, nil, ErrMalformedNode
				}
				if len(content) == 0 {
					return nil, nil, nil, ErrKeyNotFound
				}
				return content, nil, nil, nil
			}
			if isList {
				// short subtree embedded instead of hashed
				node = item
				continue
			}
			switch len(content) {
			case 0:
				return nil, nil, nil, ErrKeyNotFound
			case 32:
				return nil, content, nibbles, nil
			default:
				return nil, nil, nil, ErrMalformedNode
			}
		case 2:
			kbuf, tail, err := rlp.SplitString(elems)
			if err != nil {
				return nil, nil, nil, ErrMalformedNode
			}
			path, leaf := compactToNibbles(kbuf)
			if len(path) > len(nibbles) || !bytes.Equal(nibbles[:len(path)], path) {
				return nil, nil, nil, ErrKeyNotFound
			}
			nibbles = nibbles[len(path):]
			if leaf {
				if len(nibbles) != 0 {
					return nil, nil, nil, ErrKeyNotFound
				}
				val, _, err := rlp.SplitString(tail)
				if err != nil || len(val) == 0 {
					return nil, nil, nil, ErrMalformedNode
				}
				return val, nil, nil, nil
			}
			item, content, isList, err := child(tail, 0)
			if err != nil {
				return nil, nil, nil, err
			}
			if isList {
				node = item
				continue
			}
			if len(content) != 32 {
				return nil, nil, nil, ErrMalformedNode
			}
			return nil, content, nibbles, nil
		default:
			return nil, nil, nil, ErrMalformedNode
		}
	}
}

// child returns the idx-th item of an RLP list payload: the raw item,
// its content and whether it is itself a list (an embedded node).
func child(elems []byte, idx int) (item, content []byte, isList bool, err error) {
	rest := elems
	for i := 0; i < idx; i++ {
		if _, _, rest, err = rlp.Split(rest); err != nil {
			return nil, nil, false, ErrMalformedNode
		}
	}
	kind, content, tail, err := rlp.Split(rest)
	if err != nil {
		return nil, nil, false, ErrMalformedNode
	}
	return rest[:len(rest)-len(tail)], content, kind == rlp.List, nil
}

// toNibbles expands key bytes into hex nibbles, high first.
func toNibbles(key []byte) []byte {
	nibbles := make([]byte, 0, len(key)*2)
	for _, b := range key {
		nibbles = append(nibbles, b>>4, b&0x0f)
	}
	return nibbles
}

// compactToNibbles decodes a hex-prefix encoded node path and reports
// whether the node is a leaf.
func compactToNibbles(buf []byte) (nibbles []byte, leaf bool) {
	if len(buf) == 0 {
		return nil, false
	}
	flags := buf[0] >> 4
	leaf = flags&2 != 0
	if flags&1 != 0 {
		nibbles = append(nibbles, buf[0]&0x0f)
	}
	for _, b := range buf[1:] {
		nibbles = append(nibbles, b>>4, b&0x0f)
	}
	return nibbles, leaf
}
