// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package l1

import (
	"github.com/meridian-index/meridian/cache"
	"github.com/meridian-index/meridian/meridian"
)

// Codec verifies headers and caches block hash to state root lookups,
// since migration claims tend to reference the same few lock blocks.
type Codec struct {
	roots *cache.LRU[meridian.Bytes32, meridian.Bytes32]
}

// NewCodec creates a codec caching up to cacheSize verified roots.
func NewCodec(cacheSize int) (*Codec, error) {
	roots, err := cache.NewLRU[meridian.Bytes32, meridian.Bytes32](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Codec{roots: roots}, nil
}

// StateRoot returns the state root sealed by the header raw, verified
// against blockHash.
func (c *Codec) StateRoot(blockHash meridian.Bytes32, raw []byte) (meridian.Bytes32, error) {
	return c.roots.GetOrLoad(blockHash, func(meridian.Bytes32) (meridian.Bytes32, error) {
		header, err := DecodeHeader(raw, blockHash)
		if err != nil {
			return meridian.Bytes32{}, err
		}
		return header.StateRoot(), nil
	})
}
