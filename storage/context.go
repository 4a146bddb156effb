// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed cells over a raw key-value store, similar to
// contract storage slots. Values live at positions derived from a declared
// slot, scoped by a per-component space so components never collide.
package storage

import (
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/kv"
	"github.com/meridian-index/meridian/meridian"
)

// Context scopes storage cells of one component.
type Context struct {
	space []byte
	store kv.Store
}

// NewContext creates a context over the store, scoped by space.
func NewContext(space string, store kv.Store) *Context {
	return &Context{
		space: []byte(space),
		store: store,
	}
}

func (c *Context) key(pos meridian.Bytes32) []byte {
	k := meridian.Keccak256(c.space, pos.Bytes())
	return k.Bytes()
}

// GetRaw loads raw bytes at pos. Absent positions load as empty.
func (c *Context) GetRaw(pos meridian.Bytes32) ([]byte, error) {
	raw, err := c.store.Get(c.key(pos))
	if err != nil {
		if c.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get storage")
	}
	return raw, nil
}

// PutRaw stores raw bytes at pos. Empty bytes clear the position.
func (c *Context) PutRaw(pos meridian.Bytes32, raw []byte) error {
	if len(raw) == 0 {
		if err := c.store.Delete(c.key(pos)); err != nil {
			return errors.Wrap(err, "clear storage")
		}
		return nil
	}
	if err := c.store.Put(c.key(pos), raw); err != nil {
		return errors.Wrap(err, "put storage")
	}
	return nil
}
