// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
)

// Uint256 is a wrapper for storage and retrieval of an uint256,
// similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     meridian.Bytes32
}

func NewUint256(context *Context, pos meridian.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	raw, err := u.context.GetRaw(u.pos)
	if err != nil {
		return nil, err
	}
	return uint256.NewInt(0).SetBytes(raw), nil
}

func (u *Uint256) Set(value *uint256.Int) error {
	return u.context.PutRaw(u.pos, value.Bytes())
}

func (u *Uint256) Add(value *uint256.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	if _, overflow := stored.AddOverflow(stored, value); overflow {
		return errors.New("uint256 cell overflow")
	}
	return u.Set(stored)
}

func (u *Uint256) Sub(value *uint256.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	if _, underflow := stored.SubOverflow(stored, value); underflow {
		return errors.New("uint256 cell underflow")
	}
	return u.Set(stored)
}

// Uint64 is a wrapper for storage and retrieval of an uint64 counter.
type Uint64 struct {
	context *Context
	pos     meridian.Bytes32
}

func NewUint64(context *Context, pos meridian.Bytes32) *Uint64 {
	return &Uint64{context: context, pos: pos}
}

func (u *Uint64) Get() (uint64, error) {
	raw, err := u.context.GetRaw(u.pos)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.New("corrupted uint64 cell")
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (u *Uint64) Set(value uint64) error {
	if value == 0 {
		return u.context.PutRaw(u.pos, nil)
	}
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, value)
	return u.context.PutRaw(u.pos, raw)
}

// Bytes32 is a wrapper for storage and retrieval of [32]byte.
type Bytes32 struct {
	context *Context
	pos     meridian.Bytes32
}

func NewBytes32(context *Context, pos meridian.Bytes32) *Bytes32 {
	return &Bytes32{context: context, pos: pos}
}

func (b *Bytes32) Get() (meridian.Bytes32, error) {
	raw, err := b.context.GetRaw(b.pos)
	if err != nil {
		return meridian.Bytes32{}, err
	}
	return meridian.BytesToBytes32(raw), nil
}

func (b *Bytes32) Set(value meridian.Bytes32) error {
	if value.IsZero() {
		return b.context.PutRaw(b.pos, nil)
	}
	return b.context.PutRaw(b.pos, value.Bytes())
}

// Address is a wrapper for storage and retrieval of an address.
type Address struct {
	context *Context
	pos     meridian.Bytes32
}

func NewAddress(context *Context, pos meridian.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (meridian.Address, error) {
	raw, err := a.context.GetRaw(a.pos)
	if err != nil {
		return meridian.Address{}, err
	}
	return meridian.BytesToAddress(raw), nil
}

func (a *Address) Set(addr meridian.Address) error {
	if addr.IsZero() {
		return a.context.PutRaw(a.pos, nil)
	}
	return a.context.PutRaw(a.pos, addr.Bytes())
}
