// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
)

// Key is anything usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Values are RLP encoded at positions derived from the base position and the key.
type Mapping[K Key, V any] struct {
	context *Context
	basePos meridian.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos meridian.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) meridian.Bytes32 {
	return meridian.Keccak256(key.Bytes(), m.basePos.Bytes())
}

// Get loads the value at key. An absent key loads as the empty value
// (for pointer types, a pointer to the zero value).
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := m.context.GetRaw(m.position(key))
	if err != nil {
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	if err := rlp.DecodeBytes(raw, &value); err != nil {
		return value, errors.Wrap(err, "decode mapping value")
	}
	return value, nil
}

// Set stores the value at key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return errors.Wrap(err, "encode mapping value")
	}
	return m.context.PutRaw(m.position(key), raw)
}

// Delete removes the value at key.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.context.PutRaw(m.position(key), nil)
}

// Has returns whether key holds a value.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.GetRaw(m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}
