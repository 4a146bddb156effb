// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-index/meridian/lvldb"
	"github.com/meridian-index/meridian/meridian"
)

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext("test", db)
}

func slot(name string) meridian.Bytes32 {
	return meridian.BytesToBytes32([]byte(name))
}

func TestUint256Cell(t *testing.T) {
	ctx := newTestContext(t)
	cell := NewUint256(ctx, slot("counter"))

	v, err := cell.Get()
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	assert.NoError(t, cell.Set(uint256.NewInt(42)))
	v, err = cell.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(42), v)

	assert.NoError(t, cell.Add(uint256.NewInt(8)))
	v, _ = cell.Get()
	assert.Equal(t, uint256.NewInt(50), v)

	assert.NoError(t, cell.Sub(uint256.NewInt(50)))
	v, _ = cell.Get()
	assert.True(t, v.IsZero())

	assert.Error(t, cell.Sub(uint256.NewInt(1)))
}

func TestUint64Cell(t *testing.T) {
	ctx := newTestContext(t)
	cell := NewUint64(ctx, slot("nonce"))

	v, err := cell.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	assert.NoError(t, cell.Set(7))
	v, _ = cell.Get()
	assert.Equal(t, uint64(7), v)
}

func TestAddressAndBytes32Cells(t *testing.T) {
	ctx := newTestContext(t)

	addrCell := NewAddress(ctx, slot("addr"))
	addr, err := addrCell.Get()
	assert.NoError(t, err)
	assert.True(t, addr.IsZero())

	want := meridian.BytesToAddress([]byte{0xaa})
	assert.NoError(t, addrCell.Set(want))
	addr, _ = addrCell.Get()
	assert.Equal(t, want, addr)

	b32Cell := NewBytes32(ctx, slot("hash"))
	assert.NoError(t, b32Cell.Set(meridian.BytesToBytes32([]byte{0xbb})))
	b32, _ := b32Cell.Get()
	assert.Equal(t, meridian.BytesToBytes32([]byte{0xbb}), b32)
}

type testEntry struct {
	Amount *uint256.Int
	Label  []byte
}

func (e *testEntry) IsEmpty() bool {
	return e.Amount == nil && len(e.Label) == 0
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[meridian.Address, *testEntry](ctx, slot("entries"))

	key := meridian.BytesToAddress([]byte{1})

	// absent key yields a non-nil empty value
	entry, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.IsEmpty())

	has, err := m.Has(key)
	assert.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, m.Set(key, &testEntry{Amount: uint256.NewInt(100), Label: []byte("x")}))

	entry, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), entry.Amount)
	assert.Equal(t, []byte("x"), entry.Label)

	has, _ = m.Has(key)
	assert.True(t, has)

	require.NoError(t, m.Delete(key))
	entry, err = m.Get(key)
	require.NoError(t, err)
	assert.True(t, entry.IsEmpty())
}

func TestContextIsolation(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	a := NewUint64(NewContext("a", db), slot("x"))
	b := NewUint64(NewContext("b", db), slot("x"))

	require.NoError(t, a.Set(1))
	v, err := b.Get()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}
