// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/meridian-index/meridian/cache"
)

func TestGetOrLoad(t *testing.T) {
	c, err := cache.NewLRU[int, int](4)
	assert.Nil(t, err)

	loads := 0
	loader := func(key int) (int, error) {
		loads++
		return key * 2, nil
	}

	v, err := c.GetOrLoad(21, loader)
	assert.Nil(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, loads)

	v, err = c.GetOrLoad(21, loader)
	assert.Nil(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(7, func(int) (int, error) {
		return 0, errors.New("load failed")
	})
	assert.EqualError(t, err, "load failed")
	assert.False(t, c.Contains(7))
}

func TestGetAddRemove(t *testing.T) {
	c, err := cache.NewLRU[string, int](4)
	assert.Nil(t, err)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Add("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Len())

	c.Remove("a")
	assert.False(t, c.Contains("a"))
	assert.Zero(t, c.Len())
}
