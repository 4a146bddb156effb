// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-index/meridian/health"
	"github.com/meridian-index/meridian/lvldb"
)

func TestStatus(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	h := health.New(store)

	status, err := h.Status()
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.True(t, status.StoreReadable)
	assert.Nil(t, status.LastOperation)

	h.MarkOperation("stake")

	status, err = h.Status()
	require.NoError(t, err)
	require.NotNil(t, status.LastOperation)
	assert.Equal(t, "stake", status.LastOperationName)
}
