// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/meridian-index/meridian/kv"
)

type Status struct {
	Healthy           bool       `json:"healthy"`
	StoreReadable     bool       `json:"storeReadable"`
	LastOperation     *time.Time `json:"lastOperation"`
	LastOperationName string     `json:"lastOperationName"`
}

type Health struct {
	lock   sync.RWMutex
	store  kv.Store
	lastOp time.Time
	opName string
}

func New(store kv.Store) *Health {
	return &Health{store: store}
}

// MarkOperation records that a ledger operation just went through.
func (h *Health) MarkOperation(op string) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastOp = time.Now()
	h.opName = op
}

var pingKey = []byte("health-ping")

func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	_, err := h.store.Has(pingKey)
	readable := err == nil

	var lastOp *time.Time
	if !h.lastOp.IsZero() {
		t := h.lastOp
		lastOp = &t
	}
	return &Status{
		Healthy:           readable,
		StoreReadable:     readable,
		LastOperation:     lastOp,
		LastOperationName: h.opName,
	}, nil
}
