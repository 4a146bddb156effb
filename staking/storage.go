// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/storage"
)

// pairKey addresses per (provider, verifier) entries.
type pairKey struct {
	a, b meridian.Address
}

func (k pairKey) Bytes() []byte {
	return append(k.a.Bytes(), k.b.Bytes()...)
}

// tripleKey addresses per (provider, verifier, account) entries.
type tripleKey struct {
	a, b, c meridian.Address
}

func (k tripleKey) Bytes() []byte {
	out := append(k.a.Bytes(), k.b.Bytes()...)
	return append(out, k.c.Bytes()...)
}

type storageLayer struct {
	providers    *storage.Mapping[meridian.Address, *ServiceProvider]
	provisions   *storage.Mapping[pairKey, *Provision]
	pools        *storage.Mapping[pairKey, *DelegationPool]
	delegations  *storage.Mapping[tripleKey, *Delegation]
	thawRequests *storage.Mapping[meridian.Bytes32, *ThawRequest]
	operators    *storage.Mapping[tripleKey, bool]
	globalOps    *storage.Mapping[pairKey, bool]
	requestNonce *storage.Uint64
}

func newStorageLayer(context *storage.Context) *storageLayer {
	return &storageLayer{
		providers:    storage.NewMapping[meridian.Address, *ServiceProvider](context, meridian.Keccak256([]byte("providers"))),
		provisions:   storage.NewMapping[pairKey, *Provision](context, meridian.Keccak256([]byte("provisions"))),
		pools:        storage.NewMapping[pairKey, *DelegationPool](context, meridian.Keccak256([]byte("delegation-pools"))),
		delegations:  storage.NewMapping[tripleKey, *Delegation](context, meridian.Keccak256([]byte("delegations"))),
		thawRequests: storage.NewMapping[meridian.Bytes32, *ThawRequest](context, meridian.Keccak256([]byte("thaw-requests"))),
		operators:    storage.NewMapping[tripleKey, bool](context, meridian.Keccak256([]byte("operators"))),
		globalOps:    storage.NewMapping[pairKey, bool](context, meridian.Keccak256([]byte("global-operators"))),
		requestNonce: storage.NewUint64(context, meridian.Keccak256([]byte("thaw-request-nonce"))),
	}
}

func (s *storageLayer) getProvider(addr meridian.Address) (*ServiceProvider, error) {
	provider, err := s.providers.Get(addr)
	return provider, errors.Wrap(err, "get provider")
}

func (s *storageLayer) setProvider(addr meridian.Address, provider *ServiceProvider) error {
	return errors.Wrap(s.providers.Set(addr, provider), "set provider")
}

func (s *storageLayer) getProvision(provider, verifier meridian.Address) (*Provision, error) {
	prov, err := s.provisions.Get(pairKey{provider, verifier})
	return prov, errors.Wrap(err, "get provision")
}

func (s *storageLayer) setProvision(provider, verifier meridian.Address, prov *Provision) error {
	return errors.Wrap(s.provisions.Set(pairKey{provider, verifier}, prov), "set provision")
}

func (s *storageLayer) getPool(provider, verifier meridian.Address) (*DelegationPool, error) {
	pool, err := s.pools.Get(pairKey{provider, verifier})
	return pool, errors.Wrap(err, "get delegation pool")
}

func (s *storageLayer) setPool(provider, verifier meridian.Address, pool *DelegationPool) error {
	return errors.Wrap(s.pools.Set(pairKey{provider, verifier}, pool), "set delegation pool")
}

func (s *storageLayer) getDelegation(provider, verifier, delegator meridian.Address) (*Delegation, error) {
	del, err := s.delegations.Get(tripleKey{provider, verifier, delegator})
	return del, errors.Wrap(err, "get delegation")
}

func (s *storageLayer) setDelegation(provider, verifier, delegator meridian.Address, del *Delegation) error {
	return errors.Wrap(s.delegations.Set(tripleKey{provider, verifier, delegator}, del), "set delegation")
}

func (s *storageLayer) getThawRequest(id meridian.Bytes32) (*ThawRequest, error) {
	req, err := s.thawRequests.Get(id)
	return req, errors.Wrap(err, "get thaw request")
}

func (s *storageLayer) setThawRequest(id meridian.Bytes32, req *ThawRequest) error {
	return errors.Wrap(s.thawRequests.Set(id, req), "set thaw request")
}

func (s *storageLayer) deleteThawRequest(id meridian.Bytes32) error {
	return errors.Wrap(s.thawRequests.Delete(id), "delete thaw request")
}

// nextRequestID derives an opaque queue-unique request id from the owner,
// the verifier and a monotonic nonce.
func (s *storageLayer) nextRequestID(owner, verifier meridian.Address) (meridian.Bytes32, error) {
	nonce, err := s.requestNonce.Get()
	if err != nil {
		return meridian.Bytes32{}, errors.Wrap(err, "get request nonce")
	}
	if err := s.requestNonce.Set(nonce + 1); err != nil {
		return meridian.Bytes32{}, errors.Wrap(err, "bump request nonce")
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return meridian.Keccak256(owner.Bytes(), verifier.Bytes(), buf[:]), nil
}

func (s *storageLayer) isOperator(provider, verifier, account meridian.Address) (bool, error) {
	ok, err := s.operators.Get(tripleKey{provider, verifier, account})
	if err != nil {
		return false, errors.Wrap(err, "get operator")
	}
	if ok {
		return true, nil
	}
	ok, err = s.globalOps.Get(pairKey{provider, account})
	return ok, errors.Wrap(err, "get global operator")
}

func (s *storageLayer) setOperator(provider, verifier, account meridian.Address, allowed bool) error {
	key := tripleKey{provider, verifier, account}
	if !allowed {
		return errors.Wrap(s.operators.Delete(key), "clear operator")
	}
	return errors.Wrap(s.operators.Set(key, true), "set operator")
}

func (s *storageLayer) setGlobalOperator(provider, account meridian.Address, allowed bool) error {
	key := pairKey{provider, account}
	if !allowed {
		return errors.Wrap(s.globalOps.Delete(key), "clear global operator")
	}
	return errors.Wrap(s.globalOps.Set(key, true), "set global operator")
}
