// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package providers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/api/restutil"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/staking"
)

type Providers struct {
	staking *staking.Staking
}

func New(staking *staking.Staking) *Providers {
	return &Providers{staking}
}

func (p *Providers) handleGetProvider(w http.ResponseWriter, req *http.Request) error {
	addr, err := meridian.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	account, err := p.staking.GetProvider(addr)
	if err != nil {
		return err
	}
	if account.IsEmpty() {
		return restutil.NotFound(errors.New("provider not found"))
	}
	return restutil.WriteJSON(w, convertProvider(account))
}

func (p *Providers) handleGetProvision(w http.ResponseWriter, req *http.Request) error {
	provider, verifier, err := providerVerifierVars(req)
	if err != nil {
		return err
	}
	prov, err := p.staking.GetProvision(provider, verifier)
	if err != nil {
		return err
	}
	if prov.IsEmpty() {
		return restutil.NotFound(errors.New("provision not found"))
	}
	return restutil.WriteJSON(w, convertProvision(prov))
}

func (p *Providers) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	provider, verifier, err := providerVerifierVars(req)
	if err != nil {
		return err
	}
	pool, err := p.staking.GetDelegationPool(provider, verifier)
	if err != nil {
		return err
	}
	if pool.IsEmpty() {
		return restutil.NotFound(errors.New("delegation pool not found"))
	}
	return restutil.WriteJSON(w, convertPool(pool))
}

func (p *Providers) handleGetDelegation(w http.ResponseWriter, req *http.Request) error {
	provider, verifier, err := providerVerifierVars(req)
	if err != nil {
		return err
	}
	delegator, err := meridian.ParseAddress(mux.Vars(req)["delegator"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "delegator"))
	}
	del, err := p.staking.GetDelegation(provider, verifier, delegator)
	if err != nil {
		return err
	}
	if del.IsEmpty() {
		return restutil.NotFound(errors.New("delegation not found"))
	}
	return restutil.WriteJSON(w, convertDelegation(del))
}

func (p *Providers) handleGetThawRequest(w http.ResponseWriter, req *http.Request) error {
	id, err := meridian.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	request, err := p.staking.GetThawRequest(id)
	if err != nil {
		return err
	}
	if request.IsEmpty() {
		return restutil.NotFound(errors.New("thaw request not found"))
	}
	return restutil.WriteJSON(w, convertThawRequest(request))
}

func providerVerifierVars(req *http.Request) (meridian.Address, meridian.Address, error) {
	vars := mux.Vars(req)
	provider, err := meridian.ParseAddress(vars["address"])
	if err != nil {
		return meridian.Address{}, meridian.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	verifier, err := meridian.ParseAddress(vars["verifier"])
	if err != nil {
		return meridian.Address{}, meridian.Address{}, restutil.BadRequest(errors.WithMessage(err, "verifier"))
	}
	return provider, verifier, nil
}

func (p *Providers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetProvider))
	sub.Path("/{address}/provisions/{verifier}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetProvision))
	sub.Path("/{address}/provisions/{verifier}/pool").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{address}/provisions/{verifier}/delegations/{delegator}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetDelegation))
	sub.Path("/thaw-requests/{id}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetThawRequest))
}
