// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package disputes

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/api/restutil"
	"github.com/meridian-index/meridian/dispute"
	"github.com/meridian-index/meridian/meridian"
)

type Disputes struct {
	manager *dispute.Manager
}

func New(manager *dispute.Manager) *Disputes {
	return &Disputes{manager}
}

type Dispute struct {
	Provider  meridian.Address      `json:"provider"`
	Fisherman meridian.Address      `json:"fisherman"`
	Deposit   *math.HexOrDecimal256 `json:"deposit"`
	CreatedAt uint64                `json:"createdAt"`
	Status    string                `json:"status"`
	RelatedID meridian.Bytes32      `json:"relatedID"`
}

func (d *Disputes) handleGetDispute(w http.ResponseWriter, req *http.Request) error {
	id, err := meridian.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	found, err := d.manager.Get(id)
	if err != nil {
		return err
	}
	if found.IsEmpty() {
		return restutil.NotFound(errors.New("dispute not found"))
	}
	return restutil.WriteJSON(w, &Dispute{
		Provider:  found.Provider,
		Fisherman: found.Fisherman,
		Deposit:   (*math.HexOrDecimal256)(found.Deposit.ToBig()),
		CreatedAt: found.CreatedAt,
		Status:    found.Status.String(),
		RelatedID: found.RelatedID,
	})
}

func (d *Disputes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetDispute))
}
