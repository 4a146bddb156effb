// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subgraphs

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/api/restutil"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/migration"
)

type Subgraphs struct {
	coordinator *migration.Coordinator
}

func New(coordinator *migration.Coordinator) *Subgraphs {
	return &Subgraphs{coordinator}
}

type Record struct {
	Tokens            *math.HexOrDecimal256 `json:"tokens"`
	NSignal           *math.HexOrDecimal256 `json:"nSignal"`
	LockedAtBlockHash meridian.Bytes32      `json:"lockedAtBlockHash"`
	Owner             meridian.Address      `json:"owner"`
	ReserveRatio      uint32                `json:"reserveRatio"`
	Done              bool                  `json:"done"`
	Metadata          string                `json:"metadata"`
}

type Subgraph struct {
	NSignal      *math.HexOrDecimal256 `json:"nSignal"`
	VSignal      *math.HexOrDecimal256 `json:"vSignal"`
	DeploymentID meridian.Bytes32      `json:"deploymentID"`
	ReserveRatio uint32                `json:"reserveRatio"`
	Disabled     bool                  `json:"disabled"`
	Metadata     string                `json:"metadata"`
}

// amounts marshal as hex quantities
func amount(v *uint256.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v.ToBig())
}

func (s *Subgraphs) handleGetRecord(w http.ResponseWriter, req *http.Request) error {
	id, err := subgraphIDVar(req)
	if err != nil {
		return err
	}
	record, err := s.coordinator.GetRecord(id)
	if err != nil {
		return err
	}
	if record.IsEmpty() {
		return restutil.NotFound(errors.New("migration record not found"))
	}
	return restutil.WriteJSON(w, &Record{
		Tokens:            amount(record.Tokens),
		NSignal:           amount(record.NSignal),
		LockedAtBlockHash: record.LockedAtBlockHash,
		Owner:             record.Owner,
		ReserveRatio:      record.ReserveRatio,
		Done:              record.Done,
		Metadata:          hexutil.Encode(record.Metadata),
	})
}

func (s *Subgraphs) handleGetSubgraph(w http.ResponseWriter, req *http.Request) error {
	id, err := subgraphIDVar(req)
	if err != nil {
		return err
	}
	subgraph, err := s.coordinator.GetSubgraph(id)
	if err != nil {
		return err
	}
	if subgraph.IsEmpty() {
		return restutil.NotFound(errors.New("subgraph not found"))
	}
	return restutil.WriteJSON(w, &Subgraph{
		NSignal:      amount(subgraph.NSignal),
		VSignal:      amount(subgraph.VSignal),
		DeploymentID: subgraph.DeploymentID,
		ReserveRatio: subgraph.ReserveRatio,
		Disabled:     subgraph.Disabled,
		Metadata:     hexutil.Encode(subgraph.Metadata),
	})
}

func (s *Subgraphs) handleGetCuratorSignal(w http.ResponseWriter, req *http.Request) error {
	id, err := subgraphIDVar(req)
	if err != nil {
		return err
	}
	curator, err := meridian.ParseAddress(mux.Vars(req)["curator"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "curator"))
	}
	signal, err := s.coordinator.CuratorSignal(id, curator)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"signal": amount(signal)})
}

func (s *Subgraphs) handleGetCounterpart(w http.ResponseWriter, req *http.Request) error {
	counterpart, err := s.coordinator.CounterpartAddress()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"counterpart": &counterpart})
}

func subgraphIDVar(req *http.Request) (meridian.Bytes32, error) {
	id, err := meridian.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return meridian.Bytes32{}, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (s *Subgraphs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/counterpart").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetCounterpart))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetSubgraph))
	sub.Path("/{id}/migration").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRecord))
	sub.Path("/{id}/signal/{curator}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetCuratorSignal))
}
