// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/api/restutil"
	"github.com/meridian-index/meridian/journal"
	"github.com/meridian-index/meridian/meridian"
)

type Events struct {
	journal *journal.Journal
	limit   uint64
}

// New creates the journal query endpoint. limit caps the page size of
// a single request.
func New(journal *journal.Journal, limit uint64) *Events {
	return &Events{journal, limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	filter := journal.Filter{
		Op:    query.Get("op"),
		Limit: e.limit,
	}
	if raw := query.Get("actor"); raw != "" {
		actor, err := meridian.ParseAddress(raw)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "actor"))
		}
		filter.Actor = &actor
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "offset"))
		}
		filter.Offset = offset
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit > e.limit {
			return restutil.BadRequest(errors.Errorf("limit exceeds maximum of %v", e.limit))
		}
		filter.Limit = limit
	}
	if query.Get("order") == string(journal.DESC) {
		filter.Order = journal.DESC
	}

	entries, err := e.journal.Filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*journal.Entry{}
	}
	return restutil.WriteJSON(w, entries)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
