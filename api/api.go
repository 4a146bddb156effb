// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api exposes the ledger read surface over HTTP. All endpoints
// are GET only; state transitions happen through the protocol layer,
// never through this API.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/meridian-index/meridian/api/disputes"
	"github.com/meridian-index/meridian/api/events"
	"github.com/meridian-index/meridian/api/providers"
	"github.com/meridian-index/meridian/api/restutil"
	"github.com/meridian-index/meridian/api/subgraphs"
	"github.com/meridian-index/meridian/dispute"
	"github.com/meridian-index/meridian/health"
	"github.com/meridian-index/meridian/journal"
	"github.com/meridian-index/meridian/log"
	"github.com/meridian-index/meridian/metrics"
	"github.com/meridian-index/meridian/migration"
	"github.com/meridian-index/meridian/staking"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
	LogsLimit      uint64
}

// New returns the assembled api handler.
func New(
	ledger *staking.Staking,
	coordinator *migration.Coordinator,
	manager *dispute.Manager,
	eventLog *journal.Journal,
	healthz *health.Health,
	opts Options,
) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	providers.New(ledger).
		Mount(router, "/providers")
	subgraphs.New(coordinator).
		Mount(router, "/subgraphs")
	if manager != nil {
		disputes.New(manager).
			Mount(router, "/disputes")
	}
	if eventLog != nil {
		limit := opts.LogsLimit
		if limit == 0 {
			limit = 1000
		}
		events.New(eventLog, limit).
			Mount(router, "/events")
	}
	if healthz != nil {
		router.Path("/health").
			Methods(http.MethodGet).
			HandlerFunc(restutil.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
				status, err := healthz.Status()
				if err != nil {
					return err
				}
				if !status.Healthy {
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusServiceUnavailable)
				}
				return restutil.WriteJSON(w, status)
			}))
	}
	if opts.EnableMetrics {
		if handler := metrics.HTTPHandler(); handler != nil {
			router.Path("/metrics").Handler(handler)
		}
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	logger.Debug("api handler assembled", "origins", opts.AllowedOrigins)
	return handler
}
