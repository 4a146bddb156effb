// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import "github.com/meridian-index/meridian/reverts"

var (
	ErrNotGateway  = reverts.New(reverts.KindAuthorization, "caller is not the gateway")
	ErrNotGovernor = reverts.New(reverts.KindAuthorization, "caller is not the governor")
	ErrNotOwner    = reverts.New(reverts.KindAuthorization, "caller is not the subgraph owner")

	ErrZeroTokens     = reverts.New(reverts.KindInvalidInput, "token amount must not be zero")
	ErrZeroAddress    = reverts.New(reverts.KindInvalidInput, "address must not be zero")
	ErrDeploymentZero = reverts.New(reverts.KindInvalidInput, "deployment id must not be zero")

	ErrNotMigrated      = reverts.New(reverts.KindStateConflict, "subgraph not migrated or already finished")
	ErrAlreadyMigrated  = reverts.New(reverts.KindStateConflict, "subgraph migration already finished")
	ErrPreCurated       = reverts.New(reverts.KindStateConflict, "deployment already carries curation signal")
	ErrAlreadyClaimed   = reverts.New(reverts.KindStateConflict, "curator balance already claimed")
	ErrCounterpartUnset = reverts.New(reverts.KindStateConflict, "counterpart address not configured")

	ErrNoBalance = reverts.New(reverts.KindArithmetic, "no curator balance to claim")
)
