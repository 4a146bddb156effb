// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import (
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/meridian"
)

// Record tracks one subgraph's migration from the counterpart chain.
// Done flips exactly once, when the owner finishes the migration.
type Record struct {
	Tokens            *uint256.Int // curated tokens locked on the counterpart chain
	NSignal           *uint256.Int // name signal total at lock time
	LockedAtBlockHash meridian.Bytes32
	Owner             meridian.Address
	ReserveRatio      uint32
	Done              bool
	Metadata          []byte
}

// IsEmpty returns whether the entry can be treated as empty.
func (r *Record) IsEmpty() bool {
	return r.Tokens == nil
}

// Subgraph is the local subgraph entity a migration materializes.
// It stays disabled until the migration finishes.
type Subgraph struct {
	NSignal      *uint256.Int
	VSignal      *uint256.Int
	DeploymentID meridian.Bytes32
	ReserveRatio uint32
	Disabled     bool
	Metadata     []byte
}

// IsEmpty returns whether the entry can be treated as empty.
func (s *Subgraph) IsEmpty() bool {
	return s.NSignal == nil
}

// Message is the decoded bridge callback payload announcing a migration.
type Message struct {
	SubgraphID        meridian.Bytes32
	Owner             meridian.Address
	Tokens            *uint256.Int
	LockedAtBlockHash meridian.Bytes32
	NSignal           *uint256.Int
	ReserveRatio      uint32
	Metadata          []byte
}

// SignalPool is the bonding-curve collaborator that turns curated
// tokens into version signal.
type SignalPool interface {
	// MintSignalNoTax mints signal for tokens at the current curve
	// position without applying the curation tax.
	MintSignalNoTax(deploymentID meridian.Bytes32, tokens *uint256.Int) (*uint256.Int, error)
	// Signal returns the signal already issued on a deployment.
	Signal(deploymentID meridian.Bytes32) (*uint256.Int, error)
}
