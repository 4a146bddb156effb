// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/kv"
	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/storage"
)

// LinearSignalPool is a storage backed SignalPool issuing signal one to
// one with deposited tokens, for deployments without a bonding curve.
type LinearSignalPool struct {
	signal *storage.Mapping[meridian.Bytes32, *uint256.Int]
}

var _ SignalPool = (*LinearSignalPool)(nil)

func NewLinearSignalPool(store kv.Store) *LinearSignalPool {
	context := storage.NewContext("curation", store)
	return &LinearSignalPool{
		signal: storage.NewMapping[meridian.Bytes32, *uint256.Int](context, meridian.Keccak256([]byte("deployment-signal"))),
	}
}

func (p *LinearSignalPool) MintSignalNoTax(deploymentID meridian.Bytes32, tokens *uint256.Int) (*uint256.Int, error) {
	total, err := p.Signal(deploymentID)
	if err != nil {
		return nil, err
	}
	if _, overflow := total.AddOverflow(total, tokens); overflow {
		return nil, errors.New("deployment signal overflow")
	}
	if err := p.signal.Set(deploymentID, total); err != nil {
		return nil, errors.Wrap(err, "set deployment signal")
	}
	return tokens.Clone(), nil
}

func (p *LinearSignalPool) Signal(deploymentID meridian.Bytes32) (*uint256.Int, error) {
	total, err := p.signal.Get(deploymentID)
	if err != nil {
		return nil, errors.Wrap(err, "get deployment signal")
	}
	return total, nil
}
