// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migration

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/storage"
)

// claimKey addresses per (subgraph, curator) entries.
type claimKey struct {
	id      meridian.Bytes32
	curator meridian.Address
}

func (k claimKey) Bytes() []byte {
	return append(k.id.Bytes(), k.curator.Bytes()...)
}

type storageLayer struct {
	records       *storage.Mapping[meridian.Bytes32, *Record]
	subgraphs     *storage.Mapping[meridian.Bytes32, *Subgraph]
	claimed       *storage.Mapping[claimKey, bool]
	curatorSignal *storage.Mapping[claimKey, *uint256.Int]
	counterpart   *storage.Address
}

func newStorageLayer(context *storage.Context) *storageLayer {
	return &storageLayer{
		records:       storage.NewMapping[meridian.Bytes32, *Record](context, meridian.Keccak256([]byte("records"))),
		subgraphs:     storage.NewMapping[meridian.Bytes32, *Subgraph](context, meridian.Keccak256([]byte("subgraphs"))),
		claimed:       storage.NewMapping[claimKey, bool](context, meridian.Keccak256([]byte("claimed"))),
		curatorSignal: storage.NewMapping[claimKey, *uint256.Int](context, meridian.Keccak256([]byte("curator-signal"))),
		counterpart:   storage.NewAddress(context, meridian.Keccak256([]byte("counterpart"))),
	}
}

func (s *storageLayer) getRecord(id meridian.Bytes32) (*Record, error) {
	record, err := s.records.Get(id)
	return record, errors.Wrap(err, "get migration record")
}

func (s *storageLayer) setRecord(id meridian.Bytes32, record *Record) error {
	return errors.Wrap(s.records.Set(id, record), "set migration record")
}

func (s *storageLayer) getSubgraph(id meridian.Bytes32) (*Subgraph, error) {
	subgraph, err := s.subgraphs.Get(id)
	return subgraph, errors.Wrap(err, "get subgraph")
}

func (s *storageLayer) setSubgraph(id meridian.Bytes32, subgraph *Subgraph) error {
	return errors.Wrap(s.subgraphs.Set(id, subgraph), "set subgraph")
}

func (s *storageLayer) isClaimed(id meridian.Bytes32, curator meridian.Address) (bool, error) {
	claimed, err := s.claimed.Get(claimKey{id, curator})
	return claimed, errors.Wrap(err, "get claimed flag")
}

func (s *storageLayer) setClaimed(id meridian.Bytes32, curator meridian.Address) error {
	return errors.Wrap(s.claimed.Set(claimKey{id, curator}, true), "set claimed flag")
}

func (s *storageLayer) getCuratorSignal(id meridian.Bytes32, curator meridian.Address) (*uint256.Int, error) {
	signal, err := s.curatorSignal.Get(claimKey{id, curator})
	if err != nil {
		return nil, errors.Wrap(err, "get curator signal")
	}
	if signal == nil {
		signal = uint256.NewInt(0)
	}
	return signal, nil
}

func (s *storageLayer) addCuratorSignal(id meridian.Bytes32, curator meridian.Address, amount *uint256.Int) error {
	signal, err := s.getCuratorSignal(id, curator)
	if err != nil {
		return err
	}
	if _, overflow := signal.AddOverflow(signal, amount); overflow {
		return errors.New("curator signal overflow")
	}
	return errors.Wrap(s.curatorSignal.Set(claimKey{id, curator}, signal), "set curator signal")
}
