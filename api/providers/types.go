// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package providers

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/meridian-index/meridian/meridian"
	"github.com/meridian-index/meridian/staking"
)

type Provider struct {
	TokensStaked      *math.HexOrDecimal256 `json:"tokensStaked"`
	TokensProvisioned *math.HexOrDecimal256 `json:"tokensProvisioned"`
	TokensLocked      *math.HexOrDecimal256 `json:"tokensLocked"`
	TokensLockedUntil uint64                `json:"tokensLockedUntil"`
	IdleStake         *math.HexOrDecimal256 `json:"idleStake"`
}

type Provision struct {
	Tokens                *math.HexOrDecimal256 `json:"tokens"`
	TokensThawing         *math.HexOrDecimal256 `json:"tokensThawing"`
	SharesThawing         *math.HexOrDecimal256 `json:"sharesThawing"`
	MaxVerifierCut        uint32                `json:"maxVerifierCut"`
	ThawingPeriod         uint64                `json:"thawingPeriod"`
	CreatedAt             uint64                `json:"createdAt"`
	MaxVerifierCutPending uint32                `json:"maxVerifierCutPending"`
	ThawingPeriodPending  uint64                `json:"thawingPeriodPending"`
	ParametersPending     bool                  `json:"parametersPending"`
	ThawRequestCount      uint32                `json:"thawRequestCount"`
	ThawQueueHead         meridian.Bytes32      `json:"thawQueueHead"`
}

type DelegationPool struct {
	Tokens        *math.HexOrDecimal256 `json:"tokens"`
	Shares        *math.HexOrDecimal256 `json:"shares"`
	TokensThawing *math.HexOrDecimal256 `json:"tokensThawing"`
	SharesThawing *math.HexOrDecimal256 `json:"sharesThawing"`
}

type Delegation struct {
	Shares           *math.HexOrDecimal256 `json:"shares"`
	ThawRequestCount uint32                `json:"thawRequestCount"`
	ThawQueueHead    meridian.Bytes32      `json:"thawQueueHead"`
}

type ThawRequest struct {
	Shares       *math.HexOrDecimal256 `json:"shares"`
	ThawingUntil uint64                `json:"thawingUntil"`
	Next         meridian.Bytes32      `json:"next"`
}

// amounts marshal as hex quantities
func amount(v *uint256.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v.ToBig())
}

func convertProvider(account *staking.ServiceProvider) *Provider {
	return &Provider{
		TokensStaked:      amount(account.TokensStaked),
		TokensProvisioned: amount(account.TokensProvisioned),
		TokensLocked:      amount(account.TokensLocked),
		TokensLockedUntil: account.TokensLockedUntil,
		IdleStake:         amount(account.IdleStake()),
	}
}

func convertProvision(prov *staking.Provision) *Provision {
	return &Provision{
		Tokens:                amount(prov.Tokens),
		TokensThawing:         amount(prov.TokensThawing),
		SharesThawing:         amount(prov.SharesThawing),
		MaxVerifierCut:        prov.MaxVerifierCut,
		ThawingPeriod:         prov.ThawingPeriod,
		CreatedAt:             prov.CreatedAt,
		MaxVerifierCutPending: prov.MaxVerifierCutPending,
		ThawingPeriodPending:  prov.ThawingPeriodPending,
		ParametersPending:     prov.ParametersPending,
		ThawRequestCount:      prov.Queue.Count,
		ThawQueueHead:         prov.Queue.Head,
	}
}

func convertPool(pool *staking.DelegationPool) *DelegationPool {
	return &DelegationPool{
		Tokens:        amount(pool.Tokens),
		Shares:        amount(pool.Shares),
		TokensThawing: amount(pool.TokensThawing),
		SharesThawing: amount(pool.SharesThawing),
	}
}

func convertDelegation(del *staking.Delegation) *Delegation {
	return &Delegation{
		Shares:           amount(del.Shares),
		ThawRequestCount: del.Queue.Count,
		ThawQueueHead:    del.Queue.Head,
	}
}

func convertThawRequest(request *staking.ThawRequest) *ThawRequest {
	return &ThawRequest{
		Shares:       amount(request.Shares),
		ThawingUntil: request.ThawingUntil,
		Next:         request.Next,
	}
}
