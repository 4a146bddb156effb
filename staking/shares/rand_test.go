// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shares_test

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/meridian-index/meridian/staking/shares"
)

// Issuing then immediately redeeming must never pay out more than was
// put in, whatever live pool the deposit lands in.
func TestIssueRedeemNeverProfits(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for i := 0; i < 1000; i++ {
		var seed struct {
			PoolTokens uint64
			PoolShares uint64
			Deposit    uint64
		}
		f.Fuzz(&seed)
		if seed.PoolShares == 0 {
			// an empty pool holds no capital
			seed.PoolTokens = 0
		}

		pool := &shares.Pool{
			Tokens: uint256.NewInt(seed.PoolTokens),
			Shares: uint256.NewInt(seed.PoolShares),
		}
		deposit := uint256.NewInt(seed.Deposit)

		minted, err := pool.Issue(pool.Tokens, deposit)
		if err != nil {
			continue
		}
		require.NoError(t, pool.Mint(deposit, minted))

		payout, err := pool.Redeem(pool.Tokens, minted)
		require.NoError(t, err)
		require.False(t, payout.Gt(deposit),
			"payout %v exceeds deposit %v (pool %v/%v)",
			payout, deposit, seed.PoolTokens, seed.PoolShares)
	}
}
