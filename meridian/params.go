// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meridian

import "github.com/holiman/uint256"

// Constants of the protocol.
const (
	// PPMDenominator fixed point denominator for parts-per-million values.
	PPMDenominator uint32 = 1_000_000

	// MaxVerifierCutPPM upper bound of a provision's verifier cut.
	MaxVerifierCutPPM uint32 = 500_000

	// MaxThawRequests max outstanding thaw requests per provision or delegation.
	MaxThawRequests uint32 = 100

	// DefaultMaxThawingPeriod upper bound of a provision's thawing period (seconds).
	DefaultMaxThawingPeriod uint64 = 60 * 60 * 24 * 28
)

// Minimum token amounts, in base units (18 decimals).
var (
	MinProvisionTokens  = uint256.NewInt(0).Mul(uint256.NewInt(1), uint256.NewInt(1e18))
	MinDelegationTokens = uint256.NewInt(0).Mul(uint256.NewInt(1), uint256.NewInt(1e18))
)
