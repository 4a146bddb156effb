// Copyright (c) 2026 The Meridian developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meridian

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NetConfig config of a deployed network pair.
type NetConfig struct {
	// Counterpart is the L1-side contract whose storage curator claims are proven against.
	Counterpart Address `yaml:"counterpart"`
	// Gateway is the identity the bridge relays messages as.
	Gateway Address `yaml:"gateway"`
	// Governor may update governance settings.
	Governor Address `yaml:"governor"`

	// MaxThawingPeriod upper bound for provision thawing periods, in seconds.
	MaxThawingPeriod uint64 `yaml:"maxThawingPeriod"`
	// DelegationSlashing enables slashing of delegation pools. When disabled,
	// the delegation remainder of a slash is skipped rather than collected.
	DelegationSlashing bool `yaml:"delegationSlashing"`
	// CuratorBalancesSlot base storage slot of the counterpart's curator balance mapping.
	CuratorBalancesSlot uint64 `yaml:"curatorBalancesSlot"`
}

func (nc NetConfig) String() string {
	return fmt.Sprintf(
		"counterpart: %v, gateway: %v, maxThawingPeriod: %v, delegationSlashing: %v",
		nc.Counterpart, nc.Gateway, nc.MaxThawingPeriod, nc.DelegationSlashing,
	)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Address) MarshalYAML() (any, error) {
	return a.String(), nil
}

// DefaultNetConfig config with protocol defaults, no trusted remote parties.
var DefaultNetConfig = NetConfig{
	MaxThawingPeriod:    DefaultMaxThawingPeriod,
	DelegationSlashing:  false,
	CuratorBalancesSlot: 8,
}

// LoadNetConfig loads config from a yaml file. Absent fields keep defaults.
func LoadNetConfig(path string) (NetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NetConfig{}, err
	}
	nc := DefaultNetConfig
	if err := yaml.Unmarshal(data, &nc); err != nil {
		return NetConfig{}, err
	}
	return nc, nil
}
