package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

// faultRateTable is the on-disk shape of a fault-rate table file: two
// mappings (operational and inherent) of canonical fault-kind names to
// rates. Operational rates are per simulated hour: the tester draws
// inter-arrival times in hours from their sum. Names not recognized by
// fault.ParseKind are rejected.
type faultRateTable struct {
	Operational map[string]float64 `yaml:"operational"`
	Inherent    map[string]float64 `yaml:"inherent"`
}

// LoadFaultRateTable reads a YAML fault-rate table from path and builds the
// fault.RateInfo a domain group samples from. A missing path is not an
// error: the caller gets an empty table and fails later at Sample time if
// it's actually drawn from, consistent with Load's default-then-overlay
// behavior for the rest of the config tree.
func LoadFaultRateTable(path string) (*fault.RateInfo, error) {
	if path == "" {
		return fault.NewRateInfo(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fault rate table: %w", err)
	}

	var table faultRateTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse fault rate table: %w", err)
	}

	operational := make(map[fault.Kind]float64, len(table.Operational))
	for name, rate := range table.Operational {
		k, ok := fault.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("fault rate table: unknown operational fault kind %q", name)
		}
		if k.IsInherent() {
			return nil, fmt.Errorf("fault rate table: %q is an inherent kind, belongs under inherent", name)
		}
		operational[k] = rate
	}

	rateInfo := fault.NewRateInfo(operational)

	for name, rate := range table.Inherent {
		k, ok := fault.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("fault rate table: unknown inherent fault kind %q", name)
		}
		if !k.IsInherent() {
			return nil, fmt.Errorf("fault rate table: %q is not an inherent kind", name)
		}
		rateInfo.SetInherentRate(k, rate)
	}

	return rateInfo, nil
}
