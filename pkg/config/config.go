package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/dram-fault-sim/pkg/codec"
)

// Config is the simulator's top-level configuration.
type Config struct {
	Framework  FrameworkConfig  `yaml:"framework"`
	Geometry   GeometryConfig   `yaml:"geometry"`
	FaultRates FaultRatesConfig `yaml:"fault_rates"`
	ECC        ECCConfig        `yaml:"ecc"`
	Scrubbing  ScrubbingConfig  `yaml:"scrubbing"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Reporting  ReportingConfig  `yaml:"reporting"`
}

// FrameworkConfig contains general framework settings.
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// GeometryConfig describes the rank organization simulated faults are drawn
// over, replacing the teacher's KurtosisConfig.
type GeometryConfig struct {
	RanksPerDomain int  `yaml:"ranks_per_domain"`
	DevicesPerRank int  `yaml:"devices_per_rank"`
	PinsPerDevice  int  `yaml:"pins_per_device"`
	BeatHeight     int  `yaml:"beat_height"`
	DomainCount    int  `yaml:"domain_count"`
	HBM            bool `yaml:"hbm"`
}

// FaultRatesConfig points at the fault-rate table; the out-of-scope numeric
// tables are read from this file rather than hardcoded.
type FaultRatesConfig struct {
	TablePath string `yaml:"table_path"`
}

// ECCConfig selects the ECC scheme and its scheme-specific knobs. Only the
// fields relevant to Scheme are read; the rest are ignored.
type ECCConfig struct {
	Scheme string `yaml:"scheme"` // "plain", "xed", "vecc"

	// Reed-Solomon knobs, for a Plain scheme configured with RS.
	RSSymbolBits int `yaml:"rs_symbol_bits"`
	RSN          int `yaml:"rs_n"`
	RST          int `yaml:"rs_t"`

	// Hsiao SEC-DED data width, for a Plain scheme configured with Hsiao;
	// the codeword adds the check bits on top of it.
	HsiaoWidth int `yaml:"hsiao_width"`

	// XED knobs.
	XEDVariant     string `yaml:"xed_variant"` // "plain", "dddc", "sddc"
	XEDOnDieBits   int    `yaml:"xed_on_die_bits"`
	XEDParityCheck bool   `yaml:"xed_parity_check"`
	XEDDiagnose    bool   `yaml:"xed_diagnose"`

	// VECC layers a secondary scheme under the same name/knob fields.
	VECCSecondary *ECCConfig `yaml:"vecc_secondary"`
}

// ScrubbingConfig controls the periodic scrub policy; a non-positive Period
// selects scrubber.NoScrubber.
type ScrubbingConfig struct {
	PeriodHours float64 `yaml:"period_hours"`
}

// ExecutionConfig controls the outer Monte Carlo loop.
type ExecutionConfig struct {
	RunCount         int      `yaml:"run_count"`
	MaxYears         int      `yaml:"max_years"`
	FaultCount       int      `yaml:"fault_count"`
	Mode             string   `yaml:"mode"` // "system" or "scenario"
	FaultKindNames   []string `yaml:"fault_kind_names"`
	ChipOverlapCheck bool     `yaml:"chip_overlap_check"`
	Seed             int64    `yaml:"seed"`

	// WeakCellMode arms TesterSystem's dual weak-cell/frequent-weak-cell
	// inherent population instead of the single round-robin default; it
	// only applies when FaultCount is 6.
	WeakCellMode  bool    `yaml:"weak_cell_mode"`
	RatioWC       float64 `yaml:"ratio_wc"`
	ActiveProbWC  float64 `yaml:"active_prob_wc"`
	RatioFWC      float64 `yaml:"ratio_fwc"`
	ActiveProbFWC float64 `yaml:"active_prob_fwc"`
}

// ReportingConfig contains reporting and output settings.
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	Prefix    string   `yaml:"prefix"`
	KeepLastN int      `yaml:"keep_last_n"`
	Formats   []string `yaml:"formats"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Geometry: GeometryConfig{
			RanksPerDomain: 1,
			DevicesPerRank: 18,
			PinsPerDevice:  4,
			BeatHeight:     1,
			DomainCount:    1,
		},
		ECC: ECCConfig{
			Scheme:     "plain",
			HsiaoWidth: 64,
		},
		Scrubbing: ScrubbingConfig{
			PeriodHours: 0,
		},
		Execution: ExecutionConfig{
			RunCount: 1000,
			MaxYears: 8,
			Mode:     "system",
			Seed:     1,
		},
		Reporting: ReportingConfig{
			OutputDir: "./reports",
			Prefix:    "run",
			KeepLastN: 50,
			Formats:   []string{"text"},
		},
	}
}

// Load reads configuration from a YAML file, starting from DefaultConfig and
// overlaying the file's contents, then expanding environment variables
// embedded in the YAML. A missing path returns the defaults unmodified.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate fails fast on the configuration-invariant class of error: a
// codec codeword width that doesn't divide the cacheline width, an empty domain
// group, or non-positive geometry.
func (c *Config) Validate() error {
	if c.Geometry.RanksPerDomain <= 0 || c.Geometry.DevicesPerRank <= 0 ||
		c.Geometry.PinsPerDevice <= 0 || c.Geometry.BeatHeight <= 0 {
		return fmt.Errorf("geometry fields must all be positive")
	}
	if c.Geometry.DomainCount <= 0 {
		return fmt.Errorf("geometry.domain_count must be at least 1")
	}

	cachelineWidth := c.Geometry.DevicesPerRank * c.Geometry.PinsPerDevice * c.Geometry.BeatHeight
	switch c.ECC.Scheme {
	case "plain":
		if c.ECC.HsiaoWidth > 0 {
			codeword := codec.NewHsiaoSECDED(c.ECC.HsiaoWidth).BitN()
			if cachelineWidth%codeword != 0 {
				return fmt.Errorf("ecc.hsiao_width %d gives a %d-bit codeword that does not divide cacheline width %d", c.ECC.HsiaoWidth, codeword, cachelineWidth)
			}
		}
	case "xed", "vecc":
		// width checked at construction time against the resolved layout
	default:
		return fmt.Errorf("ecc.scheme %q is not one of plain, xed, vecc", c.ECC.Scheme)
	}

	if c.Execution.RunCount < 1 {
		return fmt.Errorf("execution.run_count must be at least 1")
	}
	if c.Execution.MaxYears < 1 {
		return fmt.Errorf("execution.max_years must be at least 1")
	}
	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}

	return nil
}
