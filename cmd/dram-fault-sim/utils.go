package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/jihwankim/dram-fault-sim/pkg/bitblock"
	"github.com/jihwankim/dram-fault-sim/pkg/codec"
	"github.com/jihwankim/dram-fault-sim/pkg/config"
	"github.com/jihwankim/dram-fault-sim/pkg/ecc"
	"github.com/jihwankim/dram-fault-sim/pkg/fault"
)

// loadConfig reads the config file named by the --config flag (or
// config.yaml in the working directory), writing out a default one the
// first time it's missing so a fresh checkout has something to edit.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildGeometry converts the config's geometry section into fault.Geometry.
func buildGeometry(cfg *config.Config) fault.Geometry {
	return fault.Geometry{
		RanksPerDomain: cfg.Geometry.RanksPerDomain,
		DevicesPerRank: cfg.Geometry.DevicesPerRank,
		PinsPerDevice:  cfg.Geometry.PinsPerDevice,
		BeatHeight:     cfg.Geometry.BeatHeight,
	}
}

// buildECC constructs the configured ECC scheme over a cacheline of the
// given geometry. seed drives the independent PRNG a scheme with its own
// randomness (XED's catch-word collision model) needs. VECC builds its
// primary as a plain scheme from the same knobs and its secondary by calling
// buildECC on vecc_secondary, so a secondary whose own scheme is vecc nests
// a further level; the depth is not capped.
//
// Plain and XED both take their "channelWidth" argument as a chunk count,
// not a bit width: Plain.Decode and XED.Decode each extract channelWidth
// codec-sized chunks from the cacheline and fold the per-chunk results. A
// plain scheme with no configured hsiao_width protects the whole cacheline
// as a single chunk (channelWidth 1); XED always chunks per physical chip,
// so its channelWidth is the device count and its on-die codec width
// defaults to one chip's share of the cacheline.
func buildECC(eccCfg config.ECCConfig, geom fault.Geometry, seed int64) (ecc.ECC, error) {
	switch eccCfg.Scheme {
	case "plain":
		chunks, c, err := buildPlainCodec(eccCfg, geom)
		if err != nil {
			return nil, err
		}
		entry := ecc.ConfigEntry{
			MaxDeviceRetirement: geom.DevicesPerRank,
			MaxPinRetirement:    geom.PinsPerDevice,
			Codec:               c,
		}
		return ecc.NewPlain(bitblock.LayoutLinear, chunks, entry), nil

	case "xed":
		variant, err := parseXEDVariant(eccCfg.XEDVariant)
		if err != nil {
			return nil, err
		}
		onDieBits := eccCfg.XEDOnDieBits
		if onDieBits <= 0 {
			onDieBits = geom.PinsPerDevice * geom.BeatHeight
		}
		onDie := codec.NewCRC8ATM(onDieBits)
		rng := newRNG(seed)
		return ecc.NewXED(bitblock.LayoutLinear, geom.DevicesPerRank, onDie, variant, eccCfg.XEDDiagnose, !eccCfg.XEDParityCheck, rng), nil

	case "vecc":
		if eccCfg.VECCSecondary == nil {
			return nil, fmt.Errorf("ecc.scheme vecc requires vecc_secondary")
		}
		primaryCfg := eccCfg
		primaryCfg.Scheme = "plain"
		primary, err := buildECC(primaryCfg, geom, seed)
		if err != nil {
			return nil, fmt.Errorf("vecc primary: %w", err)
		}
		secondary, err := buildECC(*eccCfg.VECCSecondary, geom, seed+1)
		if err != nil {
			return nil, fmt.Errorf("vecc secondary: %w", err)
		}
		return ecc.NewVECC(primary, secondary), nil

	default:
		return nil, fmt.Errorf("unrecognized ecc.scheme %q", eccCfg.Scheme)
	}
}

func parseXEDVariant(name string) (ecc.Variant, error) {
	switch name {
	case "", "plain":
		return ecc.XEDPlain, nil
	case "dddc":
		return ecc.XEDDDDC, nil
	case "sddc":
		return ecc.XEDSDDC, nil
	default:
		return 0, fmt.Errorf("unrecognized ecc.xed_variant %q", name)
	}
}

// buildPlainCodec picks Hsiao SEC-DED or Reed-Solomon for a plain scheme and
// returns the chunk count Plain.Decode should iterate alongside it: setting
// rs_symbol_bits opts into Reed-Solomon (rs_t correctable symbols, so 2*rs_t
// parity symbols), otherwise Hsiao with hsiao_width data bits. With no
// hsiao_width configured, the codec's data bits span the entire cacheline as
// one chunk (its check bits lie past the end of the line; see Plain.Decode);
// with one configured, the Hsiao codeword (data plus check bits) must divide
// the cacheline evenly (config.Validate already checks this) and the chunk
// count is the cacheline width over the codeword width, so Plain.Decode
// folds one outcome per chunk instead of double-covering the line.
func buildPlainCodec(eccCfg config.ECCConfig, geom fault.Geometry) (int, codec.Codec, error) {
	cachelineWidth := geom.CachelineWidth()

	if eccCfg.RSSymbolBits > 0 {
		if eccCfg.RSN <= 0 || eccCfg.RST <= 0 {
			return 0, nil, fmt.Errorf("ecc.rs_n and ecc.rs_t must be positive when rs_symbol_bits is set")
		}
		return 1, codec.NewReedSolomon(eccCfg.RSSymbolBits, eccCfg.RSN, 2*eccCfg.RST), nil
	}

	width := eccCfg.HsiaoWidth
	if width <= 0 {
		return 1, codec.NewHsiaoSECDED(cachelineWidth), nil
	}
	c := codec.NewHsiaoSECDED(width)
	return cachelineWidth / c.BitN(), c, nil
}

// newRNG seeds a PRNG for ECC schemes (XED's collision model) that need
// their own random draws independent of the tester's iteration PRNG.
func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
