// Package config defines the single Config value threaded through the
// enumeration driver and every port adapter. Design Notes §9 calls out the
// original's global mutable configuration as a pattern to replace; this
// package is that replacement — nothing in synthline reads a package-level
// configuration variable.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// DrugLikeness holds the four absolute thresholds and the affine estimator
// constants used by internal/gates.
type DrugLikeness struct {
	MaxMW   float64 `mapstructure:"max_mw"`
	MaxHBD  float64 `mapstructure:"max_hbd"`
	MaxHBA1 float64 `mapstructure:"max_hba1"`
	MaxLogP float64 `mapstructure:"max_logp"`
}

// DefaultDrugLikeness returns the spec's default absolute thresholds.
func DefaultDrugLikeness() DrugLikeness {
	return DrugLikeness{MaxMW: 570, MaxHBD: 5, MaxHBA1: 10, MaxLogP: 7.2}
}

// Probabilistic holds the rarity-filter's activation level and PRNG seed.
type Probabilistic struct {
	// StartLevel: the rarity filter is active for levels >= StartLevel.
	// Setting StartLevel > MaxLevel disables it entirely (testable property 7).
	StartLevel int64 `mapstructure:"start_level"`
	// Seed seeds the PRNG used to draw the six uniforms. Fixing Seed makes a
	// serial run with the filter enabled reproducible (spec.md §4.5); the
	// threaded cascade's workers share one generator, so their draw order,
	// and with it the filter's verdicts, can differ between runs.
	Seed int64 `mapstructure:"seed"`
}

// LevelPopulation is the expected candidate population for one level, used
// to size that level's per-level Bloom filter.
type LevelPopulation struct {
	Level      int
	Population uint
}

// defaultLevelPopulations mirrors spec.md §4.3's sizing table.
func defaultLevelPopulations() []LevelPopulation {
	return []LevelPopulation{
		{2, 500}, {3, 10_000}, {4, 300_000}, {5, 1_000_000}, {6, 5_000_000},
		{7, 15_000_000}, {8, 30_000_000}, {9, 30_000_000}, {10, 30_000_000},
		{11, 15_000_000}, {12, 5_000_000}, {13, 2_500_000}, {14, 1_000_000},
		{15, 500_000}, {16, 100_000}, {17, 50_000}, {18, 25_000}, {19, 10_000},
		{20, 5_000}, {21, 1_000},
	}
}

// defaultQueueCaps mirrors spec.md §4.4's queue-cap table. 0 means unbounded.
func defaultQueueCaps() map[int]int {
	caps := map[int]int{3: 10, 4: 200, 5: 300, 6: 500, 7: 500}
	for k := 8; k <= 12; k++ {
		caps[k] = 500
	}
	for k := 13; k <= 20; k++ {
		caps[k] = 500
	}
	return caps
}

// Mode selects the level-pipeline execution strategy.
type Mode int

const (
	// Serial runs the recursive cascaded worklist (spec.md §4.4).
	Serial Mode = iota
	// Threaded runs one worker per level >= 3 (spec.md §4.4).
	Threaded
)

// Config is the single value threaded through the driver, the gates, the
// dedup cascade, and every port adapter. Nothing in synthline mutates global
// state; everything needed at runtime lives here.
type Config struct {
	RunID string `mapstructure:"-"`

	// FragmentPaths are positional CLI arguments: fragment file paths.
	FragmentPaths []string `mapstructure:"fragment_paths"`

	// OutputFile is the main output path (-o). cmd/synth uses it as the
	// Sink's output directory in place of "synth_"+OutputDirSuffix; no
	// single output file is written at this path.
	OutputFile string `mapstructure:"output_file"`
	// OutputDirSuffix names the rotating output directory (-odir).
	OutputDirSuffix string `mapstructure:"output_dir_suffix"`
	// SMIOnly, if true, emits only identity strings, no 3-D materialization (-smi-only).
	SMIOnly bool `mapstructure:"smi_only"`
	// IdentityFileCap is the number of lines before an identity file rotates.
	IdentityFileCap int `mapstructure:"identity_file_cap"`
	// StructureFileCap is the number of records before a 3-D file rotates.
	StructureFileCap int `mapstructure:"structure_file_cap"`

	// ValidationFile is the optional validation identity input (-v).
	ValidationFile string `mapstructure:"validation_file"`
	// ValidationIdentity, if non-empty, is the identity string the
	// short-circuit (spec.md §4.6) watches for.
	ValidationIdentity string `mapstructure:"validation_identity"`
	// IdentityMatchThreshold is the -tc flag; reserved for fuzzy-match
	// extensions of the short-circuit, unused by exact-match comparison.
	IdentityMatchThreshold float64 `mapstructure:"identity_match_threshold"`

	// MaxLevel is the level upper bound K (-hl), default 20.
	MaxLevel int `mapstructure:"max_level"`
	// TerminalCap is the queue cap applied at level MaxLevel. Open Question 3
	// (spec.md §9) resolves this as a configurable policy rather than a
	// hardcoded discard-everything cap of 1.
	TerminalCap int `mapstructure:"terminal_cap"`

	DrugLikeness  DrugLikeness  `mapstructure:"drug_likeness"`
	Probabilistic Probabilistic `mapstructure:"probabilistic"`

	LevelPopulations []LevelPopulation `mapstructure:"level_populations"`
	QueueCaps        map[int]int       `mapstructure:"queue_caps"`

	// PerLevelFPRate / GlobalFPRate are the Bloom false-positive targets from
	// spec.md §4.3 (1e-3 and 1e-2 respectively).
	PerLevelFPRate float64 `mapstructure:"per_level_fp_rate"`
	GlobalFPRate   float64 `mapstructure:"global_fp_rate"`

	Mode Mode `mapstructure:"-"`
	// OraclePoolSize bounds concurrent ChemOracle calls (-pool); spec.md §5
	// treats the oracle as non-reentrant by default, so the shipped
	// chemoracle adapter ignores pool sizes > 1, but the field is threaded
	// through for an oracle implementation that can scale.
	OraclePoolSize int `mapstructure:"oracle_pool_size"`

	// PollInterval / BackoffInterval are the threaded cascade's sleep/back-off
	// constants (spec.md §5: "tuning, not contract").
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	BackoffInterval time.Duration `mapstructure:"backoff_interval"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig avoids importing internal/logging here (config stays a leaf
// package); cmd/synth converts it to logging.Config at wire-up time.
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Default returns a Config populated with every default named in spec.md.
func Default() Config {
	return Config{
		OutputDirSuffix:        "out",
		IdentityFileCap:        100_000,
		StructureFileCap:       10_000,
		MaxLevel:               20,
		TerminalCap:            500,
		DrugLikeness:           DefaultDrugLikeness(),
		Probabilistic:          Probabilistic{StartLevel: 5, Seed: 1},
		LevelPopulations:       defaultLevelPopulations(),
		QueueCaps:              defaultQueueCaps(),
		PerLevelFPRate:         1e-3,
		GlobalFPRate:           1e-2,
		Mode:                   Serial,
		OraclePoolSize:         1,
		PollInterval:           2 * time.Millisecond,
		BackoffInterval:        20 * time.Millisecond,
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
		},
	}
}

// Load layers a config file (if present) over the defaults. Environment
// variables (prefix SYNTHLINE_) are consulted only for keys the config file
// itself sets; with no config file, Load returns Default() unchanged. CLI
// flags are applied on top by cmd/synth.
func Load(configFile string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("SYNTHLINE")
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// QueueCapFor returns the configured queue cap for level k, falling back to
// TerminalCap when k == MaxLevel and to 0 (unbounded) when unspecified.
func (c Config) QueueCapFor(k int) int {
	if k == c.MaxLevel {
		return c.TerminalCap
	}
	if v, ok := c.QueueCaps[k]; ok {
		return v
	}
	return 0
}

// PopulationFor returns the expected population for level k, defaulting to 0
// (let the Bloom filter constructor apply its own floor) when unspecified.
func (c Config) PopulationFor(k int) uint {
	for _, lp := range c.LevelPopulations {
		if lp.Level == k {
			return lp.Population
		}
	}
	return 0
}

// ProbabilisticActive reports whether the rarity filter (spec.md §4.5) is
// active at level k.
func (c Config) ProbabilisticActive(k int) bool {
	return int64(k) >= c.Probabilistic.StartLevel
}
