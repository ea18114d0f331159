// Command synth runs the multi-level molecule synthesis engine (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cx-luo/synthline/internal/chemoracle"
	"github.com/cx-luo/synthline/internal/config"
	"github.com/cx-luo/synthline/internal/loader"
	"github.com/cx-luo/synthline/internal/logging"
	"github.com/cx-luo/synthline/internal/pipeline"
	"github.com/cx-luo/synthline/internal/sink"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "synth: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configFile   string
		outputFile   string
		outputDir    string
		validationIn string
		matchThresh  float64
		maxMW        float64
		maxHBD       float64
		maxHBA1      float64
		maxLogP      float64
		maxLevel     int
		probLevel    int
		smiOnly      bool
		serial       bool
		threaded     bool
		oraclePool   int
	)

	cmd := &cobra.Command{
		Use:   "synth [fragment-file ...]",
		Short: "Enumerate molecules by combinatorial fragment assembly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configFile != "" {
				loaded, err := config.Load(configFile)
				if err != nil {
					return fmt.Errorf("loading config file: %w", err)
				}
				cfg = loaded
			}
			cfg.RunID = uuid.NewString()
			cfg.FragmentPaths = args

			applyFlagOverrides(&cfg, cmd.Flags(), outputFile, outputDir, validationIn,
				matchThresh, maxMW, maxHBD, maxHBA1, maxLogP, maxLevel, probLevel,
				smiOnly, serial, threaded, oraclePool)

			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "optional config file (viper-compatible)")
	flags.StringVarP(&outputFile, "o", "o", "", "main output path, used as the output directory in place of synth_<odir>")
	flags.StringVarP(&validationIn, "v", "v", "", "validation identity input file")
	flags.Float64Var(&matchThresh, "tc", 0, "identity-match threshold")
	flags.Float64Var(&maxMW, "mw", 0, "override max molecular weight")
	flags.Float64Var(&maxHBD, "hd", 0, "override max hydrogen-bond donors")
	flags.Float64Var(&maxHBA1, "ha", 0, "override max hydrogen-bond acceptors")
	flags.Float64Var(&maxLogP, "lp", 0, "override max logP")
	flags.IntVar(&maxLevel, "hl", 0, "level upper bound K")
	flags.IntVar(&probLevel, "prob-level", 0, "probabilistic rarity filter start level")
	flags.BoolVar(&smiOnly, "smi-only", false, "emit only identity strings, no structure records")
	flags.BoolVar(&serial, "serial", false, "force the serial cascade")
	flags.BoolVar(&threaded, "threaded", false, "force the threaded cascade")
	flags.IntVar(&oraclePool, "pool", 0, "oracle-worker pool size")
	flags.StringVar(&outputDir, "odir", "", "output-directory suffix")

	return cmd
}

// applyFlagOverrides layers explicitly-set CLI flags on top of the loaded
// config (flags > file > defaults; see config.Load for when environment
// variables apply). Zero-valued, unset flags never clobber a file- or
// env-provided value.
func applyFlagOverrides(cfg *config.Config, flags pflagLookup, outputFile, outputDir, validationIn string,
	matchThresh, maxMW, maxHBD, maxHBA1, maxLogP float64, maxLevel, probLevel int,
	smiOnly, serial, threaded bool, oraclePool int) {

	if flags.Changed("o") {
		cfg.OutputFile = outputFile
	}
	if flags.Changed("odir") {
		cfg.OutputDirSuffix = outputDir
	}
	if flags.Changed("v") {
		cfg.ValidationFile = validationIn
	}
	if flags.Changed("tc") {
		cfg.IdentityMatchThreshold = matchThresh
	}
	if flags.Changed("mw") {
		cfg.DrugLikeness.MaxMW = maxMW
	}
	if flags.Changed("hd") {
		cfg.DrugLikeness.MaxHBD = maxHBD
	}
	if flags.Changed("ha") {
		cfg.DrugLikeness.MaxHBA1 = maxHBA1
	}
	if flags.Changed("lp") {
		cfg.DrugLikeness.MaxLogP = maxLogP
	}
	if flags.Changed("hl") {
		cfg.MaxLevel = maxLevel
	}
	if flags.Changed("prob-level") {
		cfg.Probabilistic.StartLevel = int64(probLevel)
	}
	if flags.Changed("smi-only") {
		cfg.SMIOnly = smiOnly
	}
	if flags.Changed("pool") {
		cfg.OraclePoolSize = oraclePool
	}
	if serial {
		cfg.Mode = config.Serial
	}
	if threaded {
		cfg.Mode = config.Threaded
	}
}

// pflagLookup is the minimal subset of *pflag.FlagSet used above; declared
// locally so applyFlagOverrides stays testable without importing pflag
// throughout this file's signature.
type pflagLookup = interface {
	Changed(name string) bool
}

func run(cfg config.Config) error {
	logCfg := logging.Config{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      cfg.Logging.OutputPaths,
		ErrorOutputPaths: cfg.Logging.ErrorOutputPaths,
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}
	logger = logger.With(logging.String("run_id", cfg.RunID))
	logging.SetDefault(logger)

	if cfg.ValidationFile != "" {
		identity, err := readValidationIdentity(cfg.ValidationFile)
		if err != nil {
			return fmt.Errorf("reading validation file: %w", err)
		}
		cfg.ValidationIdentity = identity
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fragLoader := loader.New(cfg.FragmentPaths)
	oracle := chemoracle.New(cfg.DrugLikeness)

	outDir := cfg.OutputFile
	if outDir == "" {
		outDir = "synth_" + cfg.OutputDirSuffix
	}
	sk, err := sink.New(outDir, cfg.IdentityFileCap, cfg.StructureFileCap, cfg.SMIOnly, logger)
	if err != nil {
		return fmt.Errorf("constructing sink: %w", err)
	}

	driver, err := pipeline.New(ctx, cfg, fragLoader, oracle, sk, logger)
	if err != nil {
		closeErr := sk.Close()
		return combineErrs(err, closeErr)
	}

	go func() {
		select {
		case <-sigCh:
			logger.Info("signal received, requesting cancellation")
			driver.RequestCancel()
		case <-ctx.Done():
		}
	}()

	var result pipeline.Result
	if cfg.Mode == config.Threaded {
		result, err = driver.RunThreaded(ctx)
	} else {
		result, err = driver.RunSerial(ctx)
	}

	if closeErr := sk.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	logger.Info("run complete",
		logging.Bool("cancelled", result.Cancelled),
		logging.Bool("validation_hit", result.ValidationHit),
		logging.Int64("rejected", result.RejectedCount),
	)
	for level, count := range result.AcceptedByLevel {
		logger.Info("level accepted", logging.Int("level", level), logging.Int64("count", count))
	}

	return nil
}

func readValidationIdentity(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func combineErrs(a, b error) error {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return fmt.Errorf("%w; %v", a, b)
}
