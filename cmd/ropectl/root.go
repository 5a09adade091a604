package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/ropecore/internal/config"
	"github.com/dshills/ropecore/internal/engine/encoding"
	"github.com/dshills/ropecore/internal/engine/native"
	"github.com/dshills/ropecore/internal/engine/rope"
	"github.com/dshills/ropecore/internal/logging"
)

// app carries state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logging.Logger
	log    zerolog.Logger

	release  native.FinalizationService
	shutdown func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ropectl",
		Short:         "Build and inspect ropes",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a TOML or YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newInspectCmd(a),
		newAppendCmd(a),
		newNativeCmd(a),
		newEncodingsCmd(a),
	)

	// Post-run hooks are skipped when RunE fails, so release resources
	// from each command instead.
	for _, c := range root.Commands() {
		if c.RunE == nil {
			continue
		}
		runE := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() { err = errors.CombineErrors(err, a.close()) }()
			return runE(cmd, args)
		}
	}
	return root
}

// setup loads configuration and creates the logger and finalization
// service.
func (a *app) setup(cmd *cobra.Command) error {
	var opts []config.Option
	if a.configPath != "" {
		opts = append(opts, config.WithFile(a.configPath))
	}
	cfg, err := config.Load(cmd.Context(), opts...)
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	if a.logLevel != "" {
		if err := cfg.Set("logging.level", a.logLevel); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Logging().LoggerConfig(), cmd.ErrOrStderr())
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	a.logger = logger
	a.log = logging.Component(logger.Logger, cmd.Name())
	a.log.Debug().Str("config", cfg.FilePath()).Msg("configuration loaded")

	a.release, a.shutdown = newFinalizationService(cfg.Native(), logger.Logger)
	return nil
}

func (a *app) close() error {
	var err error
	if a.shutdown != nil {
		err = a.shutdown()
	}
	if a.logger != nil {
		err = errors.CombineErrors(err, a.logger.Close())
	}
	return err
}

// newFinalizationService picks the release strategy for native memory.
// The returned shutdown function releases what is still outstanding.
func newFinalizationService(cfg config.NativeConfig, logger zerolog.Logger) (native.FinalizationService, func() error) {
	log := logging.Component(logger, "native")
	if cfg.Release == config.ReleaseManual {
		svc := native.NewManualService()
		return svc, func() error {
			freed, err := svc.ReleaseAll()
			log.Debug().Int("freed", freed).Msg("released native memory")
			return err
		}
	}

	svc := native.NewCleanupService(logger)
	return svc, func() error {
		s := svc.Stats()
		log.Debug().
			Int64("registered", s.Registered).
			Int64("released", s.Released).
			Int64("outstanding", s.Outstanding()).
			Msg("native memory at exit")
		return nil
	}
}

// encoding resolves name, falling back to the configured encoding.
func (a *app) encoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = a.cfg.Rope().Encoding
	}
	return encoding.Lookup(name)
}

// builderOptions returns builder options from the rope configuration.
func (a *app) builderOptions() []rope.BuilderOption {
	r := a.cfg.Rope()
	return []rope.BuilderOption{
		rope.WithChunkSize(r.ChunkSize),
		rope.WithMaxDepth(r.MaxDepth),
	}
}

// hasher returns the configured hasher and seed.
func (a *app) hasher() (rope.Hasher, uint64, error) {
	h := a.cfg.Hash()
	alg, err := rope.ParseHashAlgorithm(h.Algorithm)
	if err != nil {
		return rope.Hasher{}, 0, err
	}
	return rope.NewHasher(alg), h.Seed, nil
}
