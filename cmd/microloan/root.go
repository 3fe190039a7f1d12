package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/microloan/internal/cache"
	"github.com/iwvelando/microloan/internal/config"
	"github.com/iwvelando/microloan/internal/quote"
	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/loans"
	"github.com/iwvelando/microloan/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath   string
	logLevel     string
	outputFormat string

	conf   *config.Configuration
	logger *zap.Logger
	cache  cache.Cache
	quotes *quote.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "microloan",
		Short:        "EMI schedules, affordability checks and loan numbers for microloans",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv")

	cmd.AddCommand(
		emiCmd(a),
		validateCmd(a),
		affordCmd(a),
		maxLoanCmd(a),
		prepayCmd(a),
		interestCmd(a),
		penaltyCmd(a),
		loanNumberCmd(a),
		compareCmd(a),
		serveCmd(a),
		versionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	// The default config file is optional; an explicit one is not.
	path := a.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}
	a.conf = conf

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if a.outputFormat == "" {
		a.outputFormat = conf.Output.Format
	}
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}

	a.cache, err = cache.New(conf.Cache, logger)
	if err != nil {
		return err
	}

	engine := loans.NewEngine(logger, loans.WithBounds(conf.Bounds()))
	a.quotes = quote.NewService(engine, a.cache, logger, quote.Options{
		LenderCode: conf.Lending.LenderCode,
		BranchCode: conf.Lending.BranchCode,
		FOIR:       conf.Lending.FOIR,
		TTL:        conf.Cache.TTL(),
	})
	return nil
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close cache", zap.String("op", "main"), zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
