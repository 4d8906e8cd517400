package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PaulFidika/donorkit/lang"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	storeFlag string
	langFlag  string
	// Verbose enables debug logging
	Verbose bool
	// NoColor disables colorized output
	NoColor bool

	log = logrus.New()
)

// errReported fails a command whose error the user has already been shown.
var errReported = errors.New("already reported")

var rootCmd = &cobra.Command{
	Use:           "donorkit",
	Short:         "Redeem donor codes and track premium print entitlements",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(cmd.ErrOrStderr())
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if Verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		color.NoColor = color.NoColor || NoColor
	},
}

// Execute runs the root command. It is called once by main.main.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			log.Error(err.Error())
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "storage backend: sqlite, memory, redis or postgres (default $DONORKIT_STORE or sqlite)")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", fmt.Sprintf("message language: %s", strings.Join(lang.Supported(), ", ")))
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "disable colorized output")

	rootCmd.AddCommand(serveCmd, redeemCmd, statusCmd, consumeCmd, badgeCmd, codesCmd, sweepCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// settings resolves environment config and flag overrides.
func settings() (Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, err
	}
	if storeFlag != "" {
		cfg.Store = storeFlag
	}
	if langFlag != "" {
		cfg.Lang = langFlag
	}
	return cfg, nil
}
