package main

import (
	"context"
	"fmt"
	"gcpctl/internal/cli/backend"
	"gcpctl/internal/cli/ensure"
	"gcpctl/internal/cli/instances"
	"gcpctl/internal/cli/report"
	"gcpctl/internal/cli/version"
	"gcpctl/internal/env"
	"gcpctl/internal/lib/errs"
	"gcpctl/internal/logging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"unicode"
)

var rootCmd = &cobra.Command{
	Use:   "gcpctl [group] [command] [flags]",
	Short: "Idempotent ensure operations for google cloud resources",
	Run: func(c *cobra.Command, _ []string) {
		if err := c.Help(); err != nil {
			log.Debug().Msgf("ignoring cobra error %q", err.Error())
		}
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := env.Load(); err != nil {
			return err
		}
		if env.Config.Verbose && zerolog.GlobalLevel() > zerolog.InfoLevel {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var groups = []string{"ensure", "instances", "backend"}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var drift *report.DriftError
	switch {
	case errs.IsAssertion(err):
		logging.UserError("%s", err)
	case errors.As(err, &drift):
		logging.UserFailure("%s", drift)
		os.Exit(report.DriftExitCode)
	default:
		log.Debug().Msgf("%+v", err)
		logging.UserFailure("%s", err)
		os.Exit(1)
	}
}

func Usage(cmd *cobra.Command) error {
	if cmd == nil {
		return fmt.Errorf("nil command")
	}

	usage := []string{fmt.Sprintf("Usage: %s", cmd.UseLine())}
	cmdPath := cmd.CommandPath()

	if cmdPath == "gcpctl" {
		usage = append(usage, "\nGroups:")
		for _, subCommand := range cmd.Commands() {
			if slices.Contains(groups, subCommand.Name()) {
				usage = append(usage, fmt.Sprintf("  %s %-30s  %s", cmd.CommandPath(), subCommand.Name(), subCommand.Short))
			}
		}
	}

	usage = append(usage, "\nCommands:")
	for _, subCommand := range cmd.Commands() {
		if !subCommand.Hidden && !slices.Contains(groups, subCommand.Name()) {
			usage = append(usage, fmt.Sprintf("  %s %-30s  %s", cmd.CommandPath(), subCommand.Name(), subCommand.Short))
		}
	}

	if len(cmd.Aliases) > 0 {
		usage = append(usage, "\nAliases: "+cmd.NameAndAliases())
	}

	usage = append(usage, "\nCommon flags:")
	if len(cmd.PersistentFlags().FlagUsages()) != 0 {
		usage = append(usage, strings.TrimRightFunc(cmd.PersistentFlags().FlagUsages(), unicode.IsSpace))
	}
	if len(cmd.InheritedFlags().FlagUsages()) != 0 {
		usage = append(usage, strings.TrimRightFunc(cmd.InheritedFlags().FlagUsages(), unicode.IsSpace))
	}
	if len(cmd.LocalNonPersistentFlags().FlagUsages()) != 0 {
		usage = append(usage, "\nFlags:")
		usage = append(usage, strings.TrimRightFunc(cmd.LocalNonPersistentFlags().FlagUsages(), unicode.IsSpace))
	}

	if cmdPath == "gcpctl" {
		cmdPath += " [group]"
	} else {
		cmdPath += " [command]"
	}
	usage = append(usage, fmt.Sprintf("\nUse \"%s --help\" for more information", cmdPath))

	cmd.Println(strings.Join(usage, "\n"))
	return nil
}

func init() {
	rootCmd.AddCommand(ensure.Ensure)
	rootCmd.AddCommand(instances.Instances)
	rootCmd.AddCommand(backend.Backend)
	rootCmd.AddCommand(version.Version)

	flags := rootCmd.PersistentFlags()
	flags.BoolP("help", "h", false, "help for this command")
	flags.StringVar(&env.ConfigFile, "config", "", "config file, defaults to .gcpctl.yaml in the working or home directory")
	flags.StringP("project", "p", "", "GCP project")
	flags.StringP("zone", "z", "", "GCP zone")
	flags.BoolP("verbose", "v", false, "print the full resources")
	flags.String("credentials-file", "", "service account key file, defaults to application default credentials")
	flags.Bool("fail-on-drift", true, "exit with a non-zero code when an existing resource drifted")
	for key, flag := range map[string]string{
		"project":          "project",
		"zone":             "zone",
		"verbose":          "verbose",
		"credentials_file": "credentials-file",
		"fail_on_drift":    "fail-on-drift",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatal().Err(err).Msgf("bind flag %s", flag)
		}
	}
	rootCmd.SetUsageFunc(Usage)
}

func configureLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	} else {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			log.Fatal().Err(err).Msg("parse LOG_LEVEL")
		}
		zerolog.SetGlobalLevel(level)
	}
}

func main() {
	configureLogging()
	Execute()
}
