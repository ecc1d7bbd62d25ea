/*
Copyright 2025 The Beamtime Server Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seescience/beamtime-server"
	"github.com/seescience/beamtime-server/config"
	"github.com/seescience/beamtime-server/database"
	"github.com/seescience/beamtime-server/internal/logger"
	"github.com/seescience/beamtime-server/internal/traces"
)

// BeamtimeCLI represents the CLI application, encapsulating the root Cobra command.
type BeamtimeCLI struct {
	cmd *cobra.Command
}

// beamtimeInstance carries what the subcommands share: configuration, the
// process logger and, once opened, the datasource and wired processors.
type beamtimeInstance struct {
	configFile string
	dryRun     bool

	cnf      *config.Configuration
	logger   *logrus.Logger
	ds       *database.Datasource
	beamtime *beamtime.Beamtime
	shutdown traces.ShutdownFunc
}

// recoverPanic handles any panics during program execution and logs the error using Logrus.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and sets up logging and tracing before any
// command runs. The database is only opened by commands that need it.
func preRun(app *beamtimeInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(app.configFile); err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}
		app.cnf = cnf

		log, err := logger.New(cnf.Log)
		if err != nil {
			return fmt.Errorf("error setting up logging: %w", err)
		}
		app.logger = log

		app.shutdown = traces.Noop
		if cnf.EnableTelemetry {
			if err := config.SetOtelExporterEnvs(); err != nil {
				return err
			}
			shutdown, err := traces.SetupOTelSDK(cmd.Context(), cnf.ProjectName)
			if err != nil {
				return fmt.Errorf("error setting up OTel SDK: %w", err)
			}
			app.shutdown = shutdown
		}

		if app.dryRun {
			app.logger.Warn("Running in DRY RUN mode, no changes will be made")
		}
		return nil
	}
}

func postRun(app *beamtimeInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if app.shutdown == nil {
			return nil
		}
		return app.shutdown(context.WithoutCancel(cmd.Context()))
	}
}

// open connects to the database and wires the processors.
func (app *beamtimeInstance) open() error {
	ds, err := database.NewDataSource(app.cnf)
	if err != nil {
		return fmt.Errorf("error getting datasource: %w", err)
	}
	app.ds = ds
	app.beamtime = beamtime.NewBeamtime(app.cnf, ds, app.dryRun, app.logger)
	return nil
}

func (app *beamtimeInstance) close() {
	if app.ds == nil {
		return
	}
	if err := app.ds.Close(); err != nil {
		app.logger.WithError(err).Warn("Error closing database connection")
	}
}

// NewCLI creates the root command and registers the subcommands.
func NewCLI() *BeamtimeCLI {
	app := &beamtimeInstance{}

	rootCmd := &cobra.Command{
		Use:           "beamtime-server",
		Short:         "Process beamtime experiment queue: folders, DOIs and landing pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "./beamtime.json", "Configuration file for the beamtime server")
	rootCmd.PersistentFlags().BoolVar(&app.dryRun, "dry-run", false, "Log intended changes without touching the registry, filesystem or database")

	rootCmd.PersistentPreRunE = preRun(app)
	rootCmd.PersistentPostRunE = postRun(app)

	rootCmd.AddCommand(queueCommands(app))
	rootCmd.AddCommand(batchCommands(app))
	rootCmd.AddCommand(doiCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(configCommands(app))

	return &BeamtimeCLI{cmd: rootCmd}
}

func (b BeamtimeCLI) executeCLI() {
	if err := b.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
