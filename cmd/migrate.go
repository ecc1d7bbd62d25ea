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

/*
Package main provides the CLI commands for managing the development schema of
the beamtime server. This includes commands for applying and rolling back
migrations.
*/

package main

import (
	"fmt"

	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/seescience/beamtime-server"
	"github.com/seescience/beamtime-server/database"
)

// migrateCommands creates the root command for migration-related operations.
func migrateCommands(app *beamtimeInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded database schema",
	}

	cmd.AddCommand(migrateDirectionCommand(app, "up", migrate.Up))
	cmd.AddCommand(migrateDirectionCommand(app, "down", migrate.Down))

	return cmd
}

// runMigrations applies the embedded migrations in the given direction and
// returns how many were applied.
func runMigrations(app *beamtimeInstance, direction migrate.MigrationDirection) (int, error) {
	migrations := migrate.EmbedFileSystemMigrationSource{
		FileSystem: beamtime.SQLFiles,
		Root:       "sql",
	}

	db, err := database.ConnectDB(app.cnf.DataSource)
	if err != nil {
		return 0, errors.Wrap(err, "connecting to database")
	}
	defer db.Close()

	n, err := migrate.Exec(db, "postgres", migrations, direction)
	if err != nil {
		return n, errors.Wrapf(err, "migrating %s", directionName(direction))
	}
	return n, nil
}

func migrateDirectionCommand(app *beamtimeInstance, use string, direction migrate.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Migrate the schema %s", use),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.dryRun {
				app.logger.Infof("[DRY RUN] Would migrate %s", use)
				return nil
			}
			n, err := runMigrations(app, direction)
			if err != nil {
				return err
			}
			if direction == migrate.Up {
				fmt.Printf("Applied %d migrations!\n", n)
			} else {
				fmt.Printf("Rolled back %d migrations!\n", n)
			}
			return nil
		},
	}
}

func directionName(direction migrate.MigrationDirection) string {
	if direction == migrate.Up {
		return "up"
	}
	return "down"
}
