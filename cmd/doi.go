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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func doiCommands(app *beamtimeInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doi",
		Short: "Manage registered dataset DOIs",
	}

	cmd.AddCommand(doiPublishCommand(app))
	cmd.AddCommand(doiDeleteCommand(app))
	cmd.AddCommand(doiStatusCommand(app))
	return cmd
}

func doiPublishCommand(app *beamtimeInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <doi>",
		Short: "Make a draft DOI findable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(); err != nil {
				return err
			}
			defer app.close()

			if _, err := app.beamtime.DOI.Publish(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Published %s\n", args[0])
			return nil
		},
	}
}

func doiDeleteCommand(app *beamtimeInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <doi>",
		Short: "Delete a draft DOI from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(); err != nil {
				return err
			}
			defer app.close()

			if err := app.beamtime.Registry.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func doiStatusCommand(app *beamtimeInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "status <doi>",
		Short: "Show the registry state of a DOI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(); err != nil {
				return err
			}
			defer app.close()

			resp, err := app.beamtime.Registry.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(resp.Data, "", "    ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
