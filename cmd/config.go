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

	"github.com/seescience/beamtime-server/config"
)

const maskedSecret = "********"

// maskSecrets returns a copy of the configuration that is safe to print.
func maskSecrets(cnf config.Configuration) config.Configuration {
	if cnf.DataCite.Password != "" {
		cnf.DataCite.Password = maskedSecret
	}
	if cnf.OtelExporter.OtelExporterOtlpHeaders != "" {
		cnf.OtelExporter.OtelExporterOtlpHeaders = maskedSecret
	}
	return cnf
}

func configCommands(app *beamtimeInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "config outputs your instance's computed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(maskSecrets(*app.cnf), "", "    ")
			if err != nil {
				return fmt.Errorf("error printing config: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}
