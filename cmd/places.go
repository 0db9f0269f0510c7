/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Dump the raw cached place state as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		a, st, err := buildApp(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		places := a.Places()
		if places == nil {
			fmt.Println("Cache is empty, run \"trojalunch refresh\" first.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(places)
	},
}

func init() {
	rootCmd.AddCommand(placesCmd)
}
