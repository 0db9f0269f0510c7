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
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshForce bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch all menu sources and update the cache",
	Long: `Fetch every configured place, translate today's menus and replace the
persisted snapshot. Within the staleness window the call is a no-op unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		a, st, err := buildApp(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		refreshed, err := a.Refresh(context.Background(), refreshForce)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		if !refreshed {
			fmt.Println("Cache is fresh, nothing to do (use --force to refresh anyway).")
			return nil
		}

		fmt.Println("Refreshed all places.")
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false, "refresh even when the cache is fresh")
	rootCmd.AddCommand(refreshCmd)
}
