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

	"github.com/valpere/trojalunch/internal/store"
)

var dotdRegenerate bool

var dotdCmd = &cobra.Command{
	Use:   "dotd",
	Short: "Show the dish of the day",
	Long: `Show the cached dish of the day. The selection is generated once and
reused until --regenerate picks a new one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		a, st, err := buildApp(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()

		var dotd *store.DishOfTheDay
		if dotdRegenerate {
			dotd, err = a.GenerateDishOfTheDay(ctx)
		} else {
			dotd, err = a.DishOfTheDay(ctx)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s at %s\n", dotd.Dish, dotd.Place)
		return nil
	},
}

func init() {
	dotdCmd.Flags().BoolVar(&dotdRegenerate, "regenerate", false, "pick a new dish of the day")
	rootCmd.AddCommand(dotdCmd)
}
