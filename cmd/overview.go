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
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/trojalunch/internal/menu"
)

var overviewDate string

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the menu overview for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		a, st, err := buildApp(logger)
		if err != nil {
			return err
		}
		defer st.Close()

		day := menu.Day(time.Now())
		if overviewDate != "" {
			day, err = time.Parse("2006-01-02", overviewDate)
			if err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", overviewDate, err)
			}
		}

		overview := a.OverviewForDay(context.Background(), day)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PLACE\tKIND\tDISH\tTRANSLATION\tPRICE")
		for _, entry := range overview {
			if len(entry.Soups) == 0 && len(entry.Dishes) == 0 {
				fmt.Fprintf(w, "%s\t-\t(no menu)\t\t\n", entry.Place)
				continue
			}
			for _, d := range entry.Soups {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", entry.Place, d.Kind, d.Name, d.NameEn, d.Price)
			}
			for _, d := range entry.Dishes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", entry.Place, d.Kind, d.Name, d.NameEn, d.Price)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if last, ok := a.LastUpdate(); ok {
			fmt.Printf("\nLast update: %s\n", last.Format("02 Jan 2006 15:04:05"))
		} else {
			fmt.Println("\nCache is empty, run \"trojalunch refresh\" first.")
		}
		return nil
	},
}

func init() {
	overviewCmd.Flags().StringVar(&overviewDate, "date", "", "day to show (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(overviewCmd)
}
