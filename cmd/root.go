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
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/trojalunch/internal/translator"
)

var version = "0.3.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "trojalunch",
	Short: "Troja lunch-menu aggregator",
	Long: `Aggregates daily lunch menus from the Troja canteen RSS feed, the
buffet's PDF bulletin and the Castle Restaurant web page, translates the
dish names and serves a cached daily overview plus a dish of the day.

Use "trojalunch refresh" to fetch the sources and "trojalunch overview"
to print today's menus.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default trojalunch.yaml)")
	rootCmd.PersistentFlags().String("db", "trojalunch.db", "path to the sqlite cache")
	viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("trojalunch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetDefault("menza_url", "https://kamweb.ruk.cuni.cz/webkredit/Api/Ordering/Rss?canteenId=27&locale=cs")
	viper.SetDefault("bufet_url", "https://aurora.troja.mff.cuni.cz/pavlu/bufet.pdf")
	viper.SetDefault("castle_url", "https://www.prazskejrej.cz/menu-na-web/castle-residence")
	viper.SetDefault("translator", "lindat")
	viper.SetDefault("lindat_url", translator.DefaultLindatURL)
	viper.SetDefault("source_lang", "cs")
	viper.SetDefault("target_lang", "en")
	viper.SetDefault("refresh_interval", 23*time.Hour)
	viper.SetDefault("source_timeout", 60*time.Second)

	viper.SetEnvPrefix("trojalunch")
	viper.AutomaticEnv()

	// Missing config file is fine, the defaults cover a full deployment.
	_ = viper.ReadInConfig()
}
