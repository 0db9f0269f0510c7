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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/valpere/trojalunch/internal/app"
	"github.com/valpere/trojalunch/internal/place"
	"github.com/valpere/trojalunch/internal/store"
	"github.com/valpere/trojalunch/internal/translator"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// buildApp wires the full application context from the viper configuration.
// The caller owns the returned store and must Close it.
func buildApp(logger *slog.Logger) (*app.App, *store.Store, error) {
	st, err := store.New(viper.GetString("db_path"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}

	svc, err := buildTranslator(st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	fetchers := []place.Fetcher{
		place.NewMenzaTroja(viper.GetString("menza_url"), logger),
		place.NewBufetTroja(viper.GetString("bufet_url"), logger),
		place.NewCastleRestaurant(viper.GetString("castle_url"), logger),
	}

	dishes := translator.ForDishes(svc,
		viper.GetString("source_lang"), viper.GetString("target_lang"))

	a, err := app.New(fetchers, st, dishes, logger, app.Config{
		RefreshInterval: viper.GetDuration("refresh_interval"),
		SourceTimeout:   viper.GetDuration("source_timeout"),
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	return a, st, nil
}

// buildTranslator selects the translation backend and wraps it in the
// store-backed translation memory.
func buildTranslator(st *store.Store) (translator.Service, error) {
	var svc translator.Service

	switch name := viper.GetString("translator"); name {
	case "lindat":
		svc = translator.NewLindatService(viper.GetString("lindat_url"))
	case "google":
		svc = translator.NewGoogleService(viper.GetString("google_credentials"))
	default:
		return nil, fmt.Errorf("unknown translator: %s", name)
	}

	return translator.NewCachedService(svc, st), nil
}
