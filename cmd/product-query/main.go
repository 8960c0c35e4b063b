/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/palette"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/search"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/view"
)

// config structure
type productQueryConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Ner            predict.Config
	Cache          cache.Config
	PaletteFile    string `mapstructure:"palette_file"`
}

var defaultConfig = map[string]interface{}{
	"log_level": "warn",
	"log_file":  "",
	"ner": map[string]interface{}{
		"url":              "http://localhost:3001",
		"timeout":          "30s",
		"max_query_length": predict.DefaultMaxQueryLength,
	},
	"cache": map[string]interface{}{
		"type": string(cache.None),
		"size": 1024,
		"ttl":  "1h",
	},
	"palette_file": "",
}

// errFailed marks a search that failed after its message was printed.
var errFailed = errors.New("search failed")

func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		asJSON  bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:           "product-query [query...]",
		Short:         "Highlight the products named in a search query",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			if strings.TrimSpace(input) == "" {
				return nil
			}

			var conf productQueryConfig
			if err := lib.LoadConfig(cmd.Flags(), defaultConfig, &conf); err != nil {
				return err
			}

			p := palette.Default()
			if conf.PaletteFile != "" {
				loaded, err := palette.Load(conf.PaletteFile)
				if err != nil {
					return err
				}
				p = *loaded
			}

			store, err := search.OpenCache(conf.Cache)
			if err != nil {
				return err
			}
			controller := search.NewController(predict.NewClient(conf.Ner, nil), store, p)

			r := renderer{palette: p, plain: noColor}
			return query(cmd.Context(), view.NewSession(controller), r, stdout, input, asJSON)
		},
	}

	cmd.Flags().String("config", "./config/product-search.yml", "The config file path.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON.")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Mark entities with brackets instead of colours.")

	return cmd
}

// query runs one search and writes the result. A blank query writes nothing.
func query(ctx context.Context, session *view.Session, r renderer, w io.Writer, input string, asJSON bool) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	state, err := session.Submit(ctx, input)
	if err != nil {
		log.Debug().Err(err).Str("kind", predict.Kind(err)).Msg("search failed")
		if asJSON {
			enc := json.NewEncoder(w)
			_ = enc.Encode(map[string]string{"kind": predict.Kind(err), "message": state.ErrMessage()})
		} else {
			_, _ = fmt.Fprintln(w, r.render(state))
		}
		return errFailed
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Result())
	}
	_, err = fmt.Fprintln(w, r.render(state))
	return err
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
