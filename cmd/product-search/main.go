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
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/palette"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/search"
)

// config structure
type productSearchConfig struct {
	lib.BaseConfig `mapstructure:",squash"`
	Server         struct {
		HttpPort    int      `mapstructure:"http_port"`
		RateLimit   float64  `mapstructure:"rate_limit"`
		RateBurst   int      `mapstructure:"rate_burst"`
		CorsOrigins []string `mapstructure:"cors_origins"`
	}
	Ner         predict.Config
	Cache       cache.Config
	PaletteFile string `mapstructure:"palette_file"`
}

var config productSearchConfig

func initConfig() {
	// Set default config values
	err := lib.InitializeConfig("./config/product-search.yml", map[string]interface{}{
		"log_level": "info",
		"log_file":  "",
		"server": map[string]interface{}{
			"http_port":    8080,
			"rate_limit":   0,
			"rate_burst":   10,
			"cors_origins": []string{"*"},
		},
		"ner": map[string]interface{}{
			"url":              "http://localhost:3001",
			"timeout":          "0s",
			"max_query_length": predict.DefaultMaxQueryLength,
			"breaker": map[string]interface{}{
				"enabled":  false,
				"failures": 5,
				"timeout":  "30s",
			},
		},
		"cache": map[string]interface{}{
			"type": string(cache.None),
			"size": 1024,
			"ttl":  "1h",
			"redis": map[string]interface{}{
				"host": "localhost",
				"port": 6379,
			},
			"elasticsearch": map[string]interface{}{
				"host":  "localhost",
				"port":  9200,
				"index": "product-search-predictions",
			},
		},
		"palette_file": "",
	}, &config)
	if err != nil {
		panic(err)
	}
}

func loadPalette(path string) palette.Palette {
	if path == "" {
		return palette.Default()
	}
	p, err := palette.Load(path)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	return *p
}

func main() {
	initConfig()

	p := loadPalette(config.PaletteFile)

	store, err := search.OpenCache(config.Cache)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	client := predict.NewClient(config.Ner, nil)
	controller := search.NewController(client, store, p)

	s, err := newServer(controller, p)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestID, gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: lib.JsonLogFormatter,
		Output:    lib.LogWriter(),
	}), gin.Recovery(), corsMiddleware(config.Server.CorsOrigins))
	s.RegisterRoutes(r, rateLimit(config.Server.RateLimit, config.Server.RateBurst))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Server.HttpPort),
		Handler: r,
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Str("ner", config.Ner.URL).Msg("serving")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Send()
		}
	}()

	lib.HandleInterrupt(func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	})
}
