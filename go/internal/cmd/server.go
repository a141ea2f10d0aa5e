package main

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/sticks/go/internal/gamerpc"
)

func setupServer(config *Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{gamerpc.ReasonHeader},
	})

	registerServices(mux, services)
	setupHealthCheck(mux)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Server.Port),
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	gamePath, gameHandler := gamerpc.NewGameServiceHandler(services.Game)
	mux.Handle(gamePath, gameHandler)

	// websocket subscription and snapshot endpoints
	services.Gateway.RegisterRoutes(mux)
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
