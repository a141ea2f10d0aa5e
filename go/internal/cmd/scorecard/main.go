// Command scorecard is a terminal scorecard. Rounds and the room session
// are kept in a local SQLite file; setting SERVER_URL enables hosting and
// joining rooms on a sticks server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/sticks/go/internal/bridge"
	"github.com/mcdev12/sticks/go/internal/flow"
	"github.com/mcdev12/sticks/go/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "warn"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, getEnv("LOCAL_DB_PATH", "sticks.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local database")
	}
	defer db.Close()

	clock := clockwork.NewRealClock()
	roundStore := storage.NewRoundStore(db)
	sessionStore := storage.NewSessionStore(db)

	cfg := flow.ControllerConfig{
		Clock:    clock,
		Rounds:   roundStore,
		Sessions: sessionStore,
	}
	if url := os.Getenv("SERVER_URL"); url != "" {
		cfg.Bridge = bridge.NewClient(bridge.DefaultClientConfig(url), clock)
	}

	ctrl := flow.NewController(cfg)
	go func() {
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("flow controller exited unexpectedly")
		}
	}()

	sh := newShell(ctrl, roundStore, sessionStore, os.Stdout)
	sh.greet(ctx, cfg.Bridge != nil)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(os.Stdout, "> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := sh.exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return
				}
				fmt.Fprintf(os.Stdout, "error: %v\n", err)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
