// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/agoniagame/agonia/internal/auth"
	"github.com/agoniagame/agonia/internal/config"
	"github.com/agoniagame/agonia/internal/game"
	"github.com/agoniagame/agonia/internal/handlers"
	"github.com/agoniagame/agonia/internal/journal"
	"github.com/agoniagame/agonia/internal/middleware"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	var jrnl *journal.Journal
	if cfg.RedisAddr != "" {
		var err error
		jrnl, err = journal.Connect(cfg.RedisAddr, cfg.RedisQueue)
		if err != nil {
			log.Fatalf("journal init failed: %v", err)
		}
		logger.Infof("Action journal enabled at %s", cfg.RedisAddr)
	}

	rules := game.PresetRuleset(cfg.RulesetName)
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	srv := handlers.NewMatchServer(rules, seed, logger, jrnl)
	logger.Infof("Table ready, ruleset %q", rules.Name)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.MatchWSHandler(logger, srv),
	)))

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
