// Command chatflow-stub serves the in-memory development backend so the
// engine can be exercised without the production conversational service.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/stubserver"
	"github.com/WidgetWorks/ChatFlow/internal/util"
)

// DefaultAddr is the default listen address, matching the engine's default
// backend base URL.
const DefaultAddr = ":5001"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	addr := flag.String("addr", envOr("CHATFLOW_STUB_ADDR", DefaultAddr), "listen address (overrides $CHATFLOW_STUB_ADDR)")
	companyName := flag.String("company", "ChatFlow Dev", "company name served by /get_company_config")
	tone := flag.String("tone", "Friendly", "company tone served by /get_company_config")
	debug := flag.Bool("debug", util.ParseBoolEnv("CHATFLOW_DEBUG", false), "enable debug logging (overrides $CHATFLOW_DEBUG)")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	srv := stubserver.New(models.CompanyConfig{
		CompanyName:    *companyName,
		WelcomeMessage: "Welcome to " + *companyName + "!",
		Tone:           *tone,
	})

	slog.Info("ChatFlow stub backend listening", "addr", *addr, "company", *companyName, "tone", *tone)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		slog.Error("Stub backend failed to serve", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
