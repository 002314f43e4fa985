// Command chatflow runs the conversation engine against a backend from a
// terminal: utterances are read from stdin, the transcript is printed to
// stdout, and slash commands drive the widget affordances (slot picker,
// feedback prompt, close, reset).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/WidgetWorks/ChatFlow/internal/backend"
	"github.com/WidgetWorks/ChatFlow/internal/config"
	"github.com/WidgetWorks/ChatFlow/internal/flow"
	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/session"
	"github.com/WidgetWorks/ChatFlow/internal/slots"
	"github.com/WidgetWorks/ChatFlow/internal/transcript"
)

// usernameFileName is the persisted local identity, lowest-priority source.
const usernameFileName = "username"

func main() {
	// Load environment configuration
	cfg := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(&cfg)

	// Initialize structured logger
	initializeLogger(cfg.Debug)

	sess := session.NewResolver(cfg.BotID, cfg.AuthToken, usernameSources(cfg))
	be := backend.NewClient(cfg.BaseURL, backend.WithAuthToken(cfg.AuthToken))
	sink := &consoleSink{out: os.Stdout}
	timer := flow.NewSimpleTimer()
	defer timer.Stop()

	controller := flow.NewController(sess, be, sink, timer, &cfg, time.Local)

	ctx := context.Background()
	bootstrapCompanyConfig(ctx, be, sess, &cfg)

	host := &terminalHost{
		controller: controller,
		sink:       sink,
	}
	controller.PresentSlotPicker = host.renderPickerDays
	controller.PresentFeedbackPrompt = host.renderFeedbackPrompt
	controller.OnClose = host.closeChat

	controller.ResetChat()
	slog.Info("ChatFlow terminal host ready", "sessionID", sess.SessionID(), "base_url", cfg.BaseURL)
	if !*flags.quiet {
		fmt.Println("Type a message, or /help for commands.")
	}

	host.run(ctx)
	slog.Info("ChatFlow exited successfully")
}

// Flags holds command line flag values
type Flags struct {
	quiet *bool
}

// initializeLogger sets up structured logging, debug level when requested.
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() config.Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}
	return config.FromEnv()
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(cfg *config.Config) Flags {
	apiURL := flag.String("api-url", cfg.BaseURL, "backend base URL (overrides $CHATFLOW_API_URL)")
	authToken := flag.String("auth-token", cfg.AuthToken, "bearer token for backend requests (overrides $CHATFLOW_AUTH_TOKEN)")
	botID := flag.String("bot-id", cfg.BotID, "bot identifier (overrides $CHATFLOW_BOT_ID)")
	username := flag.String("username", cfg.Username, "explicit end-user username (overrides $CHATFLOW_USERNAME)")
	debug := flag.Bool("debug", cfg.Debug, "enable debug logging (overrides $CHATFLOW_DEBUG)")
	flags := Flags{
		quiet: flag.Bool("quiet", false, "suppress the startup hint"),
	}

	flag.Parse()

	cfg.BaseURL = *apiURL
	cfg.AuthToken = *authToken
	cfg.BotID = *botID
	cfg.Username = *username
	cfg.Debug = *debug
	return flags
}

// usernameSources builds the ordered identity chain: explicit config first,
// then the environment override, then the persisted local value.
func usernameSources(cfg config.Config) []session.Source {
	return []session.Source{
		session.StaticSource("config", cfg.Username),
		{Name: "env_override", Lookup: func() string {
			return os.Getenv("CHATFLOW_USERNAME_OVERRIDE")
		}},
		{Name: "persisted", Lookup: readPersistedUsername},
	}
}

// readPersistedUsername reads the username persisted by a previous run, if any.
func readPersistedUsername() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(dir, "chatflow", usernameFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// bootstrapCompanyConfig fetches tenant branding before the first render.
// Failure is non-fatal: the engine runs with defaults.
func bootstrapCompanyConfig(ctx context.Context, be *backend.Client, sess *session.Resolver, cfg *config.Config) {
	resp, err := be.GetCompanyConfig(ctx, sess.Username())
	if err != nil {
		slog.Warn("Company config fetch failed, using defaults", "error", err)
		return
	}
	if !resp.Success {
		slog.Warn("Company config fetch rejected, using defaults")
		return
	}
	cfg.ApplyCompany(resp.Config)
}

// consoleSink renders the transcript to a terminal as it grows.
type consoleSink struct {
	out     *os.File
	loading bool
}

func (s *consoleSink) AddUser(body string) {
	s.loading = false
	// The terminal already shows what the user typed.
}

func (s *consoleSink) AddBot(body string) {
	if s.loading {
		s.loading = false
	}
	fmt.Fprintf(s.out, "bot> %s\n", body)
}

func (s *consoleSink) ShowLoading() {
	if s.loading {
		return
	}
	s.loading = true
	fmt.Fprintf(s.out, "bot> %s\n", transcript.LoadingText)
}

func (s *consoleSink) ClearLoading() {
	s.loading = false
}

func (s *consoleSink) Clear() {
	s.loading = false
	fmt.Fprintln(s.out, "--- chat cleared ---")
}

// terminalHost owns the REPL and the picker/feedback rendering state.
type terminalHost struct {
	controller *flow.Controller
	sink       *consoleSink

	days []time.Time
	opts []slots.Option
	done bool
}

func (h *terminalHost) run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	for !h.done {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			h.handleCommand(ctx, line)
			continue
		}
		if err := h.controller.HandleUtterance(ctx, line); err != nil {
			switch {
			case errors.Is(err, models.ErrFlowBusy):
				fmt.Println("(still working on the previous request)")
			case errors.Is(err, models.ErrEmptyUtterance):
				// Blank lines are skipped above; an all-space line lands here.
			default:
				slog.Error("Utterance handling failed", "error", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("Terminal input failed", "error", err)
	}
}

func (h *terminalHost) handleCommand(ctx context.Context, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Println(`commands:
  /close           request to close the chat
  /reset           request to restart the chat
  /rate N [text]   answer the feedback prompt with a 1-5 rating
  /dismiss         dismiss the feedback prompt without rating
  /date N          open picker day N and list its slots
  /slot N          select slot N of the opened day
  /confirm         book the selected slot
  /back            dismiss the slot picker
  /quit            exit immediately`)
	case "/close":
		h.controller.RequestClose()
	case "/reset":
		h.controller.RequestReset()
	case "/dismiss":
		h.controller.DismissFeedback()
	case "/rate":
		if len(fields) < 2 {
			fmt.Println("usage: /rate N [reason]")
			return
		}
		rating, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Println("usage: /rate N [reason]")
			return
		}
		reason := strings.Join(fields[2:], " ")
		if err := h.controller.RateFeedback(ctx, rating, reason); err != nil {
			fmt.Println(err)
		}
	case "/date":
		h.openDate(ctx, fields)
	case "/slot":
		h.selectSlot(fields)
	case "/confirm":
		if err := h.controller.ConfirmAppointment(ctx); err != nil && !errors.Is(err, models.ErrNoSlotSelected) {
			fmt.Println(err)
		}
	case "/back":
		h.controller.CancelSlotPicker()
	case "/quit":
		h.done = true
	default:
		fmt.Println("unknown command, try /help")
	}
}

func (h *terminalHost) renderPickerDays() {
	h.days = h.controller.PickerDays()
	h.opts = nil
	for i, day := range h.days {
		fmt.Printf("  [%d] %s\n", i+1, day.Format("Mon Jan 2"))
	}
	fmt.Println("pick a day with /date N")
}

func (h *terminalHost) openDate(ctx context.Context, fields []string) {
	if len(h.days) == 0 {
		fmt.Println("no picker open")
		return
	}
	if len(fields) < 2 {
		fmt.Println("usage: /date N")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(h.days) {
		fmt.Println("usage: /date N")
		return
	}
	opts, ok := h.controller.OpenDate(ctx, h.days[n-1])
	if !ok {
		// A newer date selection superseded this one.
		return
	}
	h.opts = opts
	for i, opt := range opts {
		status := ""
		if opt.StatusKnown && opt.Booked {
			status = " (booked)"
		}
		fmt.Printf("  [%d] %s%s\n", i+1, opt.Label, status)
	}
	fmt.Println("pick a slot with /slot N, then /confirm")
}

func (h *terminalHost) selectSlot(fields []string) {
	if len(h.opts) == 0 {
		fmt.Println("open a day first with /date N")
		return
	}
	if len(fields) < 2 {
		fmt.Println("usage: /slot N")
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(h.opts) {
		fmt.Println("usage: /slot N")
		return
	}
	if err := h.controller.SelectSlot(h.opts[n-1]); err != nil {
		if errors.Is(err, models.ErrSlotBooked) {
			fmt.Println("that slot is booked, pick another")
			return
		}
		fmt.Println(err)
	}
}

func (h *terminalHost) renderFeedbackPrompt() {
	fmt.Println("rate your chat 1-5 with /rate N [reason], or /dismiss")
}

func (h *terminalHost) closeChat() {
	fmt.Println("--- chat closed ---")
	h.done = true
}
