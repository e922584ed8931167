package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultTitle = "ChatRelay"

type appConfig struct {
	WebhookURL string `validate:"required,url"`
	PayloadKey string `validate:"required,oneof=message messageText"`
	Title      string `validate:"required"`
	AltScreen  bool
}

// envDefaults feeds flag defaults from CHATRELAY_* variables, so flags always
// win over the environment.
type envDefaults struct {
	WebhookURL string `envconfig:"WEBHOOK_URL"`
	PayloadKey string `envconfig:"PAYLOAD_KEY" default:"message"`
	Title      string `envconfig:"TITLE" default:"ChatRelay"`
	AltScreen  bool   `envconfig:"ALT_SCREEN" default:"true"`
}

func parseFlags() (appConfig, error) {
	_ = godotenv.Load()

	var defaults envDefaults
	if err := envconfig.Process("chatrelay", &defaults); err != nil {
		return appConfig{}, fmt.Errorf("reading environment: %w", err)
	}

	cfg := appConfig{}
	flag.StringVar(&cfg.WebhookURL, "webhook-url", defaults.WebhookURL, "Webhook endpoint that receives each message")
	flag.StringVar(&cfg.PayloadKey, "payload-key", defaults.PayloadKey, "JSON key carrying the message text (message|messageText)")
	flag.StringVar(&cfg.Title, "title", defaults.Title, "Widget title shown in the header")
	flag.BoolVar(&cfg.AltScreen, "alt-screen", defaults.AltScreen, "Use alternate screen buffer")
	flag.Parse()

	cfg.WebhookURL = strings.TrimSpace(cfg.WebhookURL)
	cfg.PayloadKey = strings.TrimSpace(cfg.PayloadKey)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}

	if err := validator.New().Struct(cfg); err != nil {
		return appConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatrelay-tui: %v\n", err)
		fmt.Fprintln(os.Stderr, "set -webhook-url (or CHATRELAY_WEBHOOK_URL) to the endpoint that should receive messages")
		os.Exit(1)
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(cfg), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatrelay-tui fatal error: %v\n", err)
		os.Exit(1)
	}
}
