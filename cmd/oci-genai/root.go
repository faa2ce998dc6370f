package main

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/djvolz/oci-genai-chatbot/chatbot"
	"github.com/djvolz/oci-genai-chatbot/config"

	// Register the OCI GenAI backend.
	_ "github.com/djvolz/oci-genai-chatbot/llm/providers/ocigenai"
)

// Settings is the optional configuration file schema (YAML or JSON),
// overridable with OCI_GENAI_* environment variables.
type Settings struct {
	Model          string  `mapstructure:"model" json:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model" json:"embedding_model"`
	Temperature    float64 `mapstructure:"temperature" json:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens" json:"max_tokens"`
	CompartmentID  string  `mapstructure:"compartment_id" json:"compartment_id"`
	SystemPrompt   string  `mapstructure:"system_prompt" json:"system_prompt"`
	Profile        string  `mapstructure:"profile" json:"profile"`
	Region         string  `mapstructure:"region" json:"region"`
}

var (
	cfgFile  string
	logLevel string

	styleUser   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleBot    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	styleDim    = lipgloss.NewStyle().Faint(true)
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleAccent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

var rootCmd = &cobra.Command{
	Use:           "oci-genai",
	Short:         "Chat with OCI Generative AI from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultSettings() Settings {
	base := chatbot.DefaultConfig()
	return Settings{
		Model:          base.Model,
		EmbeddingModel: base.EmbeddingModel,
		Temperature:    base.Temperature,
		MaxTokens:      base.MaxTokens,
		CompartmentID:  base.CompartmentID,
	}
}

// loadSettings merges OCI_GENAI_* environment variables and the config
// file (when given) over built-in defaults. Every Settings key needs a
// default entry, even an empty one: viper's Unmarshal only surfaces
// known keys, so an unseeded key would hide its env override.
func loadSettings() (Settings, error) {
	base := defaultSettings()
	store, err := config.Load(cfgFile,
		config.WithEnv[Settings]("OCI_GENAI"),
		config.WithDefaults[Settings](map[string]any{
			"model":           base.Model,
			"embedding_model": base.EmbeddingModel,
			"temperature":     base.Temperature,
			"max_tokens":      base.MaxTokens,
			"compartment_id":  base.CompartmentID,
			"system_prompt":   "",
			"profile":         "",
			"region":          "",
		}),
	)
	if err != nil {
		return Settings{}, err
	}
	return store.Get(), nil
}

func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newClient(s Settings) (*chatbot.Client, error) {
	cfg := chatbot.DefaultConfig()
	cfg.Model = s.Model
	cfg.EmbeddingModel = s.EmbeddingModel
	cfg.Temperature = s.Temperature
	cfg.MaxTokens = s.MaxTokens
	if s.CompartmentID != "" {
		cfg.CompartmentID = s.CompartmentID
	}
	cfg.Profile = s.Profile
	cfg.Region = s.Region
	cfg.Logger = newLogger()
	return chatbot.New(chatbot.WithConfig(cfg))
}
