// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config carries everything the service reads from the environment.
type Config struct {
	Port string

	// Analysis backends. Gemini is preferred when both keys are present.
	GoogleAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	// WhatsApp delivery of the patient summary; optional.
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	StaticDir string
	TempDir   string
}

// Load reads the environment (after loading .env if present) and prepares
// the temp directory for uploads.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	cfg := Config{
		Port:               getenv("PORT", "8000"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:        os.Getenv("GEMINI_MODEL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
		StaticDir:          getenv("STATIC_DIR", "./static"),
		TempDir:            getenv("TEMP_DIR", filepath.Join(os.TempDir(), "meddoc")),
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		log.Fatalf("cannot create temp dir %s: %v", cfg.TempDir, err)
	}
	return cfg
}

// TwilioConfigured reports whether all Twilio settings are present.
func (c Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
