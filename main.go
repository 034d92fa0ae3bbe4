package main

import (
	"log"

	"github.com/wardround/meddoc/config"
	"github.com/wardround/meddoc/events"
	"github.com/wardround/meddoc/gemini"
	"github.com/wardround/meddoc/notify"
	"github.com/wardround/meddoc/processor"
	"github.com/wardround/meddoc/server"
)

func main() {
	cfg := config.Load()

	var backend processor.Backend
	switch {
	case cfg.GoogleAPIKey != "":
		client := gemini.NewClient(
			gemini.WithKey(cfg.GoogleAPIKey),
			gemini.WithModel(cfg.GeminiModel),
		)
		backend = processor.NewGemini(client)
		log.Printf("Using gemini backend (model %s)", client.Model())
	case cfg.OpenAIAPIKey != "":
		backend = processor.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Println("Using openai backend (URL processing disabled)")
	default:
		log.Println("WARNING: no GOOGLE_API_KEY or OPENAI_API_KEY set; submissions will fail until one is configured")
	}

	var notifier server.Notifier
	if cfg.TwilioConfigured() {
		notifier = notify.NewWhatsAppNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
		log.Println("WhatsApp delivery enabled")
	}

	hub := events.NewHub(32)
	app := server.New(cfg, backend, hub, notifier).App()

	addr := ":" + cfg.Port
	log.Printf("Listening on %s", addr)
	log.Fatal(app.Listen(addr))
}
