// Package server wires the HTTP surface: submission endpoints, the task
// ack endpoint, health, the progress websocket, and the static dashboard.
package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/wardround/meddoc/config"
	"github.com/wardround/meddoc/events"
	"github.com/wardround/meddoc/models"
	"github.com/wardround/meddoc/processor"
)

// Notifier sends the patient summary out-of-band (WhatsApp via Twilio in
// production; stubbed in tests).
type Notifier interface {
	Send(to, body string) (string, error)
}

// Server holds the handler dependencies. backend and notifier may be nil
// when the corresponding credentials are not configured; the handlers then
// degrade to descriptive errors instead of refusing to start.
type Server struct {
	cfg      config.Config
	backend  processor.Backend
	hub      *events.Hub
	notifier Notifier
}

// New assembles a Server.
func New(cfg config.Config, backend processor.Backend, hub *events.Hub, notifier Notifier) *Server {
	return &Server{cfg: cfg, backend: backend, hub: hub, notifier: notifier}
}

// App builds the fiber application with all routes and middleware.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "meddoc",
		BodyLimit: 50 * 1024 * 1024, // browser recordings can be large
	})

	app.Use(recoverer.New())
	app.Use(fiberlog.New())
	app.Use(cors.New())

	app.Get("/", s.root)
	app.Get("/api/health", s.health)
	app.Post("/api/process-url", s.processURL)
	app.Post("/api/process-audio", s.processAudio)
	app.Post("/api/tasks/:id/update", s.updateTask)
	app.Post("/api/patient-summary/send", s.sendPatientSummary)

	app.Use("/api/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/api/events", websocket.New(s.hub.ServeWS))

	app.Static("/static", s.cfg.StaticDir)

	return app
}

func (s *Server) root(c *fiber.Ctx) error {
	index := filepath.Join(s.cfg.StaticDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		return c.SendFile(index)
	}
	return c.JSON(fiber.Map{"message": "Medical Documentation POC API"})
}

func (s *Server) health(c *fiber.Ctx) error {
	backend := ""
	if s.backend != nil {
		backend = s.backend.Name()
	}
	return c.JSON(fiber.Map{
		"status":             "healthy",
		"api_key_configured": s.backend != nil,
		"backend":            backend,
	})
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) processURL(c *fiber.Ctx) error {
	var req urlRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.URL) == "" {
		return detail(c, fiber.StatusBadRequest, "`url` field is required")
	}
	if s.backend == nil {
		return detail(c, fiber.StatusInternalServerError, "no AI backend configured; set GOOGLE_API_KEY or OPENAI_API_KEY")
	}

	s.hub.Publish(events.StageReceived, "url submitted")
	s.hub.Publish(events.StageAnalyzing, req.URL)

	result, err := s.backend.ProcessURL(c.UserContext(), req.URL)
	if err != nil {
		log.Printf("process-url failed: %v", err)
		s.hub.Publish(events.StageFailed, err.Error())
		return detail(c, fiber.StatusBadGateway, err.Error())
	}

	s.hub.Publish(events.StageDone, "")
	return c.JSON(result)
}

// allowedAudioTypes maps accepted upload content types to file extensions.
// Browsers may label microphone recordings video/webm.
var allowedAudioTypes = map[string]string{
	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/webm":  "webm",
	"audio/ogg":   "ogg",
	"audio/mp4":   "m4a",
	"audio/x-m4a": "m4a",
	"video/webm":  "webm",
}

var extMIMETypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"webm": "audio/webm",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
}

func (s *Server) processAudio(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "multipart `file` field is required")
	}
	if fh.Size == 0 {
		return detail(c, fiber.StatusBadRequest, "uploaded file is empty")
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	ext, ok := allowedAudioTypes[contentType]
	if !ok {
		// Content type is unhelpful; fall back to the filename extension.
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
		mime, known := extMIMETypes[ext]
		if !known {
			return detail(c, fiber.StatusBadRequest,
				"unsupported audio format: "+contentType+". Use MP3, WAV, WEBM, OGG, or M4A.")
		}
		contentType = mime
	}
	if s.backend == nil {
		return detail(c, fiber.StatusInternalServerError, "no AI backend configured; set GOOGLE_API_KEY or OPENAI_API_KEY")
	}

	s.hub.Publish(events.StageReceived, fh.Filename)

	tmpPath := filepath.Join(s.cfg.TempDir, uuid.NewString()+"."+ext)
	if err := c.SaveFile(fh, tmpPath); err != nil {
		log.Printf("saving upload failed: %v", err)
		return detail(c, fiber.StatusInternalServerError, "failed to store uploaded file")
	}
	defer os.Remove(tmpPath)

	f, err := os.Open(tmpPath)
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, "failed to read uploaded file")
	}
	defer f.Close()

	s.hub.Publish(events.StageUploading, fh.Filename)
	s.hub.Publish(events.StageAnalyzing, fh.Filename)

	result, err := s.backend.ProcessAudio(c.UserContext(), f, filepath.Base(tmpPath), contentType)
	if err != nil {
		log.Printf("process-audio failed: %v", err)
		s.hub.Publish(events.StageFailed, err.Error())
		return detail(c, fiber.StatusBadGateway, err.Error())
	}

	s.hub.Publish(events.StageDone, "")
	return c.JSON(result)
}

type taskUpdateRequest struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// updateTask acknowledges a status change. Tasks live only in the browser's
// view state, so there is nothing to look up or store; unknown ids are acked
// the same as known ones.
func (s *Server) updateTask(c *fiber.Ctx) error {
	var req taskUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if !models.TaskStatus(req.Status).Valid() {
		return detail(c, fiber.StatusBadRequest, "status must be one of PENDING, IN_PROGRESS, COMPLETED")
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"task_id":    c.Params("id"),
		"new_status": req.Status,
	})
}

type summarySendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (s *Server) sendPatientSummary(c *fiber.Ctx) error {
	if s.notifier == nil {
		return detail(c, fiber.StatusServiceUnavailable, "WhatsApp delivery not configured; set TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM")
	}
	var req summarySendRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Message) == "" {
		return detail(c, fiber.StatusBadRequest, "`to` and `message` fields are required")
	}

	sid, err := s.notifier.Send(req.To, req.Message)
	if err != nil {
		log.Printf("patient summary send failed: %v", err)
		return detail(c, fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "sid": sid})
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}
