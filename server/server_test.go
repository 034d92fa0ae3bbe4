package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gws "github.com/gorilla/websocket"

	"github.com/wardround/meddoc/config"
	"github.com/wardround/meddoc/events"
	"github.com/wardround/meddoc/models"
	"github.com/wardround/meddoc/processor"
)

type stubBackend struct {
	result *models.ProcessingResult
	err    error

	urlCalls   int
	audioCalls int
	lastURL    string
	lastMIME   string
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) ProcessURL(ctx context.Context, url string) (*models.ProcessingResult, error) {
	s.urlCalls++
	s.lastURL = url
	return s.result, s.err
}

func (s *stubBackend) ProcessAudio(ctx context.Context, audio io.Reader, filename, mimeType string) (*models.ProcessingResult, error) {
	s.audioCalls++
	s.lastMIME = mimeType
	io.Copy(io.Discard, audio)
	return s.result, s.err
}

type stubNotifier struct {
	lastTo, lastBody string
	err              error
}

func (s *stubNotifier) Send(to, body string) (string, error) {
	s.lastTo, s.lastBody = to, body
	return "SM123", s.err
}

func sampleResult() *models.ProcessingResult {
	r := &models.ProcessingResult{
		Summary: "Short visit.",
		TranscriptSegments: []models.TranscriptSegment{
			{Speaker: "Doctor", Timestamp: "00:01", Content: "Hello", Language: "English", LanguageCode: "en", Emotion: models.EmotionNeutral},
		},
		NurseTasks: []models.NurseTask{
			{TaskID: "t1", Description: "Check BP", Priority: models.PriorityHigh, TaskType: "vitals", Status: models.StatusPending},
		},
	}
	r.Normalize()
	return r
}

func newTestServer(t *testing.T, backend processor.Backend, notifier Notifier) *Server {
	t.Helper()
	cfg := config.Config{
		TempDir:   t.TempDir(),
		StaticDir: t.TempDir(), // no index.html; root falls back to JSON
	}
	return New(cfg, backend, events.NewHub(8), notifier)
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	out := map[string]json.RawMessage{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s %s: bad JSON %q: %v", method, target, data, err)
		}
	}
	return resp, out
}

func jsonStr(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("not a JSON string: %s", raw)
	}
	return s
}

func TestHealthReportsCredentialPresenceOnly(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "super-secret")

	app := newTestServer(t, &stubBackend{}, nil).App()
	resp, body := doJSON(t, app, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if string(body["api_key_configured"]) != "true" {
		t.Errorf("api_key_configured = %s", body["api_key_configured"])
	}
	if jsonStr(t, body["backend"]) != "stub" {
		t.Errorf("backend = %s", body["backend"])
	}
	for _, raw := range body {
		if strings.Contains(string(raw), "super-secret") {
			t.Fatal("health response leaks the credential value")
		}
	}

	// No backend configured.
	app = newTestServer(t, nil, nil).App()
	_, body = doJSON(t, app, http.MethodGet, "/api/health", nil)
	if string(body["api_key_configured"]) != "false" {
		t.Errorf("api_key_configured = %s, want false", body["api_key_configured"])
	}
}

func TestProcessURLEmptyRejectedBeforeBackend(t *testing.T) {
	backend := &stubBackend{result: sampleResult()}
	app := newTestServer(t, backend, nil).App()

	for _, payload := range []any{map[string]string{"url": ""}, map[string]string{"url": "   "}, map[string]string{}} {
		resp, body := doJSON(t, app, http.MethodPost, "/api/process-url", payload)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %v: status = %d, want 400", payload, resp.StatusCode)
		}
		if _, ok := body["detail"]; !ok {
			t.Errorf("payload %v: error body missing detail", payload)
		}
	}
	if backend.urlCalls != 0 {
		t.Fatalf("backend called %d times for empty input", backend.urlCalls)
	}
}

func TestProcessURLPassthrough(t *testing.T) {
	backend := &stubBackend{result: sampleResult()}
	app := newTestServer(t, backend, nil).App()

	resp, body := doJSON(t, app, http.MethodPost, "/api/process-url",
		map[string]string{"url": "https://youtu.be/abc"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if backend.lastURL != "https://youtu.be/abc" {
		t.Errorf("backend saw url %q", backend.lastURL)
	}
	if jsonStr(t, body["summary"]) != "Short visit." {
		t.Errorf("summary = %s", body["summary"])
	}
	var tasks []models.NurseTask
	if err := json.Unmarshal(body["nurse_tasks"], &tasks); err != nil || len(tasks) != 1 || tasks[0].TaskID != "t1" {
		t.Errorf("nurse_tasks not passed through: %s", body["nurse_tasks"])
	}
}

func TestProcessURLBackendFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("gemini http 503: model overloaded")}
	app := newTestServer(t, backend, nil).App()

	resp, body := doJSON(t, app, http.MethodPost, "/api/process-url",
		map[string]string{"url": "https://youtu.be/abc"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if !strings.Contains(jsonStr(t, body["detail"]), "model overloaded") {
		t.Errorf("detail = %s", body["detail"])
	}
}

func TestProcessURLNoBackend(t *testing.T) {
	app := newTestServer(t, nil, nil).App()
	resp, body := doJSON(t, app, http.MethodPost, "/api/process-url",
		map[string]string{"url": "https://youtu.be/abc"})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if !strings.Contains(jsonStr(t, body["detail"]), "GOOGLE_API_KEY") {
		t.Errorf("detail = %s", body["detail"])
	}
}

func audioUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()
	return buf, mw.FormDataContentType()
}

func TestProcessAudio(t *testing.T) {
	backend := &stubBackend{result: sampleResult()}
	app := newTestServer(t, backend, nil).App()

	body, contentType := audioUpload(t, "round.mp3", "audio/mpeg", []byte("fake mp3 bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/process-audio", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
	if backend.audioCalls != 1 {
		t.Fatalf("backend audio calls = %d", backend.audioCalls)
	}
	if backend.lastMIME != "audio/mpeg" {
		t.Errorf("backend saw mime %q", backend.lastMIME)
	}
}

func TestProcessAudioRejectsBadInput(t *testing.T) {
	backend := &stubBackend{result: sampleResult()}
	app := newTestServer(t, backend, nil).App()

	// No file field at all.
	req := httptest.NewRequest(http.MethodPost, "/api/process-audio", strings.NewReader(""))
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file: status = %d, want 400", resp.StatusCode)
	}

	// Empty file.
	body, contentType := audioUpload(t, "empty.mp3", "audio/mpeg", nil)
	req = httptest.NewRequest(http.MethodPost, "/api/process-audio", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty file: status = %d, want 400", resp.StatusCode)
	}

	// Unsupported format, and the filename extension doesn't rescue it.
	body, contentType = audioUpload(t, "scan.pdf", "application/pdf", []byte("%PDF"))
	req = httptest.NewRequest(http.MethodPost, "/api/process-audio", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format: status = %d, want 400", resp.StatusCode)
	}

	if backend.audioCalls != 0 {
		t.Fatalf("backend called %d times for rejected input", backend.audioCalls)
	}
}

func TestProcessAudioExtensionFallback(t *testing.T) {
	backend := &stubBackend{result: sampleResult()}
	app := newTestServer(t, backend, nil).App()

	// Generic content type but a recognizable extension.
	body, contentType := audioUpload(t, "recording.webm", "application/octet-stream", []byte("webm bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/process-audio", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, b)
	}
}

func TestUpdateTaskAcksUnknownID(t *testing.T) {
	app := newTestServer(t, &stubBackend{}, nil).App()

	resp, body := doJSON(t, app, http.MethodPost, "/api/tasks/no-such-task/update",
		map[string]string{"task_id": "no-such-task", "status": "COMPLETED"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if string(body["success"]) != "true" {
		t.Errorf("success = %s", body["success"])
	}
	if jsonStr(t, body["task_id"]) != "no-such-task" {
		t.Errorf("task_id = %s", body["task_id"])
	}
	if jsonStr(t, body["new_status"]) != "COMPLETED" {
		t.Errorf("new_status = %s", body["new_status"])
	}
}

func TestUpdateTaskRejectsUnknownStatus(t *testing.T) {
	app := newTestServer(t, &stubBackend{}, nil).App()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/tasks/t1/update",
		map[string]string{"task_id": "t1", "status": "DONE"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSendPatientSummary(t *testing.T) {
	notifier := &stubNotifier{}
	app := newTestServer(t, &stubBackend{}, notifier).App()

	resp, body := doJSON(t, app, http.MethodPost, "/api/patient-summary/send",
		map[string]string{"to": "+919876543210", "message": "Hello Ravi"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if jsonStr(t, body["sid"]) != "SM123" {
		t.Errorf("sid = %s", body["sid"])
	}
	if notifier.lastTo != "+919876543210" || notifier.lastBody != "Hello Ravi" {
		t.Errorf("notifier saw to=%q body=%q", notifier.lastTo, notifier.lastBody)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/patient-summary/send",
		map[string]string{"to": "", "message": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty input: status = %d, want 400", resp.StatusCode)
	}
}

func TestSendPatientSummaryUnconfigured(t *testing.T) {
	app := newTestServer(t, &stubBackend{}, nil).App()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/patient-summary/send",
		map[string]string{"to": "+91", "message": "hi"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestEventsWebsocket(t *testing.T) {
	srv := newTestServer(t, &stubBackend{result: sampleResult()}, nil)
	app := srv.App()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	defer app.Shutdown()

	// Published before connect: should be replayed from the backlog.
	srv.hub.Publish(events.StageReceived, "early")

	url := "ws://" + ln.Addr().String() + "/api/events"
	var conn *gws.Conn
	for i := 0; i < 50; i++ {
		conn, _, err = gws.DefaultDialer.Dial(url, nil)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	srv.hub.Publish(events.StageDone, "")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []string
	for len(got) < 2 {
		var ev events.Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v (got %v)", err, got)
		}
		got = append(got, ev.Stage)
	}
	if got[0] != events.StageReceived || got[1] != events.StageDone {
		t.Errorf("events = %v, want [received done]", got)
	}
}
