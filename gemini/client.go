// Package gemini is a minimal client for the Gemini API: file upload with
// state polling, and generateContent with a structured response schema.
// Only the surface this service needs is covered.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DefaultBase  = "https://generativelanguage.googleapis.com"
	DefaultModel = "gemini-2.0-flash"
)

// Client talks to the Gemini API over REST.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	httpClient   *http.Client
	pollInterval time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithKey sets the API key for the Client.
func WithKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL sets the base URL for the Client.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithModel sets the generation model for the Client.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient sets the HTTP client for the Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPollInterval sets how often WaitForFile checks upload state.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// NewClient creates a Gemini API client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		c.apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBase
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = time.Second
	}

	return c
}

// Model returns the generation model the client is configured with.
func (c *Client) Model() string { return c.model }

// URL constructs the full URL for the given relative path, appending the
// API key as a query parameter.
func (c *Client) URL(relPath string) string {
	u := strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(relPath, "/")
	return u + "?key=" + url.QueryEscape(c.apiKey)
}

// File states reported by the files API.
const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

// File is an uploaded media resource on the Gemini side.
type File struct {
	Name     string `json:"name"` // "files/<id>"
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType"`
	State    string `json:"state"`
}

type fileData struct {
	FileURI  string `json:"file_uri"`
	MIMEType string `json:"mime_type,omitempty"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"response_mime_type,omitempty"`
	ResponseSchema   json.RawMessage `json:"response_schema,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// UploadFile uploads audio bytes via the media upload endpoint and returns
// the resulting file resource, which may still be in the PROCESSING state.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*File, error) {
	if c.apiKey == "" {
		return nil, errors.New("missing API key (set GOOGLE_API_KEY in env)")
	}

	b := &bytes.Buffer{}
	mp := multipart.NewWriter(b)

	// multipart/related: JSON metadata part followed by the raw media part.
	meta, err := mp.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(meta).Encode(map[string]any{
		"file": map[string]any{"display_name": displayName},
	}); err != nil {
		return nil, err
	}

	media, err := mp.CreatePart(textproto.MIMEHeader{
		"Content-Type": {mimeType},
	})
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(media, r); err != nil {
		return nil, err
	}
	if err := mp.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL("upload/v1beta/files"), b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-Upload-Protocol", "multipart")
	req.Header.Set("Content-Type", "multipart/related; boundary="+mp.Boundary())

	var wrapped struct {
		File File `json:"file"`
	}
	if err := c.do(req, &wrapped); err != nil {
		return nil, err
	}
	return &wrapped.File, nil
}

// GetFile fetches the current state of an uploaded file by resource name.
func (c *Client) GetFile(ctx context.Context, name string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("v1beta/"+name), nil)
	if err != nil {
		return nil, err
	}
	var f File
	if err := c.do(req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFile removes an uploaded file from the Gemini side.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.URL("v1beta/"+name), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// WaitForFile polls until the uploaded file leaves the PROCESSING state.
func (c *Client) WaitForFile(ctx context.Context, f *File) (*File, error) {
	for f.State == FileStateProcessing {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		var err error
		f, err = c.GetFile(ctx, f.Name)
		if err != nil {
			return nil, err
		}
	}
	if f.State == FileStateFailed {
		return nil, fmt.Errorf("file processing failed: %s", f.Name)
	}
	return f, nil
}

// GenerateFromURI runs generateContent over a media reference (an uploaded
// file URI or a public URL such as YouTube) plus the text prompt, with the
// response constrained to the given JSON schema. Returns the raw JSON text
// the model produced.
func (c *Client) GenerateFromURI(ctx context.Context, uri, mimeType, prompt string, schema json.RawMessage) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errors.New("missing API key (set GOOGLE_API_KEY in env)")
	}

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{FileData: &fileData{FileURI: uri, MIMEType: mimeType}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.URL("v1beta/models/"+c.model+":generateContent"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var gr generateResponse
	if err := c.do(req, &gr); err != nil {
		return nil, err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return []byte(text.String()), nil
}

// do executes the request and decodes the JSON response into out (unless
// out is nil). Non-2xx responses surface the upstream body verbatim.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
