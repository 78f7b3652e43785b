package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonkmatsumo/deck-forge/internal/deck"
)

// Service is an HTTP client for the external render service. It
// implements all three collaborator contracts against a single base
// URL:
//
//	POST {base}/documents  {filename, slides}        -> {path}
//	POST {base}/charts     {labels, values, unit,
//	                        kind, title}             -> {path}
//	GET  {base}/images?query=...                     -> {url}
type Service struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewService creates a render service client.
func NewService(baseURL string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

type documentRequest struct {
	Filename string              `json:"filename"`
	Slides   []deck.SlideContent `json:"slides"`
}

type chartRequest struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Unit   string    `json:"unit"`
	Kind   string    `json:"kind"`
	Title  string    `json:"title"`
}

type pathResponse struct {
	Path string `json:"path"`
}

type urlResponse struct {
	URL string `json:"url"`
}

// Render stores the finished deck and returns the document path.
func (s *Service) Render(ctx context.Context, filename string, slides []deck.SlideContent) (string, error) {
	var out pathResponse
	err := s.post(ctx, "documents", documentRequest{Filename: filename, Slides: slides}, &out)
	if err != nil {
		return "", err
	}
	if out.Path == "" {
		return "", &Error{Op: "documents", Message: "service returned no path"}
	}
	s.log.Info("document rendered", zap.String("filename", filename), zap.String("path", out.Path))
	return out.Path, nil
}

// RenderChart rasterizes one chart and returns the image path.
func (s *Service) RenderChart(ctx context.Context, data deck.ChartData, kind ChartKind, title string) (string, error) {
	var out pathResponse
	err := s.post(ctx, "charts", chartRequest{
		Labels: data.Labels,
		Values: data.Values,
		Unit:   data.Unit,
		Kind:   string(kind),
		Title:  title,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Path == "" {
		return "", &Error{Op: "charts", Message: "service returned no path"}
	}
	return out.Path, nil
}

// FindImage resolves a query to a stock image URL.
func (s *Service) FindImage(ctx context.Context, query string) (string, error) {
	endpoint := s.baseURL + "/images?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &Error{Op: "images", Message: "creating request", Cause: err}
	}

	var out urlResponse
	if err := s.do(req, "images", &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &Error{Op: "images", Message: "service returned no url"}
	}
	return out.URL, nil
}

func (s *Service) post(ctx context.Context, op string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Op: op, Message: "encoding request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+op, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: op, Message: "creating request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, op, out)
}

func (s *Service) do(req *http.Request, op string, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return &Error{Op: op, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{Op: op, Message: "HTTP " + resp.Status + ": " + strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Message: "parsing response", Cause: err}
	}
	return nil
}
