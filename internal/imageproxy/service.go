// Package imageproxy fetches catalog images on behalf of the browser so the
// frontend never talks to the image host directly.
package imageproxy

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/watchengine/watch-engine-backend/pkg/config"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

const (
	defaultMaxBytes int64 = 10 << 20
	defaultMaxAge         = 24 * time.Hour
	maxRedirects          = 5
)

// Image is a fetched upstream image.
type Image struct {
	ContentType  string
	Body         []byte
	CacheControl string
}

type Service struct {
	client       *http.Client
	allowedHosts map[string]struct{}
	maxBytes     int64
	cacheControl string
}

type Option func(*Service)

func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

func NewService(cfg config.ImageProxyConfig, opts ...Option) *Service {
	hosts := make(map[string]struct{}, len(cfg.AllowedHosts))
	for _, host := range cfg.AllowedHosts {
		if trimmed := strings.ToLower(strings.TrimSpace(host)); trimmed != "" {
			hosts[trimmed] = struct{}{}
		}
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	maxAge := cfg.CacheMaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Service{
		client:       &http.Client{Timeout: timeout},
		allowedHosts: hosts,
		maxBytes:     maxBytes,
		cacheControl: fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	// every redirect hop must land on an allowed host too
	client := *s.client
	client.CheckRedirect = s.checkRedirect
	s.client = &client
	return s
}

func (s *Service) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return pkgerrors.New(pkgerrors.CodeUpstream, "Failed to fetch image").
			WithDetails(map[string]any{"redirects": len(via)})
	}
	return s.allowed(req.URL)
}

// Fetch validates rawURL against the allow-list and downloads the image.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	target, err := s.validate(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid image source")
	}
	req.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Failed to fetch image")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "Failed to fetch image").
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "Upstream did not return an image").
			WithDetails(map[string]any{"content_type": contentType})
	}
	if resp.ContentLength > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "Image is too large")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "Failed to fetch image")
	}
	if int64(len(body)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "Image is too large")
	}

	return &Image{ContentType: contentType, Body: body, CacheControl: s.cacheControl}, nil
}

func (s *Service) validate(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Image URL is required")
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid image source")
	}
	if err := s.allowed(target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Service) allowed(target *url.URL) error {
	if target.Scheme != "http" && target.Scheme != "https" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid image source")
	}
	if _, ok := s.allowedHosts[strings.ToLower(target.Hostname())]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid image source")
	}
	if target.User != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid image source")
	}
	return nil
}
