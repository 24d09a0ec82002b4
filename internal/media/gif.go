// Package media validates shared GIF URLs before they enter a room log.
package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// Validator probes candidate GIF URLs with a HEAD request.
type Validator struct {
	http *http.Client
}

// NewValidator returns a validator with the default probe timeout.
func NewValidator() *Validator {
	return &Validator{http: &http.Client{Timeout: probeTimeout}}
}

// ValidateGifURL checks that the URL is http(s) and actually serves a GIF,
// either by content type or by a .gif suffix. Unlike geo lookups this fails
// closed: an unverifiable URL is a client error.
func (v *Validator) ValidateGifURL(ctx context.Context, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("url host is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("probe url: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "image/gif") {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(parsed.Path), ".gif") {
		return nil
	}
	return fmt.Errorf("url does not serve a gif (content-type %q)", contentType)
}
