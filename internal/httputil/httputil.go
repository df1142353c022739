// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the submit and poll calls.
package httputil

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"
)

// PollURL appends the result identifier to the poll endpoint as the "result"
// query parameter, joining with '&' when the base URL already carries a
// query string and '?' otherwise.
func PollURL(baseURL, resultID string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "result=" + resultID
}

// NewSubmitRequest builds the JSON POST for the submit and synchronous
// conversion endpoints.
func NewSubmitRequest(ctx context.Context, url string, body []byte, userAgent string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	applyHeaders(req, userAgent, headers)
	return req, nil
}

// NewPollRequest builds the GET for one poll attempt.
func NewPollRequest(ctx context.Context, baseURL, resultID, userAgent string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, PollURL(baseURL, resultID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf")
	applyHeaders(req, userAgent, headers)
	return req, nil
}

func applyHeaders(req *http.Request, userAgent string, headers map[string]string) {
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
}

// Sleep waits for d or until the context is cancelled, returning ctx.Err()
// in the latter case. The poll loop uses it between attempts so an overall
// deadline cuts a wait short.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
