// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package protocol interprets conversion service responses. A poll response
// arrives in one of three shapes: a binary PDF, a JSON status object, or a
// base64 text body. Classification keys on Content-Type first because a PDF
// byte stream may itself begin with text-like bytes.
package protocol

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// pdfContentType prefixes a PDF response's Content-Type header
// (e.g. "application/pdf" or "application/pdf; charset=binary").
const pdfContentType = "application/pdf"

// OutcomeKind tags the result of classifying one poll response.
type OutcomeKind int

const (
	// OutcomePDF means the response carried document bytes. The bytes may
	// still be double-encoded (see CorrectDoubleEncoding) or empty; an
	// empty document means the service has no data yet.
	OutcomePDF OutcomeKind = iota

	// OutcomeInProgress means the service reported the conversion as
	// submitted or still running.
	OutcomeInProgress

	// OutcomeFailed means the service reported a terminal error.
	OutcomeFailed
)

// Outcome is the classified form of one poll response.
type Outcome struct {
	Kind OutcomeKind

	// PDF holds the decoded document bytes when Kind is OutcomePDF.
	PDF []byte

	// Message holds the service-reported error when Kind is OutcomeFailed.
	Message string
}

// statusBody is the JSON status object the service returns while a
// conversion is pending, and the error object it returns on rejection.
type statusBody struct {
	Error    string `json:"error"`
	Status   string `json:"status"`
	Result   string `json:"result"`
	Filename string `json:"filename"`
}

// ClassifyPoll interprets a poll response body. Content-Type is checked
// before any body sniffing; JSON is recognized by a leading brace; anything
// else is treated as a base64 text body.
func ClassifyPoll(contentType string, body []byte) (Outcome, error) {
	if strings.HasPrefix(contentType, pdfContentType) {
		return Outcome{Kind: OutcomePDF, PDF: body}, nil
	}

	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") {
		var sb statusBody
		if err := json.Unmarshal([]byte(text), &sb); err != nil {
			return Outcome{}, fmt.Errorf("%w: body is not valid JSON: %v", ErrProtocol, err)
		}
		if sb.Error != "" {
			return Outcome{Kind: OutcomeFailed, Message: sb.Error}, nil
		}
		switch sb.Status {
		case "submitted", "inprogress":
			return Outcome{Kind: OutcomeInProgress}, nil
		}
		return Outcome{}, fmt.Errorf("%w: unexpected JSON payload", ErrProtocol)
	}

	decoded, err := base64.StdEncoding.DecodeString(stripWrapping(text))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: response body is not valid base64: %v", ErrDecode, err)
	}
	return Outcome{Kind: OutcomePDF, PDF: decoded}, nil
}

// ParseSubmit extracts the result identifier from a submit response. The
// service answers with {"status": "submitted", "result": "<identifier>"} on
// acceptance and {"error": "<message>"} on rejection; anything else is a
// protocol violation surfaced before a single poll attempt is made.
func ParseSubmit(statusCode int, body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "{") {
		if statusCode < 200 || statusCode > 299 {
			return "", fmt.Errorf("submit endpoint returned HTTP %d", statusCode)
		}
		return "", fmt.Errorf("%w: submit response is not a JSON object", ErrProtocol)
	}

	var sb statusBody
	if err := json.Unmarshal([]byte(text), &sb); err != nil {
		return "", fmt.Errorf("%w: submit response is not valid JSON: %v", ErrProtocol, err)
	}
	if sb.Error != "" {
		return "", &RemoteError{Message: sb.Error}
	}
	if sb.Status != "submitted" {
		return "", fmt.Errorf("%w: unexpected submit status %q", ErrProtocol, sb.Status)
	}
	if sb.Result == "" {
		return "", fmt.Errorf("%w: submit response is missing the result identifier", ErrProtocol)
	}
	return sb.Result, nil
}

// ErrorMessage reports the service's JSON error field, if the body carries
// one. The poll loop uses this to distinguish a definitive rejection riding
// on a non-2xx status from a transient transport failure.
func ErrorMessage(body []byte) (string, bool) {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "{") {
		return "", false
	}
	var sb statusBody
	if err := json.Unmarshal([]byte(text), &sb); err != nil {
		return "", false
	}
	return sb.Error, sb.Error != ""
}

// stripWrapping removes a single layer of surrounding quote characters and
// any line-break characters from a base64 text body. API gateways deliver
// the body both bare and quoted, sometimes with trailing newlines.
func stripWrapping(s string) string {
	s = strings.Trim(s, "\r\n")
	s = strings.Trim(s, `"'`)
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// base64Alphabet reports whether b belongs to the standard base64 alphabet.
func base64Alphabet(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b == '+' || b == '/' || b == '=':
		return true
	}
	return false
}

// pdfMagic is the four-byte prefix of every well-formed PDF. The '%' is
// outside the base64 alphabet, so a genuine PDF can never look base64-like.
var pdfMagic = []byte("%PDF")

// CorrectDoubleEncoding detects a double-encoded document: some service
// deployments hand back "decoded" bytes that are themselves an ASCII base64
// string rather than binary PDF content. A body carrying the %PDF magic is
// returned unchanged. Otherwise, if every byte is in the base64 alphabet or
// a line break, the body is treated as text and decoded one more time.
func CorrectDoubleEncoding(data []byte) ([]byte, error) {
	if len(data) == 0 || bytes.HasPrefix(data, pdfMagic) {
		return data, nil
	}

	for _, b := range data {
		if !base64Alphabet(b) && b != '\r' && b != '\n' {
			return data, nil
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(stripWrapping(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: base64-like response but decoding failed: %v", ErrDecode, err)
	}
	return decoded, nil
}
