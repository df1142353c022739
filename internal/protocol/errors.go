// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package protocol

import "errors"

var (
	// ErrProtocol indicates a malformed or unexpected response from the
	// conversion service (bad JSON shape, missing result identifier,
	// unknown status value).
	ErrProtocol = errors.New("unexpected conversion service response")

	// ErrDecode indicates a base64 decode failure, on either the response
	// body or the second layer detected by CorrectDoubleEncoding.
	ErrDecode = errors.New("base64 decode failed")
)

// RemoteError is a definitive rejection reported by the conversion service
// through its JSON error field. It is terminal: the same request will keep
// failing, so callers must not retry.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "conversion service error: " + e.Message
}
