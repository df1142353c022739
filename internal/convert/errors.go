// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
)

// ErrConfig means the poll loop was configured with out-of-range bounds.
// It is raised before any network interaction.
var ErrConfig = errors.New("invalid poll configuration")

// TransportError means the network call failed on the final allowed poll
// attempt. Earlier transport failures are retried and never surface.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure on final poll attempt %d: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError means every allowed poll attempt was used without the
// conversion finishing. It carries the result identifier so the caller can
// resume polling later without resubmitting.
type TimeoutError struct {
	ResultID string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("conversion not ready after %d attempts; resume with result identifier %s", e.Attempts, e.ResultID)
}
