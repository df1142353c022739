package types

import "time"

// HTTPConfig holds shared HTTP settings for calls against the conversion service.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "xls2pdf/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ServiceConfig identifies the remote conversion service endpoints.
type ServiceConfig struct {
	// SubmitURL is the POST endpoint that accepts a workbook and returns
	// a result identifier for asynchronous conversion.
	SubmitURL string `json:"submit_url" yaml:"submit_url"`

	// GetURL is the GET endpoint polled with ?result=<identifier> until
	// the converted PDF is ready.
	GetURL string `json:"get_url" yaml:"get_url"`

	// APIURL is the synchronous single-call endpoint: the same request
	// body as SubmitURL, with the PDF (or an error) directly in the response.
	APIURL string `json:"api_url" yaml:"api_url"`

	// Headers are extra HTTP headers sent with every request, typically
	// gateway credentials.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// PollConfig bounds the submit-then-poll retry loop.
type PollConfig struct {
	// MaxAttempts is the number of poll attempts before giving up (default 12).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Delay is the fixed pause between consecutive poll attempts (default 5s).
	// Constant rather than exponential: total wait stays predictable given
	// the bounded attempt count.
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// ClientConfig groups all settings for a conversion client.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	Service ServiceConfig `json:"service" yaml:"service"`
	Poll    PollConfig    `json:"poll" yaml:"poll"`

	// SubmitDelay is the pause between consecutive submissions in a batch run.
	SubmitDelay time.Duration `json:"submit_delay" yaml:"submit_delay"`

	// JobsDir is the directory holding the local job-history database.
	JobsDir string `json:"jobs_dir" yaml:"jobs_dir"`
}
