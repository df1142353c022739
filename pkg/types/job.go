package types

import "time"

// JobStatus tracks a conversion job through its lifecycle.
type JobStatus string

const (
	// JobSubmitted means the workbook was accepted and a result identifier issued.
	JobSubmitted JobStatus = "submitted"
	// JobCompleted means the PDF was retrieved and written to disk.
	JobCompleted JobStatus = "completed"
	// JobFailed means the conversion ended in a terminal error.
	JobFailed JobStatus = "failed"
)

// Job is one conversion tracked in the local job history. The result
// identifier is the opaque token issued by the service on submit; it is the
// poll key and the primary key of the history store.
type Job struct {
	ResultID    string    `json:"result_id" yaml:"result_id"`
	Filename    string    `json:"filename" yaml:"filename"`
	SourcePath  string    `json:"source_path" yaml:"source_path"`
	OutputPath  string    `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Status      JobStatus `json:"status" yaml:"status"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
	CompletedAt time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Receipt records a completed conversion. One receipt is written as YAML
// next to the output PDF.
type Receipt struct {
	SourcePath string `yaml:"source_path"`
	OutputPath string `yaml:"output_path"`

	// ResultID is empty for synchronous conversions.
	ResultID string `yaml:"result_id,omitempty"`

	// Attempts is the number of poll attempts the conversion took.
	Attempts int `yaml:"attempts,omitempty"`

	// ConversionSource and ConversionTarget echo the service's
	// X-Conversion-Source and X-Conversion-Target response headers.
	ConversionSource string `yaml:"conversion_source,omitempty"`
	ConversionTarget string `yaml:"conversion_target,omitempty"`

	CompletedAt time.Time `yaml:"completed_at"`
}
