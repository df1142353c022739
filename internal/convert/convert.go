// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives workbook-to-PDF conversions against the remote
// service: a synchronous single-call variant, and an asynchronous
// submit-then-poll variant built around a bounded retry loop. Both share
// the response classifier and double-encoding corrector from the protocol
// package and persist results through the sink package.
package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pdiddy/xls2pdf/internal/httputil"
	"github.com/pdiddy/xls2pdf/internal/payload"
	"github.com/pdiddy/xls2pdf/internal/protocol"
	"github.com/pdiddy/xls2pdf/internal/sink"
	"github.com/pdiddy/xls2pdf/pkg/types"
)

// Options override per-conversion defaults.
type Options struct {
	// Filename overrides the submitted filename (default: source base name).
	Filename string
	// Format overrides the input format (default "xlsx").
	Format string
	// Target is an optional service-side output location.
	Target string
	// OutputPath overrides the local output location.
	OutputPath string
	// Force converts even when the output PDF already exists.
	Force bool
}

// Result describes one completed conversion.
type Result struct {
	SourcePath  string
	OutputPath  string
	ReceiptPath string

	// ResultID is the service-issued identifier; empty for synchronous calls.
	ResultID string

	// Attempts is the number of poll attempts made; 0 for synchronous calls.
	Attempts int

	// Bytes is the size of the written PDF.
	Bytes int

	// ConversionSource and ConversionTarget echo the service's
	// informational response headers.
	ConversionSource string
	ConversionTarget string
}

// Recorder receives job lifecycle notifications. The jobstore package
// implements it; a nil Recorder disables history tracking.
type Recorder interface {
	JobSubmitted(job types.Job) error
	JobFinished(job types.Job) error
}

// Submit posts the conversion request and returns the result identifier the
// service issued for it.
func Submit(ctx context.Context, client *http.Client, cfg types.ClientConfig, req *payload.ConversionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding submit body: %w", err)
	}

	httpReq, err := httputil.NewSubmitRequest(ctx, cfg.Service.SubmitURL, body, cfg.UserAgent, cfg.Service.Headers)
	if err != nil {
		return "", fmt.Errorf("creating submit request: %w", err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading submit response: %w", err)
	}

	return protocol.ParseSubmit(resp.StatusCode, respBody)
}

// PollResult carries the document retrieved by a successful poll loop.
type PollResult struct {
	PDF              []byte
	Attempts         int
	ConversionSource string
	ConversionTarget string
}

// transientError marks a poll failure that may be retried: a connection
// error or a non-2xx status without a service-reported error field.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Poll repeatedly fetches the result identifier until the service hands back
// a document, reports a terminal error, or the attempts run out. The
// delay between attempts is constant; sleeps respect context cancellation.
func Poll(ctx context.Context, client *http.Client, cfg types.ClientConfig, resultID string, w io.Writer) (*PollResult, error) {
	if err := validatePollConfig(cfg.Poll); err != nil {
		return nil, err
	}

	maxAttempts := cfg.Poll.MaxAttempts
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		final := attempt == maxAttempts

		outcome, src, tgt, err := pollOnce(ctx, client, cfg, resultID)
		if err != nil {
			var transient *transientError
			if !errors.As(err, &transient) {
				return nil, err
			}
			if final {
				return nil, &TransportError{Attempts: attempt, Err: transient.err}
			}
			fmt.Fprintf(w, "warning: poll attempt %d/%d failed: %v\n", attempt, maxAttempts, transient.err)
			if sleepErr := httputil.Sleep(ctx, cfg.Poll.Delay); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		switch outcome.Kind {
		case protocol.OutcomeFailed:
			return nil, &protocol.RemoteError{Message: outcome.Message}

		case protocol.OutcomeInProgress:
			fmt.Fprintf(w, "in progress (attempt %d/%d)\n", attempt, maxAttempts)

		case protocol.OutcomePDF:
			pdf, corrErr := protocol.CorrectDoubleEncoding(outcome.PDF)
			if corrErr != nil {
				return nil, corrErr
			}
			if len(pdf) > 0 {
				return &PollResult{
					PDF:              pdf,
					Attempts:         attempt,
					ConversionSource: src,
					ConversionTarget: tgt,
				}, nil
			}
			// The service answered before the document landed.
			fmt.Fprintf(w, "empty document body (attempt %d/%d)\n", attempt, maxAttempts)
		}

		if !final {
			if sleepErr := httputil.Sleep(ctx, cfg.Poll.Delay); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}

	return nil, &TimeoutError{ResultID: resultID, Attempts: maxAttempts}
}

// pollOnce performs one GET and classifies the response. A JSON error field
// riding on a non-2xx status is a definitive rejection, not a transport
// failure, so it is classified before the status code is judged.
func pollOnce(ctx context.Context, client *http.Client, cfg types.ClientConfig, resultID string) (protocol.Outcome, string, string, error) {
	req, err := httputil.NewPollRequest(ctx, cfg.Service.GetURL, resultID, cfg.UserAgent, cfg.Service.Headers)
	if err != nil {
		return protocol.Outcome{}, "", "", fmt.Errorf("creating poll request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return protocol.Outcome{}, "", "", ctx.Err()
		}
		return protocol.Outcome{}, "", "", &transientError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.Outcome{}, "", "", &transientError{err: fmt.Errorf("reading poll response: %w", err)}
	}

	src := resp.Header.Get("X-Conversion-Source")
	tgt := resp.Header.Get("X-Conversion-Target")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := protocol.ErrorMessage(body); ok {
			return protocol.Outcome{Kind: protocol.OutcomeFailed, Message: msg}, src, tgt, nil
		}
		return protocol.Outcome{}, "", "", &transientError{err: fmt.Errorf("HTTP %d from poll endpoint", resp.StatusCode)}
	}

	outcome, err := protocol.ClassifyPoll(resp.Header.Get("Content-Type"), body)
	return outcome, src, tgt, err
}

func validatePollConfig(p types.PollConfig) error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrConfig, p.MaxAttempts)
	}
	if p.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative, got %v", ErrConfig, p.Delay)
	}
	return nil
}

// ConvertSync performs the single-call conversion: submit and first poll
// collapsed into one POST, with the PDF (or an error) in the response.
func ConvertSync(ctx context.Context, client *http.Client, cfg types.ClientConfig, sourcePath string, opts Options, w io.Writer) (*Result, error) {
	req, err := payload.Encode(sourcePath, payload.Options{
		Filename: opts.Filename,
		Format:   opts.Format,
		Target:   opts.Target,
	})
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	httpReq, err := httputil.NewSubmitRequest(ctx, cfg.Service.APIURL, body, cfg.UserAgent, cfg.Service.Headers)
	if err != nil {
		return nil, fmt.Errorf("creating conversion request: %w", err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("conversion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading conversion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := protocol.ErrorMessage(respBody); ok {
			return nil, &protocol.RemoteError{Message: msg}
		}
		return nil, fmt.Errorf("HTTP %d from conversion endpoint", resp.StatusCode)
	}

	outcome, err := protocol.ClassifyPoll(resp.Header.Get("Content-Type"), respBody)
	if err != nil {
		return nil, err
	}

	var pdf []byte
	switch outcome.Kind {
	case protocol.OutcomeFailed:
		return nil, &protocol.RemoteError{Message: outcome.Message}
	case protocol.OutcomeInProgress:
		return nil, fmt.Errorf("%w: synchronous conversion returned a status object", protocol.ErrProtocol)
	case protocol.OutcomePDF:
		pdf, err = protocol.CorrectDoubleEncoding(outcome.PDF)
		if err != nil {
			return nil, err
		}
	}
	if len(pdf) == 0 {
		return nil, &protocol.RemoteError{Message: "conversion produced no PDF content"}
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = sink.DefaultOutputPath(sourcePath)
	}
	if err := sink.Write(outPath, pdf); err != nil {
		return nil, err
	}

	res := &Result{
		SourcePath:       sourcePath,
		OutputPath:       outPath,
		Bytes:            len(pdf),
		ConversionSource: resp.Header.Get("X-Conversion-Source"),
		ConversionTarget: resp.Header.Get("X-Conversion-Target"),
	}
	res.ReceiptPath = writeReceipt(res, w)
	fmt.Fprintf(w, "converted: %s -> %s (%d bytes)\n", sourcePath, outPath, res.Bytes)
	return res, nil
}

// ConvertAsync submits the workbook, polls until the PDF is ready, and
// writes it to disk. The skipped return value reports that the output
// already existed and no network call was made.
func ConvertAsync(ctx context.Context, client *http.Client, cfg types.ClientConfig, sourcePath string, opts Options, rec Recorder, w io.Writer) (res *Result, skipped bool, err error) {
	outPath := opts.OutputPath
	if outPath == "" {
		outPath = sink.DefaultOutputPath(sourcePath)
	}

	if !opts.Force {
		if _, statErr := os.Stat(outPath); statErr == nil {
			fmt.Fprintf(w, "skipped: %s (output already exists)\n", sourcePath)
			return &Result{SourcePath: sourcePath, OutputPath: outPath}, true, nil
		}
	}

	req, err := payload.Encode(sourcePath, payload.Options{
		Filename: opts.Filename,
		Format:   opts.Format,
		Target:   opts.Target,
	})
	if err != nil {
		return nil, false, err
	}

	resultID, err := Submit(ctx, client, cfg, req)
	if err != nil {
		return nil, false, err
	}
	fmt.Fprintf(w, "submitted: %s (result %s)\n", req.Filename, resultID)

	job := types.Job{
		ResultID:    resultID,
		Filename:    req.Filename,
		SourcePath:  sourcePath,
		OutputPath:  outPath,
		Status:      types.JobSubmitted,
		SubmittedAt: time.Now().UTC(),
	}
	recordSubmitted(rec, job, w)

	pollRes, err := Poll(ctx, client, cfg, resultID, w)
	if err != nil {
		job.Status = types.JobFailed
		job.Error = err.Error()
		job.CompletedAt = time.Now().UTC()
		recordFinished(rec, job, w)
		return nil, false, err
	}

	if err := sink.Write(outPath, pollRes.PDF); err != nil {
		job.Status = types.JobFailed
		job.Error = err.Error()
		job.CompletedAt = time.Now().UTC()
		recordFinished(rec, job, w)
		return nil, false, err
	}

	job.Status = types.JobCompleted
	job.CompletedAt = time.Now().UTC()
	recordFinished(rec, job, w)

	res = &Result{
		SourcePath:       sourcePath,
		OutputPath:       outPath,
		ResultID:         resultID,
		Attempts:         pollRes.Attempts,
		Bytes:            len(pollRes.PDF),
		ConversionSource: pollRes.ConversionSource,
		ConversionTarget: pollRes.ConversionTarget,
	}
	res.ReceiptPath = writeReceipt(res, w)
	fmt.Fprintf(w, "converted: %s -> %s (%d bytes, %d attempts)\n", sourcePath, outPath, res.Bytes, res.Attempts)
	return res, false, nil
}

// FetchResult resumes polling an identifier from an earlier submit and
// writes the PDF to outputPath. The identifier was supplied by hand, so its
// shape is validated before any network call.
func FetchResult(ctx context.Context, client *http.Client, cfg types.ClientConfig, resultID, outputPath string, rec Recorder, w io.Writer) (*Result, error) {
	if !protocol.ValidResultID(resultID) {
		return nil, fmt.Errorf("%w: result identifier must be a 64 character hexadecimal string", protocol.ErrProtocol)
	}

	pollRes, err := Poll(ctx, client, cfg, resultID, w)
	if err != nil {
		return nil, err
	}

	if err := sink.Write(outputPath, pollRes.PDF); err != nil {
		return nil, err
	}

	job := types.Job{
		ResultID:    resultID,
		OutputPath:  outputPath,
		Status:      types.JobCompleted,
		CompletedAt: time.Now().UTC(),
	}
	recordFinished(rec, job, w)

	res := &Result{
		OutputPath:       outputPath,
		ResultID:         resultID,
		Attempts:         pollRes.Attempts,
		Bytes:            len(pollRes.PDF),
		ConversionSource: pollRes.ConversionSource,
		ConversionTarget: pollRes.ConversionTarget,
	}
	res.ReceiptPath = writeReceipt(res, w)
	fmt.Fprintf(w, "fetched: %s -> %s (%d bytes, %d attempts)\n", resultID, outputPath, res.Bytes, res.Attempts)
	return res, nil
}

// writeReceipt records the conversion next to the output PDF. History is
// advisory, so a failed receipt write is a warning, not an error.
func writeReceipt(res *Result, w io.Writer) string {
	path, err := sink.WriteReceipt(types.Receipt{
		SourcePath:       res.SourcePath,
		OutputPath:       res.OutputPath,
		ResultID:         res.ResultID,
		Attempts:         res.Attempts,
		ConversionSource: res.ConversionSource,
		ConversionTarget: res.ConversionTarget,
		CompletedAt:      time.Now().UTC(),
	})
	if err != nil {
		fmt.Fprintf(w, "warning: receipt write failed: %v\n", err)
		return ""
	}
	return path
}

func recordSubmitted(rec Recorder, job types.Job, w io.Writer) {
	if rec == nil {
		return
	}
	if err := rec.JobSubmitted(job); err != nil {
		fmt.Fprintf(w, "warning: recording job %s failed: %v\n", job.ResultID, err)
	}
}

func recordFinished(rec Recorder, job types.Job, w io.Writer) {
	if rec == nil {
		return
	}
	if err := rec.JobFinished(job); err != nil {
		fmt.Fprintf(w, "warning: updating job %s failed: %v\n", job.ResultID, err)
	}
}
