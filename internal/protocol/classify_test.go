// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package protocol

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPoll_PDFContentType(t *testing.T) {
	body := []byte("%PDF-1.7 binary content \x00\x01")

	outcome, err := ClassifyPoll("application/pdf", body)
	require.NoError(t, err)

	assert.Equal(t, OutcomePDF, outcome.Kind)
	assert.Equal(t, body, outcome.PDF)
}

func TestClassifyPoll_PDFContentTypeWithCharset(t *testing.T) {
	body := []byte("%PDF-1.4")

	outcome, err := ClassifyPoll("application/pdf; charset=binary", body)
	require.NoError(t, err)

	assert.Equal(t, OutcomePDF, outcome.Kind)
	assert.Equal(t, body, outcome.PDF)
}

func TestClassifyPoll_JSONStatuses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want OutcomeKind
	}{
		{"submitted", `{"status":"submitted","result":"abc"}`, OutcomeInProgress},
		{"inprogress", `{"filename":"report.xlsx","status":"inprogress","result":"abc"}`, OutcomeInProgress},
		{"leading whitespace", "\n  {\"status\":\"inprogress\"}", OutcomeInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ClassifyPoll("application/json", []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, outcome.Kind)
		})
	}
}

func TestClassifyPoll_JSONError(t *testing.T) {
	outcome, err := ClassifyPoll("application/json", []byte(`{"error":"Result not found"}`))
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Equal(t, "Result not found", outcome.Message)
}

func TestClassifyPoll_UnexpectedJSON(t *testing.T) {
	_, err := ClassifyPoll("application/json", []byte(`{"status":"queued"}`))
	assert.ErrorIs(t, err, ErrProtocol)

	_, err = ClassifyPoll("application/json", []byte(`{"hello":"world"}`))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestClassifyPoll_MalformedJSON(t *testing.T) {
	_, err := ClassifyPoll("application/json", []byte(`{"status": truncated`))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestClassifyPoll_Base64Text(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake document")
	encoded := base64.StdEncoding.EncodeToString(pdf)

	tests := []struct {
		name string
		body string
	}{
		{"bare", encoded},
		{"quoted", `"` + encoded + `"`},
		{"trailing newline", encoded + "\n"},
		{"quoted with newline", `"` + encoded + `"` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := ClassifyPoll("text/plain", []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, OutcomePDF, outcome.Kind)
			assert.Equal(t, pdf, outcome.PDF)
		})
	}
}

func TestClassifyPoll_InvalidBase64(t *testing.T) {
	_, err := ClassifyPoll("text/plain", []byte("*** definitely not base64 ***"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClassifyPoll_EmptyBody(t *testing.T) {
	outcome, err := ClassifyPoll("text/plain", nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomePDF, outcome.Kind)
	assert.Empty(t, outcome.PDF)
}

func TestParseSubmit(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantID     string
		wantErr    error
	}{
		{
			name:       "accepted",
			statusCode: 202,
			body:       `{"filename":"report.xlsx","status":"submitted","result":"deadbeef"}`,
			wantID:     "deadbeef",
		},
		{
			name:       "unexpected status value",
			statusCode: 202,
			body:       `{"status":"queued","result":"deadbeef"}`,
			wantErr:    ErrProtocol,
		},
		{
			name:       "missing result identifier",
			statusCode: 202,
			body:       `{"status":"submitted","result":""}`,
			wantErr:    ErrProtocol,
		},
		{
			name:       "non-JSON success body",
			statusCode: 200,
			body:       "OK",
			wantErr:    ErrProtocol,
		},
		{
			name:       "malformed JSON",
			statusCode: 200,
			body:       `{"status"`,
			wantErr:    ErrProtocol,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseSubmit(tt.statusCode, []byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseSubmit_RemoteError(t *testing.T) {
	_, err := ParseSubmit(400, []byte(`{"error":"Unsupported format 'csv', expected 'xlsx'"}`))

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Unsupported format 'csv', expected 'xlsx'", remote.Message)
}

func TestParseSubmit_NonJSONFailureStatus(t *testing.T) {
	_, err := ParseSubmit(502, []byte("Bad Gateway"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProtocol)
}

func TestErrorMessage(t *testing.T) {
	msg, ok := ErrorMessage([]byte(`{"error":"bad file"}`))
	assert.True(t, ok)
	assert.Equal(t, "bad file", msg)

	_, ok = ErrorMessage([]byte(`{"status":"inprogress"}`))
	assert.False(t, ok)

	_, ok = ErrorMessage([]byte("Internal Server Error"))
	assert.False(t, ok)
}

func TestCorrectDoubleEncoding_RealPDFUnchanged(t *testing.T) {
	// '%' is outside the base64 alphabet, so the magic prefix alone
	// guarantees a binary PDF is never re-decoded.
	pdf := []byte("%PDF-1.7\nsome content")

	got, err := CorrectDoubleEncoding(pdf)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestCorrectDoubleEncoding_DecodesOneExtraLayer(t *testing.T) {
	inner := []byte("%PDF-1.7 document body")
	outer := []byte(base64.StdEncoding.EncodeToString(inner))

	got, err := CorrectDoubleEncoding(outer)
	require.NoError(t, err)
	assert.Equal(t, inner, got)
}

func TestCorrectDoubleEncoding_StopsAfterOneLayer(t *testing.T) {
	// An all-alphanumeric document stands in for a PDF whose bytes
	// happen to look like base64. Its encoding must be unwrapped exactly
	// once, not recursively until the content stops looking like base64.
	inner := []byte("QUJDREVGR0g=")
	outer := []byte(base64.StdEncoding.EncodeToString(inner))

	got, err := CorrectDoubleEncoding(outer)
	require.NoError(t, err)
	assert.Equal(t, inner, got)
}

func TestCorrectDoubleEncoding_LineBreaksAllowed(t *testing.T) {
	inner := []byte("%PDF-1.4 content")
	encoded := base64.StdEncoding.EncodeToString(inner)
	outer := []byte(encoded[:10] + "\r\n" + encoded[10:] + "\n")

	got, err := CorrectDoubleEncoding(outer)
	require.NoError(t, err)
	assert.Equal(t, inner, got)
}

func TestCorrectDoubleEncoding_BinaryUnchanged(t *testing.T) {
	data := []byte{0x01, 0x02, 0xff, 0xfe}

	got, err := CorrectDoubleEncoding(data)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCorrectDoubleEncoding_EmptyUnchanged(t *testing.T) {
	got, err := CorrectDoubleEncoding(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCorrectDoubleEncoding_SecondLayerFailure(t *testing.T) {
	// All base64-alphabet bytes but not decodable (bad padding position).
	_, err := CorrectDoubleEncoding([]byte("AB=CD"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestBase64RoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("a"),
		[]byte("%PDF-1.7"),
		{0x00, 0x01, 0x02, 0xfd, 0xfe, 0xff},
		[]byte("a longer payload with spaces and \n newlines \t inside"),
	}
	for _, p := range payloads {
		encoded := base64.StdEncoding.EncodeToString(p)
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, p, decoded)
	}
}
