package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// BuildRequest returns a request with a bearer token when jwtString is
// set. A non-nil body is marshalled to JSON.
func BuildRequest(t *testing.T, method, reqURL, jwtString string, body any) *http.Request {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, reqURL, rdr)
	require.NoError(t, err)
	if jwtString != "" {
		req.Header.Set("Authorization", "Bearer "+jwtString)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// BuildAuthRequest targets path on the service under test.
func (h *TestHelper) BuildAuthRequest(method, path, jwtString string, body any) *http.Request {
	return BuildRequest(h.T, method, h.BaseURL+path, jwtString, body)
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request) *http.Response {
	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// DecodeJSON reads and closes the body into dst.
func DecodeJSON(t *testing.T, body io.ReadCloser, dst any) {
	t.Helper()
	defer body.Close()
	require.NoError(t, json.NewDecoder(body).Decode(dst))
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}
