package view

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2shbwi/k2sh/pkg/document"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	doc := document.NewRaster(&document.RasterImage{
		Width: 2, Height: 2, Channels: 1, Pixels: []byte{1, 2, 3, 4},
	})
	data, err := document.Encode(doc, map[string]string{"title": "Viewer Test", "author": "alice"})
	require.NoError(t, err)

	ts := httptest.NewServer(NewServer(data, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string) (int, Response) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	ts := testServer(t)

	code, body := getJSON(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
}

func TestInfoEndpoint(t *testing.T) {
	ts := testServer(t)

	code, body := getJSON(t, ts.URL+"/api/v1/info")
	require.Equal(t, http.StatusOK, code)
	require.True(t, body.Success)

	data := body.Data.(map[string]any)
	assert.Equal(t, float64(document.KindRasterImage), data["payload_kind"])
	assert.Equal(t, float64(16), data["payload_len"])
}

func TestValidateEndpoint(t *testing.T) {
	ts := testServer(t)

	code, body := getJSON(t, ts.URL+"/api/v1/validate")
	require.Equal(t, http.StatusOK, code)
	require.True(t, body.Success)
	assert.Equal(t, true, body.Data.(map[string]any)["ok"])
}

func TestPage(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Viewer Test")
}

func TestCorruptFile(t *testing.T) {
	ts := httptest.NewServer(NewServer([]byte("not a container"), nil).Handler())
	t.Cleanup(ts.Close)

	code, body := getJSON(t, ts.URL+"/api/v1/info")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, body.Success)

	// Validation still answers 200 with a structured report.
	code, body = getJSON(t, ts.URL+"/api/v1/validate")
	assert.Equal(t, http.StatusOK, code)
	require.True(t, body.Success)
	assert.Equal(t, false, body.Data.(map[string]any)["ok"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t)

	_, _ = http.Get(ts.URL + "/health")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
