package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ramfs/pkg/ramfs"
	"github.com/marmos91/ramfs/pkg/vfs"
)

func newTestServer(t *testing.T) (*httptest.Server, *vfs.Registry) {
	t.Helper()
	reg := vfs.NewRegistry()
	d := ramfs.NewDriver(reg, nil)
	require.NoError(t, d.Register())
	t.Cleanup(d.Teardown)

	ts := httptest.NewServer(NewRouter(reg))
	t.Cleanup(ts.Close)
	return ts, reg
}

func decodeResponse(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("liveness", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeResponse(t, resp)
		assert.Equal(t, "healthy", body.Status)
	})

	t.Run("readiness", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health/ready")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestFilesystemsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/filesystems")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp)
	types, ok := body.Data.([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"ramfs", "rampool"}, types)
}

func TestMountLifecycleViaAPI(t *testing.T) {
	ts, reg := newTestServer(t)

	t.Run("list starts empty", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/mounts")
		require.NoError(t, err)
		body := decodeResponse(t, resp)
		assert.Equal(t, "ok", body.Status)
		assert.Empty(t, body.Data)
	})

	var mountID string

	t.Run("create", func(t *testing.T) {
		payload := []byte(`{"type":"ramfs","options":"mode=0700"}`)
		resp, err := http.Post(ts.URL+"/api/v1/mounts", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeResponse(t, resp)
		data, ok := body.Data.(map[string]interface{})
		require.True(t, ok)
		mountID, _ = data["id"].(string)
		assert.NotEmpty(t, mountID)
		assert.Equal(t, "ramfs", data["type"])
		assert.Equal(t, 1, reg.CountMounts())
	})

	t.Run("get", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/mounts/" + mountID)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeResponse(t, resp)
		data := body.Data.(map[string]interface{})
		assert.Equal(t, "0x858458f6", data["magic"])
	})

	t.Run("delete", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/mounts/"+mountID, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 0, reg.CountMounts())
	})
}

func TestMountErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	t.Run("unknown type", func(t *testing.T) {
		payload := []byte(`{"type":"tmpfs"}`)
		resp, err := http.Post(ts.URL+"/api/v1/mounts", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed options", func(t *testing.T) {
		payload := []byte(`{"type":"ramfs","options":"mode=zzz"}`)
		resp, err := http.Post(ts.URL+"/api/v1/mounts", "application/json", bytes.NewReader(payload))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing type", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/v1/mounts", "application/json", bytes.NewReader([]byte(`{}`)))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid mount id", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/mounts/not-a-uuid")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown mount id", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/mounts/00000000-0000-0000-0000-000000000000")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
