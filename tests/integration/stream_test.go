//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportdeck/backend/internal/prefs"
	"github.com/reportdeck/backend/internal/widgets"
)

func sendJSON(t *testing.T, method, url, user string, payload interface{}) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", user)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func nextFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStreamEventsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newStack(t, prefs.NewMemory(), nil)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream?context=ops"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := nextFrame(t, conn)
	require.Equal(t, "system", welcome["type"])

	const user = "mara"
	base := srv.URL + "/api/v1/dashboards/ops/widgets"

	t.Run("add is broadcast", func(t *testing.T) {
		resp := sendJSON(t, http.MethodPost, base, user, map[string]interface{}{
			"className": widgets.ClassTraffic,
			"size":      6,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		frame := nextFrame(t, conn)
		assert.Equal(t, "widget.added", frame["type"])
		assert.Equal(t, "ops", frame["context"])
		assert.Equal(t, user, frame["user"])
		assert.Equal(t, "report_container_ops_1", frame["alias"])
		assert.NotEmpty(t, frame["id"])
	})

	t.Run("update is broadcast", func(t *testing.T) {
		resp := sendJSON(t, http.MethodPut, base+"/report_container_ops_1", user, map[string]interface{}{
			"fields": `{"title":"Visits"}`,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		frame := nextFrame(t, conn)
		assert.Equal(t, "widget.updated", frame["type"])
		assert.Equal(t, "report_container_ops_1", frame["alias"])
	})

	t.Run("reorder is broadcast without an alias", func(t *testing.T) {
		resp := sendJSON(t, http.MethodPut, srv.URL+"/api/v1/dashboards/ops/widget-orders", user, map[string]interface{}{
			"aliases": "report_container_ops_1",
			"orders":  "5",
		})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		frame := nextFrame(t, conn)
		assert.Equal(t, "widget.reordered", frame["type"])
		assert.NotContains(t, frame, "alias")
	})

	t.Run("remove is broadcast", func(t *testing.T) {
		resp := sendJSON(t, http.MethodDelete, base+"/report_container_ops_1", user, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		frame := nextFrame(t, conn)
		assert.Equal(t, "widget.removed", frame["type"])
		assert.Equal(t, "report_container_ops_1", frame["alias"])
	})

	t.Run("other contexts stay silent", func(t *testing.T) {
		resp := sendJSON(t, http.MethodPost, srv.URL+"/api/v1/dashboards/sales/widgets", user, map[string]interface{}{
			"className": widgets.ClassNotes,
			"size":      4,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
		var frame map[string]interface{}
		assert.Error(t, conn.ReadJSON(&frame), "no frame expected for an unsubscribed context")
	})
}
