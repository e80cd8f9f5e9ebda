//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/reportdeck/backend/internal/api/http"
	"github.com/reportdeck/backend/internal/api/middleware"
	"github.com/reportdeck/backend/internal/api/ws"
	"github.com/reportdeck/backend/internal/domain/container"
	"github.com/reportdeck/backend/internal/domain/defaults"
	"github.com/reportdeck/backend/internal/domain/schema"
	"github.com/reportdeck/backend/internal/domain/widget"
	"github.com/reportdeck/backend/internal/prefs"
	"github.com/reportdeck/backend/internal/shared/types"
	"github.com/reportdeck/backend/internal/widgets"
)

// stack is the fully wired service graph used by the integration tests: the
// shipped widget providers, a real preference store, and the HTTP surface.
type stack struct {
	router *gin.Engine
	hub    *ws.Hub
}

func newStack(t *testing.T, prefStore prefs.Store, sets map[string]*types.RecordSet) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := widget.NewRegistry()
	require.NoError(t, widgets.RegisterAll(reg, widgets.Deps{}))
	factory := widget.NewFactory(reg)

	hub := ws.NewHub(nil, nil)
	contStore := container.NewStore(prefStore, "reportdeck", sets, nil)
	manager := container.NewManager(contStore, factory, nil, nil, hub)
	codec := schema.NewCodec(nil)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	h := api.NewHandlers(manager, codec, reg, factory, nil, nil)
	router.GET("/health", h.Health)
	h.Register(router)

	wsHandler := ws.NewHandler(hub, nil, nil)
	router.GET("/api/v1/stream", wsHandler.HandleConnection)

	return &stack{router: router, hub: hub}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, user string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-ID", user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestContainerLifecycleIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newStack(t, prefs.NewMemory(), nil)
	const user = "mara"
	const base = "/api/v1/dashboards/ops/widgets"

	t.Run("add traffic widget", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodPost, base, user, map[string]interface{}{
			"className": widgets.ClassTraffic,
			"size":      7,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		data := decodeData(t, rec)
		assert.Equal(t, "report_container_ops_1", data["alias"])
		assert.Equal(t, widgets.ClassTraffic, data["class"])
		assert.EqualValues(t, 1, data["sortOrder"])

		fragment := data["fragment"].(map[string]interface{})
		assert.Equal(t, "traffic", fragment["kind"])
		series := fragment["data"].(map[string]interface{})["series"].([]interface{})
		assert.Len(t, series, 7)
	})

	t.Run("add notes widget", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodPost, base, user, map[string]interface{}{
			"className": widgets.ClassNotes,
			"size":      3,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		data := decodeData(t, rec)
		assert.Equal(t, "report_container_ops_2", data["alias"])
		assert.EqualValues(t, 2, data["sortOrder"])
	})

	t.Run("list renders both", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodGet, base, user, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		list := decodeList(t, rec)
		require.Len(t, list, 2)
		assert.Equal(t, "report_container_ops_1", list[0]["alias"])
		assert.Equal(t, "report_container_ops_2", list[1]["alias"])
		assert.NotNil(t, list[0]["fragment"])
	})

	t.Run("configure the traffic period", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodPut, base+"/report_container_ops_1", user, map[string]interface{}{
			"fields": `{"title":"Today","period":"day"}`,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		data := decodeData(t, rec)
		fragment := data["fragment"].(map[string]interface{})
		assert.Equal(t, "Today", fragment["title"])

		// A daily period renders one point per hour.
		series := fragment["data"].(map[string]interface{})["series"].([]interface{})
		assert.Len(t, series, 24)
	})

	t.Run("form reflects the update", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodGet, base+"/report_container_ops_1", user, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeData(t, rec)
		values := data["values"].(map[string]interface{})
		assert.Equal(t, "Today", values["title"])
		assert.Equal(t, "day", values["period"])
		assert.EqualValues(t, 7, values["width"])

		descriptors := data["descriptors"].([]interface{})
		first := descriptors[0].(map[string]interface{})
		assert.Equal(t, "width", first["property"])
	})

	t.Run("reorder", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodPut, "/api/v1/dashboards/ops/widget-orders", user, map[string]interface{}{
			"aliases": "report_container_ops_1,report_container_ops_2",
			"orders":  "2,1",
		})
		require.Equal(t, http.StatusNoContent, rec.Code)

		list := decodeList(t, doJSON(t, s.router, http.MethodGet, base, user, nil))
		require.Len(t, list, 2)
		assert.Equal(t, "report_container_ops_2", list[0]["alias"])
		assert.Equal(t, "report_container_ops_1", list[1]["alias"])
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodDelete, base+"/report_container_ops_1", user, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, s.router, http.MethodDelete, base+"/report_container_ops_1", user, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		list := decodeList(t, doJSON(t, s.router, http.MethodGet, base, user, nil))
		require.Len(t, list, 1)
		assert.Equal(t, "report_container_ops_2", list[0]["alias"])
	})
}

func TestWidgetCatalogIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	s := newStack(t, prefs.NewMemory(), nil)

	t.Run("catalog lists all shipped types", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodGet, "/api/v1/widgets", "mara", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		list := decodeList(t, rec)
		require.Len(t, list, 4)

		classes := make([]string, 0, len(list))
		for _, entry := range list {
			classes = append(classes, entry["class"].(string))
			descriptors := entry["descriptors"].([]interface{})
			require.NotEmpty(t, descriptors)
			first := descriptors[0].(map[string]interface{})
			assert.Equal(t, "width", first["property"])
		}
		assert.Contains(t, classes, widgets.ClassTraffic)
		assert.Contains(t, classes, widgets.ClassSales)
		assert.Contains(t, classes, widgets.ClassNotes)
		assert.Contains(t, classes, widgets.ClassFeed)
	})

	t.Run("picker offers sizes and types", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodGet, "/api/v1/dashboards/ops/widget-picker", "mara", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeData(t, rec)
		sizes := data["sizes"].([]interface{})
		require.Len(t, sizes, 10)
		last := sizes[9].(map[string]interface{})
		assert.Equal(t, "full width", last["label"])

		assert.Len(t, data["types"].([]interface{}), 4)
	})
}

func TestFilePersistenceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	const user = "toby"
	const base = "/api/v1/dashboards/sales/widgets"

	// First run: create and configure widgets.
	store1, err := prefs.NewFile(dir)
	require.NoError(t, err)
	s1 := newStack(t, store1, nil)

	rec := doJSON(t, s1.router, http.MethodPost, base, user, map[string]interface{}{
		"className": widgets.ClassSales,
		"size":      5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s1.router, http.MethodPut, base+"/report_container_sales_1", user, map[string]interface{}{
		"fields": `{"title":"Quarter to date"}`,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, store1.Close())

	// Second run over the same directory sees the same container.
	store2, err := prefs.NewFile(dir)
	require.NoError(t, err)
	defer store2.Close()
	s2 := newStack(t, store2, nil)

	list := decodeList(t, doJSON(t, s2.router, http.MethodGet, base, user, nil))
	require.Len(t, list, 1)
	assert.Equal(t, "report_container_sales_1", list[0]["alias"])

	fragment := list[0]["fragment"].(map[string]interface{})
	assert.Equal(t, "Quarter to date", fragment["title"])
}

func TestDefaultSeedingIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	content := `context = "ops"

[[widgets]]
class = "reportdeck/widgets/traffic"
width = 5
properties = { title = "Weekly visits" }

[[widgets]]
class = "reportdeck/widgets/notes"
newRow = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ops.widgets.toml"), []byte(content), 0644))

	reg := widget.NewRegistry()
	require.NoError(t, widgets.RegisterAll(reg, widgets.Deps{}))
	sets, err := defaults.NewLoader(reg, nil).Load(dir)
	require.NoError(t, err)
	require.Contains(t, sets, "ops")

	s := newStack(t, prefs.NewMemory(), sets)
	const base = "/api/v1/dashboards/ops/widgets"

	t.Run("fresh user sees the seeded container", func(t *testing.T) {
		list := decodeList(t, doJSON(t, s.router, http.MethodGet, base, "mara", nil))
		require.Len(t, list, 2)
		assert.Equal(t, "report_container_ops_1", list[0]["alias"])
		assert.Equal(t, widgets.ClassTraffic, list[0]["class"])

		fragment := list[0]["fragment"].(map[string]interface{})
		assert.Equal(t, "Weekly visits", fragment["title"])
	})

	t.Run("additions keep numbering past the seeds", func(t *testing.T) {
		rec := doJSON(t, s.router, http.MethodPost, base, "mara", map[string]interface{}{
			"className": widgets.ClassNotes,
			"size":      4,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "report_container_ops_3", decodeData(t, rec)["alias"])
	})

	t.Run("each user starts from their own copy", func(t *testing.T) {
		list := decodeList(t, doJSON(t, s.router, http.MethodGet, base, "toby", nil))
		require.Len(t, list, 2)
	})
}
