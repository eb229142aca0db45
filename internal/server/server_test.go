package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	aggregationservice "github.com/smallbiznis/voltgrid/internal/aggregation/service"
	"github.com/smallbiznis/voltgrid/internal/clock"
	"github.com/smallbiznis/voltgrid/internal/config"
	costingservice "github.com/smallbiznis/voltgrid/internal/costing/service"
	"github.com/smallbiznis/voltgrid/internal/normalizer"
	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
	tariffrepository "github.com/smallbiznis/voltgrid/internal/tariff/repository"
	tariffservice "github.com/smallbiznis/voltgrid/internal/tariff/service"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	telemetryrepository "github.com/smallbiznis/voltgrid/internal/telemetry/repository"
	telemetryservice "github.com/smallbiznis/voltgrid/internal/telemetry/service"
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	unitservice "github.com/smallbiznis/voltgrid/internal/unit/service"
	"github.com/smallbiznis/voltgrid/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&telemetrydomain.Reading{},
		&tariffdomain.Schedule{},
		&tariffdomain.Window{},
		&tariffdomain.Rate{},
		&unitdomain.ConsumingUnit{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	readings := telemetryservice.NewService(telemetryservice.ServiceParam{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      clock.NewFakeClock(testNow),
		Cfg:        config.Config{},
		Repo:       telemetryrepository.New(),
		Normalizer: normalizer.New(),
	})
	aggregations := aggregationservice.NewService(aggregationservice.ServiceParam{
		Log:      log,
		Readings: readings,
	})
	tariffs := tariffservice.NewService(tariffservice.ServiceParam{
		DB:   db,
		Log:  log,
		Repo: tariffrepository.New(),
	})
	units := unitservice.NewService(unitservice.ServiceParam{
		Log:   log,
		Units: repository.ProvideStore[unitdomain.ConsumingUnit](db),
	})
	costs := costingservice.NewService(costingservice.ServiceParam{
		Log:      log,
		Units:    units,
		Tariffs:  tariffs,
		Readings: readings,
	})

	srv := NewServer(ServerParams{
		Gin:            NewEngine(log),
		Cfg:            config.Config{},
		Log:            log,
		TelemetrySvc:   readings,
		AggregationSvc: aggregations,
		CostingSvc:     costs,
	})
	return srv, db
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestIngestTelemetryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := map[string]any{
		"equipment_id": "eq-1",
		"category":     "meter",
		"payload":      map[string]any{"Pt": 12.5, "EAc": 1000.0},
		"reported_at":  testNow.Format(time.RFC3339),
	}

	w := doJSON(t, srv, http.MethodPost, "/v1/telemetry", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	// A redelivery of the same sample is acknowledged, not duplicated.
	w = doJSON(t, srv, http.MethodPost, "/v1/telemetry", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var result telemetrydomain.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, telemetrydomain.StatusSkipped, result.Status)
}

func TestIngestTelemetryEndpoint_SchemaMismatch(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/telemetry", map[string]any{
		"equipment_id": "eq-1",
		"category":     "meter",
		"payload":      map[string]any{"bogus": true},
		"reported_at":  testNow.Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		at := testNow.Add(time.Duration(i) * time.Minute)
		w := doJSON(t, srv, http.MethodPost, "/v1/telemetry", map[string]any{
			"equipment_id": "eq-1",
			"category":     "meter",
			"payload":      map[string]any{"Pt": float64(10 * (i + 1))},
			"reported_at":  at.Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, srv, http.MethodGet,
		"/v1/equipments/eq-1/history?from=2025-06-02T12:00:00Z&to=2025-06-02T13:00:00Z&bucket=5m", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Buckets []struct {
			SampleCount int                `json:"sample_count"`
			Metrics     map[string]float64 `json:"metrics"`
		} `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Buckets, 1)
	assert.Equal(t, 3, resp.Buckets[0].SampleCount)
	assert.InDelta(t, 20, resp.Buckets[0].Metrics["active_power"], 1e-9)
}

func TestListReadingsEndpoint_CursorPaging(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 5; i++ {
		at := testNow.Add(time.Duration(i) * time.Minute)
		w := doJSON(t, srv, http.MethodPost, "/v1/telemetry", map[string]any{
			"equipment_id": "eq-1",
			"category":     "meter",
			"payload":      map[string]any{"Pt": float64(i)},
			"reported_at":  at.Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	type listResp struct {
		Readings []telemetrydomain.Reading `json:"readings"`
		PageInfo struct {
			NextPageToken string `json:"next_page_token"`
			HasMore       bool   `json:"has_more"`
		} `json:"page_info"`
	}

	base := "/v1/equipments/eq-1/readings?from=2025-06-02T12:00:00Z&to=2025-06-02T13:00:00Z&page_size=2"

	w := doJSON(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var first listResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.Len(t, first.Readings, 2)
	assert.True(t, first.PageInfo.HasMore)
	require.NotEmpty(t, first.PageInfo.NextPageToken)
	assert.Equal(t, testNow, first.Readings[0].RecordedAt.UTC())

	w = doJSON(t, srv, http.MethodGet, base+"&page_token="+first.PageInfo.NextPageToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var second listResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.Len(t, second.Readings, 2)
	assert.True(t, second.PageInfo.HasMore)
	assert.Equal(t, testNow.Add(2*time.Minute), second.Readings[0].RecordedAt.UTC())

	w = doJSON(t, srv, http.MethodGet, base+"&page_token="+second.PageInfo.NextPageToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var last listResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &last))
	require.Len(t, last.Readings, 1)
	assert.False(t, last.PageInfo.HasMore)
	assert.Empty(t, last.PageInfo.NextPageToken)

	w = doJSON(t, srv, http.MethodGet, base+"&page_token=not-base64!", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReadingsEndpoint_Newest(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 3; i++ {
		at := testNow.Add(time.Duration(i) * time.Minute)
		w := doJSON(t, srv, http.MethodPost, "/v1/telemetry", map[string]any{
			"equipment_id": "eq-1",
			"category":     "meter",
			"payload":      map[string]any{"Pt": float64(i)},
			"reported_at":  at.Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, srv, http.MethodGet,
		"/v1/equipments/eq-1/readings?from=2025-06-02T12:00:00Z&to=2025-06-02T13:00:00Z&order=newest&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Readings []telemetrydomain.Reading `json:"readings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Readings, 2)
	// Newest retrieval returns the tail of the range in chronological order.
	assert.Equal(t, testNow.Add(time.Minute), resp.Readings[0].RecordedAt.UTC())
	assert.Equal(t, testNow.Add(2*time.Minute), resp.Readings[1].RecordedAt.UTC())
}

func TestHistoryEndpoint_BadParams(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/v1/equipments/eq-1/history?from=yesterday&to=now", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCostEndpoint_FailsClosed(t *testing.T) {
	srv, db := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet,
		"/v1/units/no-such/cost?from=2025-06-02T00:00:00Z&to=2025-06-03T00:00:00Z", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A unit whose concessionaire has no schedule is a configuration error,
	// never a zero-priced invoice.
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	require.NoError(t, db.Create(&unitdomain.ConsumingUnit{
		ID:             node.Generate(),
		Code:           "uc-001",
		EquipmentID:    "eq-1",
		Concessionaire: "ghost-utility",
	}).Error)

	w = doJSON(t, srv, http.MethodGet,
		"/v1/units/uc-001/cost?from=2025-06-02T00:00:00Z&to=2025-06-03T00:00:00Z", nil)
	assert.Equal(t, http.StatusFailedDependency, w.Code)
}

func TestRepairEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/v1/telemetry", map[string]any{
		"equipment_id": "eq-1",
		"category":     "meter",
		"payload":      map[string]any{"Pt": 10.0},
		"reported_at":  testNow.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/v1/admin/readings/repair", map[string]any{
		"equipment_id": "eq-1",
		"recorded_at":  testNow.Format(time.RFC3339),
		"patch":        map[string]float64{"power_factor_a": 0.91},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/v1/admin/readings/repair", map[string]any{
		"equipment_id": "eq-1",
		"recorded_at":  testNow.Add(time.Hour).Format(time.RFC3339),
		"patch":        map[string]float64{"power_factor_a": 0.91},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicatesEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/v1/admin/readings/duplicates", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/v1/admin/readings/duplicates/purge", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Purged int64 `json:"purged"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Purged)
}
