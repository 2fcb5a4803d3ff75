package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"lantern/internal/audit"
	"lantern/internal/dataprep/application"
	dataprep "lantern/internal/dataprep/domain"
)

type fakeService struct {
	err     error
	lastReq application.PrepareRequest
}

func testDataset() *dataprep.PreparedDataset {
	start := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)
	return &dataprep.PreparedDataset{
		PV:            mat.NewDense(2, 2, []float64{1, 0, 2, 0}),
		Load:          mat.NewDense(2, 4, []float64{1, 1, 1, 1, 2, 2, 2, 2}),
		Timestamps:    []time.Time{start, start.Add(time.Hour)},
		Season:        dataprep.SeasonWinter,
		CommunitySize: 2,
		BlockSize:     2,
		PVPercentage:  50,
		NonOwners:     []int{1},
		PVRows:        []int{4, 2},
		LoadRows:      []int{0, 1, 2, 3},
	}
}

func (s *fakeService) Prepare(_ context.Context, req application.PrepareRequest) (*dataprep.PreparedDataset, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return testDataset(), nil
}

func (s *fakeService) Simulate(ctx context.Context, req application.PrepareRequest) (*application.SimulationRun, error) {
	dataset, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return &application.SimulationRun{
		ID:         "run-1",
		FinishedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Params:     dataprep.SamplingParameters{CommunitySize: 2, Season: dataprep.SeasonWinter, PVPercentage: 50},
		Dataset:    dataset,
		Result: &dataprep.SimulationResult{
			TradingNetwork: dataprep.TradingNetwork{
				Nodes:  []string{"M1", "M2"},
				Edges:  []dataprep.TradingEdge{{From: "M1", To: "M2", Volume: 1.5}},
				Layout: map[string][2]float64{"M1": {1, 0}, "M2": {-1, 0}},
			},
			CostMetrics: dataprep.CostMetrics{CostWithLEC: 1, CostWithoutLEC: 2},
			Profiles:    dataprep.Profiles{LoadProfile: make([]float64, 24), GenProfile: make([]float64, 24)},
			Warnings:    []string{"no energy was traded inside the community"},
			Errors:      []string{},
		},
	}, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Log(_ context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

const validBody = `{"community_size":2,"season":"win","pv_percentage":50,"sd_percentage":0,"with_battery":true}`

func post(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func newTestHandler(t *testing.T, svc Service, auditLogger audit.Logger) *Handler {
	t.Helper()
	handler, err := NewHandler(svc, auditLogger, nil)
	require.NoError(t, err)
	return handler
}

func TestSimulate_ReturnsResult(t *testing.T) {
	svc := &fakeService{}
	recorder := &recordingAudit{}
	handler := newTestHandler(t, svc, recorder)

	for _, path := range []string{"/api/simulate", "/api/v1/simulate"} {
		resp := post(t, handler, path, validBody)
		require.Equal(t, http.StatusOK, resp.Code, path)
		assert.Equal(t, "run-1", resp.Header().Get("X-Run-ID"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Contains(t, body, "cost_metrics")
		assert.Contains(t, body, "energy_metrics")
		assert.Contains(t, body, "market_metrics")
		network := body["trading_network"].(map[string]any)
		assert.Equal(t, []any{"M1", "M2", 1.5}, network["edges"].([]any)[0])
	}

	assert.Equal(t, application.PrepareRequest{CommunitySize: 2, Season: "win", PVPercentage: 50, WithBattery: true}, svc.lastReq)
	require.Len(t, recorder.entries, 2)
	assert.Equal(t, "simulation.run", recorder.entries[0].Action)
	assert.Equal(t, "run-1", recorder.entries[0].ResourceID)
	assert.NotEmpty(t, recorder.entries[0].Metadata)
}

func TestSimulate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"season", fmt.Errorf("%w: %q", dataprep.ErrInvalidSeason, "monsoon"), http.StatusBadRequest},
		{"parameter", &dataprep.ParameterError{Name: "community_size", Value: 4, Min: 5, Max: 100}, http.StatusBadRequest},
		{"source", fmt.Errorf("load pv table: %w", dataprep.ErrSourceNotFound), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeService{err: tc.err}, nil)
			resp := post(t, handler, "/api/simulate", validBody)
			assert.Equal(t, tc.want, resp.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["detail"])
		})
	}
}

func TestSimulate_BadRequests(t *testing.T) {
	handler := newTestHandler(t, &fakeService{}, nil)

	resp := post(t, handler, "/api/simulate", `{"community_size":`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = post(t, handler, "/api/simulate", `{"community_size":10,"pv_percentage":50,"sd_percentage":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "missing season")

	req := httptest.NewRequest(http.MethodGet, "/api/simulate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	resp = post(t, handler, "/api/v1/unknown", validBody)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRequestPayload_MissingFields(t *testing.T) {
	cases := []struct {
		body string
		want error
	}{
		{`{"community_size":10,"pv_percentage":50,"sd_percentage":0}`, dataprep.ErrInvalidSeason},
		{`{"season":"win","pv_percentage":50,"sd_percentage":0}`, dataprep.ErrInvalidParameter},
		{`{"season":"win","community_size":10,"sd_percentage":0}`, dataprep.ErrInvalidParameter},
		{`{"season":"win","community_size":10,"pv_percentage":50}`, dataprep.ErrInvalidParameter},
	}
	for _, tc := range cases {
		var payload requestPayload
		require.NoError(t, json.Unmarshal([]byte(tc.body), &payload))
		_, err := payload.toRequest()
		assert.ErrorIs(t, err, tc.want, tc.body)
		assert.Equal(t, http.StatusBadRequest, StatusFor(err))
	}

	var payload requestPayload
	require.NoError(t, json.Unmarshal([]byte(validBody), &payload))
	req, err := payload.toRequest()
	require.NoError(t, err)
	assert.True(t, req.WithBattery)
	assert.Equal(t, "win", req.Season)
}

func TestDatasetExport_XLSX(t *testing.T) {
	recorder := &recordingAudit{}
	handler := newTestHandler(t, &fakeService{}, recorder)
	resp := post(t, handler, "/api/v1/datasets/export.xlsx", validBody)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "dataset-win.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"summary", "pv", "load"}, f.GetSheetList())

	pvRows, err := f.GetRows("pv")
	require.NoError(t, err)
	require.Len(t, pvRows, 3)
	assert.Equal(t, []string{"timestamp", "M1", "M2"}, pvRows[0])
	assert.Equal(t, "2023-12-01 01:00:00", pvRows[2][0])
	assert.Equal(t, "2", pvRows[2][1])

	loadRows, err := f.GetRows("load")
	require.NoError(t, err)
	assert.Equal(t, []string{"timestamp", "M1.1", "M1.2", "M2.1", "M2.2"}, loadRows[0])

	season, err := f.GetCellValue("summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "win", season)
	nonOwners, err := f.GetCellValue("summary", "B12")
	require.NoError(t, err)
	assert.Equal(t, "1", nonOwners)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, "dataset.export", recorder.entries[0].Action)
}

func TestReport_PDF(t *testing.T) {
	handler := newTestHandler(t, &fakeService{}, nil)
	resp := post(t, handler, "/api/v1/simulate/report.pdf", validBody)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")))
}

func TestNewHandler_NilService(t *testing.T) {
	_, err := NewHandler(nil, nil, nil)
	assert.Error(t, err)
}
