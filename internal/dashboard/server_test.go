package dashboard

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/evaluation"
	"github.com/searchroi/search-roi/internal/pkg/logger"
	"github.com/searchroi/search-roi/internal/results"
)

func seededStore(t *testing.T) results.Store {
	t.Helper()
	store := results.NewMemoryStore()

	record := &results.RunRecord{
		ID:         "20260801-120000",
		StartedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC),
		Methods: []evaluation.MethodResult{
			{MethodName: "Elasticsearch (Keyword)", AvgFaithfulness: 0.6, AvgRelevancy: 0.5, TotalCost: 0.001},
			{MethodName: "Qdrant (Vector)", AvgFaithfulness: 0.9, AvgRelevancy: 0.8, TotalCost: 0.05},
		},
		Skipped: []results.SkippedMethod{
			{MethodName: "Hybrid (Keyword + Vector)", Reason: "Qdrant is unavailable"},
		},
	}
	if err := store.SaveRun(context.Background(), record); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	return store
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DashboardConfig{Host: "127.0.0.1", Port: 0}
	return New(cfg, seededStore(t), logger.New("error", "text"))
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleListRuns(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/runs")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/runs status = %d", rec.Code)
	}

	var summaries []results.Summary
	if err := json.NewDecoder(rec.Body).Decode(&summaries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != "20260801-120000" {
		t.Errorf("summaries = %+v", summaries)
	}
	if summaries[0].NumMethods != 2 || summaries[0].NumSkipped != 1 {
		t.Errorf("summary counts = %+v", summaries[0])
	}
}

func TestHandleGetRun(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/runs/20260801-120000")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET run status = %d", rec.Code)
	}

	var record results.RunRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(record.Methods) != 2 {
		t.Errorf("record has %d methods, want 2", len(record.Methods))
	}
}

func TestHandleGetRun_NotFound(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/runs/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET missing run status = %d, want 404", rec.Code)
	}
}

func TestHandleComparison(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/runs/20260801-120000/comparison")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET comparison status = %d", rec.Code)
	}

	var cmp Comparison
	if err := json.NewDecoder(rec.Body).Decode(&cmp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if len(cmp.Methods) != 2 {
		t.Fatalf("comparison has %d methods, want 2", len(cmp.Methods))
	}
	// Vector is more accurate; keyword wins accuracy per dollar.
	if cmp.BestAccuracy != "Qdrant (Vector)" {
		t.Errorf("BestAccuracy = %s", cmp.BestAccuracy)
	}
	if cmp.BestValue != "Elasticsearch (Keyword)" {
		t.Errorf("BestValue = %s", cmp.BestValue)
	}
	if cmp.CheapestMethod != "Elasticsearch (Keyword)" {
		t.Errorf("CheapestMethod = %s", cmp.CheapestMethod)
	}
	if len(cmp.Skipped) != 1 || cmp.Skipped[0] != "Hybrid (Keyword + Vector)" {
		t.Errorf("Skipped = %v", cmp.Skipped)
	}
}

func TestBuildComparison_AccuracyPerDollar(t *testing.T) {
	record := &results.RunRecord{
		ID: "r",
		Methods: []evaluation.MethodResult{
			{MethodName: "m1", AvgFaithfulness: 0.8, AvgRelevancy: 0.6, TotalCost: 0.01},
			{MethodName: "free", AvgFaithfulness: 0.5, AvgRelevancy: 0.5, TotalCost: 0},
		},
	}

	cmp := BuildComparison(record)

	if math.Abs(cmp.Methods[0].AvgAccuracy-0.7) > 1e-9 {
		t.Errorf("AvgAccuracy = %v, want 0.7", cmp.Methods[0].AvgAccuracy)
	}
	if math.Abs(cmp.Methods[0].AccuracyPerDollar-70) > 1e-9 {
		t.Errorf("AccuracyPerDollar = %v, want 70", cmp.Methods[0].AccuracyPerDollar)
	}
	// Zero-cost methods never divide by zero.
	if cmp.Methods[1].AccuracyPerDollar != 0 {
		t.Errorf("zero-cost AccuracyPerDollar = %v, want 0", cmp.Methods[1].AccuracyPerDollar)
	}
}

func TestHandleHealth(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d", rec.Code)
	}
}
