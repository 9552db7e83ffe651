package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"guardian-angel-api/internal/logs"

	"github.com/gin-gonic/gin"
)

type mockInsightService struct {
	insight   *InsightResult
	havens    *HavenResult
	err       error
	gotLoc    string
	gotLatLng [2]float64
}

func (m *mockInsightService) GetSafetyInsights(_ context.Context, location string) (*InsightResult, error) {
	m.gotLoc = location
	return m.insight, m.err
}

func (m *mockInsightService) FindSafeHavens(_ context.Context, lat, lng float64) (*HavenResult, error) {
	m.gotLatLng = [2]float64{lat, lng}
	return m.havens, m.err
}

type recordingLogger struct {
	entries []logs.SystemLog
}

func (r *recordingLogger) Log(log logs.SystemLog, _ interface{}) error {
	r.entries = append(r.entries, log)
	return nil
}

func setupInsightRouter(svc InsightServiceAPI, lg logs.LogServiceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc, lg)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestInsightController_GetInsights_Success(t *testing.T) {
	svc := &mockInsightService{insight: &InsightResult{Text: "tips"}}
	w := get(setupInsightRouter(svc, &recordingLogger{}), "/api/insights?location=Oslo")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.gotLoc != "Oslo" {
		t.Fatalf("location=%q", svc.gotLoc)
	}
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["text"] != "tips" || resp["degraded"] != false {
		t.Fatalf("resp=%v", resp)
	}
}

func TestInsightController_GetInsights_DegradesOnError(t *testing.T) {
	svc := &mockInsightService{err: &RemoteServiceError{Op: "safety insights", Err: errors.New("down")}}
	lg := &recordingLogger{}
	w := get(setupInsightRouter(svc, lg), "/api/insights")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["text"] != FallbackInsightText || resp["degraded"] != true {
		t.Fatalf("resp=%v", resp)
	}
	if len(lg.entries) != 1 || lg.entries[0].Level != logs.LevelWarn || lg.entries[0].Action != "insights" {
		t.Fatalf("expected one warn entry, got %#v", lg.entries)
	}
}

func TestInsightController_GetHavens_Success(t *testing.T) {
	svc := &mockInsightService{havens: &HavenResult{Text: "go here", Links: []GroundingLink{{URI: "http://a", Title: "A"}}}}
	w := get(setupInsightRouter(svc, nil), "/api/havens?lat=51.5&lng=-0.12")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.gotLatLng != [2]float64{51.5, -0.12} {
		t.Fatalf("latlng=%v", svc.gotLatLng)
	}
	var resp struct {
		Links []GroundingLink `json:"links"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Links) != 1 || resp.Links[0].URI != "http://a" {
		t.Fatalf("links=%#v", resp.Links)
	}
}

func TestInsightController_GetHavens_InvalidCoordinates(t *testing.T) {
	r := setupInsightRouter(&mockInsightService{}, nil)
	for _, path := range []string{"/api/havens", "/api/havens?lat=abc&lng=1", "/api/havens?lat=91&lng=0", "/api/havens?lat=0&lng=181"} {
		if w := get(r, path); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestInsightController_GetHavens_DegradesOnError(t *testing.T) {
	svc := &mockInsightService{err: errors.New("down")}
	lg := &recordingLogger{}
	w := get(setupInsightRouter(svc, lg), "/api/havens?lat=1&lng=2")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["degraded"] != true {
		t.Fatalf("resp=%v", resp)
	}
	if links, ok := resp["links"].([]interface{}); !ok || len(links) != 0 {
		t.Fatalf("links=%v", resp["links"])
	}
	if len(lg.entries) != 1 || lg.entries[0].Service != "insight" {
		t.Fatalf("entries=%#v", lg.entries)
	}
}
