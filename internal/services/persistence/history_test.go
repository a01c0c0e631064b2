package persistence

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseHistoryDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/data/history", nil)
	p, err := parseHistory(r)
	if err != nil {
		t.Fatalf("parseHistory: %v", err)
	}
	if p.Kind != "ph" || p.Minutes != 60 || p.Limit != 100 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestParseHistoryClampsRanges(t *testing.T) {
	r := httptest.NewRequest("GET", "/data/history?kind=ec&minutes=0&limit=9999", nil)
	p, err := parseHistory(r)
	if err != nil {
		t.Fatalf("parseHistory: %v", err)
	}
	if p.Kind != "ec" {
		t.Errorf("expected kind ec, got %s", p.Kind)
	}
	if p.Minutes != 1 {
		t.Errorf("minutes must clamp to 1, got %d", p.Minutes)
	}
	if p.Limit != 500 {
		t.Errorf("limit must clamp to 500, got %d", p.Limit)
	}
}

func TestParseHistoryRejectsUnknownKind(t *testing.T) {
	r := httptest.NewRequest("GET", "/data/history?kind=co2", nil)
	if _, err := parseHistory(r); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestBuildFluxQuery(t *testing.T) {
	q := buildFlux("pfal_sensors", "temperature", 120, 50)
	for _, want := range []string{
		`from(bucket: "pfal_sensors")`,
		`range(start: -120m)`,
		`r._measurement == "temperature"`,
		`r._field == "value"`,
		`limit(n:50)`,
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}
