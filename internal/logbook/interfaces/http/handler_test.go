package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logbook "aura-panel/internal/logbook/domain"
	logbookmemory "aura-panel/internal/logbook/infrastructure/memory"
)

func newTestHandler(t *testing.T) (*Handler, *logbookmemory.Repository) {
	t.Helper()
	repo := logbookmemory.NewRepository()
	handler, err := NewHandler(repo)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, repo
}

func TestCreateLogRecord(t *testing.T) {
	handler, repo := newTestHandler(t)

	body := `{"level":"warning","source":"dashboard","category":"fire","message":"Manual fire alert"}`
	req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.Code)
	}
	var created logbook.Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == 0 || created.Level != "warning" || created.Message != "Manual fire alert" {
		t.Fatalf("created = %+v", created)
	}

	records, err := repo.ListRecent(req.Context(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}
}

func TestCreateLogRecordDefaultsLevel(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(`{"message":"plain"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.Code)
	}
	var created logbook.Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Level != logbook.LevelInfo {
		t.Fatalf("level = %s, want info", created.Level)
	}
}

func TestCreateLogRecordRequiresMessage(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(`{"level":"info"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestListLogsClampsLimit(t *testing.T) {
	handler, repo := newTestHandler(t)
	for i := 0; i < 5; i++ {
		record := logbook.Record{Message: "entry"}
		if err := repo.Append(httptest.NewRequest(http.MethodGet, "/", nil).Context(), &record); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cases := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"?limit=2", 2},
		{"?limit=0", 1},
		{"?limit=-3", 1},
		{"?limit=bogus", 5},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/logs"+tc.query, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.query, resp.Code)
		}
		var records []logbook.Record
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			t.Fatalf("%s: decode: %v", tc.query, err)
		}
		if len(records) != tc.want {
			t.Fatalf("%s: got %d records, want %d", tc.query, len(records), tc.want)
		}
	}
}

func TestListLogsMostRecentFirst(t *testing.T) {
	handler, repo := newTestHandler(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	for _, msg := range []string{"first", "second", "third"} {
		record := logbook.Record{Message: msg}
		if err := repo.Append(ctx, &record); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	var records []logbook.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 3 || records[0].Message != "third" {
		t.Fatalf("records = %+v, want most recent first", records)
	}
}

func TestExportCSV(t *testing.T) {
	handler, repo := newTestHandler(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	record := logbook.Record{
		Level:    "warning",
		Source:   "watchdog",
		Category: "fire",
		Message:  `flame, with "quotes"`,
	}
	if err := repo.Append(ctx, &record); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/logs/export?format=csv", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("content type = %s", got)
	}
	body := resp.Body.String()
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d:\n%s", len(lines), body)
	}
	if strings.TrimSpace(lines[0]) != "id,timestamp,level,source,category,message" {
		t.Fatalf("header = %q", lines[0])
	}
	// encoding/csv escapes embedded quotes by doubling them.
	if !strings.Contains(lines[1], `""quotes""`) {
		t.Fatalf("row = %q, want doubled quotes", lines[1])
	}
}

func TestExportXLSX(t *testing.T) {
	handler, repo := newTestHandler(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	record := logbook.Record{Message: "entry"}
	if err := repo.Append(ctx, &record); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/logs/export?format=xlsx", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("content type = %s", got)
	}
	if resp.Body.Len() == 0 {
		t.Fatal("empty workbook payload")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/logs/export?format=pdf", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

func TestLogsMethodNotAllowed(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/logs", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.Code)
	}
}
