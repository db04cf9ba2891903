package receipt

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/model"
	"github.com/y-maeda1116/FlowPrint/internal/task"
)

type recordingSink struct {
	jobs [][]byte
}

func (s *recordingSink) Send(p []byte) error {
	s.jobs = append(s.jobs, p)
	return nil
}

func newPrintFixture() (*Handler, *task.Store, *recordingSink) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC))
	store := task.NewStore(task.Options{Clock: fake})
	sink := &recordingSink{}
	h := NewHandler(store, NewPrinter(sink), Layout{}, fake)
	return h, store, sink
}

func TestPrint_ExplicitIDsSkipMissing(t *testing.T) {
	h, store, sink := newPrintFixture()
	store.Add(model.Task{ID: "a", Title: "a"})
	store.Add(model.Task{ID: "b", Title: "b"})

	body := []byte(`{"taskIds":["a","ghost","b"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/print", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Print(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Printed bool `json:"printed"`
		Tasks   int  `json:"tasks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Printed || out.Tasks != 2 {
		t.Fatalf("expected 2 printed tasks, got %+v", out)
	}
	if len(sink.jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(sink.jobs))
	}
}

func TestPrint_DefaultsToSelectedChildren(t *testing.T) {
	h, store, sink := newPrintFixture()
	a := store.Add(model.Task{ID: "A", Title: "project"})
	aid := a.ID
	store.Add(model.Task{ID: "B", Title: "step one", ParentID: &aid})
	store.Select(&aid)

	req := httptest.NewRequest(http.MethodPost, "/api/print", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.Print(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(sink.jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(sink.jobs))
	}
	text := string(sink.jobs[0])
	if !bytes.Contains(sink.jobs[0], []byte("step one")) {
		t.Fatalf("expected child on the receipt, got %q", text)
	}
	if bytes.Contains(sink.jobs[0], []byte("[ ] project")) {
		t.Fatalf("selected task itself must not be printed, got %q", text)
	}
}

func TestPrint_NoSinkIsBadGateway(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC))
	store := task.NewStore(task.Options{Clock: fake})
	h := NewHandler(store, NewPrinter(nil), Layout{}, fake)

	req := httptest.NewRequest(http.MethodPost, "/api/print", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	h.Print(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
