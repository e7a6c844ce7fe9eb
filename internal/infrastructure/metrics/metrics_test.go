package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/go-chi/chi/v5"
)

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ObserveOperation("LedgerUseCase.RecordPurchase", nil)
	m.ObserveOperation("LedgerUseCase.RecordPurchase", fmt.Errorf("op: %w", e.ErrNotFound))
	m.ObserveOperation("LedgerUseCase.VoidPurchase", errors.New("boom"))
	m.IncPartialFailure("LedgerUseCase.VoidPurchase")
	m.ObserveRemote(http.MethodPut, "productos", 0, 50*time.Millisecond)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/purchases/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Handle("/metrics", m.Handler())

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/purchases/abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`gym_ledger_ledger_operations_total{op="LedgerUseCase.RecordPurchase",outcome="ok"} 1`,
		`gym_ledger_ledger_operations_total{op="LedgerUseCase.RecordPurchase",outcome="not_found"} 1`,
		`gym_ledger_ledger_operations_total{op="LedgerUseCase.VoidPurchase",outcome="error"} 1`,
		`gym_ledger_ledger_partial_failures_total{op="LedgerUseCase.VoidPurchase"} 1`,
		`gym_ledger_remote_store_request_duration_seconds_count{collection="productos",method="PUT",status="0"} 1`,
		`gym_ledger_http_requests_total{method="GET",route="/purchases/{id}",status="418"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output lacks %s", want)
		}
	}
}
