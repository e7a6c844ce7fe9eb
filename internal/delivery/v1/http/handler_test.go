package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/infrastructure/metrics"
	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/DRSN-tech/gym-ledger/pkg/paginate"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type fakeLedger struct {
	draft   *usecase.PurchaseDraft
	listReq *usecase.ListReq
	voided  string
	deleted string
	err     error
}

func (f *fakeLedger) RecordPurchase(_ context.Context, d *usecase.PurchaseDraft) (*domain.Purchase, error) {
	f.draft = d
	if f.err != nil {
		return nil, f.err
	}
	p := domain.NewPurchase(d.ProductID, "Creatina", "s1", "Ana", d.UnitPrice, d.Quantity, d.Date)
	p.ID = "c1"
	return p, nil
}

func (f *fakeLedger) AmendPurchase(_ context.Context, id string, d *usecase.PurchaseDraft) (*domain.Purchase, error) {
	f.draft = d
	if f.err != nil {
		return nil, f.err
	}
	p := domain.NewPurchase(d.ProductID, "Creatina", "s1", "Ana", d.UnitPrice, d.Quantity, d.Date)
	p.ID = id
	return p, nil
}

func (f *fakeLedger) VoidPurchase(_ context.Context, id string) (*domain.Purchase, error) {
	f.voided = id
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Purchase{ID: id, UnitPrice: decimal.NewFromInt(5), Quantity: 3, Voided: true}, nil
}

func (f *fakeLedger) DeletePurchase(_ context.Context, id string) error {
	f.deleted = id
	return f.err
}

func (f *fakeLedger) ListPurchases(_ context.Context, req *usecase.ListReq) (*usecase.PurchasePage, error) {
	f.listReq = req
	if f.err != nil {
		return nil, f.err
	}
	items := []domain.Purchase{{ID: "c1", UnitPrice: decimal.RequireFromString("2.5"), Quantity: 4}}
	page := paginate.Slice(items, req.Page, req.PageSize)
	return &page, nil
}

func (f *fakeLedger) ListReconciliations(_ context.Context, status string) ([]domain.Reconciliation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Reconciliation{{ID: "r1", Operation: "LedgerUseCase.VoidPurchase", Status: domain.ReconciliationOpen}}, nil
}

func (f *fakeLedger) ResolveReconciliation(_ context.Context, id, note string) (*domain.Reconciliation, error) {
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now()
	return &domain.Reconciliation{ID: id, Status: domain.ReconciliationResolved, Note: note, ResolvedAt: &now}, nil
}

type fakeCatalog struct {
	usecase.CatalogUC
	supplier *usecase.SupplierInput
	product  *usecase.ProductInput
}

func (f *fakeCatalog) CreateSupplier(_ context.Context, in *usecase.SupplierInput) (*domain.Supplier, error) {
	f.supplier = in
	return &domain.Supplier{ID: "s9", FirstName: in.FirstName, LastName: in.LastName}, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, in *usecase.ProductInput) (*domain.Product, error) {
	f.product = in
	return &domain.Product{ID: "p9", Name: in.Name, Price: in.Price, Kind: in.Kind}, nil
}

type fakeReports struct{}

func (fakeReports) ExportPurchases(context.Context, string) (*usecase.ExportRes, error) {
	return &usecase.ExportRes{FileName: "purchases.xlsx", ContentType: "application/test", Data: []byte("xlsx"), Rows: 1}, nil
}

func (fakeReports) ArchivePurchases(context.Context, string) (*usecase.ArchiveRes, error) {
	return &usecase.ArchiveRes{Bucket: "reports", ObjectKey: "purchases/x.xlsx", Rows: 1}, nil
}

func newTestServer(t *testing.T, ledger *fakeLedger, catalog *fakeCatalog, rate string) *httptest.Server {
	t.Helper()

	mux := chi.NewRouter()
	if err := NewRouter(mux, logger.NewNopLogger(), metrics.New()).Init(rate, ledger, catalog, fakeReports{}); err != nil {
		t.Fatalf("init router: %v", err)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRecordPurchase(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newTestServer(t, ledger, &fakeCatalog{}, "100-M")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/purchases",
		`{"product_id":"P1","supplier_name":"Ana","unit_price":"5","quantity":3,"date":"2024-03-15"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	if body["total"] != "15.00" || body["unit_price"] != "5.00" || body["date"] != "2024-03-15" {
		t.Fatalf("unexpected body %v", body)
	}
	if ledger.draft.SupplierName != "Ana" || !ledger.draft.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected draft %+v", ledger.draft)
	}
}

func TestRecordPurchase_NumericPriceAndRFC3339Date(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newTestServer(t, ledger, &fakeCatalog{}, "100-M")

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/v1/purchases",
		`{"product_id":"P1","supplier_id":"s1","unit_price":12.75,"quantity":1,"date":"2024-03-15T18:30:00-05:00"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !ledger.draft.UnitPrice.Equal(decimal.RequireFromString("12.75")) {
		t.Fatalf("price = %s", ledger.draft.UnitPrice)
	}
	if ledger.draft.Date.Format(time.DateOnly) != "2024-03-15" {
		t.Fatalf("date = %v", ledger.draft.Date)
	}
}

func TestRecordPurchase_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{name: "bad date", body: `{"product_id":"P1","unit_price":"5","quantity":1,"date":"15/03/2024"}`, fields: []string{"date"}},
		{name: "bad price", body: `{"product_id":"P1","unit_price":"cinco","quantity":1,"date":"2024-03-15"}`, fields: []string{"unit_price"}},
		{name: "both", body: `{"unit_price":true,"date":"ayer"}`, fields: []string{"unit_price", "date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{}
			srv := newTestServer(t, ledger, &fakeCatalog{}, "100-M")

			resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/purchases", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			fields, _ := body["fields"].(map[string]any)
			for _, f := range tt.fields {
				if _, ok := fields[f]; !ok {
					t.Errorf("field %s missing in %v", f, body)
				}
			}
			if ledger.draft != nil {
				t.Fatal("usecase must not be called")
			}
		})
	}
}

func TestRecordPurchase_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{}, &fakeCatalog{}, "100-M")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/purchases", `{"product_id":`)
	if resp.StatusCode != http.StatusBadRequest || body["message"] != e.ErrInvalidJSON.Error() {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
}

func TestPurchaseRoutes(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newTestServer(t, ledger, &fakeCatalog{}, "100-M")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/purchases/c7/void", "")
	if resp.StatusCode != http.StatusOK || ledger.voided != "c7" || body["voided"] != true || body["total"] != "15.00" {
		t.Fatalf("void: %d %v", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/v1/purchases/c8", "")
	if resp.StatusCode != http.StatusNoContent || ledger.deleted != "c8" {
		t.Fatalf("delete: %d", resp.StatusCode)
	}

	resp, body = do(t, http.MethodPut, srv.URL+"/api/v1/purchases/c9",
		`{"product_id":"P1","supplier_id":"s1","unit_price":"5","quantity":7,"date":"2024-03-15"}`)
	if resp.StatusCode != http.StatusOK || body["id"] != "c9" || body["total"] != "35.00" {
		t.Fatalf("amend: %d %v", resp.StatusCode, body)
	}
}

func TestListPurchases(t *testing.T) {
	ledger := &fakeLedger{}
	srv := newTestServer(t, ledger, &fakeCatalog{}, "100-M")

	resp, body := do(t, http.MethodGet, srv.URL+"/api/v1/purchases?q=crea&page=1&page_size=5", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ledger.listReq.Query != "crea" || ledger.listReq.PageSize != 5 {
		t.Fatalf("unexpected request %+v", ledger.listReq)
	}
	if body["total"] != float64(1) || body["total_pages"] != float64(1) {
		t.Fatalf("unexpected page %v", body)
	}

	// значения по умолчанию
	do(t, http.MethodGet, srv.URL+"/api/v1/purchases", "")
	if ledger.listReq.Page != 1 || ledger.listReq.PageSize != defaultPageSize {
		t.Fatalf("defaults = %+v", ledger.listReq)
	}

	resp, body = do(t, http.MethodGet, srv.URL+"/api/v1/purchases?page=abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", e.NewValidationError("quantity", "must be greater than 0"), http.StatusBadRequest},
		{"not found", fmt.Errorf("op: %w", e.ErrNotFound), http.StatusNotFound},
		{"remote 404", &e.RemoteError{Status: 404}, http.StatusNotFound},
		{"voided", e.Wrap("op", e.ErrVoidedRecord), http.StatusConflict},
		{"conflict", e.Wrap("op", e.ErrConflict), http.StatusConflict},
		{"network", e.Wrap("op", e.ErrNetwork), http.StatusBadGateway},
		{"remote", &e.RemoteError{Status: 503}, http.StatusBadGateway},
		{"partial", &e.PartialFailureError{Op: "void", ReconciliationID: "r1", Cause: e.ErrNetwork}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{err: tt.err}
			srv := newTestServer(t, ledger, &fakeCatalog{}, "100-M")

			resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/purchases/c1/void", "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%v)", resp.StatusCode, tt.status, body)
			}
			if body["code"] != float64(tt.status) {
				t.Fatalf("code = %v", body["code"])
			}
		})
	}
}

func TestPartialFailureCarriesReconciliationID(t *testing.T) {
	res := ToHTTPResponse(e.Wrap("LedgerUseCase.DeletePurchase", &e.PartialFailureError{
		Op: "LedgerUseCase.DeletePurchase", ReconciliationID: "rec-42", Cause: e.ErrNetwork,
	}))
	if res.Code != http.StatusInternalServerError || res.ReconciliationID != "rec-42" {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestReconciliationRoutes(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{}, &fakeCatalog{}, "100-M")

	resp, err := http.Get(srv.URL + "/api/v1/reconciliations?status=open")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || len(list) != 1 || list[0]["status"] != "open" {
		t.Fatalf("list: %d %v", resp.StatusCode, list)
	}

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/reconciliations/r1/resolve", `{"note":"stock fixed by hand"}`)
	if resp.StatusCode != http.StatusOK || body["status"] != "resolved" || body["note"] != "stock fixed by hand" {
		t.Fatalf("resolve: %d %v", resp.StatusCode, body)
	}
}

func TestCatalogRoutes(t *testing.T) {
	catalog := &fakeCatalog{}
	srv := newTestServer(t, &fakeLedger{}, catalog, "100-M")

	resp, body := do(t, http.MethodPost, srv.URL+"/api/v1/suppliers",
		`{"first_name":"Ana","last_name":"Ruiz","email":"ana@example.com","phone":"3001234567","address":"Cra 1"}`)
	if resp.StatusCode != http.StatusCreated || body["id"] != "s9" || catalog.supplier.Phone != "3001234567" {
		t.Fatalf("create supplier: %d %v", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, srv.URL+"/api/v1/products",
		`{"name":"Creatina","description":"300g","price":"45.9","quantity":12,"kind":"Producto"}`)
	if resp.StatusCode != http.StatusCreated || body["price"] != "45.90" || catalog.product.Kind != domain.ProductKindProduct {
		t.Fatalf("create product: %d %v", resp.StatusCode, body)
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{}, &fakeCatalog{}, "100-M")

	resp, err := http.Get(srv.URL + "/api/v1/purchases/export?q=ana")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/test" {
		t.Fatalf("status = %d, content type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="purchases.xlsx"` {
		t.Fatalf("content disposition = %q", cd)
	}

	resp2, body := do(t, http.MethodPost, srv.URL+"/api/v1/purchases/archive", "")
	if resp2.StatusCode != http.StatusCreated || body["object_key"] != "purchases/x.xlsx" {
		t.Fatalf("archive: %d %v", resp2.StatusCode, body)
	}
}

func TestRateLimitAndHealth(t *testing.T) {
	srv := newTestServer(t, &fakeLedger{}, &fakeCatalog{}, "2-M")

	for i := range 2 {
		if resp, _ := do(t, http.MethodGet, srv.URL+"/api/v1/purchases", ""); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status %d", i, resp.StatusCode)
		}
	}
	if resp, _ := do(t, http.MethodGet, srv.URL+"/api/v1/purchases", ""); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}

	// health не ограничивается
	resp, err := http.Get(srv.URL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %v %v", resp, err)
	}
	resp.Body.Close()
}

func TestRouterRejectsBadRate(t *testing.T) {
	err := NewRouter(chi.NewRouter(), logger.NewNopLogger(), metrics.New()).Init("lots", &fakeLedger{}, &fakeCatalog{}, fakeReports{})
	if err == nil {
		t.Fatal("expected error for malformed rate")
	}
}
