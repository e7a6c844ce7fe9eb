package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/repository/remote/converter"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/remotestore"
	"github.com/shopspring/decimal"
)

// fakeStore: REST-хранилище в памяти с семантикой коллекций productos/compras/...
type fakeStore struct {
	mu     sync.Mutex
	docs   map[string][]map[string]any
	seq    int
	bodies []string
	failOn map[string]int
}

func newFakeStore(t *testing.T) (*fakeStore, *remotestore.Client) {
	t.Helper()

	s := &fakeStore{docs: make(map[string][]map[string]any), failOn: make(map[string]int)}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	return s, remotestore.NewClient(srv.URL, time.Second)
}

func (s *fakeStore) seed(collection string, doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[collection] = append(s.docs[collection], doc)
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	collection := parts[0]
	id := ""
	if len(parts) > 1 {
		id = parts[1]
	}

	body, _ := io.ReadAll(r.Body)
	if len(body) > 0 {
		s.bodies = append(s.bodies, string(body))
	}

	if status, ok := s.failOn[r.Method+" "+collection]; ok {
		http.Error(w, "boom", status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(s.docs[collection])
	case http.MethodPost:
		var doc map[string]any
		_ = json.Unmarshal(body, &doc)
		s.seq++
		doc["_id"] = fmt.Sprintf("%s-%d", collection, s.seq)
		s.docs[collection] = append(s.docs[collection], doc)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(doc)
	case http.MethodPut:
		var patch map[string]any
		_ = json.Unmarshal(body, &patch)
		for _, doc := range s.docs[collection] {
			if doc["_id"] == id {
				for k, v := range patch {
					doc[k] = v
				}
				_ = json.NewEncoder(w).Encode(doc)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	case http.MethodDelete:
		docs := s.docs[collection]
		for i, doc := range docs {
			if doc["_id"] == id {
				s.docs[collection] = append(docs[:i], docs[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func TestProductRepo(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewProductRepo(client, converter.NewProductConverter())
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.NewProduct("Creatina", "300g", decimal.RequireFromString("45.9"), 12, domain.ProductKindProduct))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Quantity != 12 || !created.Price.Equal(decimal.RequireFromString("45.9")) {
		t.Fatalf("unexpected product %+v", created)
	}

	created.Name = "Creatina Monohidrato"
	created.Quantity = 999
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	lastBody := store.bodies[len(store.bodies)-1]
	if strings.Contains(lastBody, "cantidad") {
		t.Fatalf("product update must not send cantidad: %s", lastBody)
	}

	if err := repo.SetQuantity(ctx, created.ID, 15); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if lastBody := store.bodies[len(store.bodies)-1]; lastBody != `{"cantidad":15}` {
		t.Fatalf("quantity patch = %s", lastBody)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Creatina Monohidrato" || got.Quantity != 15 {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductRepo_LegacyDocuments(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewProductRepo(client, converter.NewProductConverter())

	store.seed(converter.ProductsCollection, map[string]any{
		"_id": "p1", "nombre": "Guantes", "precio": "12.5", "cantidad": "4",
	})

	products, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products", len(products))
	}
	p := products[0]
	if p.Quantity != 4 || !p.Price.Equal(decimal.RequireFromString("12.5")) || p.Kind != domain.ProductKindProduct {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestPurchaseRepo(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewPurchaseRepo(client, converter.NewPurchaseConverter())
	ctx := context.Background()

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, domain.NewPurchase("p1", "Creatina", "s1", "Ana", decimal.RequireFromString("5"), 3, date))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(store.bodies[0], `"total":15`) || !strings.Contains(store.bodies[0], `"fecha":"2024-03-15T00:00:00Z"`) {
		t.Fatalf("unexpected create body %s", store.bodies[0])
	}

	created.Quantity = 7
	created.Void()
	if err := repo.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	if strings.Contains(store.bodies[1], `"_id"`) {
		t.Fatalf("update must not send _id: %s", store.bodies[1])
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Voided || got.Quantity != 7 || !got.Total().Equal(decimal.NewFromInt(35)) || !got.Date.Equal(date) {
		t.Fatalf("unexpected purchase %+v", got)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPurchaseRepo_DateOnlyDocument(t *testing.T) {
	store, client := newFakeStore(t)
	repo := NewPurchaseRepo(client, converter.NewPurchaseConverter())

	store.seed(converter.PurchasesCollection, map[string]any{
		"_id": "c1", "producto": "Toalla", "productoId": "p9", "precio": 3, "cantidad": 2,
		"proveedor": "Luis", "fecha": "2023-12-01", "total": 6, "anulado": false,
	})

	purchases, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(purchases) != 1 || purchases[0].Date.Format(time.DateOnly) != "2023-12-01" {
		t.Fatalf("unexpected purchases %+v", purchases)
	}
}

func TestRepo_RemoteFailure(t *testing.T) {
	store, client := newFakeStore(t)
	store.failOn["DELETE compras"] = http.StatusInternalServerError
	store.failOn["GET proveedores"] = http.StatusBadGateway

	purchases := NewPurchaseRepo(client, converter.NewPurchaseConverter())
	if err := purchases.Delete(context.Background(), "c1"); !errors.Is(err, e.ErrRemote) || errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected remote error, got %v", err)
	}

	suppliers := NewSupplierRepo(client, converter.NewSupplierConverter())
	if _, err := suppliers.List(context.Background()); !errors.Is(err, e.ErrRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestSupplierAndClientRepo(t *testing.T) {
	store, client := newFakeStore(t)
	ctx := context.Background()

	suppliers := NewSupplierRepo(client, converter.NewSupplierConverter())
	s, err := suppliers.Create(ctx, &domain.Supplier{FirstName: "Ana", LastName: "Ruiz", Email: "ana@example.com", Phone: "3001234567", Address: "Cra 1"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	if !strings.Contains(store.bodies[0], `"direccion":"Cra 1"`) {
		t.Fatalf("unexpected body %s", store.bodies[0])
	}
	s.Address = "Calle 10"
	if err := suppliers.Update(ctx, s); err != nil {
		t.Fatalf("update supplier: %v", err)
	}
	list, err := suppliers.List(ctx)
	if err != nil || len(list) != 1 || list[0].Address != "Calle 10" {
		t.Fatalf("list = %+v, %v", list, err)
	}

	clients := NewClientRepo(client, converter.NewClientConverter())
	c, err := clients.Create(ctx, &domain.Client{FirstName: "Juan", LastName: "Gómez", Email: "juan@example.com", Phone: "3110000000"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := clients.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete client: %v", err)
	}
	if err := clients.Delete(ctx, c.ID); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
