package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/paginate"
)

const moneyPlaces = 2

type purchaseReq struct {
	ProductID    string          `json:"product_id"`
	SupplierID   string          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	UnitPrice    json.RawMessage `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
	Date         string          `json:"date"`
}

func (p *purchaseReq) toDraft() (*usecase.PurchaseDraft, error) {
	verr := &e.ValidationError{}

	price, err := parsePrice(p.UnitPrice)
	if err != nil {
		verr.Add("unit_price", err.Error())
	}
	date, err := parseDate(p.Date)
	if err != nil {
		verr.Add("date", err.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &usecase.PurchaseDraft{
		ProductID:    p.ProductID,
		SupplierID:   p.SupplierID,
		SupplierName: p.SupplierName,
		UnitPrice:    price,
		Quantity:     p.Quantity,
		Date:         date,
	}, nil
}

type productReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Quantity    int64           `json:"quantity"`
	Kind        string          `json:"kind"`
}

func (p *productReq) toInput() (*usecase.ProductInput, error) {
	price, err := parsePrice(p.Price)
	if err != nil {
		return nil, e.NewValidationError("price", err.Error())
	}

	return &usecase.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Quantity:    p.Quantity,
		Kind:        domain.ProductKind(p.Kind),
	}, nil
}

type resolveReq struct {
	Note string `json:"note"`
}

type pageRes[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

func toPageRes[E, T any](page *paginate.Page[E], conv func(*E) T) pageRes[T] {
	items := make([]T, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, conv(&page.Items[i]))
	}
	return pageRes[T]{
		Items:      items,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}
}

type purchaseRes struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	SupplierID   string `json:"supplier_id,omitempty"`
	SupplierName string `json:"supplier_name"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int64  `json:"quantity"`
	Total        string `json:"total"`
	Date         string `json:"date"`
	Voided       bool   `json:"voided"`
}

func toPurchaseRes(p *domain.Purchase) purchaseRes {
	return purchaseRes{
		ID:           p.ID,
		ProductID:    p.ProductID,
		ProductName:  p.ProductName,
		SupplierID:   p.SupplierID,
		SupplierName: p.SupplierName,
		UnitPrice:    p.UnitPrice.StringFixed(moneyPlaces),
		Quantity:     p.Quantity,
		Total:        p.Total().StringFixed(moneyPlaces),
		Date:         p.Date.Format(time.DateOnly),
		Voided:       p.Voided,
	}
}

type productRes struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	Kind        string `json:"kind"`
}

func toProductRes(p *domain.Product) productRes {
	return productRes{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(moneyPlaces),
		Quantity:    p.Quantity,
		Kind:        string(p.Kind),
	}
}

type supplierRes struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func toSupplierRes(s *domain.Supplier) supplierRes {
	return supplierRes{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
	}
}

type clientRes struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func toClientRes(c *domain.Client) clientRes {
	return clientRes{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

type reconciliationRes struct {
	ID         string     `json:"id"`
	Operation  string     `json:"operation"`
	PurchaseID string     `json:"purchase_id"`
	ProductID  string     `json:"product_id"`
	Completed  string     `json:"completed"`
	Failed     string     `json:"failed"`
	Cause      string     `json:"cause"`
	Status     string     `json:"status"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func toReconciliationRes(r *domain.Reconciliation) reconciliationRes {
	return reconciliationRes{
		ID:         r.ID,
		Operation:  r.Operation,
		PurchaseID: r.PurchaseID,
		ProductID:  r.ProductID,
		Completed:  r.Completed,
		Failed:     r.Failed,
		Cause:      r.Cause,
		Status:     string(r.Status),
		Note:       r.Note,
		CreatedAt:  r.CreatedAt,
		ResolvedAt: r.ResolvedAt,
	}
}

type archiveRes struct {
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
	Rows      int    `json:"rows"`
}
