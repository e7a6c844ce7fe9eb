package converter

import "time"

// PurchaseRedisModel — закупка в том виде, в каком она лежит в кэше.
type PurchaseRedisModel struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SupplierID   string    `json:"supplier_id,omitempty"`
	SupplierName string    `json:"supplier_name"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int64     `json:"quantity"`
	Date         time.Time `json:"date"`
	Voided       bool      `json:"voided"`
}
