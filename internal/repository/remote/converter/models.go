package converter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Коллекции удалённого хранилища.
const (
	ProductsCollection  = "productos"
	PurchasesCollection = "compras"
	SuppliersCollection = "proveedores"
	ClientsCollection   = "clientes"
)

// ProductModel — документ коллекции productos.
type ProductModel struct {
	ID          string `json:"_id,omitempty"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Precio      Amount `json:"precio"`
	Cantidad    Count  `json:"cantidad"`
	Tipo        string `json:"tipo"`
}

// ProductPatchModel — правка карточки товара. Поля cantidad здесь нет намеренно.
type ProductPatchModel struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Precio      Amount `json:"precio"`
	Tipo        string `json:"tipo"`
}

// QuantityPatchModel меняет только остаток товара.
type QuantityPatchModel struct {
	Cantidad Count `json:"cantidad"`
}

// PurchaseModel — документ коллекции compras.
type PurchaseModel struct {
	ID          string `json:"_id,omitempty"`
	Producto    string `json:"producto"`
	ProductoID  string `json:"productoId"`
	Precio      Amount `json:"precio"`
	Cantidad    Count  `json:"cantidad"`
	Proveedor   string `json:"proveedor"`
	ProveedorID string `json:"proveedorId,omitempty"`
	Fecha       Date   `json:"fecha"`
	Total       Amount `json:"total"`
	Anulado     bool   `json:"anulado"`
}

// SupplierModel — документ коллекции proveedores.
type SupplierModel struct {
	ID        string `json:"_id,omitempty"`
	Nombre    string `json:"nombre"`
	Apellido  string `json:"apellido"`
	Correo    string `json:"correo"`
	Telefono  string `json:"telefono"`
	Direccion string `json:"direccion"`
}

// ClientModel — документ коллекции clientes.
type ClientModel struct {
	ID       string `json:"_id,omitempty"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Correo   string `json:"correo"`
	Telefono string `json:"telefono"`
}

// Amount — деньги. Пишется числом JSON, читается и из числа, и из строки.
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if isEmptyJSON(data) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(data)
}

// Count — количество. Старые документы хранят его строкой.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	if isEmptyJSON(data) {
		*c = 0
		return nil
	}

	raw := string(bytes.Trim(data, `"`))
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, fErr := strconv.ParseFloat(raw, 64)
		if fErr != nil || f != float64(int64(f)) {
			return fmt.Errorf("invalid quantity %s", data)
		}
		n = int64(f)
	}
	*c = Count(n)
	return nil
}

// Date — дата закупки. Хранилище отдаёт ISO-8601, иногда без времени.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if isEmptyJSON(data) {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func isEmptyJSON(data []byte) bool {
	s := string(data)
	return s == "null" || s == `""`
}
