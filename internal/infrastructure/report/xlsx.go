package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Purchases"
	moneyFmt  = 2 // встроенный формат "0.00"
)

var header = []any{"product", "quantity", "unit_price", "total", "supplier", "date", "voided"}

// XLSXRenderer собирает выгрузку закупок в один лист.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (XLSXRenderer) RenderPurchases(purchases []domain.Purchase) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for i, p := range purchases {
		row := []any{
			p.ProductName,
			p.Quantity,
			p.UnitPrice.InexactFloat64(),
			p.Total().InexactFloat64(),
			p.SupplierName,
			p.Date.Format(time.DateOnly),
			yesNo(p.Voided),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("%s: purchase %s: %w", whereami.WhereAmI(), p.ID, err)
		}
	}

	if len(purchases) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: moneyFmt})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		last := fmt.Sprintf("D%d", len(purchases)+1)
		if err := f.SetCellStyle(SheetName, "C2", last, style); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
