package domain

import "time"

// MovementKind — причина изменения остатка
type MovementKind string

const (
	MovementRecord     MovementKind = "record"
	MovementAmend      MovementKind = "amend"
	MovementVoid       MovementKind = "void"
	MovementDelete     MovementKind = "delete"
	MovementCompensate MovementKind = "compensate"
)

// Movement — одно применённое изменение остатка товара.
type Movement struct {
	ID          string // uuid
	ProductID   string
	PurchaseID  string
	Kind        MovementKind
	Delta       int64
	QtyBefore   int64
	QtyAfter    int64
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func NewMovement(id, productID, purchaseID string, kind MovementKind, before, after int64, at time.Time) *Movement {
	return &Movement{
		ID:         id,
		ProductID:  productID,
		PurchaseID: purchaseID,
		Kind:       kind,
		Delta:      after - before,
		QtyBefore:  before,
		QtyAfter:   after,
		CreatedAt:  at,
	}
}
