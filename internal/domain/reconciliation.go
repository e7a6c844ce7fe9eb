package domain

import "time"

type ReconciliationStatus string

const (
	ReconciliationOpen     ReconciliationStatus = "open"
	ReconciliationResolved ReconciliationStatus = "resolved"
)

// Reconciliation — запись о частичном сбое, которую оператор сверяет вручную.
type Reconciliation struct {
	ID         string // uuid
	Operation  string
	PurchaseID string
	ProductID  string
	Completed  string
	Failed     string
	Cause      string
	Status     ReconciliationStatus
	Note       string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
