package converter

import "time"

// MovementStatus — состояние публикации движения в Kafka.
type MovementStatus string

const (
	Pending    MovementStatus = "pending"
	Processing MovementStatus = "processing"
	Processed  MovementStatus = "processed"
)

// MovementModel представляет запись таблицы movements в PostgreSQL.
type MovementModel struct {
	ID                  string         `db:"id"`
	ProductID           string         `db:"product_id"`
	PurchaseID          string         `db:"purchase_id"`
	Kind                string         `db:"kind"`
	Delta               int64          `db:"delta"`
	QtyBefore           int64          `db:"qty_before"`
	QtyAfter            int64          `db:"qty_after"`
	Status              MovementStatus `db:"status"`
	CreatedAt           time.Time      `db:"created_at"`
	ProcessingStartedAt *time.Time     `db:"processing_started_at"`
	PublishedAt         *time.Time     `db:"published_at"`
}

// ReconciliationModel представляет запись таблицы reconciliations в PostgreSQL.
type ReconciliationModel struct {
	ID         string     `db:"id"`
	Operation  string     `db:"operation"`
	PurchaseID string     `db:"purchase_id"`
	ProductID  string     `db:"product_id"`
	Completed  string     `db:"completed"`
	Failed     string     `db:"failed"`
	Cause      string     `db:"cause"`
	Status     string     `db:"status"`
	Note       string     `db:"note"`
	CreatedAt  time.Time  `db:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
}
