package converter

import "github.com/DRSN-tech/gym-ledger/internal/domain"

// MovementConverter преобразует движения между domain и моделью PostgreSQL.
type MovementConverter interface {
	ToModel(entity *domain.Movement) *MovementModel
	ToEntity(model *MovementModel) *domain.Movement
	ToArrEntity(models []MovementModel) []domain.Movement
}

type ReconciliationConverter interface {
	ToModel(entity *domain.Reconciliation) *ReconciliationModel
	ToEntity(model *ReconciliationModel) *domain.Reconciliation
	ToArrEntity(models []ReconciliationModel) []domain.Reconciliation
}

type movementConverter struct{}

func NewMovementConverter() MovementConverter {
	return movementConverter{}
}

// ToModel всегда ставит движение в очередь на публикацию.
func (movementConverter) ToModel(entity *domain.Movement) *MovementModel {
	return &MovementModel{
		ID:         entity.ID,
		ProductID:  entity.ProductID,
		PurchaseID: entity.PurchaseID,
		Kind:       string(entity.Kind),
		Delta:      entity.Delta,
		QtyBefore:  entity.QtyBefore,
		QtyAfter:   entity.QtyAfter,
		Status:     Pending,
		CreatedAt:  entity.CreatedAt,
	}
}

func (movementConverter) ToEntity(model *MovementModel) *domain.Movement {
	return &domain.Movement{
		ID:          model.ID,
		ProductID:   model.ProductID,
		PurchaseID:  model.PurchaseID,
		Kind:        domain.MovementKind(model.Kind),
		Delta:       model.Delta,
		QtyBefore:   model.QtyBefore,
		QtyAfter:    model.QtyAfter,
		CreatedAt:   model.CreatedAt,
		PublishedAt: model.PublishedAt,
	}
}

func (c movementConverter) ToArrEntity(models []MovementModel) []domain.Movement {
	entities := make([]domain.Movement, 0, len(models))
	for i := range models {
		entities = append(entities, *c.ToEntity(&models[i]))
	}
	return entities
}

type reconciliationConverter struct{}

func NewReconciliationConverter() ReconciliationConverter {
	return reconciliationConverter{}
}

func (reconciliationConverter) ToModel(entity *domain.Reconciliation) *ReconciliationModel {
	return &ReconciliationModel{
		ID:         entity.ID,
		Operation:  entity.Operation,
		PurchaseID: entity.PurchaseID,
		ProductID:  entity.ProductID,
		Completed:  entity.Completed,
		Failed:     entity.Failed,
		Cause:      entity.Cause,
		Status:     string(entity.Status),
		Note:       entity.Note,
		CreatedAt:  entity.CreatedAt,
		ResolvedAt: entity.ResolvedAt,
	}
}

func (reconciliationConverter) ToEntity(model *ReconciliationModel) *domain.Reconciliation {
	return &domain.Reconciliation{
		ID:         model.ID,
		Operation:  model.Operation,
		PurchaseID: model.PurchaseID,
		ProductID:  model.ProductID,
		Completed:  model.Completed,
		Failed:     model.Failed,
		Cause:      model.Cause,
		Status:     domain.ReconciliationStatus(model.Status),
		Note:       model.Note,
		CreatedAt:  model.CreatedAt,
		ResolvedAt: model.ResolvedAt,
	}
}

func (c reconciliationConverter) ToArrEntity(models []ReconciliationModel) []domain.Reconciliation {
	entities := make([]domain.Reconciliation, 0, len(models))
	for i := range models {
		entities = append(entities, *c.ToEntity(&models[i]))
	}
	return entities
}
