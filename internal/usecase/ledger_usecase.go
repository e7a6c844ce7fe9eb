package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/DRSN-tech/gym-ledger/pkg/paginate"
	"github.com/google/uuid"
)

// errUnknownOutcome помечает запись, ответ на которую потерян, а перечитать результат не удалось.
var errUnknownOutcome = errors.New("write outcome unknown")

const (
	productLockPrefix = "ledger:product:"
	// Время на компенсацию и запись в журнал, даже если запрос клиента уже отменён.
	detachedTimeout = 10 * time.Second
)

// LedgerUseCase ведёт учёт закупок и держит остатки товаров согласованными с ними.
// Каждая операция пишет в удалённое хранилище две записи: закупку и остаток товара.
// Если вторая запись не удалась, первая откатывается. Если не удался и откат,
// операция возвращает e.PartialFailureError и заводит запись для ручной сверки.
type LedgerUseCase struct {
	productRepo  ProductRepository
	purchaseRepo PurchaseRepository
	supplierRepo SupplierRepository
	cacheRepo    PurchaseCacheRepository
	journalRepo  JournalRepository
	txManager    TxManager
	locker       Locker
	metrics      LedgerMetrics
	logger       logger.Logger
}

func NewLedgerUC(
	productRepo ProductRepository,
	purchaseRepo PurchaseRepository,
	supplierRepo SupplierRepository,
	cacheRepo PurchaseCacheRepository,
	journalRepo JournalRepository,
	txManager TxManager,
	locker Locker,
	metrics LedgerMetrics,
	logger logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		cacheRepo:    cacheRepo,
		journalRepo:  journalRepo,
		txManager:    txManager,
		locker:       locker,
		metrics:      metrics,
		logger:       logger,
	}
}

// RecordPurchase записывает новую закупку и увеличивает остаток товара на её количество.
func (l *LedgerUseCase) RecordPurchase(ctx context.Context, draft *PurchaseDraft) (res *domain.Purchase, err error) {
	const op = "LedgerUseCase.RecordPurchase"
	defer func() { l.metrics.ObserveOperation(op, err) }()

	// Валидация до любых обращений к хранилищу
	if err = validateDraft(draft); err != nil {
		return nil, e.Wrap(op, err)
	}

	supplier, err := l.resolveSupplier(ctx, draft)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	release, err := l.lockProduct(ctx, draft.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer release()

	product, err := l.productRepo.GetByID(ctx, draft.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := l.purchaseRepo.Create(ctx, domain.NewPurchase(
		product.ID,
		product.Name,
		supplier.ID,
		supplier.DisplayName(),
		draft.UnitPrice,
		draft.Quantity,
		draft.Date,
	))
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	l.invalidatePurchases(ctx, op)

	mv, err := l.applyDelta(ctx, product.ID, created.ID, domain.MovementRecord, created.Quantity)
	if err != nil {
		cctx, cancel := detached(ctx)
		defer cancel()

		// Остаток мог измениться: удалять закупку нельзя, состояние разбирает оператор
		if errors.Is(err, errUnknownOutcome) {
			return nil, l.partialFailure(cctx, op, created.ID, product.ID,
				"create purchase", "adjust product quantity", err)
		}

		// Компенсация: закупка без изменения остатка не должна остаться в хранилище
		cErr := l.deletePurchase(cctx, created.ID)
		l.invalidatePurchases(cctx, op)
		if cErr != nil && !errors.Is(cErr, e.ErrNotFound) {
			return nil, l.partialFailure(cctx, op, created.ID, product.ID,
				"create purchase", "adjust product quantity", errors.Join(err, cErr))
		}
		l.logger.Warnf("purchase %s removed after failed quantity update: %v", created.ID, e.Wrap(op, err))

		return nil, e.Wrap(op, err)
	}

	l.journalMovements(ctx, op, mv)

	return created, nil
}

// AmendPurchase перезаписывает закупку и сдвигает остаток на разницу количеств.
// Товар закупки поменять нельзя.
func (l *LedgerUseCase) AmendPurchase(ctx context.Context, id string, draft *PurchaseDraft) (res *domain.Purchase, err error) {
	const op = "LedgerUseCase.AmendPurchase"
	defer func() { l.metrics.ObserveOperation(op, err) }()

	if err = validateDraft(draft); err != nil {
		return nil, e.Wrap(op, err)
	}

	current, release, err := l.lockPurchase(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer release()

	if current.Voided {
		return nil, e.Wrap(op, e.ErrVoidedRecord)
	}
	if draft.ProductID != current.ProductID {
		return nil, e.Wrap(op, e.NewValidationError("product_id", e.ErrProductChangeOnAmend.Error()))
	}

	supplier, err := l.resolveSupplier(ctx, draft)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Остаток меняется до перезаписи закупки, пока известно прежнее количество
	mv, err := l.applyDelta(ctx, current.ProductID, current.ID, domain.MovementAmend, draft.Quantity-current.Quantity)
	if err != nil {
		return nil, l.stockWriteFailed(ctx, op, current, err)
	}

	amended := *current
	amended.SupplierID = supplier.ID
	amended.SupplierName = supplier.DisplayName()
	amended.UnitPrice = draft.UnitPrice
	amended.Quantity = draft.Quantity
	amended.Date = draft.Date

	if err = l.updatePurchase(ctx, &amended); err != nil {
		return nil, l.compensate(ctx, op, mv, current, "adjust product quantity", "update purchase", err)
	}
	l.invalidatePurchases(ctx, op)
	l.journalMovements(ctx, op, mv)

	return &amended, nil
}

// VoidPurchase аннулирует закупку и снимает её количество с остатка.
// Повторная отмена ничего не меняет и возвращает закупку как есть.
func (l *LedgerUseCase) VoidPurchase(ctx context.Context, id string) (res *domain.Purchase, err error) {
	const op = "LedgerUseCase.VoidPurchase"
	defer func() { l.metrics.ObserveOperation(op, err) }()

	current, release, err := l.lockPurchase(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer release()

	if current.Voided {
		return current, nil
	}

	mv, err := l.applyDelta(ctx, current.ProductID, current.ID, domain.MovementVoid, -current.Quantity)
	if err != nil {
		return nil, l.stockWriteFailed(ctx, op, current, err)
	}

	// Флаг аннулирования пишется последним: обратно его уже не снять
	voided := *current
	voided.Void()
	if err = l.updatePurchase(ctx, &voided); err != nil {
		return nil, l.compensate(ctx, op, mv, current, "adjust product quantity", "mark purchase voided", err)
	}
	l.invalidatePurchases(ctx, op)
	l.journalMovements(ctx, op, mv)

	return &voided, nil
}

// DeletePurchase удаляет закупку. Если она не аннулирована, её количество снимается с остатка.
func (l *LedgerUseCase) DeletePurchase(ctx context.Context, id string) (err error) {
	const op = "LedgerUseCase.DeletePurchase"
	defer func() { l.metrics.ObserveOperation(op, err) }()

	current, release, err := l.lockPurchase(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer release()

	var mv *domain.Movement
	if !current.Voided {
		mv, err = l.applyDelta(ctx, current.ProductID, current.ID, domain.MovementDelete, -current.Contribution())
		if err != nil {
			return l.stockWriteFailed(ctx, op, current, err)
		}
	}

	if err = l.deletePurchase(ctx, current.ID); err != nil {
		return l.compensate(ctx, op, mv, current, "adjust product quantity", "delete purchase", err)
	}
	l.invalidatePurchases(ctx, op)
	l.journalMovements(ctx, op, mv)

	return nil
}

// ListPurchases ищет закупки по строке и отдаёт одну страницу.
func (l *LedgerUseCase) ListPurchases(ctx context.Context, req *ListReq) (*PurchasePage, error) {
	const op = "LedgerUseCase.ListPurchases"

	if err := validateListReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	found, err := l.SearchPurchases(ctx, req.Query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	page := paginate.Slice(found, req.Page, req.PageSize)
	return &page, nil
}

// SearchPurchases отдаёт все закупки, где query встречается в товаре, поставщике, количестве, цене или дате.
func (l *LedgerUseCase) SearchPurchases(ctx context.Context, query string) ([]domain.Purchase, error) {
	const op = "LedgerUseCase.SearchPurchases"

	all, err := l.loadPurchases(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return paginate.Filter(all, query, purchaseSearchFields), nil
}

func (l *LedgerUseCase) ListReconciliations(ctx context.Context, status string) ([]domain.Reconciliation, error) {
	const op = "LedgerUseCase.ListReconciliations"

	st := domain.ReconciliationStatus(status)
	if st != "" && st != domain.ReconciliationOpen && st != domain.ReconciliationResolved {
		return nil, e.Wrap(op, e.NewValidationError("status", "must be one of: open resolved"))
	}

	recs, err := l.journalRepo.ListReconciliations(ctx, st)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return recs, nil
}

// ResolveReconciliation закрывает запись сверки после ручного исправления данных.
func (l *LedgerUseCase) ResolveReconciliation(ctx context.Context, id, note string) (*domain.Reconciliation, error) {
	const op = "LedgerUseCase.ResolveReconciliation"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.NewValidationError("id", "is required"))
	}

	rec, err := l.journalRepo.ResolveReconciliation(ctx, id, strings.TrimSpace(note))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	l.logger.Infof("reconciliation %s resolved (operation %s, purchase %s)", rec.ID, rec.Operation, rec.PurchaseID)
	return rec, nil
}

// applyDelta перечитывает товар непосредственно перед записью и сдвигает его остаток на delta.
// Для услуг и нулевого сдвига ничего не пишет и возвращает nil.
func (l *LedgerUseCase) applyDelta(
	ctx context.Context,
	productID, purchaseID string,
	kind domain.MovementKind,
	delta int64,
) (*domain.Movement, error) {
	product, err := l.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Stockable() || delta == 0 {
		return nil, nil
	}

	after := product.Quantity + delta
	if after < 0 {
		return nil, e.NewValidationError("quantity", fmt.Sprintf(
			"product %q has %d on hand, change of %d would make it negative", product.Name, product.Quantity, delta,
		))
	}

	if err := l.setQuantity(ctx, product.ID, product.Quantity, after); err != nil {
		return nil, err
	}

	return domain.NewMovement(uuid.NewString(), product.ID, purchaseID, kind, product.Quantity, after, time.Now().UTC()), nil
}

// setQuantity пишет остаток. Если ответ потерян по сети, перечитывает товар,
// чтобы отличить непрошедшую запись от прошедшей. Если не выходит и это,
// возвращает ошибку с errUnknownOutcome.
func (l *LedgerUseCase) setQuantity(ctx context.Context, productID string, before, after int64) error {
	err := l.productRepo.SetQuantity(ctx, productID, after)
	if err == nil || !errors.Is(err, e.ErrNetwork) {
		return err
	}

	current, rErr := l.productRepo.GetByID(ctx, productID)
	switch {
	case rErr != nil:
		return errors.Join(errUnknownOutcome, err, rErr)
	case current.Quantity == after:
		l.logger.Warnf("quantity write for product %s confirmed by re-read after: %v", productID, err)
		return nil
	case current.Quantity == before:
		return err
	default:
		return errors.Join(errUnknownOutcome, err, fmt.Errorf("product %s holds %d, expected %d or %d",
			productID, current.Quantity, before, after))
	}
}

// updatePurchase перезаписывает закупку, подтверждая перечитыванием запись с потерянным ответом.
func (l *LedgerUseCase) updatePurchase(ctx context.Context, p *domain.Purchase) error {
	err := l.purchaseRepo.Update(ctx, p)
	if err == nil || !errors.Is(err, e.ErrNetwork) {
		return err
	}

	stored, rErr := l.purchaseRepo.GetByID(ctx, p.ID)
	if rErr != nil {
		return errors.Join(errUnknownOutcome, err, rErr)
	}
	if stored.Quantity == p.Quantity &&
		stored.Voided == p.Voided &&
		stored.UnitPrice.Equal(p.UnitPrice) &&
		stored.SupplierID == p.SupplierID &&
		stored.Date.Equal(p.Date) {
		l.logger.Warnf("update of purchase %s confirmed by re-read after: %v", p.ID, err)
		return nil
	}

	return err
}

func (l *LedgerUseCase) deletePurchase(ctx context.Context, id string) error {
	err := l.purchaseRepo.Delete(ctx, id)
	if err == nil || !errors.Is(err, e.ErrNetwork) {
		return err
	}

	_, rErr := l.purchaseRepo.GetByID(ctx, id)
	switch {
	case errors.Is(rErr, e.ErrNotFound):
		l.logger.Warnf("deletion of purchase %s confirmed by re-read after: %v", id, err)
		return nil
	case rErr != nil:
		return errors.Join(errUnknownOutcome, err, rErr)
	default:
		return err
	}
}

// compensate откатывает изменение остатка после неудачной записи закупки.
func (l *LedgerUseCase) compensate(
	ctx context.Context,
	op string,
	mv *domain.Movement,
	purchase *domain.Purchase,
	completed, failed string,
	cause error,
) error {
	if mv == nil && !errors.Is(cause, errUnknownOutcome) {
		return e.Wrap(op, cause)
	}

	cctx, cancel := detached(ctx)
	defer cancel()

	// Запись закупки могла пройти: откат остатка тогда сам создал бы расхождение
	if errors.Is(cause, errUnknownOutcome) {
		l.invalidatePurchases(cctx, op)
		return l.partialFailure(cctx, op, purchase.ID, purchase.ProductID, completed, failed, cause, mv)
	}

	back, cErr := l.applyDelta(cctx, mv.ProductID, mv.PurchaseID, domain.MovementCompensate, -mv.Delta)
	if cErr != nil {
		return l.partialFailure(cctx, op, purchase.ID, purchase.ProductID, completed, failed, errors.Join(cause, cErr), mv)
	}

	l.logger.Warnf("quantity of product %s restored after failed %q: %v", mv.ProductID, failed, e.Wrap(op, cause))
	l.journalMovements(cctx, op, mv, back)

	return e.Wrap(op, cause)
}

// stockWriteFailed оборачивает ошибку первой записи остатка. Если неизвестно,
// прошла ли запись, заводит сверку вместо обычной ошибки.
func (l *LedgerUseCase) stockWriteFailed(ctx context.Context, op string, purchase *domain.Purchase, err error) error {
	if !errors.Is(err, errUnknownOutcome) {
		return e.Wrap(op, err)
	}

	cctx, cancel := detached(ctx)
	defer cancel()

	return l.partialFailure(cctx, op, purchase.ID, purchase.ProductID, "nothing confirmed", "adjust product quantity", err)
}

// partialFailure фиксирует несогласованное состояние: пишет запись сверки вместе с применёнными
// движениями и возвращает e.PartialFailureError.
func (l *LedgerUseCase) partialFailure(
	ctx context.Context,
	op, purchaseID, productID, completed, failed string,
	cause error,
	applied ...*domain.Movement,
) error {
	pf := &e.PartialFailureError{
		Op:         op,
		PurchaseID: purchaseID,
		ProductID:  productID,
		Completed:  completed,
		Failed:     failed,
		Cause:      cause,
	}

	rec := &domain.Reconciliation{
		ID:         uuid.NewString(),
		Operation:  op,
		PurchaseID: purchaseID,
		ProductID:  productID,
		Completed:  completed,
		Failed:     failed,
		Cause:      cause.Error(),
		Status:     domain.ReconciliationOpen,
		CreatedAt:  time.Now().UTC(),
	}

	err := l.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if mvs := nonNil(applied); len(mvs) > 0 {
			if err := l.journalRepo.AppendMovements(ctx, mvs); err != nil {
				return err
			}
		}
		return l.journalRepo.CreateReconciliation(ctx, rec)
	})
	if err != nil {
		l.logger.Errorf(err, "failed to store reconciliation for purchase %s", purchaseID)
	} else {
		pf.ReconciliationID = rec.ID
	}

	l.logger.Errorf(pf, "inconsistent state needs manual reconciliation: purchase_id=%s product_id=%s reconciliation_id=%s",
		purchaseID, productID, pf.ReconciliationID)
	l.metrics.IncPartialFailure(op)

	return pf
}

// journalMovements пишет применённые движения в журнал. Сбой журнала операцию не отменяет.
func (l *LedgerUseCase) journalMovements(ctx context.Context, op string, movements ...*domain.Movement) {
	mvs := nonNil(movements)
	if len(mvs) == 0 {
		return
	}

	jctx, cancel := detached(ctx)
	defer cancel()

	err := l.txManager.WithinTx(jctx, func(ctx context.Context) error {
		return l.journalRepo.AppendMovements(ctx, mvs)
	})
	if err != nil {
		l.logger.Warnf("failed to journal %d movement(s): %v", len(mvs), e.Wrap(op, err))
	}
}

func (l *LedgerUseCase) invalidatePurchases(ctx context.Context, op string) {
	if err := l.cacheRepo.DeletePurchases(ctx); err != nil {
		l.logger.Warnf("failed to invalidate purchases cache: %v", e.Wrap(op, err))
	}
}

func (l *LedgerUseCase) loadPurchases(ctx context.Context) ([]domain.Purchase, error) {
	cached, ok, err := l.cacheRepo.GetPurchases(ctx)
	if err != nil {
		l.logger.Warnf("failed to read purchases cache: %v", err)
	}
	if ok {
		return cached, nil
	}

	purchases, err := l.purchaseRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.cacheRepo.SetPurchases(ctx, purchases); err != nil {
		l.logger.Warnf("failed to cache purchases: %v", err)
	}

	return purchases, nil
}

// resolveSupplier находит поставщика по id или, если id не задан, по имени.
// Имя должно совпасть ровно с одним поставщиком.
func (l *LedgerUseCase) resolveSupplier(ctx context.Context, draft *PurchaseDraft) (*domain.Supplier, error) {
	suppliers, err := l.supplierRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if draft.SupplierID != "" {
		for i := range suppliers {
			if suppliers[i].ID == draft.SupplierID {
				return &suppliers[i], nil
			}
		}
		return nil, e.NewValidationError("supplier_id", "unknown supplier")
	}

	name := strings.TrimSpace(draft.SupplierName)
	var matches []int
	for i, s := range suppliers {
		if strings.EqualFold(s.FirstName, name) || strings.EqualFold(s.FirstName+" "+s.LastName, name) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		return nil, e.NewValidationError("supplier_name", "unknown supplier")
	case 1:
		return &suppliers[matches[0]], nil
	default:
		return nil, e.NewValidationError("supplier_name",
			fmt.Sprintf("matches %d suppliers, pass supplier_id instead", len(matches)))
	}
}

func (l *LedgerUseCase) lockProduct(ctx context.Context, productID string) (func(), error) {
	return lockProduct(ctx, l.locker, l.logger, productID)
}

// lockProduct берёт блокировку товара. Возвращённая функция её отпускает.
func lockProduct(ctx context.Context, locker Locker, log logger.Logger, productID string) (func(), error) {
	lock, err := locker.Obtain(ctx, productLockPrefix+productID)
	if err != nil {
		return nil, err
	}

	return func() {
		rctx, cancel := detached(ctx)
		defer cancel()

		if err := lock.Release(rctx); err != nil {
			log.Warnf("failed to release lock of product %s: %v", productID, err)
		}
	}, nil
}

// lockPurchase читает закупку, блокирует её товар и перечитывает закупку уже под блокировкой.
func (l *LedgerUseCase) lockPurchase(ctx context.Context, id string) (*domain.Purchase, func(), error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, e.NewValidationError("id", "is required")
	}

	purchase, err := l.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	release, err := l.lockProduct(ctx, purchase.ProductID)
	if err != nil {
		return nil, nil, err
	}

	fresh, err := l.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		release()
		return nil, nil, err
	}

	return fresh, release, nil
}

func purchaseSearchFields(p domain.Purchase) []string {
	return []string{
		p.ProductName,
		p.SupplierName,
		strconv.FormatInt(p.Quantity, 10),
		p.UnitPrice.StringFixed(pricePlaces),
		p.Date.Format(time.DateOnly),
		p.Date.Format("2/1/2006"),
	}
}

func nonNil(movements []*domain.Movement) []domain.Movement {
	out := make([]domain.Movement, 0, len(movements))
	for _, mv := range movements {
		if mv != nil {
			out = append(out, *mv)
		}
	}
	return out
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
}
