package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportUseCase выгружает закупки в XLSX и архивирует выгрузки в объектное хранилище.
type ReportUseCase struct {
	searcher   PurchaseSearcher
	renderer   ReportRenderer
	reportRepo ReportRepository
	bucket     string
	logger     logger.Logger
	now        func() time.Time
}

func NewReportUC(
	searcher PurchaseSearcher,
	renderer ReportRenderer,
	reportRepo ReportRepository,
	bucket string,
	logger logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		searcher:   searcher,
		renderer:   renderer,
		reportRepo: reportRepo,
		bucket:     bucket,
		logger:     logger,
		now:        time.Now,
	}
}

// ExportPurchases рендерит все подходящие под фильтр закупки без пагинации.
func (r *ReportUseCase) ExportPurchases(ctx context.Context, query string) (*ExportRes, error) {
	const op = "ReportUseCase.ExportPurchases"

	purchases, err := r.searcher.SearchPurchases(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	data, err := r.renderer.RenderPurchases(purchases)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &ExportRes{
		FileName:    fmt.Sprintf("purchases-%s.xlsx", r.now().UTC().Format("20060102-150405")),
		ContentType: xlsxContentType,
		Data:        data,
		Rows:        len(purchases),
	}, nil
}

// ArchivePurchases выгружает закупки и сохраняет файл в бакет отчётов.
func (r *ReportUseCase) ArchivePurchases(ctx context.Context, query string) (*ArchiveRes, error) {
	const op = "ReportUseCase.ArchivePurchases"

	export, err := r.ExportPurchases(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	objectKey := fmt.Sprintf("purchases/%s/%s", r.now().UTC().Format("2006/01/02"), export.FileName)
	key, err := r.reportRepo.Upload(ctx, domain.NewReport(r.bucket, objectKey, export.Data, export.ContentType))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	r.logger.Infof("purchases report archived: bucket=%s key=%s rows=%d", r.bucket, key, export.Rows)

	return &ArchiveRes{Bucket: r.bucket, ObjectKey: key, Rows: export.Rows}, nil
}
