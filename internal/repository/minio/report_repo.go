package minio

import (
	"bytes"
	"context"

	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ReportRepo хранит выгрузки закупок в MinIO.
type ReportRepo struct {
	mc *minio.Client
}

func NewReportRepo(mc *minio.Client) *ReportRepo {
	return &ReportRepo{
		mc: mc,
	}
}

// Upload загружает отчёт в бакет отчёта и возвращает ключ объекта.
func (r *ReportRepo) Upload(ctx context.Context, report *domain.Report) (string, error) {
	reader := bytes.NewReader(report.Data)

	info, err := r.mc.PutObject(ctx, report.Bucket, report.ObjectKey, reader, int64(len(report.Data)), minio.PutObjectOptions{
		ContentType: report.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}
