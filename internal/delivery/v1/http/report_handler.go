package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUC
	logger        logger.Logger
}

func NewReportHandler(reportUsecase usecase.ReportUC, logger logger.Logger) *ReportHandler {
	return &ReportHandler{reportUsecase: reportUsecase, logger: logger}
}

// export отдаёт XLSX-файл со всеми закупками под фильтр q, без пагинации.
func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request) {
	res, err := h.reportUsecase.ExportPurchases(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Warnf("export purchases: %v", err)
		WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (h *ReportHandler) archive(w http.ResponseWriter, r *http.Request) {
	res, err := h.reportUsecase.ArchivePurchases(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Warnf("archive purchases: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, archiveRes{Bucket: res.Bucket, ObjectKey: res.ObjectKey, Rows: res.Rows})
}
