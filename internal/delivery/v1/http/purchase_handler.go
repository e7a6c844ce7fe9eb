package http

import (
	"net/http"

	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type PurchaseHandler struct {
	ledgerUsecase usecase.LedgerUC
	logger        logger.Logger
}

func NewPurchaseHandler(ledgerUsecase usecase.LedgerUC, logger logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{ledgerUsecase: ledgerUsecase, logger: logger}
}

func (p *PurchaseHandler) list(w http.ResponseWriter, r *http.Request) {
	req, err := parseListReq(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := p.ledgerUsecase.ListPurchases(r.Context(), req)
	if err != nil {
		p.logger.Warnf("list purchases: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPageRes(page, toPurchaseRes))
}

func (p *PurchaseHandler) record(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		WriteError(w, err)
		return
	}

	purchase, err := p.ledgerUsecase.RecordPurchase(r.Context(), draft)
	if err != nil {
		p.logger.Warnf("record purchase of product %s: %v", draft.ProductID, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toPurchaseRes(purchase))
}

func (p *PurchaseHandler) amend(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req purchaseReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		WriteError(w, err)
		return
	}

	purchase, err := p.ledgerUsecase.AmendPurchase(r.Context(), id, draft)
	if err != nil {
		p.logger.Warnf("amend purchase %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPurchaseRes(purchase))
}

func (p *PurchaseHandler) void(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	purchase, err := p.ledgerUsecase.VoidPurchase(r.Context(), id)
	if err != nil {
		p.logger.Warnf("void purchase %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPurchaseRes(purchase))
}

func (p *PurchaseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := p.ledgerUsecase.DeletePurchase(r.Context(), id); err != nil {
		p.logger.Warnf("delete purchase %s: %v", id, err)
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p *PurchaseHandler) listReconciliations(w http.ResponseWriter, r *http.Request) {
	recs, err := p.ledgerUsecase.ListReconciliations(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		WriteError(w, err)
		return
	}

	res := make([]reconciliationRes, 0, len(recs))
	for i := range recs {
		res = append(res, toReconciliationRes(&recs[i]))
	}
	WriteSuccess(w, http.StatusOK, res)
}

func (p *PurchaseHandler) resolveReconciliation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req resolveReq
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	rec, err := p.ledgerUsecase.ResolveReconciliation(r.Context(), id, req.Note)
	if err != nil {
		p.logger.Warnf("resolve reconciliation %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toReconciliationRes(rec))
}
