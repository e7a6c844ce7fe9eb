package http

import (
	"net/http"

	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler обслуживает справочники: товары, поставщиков и клиентов.
type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

func (c *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	req, err := parseListReq(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := c.catalogUsecase.ListProducts(r.Context(), req)
	if err != nil {
		c.logger.Warnf("list products: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPageRes(page, toProductRes))
}

func (c *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := c.catalogUsecase.CreateProduct(r.Context(), in)
	if err != nil {
		c.logger.Warnf("create product: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductRes(product))
}

func (c *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := c.catalogUsecase.UpdateProduct(r.Context(), id, in)
	if err != nil {
		c.logger.Warnf("update product %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductRes(product))
}

func (c *CatalogHandler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	req, err := parseListReq(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := c.catalogUsecase.ListSuppliers(r.Context(), req)
	if err != nil {
		c.logger.Warnf("list suppliers: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPageRes(page, toSupplierRes))
}

func (c *CatalogHandler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in usecase.SupplierInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	supplier, err := c.catalogUsecase.CreateSupplier(r.Context(), &in)
	if err != nil {
		c.logger.Warnf("create supplier: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toSupplierRes(supplier))
}

func (c *CatalogHandler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in usecase.SupplierInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	supplier, err := c.catalogUsecase.UpdateSupplier(r.Context(), id, &in)
	if err != nil {
		c.logger.Warnf("update supplier %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSupplierRes(supplier))
}

func (c *CatalogHandler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.catalogUsecase.DeleteSupplier(r.Context(), id); err != nil {
		c.logger.Warnf("delete supplier %s: %v", id, err)
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *CatalogHandler) listClients(w http.ResponseWriter, r *http.Request) {
	req, err := parseListReq(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	page, err := c.catalogUsecase.ListClients(r.Context(), req)
	if err != nil {
		c.logger.Warnf("list clients: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPageRes(page, toClientRes))
}

func (c *CatalogHandler) createClient(w http.ResponseWriter, r *http.Request) {
	var in usecase.ClientInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	client, err := c.catalogUsecase.CreateClient(r.Context(), &in)
	if err != nil {
		c.logger.Warnf("create client: %v", err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toClientRes(client))
}

func (c *CatalogHandler) updateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in usecase.ClientInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, err)
		return
	}

	client, err := c.catalogUsecase.UpdateClient(r.Context(), id, &in)
	if err != nil {
		c.logger.Warnf("update client %s: %v", id, err)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toClientRes(client))
}

func (c *CatalogHandler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := c.catalogUsecase.DeleteClient(r.Context(), id); err != nil {
		c.logger.Warnf("delete client %s: %v", id, err)
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
