package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/shopspring/decimal"
)

const (
	maxBodySize     = 1 << 20
	defaultPageSize = 10
)

type ErrorResponse struct {
	Code             int               `json:"code"`
	Message          string            `json:"message"`
	Fields           map[string]string `json:"fields,omitempty"`
	ReconciliationID string            `json:"reconciliation_id,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse переводит ошибку слоя usecase в ответ. Частичный сбой проверяется первым:
// его причина сама может быть сетевой ошибкой.
func ToHTTPResponse(err error) *ErrorResponse {
	var (
		pf   *e.PartialFailureError
		verr *e.ValidationError
	)

	switch {
	case errors.As(err, &pf):
		res := NewErrorResponse(http.StatusInternalServerError, e.ErrPartialFailure.Error())
		res.ReconciliationID = pf.ReconciliationID
		return res
	case errors.As(err, &verr):
		res := NewErrorResponse(http.StatusBadRequest, e.ErrValidation.Error())
		res.Fields = verr.Fields
		return res
	case errors.Is(err, e.ErrInvalidJSON):
		return NewErrorResponse(http.StatusBadRequest, e.ErrInvalidJSON.Error())
	case errors.Is(err, e.ErrStatusBadRequest):
		return NewErrorResponse(http.StatusBadRequest, e.ErrStatusBadRequest.Error())
	case errors.Is(err, e.ErrNotFound):
		return NewErrorResponse(http.StatusNotFound, e.ErrNotFound.Error())
	case errors.Is(err, e.ErrVoidedRecord):
		return NewErrorResponse(http.StatusConflict, e.ErrVoidedRecord.Error())
	case errors.Is(err, e.ErrConflict):
		return NewErrorResponse(http.StatusConflict, e.ErrConflict.Error())
	case errors.Is(err, e.ErrNetwork):
		return NewErrorResponse(http.StatusBadGateway, e.ErrNetwork.Error())
	case errors.Is(err, e.ErrRemote):
		return NewErrorResponse(http.StatusBadGateway, e.ErrRemote.Error())
	default:
		return NewErrorResponse(http.StatusInternalServerError, e.ErrInternalServerError.Error())
	}
}

func WriteError(w http.ResponseWriter, err error) {
	res := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	_ = json.NewEncoder(w).Encode(res)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrInvalidJSON)
	}
	return nil
}

// parseListReq читает q, page и page_size. Отсутствующие значения получают умолчания.
func parseListReq(r *http.Request) (*usecase.ListReq, error) {
	q := r.URL.Query()
	verr := &e.ValidationError{}

	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		verr.Add("page", e.ErrInvalidPagination.Error())
	}
	size, err := intParam(q.Get("page_size"), defaultPageSize)
	if err != nil {
		verr.Add("page_size", e.ErrInvalidPagination.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &usecase.ListReq{Query: q.Get("q"), Page: page, PageSize: size}, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// parsePrice принимает цену числом или строкой. Пустое значение даёт ноль, его отклонит валидация.
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, e.ErrInvalidPrice
	}
	return d, nil
}

// parseDate принимает YYYY-MM-DD или RFC3339. Время суток отбрасывается.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, e.ErrInvalidDate
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
