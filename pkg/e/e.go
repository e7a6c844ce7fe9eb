package e

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Классы ошибок учёта закупок
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("record not found")
	ErrVoidedRecord   = errors.New("purchase is voided")
	ErrNetwork        = errors.New("network error")
	ErrRemote         = errors.New("remote store error")
	ErrPartialFailure = errors.New("partial failure")
	ErrConflict       = errors.New("concurrent modification")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrInvalidJSON          = fmt.Errorf("invalid json body")
	ErrInvalidDate          = fmt.Errorf("date must be in YYYY-MM-DD or RFC3339 format")
	ErrInvalidPrice         = fmt.Errorf("price must be a positive decimal")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidPagination    = fmt.Errorf("page and page_size must be positive integers")
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrProductChangeOnAmend = fmt.Errorf("product of a purchase cannot be changed, void it and record a new one")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// ValidationError содержит ошибки по полям. errors.Is(err, ErrValidation) == true.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add добавляет ошибку поля и возвращает саму ошибку для цепочек.
func (v *ValidationError) Add(field, msg string) *ValidationError {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	v.Fields[field] = msg
	return v
}

// OrNil возвращает nil, если ни одно поле не добавлено.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RemoteError — ответ удалённого хранилища с неуспешным статусом.
type RemoteError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (r *RemoteError) Error() string {
	return fmt.Sprintf("remote store %s %s: status %d: %s", r.Method, r.Path, r.Status, r.Body)
}

// Is: 404 считается отсутствием записи, остальное считается ErrRemote.
func (r *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrNotFound:
		return r.Status == 404
	}
	return false
}

// PartialFailureError — одна половина составной операции применена, а компенсация не удалась.
type PartialFailureError struct {
	Op               string
	PurchaseID       string
	ProductID        string
	Completed        string
	Failed           string
	ReconciliationID string
	Cause            error
}

func (p *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %s: %q succeeded, %q failed (purchase=%s product=%s): %v",
		p.Op, ErrPartialFailure.Error(), p.Completed, p.Failed, p.PurchaseID, p.ProductID, p.Cause)
}

func (p *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}

func (p *PartialFailureError) Unwrap() error {
	return p.Cause
}

// Classify возвращает короткий класс ошибки для метрик и логов.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPartialFailure):
		return "partial_failure"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrVoidedRecord):
		return "voided"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrRemote):
		return "remote"
	default:
		return "error"
	}
}
