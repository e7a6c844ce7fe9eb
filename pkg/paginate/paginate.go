// Package paginate: фильтрация и постраничная выборка списков в памяти.
package paginate

import "strings"

// MaxPageSize — наибольший допустимый размер страницы.
const MaxPageSize = 1000

// Page — одна страница результата и сведения для отрисовки пагинации.
type Page[T any] struct {
	Items      []T
	Total      int
	TotalPages int
	Page       int
	PageSize   int
}

// Filter оставляет элементы, у которых хотя бы одно из полей содержит query без учёта регистра.
// Пустой query возвращает исходный список.
func Filter[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, item)
				break
			}
		}
	}

	return out
}

// Slice возвращает страницу page (нумерация с 1). Страница за пределами списка пуста.
// Вызывающий обязан проверить page >= 1 и size >= 1.
func Slice[T any](items []T, page, size int) Page[T] {
	total := len(items)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	res := Page[T]{
		Items:      []T{},
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   size,
	}

	// page сравнивается до умножения, иначе (page-1)*size переполняется
	if page > totalPages {
		return res
	}
	start := (page - 1) * size
	end := start + min(size, total-start)
	res.Items = items[start:end]

	return res
}
