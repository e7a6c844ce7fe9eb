// Package jitter размывает интервалы повторов, чтобы реплики не переподключались одновременно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultFactor: 50% джиттера
const DefaultFactor = 0.5

// Duration возвращает d, увеличенную на случайную долю в пределах factor.
// Результат находится в диапазоне [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// Backoff считает экспоненциальную паузу перед попыткой attempt (с нуля) с потолком max и джиттером.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < max; i++ {
		backoff *= 2
	}
	if backoff > max {
		backoff = max
	}
	return Duration(backoff, DefaultFactor)
}
