package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/cfg"
	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/bsm/redislock"
	"github.com/jimlawless/whereami"
)

// RedisLocker сериализует изменение остатка одного товара между репликами сервиса.
// Пока блокировка удерживается, её TTL продлевается каждые LockTTL/2.
type RedisLocker struct {
	client *redislock.Client
	cfg    *cfg.LedgerCfg
	logger logger.Logger
}

func NewRedisLocker(client redislock.RedisClient, cfg *cfg.LedgerCfg, logger logger.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(client),
		cfg:    cfg,
		logger: logger,
	}
}

// Obtain ждёт блокировку не дольше LockRetries попыток. Занятая блокировка даёт e.ErrConflict.
func (l *RedisLocker) Obtain(ctx context.Context, key string) (usecase.Lock, error) {
	lock, err := l.client.Obtain(ctx, key, l.cfg.LockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.cfg.LockRetryDelay), l.cfg.LockRetries),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%s: lock %s is held: %w", whereami.WhereAmI(), key, e.ErrConflict)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return hold(lock, key, l.cfg.LockTTL, l.logger), nil
}

type refresher interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// heldLock продлевает блокировку в фоне до Release.
type heldLock struct {
	lock   refresher
	key    string
	ttl    time.Duration
	logger logger.Logger

	cancel  context.CancelFunc
	done    chan struct{}
	release sync.Once
	err     error
}

func hold(lock refresher, key string, ttl time.Duration, logger logger.Logger) *heldLock {
	ctx, cancel := context.WithCancel(context.Background())
	h := &heldLock{
		lock:   lock,
		key:    key,
		ttl:    ttl,
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.keepAlive(ctx)

	return h
}

func (h *heldLock) keepAlive(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(max(h.ttl/2, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.lock.Refresh(ctx, h.ttl, nil); err != nil {
				if ctx.Err() == nil {
					h.logger.Errorf(err, "lock %s lost, refresh stopped", h.key)
				}
				return
			}
		}
	}
}

// Release останавливает продление и снимает блокировку. Повторный вызов возвращает прежний результат.
func (h *heldLock) Release(ctx context.Context) error {
	h.release.Do(func() {
		h.cancel()
		<-h.done
		if err := h.lock.Release(ctx); err != nil {
			h.err = e.Wrap(whereami.WhereAmI(), err)
		}
	})

	return h.err
}
