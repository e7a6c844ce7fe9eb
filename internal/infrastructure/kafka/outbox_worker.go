package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/gym-ledger/internal/usecase"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/jitter"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	batchSize   = 10
	waitTimeout = 30 * time.Second
)

// OutboxWorker публикует журнал движений в Kafka. Просыпается по NOTIFY и раз в waitTimeout.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	channel   string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	dbConnStr string
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	channel string,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		channel:   channel,
		cancel:    func() {},
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Обрабатываем "остатки" при старте
		w.logger.Infof("Draining pending movements on startup...")
		w.drain(ctx)

		w.listen(ctx)
	}()
}

// Stop останавливает воркер и ждёт текущую пачку не дольше ctx.
func (w *OutboxWorker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *OutboxWorker) listen(ctx context.Context) {
	var conn *pgx.Conn
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for attempt := 0; ; {
		if ctx.Err() != nil {
			w.logger.Infof("Outbox worker stopped")
			return
		}

		if conn == nil {
			c, err := w.connect(ctx)
			if err != nil {
				wait := jitter.Backoff(time.Second, 30*time.Second, attempt)
				w.logger.Warnf("LISTEN connect failed, retry in %v: %v", wait, err)
				attempt++
				sleep(ctx, wait)
				continue
			}
			conn, attempt = c, 0
		}

		waitCtx, waitCancel := context.WithTimeout(ctx, waitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		waitCancel()

		switch {
		case err == nil:
			if notif.Channel == w.channel {
				w.logger.Debugf("Received movements notification, draining journal")
				w.drain(ctx)
			}
		case errors.Is(err, context.DeadlineExceeded):
			// Подбираем то, что пропустили между переподключениями
			w.drain(ctx)
		case errors.Is(err, context.Canceled):
			continue
		default:
			w.logger.Warnf("LISTEN connection lost: %v. Reconnecting...", err)
			_ = conn.Close(context.Background())
			conn = nil
		}
	}
}

func (w *OutboxWorker) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+w.channel); err != nil {
		_ = conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("Subscribed to %q channel", w.channel)
	return conn, nil
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch публикует одну пачку. hasMore=false, если пачка неполная или публикация не удалась.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	movements, err := w.repo.GetAndMarkAsProcessing(ctx, batchSize)
	if err != nil {
		return false, err
	}

	failed := 0
	for i := range movements {
		mv := &movements[i]
		if err := w.producer.WriteMovement(ctx, mv); err != nil {
			failed++
			w.logger.Warnf("publish movement %s (product %s) failed: %v", mv.ID, mv.ProductID, err)
			if err := w.repo.MarkAsPending(context.WithoutCancel(ctx), mv.ID); err != nil {
				w.logger.Warnf("return movement %s to pending failed: %v", mv.ID, err)
			}
			continue
		}
		if err := w.repo.MarkAsProcessed(context.WithoutCancel(ctx), mv.ID); err != nil {
			w.logger.Warnf("mark movement %s processed failed: %v", mv.ID, err)
		}
	}

	return failed == 0 && len(movements) == batchSize, nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
