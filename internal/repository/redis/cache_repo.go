package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/gym-ledger/internal/cfg"
	"github.com/DRSN-tech/gym-ledger/internal/domain"
	"github.com/DRSN-tech/gym-ledger/internal/repository/redis/converter"
	"github.com/DRSN-tech/gym-ledger/pkg/clients"
	"github.com/DRSN-tech/gym-ledger/pkg/e"
	"github.com/DRSN-tech/gym-ledger/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const purchasesKey = "purchases:all"

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.PurchaseConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.PurchaseConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetPurchases возвращает закэшированный список закупок. Второе значение false означает промах.
// Испорченная запись удаляется, логируется и считается промахом. Остальные ошибки возвращаются без лога.
func (c *CacheRepo) GetPurchases(ctx context.Context) ([]domain.Purchase, bool, error) {
	data, err := c.client.Client.Get(ctx, purchasesKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil // cache miss
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.PurchaseRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx)
		return nil, false, nil
	}

	purchases, err := c.conv.ToArrEntity(models)
	if err != nil {
		c.logger.Warnf("Cached purchases are corrupted: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx)
		return nil, false, nil
	}

	return purchases, true, nil
}

// SetPurchases кладёт список в кэш на PurchasesTTL.
func (c *CacheRepo) SetPurchases(ctx context.Context, purchases []domain.Purchase) error {
	data, err := json.Marshal(c.conv.ToArrRedisModel(purchases))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, purchasesKey, data, c.cfg.PurchasesTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeletePurchases инвалидирует список закупок.
func (c *CacheRepo) DeletePurchases(ctx context.Context) error {
	if err := c.client.Client.Del(ctx, purchasesKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) drop(ctx context.Context) {
	if err := c.client.Client.Del(ctx, purchasesKey).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}
