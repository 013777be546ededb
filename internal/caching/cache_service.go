package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"traders/internal/models"
)

const keyPrefix = "traders:"

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID int) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID int) error

	// Customer country list
	GetCountries(ctx context.Context) ([]string, error)
	SetCountries(ctx context.Context, countries []string, ttl time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient builds a client for addr, accepting both host:port and
// redis:// style addresses.
func NewRedisClient(addr, password string, db int, logger *zap.Logger) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis ping failed on initialization", zap.String("addr", parsedAddr), zap.Error(err))
	} else {
		logger.Debug("redis connection established", zap.String("addr", parsedAddr))
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func productKey(productID int) string {
	return fmt.Sprintf("%sproduct:%d", keyPrefix, productID)
}

const countriesKey = keyPrefix + "customers:countries"

func (r *redisCacheService) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	var product models.Product
	found, err := r.getJSON(ctx, productKey(productID), &product)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, productKey(product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID int) error {
	return r.client.Del(ctx, productKey(productID)).Err()
}

func (r *redisCacheService) GetCountries(ctx context.Context) ([]string, error) {
	var countries []string
	found, err := r.getJSON(ctx, countriesKey, &countries)
	if err != nil || !found {
		return nil, err
	}
	return countries, nil
}

func (r *redisCacheService) SetCountries(ctx context.Context, countries []string, ttl time.Duration) error {
	return r.setJSON(ctx, countriesKey, countries, ttl)
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// getJSON reports found=false on a cache miss
func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}
