package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/redis/go-redis/v9"
)

const (
	cabMetaKeyPrefix      = "cab:meta:"
	cabActiveRideKey      = "cab:active:"
	customerActiveRideKey = "customer:active:"
	availableCabsKey      = "cabs:available:"
	metaTTL               = 12 * time.Hour
)

// CabMeta is the cached availability snapshot for a cab. The database
// stays authoritative; this mirror serves dispatch lookups.
type CabMeta struct {
	Status    lifecycle.CabStatus `json:"status"`
	CarModel  string              `json:"car_model"`
	Rating    float64             `json:"rating"`
	UpdatedAt int64               `json:"updated_at"`
}

type CabAvailabilityCache interface {
	SetCabMeta(ctx context.Context, cabID int64, status lifecycle.CabStatus, carModel string, rating float64) error
	GetCabMeta(ctx context.Context, cabID int64) (*CabMeta, error)
	RemoveCab(ctx context.Context, cabID int64, carModel string) error
	SetActiveRide(ctx context.Context, cabID, rideID int64) error
	GetActiveRide(ctx context.Context, cabID int64) (int64, error)
	ClearActiveRide(ctx context.Context, cabID int64) error
	SetCustomerActiveRide(ctx context.Context, customerID, rideID int64) error
	GetCustomerActiveRide(ctx context.Context, customerID int64) (int64, error)
	ClearCustomerActiveRide(ctx context.Context, customerID int64) error
}

type cabAvailabilityCache struct {
	redis *redis.Client
}

func NewCabAvailabilityCache(redisClient *redis.Client) CabAvailabilityCache {
	return &cabAvailabilityCache{redis: redisClient}
}

func (c *cabAvailabilityCache) SetCabMeta(ctx context.Context, cabID int64, status lifecycle.CabStatus, carModel string, rating float64) error {
	meta := CabMeta{
		Status:    status,
		CarModel:  carModel,
		Rating:    rating,
		UpdatedAt: time.Now().Unix(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	key := cabMetaKeyPrefix + strconv.FormatInt(cabID, 10)
	if err := c.redis.Set(ctx, key, data, metaTTL).Err(); err != nil {
		return err
	}

	// Keep the per-model availability set in step with the status.
	setKey := availableCabsKey + carModel
	if status == lifecycle.CabAvailable {
		return c.redis.SAdd(ctx, setKey, cabID).Err()
	}
	return c.redis.SRem(ctx, setKey, cabID).Err()
}

func (c *cabAvailabilityCache) GetCabMeta(ctx context.Context, cabID int64) (*CabMeta, error) {
	key := cabMetaKeyPrefix + strconv.FormatInt(cabID, 10)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var meta CabMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *cabAvailabilityCache) RemoveCab(ctx context.Context, cabID int64, carModel string) error {
	key := cabMetaKeyPrefix + strconv.FormatInt(cabID, 10)
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		return err
	}
	return c.redis.SRem(ctx, availableCabsKey+carModel, cabID).Err()
}

func (c *cabAvailabilityCache) SetActiveRide(ctx context.Context, cabID, rideID int64) error {
	key := cabActiveRideKey + strconv.FormatInt(cabID, 10)
	return c.redis.Set(ctx, key, rideID, metaTTL).Err()
}

func (c *cabAvailabilityCache) GetActiveRide(ctx context.Context, cabID int64) (int64, error) {
	key := cabActiveRideKey + strconv.FormatInt(cabID, 10)
	return c.getRideID(ctx, key)
}

func (c *cabAvailabilityCache) ClearActiveRide(ctx context.Context, cabID int64) error {
	key := cabActiveRideKey + strconv.FormatInt(cabID, 10)
	return c.redis.Del(ctx, key).Err()
}

func (c *cabAvailabilityCache) SetCustomerActiveRide(ctx context.Context, customerID, rideID int64) error {
	key := customerActiveRideKey + strconv.FormatInt(customerID, 10)
	return c.redis.Set(ctx, key, rideID, metaTTL).Err()
}

func (c *cabAvailabilityCache) GetCustomerActiveRide(ctx context.Context, customerID int64) (int64, error) {
	key := customerActiveRideKey + strconv.FormatInt(customerID, 10)
	return c.getRideID(ctx, key)
}

func (c *cabAvailabilityCache) ClearCustomerActiveRide(ctx context.Context, customerID int64) error {
	key := customerActiveRideKey + strconv.FormatInt(customerID, 10)
	return c.redis.Del(ctx, key).Err()
}

func (c *cabAvailabilityCache) getRideID(ctx context.Context, key string) (int64, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed ride id in cache key %s: %w", key, err)
	}
	return id, nil
}
