package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-food-orders/internal/redisx"
)

// CachedDirectory fronts the shop_staff table with a short-TTL Redis cache.
// Manager resolution runs on every broadcast, so it is the hottest read path.
type CachedDirectory struct {
	Repo  *Repo
	Redis *redis.Client
}

func (d *CachedDirectory) ShopManagers(ctx context.Context, shopID string) ([]string, error) {
	key := fmt.Sprintf(redisx.KeyShopManagers, shopID)
	if s, err := d.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		return strings.Split(s, ","), nil
	}

	ids, err := d.Repo.ShopManagers(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		_ = d.Redis.Set(ctx, key, strings.Join(ids, ","), redisx.TTLShopManagers).Err()
	}
	return ids, nil
}

func (d *CachedDirectory) IsManager(ctx context.Context, shopID, staffID string) (bool, error) {
	ids, err := d.ShopManagers(ctx, shopID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == staffID {
			return true, nil
		}
	}
	return false, nil
}

func (d *CachedDirectory) StaffShops(ctx context.Context, staffID string) ([]string, error) {
	return d.Repo.StaffShops(ctx, staffID)
}
