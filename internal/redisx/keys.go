package redisx

import "time"

const (
	// Cache status order: order_status:{order_code} -> {"status": "...", "payment_status": "...", "updated_at": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Cache manager staff ids per shop: shop_managers:{shop_id} -> csv of staff ids
	KeyShopManagers = "shop_managers:%s"
)

var (
	TTLStatusCache  = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
	TTLShopManagers = 30 * time.Second
)
