package catalog

import "context"

type Shop struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsOpen bool   `json:"is_open"`
}

type Food struct {
	ID              string `json:"id"`
	ShopID          string `json:"shop_id"`
	Name            string `json:"name"`
	ImageURL        string `json:"image_url"`
	Price           int64  `json:"price"`
	DiscountPercent int    `json:"discount_percent"`
	IsAvailable     bool   `json:"is_available"`
}

// Provider is the catalog contract consumed by the cart and checkout layers.
type Provider interface {
	Food(ctx context.Context, foodID string) (Food, error)
	Shop(ctx context.Context, shopID string) (Shop, error)
}

// Directory resolves shop/staff management relations for authorization and
// notification fan-out.
type Directory interface {
	ShopManagers(ctx context.Context, shopID string) ([]string, error)
	IsManager(ctx context.Context, shopID, staffID string) (bool, error)
	StaffShops(ctx context.Context, staffID string) ([]string, error)
}
