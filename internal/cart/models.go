package cart

import "time"

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusCheckout Status = "CHECKOUT"
	StatusRemoved  Status = "REMOVED"
)

type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ShopID    string    `json:"shop_id"`
	FoodID    string    `json:"food_id"`
	Qty       int       `json:"qty"`
	Note      string    `json:"note"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View is the active cart as returned to callers. RemovedFoodNames lists
// items swept out because their food became unavailable, so the consumer can
// surface a notice.
type View struct {
	ShopID           string   `json:"shop_id"`
	Items            []Item   `json:"items"`
	RemovedItemIDs   []string `json:"removed_item_ids,omitempty"`
	RemovedFoodNames []string `json:"removed_food_names,omitempty"`
}
