package orders

import "time"

type Order struct {
	ID              string        `json:"id"`
	Code            string        `json:"code"`
	UserID          string        `json:"user_id"`
	ShopID          string        `json:"shop_id"`
	DeliveryAddress string        `json:"delivery_address"`
	Note            string        `json:"note"`
	Subtotal        int64         `json:"subtotal"`
	Discount        int64         `json:"discount"`
	ShippingFee     int64         `json:"shipping_fee"`
	Total           int64         `json:"total"`
	VoucherID       *string       `json:"voucher_id,omitempty"`
	Status          Status        `json:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	CancelReason    string        `json:"cancel_reason,omitempty"`
	CancelledBy     string        `json:"cancelled_by,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Detail is an immutable line-item snapshot taken at order time. Later edits
// to the food catalog never touch these rows.
type Detail struct {
	ID              string `json:"id"`
	OrderID         string `json:"order_id"`
	FoodID          string `json:"food_id"`
	FoodName        string `json:"food_name"`
	FoodImage       string `json:"food_image"`
	UnitPrice       int64  `json:"unit_price"`
	DiscountPercent int    `json:"discount_percent"`
	Qty             int    `json:"qty"`
	Subtotal        int64  `json:"subtotal"`
}

// LineSubtotal prices one snapshot line: unit price times qty minus the
// food's own discount percent, in integer minor units.
func LineSubtotal(unitPrice int64, qty, discountPercent int) int64 {
	return unitPrice * int64(qty) * int64(100-discountPercent) / 100
}
