package voucher

import (
	"fmt"
	"time"
)

type Type string

const (
	TypePercent Type = "PERCENT"
	TypeFixed   Type = "FIXED"
)

type Voucher struct {
	ID             string    `json:"id"`
	ShopID         string    `json:"shop_id"`
	Code           string    `json:"code"`
	Type           Type      `json:"discount_type"`
	Value          int64     `json:"discount_value"`
	MinOrderAmount int64     `json:"min_order_amount"`
	MaxDiscount    int64     `json:"max_discount"` // 0 = no cap; PERCENT only
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	UsageLimit     int       `json:"usage_limit"` // 0 = unlimited
	UsedCount      int       `json:"used_count"`
	IsActive       bool      `json:"is_active"`
}

type Result struct {
	Applicable bool     `json:"applicable"`
	Discount   int64    `json:"discount"`
	Reasons    []string `json:"reasons,omitempty"`
}

// Evaluate checks applicability and computes the discount for orderAmount.
// All rules must pass; reasons accumulate so the caller can surface every
// failure at once. The discount never applies to shipping and never exceeds
// the order amount.
func Evaluate(v Voucher, orderAmount int64, now time.Time) Result {
	var reasons []string

	if !v.IsActive {
		reasons = append(reasons, "voucher is inactive")
	}
	if now.Before(v.StartDate) {
		reasons = append(reasons, "voucher is not valid yet")
	}
	if now.After(v.EndDate) {
		reasons = append(reasons, "voucher has expired")
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		reasons = append(reasons, "voucher usage limit reached")
	}
	if orderAmount < v.MinOrderAmount {
		reasons = append(reasons, fmt.Sprintf("order amount below minimum of %d", v.MinOrderAmount))
	}
	if len(reasons) > 0 {
		return Result{Reasons: reasons}
	}

	var discount int64
	switch v.Type {
	case TypePercent:
		discount = orderAmount * v.Value / 100
		if v.MaxDiscount > 0 && discount > v.MaxDiscount {
			discount = v.MaxDiscount
		}
	case TypeFixed:
		discount = v.Value
	default:
		return Result{Reasons: []string{"unknown discount type"}}
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	return Result{Applicable: true, Discount: discount}
}
