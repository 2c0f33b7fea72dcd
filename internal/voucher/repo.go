package voucher

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ByCode(ctx context.Context, shopID, code string) (Voucher, error) {
	var v Voucher
	err := r.DB.QueryRow(ctx, `
		SELECT id, shop_id, code, discount_type, discount_value, min_order_amount,
		       max_discount, start_date, end_date, usage_limit, used_count, is_active
		FROM vouchers WHERE shop_id=$1 AND code=$2`, shopID, code).
		Scan(&v.ID, &v.ShopID, &v.Code, &v.Type, &v.Value, &v.MinOrderAmount,
			&v.MaxDiscount, &v.StartDate, &v.EndDate, &v.UsageLimit, &v.UsedCount, &v.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, apperr.NotFound("voucher")
	}
	if err != nil {
		return Voucher{}, apperr.Internal(err)
	}
	return v, nil
}

// Redeem increments used_count inside the caller's transaction. The
// conditional update is what prevents overselling a limited voucher under
// concurrent checkouts: zero rows affected means the limit was hit by a
// racing order and this checkout must fail.
func Redeem(ctx context.Context, tx pgx.Tx, voucherID string) error {
	ct, err := tx.Exec(ctx, `
		UPDATE vouchers SET used_count = used_count + 1
		WHERE id=$1 AND (usage_limit = 0 OR used_count < usage_limit)`, voucherID)
	if err != nil {
		return apperr.Internal(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.Conflict("voucher usage limit reached")
	}
	return nil
}

// Release compensates a Redeem when the referencing order is cancelled.
// Floored at zero so a stray double-release can never go negative.
func Release(ctx context.Context, tx pgx.Tx, voucherID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE vouchers SET used_count = used_count - 1
		WHERE id=$1 AND used_count > 0`, voucherID)
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
