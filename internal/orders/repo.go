package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/voucher"
)

const uniqueViolation = "23505"

// ErrCodeTaken signals a generated order code collided with an existing one.
// Checkout retries with a fresh code; nothing was committed.
var ErrCodeTaken = errors.New("order code already taken")

type Repo struct{ DB *pgxpool.Pool }

// Create materializes a checkout in one transaction: order row, detail
// snapshots, consumed cart items flipped to CHECKOUT, and the voucher
// redeemed. Partial application is impossible; any failure rolls back all of
// it.
func (r *Repo) Create(ctx context.Context, o Order, details []Detail, cartItemIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Internal(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, code, user_id, shop_id, delivery_address, note,
		                   subtotal, discount, shipping_fee, total, voucher_id,
		                   status, payment_method, payment_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		o.ID, o.Code, o.UserID, o.ShopID, o.DeliveryAddress, o.Note,
		o.Subtotal, o.Discount, o.ShippingFee, o.Total, o.VoucherID,
		o.Status, o.PaymentMethod, o.PaymentStatus)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrCodeTaken
	}
	if err != nil {
		return apperr.Internal(err)
	}

	for _, d := range details {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_details(id, order_id, food_id, food_name, food_image,
			                          unit_price, discount_percent, qty, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			d.ID, d.OrderID, d.FoodID, d.FoodName, d.FoodImage,
			d.UnitPrice, d.DiscountPercent, d.Qty, d.Subtotal); err != nil {
			return apperr.Internal(err)
		}
	}

	// Re-verify the cart under this transaction: every consumed item must
	// still be ACTIVE, or a concurrent checkout got there first.
	ct, err := tx.Exec(ctx, `
		UPDATE cart_items SET status='CHECKOUT', updated_at=now()
		WHERE id = ANY($1) AND status='ACTIVE'`, cartItemIDs)
	if err != nil {
		return apperr.Internal(err)
	}
	if int(ct.RowsAffected()) != len(cartItemIDs) {
		return apperr.Conflict("cart changed during checkout")
	}

	if o.VoucherID != nil {
		if err := voucher.Redeem(ctx, tx, *o.VoucherID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

const orderColumns = `id, code, user_id, shop_id, delivery_address, note,
	subtotal, discount, shipping_fee, total, voucher_id,
	status, payment_method, payment_status, cancel_reason, cancelled_by,
	created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Code, &o.UserID, &o.ShopID, &o.DeliveryAddress, &o.Note,
		&o.Subtotal, &o.Discount, &o.ShippingFee, &o.Total, &o.VoucherID,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.CancelReason, &o.CancelledBy,
		&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *Repo) ByCode(ctx context.Context, code string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE code=$1`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order")
	}
	if err != nil {
		return Order{}, apperr.Internal(err)
	}
	return o, nil
}

func (r *Repo) Details(ctx context.Context, orderID string) ([]Detail, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, food_id, food_name, food_image,
		       unit_price, discount_percent, qty, subtotal
		FROM order_details WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.FoodID, &d.FoodName, &d.FoodImage,
			&d.UnitPrice, &d.DiscountPercent, &d.Qty, &d.Subtotal); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Transition runs one state-machine step under a row lock. apply mutates the
// order in place and reports whether an attached voucher must be released
// (compensating the checkout-time redeem). Errors from apply roll everything
// back untouched.
func (r *Repo) Transition(ctx context.Context, code string, apply func(o *Order) (releaseVoucher bool, err error)) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, apperr.Internal(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE code=$1 FOR UPDATE`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, apperr.NotFound("order")
	}
	if err != nil {
		return Order{}, apperr.Internal(err)
	}

	release, err := apply(&o)
	if err != nil {
		return Order{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status=$2, payment_status=$3, cancel_reason=$4,
		                  cancelled_by=$5, updated_at=now()
		WHERE code=$1`,
		code, o.Status, o.PaymentStatus, o.CancelReason, o.CancelledBy)
	if err != nil {
		return Order{}, apperr.Internal(err)
	}

	if release && o.VoucherID != nil {
		if err := voucher.Release(ctx, tx, *o.VoucherID); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, apperr.Internal(err)
	}
	return o, nil
}

// OpenByShops lists the orders still needing staff attention across the given
// shops, oldest first. Feeds the snapshot pushed on websocket register.
func (r *Repo) OpenByShops(ctx context.Context, shopIDs []string) ([]Order, error) {
	if len(shopIDs) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE shop_id = ANY($1) AND status IN ('PENDING','CONFIRMED','PREPARING','SHIPPING')
		ORDER BY created_at`, shopIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
