package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
)

const uniqueViolation = "23505"

// PG implements Storage over the cart_items table. The partial unique index
// uq_cart_items_active is the safeguard against duplicate active rows under
// concurrent adds; violations surface as CONFLICT so callers may retry.
type PG struct{ DB *pgxpool.Pool }

func (p *PG) Get(ctx context.Context, itemID string) (Item, error) {
	var it Item
	err := p.DB.QueryRow(ctx, `
		SELECT id, user_id, shop_id, food_id, qty, note, status, created_at, updated_at
		FROM cart_items WHERE id=$1`, itemID).
		Scan(&it.ID, &it.UserID, &it.ShopID, &it.FoodID, &it.Qty, &it.Note, &it.Status, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, apperr.NotFound("cart item")
	}
	if err != nil {
		return Item{}, apperr.Internal(err)
	}
	return it, nil
}

func (p *PG) ActiveByUser(ctx context.Context, userID string) ([]Item, error) {
	rows, err := p.DB.Query(ctx, `
		SELECT id, user_id, shop_id, food_id, qty, note, status, created_at, updated_at
		FROM cart_items WHERE user_id=$1 AND status='ACTIVE'
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ShopID, &it.FoodID, &it.Qty, &it.Note, &it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (p *PG) Insert(ctx context.Context, it Item) error {
	_, err := p.DB.Exec(ctx, `
		INSERT INTO cart_items(id, user_id, shop_id, food_id, qty, note, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		it.ID, it.UserID, it.ShopID, it.FoodID, it.Qty, it.Note, it.Status)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("active cart item already exists for this food")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (p *PG) UpdateQtyNote(ctx context.Context, itemID string, qty int, note string) error {
	ct, err := p.DB.Exec(ctx, `
		UPDATE cart_items SET qty=$2, note=$3, updated_at=now()
		WHERE id=$1 AND status='ACTIVE'`, itemID, qty, note)
	if err != nil {
		return apperr.Internal(err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.InvalidState("cart item is no longer active")
	}
	return nil
}

func (p *PG) SetStatus(ctx context.Context, itemID string, st Status) error {
	_, err := p.DB.Exec(ctx, `
		UPDATE cart_items SET status=$2, updated_at=now() WHERE id=$1`, itemID, st)
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
