package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Food(ctx context.Context, foodID string) (Food, error) {
	var f Food
	err := r.DB.QueryRow(ctx, `
		SELECT id, shop_id, name, image_url, price, discount_percent, is_available
		FROM foods WHERE id=$1`, foodID).
		Scan(&f.ID, &f.ShopID, &f.Name, &f.ImageURL, &f.Price, &f.DiscountPercent, &f.IsAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return Food{}, apperr.NotFound("food")
	}
	if err != nil {
		return Food{}, apperr.Internal(err)
	}
	return f, nil
}

func (r *Repo) Shop(ctx context.Context, shopID string) (Shop, error) {
	var s Shop
	err := r.DB.QueryRow(ctx, `SELECT id, name, is_open FROM shops WHERE id=$1`, shopID).
		Scan(&s.ID, &s.Name, &s.IsOpen)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, apperr.NotFound("shop")
	}
	if err != nil {
		return Shop{}, apperr.Internal(err)
	}
	return s, nil
}

func (r *Repo) ShopManagers(ctx context.Context, shopID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT staff_id FROM shop_staff WHERE shop_id=$1`, shopID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repo) IsManager(ctx context.Context, shopID, staffID string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM shop_staff WHERE shop_id=$1 AND staff_id=$2`,
		shopID, staffID).Scan(&n)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return n > 0, nil
}

func (r *Repo) StaffShops(ctx context.Context, staffID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT shop_id FROM shop_staff WHERE staff_id=$1`, staffID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
