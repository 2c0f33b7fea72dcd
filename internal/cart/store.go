package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/catalog"
)

// Storage is the persistence port for cart rows. The pg adapter translates
// unique-violation races on the active-row index into CONFLICT.
type Storage interface {
	Get(ctx context.Context, itemID string) (Item, error)
	ActiveByUser(ctx context.Context, userID string) ([]Item, error)
	Insert(ctx context.Context, it Item) error
	UpdateQtyNote(ctx context.Context, itemID string, qty int, note string) error
	SetStatus(ctx context.Context, itemID string, st Status) error
}

type Store struct {
	Items   Storage
	Catalog catalog.Provider
}

// AddItem enforces the single-active-shop invariant and merges repeat adds
// into the existing active row.
func (s *Store) AddItem(ctx context.Context, userID, shopID, foodID string, qty int, note string) (Item, error) {
	if qty < 1 {
		return Item{}, apperr.InvalidState("qty must be at least 1")
	}
	if _, err := s.Catalog.Shop(ctx, shopID); err != nil {
		return Item{}, err
	}
	food, err := s.Catalog.Food(ctx, foodID)
	if err != nil {
		return Item{}, err
	}
	if food.ShopID != shopID {
		return Item{}, apperr.NotFound("food")
	}
	if !food.IsAvailable {
		return Item{}, apperr.Unavailable("%s is currently unavailable", food.Name)
	}

	active, err := s.Items.ActiveByUser(ctx, userID)
	if err != nil {
		return Item{}, err
	}
	for _, it := range active {
		if it.ShopID != shopID {
			return Item{}, apperr.CrossShopConflict("cart already holds items from another shop")
		}
	}
	for _, it := range active {
		if it.FoodID == foodID {
			newQty := it.Qty + qty
			if note == "" {
				note = it.Note
			}
			if err := s.Items.UpdateQtyNote(ctx, it.ID, newQty, note); err != nil {
				return Item{}, err
			}
			it.Qty = newQty
			it.Note = note
			return it, nil
		}
	}

	it := Item{
		ID:     uuid.NewString(),
		UserID: userID,
		ShopID: shopID,
		FoodID: foodID,
		Qty:    qty,
		Note:   note,
		Status: StatusActive,
	}
	if err := s.Items.Insert(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// ActiveCart returns the user's active items. Items whose food was deleted
// or went unavailable since they were added are swept to REMOVED and reported
// back. Any other catalog failure aborts the read untouched; a transient
// error must never consume a valid item.
func (s *Store) ActiveCart(ctx context.Context, userID string) (View, error) {
	active, err := s.Items.ActiveByUser(ctx, userID)
	if err != nil {
		return View{}, err
	}

	var v View
	for _, it := range active {
		food, err := s.Catalog.Food(ctx, it.FoodID)
		if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
			return View{}, err
		}
		if err != nil || !food.IsAvailable {
			if err := s.Items.SetStatus(ctx, it.ID, StatusRemoved); err != nil {
				return View{}, err
			}
			v.RemovedItemIDs = append(v.RemovedItemIDs, it.ID)
			if food.Name != "" {
				v.RemovedFoodNames = append(v.RemovedFoodNames, food.Name)
			}
			continue
		}
		v.ShopID = it.ShopID
		v.Items = append(v.Items, it)
	}
	return v, nil
}

// UpdateItem changes qty and/or note of an active item. qty <= 0 removes the
// item instead of deleting the row.
func (s *Store) UpdateItem(ctx context.Context, userID, itemID string, qty *int, note *string) (Item, error) {
	it, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return Item{}, err
	}
	if it.Status != StatusActive {
		return Item{}, apperr.InvalidState("cart item is %s", it.Status)
	}

	if qty != nil && *qty <= 0 {
		if err := s.Items.SetStatus(ctx, it.ID, StatusRemoved); err != nil {
			return Item{}, err
		}
		it.Status = StatusRemoved
		return it, nil
	}

	newQty := it.Qty
	if qty != nil {
		newQty = *qty
	}
	newNote := it.Note
	if note != nil {
		newNote = *note
	}
	if err := s.Items.UpdateQtyNote(ctx, it.ID, newQty, newNote); err != nil {
		return Item{}, err
	}
	it.Qty = newQty
	it.Note = newNote
	return it, nil
}

func (s *Store) RemoveItem(ctx context.Context, userID, itemID string) error {
	it, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if it.Status != StatusActive {
		return apperr.InvalidState("cart item is %s", it.Status)
	}
	return s.Items.SetStatus(ctx, it.ID, StatusRemoved)
}

func (s *Store) owned(ctx context.Context, userID, itemID string) (Item, error) {
	it, err := s.Items.Get(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if it.UserID != userID {
		return Item{}, apperr.Forbidden("cart item belongs to another user")
	}
	return it, nil
}
