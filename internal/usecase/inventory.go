package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/domain/repository"
)

// InventoryUseCase decrements stock for paid orders and reports threshold crossings.
type InventoryUseCase struct {
	products repository.ProductRepository
}

// NewInventoryUseCase constructs InventoryUseCase.
func NewInventoryUseCase(products repository.ProductRepository) *InventoryUseCase {
	return &InventoryUseCase{products: products}
}

// Decrement subtracts ordered quantities. Unknown products are skipped.
// On a store failure the remaining items are not processed and the events
// gathered so far are returned along with the error.
func (u *InventoryUseCase) Decrement(ctx context.Context, items []model.LineItem) ([]model.ThresholdEvent, error) {
	var events []model.ThresholdEvent
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		change, err := u.products.DecrementStock(ctx, it.ProductID, it.Quantity)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				continue
			}
			return events, fmt.Errorf("decrement stock of product %d: %w", it.ProductID, err)
		}
		if ev, ok := classify(*change); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func classify(change model.StockChange) (model.ThresholdEvent, bool) {
	newStock := change.Product.Stock
	switch {
	case newStock == 0:
		return model.ThresholdEvent{Kind: model.ThresholdOut, Product: change.Product}, true
	case newStock > 0 && newStock <= model.LowStockLevel && change.OldStock > model.LowStockLevel:
		return model.ThresholdEvent{Kind: model.ThresholdLow, Product: change.Product}, true
	}
	return model.ThresholdEvent{}, false
}
