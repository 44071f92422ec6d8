package repository

import (
	"context"

	"github.com/polkiloo/storebot/internal/domain/model"
)

// ProductRepository exposes stock mutations.
type ProductRepository interface {
	// DecrementStock atomically lowers stock by qty without going below zero.
	DecrementStock(ctx context.Context, productID int64, qty int) (*model.StockChange, error)
	Get(ctx context.Context, productID int64) (*model.Product, error)
}

// CartRepository exposes the part of cart storage used after payment.
type CartRepository interface {
	Clear(ctx context.Context, userID int64) error
}
