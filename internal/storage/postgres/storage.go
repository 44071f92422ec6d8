package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storebot/internal/domain/errors"
	"github.com/polkiloo/storebot/internal/domain/model"
	"github.com/polkiloo/storebot/internal/domain/repository"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type pendingRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

type cartRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Pending() repository.PendingRepository {
	return &pendingRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) Carts() repository.CartRepository {
	return &cartRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS order_numbers START WITH 1001`,
		`CREATE TABLE IF NOT EXISTS pending_orders (
            id BIGSERIAL PRIMARY KEY,
            number BIGINT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL,
            items JSONB NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            delivery TEXT,
            checkout_type TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            payment_id TEXT,
            customer JSONB NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            number BIGINT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL,
            items JSONB NOT NULL,
            total NUMERIC(14, 2) NOT NULL,
            address TEXT NOT NULL DEFAULT '',
            delivery TEXT,
            status TEXT NOT NULL,
            tracking_link TEXT,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            payment_id TEXT UNIQUE NOT NULL,
            checkout_type TEXT NOT NULL DEFAULT 'single',
            customer JSONB NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0)
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            user_id BIGINT NOT NULL,
            product_id BIGINT NOT NULL,
            qty INTEGER NOT NULL DEFAULT 1,
            PRIMARY KEY (user_id, product_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_pending_awaiting ON pending_orders(created_at) WHERE payment_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- row encoding ---

type itemRecord struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type customerRecord struct {
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

func encodeItems(items []model.LineItem) ([]byte, error) {
	records := make([]itemRecord, 0, len(items))
	for _, it := range items {
		records = append(records, itemRecord{ProductID: it.ProductID, Name: it.Name, Qty: it.Quantity, Price: it.Price})
	}
	return json.Marshal(records)
}

func decodeItems(raw []byte) ([]model.LineItem, error) {
	var records []itemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]model.LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, model.LineItem{ProductID: r.ProductID, Name: r.Name, Quantity: r.Qty, Price: r.Price})
	}
	return items, nil
}

func encodeCustomer(c model.Customer) ([]byte, error) {
	return json.Marshal(customerRecord{Username: c.Username, FullName: c.FullName, Phone: c.Phone, Email: c.Email})
}

func decodeCustomer(userID int64, raw []byte) (model.Customer, error) {
	var r customerRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.Customer{}, fmt.Errorf("decode customer: %w", err)
	}
	return model.Customer{UserID: userID, Username: r.Username, FullName: r.FullName, Phone: r.Phone, Email: r.Email}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const pendingColumns = `id, number, user_id, items, address, delivery, checkout_type, created_at, payment_id, customer`

func scanPending(row rowScanner) (*model.PendingOrder, error) {
	var (
		p        model.PendingOrder
		items    []byte
		customer []byte
		kind     string
	)
	if err := row.Scan(&p.ID, &p.Number, &p.UserID, &items, &p.Address, &p.Delivery, &kind, &p.CreatedAt, &p.PaymentID, &customer); err != nil {
		return nil, err
	}
	p.Type = model.CheckoutType(kind)
	var err error
	if p.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	if p.Customer, err = decodeCustomer(p.UserID, customer); err != nil {
		return nil, err
	}
	return &p, nil
}

const orderColumns = `id, number, user_id, items, total::text, address, delivery, status, tracking_link, created_at, updated_at, payment_id, checkout_type, customer`

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o        model.Order
		items    []byte
		customer []byte
		total    string
		status   string
		kind     string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &items, &total, &o.Address, &o.Delivery, &status, &o.TrackingLink, &o.CreatedAt, &o.UpdatedAt, &o.PaymentID, &kind, &customer); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	o.Type = model.CheckoutType(kind)
	var err error
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("decode total: %w", err)
	}
	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	if o.Customer, err = decodeCustomer(o.UserID, customer); err != nil {
		return nil, err
	}
	return &o, nil
}

// --- PendingRepository implementation ---

func (r *pendingRepository) Create(ctx context.Context, draft model.PendingDraft) (*model.PendingOrder, error) {
	items, err := encodeItems(draft.Items)
	if err != nil {
		return nil, err
	}
	customer, err := encodeCustomer(draft.Customer)
	if err != nil {
		return nil, err
	}

	const query = `INSERT INTO pending_orders (number, user_id, items, address, delivery, checkout_type, customer)
                   VALUES (nextval('order_numbers'), $1, $2, $3, $4, $5, $6)
                   RETURNING id, number, created_at`
	p := model.PendingOrder{
		UserID:   draft.UserID,
		Items:    draft.Items,
		Address:  draft.Address,
		Delivery: draft.Delivery,
		Type:     draft.Type,
		Customer: draft.Customer,
	}
	err = r.storage.pool.QueryRow(ctx, query, draft.UserID, items, draft.Address, draft.Delivery, string(draft.Type), customer).
		Scan(&p.ID, &p.Number, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pendingRepository) Get(ctx context.Context, id int64) (*model.PendingOrder, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_orders WHERE id=$1`
	p, err := scanPending(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *pendingRepository) AttachPayment(ctx context.Context, id int64, paymentID string) error {
	const update = `UPDATE pending_orders SET payment_id=$2 WHERE id=$1 AND payment_id IS NULL`
	tag, err := r.storage.pool.Exec(ctx, update, id, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current *string
	err = r.storage.pool.QueryRow(ctx, `SELECT payment_id FROM pending_orders WHERE id=$1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	if current != nil && *current == paymentID {
		return nil
	}
	return domainErrors.ErrAlreadyExists
}

func (r *pendingRepository) ListAwaitingPayment(ctx context.Context) ([]model.PendingOrder, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_orders
              WHERE payment_id IS NOT NULL
              ORDER BY created_at, id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PendingOrder
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *pendingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM pending_orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) CreateFromPending(ctx context.Context, pendingID int64, now time.Time) (*model.Order, bool, error) {
	var (
		result  *model.Order
		created bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		pending, err := scanPending(tx.QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_orders WHERE id=$1 FOR UPDATE`, pendingID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if !pending.HasPayment() {
			return domainErrors.ErrPaymentNotAttached
		}

		existing, err := getOrderByPaymentID(ctx, tx, *pending.PaymentID)
		switch {
		case err == nil:
			result = existing
		case errors.Is(err, domainErrors.ErrNotFound):
			order := model.OrderFromPending(*pending, now)
			inserted, err := insertOrder(ctx, tx, &order)
			if err != nil {
				return err
			}
			if inserted {
				result, created = &order, true
			} else if result, err = getOrderByPaymentID(ctx, tx, order.PaymentID); err != nil {
				return err
			}
		default:
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM pending_orders WHERE id=$1`, pendingID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, order *model.Order) (bool, error) {
	items, err := encodeItems(order.Items)
	if err != nil {
		return false, err
	}
	customer, err := encodeCustomer(order.Customer)
	if err != nil {
		return false, err
	}

	const query = `INSERT INTO orders (number, user_id, items, total, address, delivery, status, created_at, updated_at, payment_id, checkout_type, customer)
                   VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12)
                   ON CONFLICT (payment_id) DO NOTHING
                   RETURNING id`
	err = tx.QueryRow(ctx, query,
		order.Number, order.UserID, items, order.Total.StringFixed(2), order.Address, order.Delivery,
		string(order.Status), order.CreatedAt, order.UpdatedAt, order.PaymentID, string(order.Type), customer,
	).Scan(&order.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getOrderByPaymentID(ctx context.Context, q queryRower, paymentID string) (*model.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_id=$1`, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByPaymentID(ctx context.Context, paymentID string) (*model.Order, error) {
	return getOrderByPaymentID(ctx, r.storage.pool, paymentID)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) DecrementStock(ctx context.Context, productID int64, qty int) (*model.StockChange, error) {
	const query = `WITH prev AS (SELECT id, stock FROM products WHERE id=$1 FOR UPDATE)
                   UPDATE products p SET stock = GREATEST(0, prev.stock - $2)
                   FROM prev WHERE p.id = prev.id
                   RETURNING p.id, p.name, p.stock, prev.stock`
	var change model.StockChange
	err := r.storage.pool.QueryRow(ctx, query, productID, qty).
		Scan(&change.Product.ID, &change.Product.Name, &change.Product.Stock, &change.OldStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &change, nil
}

func (r *productRepository) Get(ctx context.Context, productID int64) (*model.Product, error) {
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, `SELECT id, name, stock FROM products WHERE id=$1`, productID).Scan(&p.ID, &p.Name, &p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- CartRepository implementation ---

func (r *cartRepository) Clear(ctx context.Context, userID int64) error {
	_, err := r.storage.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
