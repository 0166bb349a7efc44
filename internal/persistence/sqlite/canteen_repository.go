package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// CanteenRepository implements persistence.CanteenRepository using SQLite.
type CanteenRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCanteenRepository creates a new SQLite canteen repository.
func NewCanteenRepository(pool *ConnectionPool) *CanteenRepository {
	return &CanteenRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const menuItemColumns = `id, college_id, name, price, available, updated_at`
const orderColumns = `id, college_id, user_id, total, status, created_at`

// CreateMenuItem inserts a menu row.
func (r *CanteenRepository) CreateMenuItem(ctx context.Context, item persistence.MenuItem) error {
	if item.ID == "" || item.CollegeID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO menu_items (`+menuItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.CollegeID,
		item.Name,
		item.Price,
		item.Available,
		formatTime(item.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetMenuItem retrieves a menu row by ID within a college.
func (r *CanteenRepository) GetMenuItem(ctx context.Context, collegeID, id string) (persistence.MenuItem, error) {
	if id == "" {
		return persistence.MenuItem{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	return r.scanMenuItem(row)
}

// UpdateMenuItem updates a menu row's mutable fields.
func (r *CanteenRepository) UpdateMenuItem(ctx context.Context, item persistence.MenuItem) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE menu_items
		SET name = ?, price = ?, available = ?, updated_at = ?
		WHERE id = ? AND college_id = ?
	`,
		item.Name,
		item.Price,
		item.Available,
		formatTime(item.UpdatedAt),
		item.ID,
		item.CollegeID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListMenu returns a college's menu ordered by name.
func (r *CanteenRepository) ListMenu(ctx context.Context, collegeID string, availableOnly bool) ([]persistence.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE college_id = ?
		ORDER BY name ASC, id ASC
	`
	if availableOnly {
		query = `
			SELECT ` + menuItemColumns + `
			FROM menu_items
			WHERE college_id = ? AND available = 1
			ORDER BY name ASC, id ASC
		`
	}

	rows, err := r.helper.Query(ctx, query, collegeID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var items []persistence.MenuItem
	for rows.Next() {
		item, err := r.scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return items, nil
}

// CreateOrder inserts the order and its lines in one transaction.
func (r *CanteenRepository) CreateOrder(ctx context.Context, order persistence.Order) error {
	if order.ID == "" || order.UserID == "" || len(order.Lines) == 0 {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			order.ID,
			order.CollegeID,
			order.UserID,
			order.Total,
			order.Status,
			formatTime(order.CreatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		for _, line := range order.Lines {
			_, err = r.helper.ExecTx(tx, `
				INSERT INTO order_lines (order_id, item_id, quantity, unit_price)
				VALUES (?, ?, ?, ?)
			`, order.ID, line.ItemID, line.Quantity, line.UnitPrice)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// GetOrder retrieves an order with its lines.
func (r *CanteenRepository) GetOrder(ctx context.Context, collegeID, id string) (persistence.Order, error) {
	if id == "" {
		return persistence.Order{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = ? AND college_id = ?
	`, id, collegeID)

	order, err := r.scanOrder(row)
	if err != nil {
		return persistence.Order{}, err
	}
	return r.attachLines(ctx, order)
}

// UpdateOrderStatus updates an order's status.
func (r *CanteenRepository) UpdateOrderStatus(ctx context.Context, collegeID, orderID, status string) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE orders SET status = ? WHERE id = ? AND college_id = ?
	`, status, orderID, collegeID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListUserOrders returns a user's orders with lines, newest first.
func (r *CanteenRepository) ListUserOrders(ctx context.Context, collegeID, userID string) ([]persistence.Order, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE college_id = ? AND user_id = ?
		ORDER BY created_at DESC, id DESC
	`, collegeID, userID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var orders []persistence.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range orders {
		if orders[i], err = r.attachLines(ctx, orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *CanteenRepository) attachLines(ctx context.Context, order persistence.Order) (persistence.Order, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT item_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = ?
		ORDER BY item_id ASC
	`, order.ID)
	if err != nil {
		return persistence.Order{}, r.mapper.MapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var line persistence.OrderLine
		if err := rows.Scan(&line.ItemID, &line.Quantity, &line.UnitPrice); err != nil {
			return persistence.Order{}, r.mapper.MapError(err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return persistence.Order{}, r.mapper.MapError(err)
	}
	return order, nil
}

func (r *CanteenRepository) scanMenuItem(row rowScanner) (persistence.MenuItem, error) {
	var item persistence.MenuItem
	var updatedAtStr string

	err := row.Scan(
		&item.ID,
		&item.CollegeID,
		&item.Name,
		&item.Price,
		&item.Available,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.MenuItem{}, r.mapper.MapError(err)
	}

	if item.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.MenuItem{}, err
	}
	return item, nil
}

func (r *CanteenRepository) scanOrder(row rowScanner) (persistence.Order, error) {
	var order persistence.Order
	var createdAtStr string

	err := row.Scan(
		&order.ID,
		&order.CollegeID,
		&order.UserID,
		&order.Total,
		&order.Status,
		&createdAtStr,
	)
	if err != nil {
		return persistence.Order{}, r.mapper.MapError(err)
	}

	if order.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Order{}, err
	}
	return order, nil
}
