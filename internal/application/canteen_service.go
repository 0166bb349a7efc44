package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CanteenRepository captures the persistence operations needed by the canteen service.
type CanteenRepository interface {
	CreateMenuItem(ctx context.Context, item MenuItem) (MenuItem, error)
	GetMenuItem(ctx context.Context, collegeID, id string) (MenuItem, error)
	UpdateMenuItem(ctx context.Context, item MenuItem) (MenuItem, error)
	ListMenu(ctx context.Context, collegeID string, availableOnly bool) ([]MenuItem, error)
	CreateOrder(ctx context.Context, order Order) (Order, error)
	GetOrder(ctx context.Context, collegeID, id string) (Order, error)
	UpdateOrderStatus(ctx context.Context, order Order) (Order, error)
	ListUserOrders(ctx context.Context, collegeID, userID string) ([]Order, error)
}

// OrderPayments is the wallet surface the canteen settles orders through.
// Refund compensates a settled debit when order persistence fails afterwards.
// It is satisfied by WalletService.
type OrderPayments interface {
	Spend(ctx context.Context, params WalletEntryParams) (Wallet, WalletTransaction, error)
	Refund(ctx context.Context, params WalletEntryParams) (Wallet, WalletTransaction, error)
}

// CanteenService manages the menu and wallet-settled orders. An order is
// persisted only after its debit succeeds, so every stored order has a
// matching wallet transaction.
type CanteenService struct {
	canteen     CanteenRepository
	payments    OrderPayments
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCanteenService constructs a canteen service with the provided dependencies.
func NewCanteenService(canteen CanteenRepository, payments OrderPayments, idGenerator func() string, now func() time.Time) *CanteenService {
	return NewCanteenServiceWithLogger(canteen, payments, idGenerator, now, nil)
}

// NewCanteenServiceWithLogger constructs a canteen service with a specified logger.
func NewCanteenServiceWithLogger(canteen CanteenRepository, payments OrderPayments, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CanteenService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CanteenService{canteen: canteen, payments: payments, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *CanteenService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CanteenService", operation, attrs...)
}

// AddMenuItem adds a purchasable item. Faculty and administrators only.
func (s *CanteenService) AddMenuItem(ctx context.Context, principal Principal, input MenuItemInput) (item MenuItem, err error) {
	if s == nil || s.canteen == nil {
		err = fmt.Errorf("canteen service not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddMenuItem", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add menu item", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("item_id", item.ID).InfoContext(ctx, "menu item added")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Price <= 0 {
		vErr.add("price", "price must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	item = MenuItem{
		ID:        s.idGenerator(),
		CollegeID: principal.CollegeID,
		Name:      strings.TrimSpace(input.Name),
		Price:     input.Price,
		Available: input.Available,
		UpdatedAt: s.now(),
	}

	item, err = s.canteen.CreateMenuItem(ctx, item)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// UpdateMenuItem changes an item's price or availability. Faculty and
// administrators only.
func (s *CanteenService) UpdateMenuItem(ctx context.Context, principal Principal, itemID string, input MenuItemInput) (item MenuItem, err error) {
	if s == nil || s.canteen == nil {
		err = fmt.Errorf("canteen service not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateMenuItem",
		"principal_id", principal.UserID,
		"item_id", itemID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update menu item", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "menu item updated")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Price <= 0 {
		vErr.add("price", "price must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing MenuItem
	existing, err = s.canteen.GetMenuItem(ctx, principal.CollegeID, itemID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Price = input.Price
	existing.Available = input.Available
	existing.UpdatedAt = s.now()

	item, err = s.canteen.UpdateMenuItem(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListMenu returns the college's menu for any authenticated user. With
// availableOnly set, unavailable items are excluded.
func (s *CanteenService) ListMenu(ctx context.Context, principal Principal, availableOnly bool) ([]MenuItem, error) {
	if s == nil || s.canteen == nil {
		return nil, fmt.Errorf("canteen service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	menu, err := s.canteen.ListMenu(ctx, principal.CollegeID, availableOnly)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return menu, nil
}

// PlaceOrder settles an order against the calling user's wallet and records
// it. The debit happens first; a failed debit leaves no order behind.
func (s *CanteenService) PlaceOrder(ctx context.Context, principal Principal, lines []OrderLineInput) (order Order, err error) {
	if s == nil || s.canteen == nil || s.payments == nil {
		err = fmt.Errorf("canteen service not configured")
		return
	}

	logger := s.loggerWith(ctx, "PlaceOrder",
		"principal_id", principal.UserID,
		"line_count", len(lines),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to place order", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("order_id", order.ID, "total", order.Total).InfoContext(ctx, "order placed")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}

	vErr := &ValidationError{}
	if len(lines) == 0 {
		vErr.add("lines", "at least one item is required")
	}
	for i, line := range lines {
		if line.ItemID == "" {
			vErr.add(fmt.Sprintf("lines[%d].item_id", i), "item id is required")
		}
		if line.Quantity <= 0 {
			vErr.add(fmt.Sprintf("lines[%d].quantity", i), "quantity must be positive")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	orderLines := make([]OrderLine, 0, len(lines))
	var total int64
	for _, line := range lines {
		var item MenuItem
		item, err = s.canteen.GetMenuItem(ctx, principal.CollegeID, line.ItemID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		if !item.Available {
			err = invalidState(fmt.Sprintf("menu item %q is unavailable", item.Name))
			return
		}
		orderLines = append(orderLines, OrderLine{
			ItemID:    item.ID,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
		})
		total += item.Price * int64(line.Quantity)
	}

	orderID := s.idGenerator()
	var debit WalletTransaction
	_, debit, err = s.payments.Spend(ctx, WalletEntryParams{
		Principal:   principal,
		UserID:      principal.UserID,
		Amount:      total,
		Category:    CategoryCanteen,
		Description: "canteen order",
		ReferenceID: &orderID,
	})
	if err != nil {
		return
	}

	order = Order{
		ID:        orderID,
		CollegeID: principal.CollegeID,
		UserID:    principal.UserID,
		Lines:     orderLines,
		Total:     total,
		Status:    OrderPlaced,
		CreatedAt: s.now(),
	}

	order, err = s.canteen.CreateOrder(ctx, order)
	if err != nil {
		err = mapRepoError(err)
		// The debit already applied; hand the money back so the failed
		// order leaves no trace on the balance.
		if _, _, refundErr := s.payments.Refund(ctx, WalletEntryParams{
			Principal:   principal,
			UserID:      principal.UserID,
			Amount:      total,
			Category:    CategoryRefund,
			Description: "canteen order failed",
			ReferenceID: &orderID,
		}); refundErr != nil {
			logger.ErrorContext(ctx, "failed to refund stranded order debit",
				"error", refundErr,
				"order_id", orderID,
				"transaction_id", debit.ID,
			)
		}
		order = Order{}
		return
	}
	return
}

// FulfillOrder marks an order served. Faculty and administrators only.
func (s *CanteenService) FulfillOrder(ctx context.Context, principal Principal, orderID string) (order Order, err error) {
	if s == nil || s.canteen == nil {
		err = fmt.Errorf("canteen service not configured")
		return
	}

	logger := s.loggerWith(ctx, "FulfillOrder",
		"principal_id", principal.UserID,
		"order_id", orderID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to fulfill order", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "order fulfilled")
	}()

	if !principal.IsAuthenticated() {
		err = ErrUnauthenticated
		return
	}
	if !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		err = ErrUnauthorized
		return
	}

	var existing Order
	existing, err = s.canteen.GetOrder(ctx, principal.CollegeID, orderID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.Status != OrderPlaced {
		err = invalidState(fmt.Sprintf("order is %s", existing.Status))
		return
	}

	existing.Status = OrderFulfilled
	order, err = s.canteen.UpdateOrderStatus(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListUserOrders returns the calling user's orders, or another user's for
// faculty and administrators.
func (s *CanteenService) ListUserOrders(ctx context.Context, principal Principal, userID string) ([]Order, error) {
	if s == nil || s.canteen == nil {
		return nil, fmt.Errorf("canteen service not configured")
	}
	if !principal.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if userID == "" {
		userID = principal.UserID
	}
	if userID != principal.UserID && !principal.HasAnyRole(RoleFaculty, RoleAdmin) {
		return nil, ErrUnauthorized
	}

	orders, err := s.canteen.ListUserOrders(ctx, principal.CollegeID, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return orders, nil
}
