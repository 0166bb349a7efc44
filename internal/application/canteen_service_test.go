package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCanteenService_AddMenuItem(t *testing.T) {
	t.Parallel()

	t.Run("adds a purchasable item", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		service := NewCanteenService(canteen, nil, func() string { return "item-1" }, nil)

		item, err := service.AddMenuItem(context.Background(), facultyPrincipal(), MenuItemInput{
			Name:      "  Masala Dosa  ",
			Price:     40,
			Available: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Name != "Masala Dosa" {
			t.Fatalf("expected trimmed name, got %q", item.Name)
		}
	})

	t.Run("requires faculty or admin", func(t *testing.T) {
		t.Parallel()

		service := NewCanteenService(newCanteenRepositoryStub(), nil, nil, nil)

		_, err := service.AddMenuItem(context.Background(), studentPrincipal("user-1"), MenuItemInput{Name: "Tea", Price: 10})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates name and price", func(t *testing.T) {
		t.Parallel()

		service := NewCanteenService(newCanteenRepositoryStub(), nil, nil, nil)

		_, err := service.AddMenuItem(context.Background(), facultyPrincipal(), MenuItemInput{Name: " ", Price: 0})
		vErr := &ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected 2 field errors, got %v", vErr.FieldErrors)
		}
	})
}

func TestCanteenService_PlaceOrder(t *testing.T) {
	t.Parallel()

	t.Run("debits the wallet then records the order", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedItem(MenuItem{ID: "item-1", CollegeID: "college-1", Name: "Dosa", Price: 40, Available: true})
		canteen.seedItem(MenuItem{ID: "item-2", CollegeID: "college-1", Name: "Tea", Price: 10, Available: true})
		payments := &orderPaymentsStub{}
		now := time.Date(2026, time.July, 6, 12, 30, 0, 0, time.UTC)
		service := NewCanteenService(canteen, payments, func() string { return "order-1" }, func() time.Time { return now })

		order, err := service.PlaceOrder(context.Background(), studentPrincipal("user-1"), []OrderLineInput{
			{ItemID: "item-1", Quantity: 2},
			{ItemID: "item-2", Quantity: 1},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Total != 90 {
			t.Fatalf("expected total 90, got %d", order.Total)
		}
		if order.Status != OrderPlaced {
			t.Fatalf("expected placed status, got %q", order.Status)
		}
		if len(payments.spends) != 1 {
			t.Fatalf("expected one debit, got %d", len(payments.spends))
		}
		spend := payments.spends[0]
		if spend.Amount != 90 || spend.Category != CategoryCanteen {
			t.Fatalf("unexpected debit params: %+v", spend)
		}
		if spend.ReferenceID == nil || *spend.ReferenceID != "order-1" {
			t.Fatalf("expected order reference, got %v", spend.ReferenceID)
		}
		if len(order.Lines) != 2 || order.Lines[0].UnitPrice != 40 {
			t.Fatalf("expected priced lines, got %+v", order.Lines)
		}
	})

	t.Run("a failed debit leaves no order behind", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedItem(MenuItem{ID: "item-1", CollegeID: "college-1", Name: "Dosa", Price: 40, Available: true})
		payments := &orderPaymentsStub{err: ErrInsufficientBalance}
		service := NewCanteenService(canteen, payments, func() string { return "order-1" }, nil)

		_, err := service.PlaceOrder(context.Background(), studentPrincipal("user-1"), []OrderLineInput{{ItemID: "item-1", Quantity: 1}})
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
		if len(canteen.ordersByID) != 0 {
			t.Fatalf("expected no stored orders, got %d", len(canteen.ordersByID))
		}
	})

	t.Run("a failed order insert refunds the debit", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedItem(MenuItem{ID: "item-1", CollegeID: "college-1", Name: "Dosa", Price: 40, Available: true})
		canteen.createOrderErr = errors.New("disk full")
		payments := &orderPaymentsStub{}
		service := NewCanteenService(canteen, payments, func() string { return "order-1" }, nil)

		_, err := service.PlaceOrder(context.Background(), studentPrincipal("user-1"), []OrderLineInput{{ItemID: "item-1", Quantity: 1}})
		if err == nil {
			t.Fatal("expected an error when the order insert fails")
		}
		if len(payments.refunds) != 1 {
			t.Fatalf("expected one refund, got %d", len(payments.refunds))
		}
		refund := payments.refunds[0]
		if refund.Amount != 40 || refund.Category != CategoryRefund {
			t.Fatalf("unexpected refund params: %+v", refund)
		}
		if refund.ReferenceID == nil || *refund.ReferenceID != "order-1" {
			t.Fatalf("expected the failed order referenced, got %v", refund.ReferenceID)
		}
		if len(canteen.ordersByID) != 0 {
			t.Fatalf("expected no stored orders, got %d", len(canteen.ordersByID))
		}
	})

	t.Run("rejects unavailable items", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedItem(MenuItem{ID: "item-1", CollegeID: "college-1", Name: "Dosa", Price: 40, Available: false})
		service := NewCanteenService(canteen, &orderPaymentsStub{}, nil, nil)

		_, err := service.PlaceOrder(context.Background(), studentPrincipal("user-1"), []OrderLineInput{{ItemID: "item-1", Quantity: 1}})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("rejects empty and malformed lines", func(t *testing.T) {
		t.Parallel()

		service := NewCanteenService(newCanteenRepositoryStub(), &orderPaymentsStub{}, nil, nil)

		_, err := service.PlaceOrder(context.Background(), studentPrincipal("user-1"), nil)
		vErr := &ValidationError{}
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}

		_, err = service.PlaceOrder(context.Background(), studentPrincipal("user-1"), []OrderLineInput{{ItemID: "", Quantity: 0}})
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected 2 field errors, got %v", vErr.FieldErrors)
		}
	})
}

func TestCanteenService_FulfillOrder(t *testing.T) {
	t.Parallel()

	t.Run("marks a placed order served", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedOrder(Order{ID: "order-1", CollegeID: "college-1", UserID: "user-1", Status: OrderPlaced})
		service := NewCanteenService(canteen, nil, nil, nil)

		order, err := service.FulfillOrder(context.Background(), facultyPrincipal(), "order-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.Status != OrderFulfilled {
			t.Fatalf("expected fulfilled status, got %q", order.Status)
		}
	})

	t.Run("rejects fulfilling twice", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedOrder(Order{ID: "order-1", CollegeID: "college-1", UserID: "user-1", Status: OrderFulfilled})
		service := NewCanteenService(canteen, nil, nil, nil)

		_, err := service.FulfillOrder(context.Background(), facultyPrincipal(), "order-1")
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("requires faculty or admin", func(t *testing.T) {
		t.Parallel()

		service := NewCanteenService(newCanteenRepositoryStub(), nil, nil, nil)

		_, err := service.FulfillOrder(context.Background(), studentPrincipal("user-1"), "order-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestCanteenService_ListMenu(t *testing.T) {
	t.Parallel()

	t.Run("filters to available items on request", func(t *testing.T) {
		t.Parallel()

		canteen := newCanteenRepositoryStub()
		canteen.seedItem(MenuItem{ID: "item-1", CollegeID: "college-1", Name: "Dosa", Price: 40, Available: true})
		canteen.seedItem(MenuItem{ID: "item-2", CollegeID: "college-1", Name: "Tea", Price: 10, Available: false})
		service := NewCanteenService(canteen, nil, nil, nil)

		menu, err := service.ListMenu(context.Background(), studentPrincipal("user-1"), true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(menu) != 1 || menu[0].ID != "item-1" {
			t.Fatalf("expected only the available item, got %+v", menu)
		}
	})
}

type canteenRepositoryStub struct {
	itemsByID      map[string]MenuItem
	ordersByID     map[string]Order
	itemOrder      []string
	createOrderErr error
}

func newCanteenRepositoryStub() *canteenRepositoryStub {
	return &canteenRepositoryStub{
		itemsByID:  map[string]MenuItem{},
		ordersByID: map[string]Order{},
	}
}

func (s *canteenRepositoryStub) seedItem(item MenuItem) {
	if _, ok := s.itemsByID[item.ID]; !ok {
		s.itemOrder = append(s.itemOrder, item.ID)
	}
	s.itemsByID[item.ID] = item
}

func (s *canteenRepositoryStub) seedOrder(order Order) {
	s.ordersByID[order.ID] = order
}

func (s *canteenRepositoryStub) CreateMenuItem(_ context.Context, item MenuItem) (MenuItem, error) {
	s.seedItem(item)
	return item, nil
}

func (s *canteenRepositoryStub) GetMenuItem(_ context.Context, collegeID, id string) (MenuItem, error) {
	item, ok := s.itemsByID[id]
	if !ok || item.CollegeID != collegeID {
		return MenuItem{}, ErrNotFound
	}
	return item, nil
}

func (s *canteenRepositoryStub) UpdateMenuItem(_ context.Context, item MenuItem) (MenuItem, error) {
	s.seedItem(item)
	return item, nil
}

func (s *canteenRepositoryStub) ListMenu(_ context.Context, collegeID string, availableOnly bool) ([]MenuItem, error) {
	var menu []MenuItem
	for _, id := range s.itemOrder {
		item := s.itemsByID[id]
		if item.CollegeID != collegeID {
			continue
		}
		if availableOnly && !item.Available {
			continue
		}
		menu = append(menu, item)
	}
	return menu, nil
}

func (s *canteenRepositoryStub) CreateOrder(_ context.Context, order Order) (Order, error) {
	if s.createOrderErr != nil {
		return Order{}, s.createOrderErr
	}
	s.ordersByID[order.ID] = order
	return order, nil
}

func (s *canteenRepositoryStub) GetOrder(_ context.Context, collegeID, id string) (Order, error) {
	order, ok := s.ordersByID[id]
	if !ok || order.CollegeID != collegeID {
		return Order{}, ErrNotFound
	}
	return order, nil
}

func (s *canteenRepositoryStub) UpdateOrderStatus(_ context.Context, order Order) (Order, error) {
	s.ordersByID[order.ID] = order
	return order, nil
}

func (s *canteenRepositoryStub) ListUserOrders(_ context.Context, collegeID, userID string) ([]Order, error) {
	var orders []Order
	for _, order := range s.ordersByID {
		if order.CollegeID == collegeID && order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

type orderPaymentsStub struct {
	spends    []WalletEntryParams
	refunds   []WalletEntryParams
	err       error
	refundErr error
}

func (s *orderPaymentsStub) Spend(_ context.Context, params WalletEntryParams) (Wallet, WalletTransaction, error) {
	if s.err != nil {
		return Wallet{}, WalletTransaction{}, s.err
	}
	s.spends = append(s.spends, params)
	return Wallet{}, WalletTransaction{ID: "txn-1"}, nil
}

func (s *orderPaymentsStub) Refund(_ context.Context, params WalletEntryParams) (Wallet, WalletTransaction, error) {
	if s.refundErr != nil {
		return Wallet{}, WalletTransaction{}, s.refundErr
	}
	s.refunds = append(s.refunds, params)
	return Wallet{}, WalletTransaction{}, nil
}
