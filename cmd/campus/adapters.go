package main

import (
	"context"
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

// The adapters below bridge the persistence row types to the application
// domain types. Writes that the store records verbatim return the input;
// writes whose rows carry store-computed state re-read before returning.

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUserWithWallet(ctx context.Context, creds application.UserCredentials, wallet application.Wallet) (application.User, error) {
	row := toPersistenceUser(creds.User)
	row.PasswordHash = creds.PasswordHash
	row.Disabled = creds.Disabled
	if err := a.repo.CreateUserWithWallet(ctx, row, toPersistenceWallet(wallet)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, creds.User.CollegeID, creds.User.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, collegeID, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, collegeID, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.CollegeID, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) SetUserDisabled(ctx context.Context, collegeID, id string, disabled bool) error {
	return a.repo.SetUserDisabled(ctx, collegeID, id, disabled)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context, collegeID string) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userRepositoryAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
		Disabled:     stored.Disabled,
	}, nil
}

func (a *userRepositoryAdapter) GetUserByID(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUserByID(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type walletRepositoryAdapter struct {
	repo persistence.WalletRepository
}

func newWalletRepositoryAdapter(repo persistence.WalletRepository) *walletRepositoryAdapter {
	return &walletRepositoryAdapter{repo: repo}
}

func (a *walletRepositoryAdapter) GetWalletByUser(ctx context.Context, collegeID, userID string) (application.Wallet, error) {
	stored, err := a.repo.GetWalletByUser(ctx, collegeID, userID)
	if err != nil {
		return application.Wallet{}, err
	}
	return toApplicationWallet(stored), nil
}

func (a *walletRepositoryAdapter) ApplyTransaction(ctx context.Context, wallet application.Wallet, entry application.WalletTransaction) (application.Wallet, error) {
	if err := a.repo.ApplyTransaction(ctx, toPersistenceWallet(wallet), toPersistenceTransaction(entry)); err != nil {
		return application.Wallet{}, err
	}
	stored, err := a.repo.GetWalletByUser(ctx, wallet.CollegeID, wallet.UserID)
	if err != nil {
		return application.Wallet{}, err
	}
	return toApplicationWallet(stored), nil
}

func (a *walletRepositoryAdapter) UpdateWalletStatus(ctx context.Context, wallet application.Wallet) (application.Wallet, error) {
	if err := a.repo.UpdateWalletStatus(ctx, wallet.CollegeID, wallet.ID, string(wallet.Status), wallet.UpdatedAt); err != nil {
		return application.Wallet{}, err
	}
	stored, err := a.repo.GetWalletByUser(ctx, wallet.CollegeID, wallet.UserID)
	if err != nil {
		return application.Wallet{}, err
	}
	return toApplicationWallet(stored), nil
}

func (a *walletRepositoryAdapter) ListTransactions(ctx context.Context, collegeID, userID string, limit int) ([]application.WalletTransaction, error) {
	wallet, err := a.repo.GetWalletByUser(ctx, collegeID, userID)
	if err != nil {
		return nil, err
	}
	models, err := a.repo.ListTransactions(ctx, collegeID, wallet.ID, limit)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	entries := make([]application.WalletTransaction, 0, len(models))
	for _, model := range models {
		entries = append(entries, toApplicationTransaction(model))
	}
	return entries, nil
}

type libraryRepositoryAdapter struct {
	repo persistence.LibraryRepository
}

func newLibraryRepositoryAdapter(repo persistence.LibraryRepository) *libraryRepositoryAdapter {
	return &libraryRepositoryAdapter{repo: repo}
}

func (a *libraryRepositoryAdapter) CreateBook(ctx context.Context, book application.Book) (application.Book, error) {
	if err := a.repo.CreateBook(ctx, toPersistenceBook(book)); err != nil {
		return application.Book{}, err
	}
	stored, err := a.repo.GetBook(ctx, book.CollegeID, book.ID)
	if err != nil {
		return application.Book{}, err
	}
	return toApplicationBook(stored), nil
}

func (a *libraryRepositoryAdapter) GetBook(ctx context.Context, collegeID, id string) (application.Book, error) {
	stored, err := a.repo.GetBook(ctx, collegeID, id)
	if err != nil {
		return application.Book{}, err
	}
	return toApplicationBook(stored), nil
}

func (a *libraryRepositoryAdapter) ListBooks(ctx context.Context, collegeID string) ([]application.Book, error) {
	models, err := a.repo.ListBooks(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	return toApplicationBooks(models), nil
}

func (a *libraryRepositoryAdapter) SearchBooks(ctx context.Context, collegeID, query string) ([]application.Book, error) {
	models, err := a.repo.SearchBooks(ctx, collegeID, query)
	if err != nil {
		return nil, err
	}
	return toApplicationBooks(models), nil
}

func (a *libraryRepositoryAdapter) GetBorrow(ctx context.Context, collegeID, id string) (application.BookBorrow, error) {
	stored, err := a.repo.GetBorrow(ctx, collegeID, id)
	if err != nil {
		return application.BookBorrow{}, err
	}
	return toApplicationBorrow(stored), nil
}

func (a *libraryRepositoryAdapter) FindOpenBorrow(ctx context.Context, collegeID, bookID, userID string) (application.BookBorrow, error) {
	stored, err := a.repo.FindOpenBorrow(ctx, collegeID, bookID, userID)
	if err != nil {
		return application.BookBorrow{}, err
	}
	return toApplicationBorrow(stored), nil
}

func (a *libraryRepositoryAdapter) CreateBorrow(ctx context.Context, borrow application.BookBorrow) (application.BookBorrow, error) {
	if err := a.repo.CreateBorrow(ctx, toPersistenceBorrow(borrow)); err != nil {
		return application.BookBorrow{}, err
	}
	stored, err := a.repo.GetBorrow(ctx, borrow.CollegeID, borrow.ID)
	if err != nil {
		return application.BookBorrow{}, err
	}
	return toApplicationBorrow(stored), nil
}

func (a *libraryRepositoryAdapter) SettleBorrow(ctx context.Context, borrow application.BookBorrow) (application.BookBorrow, error) {
	if err := a.repo.SettleBorrow(ctx, toPersistenceBorrow(borrow)); err != nil {
		return application.BookBorrow{}, err
	}
	stored, err := a.repo.GetBorrow(ctx, borrow.CollegeID, borrow.ID)
	if err != nil {
		return application.BookBorrow{}, err
	}
	return toApplicationBorrow(stored), nil
}

func (a *libraryRepositoryAdapter) UpdateBorrow(ctx context.Context, borrow application.BookBorrow) (application.BookBorrow, error) {
	if err := a.repo.UpdateBorrow(ctx, toPersistenceBorrow(borrow)); err != nil {
		return application.BookBorrow{}, err
	}
	stored, err := a.repo.GetBorrow(ctx, borrow.CollegeID, borrow.ID)
	if err != nil {
		return application.BookBorrow{}, err
	}
	return toApplicationBorrow(stored), nil
}

func (a *libraryRepositoryAdapter) ListUserBorrows(ctx context.Context, collegeID, userID string) ([]application.BookBorrow, error) {
	models, err := a.repo.ListUserBorrows(ctx, collegeID, userID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	borrows := make([]application.BookBorrow, 0, len(models))
	for _, model := range models {
		borrows = append(borrows, toApplicationBorrow(model))
	}
	return borrows, nil
}

func (a *libraryRepositoryAdapter) MarkOverdue(ctx context.Context, collegeID string, reference time.Time) (int, error) {
	return a.repo.MarkOverdue(ctx, collegeID, reference)
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.CollegeID, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, collegeID, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, collegeID, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, collegeID string) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

func (a *eventRepositoryAdapter) FindRegistration(ctx context.Context, collegeID, eventID, userID string) (application.EventRegistration, error) {
	stored, err := a.repo.FindRegistration(ctx, collegeID, eventID, userID)
	if err != nil {
		return application.EventRegistration{}, err
	}
	return toApplicationRegistration(stored), nil
}

func (a *eventRepositoryAdapter) CreateRegistration(ctx context.Context, registration application.EventRegistration) (application.EventRegistration, error) {
	if err := a.repo.CreateRegistration(ctx, toPersistenceRegistration(registration)); err != nil {
		return application.EventRegistration{}, err
	}
	return registration, nil
}

func (a *eventRepositoryAdapter) CancelRegistration(ctx context.Context, registration application.EventRegistration, promote bool) (application.EventRegistration, error) {
	if err := a.repo.CancelRegistration(ctx, toPersistenceRegistration(registration), promote); err != nil {
		return application.EventRegistration{}, err
	}
	return registration, nil
}

func (a *eventRepositoryAdapter) UpdateRegistrationStatus(ctx context.Context, registration application.EventRegistration) (application.EventRegistration, error) {
	if err := a.repo.UpdateRegistrationStatus(ctx, toPersistenceRegistration(registration)); err != nil {
		return application.EventRegistration{}, err
	}
	return registration, nil
}

func (a *eventRepositoryAdapter) ListRegistrations(ctx context.Context, collegeID, eventID string) ([]application.EventRegistration, error) {
	models, err := a.repo.ListRegistrations(ctx, collegeID, eventID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	registrations := make([]application.EventRegistration, 0, len(models))
	for _, model := range models {
		registrations = append(registrations, toApplicationRegistration(model))
	}
	return registrations, nil
}

type sosRepositoryAdapter struct {
	repo persistence.SOSRepository
}

func newSOSRepositoryAdapter(repo persistence.SOSRepository) *sosRepositoryAdapter {
	return &sosRepositoryAdapter{repo: repo}
}

func (a *sosRepositoryAdapter) FindActiveAlert(ctx context.Context, collegeID, userID string) (application.SOSAlert, error) {
	stored, err := a.repo.FindActiveAlert(ctx, collegeID, userID)
	if err != nil {
		return application.SOSAlert{}, err
	}
	return toApplicationAlert(stored), nil
}

func (a *sosRepositoryAdapter) CreateAlert(ctx context.Context, alert application.SOSAlert) (application.SOSAlert, error) {
	if err := a.repo.CreateAlert(ctx, toPersistenceAlert(alert)); err != nil {
		return application.SOSAlert{}, err
	}
	stored, err := a.repo.GetAlert(ctx, alert.CollegeID, alert.ID)
	if err != nil {
		return application.SOSAlert{}, err
	}
	return toApplicationAlert(stored), nil
}

func (a *sosRepositoryAdapter) GetAlert(ctx context.Context, collegeID, id string) (application.SOSAlert, error) {
	stored, err := a.repo.GetAlert(ctx, collegeID, id)
	if err != nil {
		return application.SOSAlert{}, err
	}
	return toApplicationAlert(stored), nil
}

func (a *sosRepositoryAdapter) UpdateAlert(ctx context.Context, alert application.SOSAlert) (application.SOSAlert, error) {
	if err := a.repo.UpdateAlert(ctx, toPersistenceAlert(alert)); err != nil {
		return application.SOSAlert{}, err
	}
	stored, err := a.repo.GetAlert(ctx, alert.CollegeID, alert.ID)
	if err != nil {
		return application.SOSAlert{}, err
	}
	return toApplicationAlert(stored), nil
}

func (a *sosRepositoryAdapter) ListAlerts(ctx context.Context, collegeID string, openOnly bool) ([]application.SOSAlert, error) {
	models, err := a.repo.ListAlerts(ctx, collegeID, openOnly)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	alerts := make([]application.SOSAlert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, toApplicationAlert(model))
	}
	return alerts, nil
}

func (a *sosRepositoryAdapter) ListResponders(ctx context.Context, collegeID string) ([]string, error) {
	return a.repo.ListUsersByRoles(ctx, collegeID, []string{
		string(application.RoleSecurity),
		string(application.RoleAdmin),
	})
}

type skillRepositoryAdapter struct {
	repo persistence.SkillRepository
}

func newSkillRepositoryAdapter(repo persistence.SkillRepository) *skillRepositoryAdapter {
	return &skillRepositoryAdapter{repo: repo}
}

func (a *skillRepositoryAdapter) FindEntry(ctx context.Context, collegeID, userID, skillName string) (application.SkillEntry, error) {
	stored, err := a.repo.FindEntry(ctx, collegeID, userID, skillName)
	if err != nil {
		return application.SkillEntry{}, err
	}
	return toApplicationSkillEntry(stored), nil
}

func (a *skillRepositoryAdapter) CreateEntry(ctx context.Context, entry application.SkillEntry) (application.SkillEntry, error) {
	if err := a.repo.CreateEntry(ctx, toPersistenceSkillEntry(entry)); err != nil {
		return application.SkillEntry{}, err
	}
	stored, err := a.repo.FindEntry(ctx, entry.CollegeID, entry.UserID, entry.SkillName)
	if err != nil {
		return application.SkillEntry{}, err
	}
	return toApplicationSkillEntry(stored), nil
}

func (a *skillRepositoryAdapter) UpdateEntry(ctx context.Context, entry application.SkillEntry) (application.SkillEntry, error) {
	if err := a.repo.UpdateEntry(ctx, toPersistenceSkillEntry(entry)); err != nil {
		return application.SkillEntry{}, err
	}
	stored, err := a.repo.FindEntry(ctx, entry.CollegeID, entry.UserID, entry.SkillName)
	if err != nil {
		return application.SkillEntry{}, err
	}
	return toApplicationSkillEntry(stored), nil
}

func (a *skillRepositoryAdapter) ListBySkill(ctx context.Context, collegeID, skillName string) ([]application.SkillEntry, error) {
	models, err := a.repo.ListBySkill(ctx, collegeID, skillName)
	if err != nil {
		return nil, err
	}
	return toApplicationSkillEntries(models), nil
}

func (a *skillRepositoryAdapter) ListAll(ctx context.Context, collegeID string) ([]application.SkillEntry, error) {
	models, err := a.repo.ListAll(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	return toApplicationSkillEntries(models), nil
}

func (a *skillRepositoryAdapter) ListUserEntries(ctx context.Context, collegeID, userID string) ([]application.SkillEntry, error) {
	models, err := a.repo.ListUserEntries(ctx, collegeID, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationSkillEntries(models), nil
}

func (a *skillRepositoryAdapter) SetAnonymous(ctx context.Context, collegeID, userID string, anonymous bool) error {
	return a.repo.SetAnonymous(ctx, collegeID, userID, anonymous)
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.CollegeID, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, collegeID, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, collegeID, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context, collegeID string) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) ListActiveBookings(ctx context.Context, collegeID, roomID string, from, until time.Time) ([]application.RoomBooking, error) {
	models, err := a.repo.ListActiveBookings(ctx, collegeID, roomID, from, until)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

func (a *roomRepositoryAdapter) CreateBooking(ctx context.Context, bookingRow application.RoomBooking) (application.RoomBooking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(bookingRow)); err != nil {
		return application.RoomBooking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, bookingRow.CollegeID, bookingRow.ID)
	if err != nil {
		return application.RoomBooking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *roomRepositoryAdapter) GetBooking(ctx context.Context, collegeID, id string) (application.RoomBooking, error) {
	stored, err := a.repo.GetBooking(ctx, collegeID, id)
	if err != nil {
		return application.RoomBooking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *roomRepositoryAdapter) UpdateBooking(ctx context.Context, bookingRow application.RoomBooking) (application.RoomBooking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(bookingRow)); err != nil {
		return application.RoomBooking{}, err
	}
	stored, err := a.repo.GetBooking(ctx, bookingRow.CollegeID, bookingRow.ID)
	if err != nil {
		return application.RoomBooking{}, err
	}
	return toApplicationBooking(stored), nil
}

func (a *roomRepositoryAdapter) ListUserBookings(ctx context.Context, collegeID, userID string) ([]application.RoomBooking, error) {
	models, err := a.repo.ListUserBookings(ctx, collegeID, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(models), nil
}

type canteenRepositoryAdapter struct {
	repo persistence.CanteenRepository
}

func newCanteenRepositoryAdapter(repo persistence.CanteenRepository) *canteenRepositoryAdapter {
	return &canteenRepositoryAdapter{repo: repo}
}

func (a *canteenRepositoryAdapter) CreateMenuItem(ctx context.Context, item application.MenuItem) (application.MenuItem, error) {
	if err := a.repo.CreateMenuItem(ctx, toPersistenceMenuItem(item)); err != nil {
		return application.MenuItem{}, err
	}
	stored, err := a.repo.GetMenuItem(ctx, item.CollegeID, item.ID)
	if err != nil {
		return application.MenuItem{}, err
	}
	return toApplicationMenuItem(stored), nil
}

func (a *canteenRepositoryAdapter) GetMenuItem(ctx context.Context, collegeID, id string) (application.MenuItem, error) {
	stored, err := a.repo.GetMenuItem(ctx, collegeID, id)
	if err != nil {
		return application.MenuItem{}, err
	}
	return toApplicationMenuItem(stored), nil
}

func (a *canteenRepositoryAdapter) UpdateMenuItem(ctx context.Context, item application.MenuItem) (application.MenuItem, error) {
	if err := a.repo.UpdateMenuItem(ctx, toPersistenceMenuItem(item)); err != nil {
		return application.MenuItem{}, err
	}
	stored, err := a.repo.GetMenuItem(ctx, item.CollegeID, item.ID)
	if err != nil {
		return application.MenuItem{}, err
	}
	return toApplicationMenuItem(stored), nil
}

func (a *canteenRepositoryAdapter) ListMenu(ctx context.Context, collegeID string, availableOnly bool) ([]application.MenuItem, error) {
	models, err := a.repo.ListMenu(ctx, collegeID, availableOnly)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	items := make([]application.MenuItem, 0, len(models))
	for _, model := range models {
		items = append(items, toApplicationMenuItem(model))
	}
	return items, nil
}

func (a *canteenRepositoryAdapter) CreateOrder(ctx context.Context, order application.Order) (application.Order, error) {
	if err := a.repo.CreateOrder(ctx, toPersistenceOrder(order)); err != nil {
		return application.Order{}, err
	}
	stored, err := a.repo.GetOrder(ctx, order.CollegeID, order.ID)
	if err != nil {
		return application.Order{}, err
	}
	return toApplicationOrder(stored), nil
}

func (a *canteenRepositoryAdapter) GetOrder(ctx context.Context, collegeID, id string) (application.Order, error) {
	stored, err := a.repo.GetOrder(ctx, collegeID, id)
	if err != nil {
		return application.Order{}, err
	}
	return toApplicationOrder(stored), nil
}

func (a *canteenRepositoryAdapter) UpdateOrderStatus(ctx context.Context, order application.Order) (application.Order, error) {
	if err := a.repo.UpdateOrderStatus(ctx, order.CollegeID, order.ID, string(order.Status)); err != nil {
		return application.Order{}, err
	}
	stored, err := a.repo.GetOrder(ctx, order.CollegeID, order.ID)
	if err != nil {
		return application.Order{}, err
	}
	return toApplicationOrder(stored), nil
}

func (a *canteenRepositoryAdapter) ListUserOrders(ctx context.Context, collegeID, userID string) ([]application.Order, error) {
	models, err := a.repo.ListUserOrders(ctx, collegeID, userID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	orders := make([]application.Order, 0, len(models))
	for _, model := range models {
		orders = append(orders, toApplicationOrder(model))
	}
	return orders, nil
}

type notificationRepositoryAdapter struct {
	repo persistence.NotificationRepository
}

func newNotificationRepositoryAdapter(repo persistence.NotificationRepository) *notificationRepositoryAdapter {
	return &notificationRepositoryAdapter{repo: repo}
}

func (a *notificationRepositoryAdapter) CreateNotification(ctx context.Context, notification application.Notification) error {
	return a.repo.CreateNotification(ctx, toPersistenceNotification(notification))
}

func (a *notificationRepositoryAdapter) ListUserNotifications(ctx context.Context, collegeID, userID string, unreadOnly bool) ([]application.Notification, error) {
	models, err := a.repo.ListUserNotifications(ctx, collegeID, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	notifications := make([]application.Notification, 0, len(models))
	for _, model := range models {
		notifications = append(notifications, toApplicationNotification(model))
	}
	return notifications, nil
}

func (a *notificationRepositoryAdapter) MarkRead(ctx context.Context, collegeID, userID, id string) error {
	return a.repo.MarkRead(ctx, collegeID, userID, id)
}
