package main

import (
	"time"

	"github.com/agentzerodev-lang/college-super-app-sub000/internal/application"
	"github.com/agentzerodev-lang/college-super-app-sub000/internal/persistence"
)

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		CollegeID:   model.CollegeID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		Role:        application.Role(model.Role),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User) persistence.User {
	return persistence.User{
		ID:          user.ID,
		CollegeID:   user.CollegeID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func toApplicationWallet(model persistence.Wallet) application.Wallet {
	return application.Wallet{
		ID:        model.ID,
		CollegeID: model.CollegeID,
		UserID:    model.UserID,
		Balance:   model.Balance,
		Status:    application.WalletStatus(model.Status),
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceWallet(wallet application.Wallet) persistence.Wallet {
	return persistence.Wallet{
		ID:        wallet.ID,
		CollegeID: wallet.CollegeID,
		UserID:    wallet.UserID,
		Balance:   wallet.Balance,
		Status:    string(wallet.Status),
		UpdatedAt: wallet.UpdatedAt,
	}
}

func toApplicationTransaction(model persistence.WalletTransaction) application.WalletTransaction {
	return application.WalletTransaction{
		ID:           model.ID,
		CollegeID:    model.CollegeID,
		WalletID:     model.WalletID,
		UserID:       model.UserID,
		Direction:    application.TransactionDirection(model.Direction),
		Amount:       model.Amount,
		Category:     application.TransactionCategory(model.Category),
		Description:  model.Description,
		ReferenceID:  cloneString(model.ReferenceID),
		BalanceAfter: model.BalanceAfter,
		CreatedAt:    model.CreatedAt,
	}
}

func toPersistenceTransaction(entry application.WalletTransaction) persistence.WalletTransaction {
	return persistence.WalletTransaction{
		ID:           entry.ID,
		CollegeID:    entry.CollegeID,
		WalletID:     entry.WalletID,
		UserID:       entry.UserID,
		Direction:    string(entry.Direction),
		Category:     string(entry.Category),
		Amount:       entry.Amount,
		BalanceAfter: entry.BalanceAfter,
		Description:  entry.Description,
		ReferenceID:  cloneString(entry.ReferenceID),
		CreatedAt:    entry.CreatedAt,
	}
}

func toApplicationBook(model persistence.Book) application.Book {
	return application.Book{
		ID:              model.ID,
		CollegeID:       model.CollegeID,
		Title:           model.Title,
		Author:          model.Author,
		TotalCopies:     model.TotalCopies,
		AvailableCopies: model.AvailableCopies,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toApplicationBooks(models []persistence.Book) []application.Book {
	if len(models) == 0 {
		return nil
	}
	books := make([]application.Book, 0, len(models))
	for _, model := range models {
		books = append(books, toApplicationBook(model))
	}
	return books
}

func toPersistenceBook(book application.Book) persistence.Book {
	return persistence.Book{
		ID:              book.ID,
		CollegeID:       book.CollegeID,
		Title:           book.Title,
		Author:          book.Author,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func toApplicationBorrow(model persistence.BookBorrow) application.BookBorrow {
	return application.BookBorrow{
		ID:         model.ID,
		CollegeID:  model.CollegeID,
		BookID:     model.BookID,
		UserID:     model.UserID,
		BorrowedAt: model.BorrowedAt,
		DueAt:      model.DueAt,
		ReturnedAt: cloneTime(model.ReturnedAt),
		Status:     application.BorrowStatus(model.Status),
		FineAmount: model.FineAmount,
		FinePaid:   model.FinePaid,
	}
}

func toPersistenceBorrow(borrow application.BookBorrow) persistence.BookBorrow {
	return persistence.BookBorrow{
		ID:         borrow.ID,
		CollegeID:  borrow.CollegeID,
		BookID:     borrow.BookID,
		UserID:     borrow.UserID,
		Status:     string(borrow.Status),
		BorrowedAt: borrow.BorrowedAt,
		DueAt:      borrow.DueAt,
		ReturnedAt: cloneTime(borrow.ReturnedAt),
		FineAmount: borrow.FineAmount,
		FinePaid:   borrow.FinePaid,
	}
}

func toApplicationEvent(model persistence.Event) application.Event {
	return application.Event{
		ID:                   model.ID,
		CollegeID:            model.CollegeID,
		CreatorID:            model.CreatorID,
		Title:                model.Title,
		Description:          model.Description,
		Status:               application.EventStatus(model.Status),
		StartsAt:             model.StartsAt,
		RegistrationDeadline: cloneTime(model.RegistrationDeadline),
		MaxAttendees:         cloneInt(model.MaxAttendees),
		RegistrationCount:    model.RegistrationCount,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:                   event.ID,
		CollegeID:            event.CollegeID,
		CreatorID:            event.CreatorID,
		Title:                event.Title,
		Description:          event.Description,
		Status:               string(event.Status),
		StartsAt:             event.StartsAt,
		RegistrationDeadline: cloneTime(event.RegistrationDeadline),
		MaxAttendees:         cloneInt(event.MaxAttendees),
		RegistrationCount:    event.RegistrationCount,
		CreatedAt:            event.CreatedAt,
		UpdatedAt:            event.UpdatedAt,
	}
}

func toApplicationRegistration(model persistence.EventRegistration) application.EventRegistration {
	return application.EventRegistration{
		ID:           model.ID,
		CollegeID:    model.CollegeID,
		EventID:      model.EventID,
		UserID:       model.UserID,
		Status:       application.RegistrationStatus(model.Status),
		RegisteredAt: model.RegisteredAt,
		CancelledAt:  cloneTime(model.CancelledAt),
	}
}

func toPersistenceRegistration(registration application.EventRegistration) persistence.EventRegistration {
	return persistence.EventRegistration{
		ID:           registration.ID,
		CollegeID:    registration.CollegeID,
		EventID:      registration.EventID,
		UserID:       registration.UserID,
		Status:       string(registration.Status),
		RegisteredAt: registration.RegisteredAt,
		CancelledAt:  cloneTime(registration.CancelledAt),
	}
}

func toApplicationAlert(model persistence.SOSAlert) application.SOSAlert {
	var location *application.GeoPoint
	if model.Latitude != nil && model.Longitude != nil {
		location = &application.GeoPoint{Latitude: *model.Latitude, Longitude: *model.Longitude}
	}
	return application.SOSAlert{
		ID:           model.ID,
		CollegeID:    model.CollegeID,
		UserID:       model.UserID,
		Type:         application.SOSType(model.Type),
		Location:     location,
		Description:  model.Description,
		Status:       application.SOSStatus(model.Status),
		ResponderIDs: append([]string(nil), model.ResponderIDs...),
		ResolvedAt:   cloneTime(model.ResolvedAt),
		ResolvedBy:   cloneString(model.ResolvedBy),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceAlert(alert application.SOSAlert) persistence.SOSAlert {
	var latitude, longitude *float64
	if alert.Location != nil {
		lat := alert.Location.Latitude
		lng := alert.Location.Longitude
		latitude = &lat
		longitude = &lng
	}
	return persistence.SOSAlert{
		ID:           alert.ID,
		CollegeID:    alert.CollegeID,
		UserID:       alert.UserID,
		Type:         string(alert.Type),
		Status:       string(alert.Status),
		Description:  alert.Description,
		Latitude:     latitude,
		Longitude:    longitude,
		ResponderIDs: append([]string(nil), alert.ResponderIDs...),
		ResolvedBy:   cloneString(alert.ResolvedBy),
		ResolvedAt:   cloneTime(alert.ResolvedAt),
		CreatedAt:    alert.CreatedAt,
		UpdatedAt:    alert.UpdatedAt,
	}
}

func toApplicationSkillEntry(model persistence.SkillEntry) application.SkillEntry {
	return application.SkillEntry{
		ID:          model.ID,
		CollegeID:   model.CollegeID,
		UserID:      model.UserID,
		SkillName:   model.SkillName,
		Score:       model.Score,
		Category:    cloneString(model.Category),
		IsAnonymous: model.IsAnonymous,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toApplicationSkillEntries(models []persistence.SkillEntry) []application.SkillEntry {
	if len(models) == 0 {
		return nil
	}
	entries := make([]application.SkillEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, toApplicationSkillEntry(model))
	}
	return entries
}

func toPersistenceSkillEntry(entry application.SkillEntry) persistence.SkillEntry {
	return persistence.SkillEntry{
		ID:          entry.ID,
		CollegeID:   entry.CollegeID,
		UserID:      entry.UserID,
		SkillName:   entry.SkillName,
		Score:       entry.Score,
		Category:    cloneString(entry.Category),
		IsAnonymous: entry.IsAnonymous,
		UpdatedAt:   entry.UpdatedAt,
	}
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:        model.ID,
		CollegeID: model.CollegeID,
		Name:      model.Name,
		Building:  model.Building,
		Capacity:  model.Capacity,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		CollegeID: room.CollegeID,
		Name:      room.Name,
		Building:  room.Building,
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationBooking(model persistence.RoomBooking) application.RoomBooking {
	return application.RoomBooking{
		ID:        model.ID,
		CollegeID: model.CollegeID,
		RoomID:    model.RoomID,
		UserID:    model.UserID,
		Purpose:   model.Purpose,
		StartsAt:  model.StartsAt,
		EndsAt:    model.EndsAt,
		Status:    application.BookingStatus(model.Status),
		CreatedAt: model.CreatedAt,
	}
}

func toApplicationBookings(models []persistence.RoomBooking) []application.RoomBooking {
	if len(models) == 0 {
		return nil
	}
	bookings := make([]application.RoomBooking, 0, len(models))
	for _, model := range models {
		bookings = append(bookings, toApplicationBooking(model))
	}
	return bookings
}

func toPersistenceBooking(bookingRow application.RoomBooking) persistence.RoomBooking {
	return persistence.RoomBooking{
		ID:        bookingRow.ID,
		CollegeID: bookingRow.CollegeID,
		RoomID:    bookingRow.RoomID,
		UserID:    bookingRow.UserID,
		Purpose:   bookingRow.Purpose,
		StartsAt:  bookingRow.StartsAt,
		EndsAt:    bookingRow.EndsAt,
		Status:    string(bookingRow.Status),
		CreatedAt: bookingRow.CreatedAt,
	}
}

func toApplicationMenuItem(model persistence.MenuItem) application.MenuItem {
	return application.MenuItem{
		ID:        model.ID,
		CollegeID: model.CollegeID,
		Name:      model.Name,
		Price:     model.Price,
		Available: model.Available,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceMenuItem(item application.MenuItem) persistence.MenuItem {
	return persistence.MenuItem{
		ID:        item.ID,
		CollegeID: item.CollegeID,
		Name:      item.Name,
		Price:     item.Price,
		Available: item.Available,
		UpdatedAt: item.UpdatedAt,
	}
}

func toApplicationOrder(model persistence.Order) application.Order {
	lines := make([]application.OrderLine, 0, len(model.Lines))
	for _, line := range model.Lines {
		lines = append(lines, application.OrderLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return application.Order{
		ID:        model.ID,
		CollegeID: model.CollegeID,
		UserID:    model.UserID,
		Lines:     lines,
		Total:     model.Total,
		Status:    application.OrderStatus(model.Status),
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceOrder(order application.Order) persistence.Order {
	lines := make([]persistence.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, persistence.OrderLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return persistence.Order{
		ID:        order.ID,
		CollegeID: order.CollegeID,
		UserID:    order.UserID,
		Lines:     lines,
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
}

func toApplicationNotification(model persistence.Notification) application.Notification {
	return application.Notification{
		ID:        model.ID,
		CollegeID: model.CollegeID,
		UserID:    model.UserID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceNotification(notification application.Notification) persistence.Notification {
	return persistence.Notification{
		ID:        notification.ID,
		CollegeID: notification.CollegeID,
		UserID:    notification.UserID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
