package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires the handlers and session validator into one HTTP surface.
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Wallets       *WalletHandler
	Library       *LibraryHandler
	Events        *EventHandler
	SOS           *SOSHandler
	Leaderboard   *LeaderboardHandler
	Rooms         *RoomHandler
	Canteen       *CanteenHandler
	Notifications *NotificationHandler
	Sessions      SessionValidator
	Logger        *slog.Logger
}

// NewRouter assembles the API. Session creation is the only unauthenticated
// endpoint; everything else sits behind RequireSession.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	if cfg.Auth != nil {
		r.Post("/sessions", cfg.Auth.CreateSession)
	}

	r.Group(func(r chi.Router) {
		if cfg.Sessions != nil {
			r.Use(RequireSession(cfg.Sessions, logger))
		}

		if cfg.Auth != nil {
			r.Delete("/sessions/current", cfg.Auth.DeleteCurrentSession)
		}

		if cfg.Users != nil {
			r.Route("/users", func(r chi.Router) {
				r.Get("/", cfg.Users.List)
				r.Post("/", cfg.Users.Create)
				r.Route("/{userID}", func(r chi.Router) {
					r.Get("/", cfg.Users.Get)
					r.Put("/", cfg.Users.Update)
					r.Post("/disable", cfg.Users.Disable)
					r.Post("/enable", cfg.Users.Enable)

					if cfg.Wallets != nil {
						r.Get("/wallet", cfg.Wallets.Get)
						r.Get("/wallet/transactions", cfg.Wallets.ListTransactions)
						r.Post("/wallet/credit", cfg.Wallets.Credit)
						r.Post("/wallet/debit", cfg.Wallets.Debit)
						r.Post("/wallet/freeze", cfg.Wallets.Freeze)
						r.Post("/wallet/unfreeze", cfg.Wallets.Unfreeze)
					}
					if cfg.Library != nil {
						r.Get("/borrows", cfg.Library.ListUserBorrows)
					}
					if cfg.Leaderboard != nil {
						r.Get("/skills", cfg.Leaderboard.ListUserEntries)
					}
					if cfg.Rooms != nil {
						r.Get("/bookings", cfg.Rooms.ListUserBookings)
					}
					if cfg.Canteen != nil {
						r.Get("/orders", cfg.Canteen.ListUserOrders)
					}
				})
			})
		}

		if cfg.Library != nil {
			r.Route("/books", func(r chi.Router) {
				r.Get("/", cfg.Library.ListBooks)
				r.Post("/", cfg.Library.AddBook)
				r.Post("/{bookID}/borrow", cfg.Library.Borrow)
			})
			r.Route("/borrows", func(r chi.Router) {
				r.Post("/overdue-scan", cfg.Library.MarkOverdue)
				r.Route("/{borrowID}", func(r chi.Router) {
					r.Get("/", cfg.Library.GetBorrow)
					r.Post("/return", cfg.Library.Return)
					r.Post("/fine/pay", cfg.Library.PayFine)
				})
			})
		}

		if cfg.Events != nil {
			r.Route("/events", func(r chi.Router) {
				r.Get("/", cfg.Events.List)
				r.Post("/", cfg.Events.Create)
				r.Route("/{eventID}", func(r chi.Router) {
					r.Get("/", cfg.Events.Get)
					r.Get("/registrations", cfg.Events.ListRegistrations)
					r.Post("/registrations", cfg.Events.Register)
					r.Delete("/registrations/{userID}", cfg.Events.CancelRegistration)
					r.Put("/registrations/{userID}/attendance", cfg.Events.MarkAttendance)
				})
			})
		}

		if cfg.SOS != nil {
			r.Route("/sos", func(r chi.Router) {
				r.Get("/", cfg.SOS.List)
				r.Post("/", cfg.SOS.Create)
				r.Route("/{alertID}", func(r chi.Router) {
					r.Get("/", cfg.SOS.Get)
					r.Post("/respond", cfg.SOS.Respond)
					r.Post("/resolve", cfg.SOS.Resolve)
					r.Post("/cancel", cfg.SOS.Cancel)
				})
			})
		}

		if cfg.Leaderboard != nil {
			r.Route("/leaderboard", func(r chi.Router) {
				r.Post("/scores", cfg.Leaderboard.SubmitScore)
				r.Get("/overall", cfg.Leaderboard.OverallRanking)
				r.Get("/skills/{skillName}", cfg.Leaderboard.SkillRanking)
				r.Put("/anonymous", cfg.Leaderboard.SetAnonymous)
			})
		}

		if cfg.Rooms != nil {
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", cfg.Rooms.List)
				r.Post("/", cfg.Rooms.Create)
				r.Route("/{roomID}", func(r chi.Router) {
					r.Get("/", cfg.Rooms.Get)
					r.Post("/bookings", cfg.Rooms.Book)
				})
			})
			r.Post("/bookings/{bookingID}/cancel", cfg.Rooms.CancelBooking)
		}

		if cfg.Canteen != nil {
			r.Route("/menu", func(r chi.Router) {
				r.Get("/", cfg.Canteen.ListMenu)
				r.Post("/", cfg.Canteen.AddMenuItem)
				r.Put("/{itemID}", cfg.Canteen.UpdateMenuItem)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", cfg.Canteen.PlaceOrder)
				r.Post("/{orderID}/fulfill", cfg.Canteen.FulfillOrder)
			})
		}

		if cfg.Notifications != nil {
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.Notifications.List)
				r.Post("/{notificationID}/read", cfg.Notifications.MarkRead)
			})
		}
	})

	return r
}
