// Package server assembles the Fiber application.
package server

import (
	"time"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/handlers"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/middleware"
	"github.com/arzan03/CampusPortal/internal/repository"
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// uploads above this size are refused by the HTTP layer
const bodyLimit = 20 << 20

type Deps struct {
	Store          *repository.Store
	Services       *services.Services
	Tokens         *auth.TokenManager
	Log            logging.Logger
	RequestTimeout time.Duration
	// AccessLog disables Fiber's request logger when false.
	AccessLog bool
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "campus-portal",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New())
	if d.RequestTimeout > 0 {
		app.Use(middleware.RequestTimeout(d.RequestTimeout))
	}

	registerRoutes(app, d)
	return app
}

func registerRoutes(app *fiber.App, d Deps) {
	svc := d.Services
	authn := middleware.Authenticate(d.Tokens, d.Store.Users)
	admin := middleware.RequireAdmin

	authH := handlers.NewAuthHandler(svc.Auth)
	listingH := handlers.NewListingHandler(svc.Listings)
	notifyH := handlers.NewNotificationHandler(svc.Notifications)
	userH := handlers.NewUserHandler(svc.Users)
	adminH := handlers.NewAdminHandler(svc.Moderation, svc.Listings, svc.Users)

	api := app.Group("/api")
	api.Get("/health", handlers.Health(time.Now()))

	// Auth Routes
	a := api.Group("/auth")
	a.Post("/signup", authH.Signup)
	a.Post("/login", authH.Login)
	a.Post("/verify-otp", authH.VerifyOTP)
	a.Post("/resend-otp", authH.ResendOTP)
	a.Post("/forgot-password", authH.ForgotPassword)
	a.Post("/reset-password", authH.ResetPassword)

	u := api.Group("/user", authn)
	u.Get("/profile", userH.Profile)
	u.Put("/profile", userH.UpdateProfile)
	u.Get("/all", admin, userH.ListUsers)

	lf := api.Group("/lostfound")
	lf.Get("/", handlers.Approved(svc.Listings.LostItems))
	lf.Post("/", authn, listingH.CreateLostItem)
	lf.Get("/user", authn, handlers.Mine(svc.Listings.LostItems))
	lf.Get("/pending", authn, admin, handlers.Pending(svc.Listings.LostItems))

	mp := api.Group("/marketplace")
	mp.Get("/", handlers.Approved(svc.Listings.Marketplace))
	mp.Post("/", authn, listingH.CreateMarketplaceItem)
	mp.Get("/user", authn, handlers.Mine(svc.Listings.Marketplace))
	mp.Get("/pending", authn, admin, handlers.Pending(svc.Listings.Marketplace))

	notes := api.Group("/notes")
	notes.Get("/", handlers.Approved(svc.Listings.Notes))
	notes.Post("/", authn, listingH.CreateNote)
	notes.Get("/user", authn, handlers.Mine(svc.Listings.Notes))
	notes.Get("/pending", authn, admin, handlers.Pending(svc.Listings.Notes))
	notes.Get("/:id/download", authn, listingH.DownloadNote)

	n := api.Group("/notifications", authn)
	n.Get("/", notifyH.List)
	n.Get("/unread", notifyH.Unread)
	n.Post("/", notifyH.Create)
	n.Post("/read-all", notifyH.MarkAllRead)
	n.Post("/:id/read", notifyH.MarkRead)

	// Admin Routes
	adm := api.Group("/admin", authn, admin)
	adm.Post("/approve/:type/:id", adminH.Approve)
	adm.Post("/reject/:type/:id", adminH.Reject)
	adm.Delete("/user/:id", adminH.DeleteUser)
	adm.Post("/add-admin", adminH.AddAdmin)
	adm.Get("/users", userH.ListUsers)
	adm.Get("/pending", adminH.Pending)
	adm.Get("/notifications", notifyH.All)
	adm.Post("/notifications", notifyH.Send)
}
