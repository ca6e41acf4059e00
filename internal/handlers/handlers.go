package handlers

import (
	"InvKeeper/internal/config"
	"InvKeeper/internal/middleware"
	"InvKeeper/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Services — зависимости слоя HTTP.
type Services struct {
	Users       *service.UserService
	Sessions    *service.SessionService
	Items       *service.ItemService
	Attachments *service.AttachmentService
	Export      *service.ExportService
}

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(svc Services, logger *zap.SugaredLogger, cfg *config.Config) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// без доверенного прокси заголовки X-Forwarded-For подделываются клиентом, лимитер смотрит на RemoteAddr
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.WithLogging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithAuth(svc.Sessions))

	// Handlers
	userHandler := NewUserHandler(svc.Users, svc.Sessions, logger)
	itemHandler := NewItemHandler(svc.Items, logger, cfg)
	exportHandler := NewExportHandler(svc.Export, logger)
	fileHandler := NewFileHandler(svc.Attachments, logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	routes := func(r chi.Router) {
		// User routes
		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/reset-password", userHandler.ResetPassword)
		})
		r.Get("/username-available", userHandler.UsernameAvailable)

		// Всё ниже только с валидным bearer-токеном
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/logout", userHandler.Logout)

			r.Get("/inventory", itemHandler.List)
			r.Post("/inventory", itemHandler.Create)
			r.Get("/inventory/export", exportHandler.Export)
			r.Get("/inventory/{id}", itemHandler.Get)
			r.Put("/inventory/{id}", itemHandler.Update)
			r.Delete("/inventory/{id}", itemHandler.Delete)

			r.Get("/files/{token}", fileHandler.Serve)
		})
	}

	routes(r)
	r.Route("/api", routes)

	return &Handler{Router: r}
}
