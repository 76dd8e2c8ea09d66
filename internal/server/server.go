// Package server wires stores, handlers, and middleware into the HTTP API.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"homeboard/internal/config"
	"homeboard/internal/events"
	"homeboard/internal/handler"
	"homeboard/internal/middleware"
	"homeboard/internal/store"
	"homeboard/internal/weather"
)

type Server struct {
	db          *sql.DB
	hub         *events.Hub
	userStore   *store.UserStore
	authH       *handler.AuthHandler
	childH      *handler.ChildHandler
	taskH       *handler.TaskHandler
	rewardH     *handler.RewardHandler
	eventH      *handler.EventHandler
	financeH    *handler.FinanceHandler
	recipeH     *handler.RecipeHandler
	mealH       *handler.MealHandler
	profileH    *handler.ProfileHandler
	weatherH    *handler.WeatherHandler
	rateLimiter *middleware.RateLimiter
	jwtSecret   []byte
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Server, logger *slog.Logger) *Server {
	hub := events.NewHub()
	jwtSecret := []byte(cfg.JWTSecret)

	weatherSvc := weather.NewService(weather.Config{
		Latitude:        cfg.WeatherLat,
		Longitude:       cfg.WeatherLon,
		TemperatureUnit: cfg.WeatherUnit,
	})

	userStore := store.NewUserStore(db)
	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)
	eventStore := store.NewEventStore(db)
	financeStore := store.NewFinanceStore(db)
	recipeStore := store.NewRecipeStore(db)
	mealStore := store.NewMealStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		userStore:   userStore,
		authH:       handler.NewAuthHandler(userStore, jwtSecret),
		childH:      handler.NewChildHandler(childStore, hub),
		taskH:       handler.NewTaskHandler(taskStore, childStore, hub),
		rewardH:     handler.NewRewardHandler(rewardStore, childStore, hub),
		eventH:      handler.NewEventHandler(eventStore, hub),
		financeH:    handler.NewFinanceHandler(financeStore, hub),
		recipeH:     handler.NewRecipeHandler(recipeStore, hub),
		mealH:       handler.NewMealHandler(mealStore, recipeStore, hub),
		profileH:    handler.NewProfileHandler(userStore),
		weatherH:    handler.NewWeatherHandler(weatherSvc),
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		jwtSecret:   jwtSecret,
		logger:      logger,
	}
}

// Run starts background loops owned by the server: the event hub and the
// rate limiter sweeper. It returns when ctx is canceled.
func (s *Server) Run(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.rateLimiter.Sweep()
			}
		}
	}()
	s.hub.Run(ctx)
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes behind bearer-token auth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.jwtSecret, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	limited := middleware.RateLimit(s.rateLimiter)(h)
	return limited.ServeHTTP
}

// gated wraps a handler with the subscription check for plan-limited
// features.
func gated(h http.HandlerFunc) http.Handler {
	return middleware.RequireEntitlement(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Child profiles
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("POST /api/children", s.childH.Create)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.HandleFunc("PUT /api/children/{id}", s.childH.Update)

	// Tasks
	mux.HandleFunc("GET /api/child-tasks/{childId}", s.taskH.ListByChild)
	mux.HandleFunc("POST /api/child-tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/child-tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/child-tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("DELETE /api/child-tasks/{childId}/completed", s.taskH.DeleteCompleted)

	// Rewards
	mux.HandleFunc("GET /api/rewards/{childId}", s.rewardH.ListByChild)
	mux.HandleFunc("GET /api/rewards/{childId}/points", s.rewardH.Points)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{childId}/redeem", s.rewardH.Redeem)
	mux.Handle("GET /api/rewards/predefined", gated(s.rewardH.Predefined))

	// Calendar
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Finance (plan-gated)
	mux.Handle("GET /api/finance/shopping-items", gated(s.financeH.ListShoppingItems))
	mux.Handle("POST /api/finance/shopping-items", gated(s.financeH.CreateShoppingItem))
	mux.Handle("PUT /api/finance/shopping-items/{id}", gated(s.financeH.UpdateShoppingItem))
	mux.Handle("DELETE /api/finance/shopping-items/{id}", gated(s.financeH.DeleteShoppingItem))
	mux.Handle("GET /api/finance/transactions", gated(s.financeH.ListTransactions))
	mux.Handle("POST /api/finance/transactions", gated(s.financeH.CreateTransaction))
	mux.Handle("PUT /api/finance/transactions/{id}", gated(s.financeH.UpdateTransaction))
	mux.Handle("DELETE /api/finance/transactions/{id}", gated(s.financeH.DeleteTransaction))
	mux.Handle("GET /api/finance/summary", gated(s.financeH.Summary))

	// Meal planner (plan-gated)
	mux.Handle("GET /api/recipes", gated(s.recipeH.List))
	mux.Handle("POST /api/recipes", gated(s.recipeH.Create))
	mux.Handle("PUT /api/recipes/{id}", gated(s.recipeH.Update))
	mux.Handle("DELETE /api/recipes/{id}", gated(s.recipeH.Delete))
	mux.Handle("GET /api/meals", gated(s.mealH.Week))
	mux.Handle("PUT /api/meals/{date}", gated(s.mealH.Assign))

	// Calendar weather strip
	mux.HandleFunc("GET /api/weather", s.weatherH.Today)

	// Profile
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("PUT /api/profile/change-password", s.profileH.ChangePassword)

	// Change-event stream
	mux.HandleFunc("GET /ws", events.Handler(s.hub))
}
