// Package app assembles the HTTP surface: it opens the per-application
// databases, builds the services, and mounts the module table.
package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	httpapi "appsuite-backend/internal/api/http"
	"appsuite-backend/internal/config"
	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/mail"
	"appsuite-backend/internal/registry"
	"appsuite-backend/internal/repository/sqlite"
	"appsuite-backend/internal/security"
	"appsuite-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	Handler http.Handler
	Router  *mux.Router
	Report  registry.Report
	// Waitlist is nil when the waitlist module failed to mount
	Waitlist service.WaitlistService

	mu     sync.Mutex
	dbs    []*sql.DB
	checks []httpapi.HealthCheck
}

// Build wires every module. Module failures are captured in App.Report and
// never abort the build; the caller decides whether the report is fatal.
func Build(cfg *config.Config, open sqlite.Opener, sender mail.Sender, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	a := &App{Router: mux.NewRouter()}

	root := a.Router
	root.NotFoundHandler = http.HandlerFunc(notFound)
	root.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	root.Use(httpapi.AccessLog)

	tokenTTL := time.Duration(cfg.Auth.AccessTokenMinutes) * time.Minute
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL)
	limiter := httpapi.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	middleware := []registry.RouteMiddleware{limiter.Middleware}
	if cfg.Auth.ProtectAdmin {
		middleware = append(middleware, httpapi.NewTokenGuard(tokens).Middleware)
	}
	reg := registry.New(root, cfg.Server.BasePath, middleware...)

	emailSvc := service.NewEmailService(sender)
	deps := moduleDeps{
		cfg:      cfg,
		open:     a.track(open),
		email:    emailSvc,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		clock:    clock,
		app:      a,
	}
	a.Report = reg.Mount(Modules(deps))

	if breaker, ok := sender.(interface{ State() string }); ok {
		a.addCheck(httpapi.HealthCheck{Name: "mail", Check: func(context.Context) error {
			if breaker.State() == "open" {
				return errors.New("mail relay circuit open")
			}
			return nil
		}})
	}

	reg.Handle(registry.Route{Name: "health", Method: http.MethodGet, Path: "/healthz",
		Handler: httpapi.NewHealthHandler(a.checks...).ServeHTTP, Description: "Database and mail relay health"})
	reg.Handle(registry.Route{Name: "metrics", Method: http.MethodGet, Path: "/metrics",
		Handler: promhttp.Handler().ServeHTTP, Description: "Prometheus metrics"})
	reg.Handle(registry.Route{Name: "dashboard", Method: http.MethodGet, Path: "/",
		Handler: httpapi.NewDashboardHandler(root, reg).ServeHTTP, Description: "Route dashboard"})

	staticPrefix := cfg.Server.BasePath + "/static/"
	root.PathPrefix(staticPrefix).Handler(httpapi.StaticHandler(staticPrefix)).Name("static")

	a.Handler = httpapi.RequestID(httpapi.Recover(root))
	return a
}

// track wraps open so that every handle is closed by App.Close
func (a *App) track(open sqlite.Opener) sqlite.Opener {
	return func(name string) (*sql.DB, error) {
		db, err := open(name)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.dbs = append(a.dbs, db)
		a.mu.Unlock()
		return db, nil
	}
}

func (a *App) addCheck(c httpapi.HealthCheck) {
	a.mu.Lock()
	a.checks = append(a.checks, c)
	a.mu.Unlock()
}

func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, db := range a.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.dbs = nil
	if len(errs) > 0 {
		logger.Error("Failed to close databases", "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte(`{"error":"method not allowed"}` + "\n"))
}
