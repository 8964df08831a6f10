package app

import (
	"time"

	httpapi "appsuite-backend/internal/api/http"
	"appsuite-backend/internal/config"
	"appsuite-backend/internal/registry"
	"appsuite-backend/internal/repository/sqlite"
	"appsuite-backend/internal/security"
	"appsuite-backend/internal/service"

	"github.com/jonboulle/clockwork"
)

type moduleDeps struct {
	cfg      *config.Config
	open     sqlite.Opener
	email    service.EmailService
	tokens   security.TokenManager
	tokenTTL time.Duration
	clock    clockwork.Clock
	app      *App
}

// Modules is the static module table. Adding a feature means adding an
// entry here; nothing is discovered at runtime.
func Modules(d moduleDeps) []registry.Module {
	var (
		waitlist    service.WaitlistService
		safoaiStore *sqlite.SafoaiStore
		pomegrid    *sqlite.PomegridStore
	)
	return []registry.Module{
		{
			App:         "safoai",
			Name:        "waitlist",
			Description: "SafoAI waitlist",
			Build: func() (registry.Blueprint, error) {
				db, err := d.open("safoai")
				if err != nil {
					return nil, err
				}
				safoaiStore = sqlite.NewSafoaiStore(db)
				waitlist = service.NewWaitlistService(
					safoaiStore.WaitlistRepository,
					safoaiStore.NotificationRepository,
					d.email,
					d.clock,
					service.NotificationPolicy(d.cfg.Waitlist.NotificationPolicy),
					d.cfg.Waitlist.MaxNotificationAttempts,
				)
				return httpapi.NewWaitlistHandler(waitlist), nil
			},
			Mounted: func() {
				d.app.Waitlist = waitlist
				d.app.addCheck(httpapi.HealthCheck{Name: "safoai_db", Check: safoaiStore.Ping})
			},
		},
		{
			App:         "pomegrid_procurement",
			Name:        "auth",
			Description: "Pomegrid procurement authentication",
			Build: func() (registry.Blueprint, error) {
				db, err := d.open("pomegrid")
				if err != nil {
					return nil, err
				}
				pomegrid = sqlite.NewPomegridStore(db)
				svc := service.NewAuthService(pomegrid.UserRepository, d.tokens, d.clock)
				sessions := httpapi.NewSessionStore(d.cfg.Auth.SessionSecret, d.cfg.Auth.SecureCookies)
				return httpapi.NewAuthHandler(svc, sessions, d.tokenTTL), nil
			},
			Mounted: func() {
				d.app.addCheck(httpapi.HealthCheck{Name: "pomegrid_db", Check: pomegrid.Ping})
			},
		},
		{
			App:         "users",
			Name:        "routes",
			Description: "Demo users directory",
			Build: func() (registry.Blueprint, error) {
				return httpapi.NewUsersHandler(), nil
			},
		},
	}
}
