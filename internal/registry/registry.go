// Package registry mounts a fixed table of feature modules onto one router.
// Each module is built and mounted in isolation: a module that fails to
// build, declares an invalid route, or panics is reported and skipped while
// the remaining modules still mount.
package registry

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"appsuite-backend/internal/logger"

	"github.com/gorilla/mux"
)

const NoDescription = "No description"

// Route is one endpoint of a module. Path is relative to the module prefix.
type Route struct {
	Name        string
	Method      string
	Path        string
	Description string
	Handler     http.HandlerFunc
	// Protected routes require an access token when admin protection is on
	Protected bool
	// Limited routes are subject to the per-client rate limiter
	Limited bool
}

// Blueprint is a mountable group of routes
type Blueprint interface {
	Routes() []Route
}

// Module is one entry of the static module table
type Module struct {
	App         string
	Name        string
	Description string
	Build       func() (Blueprint, error)
	// Mounted runs once every route of the module is registered. Modules
	// publish whatever they built here, never from Build.
	Mounted func()
}

func (m Module) Prefix(basePath string) string {
	return basePath + "/" + m.App + "/" + m.Name
}

// RouteMiddleware decorates a route's handler at mount time
type RouteMiddleware func(route Route, next http.Handler) http.Handler

type Outcome struct {
	App         string `json:"app"`
	Module      string `json:"module"`
	Description string `json:"description,omitempty"`
	Prefix      string `json:"prefix"`
	Routes      int    `json:"routes"`
	Err         error  `json:"-"`
}

func (o Outcome) OK() bool { return o.Err == nil }

// Report is the startup outcome of every module, in table order
type Report []Outcome

func (r Report) Mounted() int {
	n := 0
	for _, o := range r {
		if o.OK() {
			n++
		}
	}
	return n
}

func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

type Registry struct {
	root       *mux.Router
	basePath   string
	middleware []RouteMiddleware

	mu           sync.RWMutex
	descriptions map[string]string
}

func New(root *mux.Router, basePath string, middleware ...RouteMiddleware) *Registry {
	return &Registry{
		root:         root,
		basePath:     basePath,
		middleware:   middleware,
		descriptions: make(map[string]string),
	}
}

func (r *Registry) BasePath() string { return r.basePath }

// Mount builds and mounts every module, returning one outcome per module
func (r *Registry) Mount(modules []Module) Report {
	report := make(Report, 0, len(modules))
	for _, m := range modules {
		out := r.mountModule(m)
		log := logger.WithModule(out.App + "/" + out.Module)
		if out.OK() {
			if m.Mounted != nil {
				m.Mounted()
			}
			log.Info("Registered module", "prefix", out.Prefix, "routes", out.Routes)
		} else {
			log.Error("Failed to register module", "error", out.Err)
		}
		report = append(report, out)
	}
	return report
}

func (r *Registry) mountModule(m Module) (out Outcome) {
	out = Outcome{App: m.App, Module: m.Name, Description: m.Description, Prefix: m.Prefix(r.basePath)}
	defer func() {
		if rec := recover(); rec != nil {
			out.Routes = 0
			out.Err = fmt.Errorf("panic while mounting: %v", rec)
		}
	}()

	if m.App == "" || m.Name == "" {
		out.Err = errors.New("module needs an app and a name")
		return out
	}
	if m.Build == nil {
		out.Err = errors.New("module has no builder")
		return out
	}

	bp, err := m.Build()
	if err != nil {
		out.Err = fmt.Errorf("build failed: %w", err)
		return out
	}
	if bp == nil {
		out.Err = errors.New("builder returned no blueprint")
		return out
	}

	routes := bp.Routes()
	if err := r.validate(out.Prefix, routes); err != nil {
		out.Err = err
		return out
	}

	// wrap every handler first so a panicking middleware leaves no route behind
	handlers := make([]http.Handler, len(routes))
	for i, route := range routes {
		handlers[i] = r.wrap(route)
	}
	for i, route := range routes {
		r.register(out.Prefix, route, handlers[i])
	}
	out.Routes = len(routes)
	return out
}

// validate checks the whole module before anything is registered, so a
// rejected module leaves no routes behind.
func (r *Registry) validate(prefix string, routes []Route) error {
	if len(routes) == 0 {
		return errors.New("blueprint declares no routes")
	}
	scratch := mux.NewRouter()
	seen := make(map[string]bool, len(routes))
	for _, route := range routes {
		switch {
		case route.Name == "":
			return fmt.Errorf("route %s %s has no name", route.Method, route.Path)
		case route.Method == "":
			return fmt.Errorf("route %s has no method", route.Name)
		case !strings.HasPrefix(route.Path, "/"):
			return fmt.Errorf("route %s path %q must start with /", route.Name, route.Path)
		case route.Handler == nil:
			return fmt.Errorf("route %s has no handler", route.Name)
		case seen[route.Name] || r.hasName(route.Name):
			return fmt.Errorf("route name %s is already registered", route.Name)
		}
		if err := scratch.NewRoute().Path(prefix + route.Path).GetError(); err != nil {
			return fmt.Errorf("route %s path %q: %w", route.Name, route.Path, err)
		}
		seen[route.Name] = true
	}
	return nil
}

// Handle registers a route outside any module, relative to the base path
func (r *Registry) Handle(route Route) {
	r.handle(r.basePath, route)
}

func (r *Registry) handle(prefix string, route Route) {
	r.register(prefix, route, r.wrap(route))
}

func (r *Registry) wrap(route Route) http.Handler {
	var h http.Handler = route.Handler
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](route, h)
	}
	return h
}

func (r *Registry) register(prefix string, route Route, h http.Handler) {
	r.root.Handle(prefix+route.Path, h).Methods(route.Method).Name(route.Name)

	description := strings.TrimSpace(route.Description)
	if description == "" {
		description = NoDescription
	}
	r.mu.Lock()
	r.descriptions[route.Name] = description
	r.mu.Unlock()
}

func (r *Registry) hasName(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.descriptions[name]
	return ok
}

// Describe returns the description a route was registered with
func (r *Registry) Describe(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.descriptions[name]; ok {
		return d
	}
	return NoDescription
}
