package http

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/registry"

	"github.com/gorilla/mux"
)

//go:embed web/templates/dashboard.html
var dashboardHTML string

//go:embed web/static
var webFS embed.FS

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

type RouteInfo struct {
	Name        string `json:"endpoint"`
	URL         string `json:"url"`
	Methods     string `json:"methods"`
	Description string `json:"description"`
}

type RouteGroup struct {
	Segment string      `json:"segment"`
	Routes  []RouteInfo `json:"routes"`
}

// DashboardHandler lists every mounted route grouped by its first path
// segment. The root and static asset routes are left out.
type DashboardHandler struct {
	router   *mux.Router
	registry *registry.Registry
}

func NewDashboardHandler(router *mux.Router, reg *registry.Registry) *DashboardHandler {
	return &DashboardHandler{router: router, registry: reg}
}

func (h *DashboardHandler) Collect() ([]RouteGroup, int, error) {
	base := h.registry.BasePath()
	bySegment := make(map[string][]RouteInfo)
	total := 0

	err := h.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		rel := strings.TrimPrefix(tpl, base)
		if rel == "" || rel == "/" || rel == "/static" || strings.HasPrefix(rel, "/static/") {
			return nil
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"ANY"}
		}
		shown := make([]string, 0, len(methods))
		for _, m := range methods {
			if m != http.MethodHead && m != http.MethodOptions {
				shown = append(shown, m)
			}
		}

		segment := strings.SplitN(strings.TrimPrefix(rel, "/"), "/", 2)[0]
		bySegment[segment] = append(bySegment[segment], RouteInfo{
			Name:        route.GetName(),
			URL:         tpl,
			Methods:     strings.Join(shown, ", "),
			Description: h.registry.Describe(route.GetName()),
		})
		total++
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	groups := make([]RouteGroup, 0, len(bySegment))
	for segment, routes := range bySegment {
		sort.Slice(routes, func(i, j int) bool {
			if routes[i].URL == routes[j].URL {
				return routes[i].Methods < routes[j].Methods
			}
			return routes[i].URL < routes[j].URL
		})
		groups = append(groups, RouteGroup{Segment: segment, Routes: routes})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Segment < groups[j].Segment })
	return groups, total, nil
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	groups, total, err := h.Collect()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, map[string]any{"total": total, "groups": groups})
		return
	}

	var buf bytes.Buffer
	data := map[string]any{"BasePath": h.registry.BasePath(), "Total": total, "Groups": groups}
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		logger.ErrorContext(r.Context(), "Failed to render dashboard", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// StaticHandler serves the dashboard assets below prefix
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
