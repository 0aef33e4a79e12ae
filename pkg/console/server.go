// Package console is the warehouse-management web console: it authenticates
// requests, builds each user's routes from their menu permissions and serves
// the entity pages over per-user stores.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nna-wms/wmsconsole/pkg/config"
	"github.com/nna-wms/wmsconsole/pkg/crud"
	"github.com/nna-wms/wmsconsole/pkg/httputil"
	"github.com/nna-wms/wmsconsole/pkg/logging"
	"github.com/nna-wms/wmsconsole/pkg/menu"
	"github.com/nna-wms/wmsconsole/pkg/metrics"
	"github.com/nna-wms/wmsconsole/pkg/notify"
	"github.com/nna-wms/wmsconsole/pkg/ratelimit"
	"github.com/nna-wms/wmsconsole/pkg/restclient"
	"github.com/nna-wms/wmsconsole/pkg/session"
	"github.com/nna-wms/wmsconsole/pkg/wms"
)

// DefaultWorkspaceTTL is how long an idle user's stores are kept.
const DefaultWorkspaceTTL = 30 * time.Minute

const healthTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Config *config.Config
	// Client talks to the WMS API. Built from Config when nil.
	Client *restclient.Client
	Logger *slog.Logger
	// Metrics defaults to a fresh registry.
	Metrics *metrics.Metrics
	// Fallback is the menu tree for sessions that carry none.
	Fallback     []menu.Node
	WorkspaceTTL time.Duration
}

// Server is the console HTTP server.
type Server struct {
	cfg      *config.Config
	base     *slog.Logger
	log      *slog.Logger
	client   *restclient.Client
	metrics  *metrics.Metrics
	gate     *session.Gate
	limiter  *ratelimit.Limiter
	views    *views
	spaces   *workspaces
	builder  *menu.Builder
	fallback []menu.Node
	router   chi.Router

	httpServer *http.Server
}

// New wires a Server from opts.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := logging.Component(opts.Logger, "console")

	client := opts.Client
	if client == nil {
		var err error
		client, err = restclient.New(cfg.API.BaseURL,
			restclient.WithTimeout(cfg.API.Timeout),
			restclient.WithEnvelope(cfg.API.Envelope),
			restclient.WithTokenSource(session.Token),
		)
		if err != nil {
			return nil, fmt.Errorf("create api client: %w", err)
		}
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New(metrics.DefaultNamespace)
	}

	gate, err := session.NewGate(session.GateConfig{
		Secret:     []byte(cfg.Auth.Secret),
		Exempt:     exemptPaths(cfg),
		SignInPath: cfg.Auth.SignInPath,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create session gate: %w", err)
	}
	if !gate.Verifies() {
		log.Warn("no auth secret configured, access tokens are not verified")
	}

	v, err := loadViews(log)
	if err != nil {
		return nil, err
	}

	ttl := opts.WorkspaceTTL
	if ttl <= 0 {
		ttl = DefaultWorkspaceTTL
	}

	s := &Server{
		cfg:      cfg,
		base:     opts.Logger,
		log:      log,
		client:   client,
		metrics:  m,
		gate:     gate,
		views:    v,
		fallback: opts.Fallback,
	}
	if cfg.Auth.SignInLimit > 0 {
		s.limiter = ratelimit.New(ratelimit.Config{
			PerMinute:      cfg.Auth.SignInLimit,
			TrustedProxies: cfg.Auth.TrustedProxies,
		})
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.spaces = newWorkspaces(ttl, s.newWorkspace)
	s.builder = s.newBuilder()
	s.router = s.routes()
	s.httpServer.Handler = s.router
	return s, nil
}

// exemptPaths always keeps the built-in exemptions and the sign-in page, so a
// narrower configured list cannot lock users out of signing in.
func exemptPaths(cfg *config.Config) []string {
	paths := slices.Clone(session.DefaultExempt)
	if p := cfg.Auth.SignInPath; p != "" && !slices.Contains(paths, p) {
		paths = append(paths, p)
	}
	for _, p := range cfg.Auth.Exempt {
		if !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}

func (s *Server) newWorkspace() *Workspace {
	hub := notify.NewHub(
		notify.WithHistory(s.cfg.Notify.History),
		notify.WithOriginPatterns(s.cfg.Notify.OriginPatterns...),
		notify.WithLogger(s.base),
	)
	notifier := notify.Multi{hub, notify.NewLogNotifier(s.base), s.metrics}
	return &Workspace{
		Stores: NewStores(s.client,
			crud.WithNotifier(notifier),
			crud.WithObserver(s.metrics),
			crud.WithLogger(logging.Component(s.base, "crud")),
		),
		Notifications: hub,
	}
}

// newBuilder maps every catalog page to its entity page and declares the
// hand-written form pages.
func (s *Server) newBuilder() *menu.Builder {
	b := &menu.Builder{
		Pages:       make(map[string]http.Handler),
		Children:    make(map[string][]menu.ChildRoute),
		Placeholder: menu.UnderDevelopment,
	}
	register(b, s, wms.EndpointUom, func(st *Stores) *crud.Store[wms.Uom, wms.CreateUom, wms.UpdateUom] { return st.Uom })
	register(b, s, wms.EndpointPallet, func(st *Stores) *crud.Store[wms.Pallet, wms.CreatePallet, wms.UpdatePallet] { return st.Pallet })
	register(b, s, wms.EndpointSupplier, func(st *Stores) *crud.Store[wms.Supplier, wms.CreateSupplier, wms.UpdateSupplier] { return st.Supplier })
	register(b, s, wms.EndpointIo, func(st *Stores) *crud.Store[wms.Io, wms.CreateIo, wms.UpdateIo] { return st.Io })
	register(b, s, wms.EndpointWarehouse, func(st *Stores) *crud.Store[wms.Warehouse, wms.CreateWarehouse, wms.UpdateWarehouse] { return st.Warehouse })
	register(b, s, wms.EndpointMenu, func(st *Stores) *crud.Store[wms.Menu, wms.CreateMenu, wms.UpdateMenu] { return st.Menu })
	register(b, s, wms.EndpointItem, func(st *Stores) *crud.Store[wms.Item, wms.CreateItem, wms.UpdateItem] { return st.Item })
	register(b, s, wms.EndpointUser, func(st *Stores) *crud.Store[wms.User, wms.CreateUser, wms.UpdateUser] { return st.User })
	register(b, s, wms.EndpointRole, func(st *Stores) *crud.Store[wms.Role, wms.CreateRole, wms.UpdateRole] { return st.Role },
		FormCreate, FormUpdate)
	register(b, s, wms.EndpointInboundPlanning, func(st *Stores) *crud.Store[wms.InboundPlanning, wms.CreateInboundPlanning, wms.UpdateInboundPlanning] {
		return st.InboundPlanning
	}, FormCreate)
	return b
}

// register adds the entity page behind endpoint and the named form pages as
// its manual children.
func register[TData, TCreate, TUpdate any](b *menu.Builder, s *Server, endpoint string, pick func(*Stores) *crud.Store[TData, TCreate, TUpdate], forms ...string) {
	entity, ok := wms.ByEndpoint(endpoint)
	if !ok || entity.Page == "" {
		panic("console: no page for endpoint " + endpoint)
	}

	page := NewEntityPage(entity, pick, s.views, s.log)
	for _, mode := range forms {
		form := NewFormPage(entity, mode, pick, s.views, s.log)
		b.Children[entity.Page] = append(b.Children[entity.Page], menu.ChildRoute{Path: mode, Page: form})
		switch mode {
		case FormCreate:
			page.CreatePath = entity.Page + "/" + mode
		case FormUpdate:
			page.UpdatePath = entity.Page + "/" + mode
		}
	}
	b.Pages[entity.Page] = page
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, recoverer(s.log), accessLog(s.log), s.metrics.Middleware, securityHeaders)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get(s.gate.SignInPath(), s.signInPage)
	r.With(ratelimit.Middleware(s.limiter, s.signInLimited)).Post(s.gate.SignInPath(), s.signIn)
	r.Get("/signout", s.signOut)
	r.Post("/signout", s.signOut)

	r.Group(func(r chi.Router) {
		r.Use(s.gate.Middleware, s.workspace)
		r.Get("/", s.home)
		r.Get("/api/sidebar", s.sidebar)
		r.Get("/api/routes", s.routeTable)
		r.Get("/api/menus/parents", s.parentMenus)
		r.Get("/api/notifications", s.notifications)
	})

	// Menu pages differ per user, so they are resolved after the static
	// routes miss.
	r.NotFound(s.gate.Middleware(s.workspace(http.HandlerFunc(s.dynamic))).ServeHTTP)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Routes builds the routes for a menu tree.
func (s *Server) Routes(tree []menu.Node) []menu.Route {
	routes := s.builder.Build(tree)
	s.metrics.ObserveRoutes(len(routes))
	return routes
}

// MenuTree returns the menu tree of the request's session, or the fallback
// tree when the session carries none.
func (s *Server) MenuTree(r *http.Request) []menu.Node {
	if sess, ok := session.FromContext(r.Context()); ok {
		if tree := sess.Menus(); len(tree) > 0 {
			return tree
		}
	}
	return s.fallback
}

// workspace attaches the caller's workspace and menu tree. It runs after
// the gate, so a session is present.
func (s *Server) workspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			s.views.writeError(w, r, http.StatusUnauthorized, "missing_token", "Not signed in")
			return
		}
		ctx := withWorkspace(r.Context(), s.spaces.get(sess.Token))
		ctx = withTree(ctx, s.MenuTree(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// dynamic serves the menu pages of the caller.
func (s *Server) dynamic(w http.ResponseWriter, r *http.Request) {
	ws, ok := WorkspaceFrom(r.Context())
	if !ok {
		s.notFound(w, r)
		return
	}
	ws.routerFor(treeFrom(r.Context()), s.mount).ServeHTTP(w, r)
}

// mount registers built routes on a fresh router. The first registration of
// a path wins; paths with router syntax are skipped.
func (s *Server) mount(tree []menu.Node) http.Handler {
	mux := chi.NewRouter()
	seen := make(map[string]bool)
	for _, rt := range s.Routes(tree) {
		path := rt.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		if strings.ContainsAny(path, "{}*") {
			s.log.Warn("skipping menu path with router syntax", "id", rt.ID, "path", rt.Path)
			continue
		}
		if seen[path] {
			s.log.Debug("duplicate menu path", "id", rt.ID, "path", path)
			continue
		}
		seen[path] = true
		mux.Handle(path, rt.Page)
	}
	mux.NotFound(s.notFound)
	return mux
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.views.writeError(w, r, http.StatusNotFound, "not_found", "Page not found")
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	tree := treeFrom(r.Context())
	var links []menu.RouteInfo
	for _, info := range menu.Describe(s.builder.Build(tree)) {
		if info.Page != menu.PageName(menu.UnderDevelopment) && !strings.HasPrefix(info.Page, "form:") {
			links = append(links, info)
		}
	}
	s.views.render(w, r, http.StatusOK, "home", "Home", links)
}

func (s *Server) sidebar(w http.ResponseWriter, r *http.Request) {
	active := r.URL.Query().Get("active")
	httputil.WriteOK(w, menu.Sidebar(treeFrom(r.Context()), active))
}

func (s *Server) routeTable(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, menu.Describe(s.Routes(treeFrom(r.Context()))))
}

// parentMenus lists the menus that can own children, for the menu form.
func (s *Server) parentMenus(w http.ResponseWriter, r *http.Request) {
	ws, _ := WorkspaceFrom(r.Context())
	store := ws.Stores.ParentMenu
	res := store.FetchAll(r.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	httputil.WriteJSON(w, status, actionResponse[wms.Menu]{Result: res, State: store.Snapshot()})
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	ws, _ := WorkspaceFrom(r.Context())
	ws.Notifications.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if path := s.cfg.API.HealthPath; path != "" {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.client.Health(ctx, path); err != nil {
			s.log.Warn("api health check failed", "error", err)
			httputil.WriteServiceUnavailable(w, "api_unavailable", err.Error())
			return
		}
	}
	httputil.WriteOK(w, map[string]string{"status": "ok"})
}

// ListenAndServe serves on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("console listening", "addr", s.cfg.Listen, "api", s.client.BaseURL())
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// SweepWorkspaces evicts idle workspaces and sign-in rate buckets every
// interval until ctx is done.
func (s *Server) SweepWorkspaces(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.spaces.sweep(); n > 0 {
				s.log.Debug("evicted idle workspaces", "count", n, "remaining", s.spaces.size())
			}
			if s.limiter != nil {
				s.limiter.Sweep()
			}
		}
	}
}
