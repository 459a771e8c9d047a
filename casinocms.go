// Package casinocms serves the template pipeline of the casino CMS: admins
// upload HTML exports from a design tool, and each upload is converted
// into a React component bound to live template data, written under the
// configured output directory and recorded in a SQLite metadata store.
//
// Users provide the admin pages via the ViewFuncs struct; casinocms owns
// the handlers, middleware, persistence and conversion.
package casinocms

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/eringen/casinocms/converter"
)

// ViewFuncs holds the templ components rendered for the admin pages.
type ViewFuncs struct {
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(templates []TemplateRecord, message string, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires together the store, cache, converter, handlers and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *TemplateCache
	Views  ViewFuncs
	Logger *zap.Logger

	fs            afero.Fs
	bindings      *converter.Bindings
	loginLimiter  *RateLimiter
	uploadLimiter *RateLimiter
	authGate      func(echo.Context) bool
	customRoutes  []func(*App)
	initialized   bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Views:    views,
		fs:       afero.NewOsFs(),
		authGate: IsAdmin,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}
	return a
}

// Init opens the store, loads bindings and registers middleware and routes.
// Start calls it; tests call it directly to serve requests without
// listening.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("casinocms: init store: %w", err)
		}
		a.Store = store
	}
	if a.bindings == nil {
		b, err := loadBindings(a.Config.BindingsFile)
		if err != nil {
			return fmt.Errorf("casinocms: load bindings: %w", err)
		}
		a.bindings = b
	}

	a.Cache = NewTemplateCache(a.Store, a.Config.TemplateCacheTTL)
	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.uploadLimiter = NewRateLimiter(30, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start validates the configuration, initializes the app and serves
// until the server is closed.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return errors.New("casinocms: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("casinocms: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return err
	}

	a.Logger.Info("starting server",
		zap.String("addr", a.Config.Addr),
		zap.String("output_dir", a.Config.OutputDir),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loadBindings(path string) (*converter.Bindings, error) {
	if path == "" {
		return converter.DefaultBindings(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return converter.LoadBindings(f)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", handleMetrics)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/templates/upload/", a.handleAdminUpload)

	api := e.Group("/api/admin/templates", a.requireAdmin)
	api.GET("", a.handleListTemplates)
	api.GET("/:id", a.handleGetTemplate)
	api.POST("/upload", a.handleTemplateUpload)
	api.POST("/preview", a.handleTemplatePreview)
}

// Close releases the limiters and the store. Call it on shutdown.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.uploadLimiter != nil {
		a.uploadLimiter.Stop()
	}
	_ = a.Logger.Sync()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
