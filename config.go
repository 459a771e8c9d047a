package casinocms

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/eringen/casinocms/converter"
)

// SiteConfig holds all configuration for a casinocms instance. The
// mapstructure tags let the CLI unmarshal it from viper.
type SiteConfig struct {
	Name string `mapstructure:"name"` // Site name (default "Casino CMS")

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // SQLite path (default "data/templates.db")
	OutputDir    string `mapstructure:"output_dir"`    // Root for generated components (default "components/templates")

	AdminPassword string `mapstructure:"admin_password"` // Required: admin login password
	SessionSecret string `mapstructure:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	TemplateCacheTTL time.Duration `mapstructure:"template_cache_ttl"` // default 5min
	MaxUploadSize    int64         `mapstructure:"max_upload_size"`    // bytes, default 5MB

	PropsType    string `mapstructure:"props_type"`    // data prop type name in generated code
	TypesImport  string `mapstructure:"types_import"`  // module the props type is imported from
	BindingsFile string `mapstructure:"bindings_file"` // optional YAML merged over the default bindings

	LogLevel  string `mapstructure:"log_level"`  // debug, info, warn, error
	LogFormat string `mapstructure:"log_format"` // json or console
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Casino CMS"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/templates.db"
	}
	if c.OutputDir == "" {
		c.OutputDir = "components/templates"
	}
	if c.TemplateCacheTTL == 0 {
		c.TemplateCacheTTL = 5 * time.Minute
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 5 << 20
	}
	if c.PropsType == "" {
		c.PropsType = converter.DefaultPropsType
	}
	if c.TypesImport == "" {
		c.TypesImport = converter.DefaultTypesImport
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the logger built from LogLevel and LogFormat.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithFs sets the filesystem generated components are written to
// (default the OS filesystem).
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		a.fs = fs
	}
}

// WithBindings sets the field bindings used for every conversion.
func WithBindings(b *converter.Bindings) Option {
	return func(a *App) {
		a.bindings = b
	}
}

// WithStore uses an already opened Store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithAuthGate replaces the session check guarding admin endpoints.
func WithAuthGate(fn func(c echo.Context) bool) Option {
	return func(a *App) {
		a.authGate = fn
	}
}
