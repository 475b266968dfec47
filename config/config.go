// Package config loads the process configuration of the edenpdf services
// from a JSON file, with secrets overridable from the environment.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/edentir/edenpdf"
	"github.com/go-sql-driver/mysql"
)

// Environment variables that override file values.
const (
	EnvListen        = "EDENPDF_LISTEN"
	EnvJWTSecret     = "EDENPDF_JWT_SECRET"
	EnvSQLDSN        = "EDENPDF_SQL_DSN"
	EnvRedisPassword = "EDENPDF_REDIS_PASSWORD"
)

// Duration is a time.Duration written as a Go duration string ("15s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"15s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// SQL describes the invoice database. DSN, when set, wins over the parts.
type SQL struct {
	Type  string `json:"type"` // mysql, pgsql
	Host  string `json:"host"`
	Port  int    `json:"port"`
	User  string `json:"user"`
	PW    string `json:"pw"`
	DB    string `json:"db"`
	TZ    string `json:"tz"`
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// Redis describes the artifact cache.
type Redis struct {
	Host string   `json:"host"`
	Port int      `json:"port"`
	PW   string   `json:"pw"`
	DB   int      `json:"db"`
	TTL  Duration `json:"ttl"`
}

// Addr returns host:port.
func (r Redis) Addr() string { return fmt.Sprintf("%s:%d", r.Host, r.Port) }

// Config is the file layout.
type Config struct {
	AppName         string   `json:"app_name"`
	Listen          string   `json:"listen"`
	TemplatesDir    string   `json:"templates_dir"`
	Letterhead      string   `json:"letterhead"`
	Logo            string   `json:"logo"`
	WrapPolicy      string   `json:"wrap_policy"`
	PageBottom      float64  `json:"page_bottom"`
	Codes           *bool    `json:"codes"`
	Compress        *bool    `json:"compress"`
	CORSOrigins     []string `json:"cors_origins"`
	JWTSecret       string   `json:"jwt_secret"`
	SQL             *SQL     `json:"sql"`
	Redis           *Redis   `json:"redis"`
	OutputDir       string   `json:"output_dir"`
	Workers         int      `json:"workers"`
	ShutdownTimeout Duration `json:"shutdown_timeout"`

	root string // directory of the loaded file
}

// Default returns the values used for keys absent from the file.
func Default() Config {
	return Config{
		AppName:         "edenpdf",
		Listen:          ":8080",
		TemplatesDir:    "templates",
		Letterhead:      "Entete EDEN.pdf",
		WrapPolicy:      edenpdf.WrapAdaptive.Name,
		PageBottom:      20,
		ShutdownTimeout: Duration(15 * time.Second),
	}
}

// Load reads path over the defaults, then applies the environment.
// Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	c.root = filepath.Dir(path)
	log.Printf("[INFO] config loaded from %s", path)
	return c, nil
}

// Parse decodes a configuration document and applies the environment.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	c.applyEnv(os.LookupEnv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvListen); ok {
		c.Listen = v
	}
	if v, ok := lookup(EnvJWTSecret); ok {
		c.JWTSecret = v
	}
	if v, ok := lookup(EnvSQLDSN); ok {
		if c.SQL == nil {
			c.SQL = &SQL{Type: "pgsql"}
		}
		c.SQL.DSN = v
	}
	if v, ok := lookup(EnvRedisPassword); ok && c.Redis != nil {
		c.Redis.PW = v
	}
}

// Validate checks values that Load cannot fix.
func (c *Config) Validate() error {
	if _, err := edenpdf.WrapPolicyByName(c.WrapPolicy); err != nil {
		return err
	}
	if c.SQL != nil {
		switch c.SQL.Type {
		case "mysql", "pgsql", "postgres":
		default:
			return fmt.Errorf("%w: sql type %q", edenpdf.ErrInvalidParam, c.SQL.Type)
		}
	}
	if c.Redis != nil && (c.Redis.Host == "" || c.Redis.Port <= 0) {
		return fmt.Errorf("%w: redis needs host and port", edenpdf.ErrInvalidParam)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", edenpdf.ErrInvalidParam, c.Workers)
	}
	return nil
}

// Path resolves p against the directory of the loaded file.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// RenderOptions converts the file values into rendering options. The logo
// is read from disk.
func (c *Config) RenderOptions() ([]edenpdf.Option, error) {
	wrap, err := edenpdf.WrapPolicyByName(c.WrapPolicy)
	if err != nil {
		return nil, err
	}
	opts := []edenpdf.Option{
		edenpdf.WithWrapPolicy(wrap),
		edenpdf.WithPageBottom(c.PageBottom),
	}
	if c.Codes != nil && !*c.Codes {
		opts = append(opts, edenpdf.WithoutCodes())
	}
	if c.Compress != nil {
		opts = append(opts, edenpdf.WithCompression(*c.Compress))
	}
	if c.Logo != "" {
		logo, err := os.ReadFile(c.Path(c.Logo))
		if err != nil {
			return nil, fmt.Errorf("config: logo: %w", err)
		}
		opts = append(opts, edenpdf.WithLogo(logo))
	}
	return opts, nil
}

// RenderConfig builds the rendering configuration.
func (c *Config) RenderConfig() (edenpdf.Config, error) {
	opts, err := c.RenderOptions()
	if err != nil {
		return edenpdf.Config{}, err
	}
	cfg := edenpdf.NewConfig(opts...)
	return cfg, cfg.Validate()
}

// ConnString returns the connection string of the SQL source.
func (s *SQL) ConnString() string {
	if s.DSN != "" {
		return s.DSN
	}
	switch s.Type {
	case "mysql":
		m := mysql.NewConfig()
		m.User = s.User
		m.Passwd = s.PW
		m.Net = "tcp"
		m.Addr = s.Host + ":" + strconv.Itoa(s.Port)
		m.DBName = s.DB
		m.ParseTime = true
		if s.TZ != "" {
			if loc, err := time.LoadLocation(s.TZ); err == nil {
				m.Loc = loc
			} else {
				log.Printf("[WARN] sql tz %q ignored: %v", s.TZ, err)
			}
		}
		return m.FormatDSN()
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			s.Host, s.Port, s.User, s.PW, s.DB)
		if s.TZ != "" {
			dsn += " TimeZone=" + s.TZ
		}
		return dsn
	}
}
