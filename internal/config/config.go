package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config carries the process-level settings. Values come from flags with
// environment variables taking precedence; the site section is loaded from a
// separate TOML file so credentials stay out of the environment.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	RedisURL      string `env:"REDIS_URL"`
	SitePath      string `env:"SITE_CONFIG"`
	UploaderPath  string `env:"UPLOADER_PATH"`
	ShortenerPath string `env:"SHORTENER_PATH"`

	Site Site
}

// Site is the contents of the TOML site file: identity, domains, and the two
// trust mechanisms (shared upload token and the user list).
type Site struct {
	Name         string `toml:"name"`
	HTTPS        bool   `toml:"https"`
	Domain       string `toml:"domain"`
	UploadDomain string `toml:"upload_domain,omitempty"`
	UploadToken  string `toml:"upload_token"`
	Users        []User `toml:"users"`
}

// User is one entry of the site's user list. Credentials are compared
// exact-match on both fields.
type User struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Load parses flags and environment variables, then loads (or creates) the
// site file. args is os.Args[1:] in main and a literal slice in tests.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	envServerAddress := cfg.ServerAddress
	envDatabaseDSN := cfg.DatabaseDSN
	envRedisURL := cfg.RedisURL
	envSitePath := cfg.SitePath
	envUploaderPath := cfg.UploaderPath
	envShortenerPath := cfg.ShortenerPath

	fs := flag.NewFlagSet("sxfs", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddress, "a", "localhost:8080", "Address of the server")
	fs.StringVar(&cfg.DatabaseDSN, "d", "", "PostgreSQL DSN (empty for in-memory storage)")
	fs.StringVar(&cfg.RedisURL, "r", "", "Redis URL for the link cache (empty to disable)")
	fs.StringVar(&cfg.SitePath, "c", "data/config.toml", "Path to the site config file")
	fs.StringVar(&cfg.UploaderPath, "u", "data/uploaders/uploader.sxcu", "Path for the generated uploader definition")
	fs.StringVar(&cfg.ShortenerPath, "s", "data/uploaders/shortener.sxcu", "Path for the generated shortener definition")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envServerAddress != "" {
		cfg.ServerAddress = envServerAddress
	}
	if envDatabaseDSN != "" {
		cfg.DatabaseDSN = envDatabaseDSN
	}
	if envRedisURL != "" {
		cfg.RedisURL = envRedisURL
	}
	if envSitePath != "" {
		cfg.SitePath = envSitePath
	}
	if envUploaderPath != "" {
		cfg.UploaderPath = envUploaderPath
	}
	if envShortenerPath != "" {
		cfg.ShortenerPath = envShortenerPath
	}

	site, err := LoadSite(cfg.SitePath)
	if err != nil {
		return nil, err
	}
	cfg.Site = *site

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadSite reads the site file, creating one with generated secrets when it
// does not exist yet.
func LoadSite(path string) (*Site, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeDefaultSite(path); err != nil {
			return nil, fmt.Errorf("failed to create site config %s: %w", path, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site config %s: %w", path, err)
	}

	site := &Site{}
	if err := toml.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("failed to parse site config %s: %w", path, err)
	}

	return site, nil
}

func writeDefaultSite(path string) error {
	site := Site{
		Name:        "sxfs",
		HTTPS:       false,
		Domain:      "localhost:8080",
		UploadToken: RandomBase64(100),
		Users: []User{
			{Username: "admin", Password: RandomBase64(25)},
		},
	}

	data, err := toml.Marshal(site)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o600)
}

func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.Site.Name == "" {
		return fmt.Errorf("site name cannot be empty")
	}
	if c.Site.Domain == "" {
		return fmt.Errorf("site domain cannot be empty")
	}
	if c.Site.UploadToken == "" {
		return fmt.Errorf("upload token cannot be empty")
	}
	return nil
}

// BaseURL is the canonical URL of the site, derived from the https flag and
// the configured domain.
func (s *Site) BaseURL() string {
	return s.scheme() + "://" + s.Domain
}

// UploadBaseURL is the URL uploads are sent to. It differs from BaseURL only
// when a separate upload domain is configured to bypass a proxy body limit.
func (s *Site) UploadBaseURL() string {
	if s.UploadDomain == "" {
		return s.BaseURL()
	}
	return s.scheme() + "://" + s.UploadDomain
}

func (s *Site) scheme() string {
	if s.HTTPS {
		return "https"
	}
	return "http"
}

// FindUser returns the configured user matching both username and password.
func (s *Site) FindUser(username, password string) (User, bool) {
	for _, u := range s.Users {
		if u.Username == username && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// RandomBase64 generates a URL-safe base64 string of exactly chars
// characters.
func RandomBase64(chars int) string {
	data := make([]byte, (chars*3+3)/4)
	rand.Read(data)
	return base64.RawURLEncoding.EncodeToString(data)[:chars]
}
