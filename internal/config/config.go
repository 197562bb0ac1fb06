package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath      = "sessionics.yaml"
	DefaultEndpoint  = "https://catalog.awsevents.com/api/myData"
	DefaultWidgetID  = "2mD9wSl40wp2ViMLVpbqhzk20AkPDb6Z"
	DefaultOrigin    = "https://registration.awsevents.com"
	DefaultTimezone  = "America/Los_Angeles"
	DefaultOutputDir = "sessions"
	agendaPageURL    = "https://registration.awsevents.com/flow/awsevents/reinvent24/myagenda/page/myagenda"
)

// ErrMissingCredentials is returned by Validate when any credential is blank.
var ErrMissingCredentials = errors.New("config: credentials are missing")

// Credentials are the three values copied from the browser's myData request.
type Credentials struct {
	Cookie    string `yaml:"cookie"`
	ProfileID string `yaml:"profile_id"`
	AuthToken string `yaml:"auth_token"`
}

// BasicAuthConfig protects the optional calendar server.
type BasicAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Endpoint is the agenda API that is POSTed to.
	Endpoint string `yaml:"endpoint"`
	// WidgetID is sent as the rfwidgetid header.
	WidgetID string `yaml:"widget_id"`
	// Origin is sent as origin/referer.
	Origin string `yaml:"origin"`

	// Timezone is the IANA zone of the venue. Every free-text time is read
	// as wall clock in this zone.
	Timezone string `yaml:"timezone"`

	// EventYear is assumed when scraped dates carry no year. Zero means the
	// current year.
	EventYear int `yaml:"event_year"`

	OutputDir string `yaml:"output_dir"`

	Credentials Credentials `yaml:"credentials"`

	// BasicAuth, if set, guards the calendar server started with -serve.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration with empty credentials.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:  DefaultEndpoint,
		WidgetID:  DefaultWidgetID,
		Origin:    DefaultOrigin,
		Timezone:  DefaultTimezone,
		OutputDir: DefaultOutputDir,
	}
}

// Normalize fills in missing values so partially written files still work.
func (c *Config) Normalize() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.WidgetID == "" {
		c.WidgetID = DefaultWidgetID
	}
	if c.Origin == "" {
		c.Origin = DefaultOrigin
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.EventYear < 0 {
		c.EventYear = 0
	}
	c.Credentials.Cookie = strings.TrimSpace(c.Credentials.Cookie)
	c.Credentials.ProfileID = strings.TrimSpace(c.Credentials.ProfileID)
	c.Credentials.AuthToken = strings.TrimSpace(c.Credentials.AuthToken)
}

// Validate reports ErrMissingCredentials when the API cannot be called.
func (c *Config) Validate() error {
	cr := c.Credentials
	if cr.Cookie == "" || cr.ProfileID == "" || cr.AuthToken == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Year returns EventYear, or the current year in loc when unset.
func (c *Config) Year(loc *time.Location) int {
	if c.EventYear > 0 {
		return c.EventYear
	}
	return time.Now().In(loc).Year()
}

// SetupHelp explains where the credentials come from.
func SetupHelp(path string) string {
	var b strings.Builder
	b.WriteString("Please open developer tools in your browser and log in to view your agenda.\n\n")
	b.WriteString(agendaPageURL + "\n\n")
	fmt.Fprintf(&b, "Update the credentials in %s (shown below) with the corresponding headers from\n", path)
	b.WriteString("the " + DefaultEndpoint + " request.\n\n")
	b.WriteString("credentials:\n")
	b.WriteString("  cookie: \"\"       # cookie header\n")
	b.WriteString("  profile_id: \"\"   # rfapiprofileid header\n")
	b.WriteString("  auth_token: \"\"   # rfauthtoken header\n")
	return b.String()
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config with empty credentials
//     is written with 0600 perms and returned.
//   - Otherwise the YAML is read and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sessionics-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
