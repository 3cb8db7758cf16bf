package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// SupportedLanguages lists the language tags the catalog accepts for localized listings.
var SupportedLanguages = []string{"en", "ru", "uk"}

const (
	DefaultCacheTTL = 600.0
	DefaultTimeout  = 15.0

	MinThumbnailDimension = 50
	MaxThumbnailDimension = 1000
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Browser     BrowserConfig      `toml:"browser"`
	Credentials []CredentialConfig `toml:"credentials"`
	Catalog     CatalogConfig      `toml:"catalog"`
	Server      ServerConfig       `toml:"server"`
	Store       StoreConfig        `toml:"store"`
}

// BrowserConfig contains the browse-tree settings.
type BrowserConfig struct {
	CacheTTL   float64 `toml:"cache_ttl"`  // seconds; 0 takes the default
	Timeout    float64 `toml:"timeout"`    // seconds per remote call
	Language   string  `toml:"language"`   // one of SupportedLanguages
	ShowHidden bool    `toml:"show_hidden"`
	Lyrics     bool    `toml:"lyrics"`

	// Menu accepts either a plain list of catalog references or a full
	// {title,image,class,items} object; parsed by the menu package.
	Menu any `toml:"menu"`

	// ThumbnailResolution accepts "W", "WxH" or a {width,height} table.
	ThumbnailResolution any `toml:"thumbnail_resolution"`
}

// CredentialConfig is one entry of the ordered credential list.
//
// An entry carries either a username/password pair or a refresh token.
type CredentialConfig struct {
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	RefreshToken string `toml:"refresh_token"`
}

// CatalogConfig contains remote catalog API settings.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"`
	Codec   string `toml:"codec"`   // preferred download codec
	Bitrate int    `toml:"bitrate"` // preferred bitrate in kbps
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// ExternalURL is the base URL reachable by playback clients. Container
	// media cannot be resolved to delivery URLs without it.
	ExternalURL string `toml:"external_url"`
}

// StoreConfig contains session store settings.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Resolution is a parsed thumbnail target resolution.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.Browser.Language = DefaultLanguage()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks all host-supplied settings and applies defaults in place.
//
// Menu options are validated separately by the menu package since their shape
// depends on the catalog reference sanitizer.
func (c *Config) Validate() error {
	if c.Browser.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must be >= 0", ErrValidation)
	}
	if c.Browser.CacheTTL == 0 {
		c.Browser.CacheTTL = DefaultCacheTTL
	}

	if c.Browser.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", ErrValidation)
	}
	if c.Browser.Timeout == 0 {
		c.Browser.Timeout = DefaultTimeout
	}

	if c.Browser.Language == "" {
		c.Browser.Language = DefaultLanguage()
	}
	c.Browser.Language = strings.ToLower(c.Browser.Language)
	supported := false
	for _, lang := range SupportedLanguages {
		if c.Browser.Language == lang {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: unsupported language %q", ErrValidation, c.Browser.Language)
	}

	if c.Browser.ThumbnailResolution != nil {
		resolution, err := ParseResolution(c.Browser.ThumbnailResolution)
		if err != nil {
			return err
		}
		c.Browser.ThumbnailResolution = resolution.String()
	}

	for i, credential := range c.Credentials {
		hasPair := credential.Username != "" && credential.Password != ""
		hasToken := credential.RefreshToken != ""
		if !hasPair && !hasToken {
			return fmt.Errorf(
				"%w: credential entry %d requires username/password or refresh_token", ErrValidation, i,
			)
		}
	}

	return nil
}

// CacheTTLDuration returns the configured cache TTL as a [time.Duration].
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.Browser.CacheTTL * float64(time.Second))
}

// TimeoutDuration returns the configured remote call timeout as a [time.Duration].
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Browser.Timeout * float64(time.Second))
}

// ParseResolution normalizes a thumbnail resolution value.
//
// Accepts "300", "300x400", or a {width,height} table with at least one
// dimension (a single dimension is duplicated to both axes). Dimensions are
// bounded to [MinThumbnailDimension, MaxThumbnailDimension] pixels.
func ParseResolution(raw any) (Resolution, error) {
	switch value := raw.(type) {
	case string:
		return parseResolutionString(value)
	case map[string]any:
		return parseResolutionMap(value)
	default:
		return Resolution{}, fmt.Errorf("%w: thumbnail_resolution must be a string or table", ErrValidation)
	}
}

func parseResolutionString(value string) (Resolution, error) {
	parts := strings.Split(value, "x")
	if len(parts) > 2 {
		return Resolution{}, fmt.Errorf("%w: one or two dimensions are required", ErrValidation)
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: dimensions must be presented in a <width>x<height> format", ErrValidation)
	}

	height := width
	if len(parts) == 2 {
		height, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Resolution{}, fmt.Errorf("%w: dimensions must be presented in a <width>x<height> format", ErrValidation)
		}
	}

	return boundResolution(Resolution{Width: width, Height: height})
}

func parseResolutionMap(value map[string]any) (Resolution, error) {
	width, hasWidth, err := dimensionValue(value, "width")
	if err != nil {
		return Resolution{}, err
	}
	height, hasHeight, err := dimensionValue(value, "height")
	if err != nil {
		return Resolution{}, err
	}

	switch {
	case hasWidth && !hasHeight:
		height = width
	case hasHeight && !hasWidth:
		width = height
	case !hasWidth && !hasHeight:
		return Resolution{}, fmt.Errorf("%w: at least one dimension (width, height) must be provided", ErrValidation)
	}

	return boundResolution(Resolution{Width: width, Height: height})
}

func dimensionValue(value map[string]any, key string) (int, bool, error) {
	raw, ok := value[key]
	if !ok {
		return 0, false, nil
	}

	switch number := raw.(type) {
	case int:
		return number, true, nil
	case int64:
		return int(number), true, nil
	case float64:
		return int(number), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be an integer", ErrValidation, key)
	}
}

func boundResolution(resolution Resolution) (Resolution, error) {
	if resolution.Width < MinThumbnailDimension || resolution.Height < MinThumbnailDimension {
		return Resolution{}, fmt.Errorf("%w: min dimension is %dpx", ErrValidation, MinThumbnailDimension)
	}
	if resolution.Width > MaxThumbnailDimension || resolution.Height > MaxThumbnailDimension {
		return Resolution{}, fmt.Errorf("%w: max dimension is %dpx", ErrValidation, MaxThumbnailDimension)
	}
	return resolution, nil
}

// DefaultLanguage guesses the catalog language from the local UTC offset.
//
// Offsets between +2 and +12 hours cover the catalog's home region.
func DefaultLanguage() string {
	_, offset := time.Now().Zone()
	if offset >= 2*60*60 && offset <= 12*60*60 {
		return "ru"
	}
	return "en"
}
