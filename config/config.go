package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"sheetfolio/gviz"
	"sheetfolio/portfolio"
)

const (
	KeySpreadsheetID    = "sheet.spreadsheet_id"
	KeyEndpoint         = "sheet.endpoint"
	KeyWorkbook         = "sheet.workbook"
	KeyDataFile         = "sheet.data_file"
	KeyFetchTimeout     = "fetch.timeout"
	KeyFetchUserAgent   = "fetch.user_agent"
	KeyPageTemplate     = "page.template"
	KeyPagePlaceholder  = "page.placeholder_image"
	KeyServerPort       = "server.port"
	KeyServerStaticDir  = "server.static_dir"
	KeyHistoryDB        = "history.db"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	EnvPrefix           = "SHEETFOLIO"
	defaultFetchTimeout = 30 * time.Second
)

type Config struct {
	Sheet   SheetConfig   `mapstructure:"sheet" yaml:"sheet"`
	Fetch   FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Page    PageConfig    `mapstructure:"page" yaml:"page"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// SheetConfig selects the data source: the public export of a spreadsheet,
// a local workbook when Workbook is set, or a static data.json when DataFile
// is set. Workbook wins over DataFile.
type SheetConfig struct {
	SpreadsheetID string `mapstructure:"spreadsheet_id" yaml:"spreadsheet_id" validate:"required_without_all=Workbook DataFile"`
	Endpoint      string `mapstructure:"endpoint" yaml:"endpoint" validate:"required"`
	Workbook      string `mapstructure:"workbook" yaml:"workbook"`
	DataFile      string `mapstructure:"data_file" yaml:"data_file"`
}

type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

type PageConfig struct {
	Template         string `mapstructure:"template" yaml:"template"`
	PlaceholderImage string `mapstructure:"placeholder_image" yaml:"placeholder_image" validate:"omitempty,url"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`
}

type HistoryConfig struct {
	DB string `mapstructure:"db" yaml:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# sheetfolio configuration
sheet:
  # ID of a spreadsheet shared as "anyone with the link can view".
  spreadsheet_id: ""
  endpoint: "` + gviz.DefaultEndpoint + `"
  # Optional local .xlsx used instead of the network export.
  workbook: ""
  # Optional data.json ({about, socialMedia, portfolio, achievements}) used
  # instead of the network export when no workbook is set.
  data_file: ""

fetch:
  timeout: 30s
  user_agent: "sheetfolio/1.0"

page:
  # Optional HTML page with the mount point ids; the embedded page is used when empty.
  template: ""
  placeholder_image: "` + portfolio.PlaceholderImageURL + `"

server:
  port: 8080
  static_dir: ""

history:
  # SQLite file recording every load; empty disables history.
  db: ""

log:
  level: info
  format: console
`
}

// UsesWorkbook reports whether the local workbook source is configured.
func (c Config) UsesWorkbook() bool {
	return strings.TrimSpace(c.Sheet.Workbook) != ""
}

// UsesDataFile reports whether the static data file is the active source.
func (c Config) UsesDataFile() bool {
	return !c.UsesWorkbook() && strings.TrimSpace(c.Sheet.DataFile) != ""
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !cfg.UsesWorkbook() && !cfg.UsesDataFile() {
		if err := gviz.ValidateEndpoint(cfg.Sheet.Endpoint); err != nil {
			return nil, fmt.Errorf("validation failed: sheet.endpoint: %w", err)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySpreadsheetID, "")
	v.SetDefault(KeyEndpoint, gviz.DefaultEndpoint)
	v.SetDefault(KeyWorkbook, "")
	v.SetDefault(KeyDataFile, "")
	v.SetDefault(KeyFetchTimeout, defaultFetchTimeout)
	v.SetDefault(KeyFetchUserAgent, "sheetfolio/1.0")
	v.SetDefault(KeyPageTemplate, "")
	v.SetDefault(KeyPagePlaceholder, portfolio.PlaceholderImageURL)
	v.SetDefault(KeyServerPort, 8080)
	v.SetDefault(KeyServerStaticDir, "")
	v.SetDefault(KeyHistoryDB, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}
