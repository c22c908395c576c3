package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vnmap-dataprep/internal/domain"
	apperrors "github.com/vnmap-dataprep/internal/pkg/errors"
	"github.com/vnmap-dataprep/internal/pkg/validator"
)

type Config struct {
	Log      LogConfig
	Boundary BoundaryConfig
	Overpass OverpassConfig
	Roads    RoadsConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Metrics  MetricsConfig
}

type LogConfig struct {
	Level string
}

type BoundaryConfig struct {
	CountryInput   string `validate:"required"`
	ProvincesInput string `validate:"required"`
	Output         string `validate:"required"`
	Output2025     string `validate:"required"`
	NameMapFile    string
	MergePlanFile  string
	StrictNames    bool
	BBoxPrecision  int `validate:"min=0,max=10"`
}

type OverpassConfig struct {
	Endpoints      []string      `validate:"min=1,dive,url"`
	BulkEndpoint   string        `validate:"required,url"`
	CountryISO     string        `validate:"required,len=2"`
	QueryTimeout   time.Duration `validate:"gt=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
	RetryDelay     time.Duration `validate:"gte=0"`
	MaxRetries     int           `validate:"min=0"`
}

type RoadsConfig struct {
	Bounds        domain.BBox
	GridSize      float64  `validate:"gt=0"`
	Workers       int      `validate:"min=1"`
	Types         []string `validate:"min=1,dive,required"`
	Output        string   `validate:"required"`
	BulkOutput    string   `validate:"required"`
	FailOnPartial bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	TileTTL time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type MetricsConfig struct {
	PushgatewayURL string
}

var defaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://lz4.overpass-api.de/api/interpreter",
	"https://z.overpass-api.de/api/interpreter",
}

var defaultRoadTypes = []string{"motorway", "trunk", "primary", "secondary", "tertiary"}

// Load reads an optional .env file (path from CONFIG_FILE, default ".env") and the
// process environment. Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = ".env"
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("BOUNDARY_COUNTRY_INPUT", "gadm_vietnam_country.json")
	v.SetDefault("BOUNDARY_PROVINCES_INPUT", "gadm_vietnam_provinces.json")
	v.SetDefault("BOUNDARY_OUTPUT", "vn_boundaries.json")
	v.SetDefault("BOUNDARY_2025_OUTPUT", "vn_boundaries_2025.json")
	v.SetDefault("BOUNDARY_BBOX_PRECISION", 4)

	v.SetDefault("OVERPASS_ENDPOINTS", strings.Join(defaultEndpoints, ","))
	v.SetDefault("OVERPASS_BULK_ENDPOINT", "https://maps.mail.ru/osm/tools/overpass/api/interpreter")
	v.SetDefault("OVERPASS_COUNTRY_ISO", "VN")
	v.SetDefault("OVERPASS_QUERY_TIMEOUT", 180)
	v.SetDefault("OVERPASS_REQUEST_TIMEOUT", 200)
	v.SetDefault("OVERPASS_RETRY_DELAY", 5000)
	v.SetDefault("OVERPASS_MAX_RETRIES", 5)

	v.SetDefault("ROADS_BOUNDS", "8.0,102.0,24.0,110.0")
	v.SetDefault("ROADS_GRID_SIZE", 0.5)
	v.SetDefault("ROADS_WORKERS", 10)
	v.SetDefault("ROADS_TYPES", strings.Join(defaultRoadTypes, ","))
	v.SetDefault("ROADS_OUTPUT", "assets/roads/vn_roads_full.json")
	v.SetDefault("ROADS_BULK_OUTPUT", "vn_roads.json")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("CACHE_TILE_TTL", 7*24*3600)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
}

func fromViper(v *viper.Viper) (*Config, error) {
	bounds, err := parseBounds(v.GetString("ROADS_BOUNDS"))
	if err != nil {
		return nil, apperrors.ErrInvalidConfig.Wrap(err)
	}

	cfg := &Config{
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Boundary: BoundaryConfig{
			CountryInput:   v.GetString("BOUNDARY_COUNTRY_INPUT"),
			ProvincesInput: v.GetString("BOUNDARY_PROVINCES_INPUT"),
			Output:         v.GetString("BOUNDARY_OUTPUT"),
			Output2025:     v.GetString("BOUNDARY_2025_OUTPUT"),
			NameMapFile:    v.GetString("BOUNDARY_NAME_MAP_FILE"),
			MergePlanFile:  v.GetString("BOUNDARY_MERGE_PLAN_FILE"),
			StrictNames:    v.GetBool("BOUNDARY_STRICT_NAMES"),
			BBoxPrecision:  v.GetInt("BOUNDARY_BBOX_PRECISION"),
		},
		Overpass: OverpassConfig{
			Endpoints:      parseList(v.GetString("OVERPASS_ENDPOINTS")),
			BulkEndpoint:   v.GetString("OVERPASS_BULK_ENDPOINT"),
			CountryISO:     strings.ToUpper(v.GetString("OVERPASS_COUNTRY_ISO")),
			QueryTimeout:   time.Duration(v.GetInt("OVERPASS_QUERY_TIMEOUT")) * time.Second,
			RequestTimeout: time.Duration(v.GetInt("OVERPASS_REQUEST_TIMEOUT")) * time.Second,
			RetryDelay:     time.Duration(v.GetInt("OVERPASS_RETRY_DELAY")) * time.Millisecond,
			MaxRetries:     v.GetInt("OVERPASS_MAX_RETRIES"),
		},
		Roads: RoadsConfig{
			Bounds:        bounds,
			GridSize:      v.GetFloat64("ROADS_GRID_SIZE"),
			Workers:       v.GetInt("ROADS_WORKERS"),
			Types:         parseList(v.GetString("ROADS_TYPES")),
			Output:        v.GetString("ROADS_OUTPUT"),
			BulkOutput:    v.GetString("ROADS_BULK_OUTPUT"),
			FailOnPartial: v.GetBool("ROADS_FAIL_ON_PARTIAL"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			TileTTL: time.Duration(v.GetInt("CACHE_TILE_TTL")) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("METRICS_PUSHGATEWAY_URL"),
		},
	}

	if err := validator.Validate(cfg); err != nil {
		return nil, apperrors.ErrInvalidConfig.Wrap(err)
	}
	if !cfg.Roads.Bounds.IsValid() {
		return nil, apperrors.ErrInvalidConfig.Wrapf("ROADS_BOUNDS min must be below max: %v", cfg.Roads.Bounds)
	}

	return cfg, nil
}

// parseBounds parses "min_lat,min_lon,max_lat,max_lon".
func parseBounds(s string) (domain.BBox, error) {
	var b domain.BBox
	parts := parseList(s)
	if len(parts) != 4 {
		return b, fmt.Errorf("ROADS_BOUNDS needs 4 comma separated values, got %q", s)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return b, fmt.Errorf("ROADS_BOUNDS value %q: %w", p, err)
		}
		b[i] = f
	}
	return b, nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
