package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/mapper"
	"github.com/street-mapper/internal/matcher"
	"github.com/street-mapper/internal/overpass"
	"github.com/street-mapper/internal/reference"
)

// Nguồn dữ liệu ranh giới
const (
	BoundarySourceFile  = "file"
	BoundarySourceMongo = "mongo"
)

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type BoundaryConfig struct {
	Source          string                `mapstructure:"source"`
	Path            string                `mapstructure:"path"`
	PropertyKeys    boundary.PropertyKeys `mapstructure:"property_keys"`
	FallbackRadiusM float64               `mapstructure:"fallback_radius_m"`
	StrictTree      bool                  `mapstructure:"strict_tree"`
	UniqueLevels    []string              `mapstructure:"unique_levels"`
}

type MongoConfig struct {
	URL        string        `mapstructure:"url"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type OverpassConfig struct {
	URL            string        `mapstructure:"url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	HighwayClasses []string      `mapstructure:"highway_classes"`
	UserAgent      string        `mapstructure:"user_agent"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	L1Size  int           `mapstructure:"l1_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type MapperConfig struct {
	DuplicatePolicy string `mapstructure:"duplicate_policy"`
}

type MatcherConfig struct {
	NearRatio       float64 `mapstructure:"near_ratio"`
	MinSubstringLen int     `mapstructure:"min_substring_len"`
}

type ReferenceConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	NameColumns []string      `mapstructure:"name_columns"`
}

// Config cấu hình toàn bộ service
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Boundary  BoundaryConfig  `mapstructure:"boundary"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Overpass  OverpassConfig  `mapstructure:"overpass"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mapper    MapperConfig    `mapstructure:"mapper"`
	Matcher   MatcherConfig   `mapstructure:"matcher"`
	Reference ReferenceConfig `mapstructure:"reference"`
}

func setDefaults(v *viper.Viper) {
	def := boundary.DefaultOptions()

	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")

	v.SetDefault("boundary.source", BoundarySourceFile)
	v.SetDefault("boundary.path", "data/boundaries.geojson")
	v.SetDefault("boundary.property_keys.sub_district", def.PropertyKeys.SubDistrict)
	v.SetDefault("boundary.property_keys.urban_village", def.PropertyKeys.UrbanVillage)
	v.SetDefault("boundary.property_keys.neighborhood", def.PropertyKeys.Neighborhood)
	v.SetDefault("boundary.property_keys.sub_unit", def.PropertyKeys.SubUnit)
	v.SetDefault("boundary.fallback_radius_m", boundary.DefaultFallbackRadiusMeters)
	v.SetDefault("boundary.strict_tree", false)
	v.SetDefault("boundary.unique_levels", []string{"kecamatan", "kelurahan"})

	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "street_mapper")
	v.SetDefault("mongo.collection", "boundaries")
	v.SetDefault("mongo.timeout", 10*time.Second)

	v.SetDefault("overpass.url", overpass.DefaultEndpoint)
	v.SetDefault("overpass.timeout", 60*time.Second)
	v.SetDefault("overpass.highway_classes", overpass.DefaultHighwayClasses)
	v.SetDefault("overpass.user_agent", "street-mapper/1.0")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.l1_size", 256)
	v.SetDefault("cache.ttl", 6*time.Hour)
	v.SetDefault("redis.url", "")

	v.SetDefault("mapper.duplicate_policy", string(mapper.PolicyFirst))

	v.SetDefault("matcher.near_ratio", matcher.DefaultConfig().NearRatio)
	v.SetDefault("matcher.min_substring_len", matcher.DefaultConfig().MinSubstringLen)

	v.SetDefault("reference.timeout", 30*time.Second)
	v.SetDefault("reference.name_columns", reference.DefaultNameColumns)
}

// Load đọc .env, config/app.yaml (hoặc ./app.yaml) rồi ghi đè bằng biến môi trường
// (boundary.path -> BOUNDARY_PATH). Thiếu file config không phải lỗi.
func Load(configPaths ...string) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{"./config", "."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("lỗi đọc file config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate kiểm tra các giá trị không thể dùng được
func (c *Config) Validate() error {
	switch c.Boundary.Source {
	case BoundarySourceFile:
		if c.Boundary.Path == "" {
			return errors.New("boundary.path không được rỗng khi boundary.source=file")
		}
	case BoundarySourceMongo:
		if c.Mongo.URL == "" || c.Mongo.Collection == "" {
			return errors.New("cần mongo.url và mongo.collection khi boundary.source=mongo")
		}
	default:
		return fmt.Errorf("boundary.source không hợp lệ: %q", c.Boundary.Source)
	}
	if c.Boundary.FallbackRadiusM < 0 {
		return errors.New("boundary.fallback_radius_m phải >= 0")
	}
	if _, err := c.Boundary.Options(); err != nil {
		return err
	}
	if _, err := mapper.ParseDuplicatePolicy(c.Mapper.DuplicatePolicy); err != nil {
		return err
	}
	return nil
}

// IsProduction môi trường production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Options chuyển sang boundary.Options
func (b BoundaryConfig) Options() (boundary.Options, error) {
	levels := make([]boundary.Level, 0, len(b.UniqueLevels))
	for _, name := range b.UniqueLevels {
		level, err := boundary.ParseLevel(name)
		if err != nil {
			return boundary.Options{}, fmt.Errorf("boundary.unique_levels: %w", err)
		}
		levels = append(levels, level)
	}
	return boundary.Options{
		PropertyKeys:         b.PropertyKeys,
		FallbackRadiusMeters: b.FallbackRadiusM,
		StrictTree:           b.StrictTree,
		UniqueLevels:         levels,
	}, nil
}

// ClientConfig chuyển sang overpass.Config; bbox được nới thêm bán kính fallback
func (c *Config) ClientConfig() overpass.Config {
	return overpass.Config{
		Endpoint:       c.Overpass.URL,
		Timeout:        c.Overpass.Timeout,
		HighwayClasses: c.Overpass.HighwayClasses,
		PaddingMeters:  c.Boundary.FallbackRadiusM,
		UserAgent:      c.Overpass.UserAgent,
	}
}

// MatcherConfig chuyển sang matcher.Config
func (c *Config) MatcherConfig() matcher.Config {
	return matcher.Config{
		NearRatio:       c.Matcher.NearRatio,
		MinSubstringLen: c.Matcher.MinSubstringLen,
	}
}

// ValidatorConfig chuyển sang reference.Config
func (c *Config) ValidatorConfig() reference.Config {
	return reference.Config{
		Timeout:     c.Reference.Timeout,
		NameColumns: c.Reference.NameColumns,
	}
}
