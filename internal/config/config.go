package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string `mapstructure:"ENV"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	CORSAllowed string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	AdminKey    string `mapstructure:"ADMIN_KEY"`

	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	BusinessCSVPath string `mapstructure:"BUSINESS_CSV_PATH"`
	MaxUploadSizeMB int64  `mapstructure:"MAX_UPLOAD_MB"`

	NominatimURL       string        `mapstructure:"NOMINATIM_URL"`
	OverpassURL        string        `mapstructure:"OVERPASS_URL"`
	GeocodeUserAgent   string        `mapstructure:"GEOCODE_USER_AGENT"`
	GeocodeMinInterval time.Duration `mapstructure:"GEOCODE_MIN_INTERVAL"`

	AdapterTimeout   time.Duration `mapstructure:"ADAPTER_TIMEOUT"`
	POIRadiusM       int           `mapstructure:"POI_RADIUS_M"`
	SearchMaxResults int           `mapstructure:"SEARCH_MAX_RESULTS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	v.SetDefault("GEOCODE_USER_AGENT", "localspot-backend")
	v.SetDefault("GEOCODE_MIN_INTERVAL", "1s")
	v.SetDefault("ADAPTER_TIMEOUT", "6s")
	v.SetDefault("POI_RADIUS_M", 4000)
	v.SetDefault("SEARCH_MAX_RESULTS", 8)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
