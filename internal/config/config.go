package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		ListenAddr string `mapstructure:"listen_addr"`
		LogLevel   string `mapstructure:"log_level"`
		JWTSecret  string `mapstructure:"jwt_secret"`
	} `mapstructure:"server"`
	Database struct {
		Driver   string `mapstructure:"driver"` // sqlite or postgres
		Path     string `mapstructure:"path"`   // sqlite file
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Gate struct {
		Endpoint       string  `mapstructure:"endpoint"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds"`
		RequestsPerSec float64 `mapstructure:"requests_per_sec"`
	} `mapstructure:"gate"`
	Analyzer struct {
		Bins        int     `mapstructure:"bins"`
		Smoothing   float64 `mapstructure:"smoothing"`
		FrameMillis int     `mapstructure:"frame_millis"`
	} `mapstructure:"analyzer"`
	Telemetry struct {
		ReportSeconds int `mapstructure:"report_seconds"`
	} `mapstructure:"telemetry"`
	Storage struct {
		Endpoint string `mapstructure:"endpoint"`
		Region   string `mapstructure:"region"`
		KeyID    string `mapstructure:"key_id"`
		AppKey   string `mapstructure:"app_key"`
		CacheDir string `mapstructure:"cache_dir"`
	} `mapstructure:"storage"`
	Catalog struct {
		MusicDir string `mapstructure:"music_dir"`
	} `mapstructure:"catalog"`
}

func Load() *Config {
	viper.SetEnvPrefix("PLAYER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.listen_addr")
	viper.BindEnv("server.log_level")
	viper.BindEnv("server.jwt_secret")

	viper.BindEnv("database.driver")
	viper.BindEnv("database.path")
	viper.BindEnv("database.host")
	viper.BindEnv("database.port")
	viper.BindEnv("database.user")
	viper.BindEnv("database.password")
	viper.BindEnv("database.name")

	viper.BindEnv("gate.endpoint")
	viper.BindEnv("gate.timeout_seconds")
	viper.BindEnv("gate.requests_per_sec")

	viper.BindEnv("analyzer.bins")
	viper.BindEnv("analyzer.smoothing")
	viper.BindEnv("analyzer.frame_millis")

	viper.BindEnv("telemetry.report_seconds")

	viper.BindEnv("storage.endpoint")
	viper.BindEnv("storage.region")
	viper.BindEnv("storage.key_id")
	viper.BindEnv("storage.app_key")
	viper.BindEnv("storage.cache_dir")

	viper.BindEnv("catalog.music_dir")

	// Defaults
	viper.SetDefault("server.listen_addr", ":8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.jwt_secret", "change-me")

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "./player.db")

	viper.SetDefault("gate.timeout_seconds", 5)
	viper.SetDefault("gate.requests_per_sec", 5)

	// 128 bins at ~60fps matches the display-refresh cadence the
	// visualizer consumes at.
	viper.SetDefault("analyzer.bins", 128)
	viper.SetDefault("analyzer.smoothing", 0.8)
	viper.SetDefault("analyzer.frame_millis", 16)

	viper.SetDefault("telemetry.report_seconds", 30)

	viper.SetDefault("storage.cache_dir", "/tmp/")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	return &cfg
}
