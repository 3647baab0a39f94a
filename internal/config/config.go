// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads service configuration from a YAML file, a .env
// file, and VIRTUAL_TA_* environment variables, and builds the logger.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/virtual-ta/pkg/types"
)

const (
	configName = "virtual-ta"
	envPrefix  = "VIRTUAL_TA"
)

// Load reads configuration. When cfgFile is empty it looks for
// virtual-ta.yaml in the working directory and ~/.config/virtual-ta/.
// A missing config file or .env file is not an error.
func Load(cfgFile string) (*types.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("knowledge.source", string(types.SourceFiles))
	v.SetDefault("knowledge.course_paths", []string{
		"scraped_data/enhanced_course_content.json",
		"data/course_content.json",
	})
	v.SetDefault("knowledge.discourse_paths", []string{
		"scraped_data/enhanced_discourse_posts.json",
		"data/discourse_posts.json",
	})
	v.SetDefault("knowledge.index_dir", "knowledge/index")
}

// InitLogger builds a zap logger from cfg and installs it as the global
// logger.
func InitLogger(cfg types.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
