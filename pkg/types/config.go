// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// KnowledgeSource selects where the answer generator's entries come from.
type KnowledgeSource string

const (
	SourceFiles KnowledgeSource = "files"
	SourceIndex KnowledgeSource = "index"
)

// KnowledgeBaseConfig holds settings for loading knowledge entries.
type KnowledgeBaseConfig struct {
	// Source is "files" (JSON files) or "index" (SQLite knowledge index).
	Source KnowledgeSource `json:"source" yaml:"source" mapstructure:"source"`

	// CoursePaths are tried in order; the first existing file is loaded.
	CoursePaths []string `json:"course_paths" yaml:"course_paths" mapstructure:"course_paths"`

	// DiscoursePaths are tried in order; the first existing file is loaded.
	DiscoursePaths []string `json:"discourse_paths" yaml:"discourse_paths" mapstructure:"discourse_paths"`

	// IndexDir contains knowledge.db and the export files.
	IndexDir string `json:"index_dir" yaml:"index_dir" mapstructure:"index_dir"`
}

// ServerConfig holds settings for the HTTP boundary.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`

	// AllowedOrigins is passed to the CORS middleware.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// RequestTimeout bounds each request's handling time.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "json" or "console".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the service.
type Config struct {
	Knowledge KnowledgeBaseConfig `json:"knowledge" yaml:"knowledge" mapstructure:"knowledge"`
	Server    ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
	Log       LogConfig           `json:"log" yaml:"log" mapstructure:"log"`
}
