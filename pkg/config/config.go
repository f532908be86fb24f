// Package config loads the optional renderkit.yaml project file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up by Resolve.
const FileName = "renderkit.yaml"

// EngineVersion is the version of this engine. Project files must name a
// version with the same major.
const EngineVersion = "v1.0.0"

// Defaults applied by Resolve.
const (
	DefaultFrameRate   = 60
	DefaultConcurrency = 4
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config is the raw project file.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Engine   EngineConfig   `yaml:"engine"`
	Assets   AssetsConfig   `yaml:"assets"`
	Log      LogConfig      `yaml:"log"`
	Devtools DevtoolsConfig `yaml:"devtools"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name  string `yaml:"name,omitempty"`
	Scene string `yaml:"scene,omitempty"`
}

// EngineConfig contains engine settings.
type EngineConfig struct {
	Version   string `yaml:"version,omitempty"`
	Debug     bool   `yaml:"debug,omitempty"`
	FrameRate int    `yaml:"frameRate,omitempty"`
}

// AssetsConfig controls the file loader.
type AssetsConfig struct {
	BaseDir     string   `yaml:"baseDir,omitempty"`
	Preload     []string `yaml:"preload,omitempty"`
	Concurrency int      `yaml:"concurrency,omitempty"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DevtoolsConfig enables the inspector server. Port 0 disables it unless
// Debug is set, in which case a free port is picked.
type DevtoolsConfig struct {
	Port int `yaml:"port,omitempty"`
}

// Resolved contains configuration with defaults applied and paths made
// absolute.
type Resolved struct {
	Root          string
	ModulePath    string
	AppName       string
	Scene         string
	EngineVersion string
	Debug         bool
	FrameRate     int
	AssetsDir     string
	Preload       []string
	Concurrency   int
	LogLevel      slog.Level
	LogFormat     string
	DevtoolsPort  int
}

// LoadOptional reads renderkit.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Resolve loads renderkit.yaml (if present) from dir and resolves
// defaults.
func Resolve(dir string) (*Resolved, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	modulePath := modulePath(dir)
	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	version, err := checkVersion(strings.TrimSpace(cfg.Engine.Version))
	if err != nil {
		return nil, err
	}

	frameRate := cfg.Engine.FrameRate
	switch {
	case frameRate == 0:
		frameRate = DefaultFrameRate
	case frameRate < 0 || frameRate > 1000:
		return nil, fmt.Errorf("engine.frameRate must be between 1 and 1000 (got %d)", frameRate)
	}

	concurrency := cfg.Assets.Concurrency
	switch {
	case concurrency == 0:
		concurrency = DefaultConcurrency
	case concurrency < 0:
		return nil, fmt.Errorf("assets.concurrency cannot be negative (got %d)", concurrency)
	}

	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	switch format {
	case "":
		format = DefaultLogFormat
	case "text", "json":
	default:
		return nil, fmt.Errorf("log.format must be text or json (got %q)", cfg.Log.Format)
	}

	if cfg.Devtools.Port < 0 || cfg.Devtools.Port > 65535 {
		return nil, fmt.Errorf("devtools.port out of range (got %d)", cfg.Devtools.Port)
	}

	scene := cfg.App.Scene
	if scene != "" && !filepath.IsAbs(scene) {
		scene = filepath.Join(dir, scene)
	}

	return &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		AppName:       appName,
		Scene:         scene,
		EngineVersion: version,
		Debug:         cfg.Engine.Debug,
		FrameRate:     frameRate,
		AssetsDir:     filepath.Join(dir, cfg.Assets.BaseDir),
		Preload:       cfg.Assets.Preload,
		Concurrency:   concurrency,
		LogLevel:      level,
		LogFormat:     format,
		DevtoolsPort:  cfg.Devtools.Port,
	}, nil
}

// checkVersion accepts "", "latest" or a semantic version whose major
// matches EngineVersion. The "v" prefix is optional.
func checkVersion(v string) (string, error) {
	if v == "" || v == "latest" {
		return EngineVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("engine.version %q is not a semantic version", v)
	}
	if semver.Major(v) != semver.Major(EngineVersion) {
		return "", fmt.Errorf("engine.version %s is incompatible with engine %s", v, EngineVersion)
	}
	if semver.Compare(v, EngineVersion) > 0 {
		return "", fmt.Errorf("engine.version %s is newer than engine %s", v, EngineVersion)
	}
	return v, nil
}

func parseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		s = DefaultLogLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// FindProjectRoot walks up from start to the nearest directory holding
// renderkit.yaml or go.mod.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s or go.mod found above %s", FileName, start)
		}
		dir = parent
	}
}

// modulePath returns the module path declared in dir/go.mod, or "".
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "renderkit_app"
	}
	return base
}
