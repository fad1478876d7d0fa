// Package config manages YAML-based configuration and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ALiangTech/treeify/internal/logging"
	"github.com/ALiangTech/treeify/internal/session"
	"github.com/ALiangTech/treeify/internal/tree"
	"github.com/ALiangTech/treeify/internal/walker"
	"gopkg.in/yaml.v3"
)

// Commands understood on the command line.
const (
	CommandServe = "serve"
	CommandPrint = "print"
)

// Config holds all configuration options for Treeify
type Config struct {
	// Command is "serve" (default) or "print"; taken from the first argument.
	Command string `yaml:"-"`

	// Local folder loaded at startup (serve) or rendered (print)
	Path   string `yaml:"path,omitempty"`
	GitRef string `yaml:"git_ref,omitempty"`
	// Further folders given as arguments; print renders them as extra roots
	Extra []string `yaml:"-"`

	Port        int  `yaml:"port"`
	Watch       bool `yaml:"watch"`
	Open        bool `yaml:"open"`
	Copy        bool `yaml:"copy"`
	All         bool `yaml:"all"`
	MaxSessions int  `yaml:"max_sessions"`

	MaxDepth  int      `yaml:"max_depth"`
	Exclude   []string `yaml:"exclude"`
	Skip      []string `yaml:"skip"`
	RootLabel string   `yaml:"root_label"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Internal: path of the config file that was loaded
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Command:     CommandServe,
		Port:        8080,
		Watch:       true,
		Open:        false,
		MaxSessions: session.DefaultMaxSessions,
		MaxDepth:    tree.DefaultMaxDepth,
		Exclude:     append([]string(nil), tree.DefaultExcludeFolders...),
		Skip:        append([]string(nil), walker.DefaultSkip...),
		RootLabel:   tree.DefaultRootLabel,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/treeify"
	}
	return filepath.Join(home, ".config", "treeify")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from file and command line flags
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit arguments (without the program name).
func LoadArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()

	if len(args) > 0 && (args[0] == CommandServe || args[0] == CommandPrint) {
		cfg.Command = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("treeify "+cfg.Command, flag.ContinueOnError)

	// Sentinel values detect which flags were set
	path := fs.String("path", "", "Folder to load (serve) or render (print)")
	gitRef := fs.String("git-ref", "", "Read the folder from this git ref instead of the working tree")
	port := fs.Int("port", 0, "HTTP server port")
	watch := fs.Bool("watch", true, "Rebuild the loaded folder when it changes")
	open := fs.Bool("open", false, "Open browser on startup")
	copyText := fs.Bool("copy", false, "Copy the rendered tree to the clipboard (print)")
	all := fs.Bool("all", false, "Render every top-level folder, not only the first (print)")
	maxDepth := fs.Int("max-depth", 0, "Maximum number of directory levels")
	exclude := fs.String("exclude", "", "Comma-separated folder names to exclude")
	rootLabel := fs.String("root-label", "", "Label of the root created for loose files")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	configFile := fs.String("config", "", "Configuration file path")

	fs.StringVar(path, "p", "", "Folder to load (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if *path == "" && len(rest) > 0 {
		*path = rest[0]
		rest = rest[1:]
	}

	// Determine config file path
	var cfgPath string
	if *configFile != "" {
		cfgPath = *configFile
	} else {
		// Try ~/.config/treeify/config.yaml first
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("treeify.yaml"); err == nil {
			cfgPath = "treeify.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil && *configFile != "" {
			// Only return error if user explicitly specified config file
			return nil, err
		}
		cfg.configPath = cfgPath
	}

	// Command line flags override config file (only if explicitly set)
	if *path != "" {
		cfg.Path = *path
	}
	if *gitRef != "" {
		cfg.GitRef = *gitRef
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *maxDepth != 0 {
		cfg.MaxDepth = *maxDepth
	}
	if *exclude != "" {
		cfg.Exclude = splitList(*exclude)
	}
	if *rootLabel != "" {
		cfg.RootLabel = *rootLabel
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	// Bool flags have no sentinel value, so only the ones actually passed apply
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "watch":
			cfg.Watch = *watch
		case "open":
			cfg.Open = *open
		case "copy":
			cfg.Copy = *copyText
		case "all":
			cfg.All = *all
		}
	})
	cfg.Extra = rest

	cfg.resolvePath()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolvePath makes folder paths absolute so their base names are real folder names
func (c *Config) resolvePath() {
	if c.Path != "" {
		c.Path = absPath(c.Path)
	}
	for i, p := range c.Extra {
		c.Extra[i] = absPath(p)
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Paths returns every folder given on the command line, --path first.
func (c *Config) Paths() []string {
	if c.Path == "" {
		return nil
	}
	return append([]string{c.Path}, c.Extra...)
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Command == CommandPrint && c.Path == "" {
		return errors.New("print needs a folder: treeify print --path DIR")
	}
	return nil
}

// GetConfigFilePath returns the path to the config file that was loaded, if any
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// IsExcluded checks if a path lies in an excluded folder
func (c *Config) IsExcluded(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		for _, exclude := range c.Exclude {
			if part == exclude {
				return true
			}
		}
	}
	return false
}

// TreeOptions returns the build options for one tree build.
func (c *Config) TreeOptions() tree.Options {
	return tree.Options{
		MaxDepth:       c.MaxDepth,
		ExcludeFolders: append([]string{}, c.Exclude...),
		RootLabel:      c.RootLabel,
	}
}

// WalkOptions returns the options for reading a folder hierarchy.
func (c *Config) WalkOptions() walker.Options {
	return walker.Options{Skip: append([]string{}, c.Skip...)}
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}
