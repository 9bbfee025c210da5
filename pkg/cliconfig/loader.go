package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "htmlgen"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".htmlgenrc.yaml", ".htmlgenrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// knownKeys are the YAML keys a config file may contain.
var knownKeys = map[string]bool{
	"scope": true, "attributePrefix": true, "templateTagName": true, "concurrency": true,
	"mode": true, "minify": true, "strict": true, "includeDir": true, "includeUrl": true,
	"logLevel": true, "logFormat": true, "logFile": true,
}

// FindLocalConfig searches for .htmlgenrc.yaml or .htmlgenrc.yml in the current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // no config dir means no global config
		return "", nil
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// GetGlobalConfigSearchPaths returns the paths that will be searched for global config.
func GetGlobalConfigSearchPaths() []string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	paths := make([]string, len(GlobalConfigFileNames))
	for i, name := range GlobalConfigFileNames {
		paths[i] = filepath.Join(configDir, GlobalConfigDir, name)
	}
	return paths
}

// LoadConfigFile loads a CLIConfig from a YAML file. Unknown keys are
// rejected with their position.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(path, data)
}

func parseConfig(path string, data []byte) (*CLIConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	cfg := &CLIConfig{
		SetFields: make(map[string]bool),
		Sources:   make(map[string]string),
	}
	if len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Path: path, Line: root.Line, Column: root.Column, Message: "expected a mapping"}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if !knownKeys[key.Value] {
			return nil, &ConfigError{
				Path:    path,
				Line:    key.Line,
				Column:  key.Column,
				Message: fmt.Sprintf("unknown key %q", key.Value),
			}
		}
		cfg.SetFields[key.Value] = true
	}

	if err := root.Decode(cfg); err != nil {
		cerr := &ConfigError{Path: path, Message: err.Error()}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
			cerr.Message = typeErr.Errors[0]
		}
		return nil, cerr
	}
	return cfg, nil
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return e.Path + " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + "): " + e.Message
	}
	return e.Path + ": " + e.Message
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: env > explicit file > local config > global config > defaults.
// explicitPath may be empty; when set it must exist.
func LoadAll(explicitPath string) (*CLIConfig, error) {
	cfg := NewDefault()

	globalPath, err := FindGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := mergeFile(cfg, globalPath, SourceGlobal); err != nil {
		return nil, err
	}

	localPath, err := FindLocalConfig()
	if err != nil {
		return nil, err
	}
	if err := mergeFile(cfg, localPath, SourceLocal); err != nil {
		return nil, err
	}

	if explicitPath == "" {
		explicitPath = os.Getenv(EnvConfig)
	}
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		if err := mergeFile(cfg, explicitPath, SourceFile); err != nil {
			return nil, err
		}
	}

	LoadEnvConfig(cfg)

	return cfg, nil
}

func mergeFile(cfg *CLIConfig, path, source string) error {
	if path == "" {
		return nil
	}
	fileCfg, err := LoadConfigFile(path)
	if err != nil {
		return err
	}
	MergeConfig(cfg, fileCfg, source)
	return nil
}
