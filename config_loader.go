package serdex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/serdex/internal/naming"
)

// setting is a raw configuration value and the name it was read under.
type setting struct {
	name  string
	value string
}

type rawConfig struct {
	fieldRename setting
	enumRename  setting
	maxDepth    setting
}

// resolve parses every setting and validates the result. Empty settings keep
// their defaults.
func (r rawConfig) resolve() (Config, error) {
	var (
		cfg Config
		err error
	)
	if cfg.FieldRename, err = parsePolicy(r.fieldRename); err != nil {
		return Config{}, err
	}
	if cfg.EnumRename, err = parsePolicy(r.enumRename); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(r.maxDepth.value); v != "" {
		if cfg.MaxDepth, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("%w: %s must be an integer, got '%s'", ErrInvalidConfiguration, r.maxDepth.name, v)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parsePolicy(s setting) (NamingPolicy, error) {
	if strings.TrimSpace(s.value) == "" {
		return "", nil
	}
	p, err := naming.ParsePolicy(s.value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidConfiguration, s.name, err)
	}
	return p, nil
}

// LoadConfigFromEnvironment reads SERDEX_FIELD_RENAME, SERDEX_ENUM_RENAME and
// SERDEX_MAX_DEPTH. Unset variables keep their defaults.
//
//	cfg, err := serdex.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Apply()
func LoadConfigFromEnvironment() (Config, error) {
	env := func(name string) setting {
		return setting{name: name, value: os.Getenv(name)}
	}
	return rawConfig{
		fieldRename: env(EnvFieldRename),
		enumRename:  env(EnvEnumRename),
		maxDepth:    env(EnvMaxDepth),
	}.resolve()
}

// configFile is the YAML layout read by LoadConfigFile:
//
//	field_rename: lower_camel
//	enum_rename: screaming_snake
//	max_depth: 256
type configFile struct {
	FieldRename string `yaml:"field_rename"`
	EnumRename  string `yaml:"enum_rename"`
	MaxDepth    *int   `yaml:"max_depth"`
}

// LoadConfigFile reads a YAML configuration file. Unknown keys are rejected.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var file configFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	raw := rawConfig{
		fieldRename: setting{name: "field_rename", value: file.FieldRename},
		enumRename:  setting{name: "enum_rename", value: file.EnumRename},
		maxDepth:    setting{name: "max_depth"},
	}
	if file.MaxDepth != nil {
		raw.maxDepth.value = strconv.Itoa(*file.MaxDepth)
	}
	cfg, err := raw.resolve()
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfigFile writes cfg in the layout LoadConfigFile reads.
func SaveConfigFile(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
