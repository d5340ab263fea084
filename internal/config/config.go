// Package config loads netvhdl settings from netvhdl.toml and NETVHDL_*
// environment variables.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/netvhdl/pkg/resolve"
)

// FileName is the base name of the configuration file searched in the
// working directory.
const FileName = "netvhdl"

// EnvPrefix prefixes environment overrides, e.g. NETVHDL_NAMING_NET_PREFIX.
const EnvPrefix = "NETVHDL"

// Config is the complete netvhdl configuration.
type Config struct {
	Naming     NamingConfig     `mapstructure:"naming"`
	TopLevel   TopLevelConfig   `mapstructure:"toplevel"`
	Types      TypesConfig      `mapstructure:"types"`
	Components ComponentsConfig `mapstructure:"components"`
	Log        LogConfig        `mapstructure:"log"`
}

type NamingConfig struct {
	GenericPrefix   string `mapstructure:"generic_prefix"`
	SignalNameField string `mapstructure:"signal_name_field"`
	NetPrefix       string `mapstructure:"net_prefix"`
}

type TopLevelConfig struct {
	InputMarker  string `mapstructure:"input_marker"`
	OutputMarker string `mapstructure:"output_marker"`
}

type TypesConfig struct {
	DefaultPin     string `mapstructure:"default_pin"`
	DefaultGeneric string `mapstructure:"default_generic"`
}

type ComponentsConfig struct {
	Inline []string `mapstructure:"inline"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	def := resolve.DefaultOptions()

	v.SetDefault("naming.generic_prefix", def.GenericPrefix)
	v.SetDefault("naming.signal_name_field", def.SignalNameField)
	v.SetDefault("naming.net_prefix", def.NetPrefix)

	v.SetDefault("toplevel.input_marker", def.InputMarker)
	v.SetDefault("toplevel.output_marker", def.OutputMarker)

	v.SetDefault("types.default_pin", def.DefaultPinType)
	v.SetDefault("types.default_generic", def.DefaultGenericType)

	v.SetDefault("components.inline", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads the configuration. With an empty path, netvhdl.toml in the
// working directory is used when present; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "failed to read config file")
			}
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the resolver cannot work with.
func (c *Config) Validate() error {
	required := []struct{ key, value string }{
		{"naming.generic_prefix", c.Naming.GenericPrefix},
		{"naming.signal_name_field", c.Naming.SignalNameField},
		{"naming.net_prefix", c.Naming.NetPrefix},
		{"toplevel.input_marker", c.TopLevel.InputMarker},
		{"toplevel.output_marker", c.TopLevel.OutputMarker},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.WithHintf(errors.Newf("config key %s must not be empty", r.key),
				"remove %s from the config file to use the default", r.key)
		}
	}
	if strings.EqualFold(c.TopLevel.InputMarker, c.TopLevel.OutputMarker) {
		return errors.Newf("toplevel markers must differ, both are %q", c.TopLevel.InputMarker)
	}
	return nil
}

// ResolveOptions maps the configuration onto resolver options.
func (c *Config) ResolveOptions(log *zap.Logger) resolve.Options {
	return resolve.Options{
		GenericPrefix:      c.Naming.GenericPrefix,
		SignalNameField:    c.Naming.SignalNameField,
		NetPrefix:          c.Naming.NetPrefix,
		InputMarker:        c.TopLevel.InputMarker,
		OutputMarker:       c.TopLevel.OutputMarker,
		DefaultPinType:     c.Types.DefaultPin,
		DefaultGenericType: c.Types.DefaultGeneric,
		InlineTypes:        append([]string(nil), c.Components.Inline...),
		Logger:             log,
	}
}
