package config

import (
	"maps"
	"os"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/infra/extractor"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Extractor holds configuration of the external extraction tool
type Extractor struct {
	Command    string
	Flags      []string
	Timeout    time.Duration
	ConfigFile string
}

// extractorFile is the TOML layout of --extractor-config
type extractorFile struct {
	Command        string            `toml:"command"`
	Flags          []string          `toml:"flags"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
	Env            map[string]string `toml:"env" masq:"secret"`
}

// CLIFlags returns CLI flags for extractor configuration
func (c *Extractor) CLIFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "extractor-command",
			Usage:       "Executable of the extraction tool",
			Value:       extractor.DefaultCommand,
			Destination: &c.Command,
			Sources:     cli.EnvVars("MSGBOX_EXTRACTOR_COMMAND"),
		},
		&cli.StringSliceFlag{
			Name:        "extractor-flag",
			Usage:       "Argument placed before --out (repeatable, replaces the defaults)",
			Destination: &c.Flags,
			Sources:     cli.EnvVars("MSGBOX_EXTRACTOR_FLAGS"),
		},
		&cli.DurationFlag{
			Name:        "extractor-timeout",
			Usage:       "Maximum run time of one extraction",
			Value:       extractor.DefaultTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("MSGBOX_EXTRACTOR_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "extractor-config",
			Usage:       "TOML file with command, flags, timeout_seconds and env",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("MSGBOX_EXTRACTOR_CONFIG"),
		},
	}
}

// Configure builds the extraction command. Values of the config file take
// precedence over flags.
func (c *Extractor) Configure() (*extractor.Command, error) {
	name := c.Command
	flags := c.Flags
	timeout := c.Timeout
	var env map[string]string

	if c.ConfigFile != "" {
		raw, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read extractor config", goerr.V("path", c.ConfigFile))
		}

		var file extractorFile
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse extractor config", goerr.V("path", c.ConfigFile))
		}

		if file.Command != "" {
			name = file.Command
		}
		if len(file.Flags) > 0 {
			flags = file.Flags
		}
		if file.TimeoutSeconds < 0 {
			return nil, goerr.New("timeout_seconds must not be negative", goerr.V("value", file.TimeoutSeconds))
		}
		if file.TimeoutSeconds > 0 {
			timeout = time.Duration(file.TimeoutSeconds) * time.Second
		}
		env = file.Env
	}

	if timeout <= 0 {
		return nil, goerr.New("extractor timeout must be positive", goerr.V("timeout", timeout))
	}

	opts := []extractor.Option{extractor.WithTimeout(timeout)}
	if len(flags) > 0 {
		opts = append(opts, extractor.WithFlags(flags...))
	}
	for _, key := range slices.Sorted(maps.Keys(env)) {
		opts = append(opts, extractor.WithEnv(key+"="+env[key]))
	}

	return extractor.New(name, opts...), nil
}
