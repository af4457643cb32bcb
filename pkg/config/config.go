// Package config holds the configuration for a single archup invocation:
// values read from the optional archup.yaml, the module selection and the
// handles phases use to reach the host.
package config

import (
	"fmt"
	"io"

	"github.com/a8m/envsubst"
	"github.com/archup/archup/pkg/account"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// Config is the file-backed part of the configuration. All fields have
// working defaults so the file is optional.
type Config struct {
	// Locale is the default system locale, validated against the host's
	// locale.gen before being committed.
	Locale string `yaml:"locale" default:"en_US.UTF-8"`
	// Timezone is the default timezone, validated against the host's zoneinfo
	// database.
	Timezone string `yaml:"timezone" default:"UTC"`
	// User is the default target user for account provisioning and
	// post-install steps.
	User string `yaml:"user" validate:"omitempty,username"`
	// Modules preselects the module set. Flags override this.
	Modules *Modules `yaml:"modules"`
	// VM configures the test VM harness.
	VM VM `yaml:"vm"`
}

// VM is the test harness tunables.
type VM struct {
	RAM        string `yaml:"ram" default:"4G"`
	CPUs       int    `yaml:"cpus" default:"4" validate:"min=1"`
	DiskSize   string `yaml:"disk_size" default:"40G"`
	Mirror     string `yaml:"mirror" default:"https://geo.mirror.pkgbuild.com/iso/latest" validate:"url"`
	SSHPort    int    `yaml:"ssh_port" default:"2222" validate:"min=1,max=65535"`
	VNCDisplay int    `yaml:"vnc_display" default:"1"`
	NoVNCPort  int    `yaml:"novnc_port" default:"6080" validate:"min=1,max=65535"`
	// ExtraArgs is appended verbatim to the QEMU command line after
	// shell-style splitting.
	ExtraArgs string `yaml:"extra_args"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return account.ValidUsername(fl.Field().String())
	})
	return v
}()

// Load reads a configuration from the reader: environment variables are
// substituted, yaml is unmarshalled, defaults are applied and the result is
// validated.
func Load(r io.Reader) (*Config, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	content, err = envsubst.Bytes(content)
	if err != nil {
		return nil, fmt.Errorf("substitute environment variables: %w", err)
	}

	c := &Config{}
	if err := yaml.UnmarshalStrict(content, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is present.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	return c
}
