// Package config defines the padlink command line.
package config

import (
	"github.com/Alia5/padlink/internal/cmd"
	"github.com/Alia5/padlink/internal/log"
)

// CLI is the root kong command tree. Flags may also come from the
// environment and from JSON, YAML or TOML configuration files.
type CLI struct {
	Log        log.Config `embed:"" prefix:"log."`
	ConfigFile string     `name:"config" help:"Configuration file (json, yaml or toml)" type:"path" env:"PADLINK_CONFIG"`

	Watch    cmd.Watch          `cmd:"" help:"Track controllers and log connects, disconnects and update failures"`
	List     cmd.List           `cmd:"" help:"Print the currently attached controllers"`
	Simulate cmd.Simulate       `cmd:"" help:"Drive the manager with scripted virtual controllers"`
	Config   cmd.ConfigCommand  `cmd:"" help:"Configuration helpers"`
	Service  cmd.ServiceCommand `cmd:"" help:"Run the watcher as a systemd service"`
}
