// Package config loads chat-server and starter configuration: defaults,
// an optional YAML overlay, and CLI flag overrides, mirroring the
// defaults-struct-then-yaml.Unmarshal pattern used throughout this project.
package config

import (
	"flag"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the self (chat server or starter) and manager addresses,
// plus the account store path used only by the chat server.
type Config struct {
	Self    Endpoint `yaml:"self"`
	Manager Endpoint `yaml:"manager"`
	Store   string   `yaml:"store"`
}

// Endpoint is a host/port pair, matching the CLI's address/port flag pairs.
type Endpoint struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

func defaults() *Config {
	return &Config{
		Self:    Endpoint{Address: "127.0.0.1", Port: 8000},
		Manager: Endpoint{Address: "192.168.0.130", Port: 9000},
		Store:   "chatd.db",
	}
}

// Load reads an optional YAML file at path over the built-in defaults.
// An empty path, or a path that doesn't exist, returns the defaults
// unchanged — the YAML overlay is optional, unlike the CLI flags below.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FlagSet describes the CLI surface shared by the chat server and the
// starter: -a/--address, -p/--port for self; -A/--manager-address,
// -P/--manager-port for the manager (the sane long names this repo uses in
// place of the original's broken long-option strings); -h is handled by the
// standard flag package's usage output. -store and -child are
// chat-server-only and starter-only respectively, but both binaries accept
// -config so either can run standalone in tests.
type FlagSet struct {
	ConfigPath string
	Address    string
	Port       int
	MgmtAddr   string
	MgmtPort   int
	Store      string
	ChildPath  string
}

// Parse registers and parses the shared flags against fs, returning the
// raw flag values. Callers layer these over the result of Load. ChildPath
// is registered here (rather than by the starter after the fact) so it
// exists before this call's own fs.Parse runs.
func Parse(fs *flag.FlagSet, args []string) (*FlagSet, error) {
	f := &FlagSet{}
	fs.StringVar(&f.ConfigPath, "config", "", "path to an optional YAML config overlay")
	fs.StringVar(&f.Address, "a", "", "self address (overrides config)")
	fs.StringVar(&f.Address, "address", "", "self address (overrides config)")
	fs.IntVar(&f.Port, "p", 0, "self port (overrides config)")
	fs.IntVar(&f.Port, "port", 0, "self port (overrides config)")
	fs.StringVar(&f.MgmtAddr, "A", "", "manager address (overrides config)")
	fs.StringVar(&f.MgmtAddr, "manager-address", "", "manager address (overrides config)")
	fs.IntVar(&f.MgmtPort, "P", 0, "manager port (overrides config)")
	fs.IntVar(&f.MgmtPort, "manager-port", 0, "manager port (overrides config)")
	fs.StringVar(&f.Store, "store", "", "account store path (chat server only)")
	fs.StringVar(&f.ChildPath, "child", "", "path to the chat-server binary to spawn on SVR_START (starter only)")
	return f, fs.Parse(args)
}

// Apply overlays non-zero flag values onto cfg, returning cfg for chaining.
func (f *FlagSet) Apply(cfg *Config) *Config {
	if f.Address != "" {
		cfg.Self.Address = f.Address
	}
	if f.Port != 0 {
		cfg.Self.Port = f.Port
	}
	if f.MgmtAddr != "" {
		cfg.Manager.Address = f.MgmtAddr
	}
	if f.MgmtPort != 0 {
		cfg.Manager.Port = f.MgmtPort
	}
	if f.Store != "" {
		cfg.Store = f.Store
	}
	return cfg
}
