package config

import (
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/types"
	"gopkg.in/yaml.v3"
)

// Config is burrow's on-disk configuration, overlaid on top of Default()
// and then further overridden by CLI flags.
type Config struct {
	StateRoot   string `yaml:"state_root"`
	CgroupRoot  string `yaml:"cgroup_root"`
	LayersRoot  string `yaml:"layers_root"`
	NextCPUFile string `yaml:"next_cpu_file"`

	LogLevel  string `yaml:"log_level"`
	LogJSON   bool   `yaml:"log_json"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns burrow's built-in configuration: all state under
// /var/lib/burrow and the delegated cgroup subtree under
// /sys/fs/cgroup/burrow.
func Default() Config {
	return Config{
		StateRoot:   "/var/lib/burrow/containers",
		CgroupRoot:  "/sys/fs/cgroup/burrow",
		LayersRoot:  "/var/lib/burrow/layers",
		NextCPUFile: "/var/lib/burrow/next-cpu",
		LogLevel:    "info",
		LogJSON:     true,
		MetricsAddr: "",
	}
}

// Load reads a YAML file and overlays its fields onto Default(). A
// missing path is not an error: burrow runs with built-in defaults when
// no --config is given.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Paths extracts the types.Paths burrow's filesystem-facing packages
// operate over.
func (c Config) Paths() types.Paths {
	return types.Paths{
		StateRoot:   c.StateRoot,
		CgroupRoot:  c.CgroupRoot,
		LayersRoot:  c.LayersRoot,
		NextCPUFile: c.NextCPUFile,
	}
}
