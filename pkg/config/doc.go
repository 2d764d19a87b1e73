// Package config loads burrow's YAML configuration file and overlays it
// on top of built-in defaults, producing the types.Paths that the
// state, cgroup, and rootfs packages operate over.
package config
