/*
Package log provides structured logging for burrow using zerolog.

The global Logger is initialized once via Init and shared by every
package. Component loggers (WithComponent, WithContainerID, WithPID)
attach context fields so a single container's lifecycle can be
filtered out of a busy log stream.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stdout})

	cgroupLog := log.WithComponent("cgroup")
	cgroupLog.Info().Str("leaf", "container_4211").Msg("applied memory limit")

	launcherLog := log.WithContainerID(rec.ID).With().Int("pid", rec.PID).Logger()
	launcherLog.Error().Err(err).Msg("namespace setup failed")

JSON output is the default for `burrow`'s foreground and detached
modes alike; console output (--log-json=false) is meant for
interactive use at a terminal.
*/
package log
