// Package lifecycle orchestrates a container's full life: assembling
// its rootfs, creating and configuring its cgroup, launching its init
// process, and tearing everything back down again. It is the only
// package that calls into state, cgroup, rootfs, and launcher together;
// every other package only knows its own slice of the system.
package lifecycle

import (
	"fmt"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/state"
	"github.com/cuemby/burrow/pkg/types"
)

// Manager ties the state store, the configured filesystem roots, and
// an event broker together to implement container operations.
type Manager struct {
	Store  *state.Store
	Paths  types.Paths
	Broker *events.Broker
}

// NewManager builds a Manager from a loaded configuration, creating the
// state store if this is the first container started on this host.
func NewManager(cfg config.Config) (*Manager, error) {
	paths := cfg.Paths()

	store, err := state.New(paths)
	if err != nil {
		return nil, fmt.Errorf("initialize state store: %w", err)
	}

	broker := events.NewBroker()
	broker.Start()

	return &Manager{Store: store, Paths: paths, Broker: broker}, nil
}

// Close stops the Manager's event broker. It does not touch any
// running container: containers outlive the process that started them.
func (m *Manager) Close() {
	m.Broker.Stop()
}

func (m *Manager) publish(evt *events.Event) {
	m.Broker.Publish(evt)
}
