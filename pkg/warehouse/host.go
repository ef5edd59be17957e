package warehouse

import (
	"os"
	"sync"
)

// dockerHostGateway reaches the host from inside a Docker container.
const dockerHostGateway = "host.docker.internal"

// inContainer is replaced in tests.
var inContainer = sync.OnceValue(func() bool {
	_, err := os.Stat("/.dockerenv")
	return err == nil
})

// resolveHost lets a containerized run reach a warehouse tunnel or local
// PostgreSQL listening on the host's loopback interface.
func resolveHost(host string) string {
	if !inContainer() {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return dockerHostGateway
	}
	return host
}
