// Package instance ensures only one copy of the application runs per user.
//
// The guard binds a localhost TCP port derived deterministically from the
// application id and the current username. Binding succeeds for the first
// process and fails for every later one; the OS releases the port
// automatically if the process dies, so there is no stale-lock cleanup.
package instance

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	// Ports are taken from the dynamic/private range so the guard never
	// collides with a registered service.
	portBase  = 49152
	portRange = 16384
)

var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is a single-instance guard for one application id.
type Lock struct {
	appID    string
	listener net.Listener
}

func New(appID string) *Lock {
	return &Lock{appID: appID}
}

// Port returns the lock port for this application id and user. The
// derivation is stable across runs so every instance competes for the same
// port.
func (l *Lock) Port() int {
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	if username == "" {
		username = "default"
	}

	sum := md5.Sum([]byte(l.appID + "_" + username))
	id := hex.EncodeToString(sum[:])

	// The first 8 hex digits always parse.
	hash, _ := strconv.ParseUint(id[:8], 16, 64)
	return portBase + int(hash%portRange)
}

// Acquire takes the lock. It returns ErrAlreadyRunning when another process
// already holds the port.
func (l *Lock) Acquire() error {
	if l.listener != nil {
		return nil
	}

	port := l.Port()
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("%w (lock port %d)", ErrAlreadyRunning, port)
	}

	l.listener = listener
	log.Debug().Int("port", port).Str("app", l.appID).Msg("Single-instance lock acquired")
	return nil
}

// Release frees the lock. Releasing an unheld lock is a no-op.
func (l *Lock) Release() {
	if l.listener == nil {
		return
	}
	if err := l.listener.Close(); err != nil {
		log.Debug().Err(err).Msg("Failed to close lock listener")
	}
	l.listener = nil
}
