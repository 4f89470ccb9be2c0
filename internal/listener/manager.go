package listener

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// SessionRunner drives one player over an accepted connection until the
// player leaves or ctx is canceled.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
}

// ConnectionManager hands accepted connections of every listener to the
// session runner.
type ConnectionManager struct {
	sr     SessionRunner
	active atomic.Int64
}

func NewConnectionManager(sr SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		sr: sr,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	n := m.active.Add(1)
	defer m.active.Add(-1)

	slog.DebugContext(ctx, "connection accepted", "active", n)
	if err := m.sr.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}

// Active returns the number of connections currently in a session.
func (m *ConnectionManager) Active() int64 {
	return m.active.Load()
}
