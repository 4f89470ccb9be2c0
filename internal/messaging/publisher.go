package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-lantern/internal/scene"
)

// SceneSubject is the subject carrying snapshots of one session's scene.
func SceneSubject(sessionId string) string {
	return fmt.Sprintf("scene.%s", sessionId)
}

// ScenePublisher broadcasts scene snapshots over NATS. The last snapshot of
// every session is kept so late subscribers can start from current state.
type ScenePublisher struct {
	server *NatsServer

	mu     sync.RWMutex
	latest map[string][]byte
}

func NewScenePublisher(server *NatsServer) *ScenePublisher {
	return &ScenePublisher{
		server: server,
		latest: map[string][]byte{},
	}
}

func (p *ScenePublisher) PublishScene(ctx context.Context, sessionId string, snap scene.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}

	p.mu.Lock()
	p.latest[sessionId] = data
	p.mu.Unlock()

	err = p.server.Publish(SceneSubject(sessionId), data)
	if err != nil {
		return fmt.Errorf("publishing snapshot: %w", err)
	}

	slog.DebugContext(ctx, "published scene", "session", sessionId, "version", snap.Version)
	return nil
}

// SubscribeScene delivers every snapshot published for sessionId to handler
// as raw JSON.
func (p *ScenePublisher) SubscribeScene(sessionId string, handler func(data []byte)) (func(), error) {
	return p.server.Subscribe(SceneSubject(sessionId), handler)
}

// LatestScene returns the last snapshot published for sessionId.
func (p *ScenePublisher) LatestScene(sessionId string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, ok := p.latest[sessionId]
	return data, ok
}

func (p *ScenePublisher) ForgetScene(sessionId string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.latest, sessionId)
}
