package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-lantern/internal/display"
	"github.com/pixil98/go-lantern/internal/scene"
	"github.com/pixil98/go-lantern/internal/storage"
	"github.com/pixil98/go-lantern/internal/story"
	"github.com/pixil98/go-lantern/internal/terrain"
)

// ScenePublisher broadcasts scene snapshots to observers of a session.
// ForgetScene drops whatever is kept for a session once it ends.
type ScenePublisher interface {
	PublishScene(ctx context.Context, sessionId string, snap scene.Snapshot) error
	ForgetScene(sessionId string)
}

// Manager starts a Session for every connection and keeps their scenes ticking.
type Manager struct {
	stories   storage.Storer[*story.Story]
	publisher ScenePublisher
	terrain   *terrain.HeightField
	sceneCfg  scene.Config
	width     int
	banner    string

	mu       sync.RWMutex
	sessions map[string]*Session
}

type ManagerOpt func(*Manager)

func WithPublisher(p ScenePublisher) ManagerOpt {
	return func(m *Manager) {
		m.publisher = p
	}
}

func WithTerrain(hf *terrain.HeightField) ManagerOpt {
	return func(m *Manager) {
		m.terrain = hf
	}
}

func WithSceneConfig(cfg scene.Config) ManagerOpt {
	return func(m *Manager) {
		m.sceneCfg = cfg
	}
}

// WithWidth sets the column narration is wrapped at.
func WithWidth(width int) ManagerOpt {
	return func(m *Manager) {
		m.width = width
	}
}

// WithBanner sets the text shown when a player connects.
func WithBanner(banner string) ManagerOpt {
	return func(m *Manager) {
		m.banner = banner
	}
}

func NewManager(stories storage.Storer[*story.Story], opts ...ManagerOpt) *Manager {
	m := &Manager{
		stories:  stories,
		sceneCfg: scene.DefaultConfig(),
		width:    display.DefaultWidth,
		sessions: map[string]*Session{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Tick advances the audio of every session and republishes scenes that changed.
func (m *Manager) Tick(ctx context.Context, elapsed time.Duration) error {
	m.mu.RLock()
	sessions := slices.Collect(maps.Values(m.sessions))
	m.mu.RUnlock()

	for _, s := range sessions {
		s.tick(ctx, elapsed)
	}
	return nil
}

// Sessions returns the ids of the running sessions.
func (m *Manager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := slices.Collect(maps.Keys(m.sessions))
	slices.Sort(ids)
	return ids
}

// RunSession lets the player pick a story and plays it until they quit or
// the connection closes.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	in := bufio.NewReader(conn)

	if m.banner != "" {
		if _, err := io.WriteString(conn, m.banner+"\n\n"); err != nil {
			return err
		}
	}

	st, err := m.selectStory(in, conn)
	if err != nil {
		return err
	}

	sess, err := m.newSession(st, in, conn)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[sess.Id()] = sess
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.sessions, sess.Id())
		m.mu.Unlock()
		sess.end()
	}()

	slog.InfoContext(ctx, "session started", "session", sess.Id(), "story", st.Title)
	defer slog.InfoContext(ctx, "session ended", "session", sess.Id())

	return sess.Play(ctx)
}

func (m *Manager) selectStory(in *bufio.Reader, w io.Writer) (*story.Story, error) {
	sel := storage.NewSelectableStorer[*story.Story](m.stories)

	var id string
	switch sel.Len() {
	case 0:
		return nil, fmt.Errorf("%w: no stories are loaded", ErrStoryNotFound)
	case 1:
		id = sel.Select(1)
	default:
		var err error
		id, err = sel.Prompt(in, w, "Which story will you walk into?")
		if err != nil {
			return nil, fmt.Errorf("selecting story: %w", err)
		}
	}

	st := m.stories.Get(id)
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrStoryNotFound, id)
	}
	return st, nil
}

func (m *Manager) newSession(st *story.Story, in *bufio.Reader, out io.Writer) (*Session, error) {
	rules, err := st.VisibilityRules()
	if err != nil {
		return nil, fmt.Errorf("reading visibility rules: %w", err)
	}

	sc := scene.New(m.sceneCfg, scene.WithTerrain(m.terrain), scene.WithVisibilityRules(rules))

	return newSession(uuid.New().String(), st, sc, in, out, m.publisher, m.width), nil
}
