package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-lantern/internal"
	"github.com/pixil98/go-lantern/internal/dialogue"
	"github.com/pixil98/go-lantern/internal/display"
	"github.com/pixil98/go-lantern/internal/environment"
	"github.com/pixil98/go-lantern/internal/scene"
	"github.com/pixil98/go-lantern/internal/story"
)

const helpText = `Type the number of a choice to make it.
  look   show the current passage again
  where  describe where you stand
  quit   leave the story`

// Session plays one story for one player.
type Session struct {
	id     string
	story  *story.Story
	runner *story.Runner
	cursor *dialogue.Cursor
	scene  *scene.Scene

	in    *bufio.Reader
	out   io.Writer
	width int

	publisher ScenePublisher
	pubMu     sync.Mutex
	published uint64
	ended     bool
}

func newSession(id string, st *story.Story, sc *scene.Scene, in *bufio.Reader, out io.Writer, pub ScenePublisher, width int) *Session {
	runner := story.NewRunner(st)
	return &Session{
		id:        id,
		story:     st,
		runner:    runner,
		cursor:    dialogue.NewCursor(runner),
		scene:     sc,
		in:        in,
		out:       out,
		width:     width,
		publisher: pub,
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Play(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		defer close(inputChan)
		for {
			line, err := internal.ReadLine(s.in)
			if err != nil {
				inputErrChan <- err
				return
			}
			select {
			case inputChan <- line:
			case <-done:
				return
			}
		}
	}()

	if s.publisher != nil {
		if err := s.writeLine(fmt.Sprintf("Scene stream: session %s", s.id)); err != nil {
			return err
		}
	}

	s.cursor.Advance(ctx)
	s.update(ctx)
	if err := s.present(); err != nil {
		return err
	}
	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-inputChan:
			if !ok {
				err := <-inputErrChan
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}

			quit, err := s.handle(ctx, line)
			if err != nil {
				var userErr *UserError
				if !errors.As(err, &userErr) {
					return err
				}
				if err := s.writeLine(userErr.Message); err != nil {
					return err
				}
			}
			if quit {
				return s.writeLine("Goodbye.")
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

// handle runs one line of player input and reports whether the player quit.
func (s *Session) handle(ctx context.Context, line string) (bool, error) {
	line = strings.ToLower(strings.TrimSpace(line))

	switch line {
	case "":
		return false, nil
	case "quit", "q":
		return true, nil
	case "look", "l":
		return false, s.present()
	case "where", "w":
		return false, s.where()
	case "help", "?":
		return false, s.writeLine(helpText)
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return false, NewUserError("Type a number to choose, or help for more.")
	}

	if s.cursor.State() == dialogue.StateExhausted {
		return false, NewUserError("The story has ended. Type quit to leave.")
	}

	err = s.cursor.Choose(ctx, n-1)
	if errors.Is(err, dialogue.ErrInvalidChoice) {
		return false, NewUserError(fmt.Sprintf("There is no choice %d.", n))
	}
	if err != nil {
		return false, fmt.Errorf("choosing %d: %w", n, err)
	}

	s.update(ctx)
	return false, s.present()
}

// update pushes the directives of the last advance into the scene.
func (s *Session) update(ctx context.Context) {
	st := environment.State{
		Trust:   s.runner.Trust(),
		Clarity: s.runner.Clarity(),
	}
	s.scene.Apply(ctx, s.cursor.Directives(), st)
	s.publish(ctx)
}

func (s *Session) tick(ctx context.Context, elapsed time.Duration) {
	if s.scene.Tick(elapsed) {
		s.publish(ctx)
	}
}

func (s *Session) publish(ctx context.Context) {
	if s.publisher == nil {
		return
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if s.ended {
		return
	}

	snap := s.scene.Snapshot()
	if snap.Version == s.published {
		return
	}

	if err := s.publisher.PublishScene(ctx, s.id, snap); err != nil {
		slog.WarnContext(ctx, "publishing scene", "session", s.id, "error", err)
		return
	}
	s.published = snap.Version
}

// end stops publishing and drops the session's kept snapshot. A tick racing
// the end of Play cannot publish it back.
func (s *Session) end() {
	if s.publisher == nil {
		return
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.ended = true
	s.publisher.ForgetScene(s.id)
}

func (s *Session) present() error {
	var sb strings.Builder

	if text := strings.TrimRight(s.cursor.Text(), "\n"); text != "" {
		for i, para := range strings.Split(text, "\n") {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(display.WrapWidth(para, s.width))
		}
		sb.WriteString("\n")
	}

	switch s.cursor.State() {
	case dialogue.StateAwaitingChoice:
		sb.WriteString("\n")
		for i, c := range s.cursor.Choices() {
			sb.WriteString(display.Hang(fmt.Sprintf("%2d. ", i+1), display.Capitalize(c.Text), s.width))
			sb.WriteString("\n")
		}
	case dialogue.StateExhausted:
		sb.WriteString("\nThe End. Type quit to leave.\n")
	}

	return s.writeLine(strings.TrimRight(sb.String(), "\n"))
}

func (s *Session) where() error {
	snap := s.scene.Snapshot()

	var sb strings.Builder
	fmt.Fprintf(&sb, "You stand at x=%.1f z=%.1f, ground height %.2f.\n",
		snap.Avatar.X(), snap.Avatar.Z(), snap.GroundHeight)
	n := snap.GroundNormal
	fmt.Fprintf(&sb, "The ground faces (%.2f, %.2f, %.2f).", n.X(), n.Y(), n.Z())

	if len(snap.Objects) > 0 {
		parts := make([]string, 0, len(snap.Objects))
		for _, o := range snap.Objects {
			parts = append(parts, fmt.Sprintf("%s (%.0f%%)", display.Title(o.Kind), o.Visibility*100))
		}
		sb.WriteString("\n")
		sb.WriteString(display.WrapWidth("Around you: "+strings.Join(parts, ", ")+".", s.width))
	}

	return s.writeLine(sb.String())
}

func (s *Session) prompt() error {
	_, err := io.WriteString(s.out, "> ")
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := io.WriteString(s.out, msg+"\n\n")
	return err
}
