package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-lantern/internal/display"
	"github.com/pixil98/go-lantern/internal/scene"
	"github.com/pixil98/go-lantern/internal/session"
	"github.com/pixil98/go-lantern/internal/storage"
	"github.com/pixil98/go-lantern/internal/story"
	"github.com/pixil98/go-lantern/internal/terrain"
)

const minWrapWidth = 20

type SessionConfig struct {
	Width  int    `json:"width,omitempty"`
	Banner string `json:"banner,omitempty"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width != 0 && c.Width < minWrapWidth {
		el.Add(fmt.Errorf("sessions: width must be at least %d", minWrapWidth))
	}

	return el.Err()
}

func (c *SessionConfig) BuildManager(
	stories storage.Storer[*story.Story],
	sceneCfg scene.Config,
	hf *terrain.HeightField,
	pub session.ScenePublisher,
) *session.Manager {
	width := c.Width
	if width == 0 {
		width = display.DefaultWidth
	}

	return session.NewManager(stories,
		session.WithSceneConfig(sceneCfg),
		session.WithTerrain(hf),
		session.WithPublisher(pub),
		session.WithWidth(width),
		session.WithBanner(c.Banner),
	)
}
