package story

import (
	"context"
	"testing"

	"github.com/pixil98/go-lantern/internal/dialogue"
	"github.com/pixil98/go-lantern/internal/environment"
	"github.com/pixil98/go-lantern/internal/storage"
	"github.com/pixil98/go-testutil"
)

func TestBundledStories(t *testing.T) {
	store, err := storage.NewFileStore[*Story]("../../assets/stories")
	if err != nil {
		t.Fatalf("loading bundled stories: %v", err)
	}

	hollow := store.Get("the-hollow")
	if hollow == nil {
		t.Fatal("expected the-hollow to be bundled")
	}

	rules, err := hollow.VisibilityRules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "shape override", rules[environment.KindShape].Mode, environment.ModeRampOut)

	ctx := context.Background()
	r := NewRunner(hollow)
	c := dialogue.NewCursor(r)

	c.Advance(ctx)
	testutil.AssertEqual(t, "waking choices", len(c.Choices()), 2)
	testutil.AssertEqual(t, "waking audio", *c.Directives().AudioTrack, "wind_low")

	if err := c.Choose(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "lamp text", c.Text(),
		"The lamp stands on a rise. Beside it, a hand is pressed into the mud.\nThe hand is warm.\n")
	testutil.AssertEqual(t, "lamp position", *c.Directives().Position, dialogue.Position{X: 12, Z: -8})

	if err := c.Choose(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "ward text", c.Text(),
		"White walls rise out of the mist. A ward, lit from somewhere you cannot see.\nTrust 5 of 8.\nThe mist closes. That is all, for now.\n")
	testutil.AssertEqual(t, "state", c.State(), dialogue.StateExhausted)
	testutil.AssertEqual(t, "last audio wins", *c.Directives().AudioTrack, "wind_low")
	testutil.AssertEqual(t, "objects", len(c.Directives().Objects.Kinds), 5)
	testutil.AssertEqual(t, "trust", r.Trust(), 5.0)
	testutil.AssertEqual(t, "clarity", r.Clarity(), true)
}
