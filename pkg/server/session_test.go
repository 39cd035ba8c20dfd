package server

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

func startSession(t *testing.T, viewport view.Size) *Session {
	t.Helper()
	eng, err := engine.New(engine.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	sess := newSession("test", eng, viewport, 0, log.New(io.Discard), nil)
	t.Cleanup(func() { sess.Close(ReasonShutdown) })
	return sess
}

func TestSessionClickAtUsesSessionViewport(t *testing.T) {
	sess := startSession(t, engine.Content)
	ctx := context.Background()

	snap, err := sess.Dispatch(ctx, engine.Event{Kind: engine.EventClickParcel, ID: 40})
	if err != nil {
		t.Fatal(err)
	}
	var cell struct{ X, Y float64 }
	for _, p := range snap.Parcels {
		if p.ID == 40 {
			cell.X, cell.Y = p.Cell.CenterX(), p.Cell.CenterY()
		}
	}
	screen := snap.Transform.Apply(view.Point{X: cell.X, Y: cell.Y})

	// Clicking the selected parcel again toggles it off.
	snap, err = sess.Dispatch(ctx, engine.Event{Kind: engine.EventClickAt, X: screen.X, Y: screen.Y})
	if err != nil {
		t.Fatalf("click_at without viewport: %v", err)
	}
	if snap.Selected != 0 {
		t.Errorf("selected = %d after second click, want none", snap.Selected)
	}
}

func TestSessionSubscribe(t *testing.T) {
	sess := startSession(t, engine.Content)
	ctx := context.Background()

	msgs, cancel, err := sess.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m := <-msgs; m.Type != MsgSnapshot {
		t.Fatalf("first message = %s, want snapshot", m.Type)
	}

	if _, err := sess.Dispatch(ctx, engine.Event{Kind: engine.EventSearch, Text: "4"}); err != nil {
		t.Fatal(err)
	}
	if m := <-msgs; m.Type != MsgSnapshot || m.Snapshot.Search != "4" {
		t.Errorf("after search = %+v", m)
	}

	cancel()
	if _, ok := <-msgs; ok {
		t.Error("channel still open after cancel")
	}
	cancel()
}

func TestSessionClose(t *testing.T) {
	var closedWith string
	eng, err := engine.New(engine.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	sess := newSession("test", eng, engine.Content, 0, log.New(io.Discard), func(_ *Session, reason string) {
		closedWith = reason
	})
	ctx := context.Background()

	msgs, _, err := sess.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	<-msgs
	if _, err := sess.Dispatch(ctx, engine.Event{Kind: engine.EventStatusView}); err != nil {
		t.Fatal(err)
	}

	sess.Close(ReasonDeleted)
	sess.Close(ReasonShutdown)
	if closedWith != ReasonDeleted {
		t.Errorf("onClose reason = %q, want %q", closedWith, ReasonDeleted)
	}

	var last Message
	for m := range msgs {
		last = m
	}
	if last.Type != MsgClosed || last.Reason != ReasonDeleted {
		t.Errorf("last message = %+v, want closed/deleted", last)
	}
	if !eng.Closed() || eng.Animating() {
		t.Error("engine still live after session close")
	}
	if _, err := sess.Dispatch(ctx, engine.Event{Kind: engine.EventReset}); !perrors.Is(err, perrors.ErrCodeClosed) {
		t.Errorf("Dispatch after close error = %v, want CLOSED", err)
	}
}
