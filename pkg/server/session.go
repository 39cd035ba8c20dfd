package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plotmap/pkg/core/parcel"
	"github.com/matzehuels/plotmap/pkg/core/view"
	"github.com/matzehuels/plotmap/pkg/engine"
	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// Close reasons reported to subscribers and the server hooks.
const (
	ReasonIdle     = "idle"
	ReasonDeleted  = "deleted"
	ReasonShutdown = "shutdown"
)

// subscriberBuffer is how many messages a subscriber may lag behind before
// it is dropped.
const subscriberBuffer = 64

type command struct {
	fn   func(*Session) error
	errc chan error
}

// Session is one engine driven by one goroutine. Every exported method is
// safe for concurrent use; they hand work to the owning goroutine and wait.
type Session struct {
	ID      string
	Created time.Time

	eng      *engine.Engine
	viewport view.Size
	idle     time.Duration
	logger   *log.Logger
	onClose  func(*Session, string)

	cmds   chan command
	closec chan string
	done   chan struct{}

	// Owned by the loop goroutine.
	subs    map[chan Message]struct{}
	pending []StatusChange
	anim    *time.Timer
	animC   <-chan time.Time
}

func newSession(id string, eng *engine.Engine, viewport view.Size, idle time.Duration, logger *log.Logger, onClose func(*Session, string)) *Session {
	s := &Session{
		ID:       id,
		Created:  time.Now(),
		eng:      eng,
		viewport: viewport,
		idle:     idle,
		logger:   logger.With("session", id),
		onClose:  onClose,
		cmds:     make(chan command),
		closec:   make(chan string, 1),
		done:     make(chan struct{}),
		subs:     make(map[chan Message]struct{}),
		anim:     time.NewTimer(time.Hour),
	}
	s.anim.Stop()
	eng.OnStatusChange(func(id int, st parcel.Status) {
		s.pending = append(s.pending, StatusChange{ID: id, Status: st})
	})
	go s.run()
	return s
}

// =============================================================================
// Loop
// =============================================================================

func (s *Session) run() {
	var idleC <-chan time.Time
	var idleTimer *time.Timer
	if s.idle > 0 {
		idleTimer = time.NewTimer(s.idle)
		defer idleTimer.Stop()
		idleC = idleTimer.C
	}

	var reason string
	for reason == "" {
		select {
		case c := <-s.cmds:
			c.errc <- c.fn(s)
			s.arm()
			if idleTimer != nil {
				idleTimer.Reset(s.idle)
			}
		case <-s.animC:
			s.eng.Tick()
			s.flushStatus()
			s.arm()
		case <-idleC:
			if len(s.subs) > 0 {
				idleTimer.Reset(s.idle)
				continue
			}
			reason = ReasonIdle
		case reason = <-s.closec:
		}
	}
	s.teardown(reason)
}

// arm schedules the next animation step, or disarms the timer when the
// sweep is over.
func (s *Session) arm() {
	d, ok := s.eng.NextDue()
	if !ok {
		s.anim.Stop()
		s.animC = nil
		return
	}
	s.anim.Reset(d)
	s.animC = s.anim.C
}

func (s *Session) flushStatus() {
	if len(s.pending) == 0 {
		return
	}
	diff := &StatusDiff{
		Generation: s.eng.Generation(),
		Changes:    s.pending,
		Animating:  s.eng.Animating(),
	}
	s.pending = nil
	s.broadcast(Message{Type: MsgStatus, Status: diff})
}

// publishSnapshot sends the full state. Pending status changes are part of
// it and are dropped.
func (s *Session) publishSnapshot() engine.Snapshot {
	s.pending = nil
	snap := s.eng.Snapshot(s.viewport)
	s.broadcast(snapshotMessage(snap))
	return snap
}

func (s *Session) broadcast(m Message) {
	for ch := range s.subs {
		select {
		case ch <- m:
		default:
			s.logger.Warn("dropping slow subscriber", "type", m.Type)
			delete(s.subs, ch)
			close(ch)
		}
	}
}

func (s *Session) teardown(reason string) {
	s.anim.Stop()
	s.animC = nil
	s.eng.Close()
	bye := Message{Type: MsgClosed, Reason: reason}
	for ch := range s.subs {
		select {
		case ch <- bye:
		default:
		}
		close(ch)
	}
	s.subs = nil
	s.logger.Info("session closed", "reason", reason)
	if s.onClose != nil {
		s.onClose(s, reason)
	}
	close(s.done)
}

// do runs fn on the session goroutine and returns its error.
func (s *Session) do(ctx context.Context, fn func(*Session) error) error {
	c := command{fn: fn, errc: make(chan error, 1)}
	select {
	case s.cmds <- c:
	case <-s.done:
		return errClosed(s.ID)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errClosed(id string) error {
	return perrors.New(perrors.ErrCodeClosed, "session %s closed", id)
}

// =============================================================================
// API
// =============================================================================

// Dispatch applies ev and publishes the resulting snapshot to subscribers.
// A click_at without a viewport uses the session's viewport.
func (s *Session) Dispatch(ctx context.Context, ev engine.Event) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := s.do(ctx, func(s *Session) error {
		if ev.Kind == engine.EventClickAt && ev.Viewport == nil {
			vp := s.viewport
			ev.Viewport = &vp
		}
		if ev.Viewport != nil && ev.Kind != engine.EventClickAt {
			s.viewport = *ev.Viewport
		}
		if err := s.eng.Dispatch(ev); err != nil {
			return err
		}
		snap = s.publishSnapshot()
		return nil
	})
	return snap, err
}

// Snapshot returns the current state for the session's viewport.
func (s *Session) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := s.do(ctx, func(s *Session) error {
		snap = s.eng.Snapshot(s.viewport)
		return nil
	})
	return snap, err
}

// Subscribe registers a message stream. The first message is the current
// snapshot. The channel is closed when the session closes or the subscriber
// falls too far behind; cancel unregisters it early.
func (s *Session) Subscribe(ctx context.Context) (<-chan Message, func(), error) {
	ch := make(chan Message, subscriberBuffer)
	err := s.do(ctx, func(s *Session) error {
		s.subs[ch] = struct{}{}
		ch <- snapshotMessage(s.eng.Snapshot(s.viewport))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	cancel := func() {
		_ = s.do(context.Background(), func(s *Session) error {
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			return nil
		})
	}
	return ch, cancel, nil
}

// Close stops the session and waits for teardown. It is idempotent.
func (s *Session) Close(reason string) {
	select {
	case s.closec <- reason:
	default:
	}
	<-s.done
}

// Done is closed once the session has torn down.
func (s *Session) Done() <-chan struct{} { return s.done }
