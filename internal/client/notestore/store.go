// Package notestore keeps the client's decrypted note list in sync with the
// remote store.
//
// A Store is driven by session lifecycle: Start arms a single poller for the
// session, which runs one fetch-decrypt-publish cycle right away and then one
// per interval; Stop cancels it. Each cycle lists the encrypted notes,
// decrypts them in parallel and publishes the complete new list in one step.
// Results of a cycle that belongs to a session which is no longer active are
// discarded.
package notestore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/codec"
	"github.com/dmitrijs2005/gophnotes/internal/client/crypto"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"golang.org/x/sync/errgroup"
)

// PollFailedMessage is sent to the Notifier when a cycle fails.
const PollFailedMessage = "Could not poll notes."

// ErrNoSession is returned by Refresh when no session is active.
var ErrNoSession = errors.New("no active session")

// Session carries the collaborators of one signed-in session.
type Session struct {
	Remote client.RemoteStore
	Crypto crypto.CryptoService
}

// SessionEvent reports that a session became active or inactive. Applied, if
// set, is closed once the store has switched: after Stop has returned for an
// inactive event, after Start for an active one.
type SessionEvent struct {
	Active  bool
	Session Session
	Applied chan struct{}
}

// Notifier receives user-visible failure notifications.
type Notifier interface {
	Notify(err error, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(err error, message string)

func (f NotifierFunc) Notify(err error, message string) { f(err, message) }

type Options struct {
	Interval           time.Duration
	DecryptConcurrency int
	Notifier           Notifier
	Logger             logging.Logger
}

// newTicker is replaced in tests.
var newTicker = func(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type activeSession struct {
	Session
	codec *codec.Codec
	ctx   context.Context
}

type Store struct {
	interval    time.Duration
	concurrency int
	notifier    Notifier
	logger      logging.Logger

	// serializes Start and Stop
	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	mu     sync.Mutex
	gen    uint64
	active *activeSession
	// cycles are numbered as they start; a cycle older than the last
	// published one does not publish
	seq       uint64
	published uint64

	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

func New(opts Options) *Store {
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	if opts.DecryptConcurrency <= 0 {
		opts.DecryptConcurrency = 8
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Store{
		interval:    opts.Interval,
		concurrency: opts.DecryptConcurrency,
		notifier:    opts.Notifier,
		logger:      opts.Logger.With("module", "notestore"),
		snap:        Snapshot{State: Uninitialized},
		subs:        make(map[int]chan Snapshot),
	}
}

// Start activates s, replacing any previous session. It moves the store to
// Loading and arms the poller; the first cycle runs immediately.
func (st *Store) Start(s Session) {
	st.lifecycle.Lock()
	defer st.lifecycle.Unlock()

	st.halt()

	ctx, cancel := context.WithCancel(context.Background())
	tick, stopTick := newTicker(st.interval)

	st.mu.Lock()
	st.gen++
	gen := st.gen
	st.active = &activeSession{Session: s, codec: codec.New(s.Crypto, st.logger), ctx: ctx}
	as := st.active
	st.publishLocked(Snapshot{State: Loading})
	st.mu.Unlock()

	st.cancel = cancel
	st.done = make(chan struct{})
	go st.poll(ctx, gen, as, tick, stopTick, st.done)
}

// Stop ends the active session. The poller is cancelled and has exited by the
// time Stop returns, and the store is back to Uninitialized.
func (st *Store) Stop() {
	st.lifecycle.Lock()
	defer st.lifecycle.Unlock()

	st.halt()

	st.mu.Lock()
	st.active = nil
	st.publishLocked(Snapshot{State: Uninitialized})
	st.mu.Unlock()
}

// halt invalidates the current generation, cancels the poller and waits for
// it. Callers hold lifecycle.
func (st *Store) halt() {
	if st.cancel == nil {
		return
	}

	st.mu.Lock()
	st.gen++
	st.mu.Unlock()

	st.cancel()
	<-st.done
	st.cancel, st.done = nil, nil
}

// Run applies session events until ctx is done or events is closed, then
// stops the store.
func (st *Store) Run(ctx context.Context, events <-chan SessionEvent) {
	defer st.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Active {
				st.Start(ev.Session)
			} else {
				st.Stop()
			}
			if ev.Applied != nil {
				close(ev.Applied)
			}
		}
	}
}

// Snapshot returns the latest published snapshot.
func (st *Store) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snap
}

// Subscribe returns a channel that receives the current snapshot and every
// later one. A slow reader only misses intermediate snapshots, never the
// latest. The returned func unsubscribes.
func (st *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = ch
	ch <- st.snap
	st.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			st.mu.Lock()
			delete(st.subs, id)
			st.mu.Unlock()
		})
	}
}

// Refresh runs one cycle now in the active session. It is cancelled together
// with the session.
func (st *Store) Refresh(ctx context.Context) error {
	st.mu.Lock()
	as, gen := st.active, st.gen
	st.mu.Unlock()

	if as == nil {
		return ErrNoSession
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(as.ctx, cancel)
	defer stop()

	return st.cycle(ctx, gen, as)
}

func (st *Store) poll(ctx context.Context, gen uint64, as *activeSession, tick <-chan time.Time, stopTick func(), done chan struct{}) {
	defer close(done)
	defer stopTick()

	_ = st.cycle(ctx, gen, as)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_ = st.cycle(ctx, gen, as)
		}
	}
}

// cycle fetches, decrypts and publishes the note list once.
func (st *Store) cycle(ctx context.Context, gen uint64, as *activeSession) error {
	started := time.Now()

	st.mu.Lock()
	st.seq++
	seq := st.seq
	st.mu.Unlock()

	wire, err := as.Remote.ListNotes(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		st.fail(ctx, gen, seq, err)
		return err
	}

	notes := make([]*models.Note, len(wire))
	var g errgroup.Group
	g.SetLimit(st.concurrency)
	for i, wn := range wire {
		g.Go(func() error {
			notes[i] = as.codec.FromWire(ctx, wn, as.Remote.RefreshNote)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if st.publish(gen, seq, Snapshot{State: Loaded, List: notes}) {
		st.logger.Debug(ctx, "notes synced", "count", len(notes), "took", time.Since(started))
	}
	return nil
}

// fail reports a failed cycle. Only a session that never loaded moves to
// Error; otherwise the last good list stays published.
func (st *Store) fail(ctx context.Context, gen, seq uint64, err error) {
	st.mu.Lock()
	if gen != st.gen {
		st.mu.Unlock()
		return
	}
	if st.snap.State != Loaded && seq > st.published {
		st.published = seq
		st.publishLocked(Snapshot{State: Error, Err: err})
	}
	st.mu.Unlock()

	st.logger.Error(ctx, "note poll failed", "error", err)
	if st.notifier != nil {
		st.notifier.Notify(err, PollFailedMessage)
	}
}

// publish replaces the snapshot if gen is still the active generation and no
// later cycle has published yet.
func (st *Store) publish(gen, seq uint64, s Snapshot) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if gen != st.gen || seq < st.published {
		return false
	}
	st.published = seq
	st.publishLocked(s)
	return true
}

func (st *Store) publishLocked(s Snapshot) {
	st.snap = s
	for _, ch := range st.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
