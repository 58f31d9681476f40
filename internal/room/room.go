package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/engine"
)

type Msg interface{ isRoomMsg() }

// FromClient applies Cmd. Reply, when set, receives the outcome.
type FromClient struct {
	Cmd   engine.Command
	Reply chan Outcome
}

func (FromClient) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Outcome struct {
	Version int
	Changed bool
	Err     error
}

// Record is one accepted draft.
type Record struct {
	TrackerID string
	Version   int
	State     engine.State
}

// Recorder persists accepted drafts.
type Recorder interface {
	Record(ctx context.Context, r Record) error
}

type Option func(*Room)

func WithRecorder(r Recorder) Option {
	return func(rm *Room) { rm.recorder = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(rm *Room) { rm.logger = l }
}

// WithClientHook is called with the subscriber delta on every join, leave
// and drop.
func WithClientHook(fn func(delta int)) Option {
	return func(rm *Room) { rm.clientHook = fn }
}

// Room owns the draft of one tracker id. All state is confined to loop.
type Room struct {
	id       string
	inbox    chan Msg
	state    engine.State
	version  int
	clients  map[string]chan Snapshot
	recorder Recorder
	logger   *zap.Logger

	clientHook func(delta int)

	ctx    context.Context
	cancel context.CancelFunc
}

const recordTimeout = 3 * time.Second

func New(parent context.Context, id string, initial engine.State, opts ...Option) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		id:      id,
		inbox:   make(chan Msg, 64),
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		logger:  zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("tracker", id))

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.clients[msg.ClientID] = msg.Outbox
				r.clientsChanged(1)
				msg.Outbox <- r.snapshot()

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
					r.clientsChanged(-1)
				}

			case FromClient:
				r.reply(msg.Reply, r.apply(msg.Cmd))

			case GetState:
				msg.Reply <- View{
					Version:    r.version,
					NumClients: len(r.clients),
					State:      r.state.Clone(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) apply(cmd engine.Command) Outcome {
	events, newState, err := engine.Apply(r.state, cmd)
	if err != nil {
		r.logger.Info("command rejected", zap.String("command", string(cmd.Type)), zap.Error(err))
		return Outcome{Version: r.version, Err: err}
	}
	if len(events) == 0 {
		return Outcome{Version: r.version}
	}

	r.state = newState
	r.version++
	r.logger.Info("draft updated",
		zap.Int("version", r.version),
		zap.String("phase", string(r.state.Phase)),
		zap.String("match", r.state.Match))
	r.broadcast(r.snapshot())

	if r.recorder != nil && engine.ContainsEvent(events, engine.EvtDraftCompleted) {
		ctx, cancel := context.WithTimeout(r.ctx, recordTimeout)
		err := r.recorder.Record(ctx, Record{TrackerID: r.id, Version: r.version, State: r.state.Clone()})
		cancel()
		if err != nil {
			r.logger.Error("failed to record draft", zap.Error(err))
		}
	}
	return Outcome{Version: r.version, Changed: true}
}

func (r *Room) reply(ch chan Outcome, o Outcome) {
	if ch == nil {
		return
	}
	select {
	case ch <- o:
	default:
		r.logger.Warn("dropping outcome, reply channel full")
	}
}

func (r *Room) snapshot() Snapshot {
	return Snapshot{Version: r.version, State: r.state.Clone()}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more snapshots
		delete(r.clients, id)
		r.clientsChanged(-1)
	}
	r.cancel()
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			r.logger.Warn("dropping slow subscriber", zap.String("client", id))
			close(ch)
			delete(r.clients, id)
			r.clientsChanged(-1)
		}
	}
}

func (r *Room) clientsChanged(delta int) {
	if r.clientHook != nil {
		r.clientHook(delta)
	}
}

// Inbox exposes the mailbox to the hub, HTTP and WS layers.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has stopped.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }
