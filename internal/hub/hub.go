package hub

import (
	"context"
	"errors"

	"github.com/Sammers21/owl-esports/internal/engine"
	"github.com/Sammers21/owl-esports/internal/room"
)

var ErrClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

// EnsureRoom returns the room of TrackerID, creating an empty one if needed.
type EnsureRoom struct {
	TrackerID string
	Reply     chan *room.Room
}

type GetRoom struct {
	TrackerID string
	Reply     chan *room.Room
}

type RemoveRoom struct {
	TrackerID string
}

type CountRooms struct {
	Reply chan int
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (CountRooms) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox    chan HubMsg
	rooms    map[string]*room.Room
	roomOpts []room.Option
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewHub starts the registry; opts are applied to every room it creates.
func NewHub(parent context.Context, opts ...room.Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		rooms:    make(map[string]*room.Room),
		roomOpts: opts,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			// Rooms share h.ctx and stop on their own.
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if rm := h.rooms[msg.TrackerID]; rm != nil {
					msg.Reply <- rm
					break
				}
				rm := room.New(h.ctx, msg.TrackerID, engine.NewEmptyState(), h.roomOpts...)
				h.rooms[msg.TrackerID] = rm
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.TrackerID] // May be nil

			case RemoveRoom:
				if rm := h.rooms[msg.TrackerID]; rm != nil {
					rm.Inbox() <- room.Shutdown{}
					delete(h.rooms, msg.TrackerID)
				}

			case CountRooms:
				msg.Reply <- len(h.rooms)

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

// Ensure is EnsureRoom bounded by ctx.
func (h *Hub) Ensure(ctx context.Context, trackerID string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if err := h.send(ctx, EnsureRoom{TrackerID: trackerID, Reply: reply}); err != nil {
		return nil, err
	}
	return recv(ctx, h, reply)
}

// Get is GetRoom bounded by ctx; the room is nil when unknown.
func (h *Hub) Get(ctx context.Context, trackerID string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if err := h.send(ctx, GetRoom{TrackerID: trackerID, Reply: reply}); err != nil {
		return nil, err
	}
	return recv(ctx, h, reply)
}

func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountRooms{Reply: reply}); err != nil {
		return 0, err
	}
	return recv(ctx, h, reply)
}

func (h *Hub) send(ctx context.Context, msg HubMsg) error {
	select {
	case h.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return ErrClosed
	}
}

func recv[T any](ctx context.Context, h *Hub, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrClosed
	}
}
