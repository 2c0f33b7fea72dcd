package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/ariefcatur/go-food-orders/internal/catalog"
	"github.com/ariefcatur/go-food-orders/internal/orders"
)

// SnapshotSource provides the open orders a staff member should see when a
// connection is established, so clients start from a consistent base state.
type SnapshotSource interface {
	OpenByShops(ctx context.Context, shopIDs []string) ([]orders.Order, error)
}

// Registry owns every live staff connection in this process. It is the only
// shared mutable state touched by concurrent requests, so all map access sits
// behind the mutex. Constructed once at startup and injected into handlers.
type Registry struct {
	Directory catalog.Directory
	Snapshots SnapshotSource

	mu    sync.Mutex
	conns map[string][]*Conn
}

func NewRegistry(dir catalog.Directory, snap SnapshotSource) *Registry {
	return &Registry{
		Directory: dir,
		Snapshots: snap,
		conns:     map[string][]*Conn{},
	}
}

type message struct {
	Type   string          `json:"type"`
	Orders []orders.Order  `json:"orders,omitempty"`
	Event  json.RawMessage `json:"event,omitempty"`
}

// Register opens a push channel for the staff member. The current open-order
// snapshot is enqueued before the connection joins the fan-out map, so a
// racing broadcast can never arrive ahead of the snapshot.
func (r *Registry) Register(ctx context.Context, staffID string, sock socket) (*Conn, error) {
	shops, err := r.Directory.StaffShops(ctx, staffID)
	if err != nil {
		return nil, err
	}
	open, err := r.Snapshots.OpenByShops(ctx, shops)
	if err != nil {
		return nil, err
	}

	c := newConn(staffID, sock)
	snap, err := json.Marshal(message{Type: "snapshot", Orders: open})
	if err == nil {
		c.push(snap)
	}

	r.mu.Lock()
	r.conns[staffID] = append(r.conns[staffID], c)
	r.mu.Unlock()
	return c, nil
}

// Unregister removes exactly the given handle and drops the map entry when it
// was the staff member's last connection. Push delivery stops; order state is
// never affected.
func (r *Registry) Unregister(staffID string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.conns[staffID]
	for i, cc := range list {
		if cc == c {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.conns, staffID)
	} else {
		r.conns[staffID] = list
	}
	c.Close()
}

// BroadcastToShop resolves the shop's current managers and pushes the payload
// to every live connection of each, skipping connections already closed.
// Returns the resolved manager ids; delivery itself is best-effort.
func (r *Registry) BroadcastToShop(ctx context.Context, shopID string, event []byte) []string {
	managers, err := r.Directory.ShopManagers(ctx, shopID)
	if err != nil {
		slog.Warn("broadcast: manager resolution failed", "shop_id", shopID, "err", err)
		return nil
	}
	for _, staffID := range managers {
		r.BroadcastToStaff(staffID, event)
	}
	return managers
}

// BroadcastToStaff pushes the payload directly to one staff member's live
// connections, bypassing shop resolution.
func (r *Registry) BroadcastToStaff(staffID string, event []byte) {
	b, err := json.Marshal(message{Type: "order_event", Event: event})
	if err != nil {
		return
	}

	r.mu.Lock()
	list := append([]*Conn(nil), r.conns[staffID]...)
	r.mu.Unlock()

	for _, c := range list {
		if c.closed() {
			continue
		}
		c.push(b)
	}
}

// Shutdown closes every connection. Called once on process teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.conns {
		for _, c := range list {
			c.Close()
		}
	}
	r.conns = map[string][]*Conn{}
}
