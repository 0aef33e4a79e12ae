package console

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/nna-wms/wmsconsole/pkg/menu"
	"github.com/nna-wms/wmsconsole/pkg/notify"
)

// Workspace is the state owned by one signed-in user: their entity stores
// and their notification stream.
type Workspace struct {
	Stores        *Stores
	Notifications *notify.Hub

	mu        sync.Mutex
	routerKey string
	router    http.Handler
}

// routerFor returns the router mounted for tree, building it only when the
// tree differs from the one seen last.
func (ws *Workspace) routerFor(tree []menu.Node, build func([]menu.Node) http.Handler) http.Handler {
	k := fingerprint(tree)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.router == nil || ws.routerKey != k {
		ws.router = build(tree)
		ws.routerKey = k
	}
	return ws.router
}

func fingerprint(tree []menu.Node) string {
	data, err := json.Marshal(tree)
	if err != nil {
		return ""
	}
	return key(string(data))
}

type workspaceEntry struct {
	ws       *Workspace
	lastSeen time.Time
}

// workspaces maps access tokens to workspaces and evicts idle ones.
type workspaces struct {
	mu      sync.Mutex
	entries map[string]*workspaceEntry
	ttl     time.Duration
	create  func() *Workspace
	now     func() time.Time
}

func newWorkspaces(ttl time.Duration, create func() *Workspace) *workspaces {
	return &workspaces{
		entries: make(map[string]*workspaceEntry),
		ttl:     ttl,
		create:  create,
		now:     time.Now,
	}
}

// key hashes the token so raw tokens are not kept as map keys.
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// get returns the workspace for token, creating it on first use.
func (c *workspaces) get(token string) *Workspace {
	k := key(token)
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		e = &workspaceEntry{ws: c.create()}
		c.entries[k] = e
	}
	e.lastSeen = c.now()
	return e.ws
}

// drop forgets the workspace for token.
func (c *workspaces) drop(token string) {
	c.mu.Lock()
	delete(c.entries, key(token))
	c.mu.Unlock()
}

// sweep evicts workspaces idle for longer than the TTL that have no live
// notification subscribers. It returns the number evicted.
func (c *workspaces) sweep() int {
	cutoff := c.now().Add(-c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if e.lastSeen.Before(cutoff) && e.ws.Notifications.Subscribers() == 0 {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *workspaces) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type ctxKey int

const (
	workspaceKey ctxKey = iota
	treeKey
)

func withWorkspace(ctx context.Context, ws *Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey, ws)
}

// WorkspaceFrom returns the workspace attached to ctx.
func WorkspaceFrom(ctx context.Context) (*Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey).(*Workspace)
	return ws, ok && ws != nil
}

func withTree(ctx context.Context, tree []menu.Node) context.Context {
	return context.WithValue(ctx, treeKey, tree)
}

func treeFrom(ctx context.Context) []menu.Node {
	tree, _ := ctx.Value(treeKey).([]menu.Node)
	return tree
}
