package charts

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Board is an Engine that keeps chart configs per mount point so a page
// can draw them. Every live instance is a layer; a mount with two layers
// is a duplicate overlay.
type Board struct {
	mu     sync.RWMutex
	nextID uint64
	layers map[string][]*layer
}

type layer struct {
	board *Board
	id    uint64
	mount string
	cfg   Config
	once  sync.Once
}

// Layer is a read-only view of one live chart.
type Layer struct {
	Mount string
	Type  Kind
	JSON  string
}

func NewBoard() *Board {
	return &Board{layers: make(map[string][]*layer)}
}

// New implements Engine.
func (b *Board) New(mount string, cfg Config) (Chart, error) {
	if mount == "" {
		return nil, fmt.Errorf("charts: empty mount point")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	l := &layer{board: b, id: b.nextID, mount: mount, cfg: cfg}
	b.layers[mount] = append(b.layers[mount], l)
	return l, nil
}

// Destroy removes the layer from its mount. Calling it twice is a no-op.
func (l *layer) Destroy() {
	l.once.Do(func() {
		l.board.remove(l)
	})
}

func (b *Board) remove(target *layer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.layers[target.mount]
	for i, l := range ls {
		if l.id == target.id {
			b.layers[target.mount] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.layers[target.mount]) == 0 {
		delete(b.layers, target.mount)
	}
}

// Layers returns the live layers on mount, oldest first.
func (b *Board) Layers(mount string) []Layer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ls := b.layers[mount]
	out := make([]Layer, 0, len(ls))
	for _, l := range ls {
		raw, err := json.Marshal(l.cfg)
		if err != nil {
			continue
		}
		out = append(out, Layer{Mount: mount, Type: l.cfg.Type, JSON: string(raw)})
	}
	return out
}

// Current returns the newest config drawn on mount.
func (b *Board) Current(mount string) (Config, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ls := b.layers[mount]
	if len(ls) == 0 {
		return Config{}, false
	}
	return ls[len(ls)-1].cfg, true
}

// Mounts lists mount points with at least one live layer.
func (b *Board) Mounts() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.layers))
	for m := range b.layers {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
