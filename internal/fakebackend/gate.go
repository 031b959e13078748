package fakebackend

import (
	"context"
	"sync"
)

// Gate holds requests in flight until Release is called.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *Gate {
	return &Gate{
		arrived: make(chan struct{}, 64),
		release: make(chan struct{}),
	}
}

// Arrived receives one value per request that reached the gate.
func (g *Gate) Arrived() <-chan struct{} {
	return g.arrived
}

// Release lets every held and future request through. Safe to call twice.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

func (g *Gate) wait(ctx context.Context) {
	select {
	case g.arrived <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
	case <-ctx.Done():
	}
}
