package usecase

import (
	"context"
	"sync"
)

// Gate serializes all balance-mutating operations in the process. Balances
// are projected from the chain head before the write transaction begins, so
// two interleaved mutations for the same user could both pass the available
// balance check; the gate removes that window entirely. Blocked acquirers are
// served in FIFO order.
type Gate struct {
	slot chan struct{}
}

// NewGate returns an open Gate.
func NewGate() *Gate {
	return &Gate{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the gate is free or the context is done. On success it
// returns a release function that is safe to call more than once.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-g.slot })
	}

	return release, nil
}
