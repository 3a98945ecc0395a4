package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finboard/internal/backend/memory"
	"finboard/internal/core"
	applog "finboard/internal/log"
)

type recordingSink struct {
	mu      sync.Mutex
	created []core.TransactionInput
	deleted []int64
	err     error
	// gate, when set, blocks every notification until it is closed.
	gate chan struct{}
}

func (r *recordingSink) wait() {
	if r.gate != nil {
		<-r.gate
	}
}

func (r *recordingSink) NotifyCreated(_ context.Context, in core.TransactionInput) error {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, in)
	return r.err
}

func (r *recordingSink) NotifyDeleted(_ context.Context, id int64) error {
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return r.err
}

func TestNotifyingForwardsSuccessfulMutations(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	b := WithEvents(memory.New(nil), sink, applog.Discard())

	if err := b.CreateTransaction(ctx, core.TransactionInput{Description: "a", Amount: "1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := b.CreateTransaction(ctx, core.TransactionInput{Description: "b", Amount: "abc"}); err == nil {
		t.Fatalf("expected amount error")
	}
	if err := b.DeleteTransaction(ctx, 99); err == nil {
		t.Fatalf("expected not found")
	}
	if err := b.DeleteTransaction(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(sink.created) != 1 || sink.created[0].Description != "a" {
		t.Fatalf("unexpected created events %+v", sink.created)
	}
	if len(sink.deleted) != 1 || sink.deleted[0] != 1 {
		t.Fatalf("unexpected deleted events %+v", sink.deleted)
	}
}

func TestNotifyingIgnoresSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	b := WithEvents(memory.New(nil), sink, applog.Discard())
	defer b.Close()
	if err := b.CreateTransaction(context.Background(), core.TransactionInput{Description: "a", Amount: "1"}); err != nil {
		t.Fatalf("sink failure must not fail the create: %v", err)
	}
}

func TestNotifyingDoesNotWaitForSlowSink(t *testing.T) {
	sink := &recordingSink{gate: make(chan struct{})}
	b := newNotifying(memory.New(nil), sink, applog.Discard(), 1)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		// One event reaches the blocked sink, one waits in the queue and
		// the rest are dropped.
		for i := 0; i < 5; i++ {
			_ = b.CreateTransaction(context.Background(), core.TransactionInput{Description: "a", Amount: "1"})
		}
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("mutations blocked on the sink")
	}

	close(sink.gate)
	_ = b.Close()
	if n := len(sink.created); n < 1 || n > 2 {
		t.Fatalf("expected at most queue plus in-flight events, got %d", n)
	}
	if txs, _ := b.ListTransactions(context.Background()); len(txs) != 5 {
		t.Fatalf("every create must reach the store, got %d", len(txs))
	}
}

func TestNotifyingDropsAfterClose(t *testing.T) {
	sink := &recordingSink{}
	b := WithEvents(memory.New(nil), sink, applog.Discard())
	_ = b.Close()
	_ = b.Close()
	if err := b.CreateTransaction(context.Background(), core.TransactionInput{Description: "a", Amount: "1"}); err != nil {
		t.Fatalf("create after close: %v", err)
	}
	if len(sink.created) != 0 {
		t.Fatalf("no events after close")
	}
}
