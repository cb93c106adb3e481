// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"testing"
	"time"
)

func TestQueueClaimOrder(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	for _, id := range []string{"t1", "t2", "t3"} {
		if err := q.Enqueue(id); err != nil {
			t.Fatalf("Enqueue %s: %v", id, err)
		}
	}

	for _, want := range []string{"t1", "t2", "t3"} {
		id, ok, err := q.Claim("w1")
		if err != nil || !ok || id != want {
			t.Fatalf("Claim() = %q, %v, %v, want %q", id, ok, err, want)
		}
	}

	if _, ok, _ := q.Claim("w1"); ok {
		t.Error("Claim succeeded on an empty queue")
	}
}

func TestQueueEnqueueIdempotent(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	q.Enqueue("t1")
	q.Enqueue("t1")

	if id, ok, _ := q.Claim("w1"); !ok || id != "t1" {
		t.Fatalf("Claim() = %q, %v", id, ok)
	}
	// Re-enqueueing a leased task is also a no-op.
	q.Enqueue("t1")
	if _, ok, _ := q.Claim("w2"); ok {
		t.Error("leased task was claimable again")
	}
}

func TestQueueLeaseBlocksOtherWorkers(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	q.Enqueue("t1")

	if _, ok, _ := q.Claim("w1"); !ok {
		t.Fatal("first claim failed")
	}
	if _, ok, _ := q.Claim("w2"); ok {
		t.Error("second worker claimed a leased task")
	}

	if err := q.Release("t1", "w1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	// Released tasks leave the queue entirely.
	if _, ok, _ := q.Claim("w2"); ok {
		t.Error("released task was claimable")
	}
}

func TestQueueExpiredLeaseReclaimed(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return current }
	defer func() { now = time.Now }()

	q := NewMemoryQueue(time.Minute)
	q.Enqueue("t1")
	if _, ok, _ := q.Claim("w1"); !ok {
		t.Fatal("first claim failed")
	}

	// Within the TTL the lease holds.
	current = current.Add(30 * time.Second)
	if _, ok, _ := q.Claim("w2"); ok {
		t.Error("live lease was reclaimed")
	}

	current = current.Add(2 * time.Minute)
	id, ok, err := q.Claim("w2")
	if err != nil || !ok || id != "t1" {
		t.Errorf("Claim() = %q, %v, %v, want the expired task reclaimed", id, ok, err)
	}
}

func TestQueueRenewExtendsLease(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return current }
	defer func() { now = time.Now }()

	q := NewMemoryQueue(time.Minute)
	q.Enqueue("t1")
	q.Claim("w1")

	current = current.Add(45 * time.Second)
	if err := q.Renew("t1", "w1"); err != nil {
		t.Fatalf("Renew: %v", err)
	}

	// Past the original expiry but within the renewed lease.
	current = current.Add(45 * time.Second)
	if _, ok, _ := q.Claim("w2"); ok {
		t.Error("renewed lease was reclaimed")
	}
}

func TestQueueOwnershipChecks(t *testing.T) {
	q := NewMemoryQueue(time.Minute)
	q.Enqueue("t1")
	q.Claim("w1")

	if err := q.Renew("t1", "w2"); err == nil {
		t.Error("Renew by a non-owner succeeded")
	}
	if err := q.Release("t1", "w2"); err == nil {
		t.Error("Release by a non-owner succeeded")
	}
	if err := q.Renew("t2", "w1"); err == nil {
		t.Error("Renew of an unleased task succeeded")
	}
}
