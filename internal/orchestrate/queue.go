// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"fmt"
	"sync"
	"time"
)

// Queue hands research tasks to workers pull-style. A claim takes a lease
// on the task id; while the lease is live no other worker can claim the
// same task, so a multi-worker deployment never double-processes a task.
type Queue interface {
	// Enqueue adds a task id to the pending list. Re-enqueueing a pending
	// or leased task is a no-op.
	Enqueue(taskID string) error

	// Claim leases the next pending task for owner. ok is false when
	// nothing is claimable.
	Claim(owner string) (taskID string, ok bool, err error)

	// Renew extends owner's lease on taskID.
	Renew(taskID, owner string) error

	// Release ends owner's lease and drops the task from the queue.
	Release(taskID, owner string) error
}

// now is the clock; tests override it to control lease expiry.
var now = time.Now

type lease struct {
	owner   string
	expires time.Time
}

// MemoryQueue is the in-process Queue. It preserves enqueue order and
// reclaims tasks whose lease has expired.
type MemoryQueue struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending []string
	leases  map[string]lease
}

// NewMemoryQueue returns a MemoryQueue with the given lease TTL
// (default 5m).
func NewMemoryQueue(ttl time.Duration) *MemoryQueue {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryQueue{ttl: ttl, leases: make(map[string]lease)}
}

func (q *MemoryQueue) Enqueue(taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, leased := q.leases[taskID]; leased {
		return nil
	}
	for _, id := range q.pending {
		if id == taskID {
			return nil
		}
	}
	q.pending = append(q.pending, taskID)
	return nil
}

func (q *MemoryQueue) Claim(owner string) (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Expired leases return their task to the front of the queue.
	for id, l := range q.leases {
		if now().After(l.expires) {
			delete(q.leases, id)
			q.pending = append([]string{id}, q.pending...)
		}
	}

	if len(q.pending) == 0 {
		return "", false, nil
	}
	taskID := q.pending[0]
	q.pending = q.pending[1:]
	q.leases[taskID] = lease{owner: owner, expires: now().Add(q.ttl)}
	return taskID, true, nil
}

func (q *MemoryQueue) Renew(taskID, owner string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	l, ok := q.leases[taskID]
	if !ok {
		return fmt.Errorf("task %s is not leased", taskID)
	}
	if l.owner != owner {
		return fmt.Errorf("task %s is leased by %s, not %s", taskID, l.owner, owner)
	}
	l.expires = now().Add(q.ttl)
	q.leases[taskID] = l
	return nil
}

func (q *MemoryQueue) Release(taskID, owner string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	l, ok := q.leases[taskID]
	if !ok {
		return fmt.Errorf("task %s is not leased", taskID)
	}
	if l.owner != owner {
		return fmt.Errorf("task %s is leased by %s, not %s", taskID, l.owner, owner)
	}
	delete(q.leases, taskID)
	return nil
}
