package sqlite

import (
	"context"
	"database/sql"
	"sync"
)

// Pool is a bounded free list of store handles. It is a cache of open
// connections rather than a strict pool: acquire never blocks, and handles
// released beyond capacity are closed instead of queued. Each handle carries
// its own WAL/synchronous configuration via the DSN, so pooled handles need
// no cross-handle coordination.
type Pool struct {
	db  *sql.DB
	max int

	mu   sync.Mutex
	free []*sql.Conn
}

// NewPool wraps db with a free list holding at most max idle handles.
func NewPool(db *sql.DB, max int) *Pool {
	if max <= 0 {
		max = defaultMaxConns
	}
	return &Pool{db: db, max: max}
}

// Acquire returns a live handle: a probed one from the free list when
// available, otherwise a freshly opened one. Handles that fail the liveness
// probe are discarded, never handed out.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	for {
		p.mu.Lock()
		n := len(p.free)
		if n == 0 {
			p.mu.Unlock()
			break
		}
		conn := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()

		var one int
		if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err == nil {
			return conn, nil
		}
		_ = conn.Close()
	}
	return p.db.Conn(ctx)
}

// Release returns a handle to the free list, or closes it when the list is
// already at capacity.
func (p *Pool) Release(conn *sql.Conn) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	if len(p.free) < p.max {
		p.free = append(p.free, conn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	_ = conn.Close()
}

// Idle reports the current free-list size.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Close drops every idle handle.
func (p *Pool) Close() error {
	p.mu.Lock()
	free := p.free
	p.free = nil
	p.mu.Unlock()

	var firstErr error
	for _, conn := range free {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
