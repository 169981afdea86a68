package planner

// Ledger is the set of place ids already used by an itinerary build.
// It is passed by value into each day build and the updated copy returned,
// so a failed day never leaks partial allocations.
type Ledger struct {
	used map[string]struct{}
}

func NewLedger(ids ...string) Ledger {
	l := Ledger{used: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		l.used[id] = struct{}{}
	}
	return l
}

func (l Ledger) Contains(id string) bool {
	_, ok := l.used[id]
	return ok
}

func (l Ledger) Len() int { return len(l.used) }

// With returns a copy of the ledger that also holds id.
func (l Ledger) With(id string) Ledger {
	next := l.Clone()
	next.mark(id)
	return next
}

// mark mutates in place; only call it on a ledger the caller owns.
func (l Ledger) mark(id string) {
	l.used[id] = struct{}{}
}

func (l Ledger) Clone() Ledger {
	next := Ledger{used: make(map[string]struct{}, len(l.used)+1)}
	for id := range l.used {
		next.used[id] = struct{}{}
	}
	return next
}

// Pool is an ordered candidate list shared by every day of a build.
// Used entries stay in place; the ledger decides eligibility.
type Pool struct {
	items []Activity
}

func NewPool(items ...Activity) *Pool {
	return &Pool{items: items}
}

func (p *Pool) Items() []Activity { return p.items }

func (p *Pool) Len() int { return len(p.items) }

// Take removes up to n activities from the front of the pool.
func (p *Pool) Take(n int) []Activity {
	n = min(n, len(p.items))
	out := make([]Activity, n)
	copy(out, p.items[:n])
	p.items = p.items[n:]
	return out
}

// Return puts activities back at the front, keeping their order.
func (p *Pool) Return(items []Activity) {
	if len(items) == 0 {
		return
	}
	p.items = append(append(make([]Activity, 0, len(items)+len(p.items)), items...), p.items...)
}
