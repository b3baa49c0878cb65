// Package queue keeps the telecaller's lead lists and bucket counts in sync
// with the server. Every list fetch carries a sequence ticket and only the
// most recently issued ticket may replace the visible list.
package queue

import (
	"context"
	"sync"

	"telecrm/internal/events"
	leadsdomain "telecrm/internal/leads/domain"
	"telecrm/internal/telecaller/transport"
	"telecrm/platform/logger"

	"golang.org/x/sync/errgroup"
)

// LeadSource is the read side of the telecaller API.
type LeadSource interface {
	List(ctx context.Context, bucket leadsdomain.Bucket) ([]leadsdomain.Lead, error)
	Counts(ctx context.Context) (transport.Counts, error)
}

// Ticket identifies one issued list fetch.
type Ticket struct {
	Bucket leadsdomain.Bucket
	Seq    uint64
}

// Result is the outcome of fetching a ticket. Leads is empty when Err is set.
type Result struct {
	Ticket Ticket
	Leads  []leadsdomain.Lead
	Err    error
}

// State is a snapshot of the provider. Seq is the latest ticket issued when
// the snapshot was taken. Version grows with every change to the list, the
// loading flag or the counts, so of two snapshots the one with the higher
// Version is the newer even when both carry the same Seq.
type State struct {
	Seq     uint64
	Version uint64
	Bucket  leadsdomain.Bucket
	Leads   []leadsdomain.Lead
	Counts  transport.Counts
	Loading bool
	Err     error
}

// Provider owns the visible list of one bucket at a time plus the counts.
type Provider struct {
	src LeadSource
	log *logger.Logger

	mu        sync.Mutex
	seq       uint64
	bucket    leadsdomain.Bucket
	leads     []leadsdomain.Lead
	loading   bool
	err       error
	counts    transport.Counts
	countsSeq uint64
	version   uint64
	onChange  func(State)
}

// New creates a provider showing the assigned bucket.
func New(src LeadSource, log *logger.Logger) *Provider {
	return &Provider{
		src:    src,
		log:    log,
		bucket: leadsdomain.BucketAssigned,
		leads:  []leadsdomain.Lead{},
	}
}

// OnChange registers fn to be called with a fresh snapshot after every
// applied list or counts update. fn runs without the provider lock held.
func (p *Provider) OnChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Subscribe refreshes the queue and counts whenever a call is closed, and
// reloads the visible list after a lead was renamed.
func (p *Provider) Subscribe(bus events.Subscriber) {
	bus.Subscribe(events.CallClosedEvent, events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		p.Refresh(ctx)
		return nil
	}))
	bus.Subscribe(events.LeadRenamedEvent, events.HandlerFunc(func(ctx context.Context, _ events.Event) error {
		p.Reload(ctx)
		return nil
	}))
}

// Begin switches to bucket and issues a new ticket. Any result for an
// earlier ticket is discarded when it arrives.
func (p *Provider) Begin(bucket leadsdomain.Bucket) Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.version++
	p.bucket = bucket
	p.loading = true
	return Ticket{Bucket: bucket, Seq: p.seq}
}

// Fetch performs the network call for t. It does not touch provider state.
func (p *Provider) Fetch(ctx context.Context, t Ticket) Result {
	leads, err := p.src.List(ctx, t.Bucket)
	if err != nil {
		p.log.Warn("lead list fetch failed", "bucket", string(t.Bucket), "error", err)
		return Result{Ticket: t, Leads: []leadsdomain.Lead{}, Err: err}
	}
	if leads == nil {
		leads = []leadsdomain.Lead{}
	}
	return Result{Ticket: t, Leads: leads}
}

// Apply installs r if its ticket is still the latest issued one and reports
// whether it did.
func (p *Provider) Apply(r Result) bool {
	p.mu.Lock()
	if r.Ticket.Seq != p.seq {
		latest := p.seq
		p.mu.Unlock()
		p.log.StaleResult(string(r.Ticket.Bucket), r.Ticket.Seq, latest)
		return false
	}

	p.leads = r.Leads
	p.err = r.Err
	p.loading = false
	p.version++
	notify, state := p.onChange, p.stateLocked()
	p.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return true
}

// Load fetches bucket and returns the list now visible. When a newer fetch
// was issued meanwhile the newer list is returned.
func (p *Provider) Load(ctx context.Context, bucket leadsdomain.Bucket) []leadsdomain.Lead {
	p.Apply(p.Fetch(ctx, p.Begin(bucket)))
	return p.State().Leads
}

// Reload re-fetches the bucket currently shown.
func (p *Provider) Reload(ctx context.Context) []leadsdomain.Lead {
	return p.Load(ctx, p.Bucket())
}

// RefreshCounts fetches the bucket counts. A failure yields zero counts.
func (p *Provider) RefreshCounts(ctx context.Context) transport.Counts {
	p.mu.Lock()
	p.countsSeq++
	seq := p.countsSeq
	p.mu.Unlock()

	counts, err := p.src.Counts(ctx)
	if err != nil {
		p.log.Warn("lead counts fetch failed", "error", err)
		counts = transport.Counts{}
	}

	p.mu.Lock()
	if seq != p.countsSeq {
		latest := p.countsSeq
		p.mu.Unlock()
		p.log.StaleResult("counts", seq, latest)
		return p.Counts()
	}
	p.counts = counts
	p.version++
	notify, state := p.onChange, p.stateLocked()
	p.mu.Unlock()

	if notify != nil {
		notify(state)
	}
	return counts
}

// Refresh re-fetches the counts and the current bucket concurrently. The two
// requests are independent: one failing does not affect the other.
func (p *Provider) Refresh(ctx context.Context) State {
	var g errgroup.Group
	g.Go(func() error {
		p.RefreshCounts(ctx)
		return nil
	})
	g.Go(func() error {
		p.Reload(ctx)
		return nil
	})
	_ = g.Wait()
	return p.State()
}

// Bucket returns the bucket currently shown.
func (p *Provider) Bucket() leadsdomain.Bucket {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bucket
}

// Loading reports whether the latest issued fetch is still outstanding.
func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Counts returns the last applied counts.
func (p *Provider) Counts() transport.Counts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts
}

// State returns a snapshot of the provider.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Provider) stateLocked() State {
	leads := make([]leadsdomain.Lead, len(p.leads))
	copy(leads, p.leads)
	return State{
		Seq:     p.seq,
		Version: p.version,
		Bucket:  p.bucket,
		Leads:   leads,
		Counts:  p.counts,
		Loading: p.loading,
		Err:     p.err,
	}
}
