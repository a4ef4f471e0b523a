package generation

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/llmadventure/llmadventure/internal/errors"
)

// Defaults for pipeline tunables. All of them are configuration, not
// invariants.
const (
	DefaultMaxConcurrent  = 5
	DefaultMaxRetries     = 3
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultRequestTimeout = 15 * time.Second
)

// Config holds the dependencies and tunables for the pipeline
type Config struct {
	Client Client

	// MaxConcurrent bounds distinct in-flight requests; further requests queue
	MaxConcurrent int

	// MaxRetries is the number of retries after the first attempt fails
	// with a transient error
	MaxRetries int

	// BackoffBase is the initial exponential backoff interval
	BackoffBase time.Duration

	// RequestTimeout bounds each individual attempt
	RequestTimeout time.Duration
}

// Validate ensures required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}

	return vb.Build()
}

// cacheEntry is one fingerprint's slot. Entries are created pending and
// promoted exactly once to a terminal status; done is closed on promotion so
// duplicate requesters can wait instead of issuing a second outbound call.
type cacheEntry struct {
	fingerprint string
	kind        RequestKind
	status      Status
	raw         string
	done        chan struct{}
}

// Pipeline issues generation requests with caching, single-flight
// deduplication, bounded concurrency, retries, and deterministic fallbacks.
// The zero outcome for a caller is always a usable artifact: on total
// service outage every call degrades to a fallback result.
type Pipeline struct {
	client         Client
	maxRetries     int
	backoffBase    time.Duration
	requestTimeout time.Duration

	sem chan struct{}

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// NewPipeline creates a pipeline with the provided dependencies
func NewPipeline(cfg *Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return &Pipeline{
		client:         cfg.Client,
		maxRetries:     maxRetries,
		backoffBase:    backoffBase,
		requestTimeout: requestTimeout,
		sem:            make(chan struct{}, maxConcurrent),
		cache:          make(map[string]*cacheEntry),
	}, nil
}

// Generate resolves a request to a terminal Result.
//
// Cached succeeded/fallback entries return immediately with no outbound
// call. A pending entry is awaited (single-flight). A failed entry is
// retried. Otherwise the request goes out bounded by the concurrency limit,
// per-attempt timeout, and retry budget; exhaustion degrades to the
// deterministic fallback rather than an error.
func (p *Pipeline) Generate(ctx context.Context, req *Request) (*Result, error) {
	if !req.Kind.Valid() {
		return nil, errors.InvalidArgumentf("unknown request kind: %s", req.Kind)
	}

	fp := req.Fingerprint()

	for {
		p.mu.Lock()
		entry, ok := p.cache[fp]
		if ok {
			switch entry.status {
			case StatusSucceeded, StatusFallback:
				p.mu.Unlock()
				return entry.result(), nil
			case StatusPending:
				done := entry.done
				p.mu.Unlock()
				select {
				case <-done:
					continue // re-read the promoted entry
				case <-ctx.Done():
					return nil, errors.WrapWithCode(ctx.Err(), errors.CodeUnavailable,
						"canceled while awaiting in-flight request")
				}
			case StatusFailed:
				// Failed entries are retriable: this caller becomes the
				// new single flight for the fingerprint.
			}
		}

		entry = &cacheEntry{
			fingerprint: fp,
			kind:        req.Kind,
			status:      StatusPending,
			done:        make(chan struct{}),
		}
		p.cache[fp] = entry
		p.mu.Unlock()

		return p.fly(ctx, req, entry), nil
	}
}

// Prefetch speculatively populates the cache for a request. Results never
// mutate authoritative state until a transition consumes them; errors are
// absorbed since a later Generate will retry or fall back.
func (p *Pipeline) Prefetch(req *Request) {
	go func() {
		if _, err := p.Generate(context.Background(), req); err != nil {
			slog.Debug("prefetch failed", "kind", req.Kind, "error", err)
		}
	}()
}

// Fallback returns the deterministic fallback result for a request without
// touching the cache. Callers substitute it when validation rejects an
// otherwise-succeeded artifact.
func (p *Pipeline) Fallback(req *Request) *Result {
	return &Result{
		Fingerprint: req.Fingerprint(),
		Kind:        req.Kind,
		Status:      StatusFallback,
		Raw:         FallbackRaw(req),
	}
}

// fly performs the single outbound flight for a pending entry and promotes
// it to a terminal status. The outbound call deliberately detaches from the
// caller's context: if the session ends mid-flight the response still lands
// in the cache for a later restore.
func (p *Pipeline) fly(ctx context.Context, req *Request, entry *cacheEntry) *Result {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	flightCtx := context.WithoutCancel(ctx)

	raw, err := p.attempt(flightCtx, req)
	switch {
	case err == nil:
		p.promote(entry, StatusSucceeded, raw)

	case errors.IsUnavailable(err):
		// Transient exhaustion: record the failure so a later call with the
		// same fingerprint retries the service, but hand this caller a
		// fallback so the turn completes.
		slog.Warn("generation failed after retries, using fallback",
			"kind", req.Kind,
			"fingerprint", entry.fingerprint,
			"error", err,
		)
		p.promote(entry, StatusFailed, "")
		return p.Fallback(req)

	default:
		// Permanent failure: cache the fallback for the session's lifetime,
		// retrying would not help.
		slog.Warn("generation failed permanently, caching fallback",
			"kind", req.Kind,
			"fingerprint", entry.fingerprint,
			"error", err,
		)
		p.promote(entry, StatusFallback, FallbackRaw(req))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return entry.result()
}

// attempt runs the outbound call with per-attempt timeout and exponential
// backoff on transient failures
func (p *Pipeline) attempt(ctx context.Context, req *Request) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.backoffBase
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	var raw string
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
		defer cancel()

		out, err := p.client.Generate(attemptCtx, req)
		if err != nil {
			if errors.IsUnavailable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		raw = out
		return nil
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(bo, uint64(p.maxRetries)))
	if err != nil {
		var permanent *backoff.PermanentError
		if stderrors.As(err, &permanent) {
			return "", permanent.Err
		}
		return "", err
	}
	return raw, nil
}

// promote moves an entry to a terminal status exactly once. Statuses never
// regress; a second promotion attempt is an invariant bug and is logged.
func (p *Pipeline) promote(entry *cacheEntry, status Status, raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry.status.Terminal() {
		slog.Error("cache entry promoted twice",
			"fingerprint", entry.fingerprint,
			"from", entry.status,
			"to", status,
		)
		return
	}

	entry.status = status
	entry.raw = raw
	close(entry.done)
}

// result materializes the entry. Callers must hold p.mu or know the entry
// is terminal.
func (e *cacheEntry) result() *Result {
	return &Result{
		Fingerprint: e.fingerprint,
		Kind:        e.kind,
		Status:      e.status,
		Raw:         e.raw,
	}
}

// Export returns the cache entries that belong in a snapshot: succeeded and
// fallback only, never pending or failed.
func (p *Pipeline) Export() []CacheEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	var entries []CacheEntry
	for _, e := range p.cache {
		if !e.status.Cacheable() {
			continue
		}
		entries = append(entries, CacheEntry{
			Fingerprint: e.fingerprint,
			Kind:        e.kind,
			Status:      e.status,
			Raw:         e.raw,
		})
	}
	return entries
}

// Import seeds the cache from snapshot entries. Restored fingerprints
// resolve without re-contacting the service.
func (p *Pipeline) Import(entries []CacheEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range entries {
		if !e.Status.Cacheable() {
			return errors.DataLossf("snapshot cache entry %s has status %s", e.Fingerprint, e.Status)
		}
		if existing, ok := p.cache[e.Fingerprint]; ok && existing.status != e.Status {
			return errors.InvariantViolationf(
				"cache entry %s imported in conflicting states %s and %s",
				e.Fingerprint, existing.status, e.Status)
		}
		done := make(chan struct{})
		close(done)
		p.cache[e.Fingerprint] = &cacheEntry{
			fingerprint: e.Fingerprint,
			kind:        e.Kind,
			status:      e.Status,
			raw:         e.Raw,
			done:        done,
		}
	}
	return nil
}
