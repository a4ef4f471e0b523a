// Package generation mediates every request to the external generative
// service through a caching, retrying, throttling pipeline with
// deterministic fallbacks.
package generation

//go:generate mockgen -destination=mock/mock_client.go -package=generationmock github.com/llmadventure/llmadventure/internal/generation Client

import "context"

// Client issues a single prompt to the generation service and returns the
// raw text response. Implementations classify failures: transient problems
// (network, timeout, rate limit) come back as Unavailable errors so the
// pipeline retries them; anything else is treated as permanent.
type Client interface {
	Generate(ctx context.Context, req *Request) (string, error)
}
