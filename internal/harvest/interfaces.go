package harvest

import (
	"context"
	"time"
)

// Renderer produces the anchors of a rendered page. Implementations drive
// a headless browser; the orchestrator only sees link records.
type Renderer interface {
	Links(ctx context.Context, pageURL, selector string) ([]LinkRecord, error)
}

// Fetcher retrieves raw bytes for a report URL. referrer is the page the
// link was discovered on. Non-success statuses surface as errors.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, referrer string) ([]byte, error)
}

// Retriever decides whether a classified link needs I/O and performs it.
type Retriever interface {
	RetrieveIfNeeded(ctx context.Context, link ResolvedLink, referrer string) (Outcome, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
