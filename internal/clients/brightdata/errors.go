package brightdata

import "github.com/pkg/errors"

var (
	ErrInvalidURL       = errors.New("url is not a linkedin job posting")
	ErrUpstreamProtocol = errors.New("unexpected response from brightdata")
	ErrSnapshotNotFound = errors.New("snapshot not found or expired")
	ErrPollingTimeout   = errors.New("snapshot was not ready in time")
)

// errNotReady marks a 202 answer; it never leaves the package.
var errNotReady = errors.New("snapshot is not ready")
