package navigator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ppchow/pettington-product-navigator/internal/shopify"
)

const defaultRetryInterval = 30 * time.Second

type ConnectivityStatus struct {
	Online    bool      `json:"online"`
	Since     time.Time `json:"since"`
	LastError string    `json:"last_error,omitempty"`
}

// Connectivity tracks whether the storefront answered the last request.
// Transport failures flip it offline; any response flips it back online.
type Connectivity struct {
	mu            sync.RWMutex
	online        bool
	since         time.Time
	lastAttempt   time.Time
	lastError     string
	retryInterval time.Duration
	onChange      func(online bool)
	logger        *slog.Logger
	now           func() time.Time
}

func NewConnectivity(retryInterval time.Duration, logger *slog.Logger, onChange func(online bool)) *Connectivity {
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Connectivity{
		online:        true,
		since:         time.Now(),
		retryInterval: retryInterval,
		onChange:      onChange,
		logger:        logger.With("component", "connectivity"),
		now:           time.Now,
	}
}

func (c *Connectivity) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

func (c *Connectivity) Status() ConnectivityStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConnectivityStatus{Online: c.online, Since: c.since, LastError: c.lastError}
}

// ShouldFetch reports whether a network request is worth attempting when a
// cached copy exists: always while online, and at most once per retry
// interval while offline.
func (c *Connectivity) ShouldFetch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.online {
		return true
	}
	return c.now().Sub(c.lastAttempt) >= c.retryInterval
}

// Record updates the state from the outcome of a storefront request.
func (c *Connectivity) Record(err error) {
	if err != nil && !shopify.IsUnreachable(err) {
		err = nil
	}

	c.mu.Lock()
	now := c.now()
	c.lastAttempt = now
	wasOnline := c.online
	c.online = err == nil
	if err != nil {
		c.lastError = err.Error()
	} else {
		c.lastError = ""
	}
	changed := wasOnline != c.online
	if changed {
		c.since = now
	}
	online := c.online
	c.mu.Unlock()

	if !changed {
		return
	}
	if online {
		c.logger.Info("storefront reachable again")
	} else {
		c.logger.Warn("storefront unreachable, serving cached catalog", "error", err)
	}
	if c.onChange != nil {
		c.onChange(online)
	}
}
