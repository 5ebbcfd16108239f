package dispatch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ChannelLimiters holds one token bucket per delivery channel. Burst is
// set equal to the rate so no capacity can be saved up beyond the
// configured per-second maximum.
type ChannelLimiters struct {
	mu       sync.Mutex
	perSec   int
	limiters map[string]*rate.Limiter
}

// NewChannelLimiters creates limiters granting ratePerSec tokens per
// second per channel. Channels are created lazily on first use.
func NewChannelLimiters(ratePerSec int) *ChannelLimiters {
	return &ChannelLimiters{
		perSec:   ratePerSec,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the channel's limiter grants a token. Returns a
// non-nil error only when ctx is cancelled while waiting.
func (cl *ChannelLimiters) Wait(ctx context.Context, channel string) error {
	cl.mu.Lock()
	lim, ok := cl.limiters[channel]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(cl.perSec), cl.perSec)
		cl.limiters[channel] = lim
	}
	cl.mu.Unlock()
	return lim.Wait(ctx)
}
