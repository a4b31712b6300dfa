package painradar

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// perMinute is the request budget of each platform.
var perMinute = map[dom.Platform]int{
	dom.PlatformReddit:     60,
	dom.PlatformHackerNews: 1000,
	dom.PlatformHabr:       100,
	dom.PlatformWeb:        30,
}

// Limiter throttles outbound requests per platform. It is shared by every
// scan in the process.
type Limiter struct {
	mu       sync.Mutex
	limiters map[dom.Platform]*rate.Limiter
}

func NewLimiter() *Limiter {
	return &Limiter{limiters: make(map[dom.Platform]*rate.Limiter)}
}

func (l *Limiter) get(p dom.Platform) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[p]
	if !ok {
		n, known := perMinute[p]
		if !known {
			n = 60
		}
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
		l.limiters[p] = lim
	}
	return lim
}

// Wait blocks until p has a free slot or ctx is done.
func (l *Limiter) Wait(ctx context.Context, p dom.Platform) error {
	return l.get(p).Wait(ctx)
}

// Allow takes a slot without waiting.
func (l *Limiter) Allow(p dom.Platform) bool {
	return l.get(p).Allow()
}
