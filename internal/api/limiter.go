package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/star/tlehist/internal/httputil"
)

// analysisLimiter caps running analyses per client IP and across the server.
type analysisLimiter struct {
	mu         sync.Mutex
	perIP      map[string]int
	running    int
	maxPerIP   int
	maxTotal   int
	trustProxy bool
	logger     *slog.Logger
}

func newAnalysisLimiter(maxPerIP, maxTotal int, trustProxy bool, logger *slog.Logger) *analysisLimiter {
	return &analysisLimiter{
		perIP:      make(map[string]int),
		maxPerIP:   maxPerIP,
		maxTotal:   maxTotal,
		trustProxy: trustProxy,
		logger:     logger,
	}
}

// tryAcquire reserves a slot for ip. It returns the number of analyses ip
// holds afterwards (or already holds, on refusal) and the server-wide count.
func (l *analysisLimiter) tryAcquire(ip string) (held, running int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	held = l.perIP[ip]
	if l.running >= l.maxTotal || held >= l.maxPerIP {
		return held, l.running, false
	}
	l.perIP[ip] = held + 1
	l.running++
	return held + 1, l.running, true
}

func (l *analysisLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.running--
	if n := l.perIP[ip] - 1; n > 0 {
		l.perIP[ip] = n
	} else {
		delete(l.perIP, ip)
	}
}

// middleware rejects requests with 429 while the caller is at its limit.
func (l *analysisLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r, l.trustProxy)
		held, running, ok := l.tryAcquire(ip)
		if !ok {
			l.logger.Warn("analysis rejected",
				"component", "api",
				"client_ip", ip,
				"path", r.URL.Path,
				"client_running", held,
				"server_running", running,
				"max_per_ip", l.maxPerIP,
				"max_total", l.maxTotal,
			)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many concurrent analyses")
			return
		}
		defer l.release(ip)

		next.ServeHTTP(w, r)
	})
}
