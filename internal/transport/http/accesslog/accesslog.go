// Package accesslog appends a line per request to a plain-text log file and
// keeps lightweight counters (request count, unique client IPs) for a
// periodic report. Reporting only; never correctness-relevant.
package accesslog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"transportadoras-server-go/internal/platform/logging"
)

// Recorder accumulates access statistics and owns the log file handle.
type Recorder struct {
	mu       sync.Mutex
	file     *os.File
	count    int
	uniqueIP map[string]struct{}
	logger   *logging.Logger
}

// NewRecorder opens (appending) the access log at path. An empty path
// disables the file while keeping the counters.
func NewRecorder(path string, logger *logging.Logger) (*Recorder, error) {
	var file *os.File
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open access log: %w", err)
		}
		file = f
	}
	return &Recorder{
		file:     file,
		uniqueIP: make(map[string]struct{}),
		logger:   logger,
	}, nil
}

// clientIP prefers the first X-Forwarded-For hop, matching the original
// deployment behind a proxy.
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	ip := c.RemoteIP()
	return strings.TrimPrefix(ip, "::ffff:")
}

// Middleware records every request before handing off to the next handler.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		entry := fmt.Sprintf("[%s] %s - %s %s\n",
			time.Now().UTC().Format(time.RFC3339), ip, c.Request.Method, c.Request.URL.Path)

		r.mu.Lock()
		r.count++
		r.uniqueIP[ip] = struct{}{}
		if r.file != nil {
			// Best-effort; a full disk must not fail requests.
			_, _ = r.file.WriteString(entry)
		}
		r.mu.Unlock()

		c.Next()
	}
}

// Snapshot returns and resets the accumulated counters.
func (r *Recorder) Snapshot() (requests int, uniqueIPs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests = r.count
	uniqueIPs = len(r.uniqueIP)
	r.count = 0
	r.uniqueIP = make(map[string]struct{})
	return requests, uniqueIPs
}

// Report logs the counters on every interval tick until ctx is cancelled.
func (r *Recorder) Report(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			requests, ips := r.Snapshot()
			if requests > 0 && r.logger != nil {
				r.logger.InfoTag("acessos", "%d requisições de %d IPs únicos", requests, ips)
			}
		}
	}
}

// Close releases the log file.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}
}
