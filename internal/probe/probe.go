package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/netmark/internal/model"
)

// Status represents the reachability of a bookmark.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response, or an open TCP port
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
	Unknown                   // nothing that can be probed (ip without TCP ports)
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Defaults used when Options leaves a field zero.
const (
	DefaultTimeout     = 3 * time.Second
	DefaultConcurrency = 8
)

// Options tunes a probe run.
type Options struct {
	Timeout     time.Duration
	Concurrency int
	Client      *http.Client // nil = client with Timeout and a 10 redirect limit
}

// PortResult is the outcome of dialing one port of an ip bookmark.
type PortResult struct {
	Port  model.Port
	Open  bool
	Error string
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int          // HTTP status code (0 for ip bookmarks or failed connections)
	Ports      []PortResult // ip bookmarks only
	Error      string       // readable reason for non-healthy results
}

// ProgressFunc is called after each bookmark is checked.
// completed is the number of bookmarks checked so far, total is the total count.
type ProgressFunc func(completed, total int)

// Check probes all bookmarks concurrently and returns results in input order.
// URL bookmarks get an HTTP HEAD, falling back to GET. IP bookmarks get a TCP
// dial per TCP port; UDP ports are reported but never dialed.
func Check(ctx context.Context, bookmarks []model.Bookmark, opts Options, onProgress ProgressFunc) []Result {
	if len(bookmarks) == 0 {
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	// Suppress noisy HTTP client logging (protocol errors, unsolicited responses, etc.)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects but limit to 10
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	dialer := &net.Dialer{Timeout: opts.Timeout}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))
	var wg sync.WaitGroup

	// Progress tracking
	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				b := bookmarks[idx]
				if b.Type == model.TypeIP {
					results[idx] = checkIP(ctx, dialer, b)
				} else {
					results[idx] = checkURL(ctx, client, b)
				}

				if onProgress != nil {
					progressMu.Lock()
					completed++
					onProgress(completed, len(bookmarks))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// checkURL checks a single URL bookmark.
func checkURL(ctx context.Context, client *http.Client, bookmark model.Bookmark) Result {
	result := Result{Bookmark: bookmark}
	target := normalizeURL(bookmark.Value)

	// Try HEAD first (faster, less bandwidth)
	resp, err := do(ctx, client, http.MethodHead, target)
	if err != nil {
		// HEAD failed, try GET as fallback (some servers don't support HEAD)
		resp, err = do(ctx, client, http.MethodGet, target)
		if err != nil {
			result.Status = Unreachable
			result.Error = normalizeError(err.Error())
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.Status = Dead
	default:
		// Other errors (500, 403, etc.) - treat as unreachable
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func do(ctx context.Context, client *http.Client, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// checkIP dials every TCP port of an ip bookmark. One open port is enough
// for the host to count as healthy.
func checkIP(ctx context.Context, dialer *net.Dialer, bookmark model.Bookmark) Result {
	result := Result{Bookmark: bookmark, Status: Unknown}

	var lastErr string
	dialed := false
	for _, p := range bookmark.Ports {
		pr := PortResult{Port: p}
		if !strings.EqualFold(p.Proto, "TCP") {
			pr.Error = "not probed"
			result.Ports = append(result.Ports, pr)
			continue
		}

		dialed = true
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(bookmark.Value, p.Port))
		if err != nil {
			pr.Error = normalizeError(err.Error())
			lastErr = pr.Error
		} else {
			conn.Close()
			pr.Open = true
			result.Status = Healthy
		}
		result.Ports = append(result.Ports, pr)
	}

	switch {
	case !dialed:
		result.Error = "no TCP ports"
	case result.Status != Healthy:
		result.Status = Unreachable
		result.Error = lastErr
	}
	return result
}

func normalizeURL(value string) string {
	if strings.Contains(value, "://") {
		return value
	}
	return "http://" + value
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "context canceled"):
		return "Canceled"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}

// Summary counts results per status.
func Summary(results []Result) map[Status]int {
	out := make(map[Status]int, 4)
	for _, r := range results {
		out[r.Status]++
	}
	return out
}

// Describe renders a one-line outcome for a result.
func Describe(r Result) string {
	switch {
	case r.Status == Healthy && r.StatusCode != 0:
		return fmt.Sprintf("%s (%d)", r.Status, r.StatusCode)
	case r.Status == Dead:
		return fmt.Sprintf("%s (%d)", r.Status, r.StatusCode)
	case r.Error != "":
		return fmt.Sprintf("%s: %s", r.Status, r.Error)
	default:
		return r.Status.String()
	}
}
