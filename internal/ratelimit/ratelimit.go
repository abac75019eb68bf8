// Package ratelimit throttles a byte source, so a document can be streamed
// at a fixed speed the way it would arrive over a slow link.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// maxBurst caps how many bytes one Read may return on a limited source.
const maxBurst = 64 * 1024

// Limiter hands out byte tokens.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no rate limiting.
func New(bytesPerSecond float64) *Limiter {
	if bytesPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, maxBurst),
		}
	}

	// one second worth of bytes may be read at once, at least a byte
	burst := min(max(int(bytesPerSecond), 1), maxBurst)
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

// WaitN blocks until n bytes may be consumed. n must not exceed Burst.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	return l.limiter.WaitN(ctx, n)
}

// Burst is the largest number of bytes a single read may return.
func (l *Limiter) Burst() int {
	return l.limiter.Burst()
}

// Reader is an io.Reader that pays for every byte it returns.
type Reader struct {
	ctx     context.Context
	src     io.Reader
	limiter *Limiter
	n       int64
}

// NewReader throttles src to bytesPerSecond. Reads fail with the context's
// error once ctx is done.
func NewReader(ctx context.Context, src io.Reader, bytesPerSecond float64) *Reader {
	return &Reader{
		ctx:     ctx,
		src:     src,
		limiter: New(bytesPerSecond),
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.src.Read(p)
	if n > 0 {
		r.n += int64(n)
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// BytesRead counts the bytes delivered so far.
func (r *Reader) BytesRead() int64 {
	return r.n
}
