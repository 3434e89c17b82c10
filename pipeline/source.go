// Package pipeline feeds frames from a source through an engine in real time.
package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/satinavrobotics/depthnav/rimage"
	"github.com/satinavrobotics/depthnav/rimage/transform"
)

// Source produces depth frames. Next blocks until a frame is available and returns io.EOF when
// the source is exhausted.
type Source interface {
	Next(ctx context.Context) (*rimage.DepthFrame, error)
	Close() error
}

// IntrinsicsSource is implemented by sources that know their camera's intrinsics.
type IntrinsicsSource interface {
	Intrinsics() *transform.PinholeCameraIntrinsics
}

// FileSource replays frame files written by rimage.DepthFrame.WriteToFile.
type FileSource struct {
	mu         sync.Mutex
	paths      []string
	next       int
	loop       bool
	limiter    *rate.Limiter
	intrinsics *transform.PinholeCameraIntrinsics
}

// FileSourceOption configures a FileSource.
type FileSourceOption func(*FileSource)

// WithFrameRate paces Next to at most fps frames per second. fps <= 0 means as fast as possible.
func WithFrameRate(fps float64) FileSourceOption {
	return func(fs *FileSource) {
		if fps > 0 {
			fs.limiter = rate.NewLimiter(rate.Limit(fps), 1)
		}
	}
}

// WithLoop restarts from the first file instead of returning io.EOF.
func WithLoop() FileSourceOption {
	return func(fs *FileSource) {
		fs.loop = true
	}
}

// WithSourceIntrinsics attaches camera intrinsics to the source.
func WithSourceIntrinsics(intrinsics *transform.PinholeCameraIntrinsics) FileSourceOption {
	return func(fs *FileSource) {
		fs.intrinsics = intrinsics
	}
}

// NewFileSource returns a source over paths, in order.
func NewFileSource(paths []string, opts ...FileSourceOption) (*FileSource, error) {
	if len(paths) == 0 {
		return nil, errors.New("no frame files given")
	}
	fs := &FileSource{paths: append([]string(nil), paths...)}
	for _, opt := range opts {
		opt(fs)
	}
	return fs, nil
}

// Next reads the next file.
func (fs *FileSource) Next(ctx context.Context) (*rimage.DepthFrame, error) {
	if fs.limiter != nil {
		if err := fs.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	if fs.next >= len(fs.paths) {
		if !fs.loop {
			fs.mu.Unlock()
			return nil, io.EOF
		}
		fs.next = 0
	}
	path := fs.paths[fs.next]
	fs.next++
	fs.mu.Unlock()

	return rimage.ParseDepthFrame(path)
}

// Intrinsics returns the intrinsics given at construction, possibly nil.
func (fs *FileSource) Intrinsics() *transform.PinholeCameraIntrinsics {
	return fs.intrinsics
}

// Close is a no-op.
func (fs *FileSource) Close() error {
	return nil
}
