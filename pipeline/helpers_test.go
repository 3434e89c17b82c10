package pipeline

import (
	"context"
	"io"
	"sync"
	"testing"

	"go.viam.com/test"

	"github.com/satinavrobotics/depthnav/config"
	"github.com/satinavrobotics/depthnav/engine"
	"github.com/satinavrobotics/depthnav/logging"
	"github.com/satinavrobotics/depthnav/rimage"
)

// fakeSource hands out frames from a slice. wait[i], if set, is received from before frame i is
// returned. exhausted is closed when io.EOF is first returned.
type fakeSource struct {
	mu        sync.Mutex
	frames    []*rimage.DepthFrame
	wait      map[int]chan struct{}
	next      int
	err       error
	exhausted chan struct{}
	closed    bool
}

func newFakeSource(frames ...*rimage.DepthFrame) *fakeSource {
	return &fakeSource{frames: frames, wait: map[int]chan struct{}{}, exhausted: make(chan struct{})}
}

func (fs *fakeSource) Next(ctx context.Context) (*rimage.DepthFrame, error) {
	fs.mu.Lock()
	i := fs.next
	gate := fs.wait[i]
	fs.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if i >= len(fs.frames) {
		if fs.err != nil {
			return nil, fs.err
		}
		if fs.next == i {
			close(fs.exhausted)
			fs.next++
		}
		return nil, io.EOF
	}
	fs.next++
	return fs.frames[i], nil
}

func (fs *fakeSource) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closed = true
	return nil
}

func (fs *fakeSource) isClosed() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.closed
}

func emptyFrame() *rimage.DepthFrame {
	return rimage.NewFullConfidenceFrame(rimage.NewEmptyDepthMap(16, 12))
}

func newTestEngine(t *testing.T, cfg config.Config) *engine.Engine {
	t.Helper()
	eng, err := engine.New(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return eng
}
