package containerengine

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/containerd/errdefs"
)

// GracePeriod is how long Session.Cancel waits after SIGTERM before
// escalating to SIGKILL (§4.5).
const GracePeriod = 2 * time.Second

// Session wraps a running Container with the cooperative-cancellation
// contract the scheduler drives a build job through: a job checks
// Cancelled() between steps and after each exec, and the scheduler (or a
// SIGINT/SIGTERM from the CLI) calls Cancel once to tear the container
// down irrespective of what step is currently running.
type Session struct {
	*Container
	cancel chan struct{}
	once   bool
}

// NewSession wraps an already-started container.
func NewSession(c *Container) *Session {
	return &Session{Container: c, cancel: make(chan struct{})}
}

// Cancelled reports whether Cancel has been called. Job step execution
// polls this before starting each step so a cancellation takes effect
// between steps rather than only at job completion.
func (s *Session) Cancelled() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when Cancel is called, for use in
// select statements alongside a running Exec.
func (s *Session) Done() <-chan struct{} {
	return s.cancel
}

// Cancel signals cancellation and tears the container down: SIGTERM,
// then SIGKILL after GracePeriod if the task hasn't exited, then
// container removal. Safe to call more than once; only the first call
// acts.
func (s *Session) Cancel(ctx context.Context) {
	if s.alreadyCancelled() {
		return
	}
	close(s.cancel)
	s.teardown(ctx)
}

func (s *Session) alreadyCancelled() bool {
	select {
	case <-s.cancel:
		return true
	default:
		return false
	}
}

func (s *Session) teardown(ctx context.Context) {
	ctr, err := s.client.LoadContainer(ctx, s.id)
	if err != nil {
		return
	}

	task, err := ctr.Task(ctx, nil)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return
		}
	} else {
		exited := make(chan struct{})
		statusC, waitErr := task.Wait(ctx)
		if waitErr == nil {
			go func() {
				<-statusC
				close(exited)
			}()
		} else {
			close(exited)
		}

		task.Kill(ctx, syscall.SIGTERM)

		select {
		case <-exited:
		case <-time.After(GracePeriod):
			task.Kill(ctx, syscall.SIGKILL)
			<-exited
		}

		task.Delete(ctx)
	}

	s.Destroy(ctx)
}

// ErrCancelled is returned by step execution when it observes
// Session.Cancelled mid-run rather than from a container-level error.
var ErrCancelled = errors.New("build cancelled")
