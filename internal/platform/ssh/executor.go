package ssh

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/hdpctl/internal/metrics"
	"github.com/imamik/hdpctl/internal/util/retry"
)

const (
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries    = 2
	defaultRetryDelay = 30 * time.Second
)

// Result describes one successful remote operation.
type Result struct {
	Host     string
	Output   string
	Attempts int
}

// Retries is the number of failed attempts before the successful one.
func (r Result) Retries() int {
	if r.Attempts == 0 {
		return 0
	}
	return r.Attempts - 1
}

// RemoteExecutionError is returned once every attempt has failed.
type RemoteExecutionError struct {
	Host     string
	Command  string
	Attempts int
	Err      error
}

func (e *RemoteExecutionError) Error() string {
	return fmt.Sprintf("remote command on %s failed after %d attempts: %s: %v", e.Host, e.Attempts, e.Command, e.Err)
}

func (e *RemoteExecutionError) Unwrap() error {
	return e.Err
}

// Executor runs remote operations with a fixed-delay retry.
type Executor struct {
	dialer     Dialer
	retries    int
	retryDelay time.Duration
	recorder   *metrics.Recorder
	log        logr.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithDialer replaces the connection factory.
func WithDialer(d Dialer) Option {
	return func(e *Executor) { e.dialer = d }
}

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int) Option {
	return func(e *Executor) { e.retries = n }
}

// WithRetryDelay sets the fixed delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Executor) { e.retryDelay = d }
}

// WithRecorder records attempt counts and results.
func WithRecorder(r *metrics.Recorder) Option {
	return func(e *Executor) { e.recorder = r }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(log logr.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// NewExecutor creates an Executor. Without WithDialer it dials with goph.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		retries:    DefaultRetries,
		retryDelay: defaultRetryDelay,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dialer == nil {
		e.dialer = NewGophDialer(defaultDialTimeout)
	}
	return e
}

// Run executes command on host as id and returns its combined output.
func (e *Executor) Run(ctx context.Context, host string, id Identity, command string) (Result, error) {
	return e.do(ctx, host, id, command, func(s Session) (string, error) {
		out, err := s.Run(ctx, command)
		if err != nil {
			return string(out), fmt.Errorf("%w: %s", err, out)
		}
		return string(out), nil
	})
}

// CopyTo uploads localPath to remotePath on host.
func (e *Executor) CopyTo(ctx context.Context, host string, id Identity, localPath, remotePath string) (Result, error) {
	desc := fmt.Sprintf("copy %s to %s", localPath, remotePath)
	return e.do(ctx, host, id, desc, func(s Session) (string, error) {
		return "", s.Upload(localPath, remotePath)
	})
}

// CopyFrom downloads remotePath on host to localPath.
func (e *Executor) CopyFrom(ctx context.Context, host string, id Identity, remotePath, localPath string) (Result, error) {
	desc := fmt.Sprintf("copy %s to %s", remotePath, localPath)
	return e.do(ctx, host, id, desc, func(s Session) (string, error) {
		return "", s.Download(remotePath, localPath)
	})
}

// Shell opens an interactive shell on host. It is not retried.
func (e *Executor) Shell(ctx context.Context, host string, id Identity, in io.Reader, out, errOut io.Writer) error {
	session, err := e.dialer.Dial(ctx, host, id)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()
	return session.Shell(ctx, in, out, errOut)
}

func (e *Executor) do(ctx context.Context, host string, id Identity, command string, op func(Session) (string, error)) (Result, error) {
	res := Result{Host: host}

	err := retry.WithFixedDelay(ctx, func() error {
		res.Attempts++
		session, err := e.dialer.Dial(ctx, host, id)
		if err != nil {
			return err
		}
		defer func() { _ = session.Close() }()

		out, err := op(session)
		res.Output = out
		return err
	}, e.retries, e.retryDelay, retry.WithNotify(func(attempt int, err error) {
		e.log.Info("remote command failed, retrying",
			"host", host, "attempt", attempt, "delay", e.retryDelay.String(), "error", err.Error())
	}))

	e.recorder.ObserveRemoteCommand(res.Attempts, err)
	if err != nil {
		return res, &RemoteExecutionError{Host: host, Command: command, Attempts: res.Attempts, Err: err}
	}
	return res, nil
}
