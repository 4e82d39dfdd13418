package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/melbahja/goph"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
)

// Session is one open connection to a node.
type Session interface {
	Run(ctx context.Context, command string) ([]byte, error)
	Upload(localPath, remotePath string) error
	Download(remotePath, localPath string) error
	Shell(ctx context.Context, in io.Reader, out, errOut io.Writer) error
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context, host string, id Identity) (Session, error)
}

// GophDialer dials nodes with github.com/melbahja/goph.
type GophDialer struct {
	Port    uint
	Timeout time.Duration
}

// NewGophDialer returns a dialer on port 22 with the given dial timeout.
func NewGophDialer(timeout time.Duration) *GophDialer {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &GophDialer{Port: defaultPort, Timeout: timeout}
}

// Dial implements Dialer.
func (d *GophDialer) Dial(ctx context.Context, host string, id Identity) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	signer, err := id.Signer()
	if err != nil {
		return nil, err
	}
	client, err := goph.NewConn(&goph.Config{
		User:     id.User,
		Addr:     host,
		Port:     d.Port,
		Auth:     goph.Auth{ssh.PublicKeys(signer)},
		Timeout:  d.Timeout,
		Callback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // ephemeral nodes
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s@%s: %w", id.User, host, err)
	}
	return &gophSession{client: client}, nil
}

type gophSession struct {
	client *goph.Client
}

func (s *gophSession) Run(ctx context.Context, command string) ([]byte, error) {
	return s.client.RunContext(ctx, command)
}

func (s *gophSession) Upload(localPath, remotePath string) error {
	return s.client.Upload(localPath, remotePath)
}

func (s *gophSession) Download(remotePath, localPath string) error {
	return s.client.Download(remotePath, localPath)
}

// Shell starts an interactive login shell. When in is a terminal it is
// switched to raw mode and a PTY of the same size is requested.
func (s *gophSession) Shell(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	session, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() { _ = session.Close() }()

	session.Stdin = in
	session.Stdout = out
	session.Stderr = errOut

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()

		width, height, err := term.GetSize(fd)
		if err != nil {
			width, height = 80, 24
		}
		modes := ssh.TerminalModes{
			ssh.ECHO:          1,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty(termType(), height, width, modes); err != nil {
			return fmt.Errorf("failed to request pty: %w", err)
		}
	}

	if err := session.Shell(); err != nil {
		return fmt.Errorf("failed to start shell: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()
	select {
	case <-ctx.Done():
		_ = session.Close()
		return ctx.Err()
	case err := <-done:
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("shell exited with status %d", exitErr.ExitStatus())
		}
		return err
	}
}

func (s *gophSession) Close() error {
	return s.client.Close()
}

func termType() string {
	if t := os.Getenv("TERM"); t != "" {
		return t
	}
	return "xterm"
}
