package gerrit

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultPort is Gerrit's standard SSH listen port.
const DefaultPort = 29418

// ErrNotConfigured is returned before any subprocess is spawned when no SSH
// host has been configured or derived from a git remote.
var ErrNotConfigured = errors.New("gerrit ssh host not configured (set ssh.host or run inside a repo with a gerrit remote)")

// ExecError wraps a failed ssh invocation, preserving the captured stderr
// from the remote side.
type ExecError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", e.Cmd, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ConnConfig holds the SSH connection parameters for one Gerrit server.
// It is constructed once per invocation and never mutated.
type ConnConfig struct {
	HostUser string // "review.example.org" or "jane@review.example.org"
	Port     int    // 0 means DefaultPort
}

func (c ConnConfig) port() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

// ReviewInput carries the scores and message for one `gerrit review` call.
// Zero-valued label fields are omitted from the command line, so a bare
// message post is `ReviewInput{Message: "..."}`.
type ReviewInput struct {
	CodeReview *int
	Verified   *int
	Message    string
}

// Client defines the Gerrit SSH operations the CLI needs. All methods issue
// exactly one remote command; there is no retry and no connection reuse
// beyond what ssh itself provides.
type Client interface {
	Query(ctx context.Context, project, filter, extra string) ([]byte, error)
	Review(ctx context.Context, project, revision string, in ReviewInput) error
	Submit(ctx context.Context, project, revision string) error
	Abandon(ctx context.Context, project, revision, message string) error
	Publish(ctx context.Context, project, revision string) error
	DeleteDraft(ctx context.Context, project, revision string) error
	SetReviewers(ctx context.Context, project, changeID string, add []string) error
	ListProjects(ctx context.Context) ([]string, error)
}

// SSHClient implements Client by shelling out to the local ssh binary.
type SSHClient struct {
	Conn ConnConfig
}

// NewSSHClient returns a client bound to the given connection config.
func NewSSHClient(conn ConnConfig) *SSHClient {
	return &SSHClient{Conn: conn}
}

// run executes one `ssh -x -p <port> <hostuser> gerrit ...` command and
// returns its stdout.
func (c *SSHClient) run(ctx context.Context, remoteArgs ...string) ([]byte, error) {
	if c.Conn.HostUser == "" {
		return nil, ErrNotConfigured
	}

	args := append([]string{"-x", "-p", strconv.Itoa(c.Conn.port()), c.Conn.HostUser}, remoteArgs...)
	out, err := exec.CommandContext(ctx, "ssh", args...).Output()
	if err != nil {
		display := "ssh " + c.Conn.HostUser + " " + strings.Join(remoteArgs, " ")
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, &ExecError{Cmd: display, Stderr: strings.TrimSpace(string(exitErr.Stderr)), Err: err}
		}
		return nil, &ExecError{Cmd: display, Err: err}
	}
	return out, nil
}

// QueryArgs builds the remote argument vector for one query. Split out so
// command construction is testable without a server.
func QueryArgs(project, filter, extra string) []string {
	args := []string{"gerrit", "query", "--format=JSON", "--current-patch-set"}
	if extra != "" {
		args = append(args, strings.Fields(extra)...)
	}
	args = append(args, "project:"+project)
	if filter == "" {
		filter = "status:open"
	}
	args = append(args, strings.Fields(filter)...)
	return args
}

// Query runs one gerrit query for the project and returns the raw
// newline-delimited JSON stream.
func (c *SSHClient) Query(ctx context.Context, project, filter, extra string) ([]byte, error) {
	return c.run(ctx, QueryArgs(project, filter, extra)...)
}

// ReviewArgs builds the remote argument vector for one `gerrit review`
// invocation targeting a patchset revision.
func ReviewArgs(project, revision string, in ReviewInput) []string {
	args := []string{"gerrit", "review", "--project", project}
	if in.CodeReview != nil {
		args = append(args, "--code-review", strconv.Itoa(*in.CodeReview))
	}
	if in.Verified != nil {
		args = append(args, "--verified", strconv.Itoa(*in.Verified))
	}
	if in.Message != "" {
		args = append(args, "--message", shellQuote(in.Message))
	}
	return append(args, revision)
}

func (c *SSHClient) Review(ctx context.Context, project, revision string, in ReviewInput) error {
	_, err := c.run(ctx, ReviewArgs(project, revision, in)...)
	return err
}

func (c *SSHClient) Submit(ctx context.Context, project, revision string) error {
	_, err := c.run(ctx, "gerrit", "review", "--project", project, "--submit", revision)
	return err
}

func (c *SSHClient) Abandon(ctx context.Context, project, revision, message string) error {
	args := []string{"gerrit", "review", "--project", project, "--abandon"}
	if message != "" {
		args = append(args, "--message", shellQuote(message))
	}
	args = append(args, revision)
	_, err := c.run(ctx, args...)
	return err
}

func (c *SSHClient) Publish(ctx context.Context, project, revision string) error {
	_, err := c.run(ctx, "gerrit", "review", "--project", project, "--publish", revision)
	return err
}

func (c *SSHClient) DeleteDraft(ctx context.Context, project, revision string) error {
	_, err := c.run(ctx, "gerrit", "review", "--project", project, "--delete", revision)
	return err
}

func (c *SSHClient) SetReviewers(ctx context.Context, project, changeID string, add []string) error {
	args := []string{"gerrit", "set-reviewers", "--project", project}
	for _, r := range add {
		args = append(args, "--add", r)
	}
	args = append(args, changeID)
	_, err := c.run(ctx, args...)
	return err
}

func (c *SSHClient) ListProjects(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "gerrit", "ls-projects", "--format", "JSON", "--description")
	if err != nil {
		return nil, err
	}
	return ParseProjectList(out)
}

// shellQuote wraps s in single quotes for the remote shell, since ssh joins
// its argument vector with spaces before remote execution.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
