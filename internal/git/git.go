package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Client defines the interface for git operations on the local repo. All
// methods take a path parameter so commands work from any directory.
type Client interface {
	RepoRoot(path string) (string, error)
	CurrentBranch(path string) (string, error)
	RemoteURL(path, remote string) (string, error)
	Fetch(path, remote, ref string) error
	Checkout(path, rev string) error
	CherryPick(path, rev string) error
	Push(path, remote, refspec string) error
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealClient) RepoRoot(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--show-toplevel")
}

func (c *RealClient) CurrentBranch(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--abbrev-ref", "HEAD")
}

func (c *RealClient) RemoteURL(path, remote string) (string, error) {
	return gitCmd(path, "remote", "get-url", remote)
}

// Fetch pulls one ref (typically a refs/changes/... patchset ref) from the
// remote, leaving it on FETCH_HEAD.
func (c *RealClient) Fetch(path, remote, ref string) error {
	_, err := gitCmd(path, "fetch", remote, ref)
	return err
}

func (c *RealClient) Checkout(path, rev string) error {
	_, err := gitCmd(path, "checkout", rev)
	return err
}

func (c *RealClient) CherryPick(path, rev string) error {
	_, err := gitCmd(path, "cherry-pick", rev)
	return err
}

// Push pushes one refspec, e.g. HEAD:refs/for/master for a review upload.
func (c *RealClient) Push(path, remote, refspec string) error {
	_, err := gitCmd(path, "push", remote, refspec)
	return err
}
