package gerrit

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RemoteInfo is the connection config and project name derived from a git
// remote URL pointing at a Gerrit server.
type RemoteInfo struct {
	Conn    ConnConfig
	Project string
}

// ParseRemoteURL derives Gerrit connection parameters and the project name
// from a git remote URL. Supported shapes:
//
//	ssh://jane@review.example.org:29418/tools/grt.git
//	ssh://review.example.org/tools/grt
//	jane@review.example.org:tools/grt.git   (scp-like)
func ParseRemoteURL(remote string) (*RemoteInfo, error) {
	if strings.HasPrefix(remote, "ssh://") {
		u, err := url.Parse(remote)
		if err != nil {
			return nil, fmt.Errorf("cannot parse remote %q: %w", remote, err)
		}

		hostUser := u.Hostname()
		if u.User != nil && u.User.Username() != "" {
			hostUser = u.User.Username() + "@" + hostUser
		}

		port := 0
		if p := u.Port(); p != "" {
			port, err = strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("cannot parse port in remote %q: %w", remote, err)
			}
		}

		project := cleanProject(u.Path)
		if project == "" {
			return nil, fmt.Errorf("no project path in remote %q", remote)
		}
		return &RemoteInfo{Conn: ConnConfig{HostUser: hostUser, Port: port}, Project: project}, nil
	}

	if strings.Contains(remote, "://") {
		return nil, fmt.Errorf("remote %q does not look like a gerrit ssh remote", remote)
	}

	// scp-like: [user@]host:path
	if i := strings.Index(remote, ":"); i > 0 && !strings.Contains(remote[:i], "/") {
		project := cleanProject(remote[i+1:])
		if project == "" {
			return nil, fmt.Errorf("no project path in remote %q", remote)
		}
		return &RemoteInfo{Conn: ConnConfig{HostUser: remote[:i]}, Project: project}, nil
	}

	return nil, fmt.Errorf("remote %q does not look like a gerrit ssh remote", remote)
}

func cleanProject(path string) string {
	path = strings.TrimPrefix(path, "/")
	return strings.TrimSuffix(path, ".git")
}
