// Package localreview manages local working-tree review sessions: git
// diff capture, staleness detection, and session rekeying, per §4.5.
package localreview

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// gitTimeout bounds every git invocation per §4.5's "≈2 seconds" staleness
// bound - a hung git process can never block the caller longer than this.
const gitTimeout = 2 * time.Second

func runGit(ctx context.Context, repoPath string, args ...string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(timeoutCtx, "git", fullArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %v: %w", strings.Join(args, " "), gitTimeout, err)
		}
		return "", fmt.Errorf("git %s failed: %w (stderr: %s)", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

// showToplevel discovers the git root enclosing path.
func showToplevel(ctx context.Context, path string) (string, error) {
	out, err := runGit(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func headSHA(ctx context.Context, repoPath string) (string, error) {
	out, err := runGit(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func currentBranch(ctx context.Context, repoPath string) (string, error) {
	out, err := runGit(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// originOwnerName best-effort-parses "owner/name" out of the origin
// remote URL. Returns "" if there is no origin or its URL doesn't parse.
func originOwnerName(ctx context.Context, repoPath string) string {
	out, err := runGit(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return parseOwnerName(strings.TrimSpace(out))
}

func parseOwnerName(remoteURL string) string {
	url := strings.TrimSuffix(remoteURL, ".git")

	if idx := strings.Index(url, "://"); idx >= 0 {
		url = url[idx+3:]
		if at := strings.Index(url, "@"); at >= 0 {
			url = url[at+1:]
		}
	} else if at := strings.Index(url, "@"); at >= 0 {
		// scp-like syntax: git@host:owner/name
		url = url[at+1:]
		url = strings.Replace(url, ":", "/", 1)
	} else {
		return ""
	}

	if slash := strings.Index(url, "/"); slash >= 0 {
		url = url[slash+1:]
	}

	segments := strings.Split(strings.Trim(url, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	owner := segments[len(segments)-2]
	name := segments[len(segments)-1]
	if owner == "" || name == "" {
		return ""
	}
	return owner + "/" + name
}

func trackedDiff(ctx context.Context, repoPath string) (string, error) {
	return runGit(ctx, repoPath, "diff", "HEAD")
}

func untrackedFiles(ctx context.Context, repoPath string) ([]string, error) {
	out, err := runGit(ctx, repoPath, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "??") {
			continue
		}
		files = append(files, strings.TrimSpace(strings.TrimPrefix(line, "??")))
	}
	return files, nil
}
