// Package gitsource keeps local checkouts of remote deck repositories.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/lifehub/studycore/internal/logger"
)

// IsRemote reports whether source names a git repository rather than a local path.
func IsRemote(source string) bool {
	if strings.HasSuffix(source, ".git") {
		return true
	}
	for _, scheme := range []string{"https://", "http://", "ssh://", "git://", "file://", "git@"} {
		if strings.HasPrefix(source, scheme) {
			return true
		}
	}
	return false
}

// LocalPath maps a repository URL to a checkout directory below baseDir, e.g.
// git@github.com:me/decks.git becomes baseDir/github.com/me/decks. URLs whose path
// would leave baseDir are rejected.
func LocalPath(baseDir, repoURL string) (string, error) {
	host, repoPath, err := splitURL(repoURL)
	if err != nil {
		return "", err
	}
	local := filepath.Join(baseDir, host, strings.TrimSuffix(repoPath, ".git"))
	rel, err := filepath.Rel(baseDir, local)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("git URL %s escapes %s", repoURL, baseDir)
	}
	return local, nil
}

func splitURL(repoURL string) (host, path string, err error) {
	u, perr := url.Parse(repoURL)
	if perr == nil && u.Scheme == "file" {
		return "file", u.Path, nil
	}
	if perr == nil && u.Host != "" {
		return u.Host, u.Path, nil
	}
	// scp-like syntax: user@host:path
	if at := strings.Index(repoURL, "@"); at >= 0 {
		if hostPath := strings.SplitN(repoURL[at+1:], ":", 2); len(hostPath) == 2 && hostPath[0] != "" {
			return hostPath[0], hostPath[1], nil
		}
	}
	return "", "", fmt.Errorf("could not parse git URL: %s", repoURL)
}

// Sync clones repoURL into localPath, or pulls when a checkout already exists there.
func Sync(ctx context.Context, repoURL, localPath string, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "gitsource", "url", repoURL, "path", localPath)

	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		log.Info("cloning repository")
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return fmt.Errorf("failed to create parent of %s: %w", localPath, err)
		}
		if _, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: repoURL}); err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		log.Info("clone successful")
	case err == nil:
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			log.Debug("already up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
		log.Info("pull successful")
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}
	return nil
}

// Revision returns the commit hash checked out at localPath.
func Revision(localPath string) (string, error) {
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repo at %s: %w", localPath, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD of %s: %w", localPath, err)
	}
	return head.Hash().String(), nil
}
