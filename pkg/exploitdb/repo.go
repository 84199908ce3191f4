package exploitdb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/kvesta/lem/config"
)

// Repository is a git checkout kept in sync with its upstream.
type Repository struct {
	URL  string
	Path string
}

// Sync clones the repository on first use and pulls it afterwards. A
// repository without an upstream URL is only created locally.
func (r *Repository) Sync(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(r.Path, ".git")); err == nil {
		return r.pull(ctx)
	}

	if r.URL == "" {
		return os.MkdirAll(r.Path, 0o755)
	}

	log.Printf(config.Green("Cloning %s into %s"), r.URL, r.Path)
	_, err := git.PlainCloneContext(ctx, r.Path, false, &git.CloneOptions{
		URL:   r.URL,
		Depth: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", r.URL, err)
	}

	return nil
}

func (r *Repository) pull(ctx context.Context) error {
	repo, err := git.PlainOpen(r.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", r.Path, err)
	}

	if _, err := repo.Remote(git.DefaultRemoteName); err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			log.Printf("%s has no upstream, keeping local copy", r.Path)
			return nil
		}
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return err
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName: git.DefaultRemoteName,
		Depth:      1,
	})
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		log.Printf("%s is already up to date", r.Path)
		return nil
	case err != nil:
		return fmt.Errorf("failed to pull %s: %w", r.Path, err)
	}

	log.Printf(config.Green("Updated %s"), r.Path)
	return nil
}
