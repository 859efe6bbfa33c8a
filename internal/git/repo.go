// Package git creates the repository that receives painted commits and reads
// contribution history from GitHub.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Branch is the branch commits are pushed to.
const Branch = "main"

type Repo struct {
	Dir string
	run Runner
	log *zap.Logger
}

// Open returns a Repo for an existing directory.
func Open(dir string, run Runner, log *zap.Logger) *Repo {
	if run == nil {
		run = ExecRunner
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{Dir: dir, run: run, log: log}
}

// Init runs git init for name inside parent.
func Init(ctx context.Context, parent, name string, run Runner, log *zap.Logger) (*Repo, error) {
	if name == "" {
		return nil, errors.New("repository name is empty")
	}
	r := Open(filepath.Join(parent, name), run, log)
	if _, err := r.run(ctx, Command{Dir: parent, Name: "git", Args: []string{"init", "-b", Branch, name}}); err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	r.log.Info("repository initialised", zap.String("dir", r.Dir))
	return r, nil
}

// EmitEvent records one empty commit authored and committed at t.
func (r *Repo) EmitEvent(ctx context.Context, t time.Time) error {
	stamp := t.Format(time.RFC3339)
	_, err := r.run(ctx, Command{
		Dir:  r.Dir,
		Name: "git",
		Args: []string{"commit", "--allow-empty", "--allow-empty-message", "-m", "", "--no-verify", "--quiet"},
		Env:  []string{"GIT_AUTHOR_DATE=" + stamp, "GIT_COMMITTER_DATE=" + stamp},
	})
	return err
}

// Publish pushes the repository. With an empty remoteURL a private GitHub
// repository is created with the gh CLI. Publishing again after a failed
// attempt reuses the origin remote the first attempt left behind.
func (r *Repo) Publish(ctx context.Context, remoteURL string) error {
	hasOrigin, err := r.hasOrigin(ctx)
	if err != nil {
		return err
	}

	if remoteURL == "" {
		if hasOrigin {
			return r.push(ctx, "origin")
		}
		_, err := r.run(ctx, Command{
			Dir:  filepath.Dir(r.Dir),
			Name: "gh",
			Args: []string{"repo", "create", "--source=" + filepath.Base(r.Dir), "--private", "--push"},
		})
		if err != nil {
			return fmt.Errorf("create github repository: %w", err)
		}
		r.log.Info("published to new github repository", zap.String("dir", r.Dir))
		return nil
	}

	verb := "add"
	if hasOrigin {
		verb = "set-url"
	}
	if _, err := r.git(ctx, "remote", verb, "origin", remoteURL); err != nil {
		return fmt.Errorf("%s remote: %w", verb, err)
	}

	// A brand new remote has no branch to pull.
	heads, err := r.git(ctx, "ls-remote", "--heads", "origin", Branch)
	if err != nil {
		return fmt.Errorf("list remote branches: %w", err)
	}
	if len(strings.TrimSpace(string(heads))) > 0 {
		if _, err := r.git(ctx, "pull", "origin", Branch, "--rebase"); err != nil {
			return fmt.Errorf("pull remote: %w", err)
		}
	} else {
		r.log.Debug("remote has no branch yet", zap.String("remote", remoteURL))
	}
	return r.push(ctx, remoteURL)
}

func (r *Repo) push(ctx context.Context, remote string) error {
	if _, err := r.git(ctx, "push", "-u", "origin", Branch); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	r.log.Info("published", zap.String("dir", r.Dir), zap.String("remote", remote))
	return nil
}

func (r *Repo) hasOrigin(ctx context.Context) (bool, error) {
	out, err := r.git(ctx, "remote")
	if err != nil {
		return false, fmt.Errorf("list remotes: %w", err)
	}
	for _, name := range strings.Fields(string(out)) {
		if name == "origin" {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) git(ctx context.Context, args ...string) ([]byte, error) {
	return r.run(ctx, Command{Dir: r.Dir, Name: "git", Args: args})
}

// Remove deletes the local repository.
func (r *Repo) Remove() error {
	if r.Dir == "" || r.Dir == "/" {
		return fmt.Errorf("refusing to remove %q", r.Dir)
	}
	if err := os.RemoveAll(r.Dir); err != nil {
		return fmt.Errorf("remove repository: %w", err)
	}
	r.log.Info("local repository removed", zap.String("dir", r.Dir))
	return nil
}
