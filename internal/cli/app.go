package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dshills/smartcommits/internal/cache"
	"github.com/dshills/smartcommits/internal/commitgen"
	"github.com/dshills/smartcommits/internal/config"
	"github.com/dshills/smartcommits/internal/gitctx"
	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/providers"
	"github.com/dshills/smartcommits/internal/secexec"
)

const gitTimeout = 30 * time.Second

// session is a loaded configuration bound to its repository.
type session struct {
	loaded *config.Loaded
	repo   *gitctx.Repo
	gitDir string
}

func openSession(ctx context.Context) (*session, error) {
	loaded, err := config.Loader{}.Load()
	if err != nil {
		return nil, err
	}
	if loaded.Config.Debug.Enabled {
		logging.SetLevel(logging.DebugLevel)
	}
	logging.Debug().Stringer("config", loaded).Msg("session opened")

	repo := gitctx.New(loaded.Root, &secexec.Runner{Timeout: gitTimeout})
	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		return nil, err
	}
	return &session{loaded: loaded, repo: repo, gitDir: gitDir}, nil
}

// gitDir resolves the git directory of the working directory without
// loading the configuration.
func gitDir(ctx context.Context) (string, error) {
	root, err := config.FindRoot("")
	if err != nil {
		return "", err
	}
	return gitctx.New(root, &secexec.Runner{Timeout: gitTimeout}).GitDir(ctx)
}

func (s *session) provider() (providers.Generator, error) {
	cfg := s.loaded.Config
	key, err := s.loaded.APIKey()
	if err != nil {
		return nil, &authError{err: err}
	}
	return providers.New(cfg.API.Provider, key, providers.OptionsFrom(cfg))
}

func (s *session) generator(noCache bool) (*commitgen.Generator, error) {
	p, err := s.provider()
	if err != nil {
		return nil, err
	}
	c, err := cache.New(!noCache, cache.Dir(s.gitDir), cache.DefaultTTL)
	if err != nil {
		return nil, err
	}
	g := &commitgen.Generator{
		Config:   s.loaded.Config,
		Diffs:    s.repo,
		Provider: p,
		Cache:    c,
	}
	if s.loaded.Config.Debug.SaveRequests {
		g.DebugDir = filepath.Join(s.gitDir, "smartcommits", "debug")
	}
	return g, nil
}
