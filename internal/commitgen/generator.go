package commitgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dshills/smartcommits/internal/cache"
	"github.com/dshills/smartcommits/internal/config"
	"github.com/dshills/smartcommits/internal/gitctx"
	"github.com/dshills/smartcommits/internal/logging"
	"github.com/dshills/smartcommits/internal/providers"
	"github.com/dshills/smartcommits/internal/redact"
	"github.com/dshills/smartcommits/internal/secerr"
	"github.com/dshills/smartcommits/internal/secexec"
	"github.com/dshills/smartcommits/internal/validate"
)

// ErrNoChanges is returned when nothing is staged, or everything staged is
// excluded.
var ErrNoChanges = errors.New("no staged changes")

// Generation parameters sent with every request.
const (
	contextLines = 3
	maxTokens    = 100
	temperature  = 0.3
)

// DiffSource supplies the staged diff.
type DiffSource interface {
	StagedDiff(ctx context.Context, opts gitctx.DiffOptions) (gitctx.DiffResult, error)
}

// Generator produces commit messages for the staged changes of one
// repository.
type Generator struct {
	Config   config.Config
	Diffs    DiffSource
	Provider providers.Generator
	// Cache is optional.
	Cache *cache.Cache
	// DebugDir receives request/response dumps when debug.save_requests
	// is enabled.
	DebugDir string
}

// Result is a generated message and how it was obtained.
type Result struct {
	Message    string
	Files      []string
	Excluded   []string
	Truncated  bool
	Cached     bool
	TokensUsed int
	Elapsed    time.Duration
}

// Generate runs the generation pipeline.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	start := time.Now()
	cfg := g.Config

	diff, err := g.Diffs.StagedDiff(ctx, gitctx.DiffOptions{
		ContextLines: contextLines,
		MaxDiffBytes: cfg.Processing.MaxDiffSize,
		Exclude:      cfg.Processing.ExcludePatterns,
	})
	if err != nil {
		return Result{}, fmt.Errorf("reading staged changes: %w", err)
	}
	if diff.Empty() {
		return Result{}, ErrNoChanges
	}

	// Redact secrets from diff before sending to provider
	redacted := redact.Secrets(diff.Diff)

	res := Result{Files: diff.Files, Excluded: diff.Excluded, Truncated: diff.Truncated}
	key := cache.BuildKey(g.Provider.Name(), cfg.Model(), redacted)
	if g.Cache != nil {
		if msg, ok := g.Cache.Get(key); ok {
			res.Message = msg
			res.Cached = true
			res.Elapsed = time.Since(start)
			return res, nil
		}
	}

	req := providers.Request{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   BuildPrompt(redacted, diff.Files, cfg),
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	}
	resp, err := g.Provider.Generate(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("provider %s: %w", g.Provider.Name(), err)
	}
	g.saveRequest(req, resp)

	msg := Clean(resp.Content, cfg.Commit.MaxChars)
	if msg == "" {
		return Result{}, providers.ErrEmptyResponse
	}
	if cfg.Security.ValidateInputs && !validate.CommitMessage(msg) {
		logging.Debugf("rejected generated message: %q", msg)
		return Result{}, secerr.New(secerr.CategoryInvalidInput, "generated commit message failed validation")
	}

	if g.Cache != nil {
		if err := g.Cache.Put(key, g.Provider.Name(), msg); err != nil {
			logging.Warn().Err(err).Msg("could not cache commit message")
		}
	}

	res.Message = msg
	res.TokensUsed = resp.TokensUsed
	res.Elapsed = time.Since(start)
	logging.Debug().
		Str("provider", g.Provider.Name()).
		Int("files", len(res.Files)).
		Int("tokens", res.TokensUsed).
		Dur("elapsed", res.Elapsed).
		Msg("commit message generated")
	return res, nil
}

type debugDump struct {
	Time     time.Time          `json:"time"`
	Provider string             `json:"provider"`
	Request  providers.Request  `json:"request"`
	Response providers.Response `json:"response"`
}

// saveRequest writes a redacted dump of the exchange when enabled. Failures
// are logged and otherwise ignored.
func (g *Generator) saveRequest(req providers.Request, resp providers.Response) {
	if !g.Config.Debug.SaveRequests || g.DebugDir == "" {
		return
	}
	now := time.Now().UTC()
	data, err := json.MarshalIndent(debugDump{
		Time:     now,
		Provider: g.Provider.Name(),
		Request:  req,
		Response: resp,
	}, "", "  ")
	if err != nil {
		logging.Warn().Err(err).Msg("could not encode request dump")
		return
	}
	data = []byte(redact.Message(redact.Secrets(string(data))))
	path := filepath.Join(g.DebugDir, "request-"+now.Format("20060102T150405.000000000")+".json")
	if err := secexec.WriteFile(path, data, secexec.DefaultFileMode); err != nil {
		logging.Warn().Err(err).Msg("could not save request dump")
	}
}
