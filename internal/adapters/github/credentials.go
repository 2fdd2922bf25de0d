package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/evanschultz/minik/internal/app"
)

// TokenSource supplies a bearer token for API calls.
type TokenSource interface {
	Token(context.Context) (string, error)
}

// Invalidator drops a cached token after the API rejects it.
type Invalidator interface {
	Invalidate()
}

// CommandRunner runs one external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DefaultGHPaths lists the gh locations probed before falling back to PATH.
var DefaultGHPaths = []string{
	"/opt/homebrew/bin/gh",
	"/usr/local/bin/gh",
	"gh",
}

// GHCLI reads the token from the GitHub CLI credential helper.
type GHCLI struct {
	paths []string
	run   CommandRunner

	mu    sync.Mutex
	path  string
	token string
}

// NewGHCLI constructs a token source. An explicit path skips discovery.
func NewGHCLI(explicitPath string, run CommandRunner) *GHCLI {
	paths := DefaultGHPaths
	if p := strings.TrimSpace(explicitPath); p != "" {
		paths = []string{p}
	}
	if run == nil {
		run = execRunner
	}
	return &GHCLI{paths: paths, run: run}
}

// Token returns the cached token or asks gh for one.
func (g *GHCLI) Token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token != "" {
		return g.token, nil
	}
	path, err := g.locate(ctx)
	if err != nil {
		return "", err
	}
	out, err := g.run(ctx, path, "auth", "token")
	if err != nil {
		return "", fmt.Errorf("%w: gh auth token failed, run 'gh auth login': %v", app.ErrAuthRequired, err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", fmt.Errorf("%w: gh returned an empty token", app.ErrAuthRequired)
	}
	g.token = token
	return token, nil
}

// Invalidate drops the cached token so the next call re-reads it.
func (g *GHCLI) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}

// Path returns the resolved gh binary, if discovery already ran.
func (g *GHCLI) Path() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.path
}

// locate finds the first gh binary that answers --version.
func (g *GHCLI) locate(ctx context.Context) (string, error) {
	if g.path != "" {
		return g.path, nil
	}
	for _, candidate := range g.paths {
		if _, err := g.run(ctx, candidate, "--version"); err == nil {
			g.path = candidate
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: GitHub CLI (gh) not found; install it and run 'gh auth login'", app.ErrAuthRequired)
}

// EnvToken reads a token from an environment variable.
type EnvToken struct {
	Name   string
	Lookup func(string) (string, bool)
}

// Token returns the variable's value.
func (e EnvToken) Token(context.Context) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(e.Name)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s is not set", app.ErrAuthRequired, e.Name)
	}
	return value, nil
}

// ChainTokens tries each source in order and returns the first token.
type ChainTokens []TokenSource

// Token returns the first successful token.
func (c ChainTokens) Token(ctx context.Context) (string, error) {
	var errs []error
	for _, source := range c {
		token, err := source.Token(ctx)
		if err == nil {
			return token, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", app.ErrAuthRequired
	}
	return "", errors.Join(errs...)
}

// Invalidate forwards to every source that caches.
func (c ChainTokens) Invalidate() {
	for _, source := range c {
		if inv, ok := source.(Invalidator); ok {
			inv.Invalidate()
		}
	}
}

// execRunner runs the command with os/exec.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
