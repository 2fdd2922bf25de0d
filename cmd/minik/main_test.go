package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/config"
	"github.com/evanschultz/minik/internal/domain"
	"github.com/evanschultz/minik/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("MINIK_DEV_MODE", "false")
	_ = os.Unsetenv("MINIK_CONFIG")
	_ = os.Unsetenv("MINIK_DB_PATH")
	_ = os.Unsetenv("MINIK_APP_NAME")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// Send drops messages; the fake never runs an event loop.
func (f fakeProgram) Send(tea.Msg) {}

// recordingProgram captures messages sent to the program.
type recordingProgram struct {
	sent []tea.Msg
}

// Run runs the requested command flow.
func (r *recordingProgram) Run() (tea.Model, error) {
	return nil, nil
}

// Send records msg.
func (r *recordingProgram) Send(msg tea.Msg) {
	r.sent = append(r.sent, msg)
}

// fakeGitHub serves one fixture project.
type fakeGitHub struct {
	viewer string
}

// Viewer returns the fixture login.
func (f fakeGitHub) Viewer(context.Context) (string, error) {
	return f.viewer, nil
}

// ListOrganizations returns one organization.
func (fakeGitHub) ListOrganizations(context.Context) ([]domain.Organization, error) {
	return []domain.Organization{{Login: "acme", Name: "Acme Inc"}}, nil
}

// ListOrgProjects returns one project for acme.
func (fakeGitHub) ListOrgProjects(_ context.Context, org string) ([]domain.ProjectRef, error) {
	if org != "acme" {
		return nil, nil
	}
	return []domain.ProjectRef{{ID: "P1", Title: "Roadmap", Number: 7, Owner: "acme"}}, nil
}

// ListViewerProjects returns no user projects.
func (fakeGitHub) ListViewerProjects(context.Context) ([]domain.ProjectRef, error) {
	return nil, nil
}

// ProjectSnapshot returns the fixture board.
func (fakeGitHub) ProjectSnapshot(_ context.Context, projectID string) (domain.Snapshot, error) {
	if projectID != "P1" {
		return domain.Snapshot{}, app.ErrNotFound
	}
	return domain.Snapshot{
		Project:       domain.Project{ID: "P1", Title: "Roadmap", Number: 7},
		StatusFieldID: "F1",
		Columns: []domain.Column{
			{ID: "todo", Name: "Todo", ItemCount: 2, Position: 0},
			{ID: "done", Name: "Done", ItemCount: 0, Position: 1},
		},
		Items: []domain.Item{
			{ID: "I1", Title: "Fix login", ColumnID: "todo", Assignees: []string{"octo"}},
			{ID: "I2", Title: "Write docs", ColumnID: "todo", Assignees: []string{"mona"}},
		},
	}, nil
}

// UpdateItemStatus accepts every move.
func (fakeGitHub) UpdateItemStatus(context.Context, string, string, string, string) error {
	return nil
}

// useFakes swaps the program and GitHub seams for one test.
func useFakes(t *testing.T, prog program) {
	t.Helper()
	origProgram := programFactory
	origGitHub := githubFactory
	t.Cleanup(func() {
		programFactory = origProgram
		githubFactory = origGitHub
	})
	programFactory = func(tea.Model) program { return prog }
	githubFactory = func(config.Config, *runtimeLogger) app.GitHub { return fakeGitHub{viewer: "octo"} }
}

// isolatedArgs prefixes args with temp config and db paths.
func isolatedArgs(t *testing.T, args ...string) []string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	base := []string{
		"--config", filepath.Join(dir, "config.toml"),
		"--db", filepath.Join(dir, "minik.db"),
	}
	return append(base, args...)
}

// TestRunPathsCommand verifies resolved paths are printed.
func TestRunPathsCommand(t *testing.T) {
	var out bytes.Buffer
	args := isolatedArgs(t, "--app", "minik-test", "paths")
	if err := run(context.Background(), args, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"app: minik-test", "dev_mode: false", "config:", "db:", "log_dir:"} {
		if !strings.Contains(got, want) {
			t.Fatalf("paths output missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "minik.db") {
		t.Fatalf("expected db override in output:\n%s", got)
	}
}

// TestRunTUIUsesProgramFactory verifies the default command runs the board program.
func TestRunTUIUsesProgramFactory(t *testing.T) {
	var captured tea.Model
	useFakes(t, fakeProgram{})
	programFactory = func(m tea.Model) program {
		captured = m
		return fakeProgram{}
	}

	if err := run(context.Background(), isolatedArgs(t), &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := captured.(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", captured)
	}
}

// TestRunTUIPropagatesProgramError verifies program failures surface from run.
func TestRunTUIPropagatesProgramError(t *testing.T) {
	useFakes(t, fakeProgram{runErr: errors.New("boom")})

	err := run(context.Background(), isolatedArgs(t), &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunTUIMutesConsoleLogging verifies startup logs stay off the terminal once the board runs.
func TestRunTUIMutesConsoleLogging(t *testing.T) {
	useFakes(t, fakeProgram{})
	var stderr bytes.Buffer

	if err := run(context.Background(), isolatedArgs(t), &bytes.Buffer{}, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if strings.Contains(stderr.String(), "starting tui program loop") {
		t.Fatalf("expected muted console while tui runs, got:\n%s", stderr.String())
	}
}

// TestRawSenderRoutesThroughProgram verifies window sequences are sent as raw program output.
func TestRawSenderRoutesThroughProgram(t *testing.T) {
	prog := &recordingProgram{}
	rawSender(prog)("\x1b[8;30;120t")
	if len(prog.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(prog.sent))
	}
	raw, ok := prog.sent[0].(tea.RawMsg)
	if !ok || raw.Msg != "\x1b[8;30;120t" {
		t.Fatalf("expected raw resize sequence, got %#v", prog.sent[0])
	}
}

// TestRunInitWritesConfigOnce verifies init writes defaults and refuses to overwrite.
func TestRunInitWritesConfigOnce(t *testing.T) {
	args := isolatedArgs(t, "init")
	var out bytes.Buffer
	if err := run(context.Background(), args, &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(init) error = %v", err)
	}
	if !strings.Contains(out.String(), "wrote ") {
		t.Fatalf("unexpected init output %q", out.String())
	}
	configPath := args[1]
	cfg, err := config.Load(configPath, config.Default("/tmp/unused.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PollInterval() != 5*time.Minute {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval())
	}

	if err := run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected second init to fail")
	}
}

// TestRunWhoamiAndProjects verifies the read-only GitHub commands.
func TestRunWhoamiAndProjects(t *testing.T) {
	useFakes(t, fakeProgram{})

	var out bytes.Buffer
	if err := run(context.Background(), isolatedArgs(t, "whoami"), &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(whoami) error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "octo" {
		t.Fatalf("whoami output = %q, want octo", out.String())
	}

	out.Reset()
	if err := run(context.Background(), isolatedArgs(t, "projects"), &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(projects) error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Acme Inc") || !strings.Contains(got, "#7") || !strings.Contains(got, "Roadmap") {
		t.Fatalf("unexpected projects output:\n%s", got)
	}
}

// TestRunBoardCommand verifies one-shot strip and board renders.
func TestRunBoardCommand(t *testing.T) {
	useFakes(t, fakeProgram{})

	var out bytes.Buffer
	if err := run(context.Background(), isolatedArgs(t, "board", "P1"), &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(board) error = %v", err)
	}
	strip := ansi.Strip(out.String())
	if !strings.Contains(strip, "Roadmap") || !strings.Contains(strip, "Todo 2") {
		t.Fatalf("unexpected strip output:\n%s", strip)
	}

	out.Reset()
	if err := run(context.Background(), isolatedArgs(t, "board", "P1", "--expanded", "--mine"), &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(board --expanded) error = %v", err)
	}
	board := ansi.Strip(out.String())
	if !strings.Contains(board, "Fix login") || strings.Contains(board, "Write docs") {
		t.Fatalf("expected only the viewer's card:\n%s", board)
	}
}

// TestRunBoardCommandWithoutProject verifies a missing selection is reported.
func TestRunBoardCommandWithoutProject(t *testing.T) {
	useFakes(t, fakeProgram{})

	err := run(context.Background(), isolatedArgs(t, "board"), &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, app.ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}

// TestRunRejectsUnknownCommand verifies unknown subcommands fail.
func TestRunRejectsUnknownCommand(t *testing.T) {
	useFakes(t, fakeProgram{})
	if err := run(context.Background(), isolatedArgs(t, "bogus"), &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected unknown command error")
	}
}

// TestRuntimeLoggerDevFileSink verifies dev mode logs to a logfmt file even when console is muted.
func TestRuntimeLoggerDevFileSink(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	now := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	logger, err := newRuntimeLogger(&console, "minik", true, config.LoggingConfig{
		Level:   "debug",
		DevFile: config.DevFileLogConfig{Enabled: true, Dir: dir},
	}, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	wantPath := filepath.Join(dir, "minik-20260224.log")
	if logger.DevLogPath() != wantPath {
		t.Fatalf("DevLogPath() = %q, want %q", logger.DevLogPath(), wantPath)
	}

	logger.SetConsoleEnabled(false)
	logger.Info("board moved", "item", "I1")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if console.Len() != 0 {
		t.Fatalf("expected muted console, got %q", console.String())
	}
	content, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "board moved") || !strings.Contains(string(content), "item=I1") {
		t.Fatalf("unexpected log file content %q", string(content))
	}
}

// TestRunAcceptsPaddedLoggingLevel verifies config levels are normalized before the logger parses them.
func TestRunAcceptsPaddedLoggingLevel(t *testing.T) {
	useFakes(t, fakeProgram{})
	args := isolatedArgs(t, "whoami")
	configPath := args[1]
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \" Warn \"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	var stdout bytes.Buffer
	if err := run(context.Background(), args, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "octo") {
		t.Fatalf("expected viewer login in output, got %q", stdout.String())
	}
}

// TestRuntimeLoggerRejectsBadLevel verifies invalid levels fail fast.
func TestRuntimeLoggerRejectsBadLevel(t *testing.T) {
	if _, err := newRuntimeLogger(&bytes.Buffer{}, "minik", false, config.LoggingConfig{Level: "loud"}, nil); err == nil {
		t.Fatalf("expected level parse error")
	}
}

// TestRuntimeLoggerConsoleOnly verifies non-dev runs skip the file sink.
func TestRuntimeLoggerConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, err := newRuntimeLogger(&console, "minik", false, config.LoggingConfig{
		Level:   "info",
		DevFile: config.DevFileLogConfig{Enabled: true, Dir: t.TempDir()},
	}, nil)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log path, got %q", logger.DevLogPath())
	}
	logger.Debug("hidden")
	logger.Warn("visible")
	if strings.Contains(console.String(), "hidden") || !strings.Contains(console.String(), "visible") {
		t.Fatalf("unexpected console output %q", console.String())
	}
}

// TestSanitizeLogFileStem verifies file-name normalization.
func TestSanitizeLogFileStem(t *testing.T) {
	cases := map[string]string{
		"":           "minik",
		" / ":        "minik",
		"minik dev":  "minik-dev",
		"team/minik": "team-minik",
		"c:\\minik":  "c--minik",
	}
	for in, want := range cases {
		if got := sanitizeLogFileStem(in); got != want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestWorkspaceRootFrom verifies marker discovery walks up to go.mod.
func TestWorkspaceRootFrom(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); got != root {
		t.Fatalf("workspaceRootFrom() = %q, want %q", got, root)
	}
}

// TestParseBoolEnv verifies boolean env parsing.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("MINIK_TEST_BOOL", "true")
	if value, ok := parseBoolEnv("MINIK_TEST_BOOL"); !ok || !value {
		t.Fatalf("parseBoolEnv(true) = %t, %t", value, ok)
	}
	t.Setenv("MINIK_TEST_BOOL", "nope")
	if _, ok := parseBoolEnv("MINIK_TEST_BOOL"); ok {
		t.Fatalf("expected invalid value to be ignored")
	}
	if _, ok := parseBoolEnv("MINIK_TEST_UNSET"); ok {
		t.Fatalf("expected unset value to be ignored")
	}
}

// TestToTUIRuntimeConfig verifies config values reach the board runtime.
func TestToTUIRuntimeConfig(t *testing.T) {
	cfg := config.Default("/tmp/minik.db")
	cfg.Poll.Interval = "30s"
	cfg.Board.ColumnWidth = 32
	cfg.Window.MenuMargin = 6

	got := toTUIRuntimeConfig(cfg)
	if got.PollInterval != 30*time.Second || got.ColumnWidth != 32 || got.MenuMargin != 6 {
		t.Fatalf("unexpected runtime config %#v", got)
	}
	if got.ClickSuppress != 250*time.Millisecond || got.MenuCloseGrace != 300*time.Millisecond {
		t.Fatalf("unexpected timing config %#v", got)
	}
}
