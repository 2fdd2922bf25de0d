package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/evanschultz/minik/internal/adapters/github"
	"github.com/evanschultz/minik/internal/adapters/server"
	"github.com/evanschultz/minik/internal/adapters/server/common"
	"github.com/evanschultz/minik/internal/adapters/storage/sqlite"
	"github.com/evanschultz/minik/internal/adapters/terminal"
	"github.com/evanschultz/minik/internal/app"
	"github.com/evanschultz/minik/internal/config"
	"github.com/evanschultz/minik/internal/platform"
	"github.com/evanschultz/minik/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// githubFactory builds the GitHub port from resolved configuration.
var githubFactory = func(cfg config.Config, logger *runtimeLogger) app.GitHub {
	tokens := github.ChainTokens{
		github.EnvToken{Name: cfg.GitHub.TokenEnv},
		github.NewGHCLI(cfg.GitHub.GHPath, nil),
	}
	return github.NewClient(
		github.Config{
			APIURL:     cfg.GitHub.APIURL,
			GraphQLURL: cfg.GitHub.GraphQLURL,
			Timeout:    cfg.GitHubTimeout(),
		},
		tokens,
		&http.Client{Timeout: cfg.GitHubTimeout()},
		github.WithLogger(logger),
	)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the persistent CLI flags.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand wires the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("MINIK_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("MINIK_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "minik",
		Short:         "A floating GitHub Projects board for the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoardTUI(cmd.Context(), opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite settings database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newInitCommand(opts, stdout, stderr),
		newWhoamiCommand(opts, stdout, stderr),
		newProjectsCommand(opts, stdout, stderr),
		newBoardCommand(opts, stdout, stderr),
		newServeCommand(opts, stderr),
	)
	return root
}

// newPathsCommand prints resolved runtime paths.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and log paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := resolvePaths(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", resolveConfigPath(opts, paths))
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", resolveDBPath(opts, paths))
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// newInitCommand writes a default config file.
func newInitCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			env, err := resolveRuntime(opts, stderr, "init")
			if err != nil {
				return err
			}
			defer env.close()
			if err := config.WriteFile(env.configPath, env.cfg); err != nil {
				if errors.Is(err, os.ErrExist) {
					return fmt.Errorf("config %q already exists", env.configPath)
				}
				return fmt.Errorf("write config: %w", err)
			}
			env.logger.Info("config written", "config_path", env.configPath)
			_, _ = fmt.Fprintf(stdout, "wrote %s\n", env.configPath)
			return nil
		},
	}
}

// newWhoamiCommand prints the authenticated GitHub login.
func newWhoamiCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the GitHub login minik authenticates as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, stderr, "whoami", func(ctx context.Context, env *runtimeEnv, svc *app.Service) error {
				session, err := svc.Session(ctx)
				if err != nil {
					return fmt.Errorf("resolve session: %w", err)
				}
				_, _ = fmt.Fprintln(stdout, session.Login)
				return nil
			})
		},
	}
}

// newProjectsCommand lists projects grouped by owner.
func newProjectsCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the projects you can open, grouped by owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), opts, stderr, "projects", func(ctx context.Context, env *runtimeEnv, svc *app.Service) error {
				groups, err := svc.ProjectsByOrganization(ctx)
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				settings, err := svc.LoadSettings(ctx)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					_, _ = fmt.Fprintln(stdout, "no projects")
					return nil
				}
				for _, group := range groups {
					_, _ = fmt.Fprintln(stdout, group.Organization.DisplayName())
					for _, ref := range group.Projects {
						marker := " "
						if ref.ID == settings.SelectedProjectID {
							marker = "*"
						}
						_, _ = fmt.Fprintf(stdout, "%s #%-4d %s  %s\n", marker, ref.Number, ref.Label(), ref.ID)
					}
				}
				return nil
			})
		},
	}
}

// boardOptions holds flags for the board command.
type boardOptions struct {
	expanded bool
	mineOnly bool
}

// newBoardCommand prints one board render and exits.
func newBoardCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var bopts boardOptions
	cmd := &cobra.Command{
		Use:   "board [project-id]",
		Short: "Print the strip or the expanded board once",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, stderr, "board", func(ctx context.Context, env *runtimeEnv, svc *app.Service) error {
				settings, err := svc.LoadSettings(ctx)
				if err != nil {
					return err
				}
				projectID := settings.SelectedProjectID
				if len(args) == 1 {
					projectID = args[0]
				}
				snap, err := svc.FetchSnapshot(ctx, projectID)
				if err != nil {
					return fmt.Errorf("fetch board: %w", err)
				}
				view := tui.SnapshotView{
					Snapshot: snap,
					Hidden:   settings.HiddenFor(snap.Project.ID),
					MineOnly: settings.MineOnly,
					Expanded: settings.Expanded,
					Config:   toTUIRuntimeConfig(env.cfg),
				}
				if cmd.Flags().Changed("expanded") {
					view.Expanded = bopts.expanded
				}
				if cmd.Flags().Changed("mine") {
					view.MineOnly = bopts.mineOnly
				}
				if view.MineOnly {
					session, err := svc.Session(ctx)
					if err != nil {
						return fmt.Errorf("resolve session: %w", err)
					}
					view.Username = session.Login
				}
				_, _ = fmt.Fprintln(stdout, snap.Project.Title)
				_, _ = fmt.Fprintln(stdout, tui.RenderSnapshot(view))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&bopts.expanded, "expanded", "e", false, "render the expanded board instead of the strip")
	cmd.Flags().BoolVar(&bopts.mineOnly, "mine", false, "only show items assigned to you")
	return cmd
}

// newServeCommand runs the HTTP API and MCP surface.
func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over a local HTTP API and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withService(ctx, opts, stderr, "serve", func(ctx context.Context, env *runtimeEnv, svc *app.Service) error {
				serveCfg := server.Config{
					HTTPBind:      env.cfg.Serve.Bind,
					APIEndpoint:   env.cfg.Serve.APIEndpoint,
					MCPEndpoint:   env.cfg.Serve.MCPEndpoint,
					ServerName:    "minik",
					ServerVersion: version,
				}
				if strings.TrimSpace(bind) != "" {
					serveCfg.HTTPBind = bind
				}
				return server.Run(ctx, serveCfg, server.Dependencies{
					Boards:   common.NewAppServiceAdapter(svc),
					Settings: env.store,
					Logger:   env.logger,
				})
			})
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (overrides [serve] bind)")
	return cmd
}

// runBoardTUI runs the interactive board.
func runBoardTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	return withService(ctx, opts, stderr, "tui", func(ctx context.Context, env *runtimeEnv, svc *app.Service) error {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
		env.logger.SetConsoleEnabled(false)
		window := terminal.NewWindow(env.cfg.Window.Resize, env.logger)
		m := tui.NewModel(
			svc,
			tui.WithRuntimeConfig(toTUIRuntimeConfig(env.cfg)),
			tui.WithWindow(window),
			tui.WithLogger(env.logger),
		)
		p := programFactory(m)
		window.Attach(rawSender(p))
		env.logger.Info("starting tui program loop")
		if _, err := p.Run(); err != nil {
			env.logger.Error("tui program terminated with error", "err", err)
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// rawSender routes escape sequences through the program's own output.
func rawSender(p program) func(string) {
	return func(seq string) {
		p.Send(tea.RawMsg{Msg: seq})
	}
}

// runtimeEnv is the resolved per-invocation runtime state.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	store      *sqlite.Repository
}

// close releases the runtime logger.
func (e *runtimeEnv) close() {
	if e == nil || e.logger == nil {
		return
	}
	if err := e.logger.Close(); err != nil && e.logger.shouldLogToSink(e.logger.consoleSink) {
		e.logger.Warn("close runtime log sink", "err", err)
	}
}

// resolvePaths resolves platform paths for the CLI options.
func resolvePaths(opts *rootOptions) (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
}

// resolveConfigPath applies flag, env, then platform precedence.
func resolveConfigPath(opts *rootOptions, paths platform.Paths) string {
	if path := strings.TrimSpace(opts.configPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("MINIK_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// resolveDBPath applies flag, env, then platform precedence.
func resolveDBPath(opts *rootOptions, paths platform.Paths) string {
	if path := strings.TrimSpace(opts.dbPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("MINIK_DB_PATH")); envPath != "" {
		return envPath
	}
	return paths.DBPath
}

// dbOverridden reports whether the db path came from a flag or env var.
func dbOverridden(opts *rootOptions) bool {
	return strings.TrimSpace(opts.dbPath) != "" || strings.TrimSpace(os.Getenv("MINIK_DB_PATH")) != ""
}

// resolveRuntime loads config and builds the runtime logger.
func resolveRuntime(opts *rootOptions, stderr io.Writer, command string) (*runtimeEnv, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return nil, err
	}
	configPath := resolveConfigPath(opts, paths)
	dbPath := resolveDBPath(opts, paths)

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden(opts) {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// withService resolves runtime state, opens storage and runs fn against the app service.
func withService(ctx context.Context, opts *rootOptions, stderr io.Writer, command string, fn func(context.Context, *runtimeEnv, *app.Service) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := resolveRuntime(opts, stderr, command)
	if err != nil {
		return err
	}
	defer env.close()
	logger := env.logger

	logger.Info("opening sqlite repository", "db_path", env.cfg.Database.Path)
	repo, err := sqlite.Open(env.cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", env.cfg.Database.Path, "err", err)
		return fmt.Errorf("open sqlite repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", env.cfg.Database.Path, "err", closeErr)
		}
	}()
	env.store = repo

	svc := app.NewService(githubFactory(env.cfg, logger), repo, time.Now, app.ServiceConfig{})
	logger.Info("command flow start", "command", command)
	if err := fn(ctx, env, svc); err != nil {
		logger.Error("command flow failed", "command", command, "err", err)
		return err
	}
	logger.Info("command flow complete", "command", command)
	return nil
}

// toTUIRuntimeConfig maps config values into the board runtime settings.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		PollInterval:   cfg.PollInterval(),
		BannerTimeout:  cfg.BannerTimeout(),
		ClickSuppress:  cfg.ClickSuppress(),
		MenuCloseGrace: cfg.MenuCloseGrace(),
		ColumnWidth:    cfg.Board.ColumnWidth,
		ColumnGap:      cfg.Board.Gap,
		Padding:        cfg.Board.Padding,
		MaxCardLines:   cfg.Board.MaxCardLines,
		MenuMargin:     cfg.Window.MenuMargin,
	}
}

// parseBoolEnv parses a boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	devLogPath, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.emit(charmLog.DebugLevel, msg, keyvals...)
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.emit(charmLog.InfoLevel, msg, keyvals...)
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.emit(charmLog.WarnLevel, msg, keyvals...)
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.emit(charmLog.ErrorLevel, msg, keyvals...)
}

// emit writes one event to every enabled sink.
func (l *runtimeLogger) emit(level charmLog.Level, msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Log(level, msg, keyvals...)
	}
}

// devLogFilePath resolves a workspace-local dev log file path for the current run day.
func devLogFilePath(configDir, appName string, now time.Time) (string, error) {
	baseDir := strings.TrimSpace(configDir)
	if baseDir == "" {
		baseDir = ".minik/log"
	}
	if !filepath.IsAbs(baseDir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		baseDir = filepath.Join(workspaceRootFrom(cwd), baseDir)
	}
	fileStem := sanitizeLogFileStem(appName)
	fileName := fmt.Sprintf("%s-%s.log", fileStem, now.Format("20060102"))
	return filepath.Join(filepath.Clean(baseDir), fileName), nil
}

// workspaceRootFrom resolves the nearest ancestor workspace marker for stable local log placement.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	dir := start
	for {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// hasWorkspaceMarker reports whether a directory looks like a project workspace root.
func hasWorkspaceMarker(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	return false
}

// sanitizeLogFileStem normalizes app names into safe file-name segments.
func sanitizeLogFileStem(appName string) string {
	stem := strings.TrimSpace(appName)
	if stem == "" {
		return platform.DefaultAppName
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	stem = strings.Trim(replacer.Replace(stem), "-")
	if stem == "" {
		return platform.DefaultAppName
	}
	return stem
}
