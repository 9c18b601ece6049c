package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/vitui/internal/adapters/vikunja"
	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/config"
	"github.com/hylla/vitui/internal/platform"
	"github.com/hylla/vitui/internal/tui"
	"github.com/spf13/cobra"
)

// version stores the build version, set with -ldflags.
var version = "dev"

// program represents the runnable terminal program.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the terminal program; tests swap it for a fake.
var programFactory = func(ctx context.Context, m tea.Model) program {
	return tea.NewProgram(m, tea.WithContext(ctx))
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the flag values for the root command.
type rootOptions struct {
	configPath string
	devMode    bool
}

// run executes the root command. fang prints returned errors to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}

	root := newRootCommand(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root,
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
	)
}

// newRootCommand builds the vitui root command.
func newRootCommand(stderr io.Writer) *cobra.Command {
	opts := rootOptions{devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("VITUI_DEV_MODE"); ok {
		opts.devMode = envDev
	}

	cmd := &cobra.Command{
		Use:   "vitui",
		Short: "Browse and create Vikunja tasks from the terminal",
		Long: `vitui lists, inspects, and creates tasks on a Vikunja server.

New task titles accept inline annotations: !N sets the priority (1-5),
due:YYYY-MM-DD sets the due date, and {text} sets the description.`,
		Example: `  VIKUNJA_URL=https://tasks.example.com VIKUNJA_TOKEN=tk_... vitui
  vitui --config ./vitui.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	cmd.Flags().BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (vitui-dev)")
	return cmd
}

// runTUI resolves config, wires the client and service, and runs the program.
func runTUI(ctx context.Context, opts rootOptions, stderr io.Writer) error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: platform.DefaultAppName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("VITUI_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	cfg, err := config.Load(configPath, config.Default(paths.LogDir))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(stderr, platform.DefaultAppName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the program runs.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "dev_mode", opts.devMode, "version", version)
	logger.Debug("runtime paths resolved", "config_path", configPath, "log_dir", paths.LogDir)
	logger.Info("configuration loaded", "server", cfg.Server.URL, "project_id", cfg.Server.ProjectID, "per_page", cfg.List.PerPage, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	client, err := vikunja.New(vikunja.Config{
		BaseURL:   cfg.Server.URL,
		Token:     cfg.Server.Token,
		Timeout:   timeout,
		Logger:    logger,
		UserAgent: "vitui/" + version,
	})
	if err != nil {
		return fmt.Errorf("configure vikunja client: %w", err)
	}
	svc := app.NewService(client, logger, nil, app.ServiceConfig{
		ProjectID: cfg.Server.ProjectID,
		PerPage:   cfg.List.PerPage,
		WebURL:    client.WebURL(),
	})

	m := tui.NewModel(
		svc,
		tui.WithContext(ctx),
		tui.WithLogger(logger),
		tui.WithRequestTimeout(timeout),
		tui.WithLocation(loc),
	)
	logger.Info("starting tui program loop")
	if _, err := programFactory(ctx, m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("tui program exited")
	return nil
}

// parseBoolEnv parses a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
