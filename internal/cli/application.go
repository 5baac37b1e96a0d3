// Package cli wires configuration, logging and the upload batch behind the
// repopush root command.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shaun/repopush/internal/batch"
	"github.com/shaun/repopush/internal/config"
	"github.com/shaun/repopush/internal/github"
	"github.com/shaun/repopush/internal/logging"
	"github.com/shaun/repopush/internal/manifest"
)

const longDescription = `repopush creates or updates a list of local files in a GitHub repository
branch through the contents API, one commit per file.

Owner, repository, branch and token are taken from flags, REPOPUSH_* environment
variables, a .env file or repopush.yaml; anything still missing is asked for
on the terminal. GITHUB_TOKEN and GH_TOKEN are accepted for the token.

Individual upload failures are reported but do not change the exit status.`

type Application struct {
	root       *cobra.Command
	loader     *config.Loader
	configFile string
	// executable locates the running binary; the default root directory is
	// its parent.
	executable func() (string, error)
}

func NewApplication() *Application {
	app := &Application{
		loader:     config.NewLoader(),
		executable: os.Executable,
	}
	cmd := &cobra.Command{
		Use:           "repopush",
		Short:         "Upload a fixed list of files to a GitHub branch",
		Long:          longDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.run,
	}
	f := cmd.Flags()
	f.StringVar(&app.configFile, "config", "", "Path to a YAML configuration file")
	f.String("owner", "", "Repository owner (user or organization)")
	f.String("repo", "", "Repository name")
	f.String("branch", "", "Target branch (default main)")
	f.String("api-url", config.DefaultAPIURL, "GitHub API base URL")
	f.Duration("http-timeout", 0, "Timeout per API request (default 30s)")
	f.String("manifest", "", "YAML manifest of files to upload (default: built-in list)")
	f.String("root", "", "Directory the manifest paths are relative to")
	f.Bool("dry-run", false, "Probe each remote path and print the plan without writing")
	f.Bool("skip-unchanged", false, "Do not write files whose remote blob already matches")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.String("log-format", "", "Log format: console or structured")
	app.root = cmd
	return app
}

func (a *Application) Command() *cobra.Command {
	return a.root
}

func (a *Application) Execute(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

func (a *Application) run(cmd *cobra.Command, _ []string) error {
	settings, used, err := a.loader.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Level(settings.LogLevel), logging.Format(settings.LogFormat), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if used != "" {
		logger.Debug("configuration loaded", zap.String("config_file", used))
	}

	m, err := loadManifest(settings.Manifest)
	if err != nil {
		return err
	}
	root, err := a.resolveRoot(settings)
	if err != nil {
		return err
	}

	sess, err := config.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Complete(settings)
	if err != nil {
		return err
	}
	logger.Info("starting upload",
		zap.String("repository", sess.Owner+"/"+sess.Repo),
		zap.String("branch", sess.Branch),
		zap.String("root", root),
		zap.Int("files", len(m.Tasks)),
		zap.Bool("dry_run", settings.DryRun))

	client, err := github.NewClient(sess,
		github.WithLogger(logger),
		github.WithTimeout(settings.HTTPTimeout),
		github.WithSkipUnchanged(settings.SkipUnchanged))
	if err != nil {
		return err
	}
	batch.NewDriver(client, batch.Options{
		Root:       root,
		Out:        cmd.OutOrStdout(),
		Logger:     logger,
		DryRun:     settings.DryRun,
		HistoryURL: sess.HistoryURL(),
	}).Run(cmd.Context(), m.Tasks)
	return nil
}

func loadManifest(file string) (manifest.Manifest, error) {
	if file == "" {
		return manifest.Default()
	}
	return manifest.Load(file)
}

// resolveRoot picks the directory task paths are relative to: the configured
// root, else the manifest's directory, else the executable's directory.
func (a *Application) resolveRoot(s config.Settings) (string, error) {
	switch {
	case s.Root != "":
		return filepath.Abs(s.Root)
	case s.Manifest != "":
		return filepath.Abs(filepath.Dir(s.Manifest))
	}
	exe, err := a.executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
