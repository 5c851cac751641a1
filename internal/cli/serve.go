package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhengjing-huang/lighthouse/pkg/archive"
	"github.com/zhengjing-huang/lighthouse/pkg/lhreport"
	"github.com/zhengjing-huang/lighthouse/pkg/pipeline"
	"github.com/zhengjing-huang/lighthouse/pkg/session"
	"github.com/zhengjing-huang/lighthouse/pkg/viewer"
)

// Session backends accepted by --session-store and session_store in the
// config file.
const (
	storeMemory = "memory"
	storeFile   = "file"
	storeRedis  = "redis"
)

// serveCommand creates the serve command: host the interactive viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		source       string
		sessionStore string
		redisAddr    string
		archiveURI   string
		noCache      bool
	)
	cfg := viewer.Config{
		Host: c.Config.Host,
		Port: c.Config.Port,
		Open: c.Config.Open,
	}
	base := pipeline.Options{
		View:   c.Config.View,
		Locale: c.Config.Locale,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive treemap viewer",
		Long: `Serve the interactive treemap viewer on a local port.

With --source the viewer starts with that report loaded. Without it,
the last served report is reopened if the archive still has it;
otherwise the viewer waits for a report to be pushed to its API.

Examples:
  lighthouse-treemap serve -s debug.json --open
  lighthouse-treemap serve --port 8080 --session-store redis
  lighthouse-treemap serve --archive mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if base.View != "" {
				if err := pipeline.ValidateView(base.View); err != nil {
					return err
				}
			}
			return c.runServe(cmd.Context(), serveParams{
				cfg:          cfg,
				base:         base,
				source:       source,
				sessionStore: sessionStore,
				redisAddr:    redisAddr,
				archiveURI:   archiveURI,
				noCache:      noCache,
			})
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "report to load at startup (file path or URL)")
	cmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "address to bind")
	cmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to serve on")
	cmd.Flags().BoolVar(&cfg.Open, "open", cfg.Open, "open the viewer in the default browser")
	cmd.Flags().StringVar(&base.View, "view", base.View, "initial view mode: all, unused-bytes, duplicate-modules")
	cmd.Flags().StringVar(&base.Locale, "locale", base.Locale, "BCP 47 locale for number formatting")
	cmd.Flags().StringVar(&base.Title, "title", "", "viewer page title")
	cmd.Flags().BoolVar(&base.Debug, "debug", false, "inline the options document into the viewer page")
	cmd.Flags().BoolVar(&base.Refresh, "refresh", false, "bypass cached report documents")
	cmd.Flags().StringVar(&sessionStore, "session-store", c.Config.SessionStore, "session backend: memory, file, redis")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", c.Config.RedisAddr, "Redis address for --session-store redis")
	cmd.Flags().StringVar(&archiveURI, "archive", c.Config.ArchiveURI, "MongoDB connection string for durable report archiving")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// serveParams bundles the resolved serve configuration.
type serveParams struct {
	cfg          viewer.Config
	base         pipeline.Options
	source       string
	sessionStore string
	redisAddr    string
	archiveURI   string
	noCache      bool
}

// runServe wires the stores, loads or resumes the initial report, and
// serves until the context is canceled.
func (c *CLI) runServe(ctx context.Context, p serveParams) error {
	runner, err := c.newRunner(p.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	sessions, tokens, err := c.newSessionStores(ctx, p.sessionStore, p.redisAddr)
	if err != nil {
		return err
	}

	arch := c.newArchiveStore(ctx, p.archiveURI)
	if arch != nil {
		defer arch.Close(context.Background())
	}

	p.base.Logger = loggerFromContext(ctx)
	srv, err := viewer.New(ctx, p.cfg, runner, p.base, viewer.Stores{
		Sessions: sessions,
		Tokens:   tokens,
		Archive:  arch,
	}, c.Logger)
	if err != nil {
		return err
	}

	switch {
	case p.source != "":
		if err := c.loadInitialReport(ctx, srv, runner, p); err != nil {
			return err
		}
	default:
		c.resumeLastReport(ctx, srv, arch)
	}

	current, err := session.NewCurrentStore()
	if err != nil {
		c.Logger.Warn("session persistence unavailable", "err", err)
		current = nil
	}
	saveCurrent := func() {
		if current == nil {
			return
		}
		sess := srv.Session()
		if err := current.SaveSession(context.Background(), &sess); err != nil {
			c.Logger.Warn("could not persist session", "err", err)
		}
	}
	saveCurrent()

	printSuccess("Viewer running")
	printKeyValue("URL", srv.URL())
	printKeyValue("Push URL", srv.PushURL())
	if p.source == "" && srv.Session().ReportID == "" {
		printInfo("Waiting for a report; POST viewer options to the push URL")
	}
	printNewline()

	err = srv.Start(ctx)
	saveCurrent()
	return err
}

// loadInitialReport loads the --source report and makes it the viewer's
// current report.
func (c *CLI) loadInitialReport(ctx context.Context, srv *viewer.Server, runner *pipeline.Runner, p serveParams) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s...", p.source))
	spinner.Start()

	opts := p.base
	opts.Source = p.source
	o, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}

	spinner.Update("Building treemap...")
	if _, err := srv.SetReport(ctx, o); err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Loaded %s", p.source))
	return nil
}

// resumeLastReport reopens the report a previous serve run displayed, if
// the session file and the archived record both still exist. Failure here
// is never fatal: the viewer just starts empty.
func (c *CLI) resumeLastReport(ctx context.Context, srv *viewer.Server, arch archive.Store) {
	current, err := session.NewCurrentStore()
	if err != nil {
		return
	}
	sess, err := current.GetSession(ctx)
	if err != nil || sess == nil || sess.ReportID == "" {
		return
	}
	if arch == nil {
		return
	}

	rec, err := arch.Get(ctx, sess.ReportID)
	if err != nil || rec == nil || len(rec.Options) == 0 {
		return
	}
	o, err := lhreport.DecodeOptions(rec.Options)
	if err != nil {
		c.Logger.Warn("archived report is unreadable", "id", sess.ReportID, "err", err)
		return
	}
	if _, err := srv.SetReport(ctx, o); err != nil {
		c.Logger.Warn("could not resume last report", "url", sess.URL, "err", err)
		return
	}
	c.Logger.Info("resumed last report", "url", sess.URL)
}

// newSessionStores builds the session and token backends for the given
// kind. An unreachable Redis degrades to in-memory storage with a warning
// rather than failing startup.
func (c *CLI) newSessionStores(ctx context.Context, kind, redisAddr string) (session.Store, session.TokenStore, error) {
	switch kind {
	case storeMemory, "":
		return nil, nil, nil // viewer defaults to in-memory
	case storeFile:
		fs, err := session.NewFileStore("")
		if err != nil {
			c.Logger.Warn("file session store unavailable, using memory", "err", err)
			return nil, nil, nil
		}
		return fs, nil, nil // tokens stay in-memory; they never outlive the process
	case storeRedis:
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{Addr: redisAddr})
		if err != nil {
			c.Logger.Warn("redis unavailable, using in-memory sessions", "addr", redisAddr, "err", err)
			return nil, nil, nil
		}
		return rs, rs, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q (expected %s, %s, or %s)",
			kind, storeMemory, storeFile, storeRedis)
	}
}

// newArchiveStore connects to MongoDB when a URI is configured. Returns
// nil when no URI is set or the connection fails; the viewer then falls
// back to its in-memory archive.
func (c *CLI) newArchiveStore(ctx context.Context, uri string) archive.Store {
	if uri == "" {
		return nil
	}
	store, err := archive.NewMongoStore(ctx, archive.MongoConfig{URI: uri})
	if err != nil {
		c.Logger.Warn("archive unavailable, reports kept in memory", "uri", uri, "err", err)
		return nil
	}
	return store
}
