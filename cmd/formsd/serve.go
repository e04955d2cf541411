package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	auth "github.com/mind-engage/formbuilder/internal/auth/middleware"
	"github.com/mind-engage/formbuilder/internal/completion"
	"github.com/mind-engage/formbuilder/internal/config"
	"github.com/mind-engage/formbuilder/internal/eventlog"
	"github.com/mind-engage/formbuilder/internal/form"
	"github.com/mind-engage/formbuilder/internal/lead"
	"github.com/mind-engage/formbuilder/internal/notify"
	"github.com/mind-engage/formbuilder/internal/rbac"
	"github.com/mind-engage/formbuilder/internal/scoring"
	"github.com/mind-engage/formbuilder/internal/settings"
	"github.com/mind-engage/formbuilder/internal/storage"
	"github.com/mind-engage/formbuilder/internal/submission"
	"github.com/mind-engage/formbuilder/internal/template"
)

// app holds every wired dependency of the server.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *sql.DB

	forms       *form.SQLStore
	submissions *submission.SQLStore
	submit      *submission.Service
	templates   *template.SQLStore
	settings    *settings.Store
	completions *completion.Store
	leads       *lead.SQLStore
	tracker     *lead.Tracker
	events      *eventlog.Repo
	blobs       storage.BlobStore

	auth     *auth.AuthService
	accounts auth.Accounts
}

func newApp(c config.Config, log *zap.Logger, dbh *sql.DB, opts ...submission.ServiceOption) (*app, error) {
	blobs, err := storage.NewFSStore(c.BlobBasePath, c.PublicURL)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:         c,
		log:         log,
		db:          dbh,
		forms:       form.NewSQLStore(dbh),
		submissions: submission.NewSQLStore(dbh),
		templates:   template.NewSQLStore(dbh),
		settings:    settings.NewStore(dbh, ""),
		completions: completion.NewStore(dbh),
		leads:       lead.NewSQLStore(dbh),
		events:      eventlog.NewRepo(dbh, string(c.Mode)),
		blobs:       blobs,
		auth:        auth.NewAuthService(c.HMACSecret),
		accounts: auth.Accounts{
			c.AdminUser: {Username: c.AdminUser, PassHash: c.AdminPassHash, Role: rbac.RoleAdmin},
		},
	}

	var sender notify.Sender = notify.NewNoopSender(log)
	if c.ResendAPIKey != "" {
		sender = notify.NewResendSender(c.ResendAPIKey, c.MailFrom, log)
	}
	notifier := notify.NewLeadNotifier(sender, func(ctx context.Context) (string, error) {
		ws, err := a.settings.Workspace(ctx)
		return ws.NotifyEmail, err
	}, log)

	base := []submission.ServiceOption{
		submission.WithEvents(a.events),
		submission.WithCompletions(a.completions),
		submission.WithNotifier(notifier),
		submission.WithLogger(log),
	}
	a.submit = submission.NewService(a.forms, a.submissions, scoring.NewEngine(), append(base, opts...)...)
	a.tracker = lead.NewTracker(a.leads, a.forms, a.submissions, a.settings, a.events, log)
	return a, nil
}

// syncTemplates loads the builtin templates once. A missing directory is
// not an error.
func (a *app) syncTemplates(ctx context.Context) {
	ts, err := template.LoadDir(a.cfg.TemplatesDir)
	if errors.Is(err, os.ErrNotExist) {
		a.log.Info("templates_dir_missing", zap.String("dir", a.cfg.TemplatesDir))
		return
	}
	if err != nil {
		a.log.Error("templates_load_failed", zap.String("dir", a.cfg.TemplatesDir), zap.Error(err))
		return
	}
	if err := a.templates.Sync(ctx, ts); err != nil {
		a.log.Error("templates_sync_failed", zap.Error(err))
		return
	}
	a.log.Info("templates_synced", zap.Int("count", len(ts)))
}

func (a *app) watchTemplates(ctx context.Context) {
	err := template.WatchDir(ctx, a.cfg.TemplatesDir, a.log, func(ts []template.Template) {
		if err := a.templates.Sync(ctx, ts); err != nil {
			a.log.Error("templates_sync_failed", zap.Error(err))
		}
	})
	if err != nil {
		a.log.Warn("templates_watch_stopped", zap.Error(err))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dbh, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer dbh.Close()

		a, err := newApp(cfg, logger, dbh)
		if err != nil {
			return err
		}
		a.syncTemplates(ctx)
		if cfg.WatchTemplates {
			go a.watchTemplates(ctx)
		}

		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           a.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errc := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("mode", string(cfg.Mode)), zap.String("db", cfg.DBDriver))
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		logger.Info("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
