package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/godbus/dbus/v5"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/notifyd/internal/audio"
	"github.com/llehouerou/notifyd/internal/config"
	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/history"
	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/render"
	"github.com/llehouerou/notifyd/internal/stderr"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "own org.freedesktop.Notifications and print incoming notifications",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "width",
				Usage: "card width in cells",
				Value: 60,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not print notifications",
			},
		},
		Action: runServe,
	}
}

// loadConfig loads the configuration selected by the global flags and
// applies the --log-level override.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, errors.New(errmsg.FormatWith(errmsg.OpConfigLoad, cmd.String("config"), err))
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
		if err := cfg.Validate(); err != nil {
			return nil, errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
		}
	}
	return cfg, nil
}

// newLogger returns a text logger on w whose level follows level.
func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// daemon is the notification service with its settings, sounds and
// history, shared by the serve and tui commands.
type daemon struct {
	configPath       string
	logLevelOverride string

	store      *config.Store
	level      slog.LevelVar
	logger     *slog.Logger
	gatekeeper *audio.Gatekeeper
	hist       *history.Manager
	server     *notify.Server
	conn       *dbus.Conn
}

// newDaemon loads the configuration and builds the service without
// claiming the bus name. opts add frontends.
func newDaemon(cmd *cli.Command, logOut io.Writer, opts ...notify.Option) (*daemon, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	d := &daemon{
		configPath:       config.ActivePath(cmd.String("config")),
		logLevelOverride: cmd.String("log-level"),
		store:            config.NewStore(cfg),
	}
	d.level.Set(cfg.SlogLevel())
	d.logger = newLogger(logOut, &d.level)

	d.gatekeeper = audio.NewGatekeeper(
		audio.WithEnv(audio.DefaultEnv()),
		audio.WithPlayer(audio.NewSpeakerPlayer(cfg.Sounds.Volume)),
		audio.WithLogger(d.logger.With(slog.String("component", "audio"))),
	)

	opts = append([]notify.Option{
		notify.WithLogger(d.logger.With(slog.String("component", "notify"))),
		notify.WithVersion(cmd.Root().Version),
	}, opts...)

	if cfg.History.Enabled {
		d.hist, err = history.Open(cfg.History.Path, cfg.History.MaxEntries)
		if err != nil {
			return nil, errors.New(errmsg.FormatWith(errmsg.OpHistoryOpen, cfg.History.Path, err))
		}
		histLogger := d.logger.With(slog.String("component", "history"))
		hist := d.hist
		opts = append(opts,
			notify.WithSink(func(n notify.Notification) {
				if _, err := hist.Record(historyEntry(n)); err != nil {
					histLogger.Warn("record failed", slog.Uint64("id", uint64(n.ID)), slog.String("error", err.Error()))
				}
			}),
			notify.WithCloseSink(func(id uint32, reason notify.CloseReason) {
				if err := hist.MarkClosed(id, int(reason), time.Now()); err != nil {
					histLogger.Warn("close failed", slog.Uint64("id", uint64(id)), slog.String("error", err.Error()))
				}
			}),
		)
	}
	d.server = notify.NewServer(d.store.Get, d.gatekeeper, opts...)
	return d, nil
}

// serve connects to the session bus and claims the notification name.
func (d *daemon) serve() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpBusConnect, err))
	}
	d.conn = conn

	if err := d.server.Serve(conn); err != nil {
		return errors.New(errmsg.Format(errmsg.OpServe, err))
	}
	cfg := d.store.Get()
	d.logger.Info("notification service started",
		slog.String("config", d.configPath),
		slog.Bool("sounds", cfg.Sounds.Enabled),
		slog.Bool("do_not_disturb", cfg.DoNotDisturb),
		slog.Bool("history", d.hist != nil))
	return nil
}

// run watches the configuration and runs frontend. Everything stops when
// frontend returns or ctx is cancelled.
func (d *daemon) run(ctx context.Context, frontend func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := config.Watch(gCtx, d.configPath, d.store,
			d.logger.With(slog.String("component", "config")),
			func(c *config.Config) {
				if d.logLevelOverride == "" {
					d.level.Set(c.SlogLevel())
				}
				if d.hist != nil {
					d.hist.SetMaxEntries(c.History.MaxEntries)
				}
			})
		if err != nil {
			// Settings stay fixed; the service keeps running.
			d.logger.Warn(errmsg.Format(errmsg.OpConfigWatch, err))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		return frontend(gCtx)
	})

	return g.Wait()
}

// close stops expirations, waits for sounds and releases the bus and
// the history.
func (d *daemon) close() {
	d.server.Stop()
	d.gatekeeper.Wait()
	d.logger.Info("notification service stopped",
		slog.Int("open", len(d.server.Notifications())))
	if d.conn != nil {
		d.conn.Close()
	}
	if d.hist != nil {
		d.hist.Close()
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	if err := stderr.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "stderr capture unavailable:", err)
	}
	defer stderr.Stop()

	var opts []notify.Option
	if !cmd.Bool("quiet") {
		r := render.NewRenderer(os.Stdout)
		width := int(cmd.Int("width"))
		opts = append(opts, notify.WithSink(func(n notify.Notification) {
			fmt.Fprintln(os.Stdout, r.Card(cardTitle(n), cardMeta(n), n.Content.Segments, width))
			fmt.Fprintln(os.Stdout)
		}))
	}

	d, err := newDaemon(cmd, stderr.Original(), opts...)
	if err != nil {
		return err
	}
	defer d.close()
	if err := d.serve(); err != nil {
		return err
	}
	go stderr.Forward(d.logger.With(slog.String("component", "native")))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		d.logger.Info("shutting down")
		return nil
	})
}

func cardTitle(n notify.Notification) string {
	if n.Summary == "" {
		return n.AppName
	}
	return n.Summary
}

func cardMeta(n notify.Notification) string {
	meta := humanize.Time(n.Received)
	if n.AppName != "" {
		meta = n.AppName + " · " + meta
	}
	if n.Urgency != notify.UrgencyNormal {
		meta = n.Urgency.String() + " · " + meta
	}
	return meta
}
