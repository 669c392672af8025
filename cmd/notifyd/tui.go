package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/render"
	"github.com/llehouerou/notifyd/internal/stderr"
	"github.com/llehouerou/notifyd/internal/tui"
)

// tuiEvents buffers notifications arriving before the program runs.
const tuiEvents = 64

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "run the notification service with a live terminal viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "where to write logs while the viewer owns the terminal",
				DefaultText: "$XDG_STATE_HOME/notifyd/tui.log",
			},
		},
		Action: runTUI,
	}
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		var err error
		if path, err = xdg.StateFile(filepath.Join("notifyd", "tui.log")); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	logFile, err := openLogFile(cmd.String("log-file"))
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpInitialize, cmd.String("log-file"), err))
	}
	defer logFile.Close()

	if err := stderr.Start(); err != nil {
		fmt.Fprintln(logFile, "stderr capture unavailable:", err)
	}
	defer stderr.Stop()

	// The server delivers from D-Bus goroutines; Program.Send must not be
	// called before the program exists, so events queue here until the
	// viewer exits.
	events := make(chan tea.Msg, tuiEvents)
	done := make(chan struct{})
	deliver := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-done:
		}
	}
	d, err := newDaemon(cmd, logFile,
		notify.WithSink(func(n notify.Notification) {
			deliver(tui.NotificationMsg{Notification: n})
		}),
		notify.WithCloseSink(func(id uint32, reason notify.CloseReason) {
			deliver(tui.ClosedMsg{ID: id, Reason: reason})
		}),
	)
	if err != nil {
		return err
	}
	defer d.close()
	defer close(done)

	model := tui.New(d.server, d.store, render.NewRenderer(os.Stdout))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if err := d.serve(); err != nil {
		return err
	}
	go stderr.Forward(d.logger)

	return d.run(ctx, func(ctx context.Context) error {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-events:
					p.Send(msg)
				}
			}
		}()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil
		}
		return err
	})
}
