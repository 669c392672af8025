package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/history"
	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/render"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recorded notifications, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "number of entries",
				Value:   history.DefaultLimit,
			},
			&cli.StringFlag{
				Name:  "app",
				Usage: "only entries from this app name or desktop entry",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "card width in cells",
				Value: 60,
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "delete all entries",
			},
		},
		Action: runHistory,
	}
}

func runHistory(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	hist, err := history.Open(cfg.History.Path, cfg.History.MaxEntries)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpHistoryOpen, cfg.History.Path, err))
	}
	defer hist.Close()

	if cmd.Bool("clear") {
		n, err := hist.Clear()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpHistoryClear, err))
		}
		fmt.Fprintf(os.Stdout, "removed %s entries\n", humanize.Comma(n))
		return nil
	}

	entries, err := hist.List(history.Filter{
		AppName: cmd.String("app"),
		Limit:   int(cmd.Int("limit")),
	})
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpHistoryQuery, err))
	}

	r := render.NewRenderer(os.Stdout)
	width := int(cmd.Int("width"))
	for _, e := range entries {
		n := notificationFromEntry(e)
		fmt.Fprintln(os.Stdout, r.Card(cardTitle(n), historyMeta(e), n.Content.Segments, width))
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// historyEntry converts a delivered notification for storage.
func historyEntry(n notify.Notification) history.Entry {
	links := make([]string, 0, len(n.Content.Links))
	for _, l := range n.Content.Links {
		links = append(links, l.URL)
	}
	return history.Entry{
		NotificationID: n.ID,
		AppName:        n.AppName,
		DesktopEntry:   n.DesktopEntry,
		Summary:        n.Summary,
		Body:           n.Body,
		PlainText:      n.Content.PlainText,
		Urgency:        int(n.Urgency),
		Links:          links,
		Received:       n.Received,
	}
}

// notificationFromEntry rebuilds display content from the stored raw body.
func notificationFromEntry(e history.Entry) notify.Notification {
	return notify.Notification{
		ID:           e.NotificationID,
		AppName:      e.AppName,
		DesktopEntry: e.DesktopEntry,
		Summary:      e.Summary,
		Body:         e.Body,
		Content:      notify.Ingest(e.Body, false),
		Urgency:      notify.Urgency(e.Urgency), //nolint:gosec // stored from a valid Urgency
		Received:     e.Received,
	}
}

func historyMeta(e history.Entry) string {
	meta := cardMeta(notificationFromEntry(e))
	if e.Closed != nil {
		meta += " · " + closeReasonString(notify.CloseReason(e.CloseReason)) //nolint:gosec // stored from a CloseReason
	}
	return meta
}

func closeReasonString(r notify.CloseReason) string {
	switch r {
	case notify.ReasonExpired:
		return "expired"
	case notify.ReasonDismissed:
		return "dismissed"
	case notify.ReasonClosed:
		return "closed"
	default:
		return "undefined"
	}
}
