package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/markup"
	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/render"
)

// readBody returns the command arguments joined by spaces, or all of
// stdin when there are none.
func readBody(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return strings.Join(cmd.Args().Slice(), " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.New(errmsg.Format(errmsg.OpInputRead, err))
	}
	return string(data), nil
}

func sanitizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "sanitize",
		Usage:     "print the allow-listed form of a notification body",
		ArgsUsage: "[body]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			body, err := readBody(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, markup.Sanitize(body))
			return nil
		},
	}
}

func stripCommand() *cli.Command {
	return &cli.Command{
		Name:      "strip",
		Usage:     "print the plain text of a notification body",
		ArgsUsage: "[body]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			body, err := readBody(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, notify.Ingest(body, false).PlainText)
			return nil
		},
	}
}

func linksCommand() *cli.Command {
	return &cli.Command{
		Name:      "links",
		Usage:     "list the safe links of a notification body",
		ArgsUsage: "[body]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			body, err := readBody(cmd)
			if err != nil {
				return err
			}
			for _, l := range markup.ExtractLinks(body) {
				fmt.Fprintf(os.Stdout, "%s\t%s\n", l.URL, render.Sanitize(l.Text))
			}
			return nil
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render a notification body as styled terminal text",
		ArgsUsage: "[body]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "width",
				Usage: "maximum line width in cells, 0 for unlimited",
			},
			&cli.StringFlag{
				Name:  "summary",
				Usage: "render a card with this title",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			body, err := readBody(cmd)
			if err != nil {
				return err
			}
			content := notify.Ingest(body, true)
			r := render.NewRenderer(os.Stdout)
			width := int(cmd.Int("width"))
			if summary := cmd.String("summary"); summary != "" {
				fmt.Fprintln(os.Stdout, r.Card(summary, "", content.Segments, width))
				return nil
			}
			fmt.Fprintln(os.Stdout, r.Segments(content.Segments, width))
			return nil
		},
	}
}
