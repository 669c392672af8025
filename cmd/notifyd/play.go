package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/notifyd/internal/audio"
	"github.com/llehouerou/notifyd/internal/errmsg"
	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/stderr"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "play theme sounds by name, or files with --file",
		ArgsUsage: "<name|path>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "treat arguments as file paths under the sound directories",
			},
			&cli.BoolFlag{
				Name:  "resolve",
				Usage: "print resolved paths without playing",
			},
		},
		Action: runPlay,
	}
}

func runPlay(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("play: at least one sound name or path is required")
	}
	if err := stderr.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "stderr capture unavailable:", err)
	}
	defer stderr.Stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var level slog.LevelVar
	level.Set(cfg.SlogLevel())
	logger := newLogger(stderr.Original(), &level)
	go stderr.Forward(logger)

	gatekeeper := audio.NewGatekeeper(
		audio.WithEnv(audio.DefaultEnv()),
		audio.WithPlayer(audio.NewSpeakerPlayer(cfg.Sounds.Volume)),
		audio.WithLogger(logger),
	)

	var failed error
	for _, arg := range cmd.Args().Slice() {
		req := audio.Theme(arg)
		if cmd.Bool("file") {
			req = audio.File(arg)
		}
		if cmd.Bool("resolve") {
			path, size, err := gatekeeper.Resolve(req)
			if err != nil {
				failed = errors.Join(failed, errors.New(errmsg.FormatWith(errmsg.OpSoundPlay, arg, err)))
				continue
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\n", path, humanize.Bytes(uint64(size))) //nolint:gosec // size from stat
			continue
		}
		if err := gatekeeper.RequestPlayback(req); err != nil {
			failed = errors.Join(failed, errors.New(errmsg.FormatWith(errmsg.OpSoundPlay, arg, err)))
		}
	}
	gatekeeper.Wait()
	return failed
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "send a notification to the running daemon",
		ArgsUsage: "<summary> [body]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "app", Usage: "application name", Value: "notifyd"},
			&cli.StringFlag{Name: "icon", Usage: "icon name or path"},
			&cli.StringFlag{Name: "urgency", Aliases: []string{"u"}, Usage: "low, normal or critical", Value: "normal"},
			&cli.IntFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "expiry in ms, -1 for the server default, 0 for never", Value: -1},
			&cli.IntFlag{Name: "replace", Usage: "ID of a notification to replace"},
			&cli.StringFlag{Name: "sound-name", Usage: "theme sound to play"},
			&cli.StringFlag{Name: "sound-file", Usage: "sound file to play"},
			&cli.BoolFlag{Name: "silent", Usage: "ask the server not to play a sound"},
			&cli.IntFlag{Name: "repeat", Usage: "send the notification this many times concurrently", Value: 1},
		},
		Action: runSend,
	}
}

func parseUrgency(s string) (notify.Urgency, error) {
	switch s {
	case "low":
		return notify.UrgencyLow, nil
	case "normal", "":
		return notify.UrgencyNormal, nil
	case "critical":
		return notify.UrgencyCritical, nil
	}
	return 0, fmt.Errorf("unknown urgency %q", s)
}

func runSend(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("send: a summary is required")
	}
	urgency, err := parseUrgency(cmd.String("urgency"))
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpNotify, err))
	}
	client, err := notify.NewClient()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpBusConnect, err))
	}

	msg := notify.Message{
		AppName:       cmd.String("app"),
		Summary:       cmd.Args().First(),
		Body:          cmd.Args().Get(1),
		Icon:          cmd.String("icon"),
		Timeout:       int32(cmd.Int("timeout")),
		ReplacesID:    uint32(cmd.Int("replace")),
		Urgency:       urgency,
		SoundName:     cmd.String("sound-name"),
		SoundFile:     cmd.String("sound-file"),
		SuppressSound: cmd.Bool("silent"),
	}

	var g errgroup.Group
	g.SetLimit(4)
	ids := make([]uint32, max(cmd.Int("repeat"), 1))
	for i := range ids {
		g.Go(func() error {
			id, err := client.Notify(msg)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpNotify, err))
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(os.Stdout, id)
	}
	return nil
}
