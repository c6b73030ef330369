// Package main is the command-line companion for Shelv settings: it
// checks settings notes, lists the effective bindings, and watches the
// settings note for live reload.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/shelv/shelv/internal/service"
	"github.com/shelv/shelv/internal/state"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "shelv",
		Usage:   "Inspect and watch Shelv keybinding settings",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "Shelv data directory",
				Sources: cli.EnvVars("SHELV_DIR"),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Settings note to read instead of the data directory's",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Parse the settings note and report problems",
				Action: runCheck,
			},
			{
				Name:   "bindings",
				Usage:  "Print the effective keymap",
				Action: runBindings,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "palette",
						Usage: "Print slash-palette entries instead",
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Watch the settings note and rebuild on change",
				Action: runWatch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// settingsSource resolves which settings note a command reads.
func settingsSource(cmd *cli.Command) (path string, text string, err error) {
	if file := cmd.String("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", err
		}
		return file, string(data), nil
	}

	store := state.NewStore(cmd.String("dir"))
	if err := store.Init(); err != nil {
		return "", "", err
	}
	text, err = store.ReadSettings()
	if err != nil {
		return "", "", err
	}
	return store.SettingsPath(), text, nil
}

func runCheck(_ context.Context, cmd *cli.Command) error {
	path, text, err := settingsSource(cmd)
	if err != nil {
		return err
	}

	engine := service.NewEngine()
	defer engine.Close()
	snap := engine.Rebuild(text)

	diags := snap.Diagnostics()
	for _, d := range diags {
		fmt.Printf("%s: %s\n", path, d)
	}
	if len(diags) > 0 {
		return fmt.Errorf("%d problem(s) in %s", len(diags), path)
	}
	fmt.Printf("%s: ok, %d binding(s)\n", path, snap.Len())
	return nil
}

func runBindings(_ context.Context, cmd *cli.Command) error {
	_, text, err := settingsSource(cmd)
	if err != nil {
		return err
	}

	engine := service.NewEngine()
	defer engine.Close()
	snap := engine.Rebuild(text)

	if cmd.Bool("palette") {
		for _, p := range snap.Palette() {
			fmt.Printf("/%s\t%s\t%s\n", p.Alias, p.Shortcut, p.Description)
		}
		return nil
	}

	for _, d := range snap.Bindings() {
		fmt.Printf("%-8s %-22s %s\n", d.Scope, d.Shortcut, d.Action.Describe())
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	if cmd.String("file") != "" {
		return fmt.Errorf("watch reads the data directory, not --file")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := state.NewStore(cmd.String("dir"))
	if err := store.Init(); err != nil {
		return err
	}

	engine := service.NewEngine()
	defer engine.Close()

	reload := func() {
		text, err := store.ReadSettings()
		if err != nil {
			logger.Error("read settings", "error", err)
			return
		}
		snap := engine.Rebuild(text)
		logger.Info("settings rebuilt",
			"bindings", snap.Len(),
			"palette", len(snap.Palette()),
			"problems", len(snap.Diagnostics()))
		for _, d := range snap.Diagnostics() {
			logger.Warn("settings problem", "detail", d.String())
		}
	}
	reload()

	watcher, err := service.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Watch(store.SettingsPath()); err != nil {
		return err
	}
	watcher.OnChange(func(ev service.FileEvent) {
		logger.Info("settings changed", "op", ev.Op.String())
		reload()
	})
	watcher.Start()
	logger.Info("watching", "path", store.SettingsPath())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
