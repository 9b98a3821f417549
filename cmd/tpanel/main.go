// cmd/tpanel/main.go
// Copyright(c) 2022-2026 tpanel contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains main(), which loads the configuration, sets up the
// panel and then runs the display until the window is closed or the
// process is interrupted.

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/goforj/godump"

	"github.com/tpanel/tpanel/button"
	"github.com/tpanel/tpanel/colors"
	"github.com/tpanel/tpanel/config"
	"github.com/tpanel/tpanel/gui"
	"github.com/tpanel/tpanel/gui/ebiten"
	"github.com/tpanel/tpanel/log"
	"github.com/tpanel/tpanel/panel"
	"github.com/tpanel/tpanel/queue"
	"github.com/tpanel/tpanel/resources"
	"github.com/tpanel/tpanel/system"
	"github.com/tpanel/tpanel/util"
)

var (
	configFile = flag.String("config", "", "configuration file (default: config.json in the user's config directory)")
	logLevel   = flag.String("loglevel", "", "logging level: debug, info, warn, error (overrides the configuration)")
	logDir     = flag.String("logdir", "", "log file directory (overrides the configuration)")
	panelDir   = flag.String("panel", "", "directory with the images and fonts of the panel")
	dump       = flag.Bool("dump", false, "print the system button table and the configuration and exit")
	validate   = flag.Bool("validate", false, "check the configuration and the system button table and exit")
	noGUI      = flag.Bool("nogui", false, "run without a window and log the display events")
)

// diskCacheSize is the most the cache of scaled images may use.
const diskCacheSize = 256 * 1024 * 1024

func init() {
	// The window has to be driven from the main thread.
	runtime.LockOSThread()
}

// logSender stands in for the controller connection. It logs what would
// be sent and writes it to stdout in the code page of the panel.
type logSender struct {
	codepage string
	lg       *log.Logger
}

func (s *logSender) Send(cmd string) {
	s.lg.Info("send", slog.String("command", cmd))
	os.Stdout.WriteString(util.EncodePanelText(cmd, s.codepage) + "\n")
}

func (s *logSender) KeyStroke(r rune) {
	s.lg.Info("key stroke", slog.String("key", string(r)))
}

func main() {
	flag.Parse()

	path := *configFile
	if path == "" {
		path = config.FilePath(nil)
	}
	cfg, err := config.Load(path, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *panelDir != "" {
		cfg.Panel.Dir = *panelDir
	}

	table := system.DefaultTable()
	if *validate {
		var e util.ErrorLogger
		e.Push("system table")
		table.Validate(&e)
		e.Pop()
		e.Push(path)
		cfg.Validate(&e)
		e.Pop()
		if e.HaveErrors() {
			fmt.Fprintln(os.Stderr, e.String())
			os.Exit(1)
		}
		fmt.Println("ok")
		return
	}
	if *dump {
		godump.Dump(table.Entries())
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	level, dir := cfg.Logging.Level, cfg.Logging.Dir
	if *logLevel != "" {
		level = *logLevel
	}
	if *logDir != "" {
		dir = *logDir
	}
	lg := log.New(level, dir)
	defer lg.CatchAndReportCrash()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	disk, err := util.MakeDiskCache(cfg.CacheDir())
	if err != nil {
		lg.Warnf("disk cache: %v", err)
	} else {
		go func() {
			defer lg.CatchAndReportCrash()
			if err := disk.CullObjects(diskCacheSize); err != nil {
				lg.Warnf("%s: %v", disk.Dir(), err)
			}
		}()
	}

	loader := resources.NewLoader(cfg.PanelDir(), disk, lg)
	fonts := resources.NewFonts(cfg.PanelDir(), cfg.FontTable(), lg)
	defer fonts.Close()

	palette := cfg.PaletteTable()
	if palette.Len() == 0 {
		palette = colors.MakePaletteTable(demoPalette)
	}
	env := button.Env{
		Colors: colors.NewResolver(palette, lg),
		Images: loader,
		Fonts:  fonts,
		Cache:  button.NewBitmapCache(0),
		Lg:     lg,
	}

	q := queue.New(lg)
	defer q.Destroy()

	p := panel.New(q, env, cfg, &logSender{codepage: cfg.Codepage(), lg: lg}, lg)
	defer p.Close()

	width, height := cfg.Size()
	pages := demoPages(width, height)
	for _, pg := range pages {
		if err := p.AddPage(pg); err != nil {
			lg.Errorf("%v", err)
		}
	}
	if err := loader.Preload(ctx, pageBitmaps(pages)); err != nil {
		lg.Warnf("preloading images: %v", err)
	}

	if err := p.Start(); err != nil {
		lg.Errorf("%v", err)
	}
	if err := p.ShowPage(demoPage); err != nil {
		lg.Errorf("%v", err)
	}
	if err := p.ShowPopup(demoKeypad); err != nil {
		lg.Errorf("%v", err)
	}

	if *noGUI {
		runHeadless(ctx, q, width, height, lg)
		return
	}

	d := ebiten.NewDisplay(ctx, q, width, height, p, p.Keyboard(), lg)
	if err := d.Run("TPanel"); err != nil {
		lg.Errorf("display: %v", err)
	}
}

// runHeadless applies the display events to a surface without showing
// it, until ctx is canceled.
func runHeadless(ctx context.Context, q *queue.Queue, width, height int, lg *log.Logger) {
	s := gui.NewSurface(width, height, lg)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.Ready():
		}

		for _, ev := range q.Drain() {
			lg.Info("display event", slog.String("kind", ev.Kind().String()), slog.Any("event", ev))
			s.Apply(ev, q.IsDeleted)
		}
		s.Compose()
	}
}
