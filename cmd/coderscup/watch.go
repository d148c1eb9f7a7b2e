package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/page"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/watch"
)

// cmdWatch renders the live contest countdown, one status line redrawn in
// place, with phase transitions printed on their own lines as they happen.
func cmdWatch(ctx context.Context, a *app) error {
	if !a.cfg.HasContest() {
		return errors.New("watch requires api mode; the static deployment has no contest state")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.runBus != nil {
		go a.runBus(ctx)
	}

	watcher := watch.NewWatcher(a.client, a.bus, a.source, a.cfg.WatchConfig())
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Watcher stopped")
		}
	}()

	landing := page.NewLanding(a.problems, true)
	var lastLine string
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case snap := <-watcher.Snapshots():
			landing.ApplySnapshot(snap)
			if notice := landing.TakeNotice(); notice != "" {
				fmt.Printf("\r\033[K%s\n", notice)
				lastLine = ""
			}
			line := landing.StatusLine()
			if snap.Err != nil {
				line += " (offline, showing last known state)"
			}
			if line != lastLine {
				fmt.Printf("\r\033[K%s", line)
				lastLine = line
			}
		}
	}
}
