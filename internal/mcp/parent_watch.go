package mcp

import (
	"context"
	"os"
	"time"

	"triage/internal/logging"
)

// WatchParent cancels the server when the parent process goes away, so a
// stdio server does not outlive the editor or agent that spawned it. It must
// not read stdin; the stdio transport owns it.
func WatchParent(ctx context.Context, cancel context.CancelFunc, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ppid := os.Getppid()
	log := logging.New("mcp")
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if os.Getppid() != ppid {
					log.Warn("parent process exited, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
