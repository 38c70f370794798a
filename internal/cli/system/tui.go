package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/lock"
	"github.com/julianstephens/streaks/internal/logger"
	"github.com/julianstephens/streaks/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	l, err := lock.Acquire(ctx.LockPath())
	if errors.Is(err, lock.ErrHeld) {
		return fmt.Errorf("another streaks TUI is already running: %w", err)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("failed to release lock", "error", err)
		}
	}()

	ctx.PerformAutomaticBackup()
	return tui.Run(ctx.Tracker)
}
