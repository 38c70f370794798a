package streaks

import (
	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/render"
)

type StreakCmd struct {
	Current StreakCurrentCmd `cmd:"" help:"Show the habit(s) with the highest current streak."`
	Longest StreakLongestCmd `cmd:"" help:"Show the habit(s) with the highest longest streak."`
}

type StreakCurrentCmd struct{}

func (c *StreakCurrentCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.TopCurrentStreaks()
	if err != nil {
		return err
	}
	render.Leaders(ctx.Stdout(), "Highest current streak", habits, func(h models.Habit) int {
		return h.CurrentStreak
	})
	return nil
}

type StreakLongestCmd struct{}

func (c *StreakLongestCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.TopLongestStreaks()
	if err != nil {
		return err
	}
	render.Leaders(ctx.Stdout(), "Highest longest streak", habits, func(h models.Habit) int {
		return h.LongestStreak
	})
	return nil
}
