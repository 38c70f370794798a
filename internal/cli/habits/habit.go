package habits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/streaks/internal/cli"
	"github.com/julianstephens/streaks/internal/models"
	"github.com/julianstephens/streaks/internal/render"
	"github.com/julianstephens/streaks/internal/tui"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit and its check-offs."`
	Edit     HabitEditCmd     `cmd:"" help:"Rename a habit or change its periodicity."`
	CheckOff HabitCheckOffCmd `cmd:"" name:"check-off" help:"Mark a habit done for the current period."`
	List     HabitListCmd     `cmd:"" help:"List habits."`
	Show     HabitShowCmd     `cmd:"" help:"Show a habit's streaks."`
	Log      HabitLogCmd      `cmd:"" help:"Show a habit's check-off history."`
}

// runForm is replaced in tests
var runForm = func(fm *tui.HabitFormModel) error {
	return tui.NewHabitForm(fm).Run()
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name. Prompts interactively when omitted."`
	Periodicity string `short:"p" default:"daily" placeholder:"daily|weekly" help:"How often the habit is due (daily or weekly)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	name, periodicity := c.Name, c.Periodicity
	if name == "" {
		fm := &tui.HabitFormModel{Periodicity: periodicity}
		if err := runForm(fm); err != nil {
			return err
		}
		name, periodicity = fm.Name, fm.Periodicity
	}

	habit, err := ctx.Tracker.AddHabit(name, periodicity)
	if errors.Is(err, models.ErrDuplicateName) {
		return fmt.Errorf("habit %q already exists", name)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout(), "Added %s habit: %s\n", habit.Periodicity, habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name."`
}

// exists reports whether name is a habit, printing the not-found message
// when it is not.
func exists(ctx *cli.Context, name string) (bool, error) {
	_, err := ctx.Tracker.Habit(name)
	if errors.Is(err, models.ErrHabitNotFound) {
		fmt.Fprintf(ctx.Stdout(), "Habit %q not found.\n", name)
		return false, nil
	}
	return err == nil, err
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	ok, err := exists(ctx, c.Name)
	if !ok || err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	found, err := ctx.Tracker.DeleteHabit(c.Name)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(ctx.Stdout(), "Habit %q not found.\n", c.Name)
		return nil
	}

	fmt.Fprintf(ctx.Stdout(), "Deleted habit: %s\n", c.Name)
	return nil
}

type HabitEditCmd struct {
	Name        string `arg:"" help:"Current habit name."`
	NewName     string `name:"name" help:"New name for the habit."`
	Periodicity string `short:"p" placeholder:"daily|weekly" help:"New periodicity (daily or weekly). Streak counters are kept as they are."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if c.NewName == "" && c.Periodicity == "" {
		return errors.New("nothing to change: pass --name and/or --periodicity")
	}

	ok, err := exists(ctx, c.Name)
	if !ok || err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()

	found, err := ctx.Tracker.Edit(c.Name, c.NewName, c.Periodicity)
	if errors.Is(err, models.ErrDuplicateName) {
		return fmt.Errorf("habit %q already exists", c.NewName)
	}
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(ctx.Stdout(), "Habit %q not found.\n", c.Name)
		return nil
	}

	name := strings.TrimSpace(c.Name)
	if newName := strings.TrimSpace(c.NewName); newName != "" {
		name = newName
	}
	fmt.Fprintf(ctx.Stdout(), "Updated habit: %s\n", name)
	return nil
}

type HabitCheckOffCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitCheckOffCmd) Run(ctx *cli.Context) error {
	res, err := ctx.Tracker.CheckOff(c.Name)
	if errors.Is(err, models.ErrHabitNotFound) {
		return fmt.Errorf("habit %q not found", c.Name)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout(), render.CheckOff(res))
	return nil
}

type HabitListCmd struct {
	Periodicity string `short:"p" placeholder:"daily|weekly" help:"Only list habits with this periodicity."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.List(c.Periodicity)
	if err != nil {
		return err
	}
	render.Habits(ctx.Stdout(), habits)
	return nil
}

type HabitShowCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Tracker.Habit(c.Name)
	if errors.Is(err, models.ErrHabitNotFound) {
		return fmt.Errorf("habit %q not found", c.Name)
	}
	if err != nil {
		return err
	}
	render.Habit(ctx.Stdout(), habit)
	return nil
}

type HabitLogCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	habit, checkOffs, err := ctx.Tracker.History(c.Name)
	if errors.Is(err, models.ErrHabitNotFound) {
		return fmt.Errorf("habit %q not found", c.Name)
	}
	if err != nil {
		return err
	}
	render.History(ctx.Stdout(), habit, checkOffs)
	return nil
}
