package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/lifehack/internal/delivery"
	"github.com/lazypower/lifehack/internal/notify"
	"github.com/spf13/cobra"
)

var (
	todayDay  string
	todaySync  bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the item of the day and the reminder planned for it",
	Long: "Show the item of the day. The pick is stable for a calendar day and the same " +
		"set of items, independent of delivery history. --sync also writes the widget payload.",
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
		return runToday(ctx, a, out, todayDay, todaySync)
	}),
}

func runToday(ctx context.Context, a *app, out io.Writer, day string, sync bool) error {
	now := a.mgr.Now()
	if day == "" {
		day = delivery.DayKey(now)
	} else if _, err := time.Parse(delivery.DayKeyLayout, day); err != nil {
		return fmt.Errorf("--day must be YYYY-MM-DD: %w", err)
	}

	it, ok := a.mgr.TodayFor(day)
	if !ok {
		fmt.Fprintln(out, "No active items.")
	} else {
		fmt.Fprintf(out, "Item of the day for %s [%s]\n\n", day, it.Kind().Label())
		printItem(out, it)
	}

	if day == delivery.DayKey(now) && a.cfg.Notify.Enabled {
		if n := notify.TodayOneShot(a.mgr.ActiveItems(), now, a.cfg.Notify.Hour, a.cfg.Notify.Minute); n != nil {
			fmt.Fprintf(out, "\nReminder %s: %s\n  %s\n", humanize.RelTime(n.FireAt, now, "ago", "from now"), n.Title, n.Body)
		}
	}

	if sync {
		if a.syncer == nil {
			return fmt.Errorf("widget is disabled in config")
		}
		p, err := a.syncer.Sync(ctx, a.mgr.ActiveItems())
		if err != nil {
			return err
		}
		if p == nil {
			fmt.Fprintf(out, "\nWidget cleared (%s)\n", a.sink.Dir)
		} else {
			fmt.Fprintf(out, "\nWidget updated (%s)\n", a.sink.Dir)
		}
	}
	return nil
}

func init() {
	todayCmd.Flags().StringVar(&todayDay, "day", "", "Day to pick for, YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todaySync, "sync", false, "Write the widget payload for today")
}
