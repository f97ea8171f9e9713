package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/delivery"
	"github.com/lazypower/lifehack/internal/engine"
)

// printItemLine prints the one-line list form of an active item.
func printItemLine(w io.Writer, n int, it core.Item, now time.Time) {
	fmt.Fprintf(w, "%d. [%s] %s\n", n, it.Kind().Label(), it.Title())
	fmt.Fprintf(w, "   id: %s\n", it.ID)
	if tags := it.TagList(); len(tags) > 0 {
		fmt.Fprintf(w, "   tags: %s\n", strings.Join(tags, ", "))
	}
	s := it.Stats
	fmt.Fprintf(w, "   shown %s, yes %d / no %d / skip %d\n",
		times(s.DisplayCount), s.YesCount, s.NoCount, s.SkipCount)
	if info := delivery.Cooldown(it, now); info.CoolingDown {
		fmt.Fprintf(w, "   cooling down: %s left (back %s)\n",
			plural(info.RemainingDays, "day"), humanize.RelTime(info.EndsAt, now, "ago", "from now"))
	}
}

// printItem prints the full body of an item as it is delivered.
func printItem(w io.Writer, it core.Item) {
	switch c := it.Content.(type) {
	case core.LifeCard:
		if c.Title != "" {
			fmt.Fprintf(w, "%s\n\n", c.Title)
		}
		fmt.Fprintf(w, "  %s\n", c.Phrase)
	case core.Nudge:
		fmt.Fprintf(w, "  %s\n", c.Text)
	case core.Playbook:
		fmt.Fprintf(w, "%s\n\n", c.Title)
		for i, step := range c.Steps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
	if img := it.ImageURL(); img != "" {
		fmt.Fprintf(w, "\n  image: %s\n", img)
	}
	if tags := it.TagList(); len(tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(tags, ", "))
	}
}

func printRetiredLine(w io.Writer, n int, ri core.RetiredItem, now time.Time) {
	deleted := time.UnixMilli(ri.DeletedAt)
	purge := deleted.Add(engine.RetentionWindow)
	fmt.Fprintf(w, "%d. [%s] %s\n", n, ri.Kind().Label(), ri.Title())
	fmt.Fprintf(w, "   id: %s\n", ri.ID)
	fmt.Fprintf(w, "   retired %s, purged %s\n",
		humanize.RelTime(deleted, now, "ago", "from now"),
		humanize.RelTime(purge, now, "ago", "from now"))
}

func times(n int) string {
	switch n {
	case 0:
		return "never"
	case 1:
		return "once"
	}
	return humanize.Comma(int64(n)) + " times"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func timeMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}
