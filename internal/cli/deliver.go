package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/engine"
	"github.com/spf13/cobra"
)

// --- deliver ---

var deliverCmd = &cobra.Command{
	Use:   "deliver",
	Short: "Show the next item and record the delivery",
	Args:  cobra.NoArgs,
	RunE:  withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error { return runDeliver(ctx, a, out) }),
}

func runDeliver(ctx context.Context, a *app, out io.Writer) error {
	d, err := a.mgr.Deliver(ctx)
	if err := reportPersist(out, err); err != nil {
		return err
	}
	if d == nil {
		if len(a.mgr.ActiveItems()) == 0 {
			fmt.Fprintln(out, "Nothing to deliver: no active items.")
		} else {
			fmt.Fprintln(out, "Nothing to deliver: every item is cooling down.")
		}
		return nil
	}
	printDelivery(out, d)
	return nil
}

func printDelivery(out io.Writer, d *engine.Delivery) {
	fmt.Fprintf(out, "[%s] shown for the %s time\n\n", d.Item.Kind().Label(), humanize.Ordinal(d.Item.Stats.DisplayCount))
	printItem(out, d.Item)
	if d.Record.AwaitingFeedback() {
		fmt.Fprintf(out, "\nDid this help? lifehack feedback %s yes|no|skip\n", d.Record.ID)
	}
}

// --- last ---

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the most recent delivery",
	Args:  cobra.NoArgs,
	RunE:  withApp(func(ctx context.Context, a *app, out io.Writer, args []string) error { return runLast(a, out) }),
}

func runLast(a *app, out io.Writer) error {
	d := a.mgr.LastDelivery()
	if d == nil {
		fmt.Fprintln(out, "No delivery yet.")
		return nil
	}
	fmt.Fprintf(out, "Delivered %s\n", humanize.RelTime(timeMs(d.Record.DeliveredAt), a.mgr.Now(), "ago", "from now"))
	printDelivery(out, d)
	if fb := d.Record.FeedbackGiven; fb != nil {
		fmt.Fprintf(out, "\nFeedback: %s\n", *fb)
	}
	return nil
}

// --- feedback ---

type feedbackOpts struct {
	force  bool
	retire bool
	keep   bool
}

var feedbackFlags feedbackOpts

var feedbackCmd = &cobra.Command{
	Use:   "feedback [delivery-id] <yes|no|skip>",
	Short: "Answer a feedback request (defaults to the last delivery)",
	Long: "Record YES, NO or SKIP for a delivery. Feedback is only accepted where it was " +
		"requested unless --force is given. At five NOs you are asked whether to retire the item; " +
		"declining takes one NO off instead.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if feedbackFlags.retire && feedbackFlags.keep {
			return errors.New("--retire and --keep are mutually exclusive")
		}
		return withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
			deliveryID, answer := "", args[0]
			if len(args) == 2 {
				deliveryID, answer = args[0], args[1]
			}
			return runFeedback(ctx, a, cmd.InOrStdin(), out, deliveryID, answer, feedbackFlags)
		})(cmd, args)
	},
}

func runFeedback(ctx context.Context, a *app, in io.Reader, out io.Writer, deliveryID, answer string, opts feedbackOpts) error {
	fb, err := core.ParseFeedback(answer)
	if err != nil {
		return err
	}

	var d *engine.Delivery
	if deliveryID == "" {
		if d = a.mgr.LastDelivery(); d == nil {
			return errors.New("no delivery yet")
		}
	} else {
		var ok bool
		if d, ok = a.mgr.FindDelivery(deliveryID); !ok {
			return fmt.Errorf("no delivery %s", deliveryID)
		}
	}
	if !d.Record.AwaitingFeedback() && !opts.force {
		if d.Record.FeedbackGiven != nil {
			return fmt.Errorf("feedback already recorded (%s); pass --force to change it", *d.Record.FeedbackGiven)
		}
		return errors.New("feedback was not requested for this delivery; pass --force to record it anyway")
	}

	prompt, err := a.mgr.RecordFeedback(ctx, d.Record.ID, fb)
	if err := reportPersist(out, err); err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %s\n", fb)
	if !prompt {
		return nil
	}

	it, ok := a.mgr.Snapshot().FindActive(d.Record.ItemID)
	if !ok {
		return nil
	}
	retire := opts.retire
	if !opts.retire && !opts.keep {
		retire = confirm(in, out, fmt.Sprintf("%q has %d NOs. Retire it? [y/N] ", it.Title(), it.Stats.NoCount))
	}
	if retire {
		return runRetire(ctx, a, out, it.ID)
	}
	return runSnooze(ctx, a, out, it.ID)
}

// confirm reads a yes/no answer; anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	feedbackCmd.Flags().BoolVar(&feedbackFlags.force, "force", false, "Record feedback even where it was not requested")
	feedbackCmd.Flags().BoolVar(&feedbackFlags.retire, "retire", false, "Retire the item without asking if it reaches the NO threshold")
	feedbackCmd.Flags().BoolVar(&feedbackFlags.keep, "keep", false, "Keep the item without asking if it reaches the NO threshold")
}

