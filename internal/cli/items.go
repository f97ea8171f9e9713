package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lazypower/lifehack/internal/core"
	"github.com/lazypower/lifehack/internal/engine"
	"github.com/spf13/cobra"
)

// itemFlags collects the content flags shared by add, edit and replace.
type itemFlags struct {
	kind   string
	title  string
	phrase string
	text   string
	steps  []string
	image  string
	tags   string

	// tagsSet is true when --tags was given, so edit can clear tags with --tags "".
	tagsSet bool
}

func (f *itemFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.kind, "type", "t", "", "Item type: lifeCard, nudge or playbook")
	fs.StringVar(&f.title, "title", "", "Title (life card, playbook)")
	fs.StringVarP(&f.phrase, "phrase", "p", "", "Phrase (life card)")
	fs.StringVar(&f.text, "text", "", "Text (nudge)")
	fs.StringArrayVarP(&f.steps, "step", "s", nil, "Playbook step, repeatable")
	fs.StringVar(&f.image, "image", "", "Image URL")
	fs.StringVar(&f.tags, "tags", "", "Comma separated tags")
}

func (f *itemFlags) bind(cmd *cobra.Command) {
	f.tagsSet = cmd.Flags().Changed("tags")
}

// content builds new content from the flags. Without --type the shape is
// inferred from which text flag was given.
func (f itemFlags) content() (core.Content, error) {
	kind, err := f.resolveKind("")
	if err != nil {
		return nil, err
	}
	var c core.Content
	switch kind {
	case core.KindLifeCard:
		c = core.LifeCard{Title: f.title, Phrase: f.phrase, ImageURL: f.image}
	case core.KindNudge:
		c = core.Nudge{Text: f.text, ImageURL: f.image}
	case core.KindPlaybook:
		c = core.Playbook{Title: f.title, Steps: cleanSteps(f.steps), ImageURL: f.image}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// merge overlays the given flags on existing content. Changing --type
// starts from empty content of the new shape.
func (f itemFlags) merge(existing core.Content) (core.Content, error) {
	kind, err := f.resolveKind(existing.Kind())
	if err != nil {
		return nil, err
	}
	if kind != existing.Kind() {
		return f.content()
	}

	var c core.Content
	switch e := core.CloneContent(existing).(type) {
	case core.LifeCard:
		e.Title = override(e.Title, f.title)
		e.Phrase = override(e.Phrase, f.phrase)
		e.ImageURL = override(e.ImageURL, f.image)
		c = e
	case core.Nudge:
		e.Text = override(e.Text, f.text)
		e.ImageURL = override(e.ImageURL, f.image)
		c = e
	case core.Playbook:
		e.Title = override(e.Title, f.title)
		if len(f.steps) > 0 {
			e.Steps = cleanSteps(f.steps)
		}
		e.ImageURL = override(e.ImageURL, f.image)
		c = e
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (f itemFlags) resolveKind(fallback core.Kind) (core.Kind, error) {
	if f.kind != "" {
		return core.ParseKind(f.kind)
	}
	if fallback != "" {
		return fallback, nil
	}
	switch {
	case len(f.steps) > 0:
		return core.KindPlaybook, nil
	case f.text != "":
		return core.KindNudge, nil
	case f.phrase != "":
		return core.KindLifeCard, nil
	}
	return "", errors.New("--type is required (lifeCard, nudge or playbook)")
}

func (f itemFlags) tagList() []string {
	return core.ParseTags(f.tags)
}

func override(cur, next string) string {
	if next != "" {
		return next
	}
	return cur
}

func cleanSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func capacityError() error {
	return fmt.Errorf("already %d active items; use 'lifehack replace <id>' to swap one out", engine.MaxActiveItems)
}

// reportPersist prints a warning for a persistence failure and swallows it:
// the change is live in memory for this process but did not reach disk.
func reportPersist(w io.Writer, err error) error {
	var perr *engine.PersistError
	if errors.As(err, &perr) {
		fmt.Fprintf(w, "warning: %v\n", perr)
		return nil
	}
	return err
}

// --- add ---

var addFlags itemFlags

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item to the rotation",
	Example: `  lifehack add --phrase "One thing at a time" --title Focus --tags work
  lifehack add --text "Drink water"
  lifehack add --title "Morning" --step Stretch --step "Plan the day"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addFlags.bind(cmd)
		return withWriteApp(func(ctx context.Context, a *app, out io.Writer, _ []string) error {
			return runAdd(ctx, a, out, addFlags)
		})(cmd, args)
	},
}

func runAdd(ctx context.Context, a *app, out io.Writer, f itemFlags) error {
	content, err := f.content()
	if err != nil {
		return err
	}
	it, err := a.mgr.AddWithinCapacity(ctx, content, f.tagList())
	if errors.Is(err, engine.ErrAtCapacity) {
		return capacityError()
	}
	if err := reportPersist(out, err); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %s %s (%d/%d active)\n", it.Kind().Label(), it.ID, len(a.mgr.ActiveItems()), engine.MaxActiveItems)
	return nil
}

// --- list ---

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active items",
	Args:    cobra.NoArgs,
	RunE:    withApp(func(ctx context.Context, a *app, out io.Writer, args []string) error { return runList(a, out) }),
}

func runList(a *app, out io.Writer) error {
	items := a.mgr.ActiveItems()
	if len(items) == 0 {
		fmt.Fprintln(out, "No active items. Add one with 'lifehack add'.")
		return nil
	}
	now := a.mgr.Now()
	fmt.Fprintf(out, "%d/%d active\n", len(items), engine.MaxActiveItems)
	if a.mgr.AtCapacity() {
		fmt.Fprintln(out, "Rotation is full; use 'lifehack replace' to swap an item in.")
	}
	fmt.Fprintln(out)
	for i, it := range items {
		printItemLine(out, i+1, it, now)
	}
	return nil
}

// --- edit ---

var editFlags itemFlags

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an active item's content or tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		editFlags.bind(cmd)
		return withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
			return runEdit(ctx, a, out, args[0], editFlags)
		})(cmd, args)
	},
}

func runEdit(ctx context.Context, a *app, out io.Writer, id string, f itemFlags) error {
	existing, ok := a.mgr.Snapshot().FindActive(id)
	if !ok {
		return fmt.Errorf("no active item %s", id)
	}
	content, err := f.merge(existing.Content)
	if err != nil {
		return err
	}
	tags := existing.Tags
	if f.tagsSet {
		tags = f.tagList()
	}
	it, err := a.mgr.Update(ctx, id, content, tags)
	if err := reportPersist(out, err); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s\n", it.ID)
	return nil
}

// --- retire ---

var retireCmd = &cobra.Command{
	Use:     "retire <id>",
	Aliases: []string{"rm"},
	Short:   "Move an item to the delete box (kept for 30 days)",
	Args:    cobra.ExactArgs(1),
	RunE: withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
		return runRetire(ctx, a, out, args[0])
	}),
}

func runRetire(ctx context.Context, a *app, out io.Writer, id string) error {
	ri, err := a.mgr.Retire(ctx, id)
	if err := reportPersist(out, err); err != nil {
		return err
	}
	if ri == nil {
		return fmt.Errorf("no active item %s", id)
	}
	fmt.Fprintf(out, "Retired %q; restore with 'lifehack restore %s' within 30 days\n", ri.Title(), ri.ID)
	return nil
}

// --- retired ---

var retiredCmd = &cobra.Command{
	Use:   "retired",
	Short: "List the delete box",
	Args:  cobra.NoArgs,
	RunE:  withApp(func(ctx context.Context, a *app, out io.Writer, args []string) error { return runRetired(a, out) }),
}

func runRetired(a *app, out io.Writer) error {
	retired := a.mgr.RetiredItems()
	if len(retired) == 0 {
		fmt.Fprintln(out, "Delete box is empty.")
		return nil
	}
	now := a.mgr.Now()
	for i, ri := range retired {
		printRetiredLine(out, i+1, ri, now)
	}
	return nil
}

// --- restore ---

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Bring a retired item back with fresh stats",
	Args:  cobra.ExactArgs(1),
	RunE: withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
		return runRestore(ctx, a, out, args[0])
	}),
}

func runRestore(ctx context.Context, a *app, out io.Writer, id string) error {
	it, err := a.mgr.RestoreWithinCapacity(ctx, id)
	if errors.Is(err, engine.ErrAtCapacity) {
		return capacityError()
	}
	if err := reportPersist(out, err); err != nil {
		return err
	}
	if it == nil {
		return fmt.Errorf("no retired item %s", id)
	}
	fmt.Fprintf(out, "Restored %q\n", it.Title())
	return nil
}

// --- purge ---

var purgeCmd = &cobra.Command{
	Use:   "purge <id>",
	Short: "Permanently delete a retired item",
	Args:  cobra.ExactArgs(1),
	RunE: withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
		return runPurge(ctx, a, out, args[0])
	}),
}

func runPurge(ctx context.Context, a *app, out io.Writer, id string) error {
	found, err := a.mgr.PermanentDelete(ctx, id)
	if err := reportPersist(out, err); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no retired item %s", id)
	}
	fmt.Fprintf(out, "Deleted %s\n", id)
	return nil
}

// --- replace ---

var (
	replaceFlags     itemFlags
	replaceRestoreID string
)

var replaceCmd = &cobra.Command{
	Use:   "replace <id>",
	Short: "Retire an item and fill its slot with new content or a retired item",
	Example: `  lifehack replace 3f2a... --text "Stand up and stretch"
  lifehack replace 3f2a... --restore 9c1b...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replaceFlags.bind(cmd)
		return withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
			return runReplace(ctx, a, out, args[0], replaceRestoreID, replaceFlags)
		})(cmd, args)
	},
}

func runReplace(ctx context.Context, a *app, out io.Writer, oldID, restoreID string, f itemFlags) error {
	var (
		it  *core.Item
		err error
	)
	if restoreID != "" {
		it, err = a.mgr.ReplaceAndRestore(ctx, oldID, restoreID)
	} else {
		content, cerr := f.content()
		if cerr != nil {
			return cerr
		}
		it, err = a.mgr.ReplaceAndAdd(ctx, oldID, content, f.tagList())
	}
	if err := reportPersist(out, err); err != nil {
		return err
	}
	if it == nil {
		if restoreID != "" {
			return fmt.Errorf("need active item %s and retired item %s", oldID, restoreID)
		}
		return fmt.Errorf("no active item %s", oldID)
	}
	fmt.Fprintf(out, "Replaced %s with %q (%s)\n", oldID, it.Title(), it.ID)
	return nil
}

// --- snooze ---

var snoozeCmd = &cobra.Command{
	Use:   "snooze <id>",
	Short: "Take one NO off an item",
	Args:  cobra.ExactArgs(1),
	RunE: withWriteApp(func(ctx context.Context, a *app, out io.Writer, args []string) error {
		return runSnooze(ctx, a, out, args[0])
	}),
}

func runSnooze(ctx context.Context, a *app, out io.Writer, id string) error {
	found, err := a.mgr.ReduceNoCount(ctx, id)
	if err := reportPersist(out, err); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no active item %s", id)
	}
	it, _ := a.mgr.Snapshot().FindActive(id)
	fmt.Fprintf(out, "%q now has %d NO\n", it.Title(), it.Stats.NoCount)
	return nil
}

func init() {
	addFlags.register(addCmd)
	editFlags.register(editCmd)
	replaceFlags.register(replaceCmd)
	replaceCmd.Flags().StringVar(&replaceRestoreID, "restore", "", "Restore this retired item into the slot instead of adding new content")
}
