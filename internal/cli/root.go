package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lifehack",
	Short: "A small rotation of personal life hacks, delivered one at a time",
	Long: "Lifehack keeps up to ten reminders in rotation, picks the next one to show " +
		"from your feedback, and mirrors a stable item of the day to a widget and a nightly notification.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.lifehack/config.yaml, or $LIFEHACK_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(retireCmd)
	rootCmd.AddCommand(retiredCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(snoozeCmd)
	rootCmd.AddCommand(deliverCmd)
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(todayCmd)
}
