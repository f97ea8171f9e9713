package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/lazypower/lifehack/internal/client"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether a lifehack server is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c := client.New("http://" + cfg.ListenAddr())
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		out := cmd.OutOrStdout()
		h, err := c.Health(ctx)
		if err != nil {
			fmt.Fprintf(out, "no server at %s\n", c.URL())
			return nil
		}
		fmt.Fprintf(out, "server %s at %s\n", h.Version, c.URL())
		fmt.Fprintf(out, "  up %s\n", (time.Duration(h.Uptime) * time.Second).String())
		fmt.Fprintf(out, "  db: %s (ok: %v)\n", h.DBPath, h.DB)
		fmt.Fprintf(out, "  active items: %d\n", h.ActiveItems)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
