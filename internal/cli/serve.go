package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazypower/lifehack/internal/notify"
	"github.com/lazypower/lifehack/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server with widget and reminder refresh",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), false)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	if a.syncer != nil {
		a.mgr.OnChange(a.syncer.Listener(10 * time.Second))
		fmt.Fprintf(os.Stderr, "  widget: %s\n", a.sink.Dir)
	}
	if cfg.Notify.Enabled {
		sched := notify.NewScheduler(notify.LogNotifier{Logger: a.logger}, a.mgr.Now, cfg.Notify.Hour, cfg.Notify.Minute, a.logger)
		defer sched.Stop()
		a.mgr.OnChange(sched.Listener())
		fmt.Fprintf(os.Stderr, "  reminder: %02d:%02d daily\n", cfg.Notify.Hour, cfg.Notify.Minute)
	}
	// Recompute now and at every local midnight.
	a.mgr.StartMidnightTimer()

	srv := server.New(a.db, a.mgr, VersionString(), a.logger)
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "lifehack serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", a.db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = httpServer.Shutdown(ctx)
	if a.syncer != nil {
		a.syncer.Wait()
	}
	return err
}
