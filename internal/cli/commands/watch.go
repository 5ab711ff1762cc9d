package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/algodoc/algodoc/internal/cli/ui"
	"github.com/algodoc/algodoc/internal/watch"
)

// newWatchCommand creates the watch command
func newWatchCommand(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [package]",
		Short: "Rescan the library whenever a source file changes",
		Long: `Watch the package directory and rescan it after every batch of changes
to .go files. Test files, testdata and hidden directories are ignored.

Each rescan prints the new revision and the number of algorithms, or the
error that stopped the scan. The last good catalog stays in use after a
failed scan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := a.pkg(args)
			if !cmd.Flags().Changed("debounce") {
				debounce = time.Duration(a.cfg.Watch.DebounceMS) * time.Millisecond
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			snap, err := a.scanner.Snapshot(ctx, pkg)
			if err != nil {
				return err
			}
			a.reportSkips(cmd.ErrOrStderr(), snap.Report)

			reloader := watch.NewReloader(a.scanner, pkg, a.logger)
			reloader.OnReload(func(res *watch.ReloadResult) {
				if !res.Success {
					ui.Message{
						Level:   ui.LevelError,
						Context: "rescan failed",
						Problem: res.Err.Error(),
						NoColor: a.flags.noColor,
					}.Write(cmd.ErrOrStderr())
					return
				}
				ui.WriteSuccess(out, fmt.Sprintf("%s, %s skipped in %s (revision %s)",
					plural(res.Algorithms, "algorithm"),
					plural(res.Skipped, "function"),
					res.Duration.Round(time.Millisecond),
					res.Revision), a.flags.noColor)
			})

			dir := filepath.Join(a.root, filepath.FromSlash(pkg))
			fw, err := watch.NewFileWatcher(dir, reloader.Callback(ctx),
				watch.WithDebounce(debounce),
				watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			if err := fw.Start(); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}

			banner := color.New(color.FgCyan, color.Bold)
			if a.flags.noColor {
				banner.DisableColor()
			}
			banner.Fprintf(out, "Watching %s (%s)\n", dir, plural(snap.Len(), "algorithm"))

			<-ctx.Done()

			if err := fw.Stop(); err != nil {
				return fmt.Errorf("error stopping watcher: %w", err)
			}
			fmt.Fprintln(out, "Stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Quiet period before a rescan")

	return cmd
}
