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

	"github.com/algodoc/algodoc/internal/catalog/codegen"
	"github.com/algodoc/algodoc/internal/watch"
	"github.com/algodoc/algodoc/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr    string
		watchFS bool
	)

	cmd := &cobra.Command{
		Use:   "serve [package]",
		Short: "Serve the catalog as a read-only JSON API",
		Long: `Serve the scanned catalog over HTTP:

  GET  /healthz
  GET  /algorithms[?category=key]
  GET  /categories
  GET  /algorithms/{id}
  GET  /algorithms/{id}/ports
  GET  /algorithms/{id}/prompt
  GET  /algorithms/{id}/source
  POST /algorithms/{id}/call   {"args": {...}, "output": "result"}

With --watch the package is rescanned whenever a source file changes and
every rescan is pushed to WebSocket clients of GET /events.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := a.pkg(args)
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Serve.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			snap, err := a.scanner.Snapshot(ctx, pkg)
			if err != nil {
				return err
			}
			a.reportSkips(cmd.ErrOrStderr(), snap.Report)

			opts := []web.Option{
				web.WithLogger(a.logger),
				web.WithGenerator(codegen.New(
					codegen.WithPackage(a.cfg.Generator.Package),
					codegen.WithGofmt(a.cfg.Generator.Gofmt),
					codegen.WithLogger(a.logger),
				)),
			}
			if watchFS {
				notifier := watch.NewNotifier(pkg, a.logger)
				defer notifier.Close()

				reloader := watch.NewReloader(a.scanner, pkg, a.logger)
				reloader.OnReload(notifier.Publish)

				dir := filepath.Join(a.root, filepath.FromSlash(pkg))
				fw, err := watch.NewFileWatcher(dir, reloader.Callback(ctx),
					watch.WithDebounce(time.Duration(a.cfg.Watch.DebounceMS)*time.Millisecond),
					watch.WithLogger(a.logger))
				if err != nil {
					return err
				}
				if err := fw.Start(); err != nil {
					return fmt.Errorf("failed to start watcher: %w", err)
				}
				defer fw.Stop()

				opts = append(opts, web.WithEvents(notifier.HandleWebSocket))
			}

			handler := web.NewHandler(a.scanner, pkg, opts...)
			srv := web.NewServer(web.DefaultServerConfig(addr), handler, a.logger)
			ln, err := srv.Listen()
			if err != nil {
				return err
			}

			banner := color.New(color.FgCyan, color.Bold)
			if a.flags.noColor {
				banner.DisableColor()
			}
			banner.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s (%s)\n",
				pkg, ln.Addr(), plural(snap.Len(), "algorithm"))

			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8700", "Listen address (default: serve.addr)")
	cmd.Flags().BoolVar(&watchFS, "watch", false, "Rescan on change and push events on /events")

	return cmd
}
