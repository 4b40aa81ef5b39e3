package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/popup"
	"github.com/ZaguanLabs/cliptl/trigger"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		o         overrides
		fromStdin bool
		noCopy    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Translate everything copied to the clipboard",
		Long: `Poll the clipboard and translate new content as it is copied.

Results are printed to the terminal (and posted as desktop notifications when
popup.notify is set) and copied back to the clipboard. With --stdin every line
typed on standard input is translated as if requested by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if !a.clipboard.Available() {
				return errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			memory := a.openMemory(ctx)
			defer memory.Close()

			registry := a.registry()
			if err := o.apply(ctx, a.store, registry, memory); err != nil {
				return err
			}
			cfg := a.store.Snapshot()

			var tr *trigger.Trigger
			watcher := trigger.NewWatcher(
				trigger.ChangeFunc(func(text string, pos cliptl.Point) (uint64, trigger.Reason) {
					return tr.ClipboardChanged(text, pos)
				}),
				trigger.WithReader(a.clipboard),
				trigger.WithInterval(cfg.WatchInterval),
				trigger.WithWatcherLogger(a.logger),
			)

			sinks := popup.MultiSink{popup.NewTerminalSink(a.stdout)}
			if cfg.Popup.Notify {
				sinks = append(sinks, popup.NewNotifySink(a.logger))
			}
			popupOpts := []popup.Option{
				popup.WithTimeouts(cfg.Popup.SuccessTimeout, cfg.Popup.ErrorTimeout, cfg.Popup.LeaveGrace),
				popup.WithScreen(cfg.Screen()),
				popup.WithLogger(a.logger),
			}
			if !noCopy {
				popupOpts = append(popupOpts, popup.WithClipboard(watcher.Writer(a.clipboard)))
			}
			controller := popup.NewController(sinks, popupOpts...)
			defer controller.Close()

			pipeline := cliptl.NewPipeline(a.newTranslator(memory, registry), controller,
				cliptl.WithRequestTimeout(cfg.RequestTimeout),
				cliptl.WithPipelineLogger(a.logger),
			)
			defer pipeline.Close()

			tr = trigger.New(pipeline, a.store, nil, a.logger)

			if fromStdin {
				go a.manualLines(ctx, cmd, tr)
			}

			fmt.Fprintf(a.stderr, "Watching clipboard: %s → %s via %s (Ctrl-C to stop)\n",
				cfg.SourceLang, cfg.TargetLang, cfg.Provider)
			a.logger.Info("watching clipboard",
				zap.Duration("interval", cfg.WatchInterval),
				zap.Bool("auto_translate", cfg.AutoTranslate))

			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Also translate lines typed on stdin")
	cmd.Flags().BoolVar(&noCopy, "no-copy", false, "Do not copy translations back to the clipboard")
	return cmd
}

// manualLines submits every stdin line as a manual trigger until ctx is done
// or stdin is closed.
func (a *app) manualLines(ctx context.Context, cmd *cobra.Command, tr *trigger.Trigger) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if _, reason := tr.Manual(line, cliptl.Point{}); reason != trigger.Accepted && reason != trigger.Empty {
			dim.Fprintf(a.stderr, "skipped %q: %s\n", shorten(line, 40), reason)
		}
	}
}
