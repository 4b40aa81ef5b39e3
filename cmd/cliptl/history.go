package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/cache"
)

var (
	dim    = color.New(color.Faint)
	accent = color.New(color.FgCyan)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
)

func (a *app) historyCmd() *cobra.Command {
	var (
		search   string
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse, search or clear the translation memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()
			memory := a.openMemory(ctx)
			defer memory.Close()

			if clearAll {
				if err := memory.Clear(ctx); err != nil {
					return err
				}
				good.Fprintln(a.stdout, "Translation history cleared")
				return nil
			}

			var (
				recs []cliptl.TranslationRecord
				err  error
			)
			if search != "" {
				recs, err = memory.Search(ctx, search, limit)
			} else {
				recs, err = memory.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}

			if len(recs) == 0 {
				fmt.Fprintln(a.stdout, "No translations yet")
				return nil
			}
			for _, rec := range recs {
				dim.Fprintf(a.stdout, "%s  %s → %s  used %d×\n",
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					rec.SourceLang, rec.TargetLang, rec.UsedCount)
				fmt.Fprintf(a.stdout, "  %s\n", rec.SourceText)
				accent.Fprintf(a.stdout, "  %s\n", rec.TargetText)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show records containing this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of records (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete the whole history")
	return cmd
}

// languageToggler is implemented by backends with a persistent language table.
type languageToggler interface {
	SetLanguageEnabled(ctx context.Context, code string, enabled bool) error
}

func (a *app) languagesCmd() *cobra.Command {
	var enable, disable string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List target languages, or enable and disable them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()
			memory := a.openMemory(ctx)
			defer memory.Close()

			if enable != "" || disable != "" {
				return a.toggleLanguages(ctx, memory, enable, disable)
			}

			target := a.store.Snapshot().TargetLang
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for i, lang := range memory.EnabledLanguages(ctx) {
				marker := " "
				if cliptl.NormalizeLang(lang.Code) == target {
					marker = "*"
				}
				dir := ""
				if lang.RTL {
					dir = "rtl"
				}
				fmt.Fprintf(tw, "%s %2d\t%s\t%s\t%s\t%s\n", marker, i, lang.Code, lang.Name, lang.NativeName, dir)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&enable, "enable", "", "Enable a language code")
	cmd.Flags().StringVar(&disable, "disable", "", "Disable a language code")
	return cmd
}

func (a *app) toggleLanguages(ctx context.Context, memory *cache.Memory, enable, disable string) error {
	toggler, ok := memory.Backend().(languageToggler)
	if !ok {
		return fmt.Errorf("the %s backend has no language table", a.store.Snapshot().Memory.Backend)
	}
	if enable != "" {
		if err := toggler.SetLanguageEnabled(ctx, enable, true); err != nil {
			return err
		}
		good.Fprintf(a.stdout, "Enabled %s\n", enable)
	}
	if disable != "" {
		if err := toggler.SetLanguageEnabled(ctx, disable, false); err != nil {
			return err
		}
		warn.Fprintf(a.stdout, "Disabled %s\n", disable)
	}
	return nil
}

func (a *app) memoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Export or import the translation memory",
	}
	cmd.AddCommand(a.memoryExportCmd(), a.memoryImportCmd())
	return cmd
}

func (a *app) memoryExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write the translation memory as JSON (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()
			memory := a.openMemory(ctx)
			defer memory.Close()

			exporter := cache.NewExporter(memory)
			meta := map[string]string{
				"app":     cliptl.Name,
				"version": version,
				"backend": a.store.Snapshot().Memory.Backend,
			}

			if args[0] == "-" {
				_, err := exporter.Export(ctx, a.stdout, meta)
				return err
			}
			n, err := exporter.ExportToFile(ctx, args[0], meta)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "Exported %d translations to %s\n", n, args[0])
			return nil
		},
	}
}

func (a *app) memoryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load translations from a JSON export (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()
			memory := a.openMemory(ctx)
			defer memory.Close()

			importer := cache.NewImporter(memory)
			var (
				result *cache.ImportResult
				err    error
			)
			if args[0] == "-" {
				result, err = importer.Import(ctx, cmd.InOrStdin())
			} else {
				result, err = importer.ImportFromFile(ctx, args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Imported %d translations", result.Imported)
			if result.Failed > 0 {
				warn.Fprintf(a.stdout, " (%d skipped)", result.Failed)
			}
			fmt.Fprintln(a.stdout)
			return nil
		},
	}
}

func (a *app) providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List translation providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			for i, info := range a.registry().Infos() {
				marker := " "
				if info.Active {
					marker = "*"
				}
				status := "configured"
				if !info.Configured {
					status = "not configured"
				}
				langs := "any language"
				if info.Languages != nil {
					langs = fmt.Sprintf("%d languages", len(info.Languages))
				}
				fmt.Fprintf(tw, "%s %d\t%s\t%s\t%s\t%s\t%s\n", marker, i, info.ID, info.Name, info.Capabilities, status, langs)
			}
			return tw.Flush()
		},
	}
}

// shorten cuts s to n runes for one-line display.
func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
