package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/cache"
	"github.com/ZaguanLabs/cliptl/config"
	"github.com/ZaguanLabs/cliptl/provider"
	"github.com/ZaguanLabs/cliptl/trigger"
)

// overrides are per-invocation changes to the loaded configuration. They are
// applied to the in-memory store only.
type overrides struct {
	from     string
	to       string
	provider string
	swap     bool
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.from, "from", "", "Source language code, or auto")
	cmd.Flags().StringVar(&o.to, "to", "", "Target language code, or its index in 'cliptl languages'")
	cmd.Flags().StringVar(&o.provider, "provider", "", "Provider id, or its index in 'cliptl providers'")
	cmd.Flags().BoolVar(&o.swap, "swap", false, "Swap source and target languages")
}

func (o *overrides) apply(ctx context.Context, store *config.Store, registry *provider.Registry, memory *cache.Memory) error {
	if o.provider != "" {
		if index, err := strconv.Atoi(o.provider); err == nil {
			if _, err := registry.Select(index); err != nil {
				return err
			}
		} else if err := store.SetProvider(o.provider); err != nil {
			return err
		}
	}

	if o.from != "" {
		if _, err := store.Update(func(c *config.Config) error {
			c.SourceLang = o.from
			return nil
		}); err != nil {
			return err
		}
	}

	if o.to != "" {
		if index, err := strconv.Atoi(o.to); err == nil {
			if _, err := store.SelectTarget(index, memory.EnabledLanguages(ctx)); err != nil {
				return err
			}
		} else if _, err := store.Update(func(c *config.Config) error {
			c.TargetLang = o.to
			return nil
		}); err != nil {
			return err
		}
	}

	if o.swap {
		if _, err := store.SwapLanguages(); err != nil {
			return err
		}
	}
	return nil
}

type translationOutput struct {
	Source      string `json:"source"`
	Translation string `json:"translation"`
	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	Provider    string `json:"provider,omitempty"`
	Cached      bool   `json:"cached"`
	Bypassed    bool   `json:"bypassed,omitempty"`
	Error       string `json:"error,omitempty"`
	ElapsedMs   int64  `json:"elapsed_ms"`
}

func newTranslationOutput(res *cliptl.Result, err error) translationOutput {
	out := translationOutput{}
	if res != nil {
		out = translationOutput{
			Source:      res.Source,
			Translation: res.Translation,
			SourceLang:  res.SourceLang,
			TargetLang:  res.TargetLang,
			Provider:    res.ProviderID,
			Cached:      res.Cached,
			Bypassed:    res.Bypassed,
			ElapsedMs:   res.Elapsed.Milliseconds(),
		}
	}
	if err != nil {
		out.Error = cliptl.UserMessage(err)
	}
	return out
}

func (a *app) translateCmd() *cobra.Command {
	var (
		o      overrides
		file   string
		asJSON bool
		quiet  bool
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text from the arguments, a file or stdin",
		Long: `Translate text once and print the result.

Text comes from the arguments, or from stdin when there are none. With --file
every non-empty line of the file is translated, --jobs lines at a time.
Repeated lines are translated once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			ctx := cmd.Context()

			memory := a.openMemory(ctx)
			defer memory.Close()

			registry := a.registry()
			if err := o.apply(ctx, a.store, registry, memory); err != nil {
				return err
			}
			t := a.newTranslator(memory, registry)

			if file != "" {
				return a.translateFile(ctx, t, file, jobs, asJSON, quiet)
			}

			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			candidate, reason := trigger.NewFilter().Check(text, trigger.Manual)
			if reason != trigger.Accepted {
				return fmt.Errorf("not translating input: %s", reason)
			}

			cfg := a.store.Snapshot()
			ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			res, err := t.Translate(ctx, cliptl.TranslationRequest{
				Text:        candidate,
				SourceLang:  cfg.SourceLang,
				TargetLang:  cfg.TargetLang,
				SubmittedAt: time.Now(),
			})
			if asJSON {
				if encErr := writeJSON(a.stdout, newTranslationOutput(res, err)); encErr != nil {
					return encErr
				}
			}
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
			if !asJSON {
				fmt.Fprintln(a.stdout, res.Translation)
			}
			return nil
		},
	}

	o.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Translate every line of this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output result as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", cliptl.DefaultBatchWorkers, "Lines translated concurrently with --file")
	return cmd
}

func (a *app) translateFile(ctx context.Context, t *cliptl.Translator, path string, jobs int, asJSON, quiet bool) error {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	cfg := a.store.Snapshot()
	var progress func(done, total int)
	if !quiet {
		progress = func(done, total int) {
			fmt.Fprintf(a.stderr, "\rTranslated %d/%d", done, total)
			if done == total {
				fmt.Fprintln(a.stderr)
			}
		}
	}

	items, err := t.TranslateParallel(ctx, lines, cfg.SourceLang, cfg.TargetLang, jobs, progress)
	if err != nil {
		return err
	}

	failed := 0
	outputs := make([]translationOutput, 0, len(items))
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
		outputs = append(outputs, newTranslationOutput(item.Result, item.Err))
	}

	if asJSON {
		if err := writeJSON(a.stdout, outputs); err != nil {
			return err
		}
	} else {
		for _, out := range outputs {
			if out.Error != "" {
				fmt.Fprintf(a.stderr, "%s: %s\n", out.Source, out.Error)
				continue
			}
			fmt.Fprintln(a.stdout, out.Translation)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lines failed", failed, len(items))
	}
	return nil
}

func (a *app) detectCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of text",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			text, err := readText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var lang string
			if remote {
				lang, err = a.detectRemote(cmd.Context(), text)
				if err != nil {
					return err
				}
			} else {
				lang = cliptl.NewDetector().Detect(text)
			}

			if lang == cliptl.AutoLang {
				fmt.Fprintln(a.stdout, "auto\t(undetermined)")
				return nil
			}
			fmt.Fprintf(a.stdout, "%s\t%s\n", lang, cliptl.GetLanguageName(lang))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the active provider instead of the local detector")
	return cmd
}

func (a *app) detectRemote(ctx context.Context, text string) (string, error) {
	p, err := a.registry().Active()
	if err != nil {
		return "", err
	}
	d, ok := p.(cliptl.LanguageDetector)
	if !ok || !p.Capabilities().Has(cliptl.CapDetectLanguage) {
		return "", fmt.Errorf("provider %s cannot detect languages", p.ID())
	}

	ctx, cancel := context.WithTimeout(ctx, a.store.Snapshot().RequestTimeout)
	defer cancel()
	lang, err := d.DetectLanguage(ctx, text)
	if err != nil {
		return "", fmt.Errorf("detection failed: %w", err)
	}
	return cliptl.NormalizeLang(lang), nil
}

// readText joins args, or reads r when there are none.
func readText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no text given")
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
