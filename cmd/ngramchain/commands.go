package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CTAG07/ngramchain/pkg/ngram"
	"github.com/CTAG07/ngramchain/pkg/store"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newLearnCmd(a *app) *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "learn <model> [files...]",
		Short: "Learn sentences into a model, one per line",
		Long: `Reads sentences one per line from the given files, or from standard input
when no files are given, and learns them into the named model. A model that
does not exist yet is created with the configured settings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			name := args[0]

			lines, err := readLines(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}

			kind, exists, err := a.modelKind(ctx, name, variant)
			if err != nil {
				return err
			}

			switch kind {
			case store.KindString:
				chain, err := a.loadChain(ctx, name, exists)
				if err != nil {
					return err
				}
				for _, line := range lines {
					chain.Learn(line)
				}
				if err = a.store.SaveChain(ctx, name, chain); err != nil {
					return err
				}
			case store.KindIndexed:
				chain, err := a.loadIndexed(ctx, name, exists)
				if err != nil {
					return err
				}
				for i, line := range lines {
					if err = chain.Learn(line); err != nil {
						return fmt.Errorf("line %d: %w", i+1, err)
					}
				}
				if err = a.store.SaveIndexed(ctx, name, chain); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "learned %d sentences into %s model '%s'\n", len(lines), kind, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "variant of a new model (string or indexed), defaults to the configured one")

	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		from     string
		grams    int
		backward bool
		count    int
		maxSteps int
	)

	cmd := &cobra.Command{
		Use:   "generate <model>",
		Short: "Generate sentences from a model",
		Long: `Generates sentences from the named model. For indexed models the --from,
--grams and --backward flags override the stored defaults only when given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			name := args[0]

			kind, err := a.store.Kind(ctx, name)
			if err != nil {
				return err
			}

			opts := []ngram.GenerateOption{ngram.WithMaxSteps(maxSteps)}
			if cmd.Flags().Changed("from") {
				opts = append(opts, ngram.WithFrom(from))
			}

			var generate func(...ngram.GenerateOption) (string, error)
			switch kind {
			case store.KindString:
				if cmd.Flags().Changed("grams") || cmd.Flags().Changed("backward") {
					return fmt.Errorf("--grams and --backward are only supported by %s models", store.KindIndexed)
				}
				chain, err := a.loadChain(ctx, name, true)
				if err != nil {
					return err
				}
				generate = chain.Generate
			case store.KindIndexed:
				if cmd.Flags().Changed("grams") {
					opts = append(opts, ngram.WithGenerateGrams(grams))
				}
				if cmd.Flags().Changed("backward") {
					opts = append(opts, ngram.WithBackward(backward))
				}
				chain, err := a.loadIndexed(ctx, name, true)
				if err != nil {
					return err
				}
				generate = chain.Generate
			default:
				return fmt.Errorf("model '%s' has unknown kind %q", name, kind)
			}

			for i := 0; i < count; i++ {
				sentence, err := generate(opts...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sentence)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "word to start generating from")
	cmd.Flags().IntVar(&grams, "grams", ngram.DefaultIndexedGrams, "indices taken per step (indexed models)")
	cmd.Flags().BoolVar(&backward, "backward", false, "walk toward the start of sentences (indexed models)")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of sentences to generate")
	cmd.Flags().IntVar(&maxSteps, "max-steps", ngram.DefaultMaxSteps, "maximum walk steps per sentence")

	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <model>",
		Short: "Write the JSON snapshot of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			name := args[0]

			kind, err := a.store.Kind(ctx, name)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err = a.exportModel(ctx, name, kind, &buf); err != nil {
				return fmt.Errorf("failed to export model '%s': %w", name, err)
			}

			if out == "" || out == "-" {
				_, err = buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err = atomic.WriteFile(out, &buf); err != nil {
				return fmt.Errorf("failed to write snapshot file: %w", err)
			}
			a.logger.Info("Snapshot exported", "model", name, "path", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "file to write the snapshot to, defaults to standard output")

	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "import <model> <file>",
		Short: "Store a JSON snapshot as a model, replacing any existing one",
		Long: `Reads a JSON snapshot from the given file, or from standard input when the
file is "-", and stores it under the model name. The snapshot is validated
before anything is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			name, path := args[0], args[1]

			if variant == "" {
				variant = a.config.Model.Variant
			}

			var r io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open snapshot file: %w", err)
				}
				defer func(f *os.File) {
					_ = f.Close()
				}(f)
				r = f
			}

			switch store.Kind(variant) {
			case store.KindString:
				chain, err := ngram.ImportChain(r)
				if err != nil {
					return err
				}
				if err = a.store.SaveChain(ctx, name, chain); err != nil {
					return err
				}
			case store.KindIndexed:
				chain, err := ngram.ImportIndexedChain(r)
				if err != nil {
					return err
				}
				if err = a.store.SaveIndexed(ctx, name, chain); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown model variant %q", variant)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %s model '%s'\n", variant, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "variant of the snapshot (string or indexed), defaults to the configured one")

	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := a.store.List(commandContext(cmd))
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no models stored")
				return nil
			}
			printTableOfSnapshots(cmd.OutOrStdout(), infos)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <model>",
		Short: "Show statistics of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			name := args[0]

			kind, err := a.store.Kind(ctx, name)
			if err != nil {
				return err
			}

			switch kind {
			case store.KindString:
				chain, err := a.loadChain(ctx, name, true)
				if err != nil {
					return err
				}
				printTableOfChainStats(cmd.OutOrStdout(), chain.Stats())
			case store.KindIndexed:
				chain, err := a.loadIndexed(ctx, name, true)
				if err != nil {
					return err
				}
				printTableOfIndexedStats(cmd.OutOrStdout(), chain.Stats(), chain.Config())
			}
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <model>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored model",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Remove(commandContext(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed model '%s'\n", args[0])
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config or database is needed to print the version.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ngramchain %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}

// exportModel writes the JSON snapshot of the named model to w.
func (a *app) exportModel(ctx context.Context, name string, kind store.Kind, w io.Writer) error {
	switch kind {
	case store.KindString:
		chain, err := a.loadChain(ctx, name, true)
		if err != nil {
			return err
		}
		return chain.Export(w)
	case store.KindIndexed:
		chain, err := a.loadIndexed(ctx, name, true)
		if err != nil {
			return err
		}
		return chain.Export(w)
	default:
		return fmt.Errorf("unknown model kind %q", kind)
	}
}

// readLines returns the non-blank lines of the given files, or of r when no
// files are given.
func readLines(r io.Reader, files []string) ([]string, error) {
	if len(files) == 0 {
		return scanLines(r)
	}

	var lines []string
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		fileLines, err := scanLines(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		lines = append(lines, fileLines...)
	}
	return lines, nil
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
