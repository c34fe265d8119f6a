package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specfold/specfold/internal/merge"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
	Strategy string
	Output   string
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <base> <ours> <theirs>",
		Short: "Three-way merge of IR documents",
		Long: `Three-way merge of IR documents against a common ancestor.

Conflicts are reported as data, never as failures: every conflicting
field carries base, ours, and theirs values plus how it was resolved.
With --strategy manual, unresolved conflicts exit with status 1.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", string(merge.StrategyAuto),
		"conflict strategy (ours|theirs|base|manual|auto)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write merged document to file")
	return cmd
}

func runMerge(opts *MergeOptions, basePath, oursPath, theirsPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	log := opts.Logger()

	strategy, err := merge.ParseStrategy(opts.Strategy)
	if err != nil {
		formatter.Error(ErrCodeBadRequest, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid strategy", err)
	}

	base, err := LoadDocument(basePath)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}
	ours, err := LoadDocument(oursPath)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}
	theirs, err := LoadDocument(theirsPath)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}

	result := merge.Merge(base, ours, theirs, strategy)
	log.Debug("merge complete",
		zap.String("strategy", string(strategy)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("auto_merged", result.AutoMergedCount),
	)

	if opts.Output != "" {
		encoded, err := merge.EncodeResult(result)
		if err != nil {
			formatter.Error(ErrCodeStore, fmt.Sprintf("encoding result: %v", err), nil)
			return WrapExitError(ExitFailure, "encoding result", err)
		}
		if err := os.WriteFile(opts.Output, append(encoded, '\n'), 0o644); err != nil {
			formatter.Error(ErrCodeStore, fmt.Sprintf("writing %s: %v", opts.Output, err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	if err := formatter.SuccessText(renderMergeResult(result), result); err != nil {
		return err
	}
	if unresolved := result.UnresolvedConflicts(); len(unresolved) > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d conflict(s) require manual resolution", len(unresolved)))
	}
	return nil
}

func renderMergeResult(r *merge.Result) string {
	var b strings.Builder
	if r.IsCleanMerge() {
		fmt.Fprintf(&b, "clean merge (%d field(s) auto-merged)\n", r.AutoMergedCount)
		return b.String()
	}
	fmt.Fprintf(&b, "merged with %d conflict(s), %d field(s) auto-merged\n",
		len(r.Conflicts), r.AutoMergedCount)
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "  %s [%s]\n", c.Path, c.Resolution)
		fmt.Fprintf(&b, "    base:   %v\n", c.Base)
		fmt.Fprintf(&b, "    ours:   %v\n", c.Ours)
		fmt.Fprintf(&b, "    theirs: %v\n", c.Theirs)
	}
	return b.String()
}
