package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specfold/specfold/internal/diff"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <document-a> <document-b>",
		Short: "Structural diff between two documents",
		Long: `Compute the structural diff between two IR documents.

Scalar fields report old and new values; set-valued fields (effects,
assertions, evidence, holes) report additions and removals by
identity. The summary includes an overall similarity score.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDiff(opts *RootOptions, pathA, pathB string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	log := opts.Logger()

	a, err := LoadDocument(pathA)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}
	b, err := LoadDocument(pathB)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}

	d := diff.Compare(a, b)
	log.Debug("diff computed",
		zap.Int("changes", len(d.All())),
		zap.Float64("similarity", d.Similarity()),
	)
	return formatter.SuccessText(renderDiff(d), d)
}

func renderDiff(d *diff.Diff) string {
	var b strings.Builder
	if d.Empty() {
		b.WriteString("documents are identical\n")
	}
	for _, c := range d.All() {
		fmt.Fprintf(&b, "%s\n", c.Path)
		if c.Old != nil {
			fmt.Fprintf(&b, "  - %v\n", c.Old)
		}
		if c.New != nil {
			fmt.Fprintf(&b, "  + %v\n", c.New)
		}
	}
	fmt.Fprintf(&b, "similarity: %.3f (%d change(s), %d comparable field(s))\n",
		d.Similarity(), len(d.All()), d.Comparable)
	return b.String()
}
