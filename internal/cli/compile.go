package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specfold/specfold/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <document>",
		Short: "Compile a document to validated IR JSON",
		Long: `Compile a CUE, JSON, or YAML document to validated IR JSON.

The document is parsed, validated against the IR schema, normalized,
and emitted as JSON together with its content hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	return cmd
}

type compileResult struct {
	Document *ir.Document `json:"document"`
	Hash     string       `json:"hash"`
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	log := opts.Logger()
	log.Debug("compiling document", zap.String("path", path))

	doc, err := LoadDocument(path)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}

	encoded, err := ir.EncodeDocument(doc)
	if err != nil {
		formatter.Error(ErrCodeParse, fmt.Sprintf("encoding document: %v", err), nil)
		return WrapExitError(ExitFailure, "encoding document", err)
	}
	hash, err := ir.DocumentID(doc)
	if err != nil {
		formatter.Error(ErrCodeParse, fmt.Sprintf("hashing document: %v", err), nil)
		return WrapExitError(ExitFailure, "hashing document", err)
	}
	log.Debug("document compiled", zap.String("hash", hash))

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(encoded, '\n'), 0o644); err != nil {
			formatter.Error(ErrCodeStore, fmt.Sprintf("writing %s: %v", opts.Output, err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	text := fmt.Sprintf("compiled %s\n  signature: %s\n  hash:      %s\n",
		path, doc.Signature.Name, hash)
	if opts.Output != "" {
		text += fmt.Sprintf("  wrote:     %s\n", opts.Output)
	}
	return formatter.SuccessText(text, compileResult{Document: doc, Hash: hash})
}
