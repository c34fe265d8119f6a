package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specfold/specfold/internal/store"
	"github.com/specfold/specfold/internal/version"
)

// storeOptions holds the flags shared by every history-backed command.
type storeOptions struct {
	*RootOptions
	DBPath    string
	HistoryID string
}

func (o *storeOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.DBPath, "db", "specfold.db", "path to the history database")
	cmd.Flags().StringVar(&o.HistoryID, "history", "", "history ID")
}

// openStore opens the database with the command logger attached.
func (o *storeOptions) openStore() (*store.Store, error) {
	s, err := store.Open(o.DBPath, store.WithLogger(o.Logger()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("opening database %s", o.DBPath), err)
	}
	return s, nil
}

// loadHistory loads the history named by --history, translating
// not-found into a command error.
func (o *storeOptions) loadHistory(ctx context.Context, s *store.Store) (*version.History, error) {
	if o.HistoryID == "" {
		return nil, NewExitError(ExitCommandError, "--history is required")
	}
	h, err := s.LoadHistory(ctx, o.HistoryID)
	if errors.Is(err, store.ErrHistoryNotFound) {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("history %s not found", o.HistoryID), err)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("loading history %s", o.HistoryID), err)
	}
	return h, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CommitOptions holds flags for the commit command.
type CommitOptions struct {
	storeOptions
	Author  string
	Summary string
	Tags    []string
}

// NewCommitCommand creates the commit command.
func NewCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommitOptions{storeOptions: storeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "commit <document>",
		Short: "Record a document as a new version",
		Long: `Record a document as a new version of a history.

Without --history a new history is created; with --history the
document becomes the next version, with the diff from its parent
recorded in the version metadata.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Author, "author", "", "version author")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "change summary")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "tag for the new version (repeatable)")
	return cmd
}

type commitResult struct {
	HistoryID string `json:"history_id"`
	Version   int    `json:"version"`
}

func runCommit(opts *CommitOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	log := opts.Logger()

	doc, err := LoadDocument(path)
	if err != nil {
		formatter.Error(ErrCodeParse, err.Error(), nil)
		return err
	}

	s, err := opts.openStore()
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer s.Close()

	var h *version.History
	if opts.HistoryID == "" {
		h = version.NewHistory()
		log.Debug("created history", zap.String("history_id", h.ID()))
	} else {
		h, err = opts.loadHistory(ctx, s)
		if err != nil {
			formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return err
		}
	}

	summary := opts.Summary
	if summary == "" && h.CurrentVersion() == 0 {
		summary = "initial version"
	}
	n := h.CreateVersion(doc, summary, opts.Author, opts.Tags, nil)

	if err := s.SaveHistory(ctx, h); err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "saving history", err)
	}

	text := fmt.Sprintf("committed version %d of history %s\n", n, h.ID())
	return formatter.SuccessText(text, commitResult{HistoryID: h.ID(), Version: n})
}

// LogOptions holds flags for the log command.
type LogOptions struct {
	storeOptions
	From int
	To   int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{storeOptions: storeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "Show the change log of a history",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().IntVar(&opts.From, "from", 0, "first version to include")
	cmd.Flags().IntVar(&opts.To, "to", 0, "last version to include")
	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	s, err := opts.openStore()
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer s.Close()

	h, err := opts.loadHistory(ctx, s)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}

	text, err := h.ChangeLog(opts.From, opts.To)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "rendering change log", err)
	}
	from, to := opts.From, opts.To
	if from == 0 {
		from = 1
	}
	if to == 0 {
		to = h.CurrentVersion()
	}
	return formatter.SuccessText(text, h.GetVersionRange(from, to))
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &storeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "compare <version-a> <version-b>",
		Short:         "Diff two versions of a history",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, args[0], args[1], cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runCompare(opts *storeOptions, argA, argB string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	a, err := parseVersionNumber(argA)
	if err != nil {
		formatter.Error(ErrCodeBadRequest, err.Error(), nil)
		return err
	}
	b, err := parseVersionNumber(argB)
	if err != nil {
		formatter.Error(ErrCodeBadRequest, err.Error(), nil)
		return err
	}

	s, err := opts.openStore()
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer s.Close()

	h, err := opts.loadHistory(ctx, s)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}

	d, err := h.CompareVersions(a, b)
	if errors.Is(err, version.ErrVersionNotFound) {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "comparing versions", err)
	}
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	return formatter.SuccessText(renderDiff(d), d)
}

// NewRollbackCommand creates the rollback command.
func NewRollbackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &storeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rollback <version>",
		Short: "Restore an earlier version as a new version",
		Long: `Restore an earlier version's document as a new version.

History is never truncated: rolling back to version N appends a new
version whose content matches version N, tagged "rollback".`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRollback(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runRollback(opts *storeOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	n, err := parseVersionNumber(arg)
	if err != nil {
		formatter.Error(ErrCodeBadRequest, err.Error(), nil)
		return err
	}

	s, err := opts.openStore()
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer s.Close()

	h, err := opts.loadHistory(ctx, s)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}

	created, err := h.RollbackToVersion(n)
	if errors.Is(err, version.ErrVersionNotFound) {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "rolling back", err)
	}
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}

	if err := s.SaveHistory(ctx, h); err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "saving history", err)
	}

	text := fmt.Sprintf("rolled back to version %d as version %d\n", n, created)
	return formatter.SuccessText(text, commitResult{HistoryID: h.ID(), Version: created})
}

// TagOptions holds flags for the tag command.
type TagOptions struct {
	storeOptions
	Remove bool
}

// NewTagCommand creates the tag command.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TagOptions{storeOptions: storeOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:           "tag <version> <tag>",
		Short:         "Add or remove a version tag",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTag(opts, args[0], args[1], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Remove, "remove", false, "remove the tag instead of adding it")
	return cmd
}

func runTag(opts *TagOptions, arg, tag string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	n, err := parseVersionNumber(arg)
	if err != nil {
		formatter.Error(ErrCodeBadRequest, err.Error(), nil)
		return err
	}

	s, err := opts.openStore()
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer s.Close()

	h, err := opts.loadHistory(ctx, s)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}

	v, ok := h.GetVersion(n)
	if !ok {
		msg := fmt.Sprintf("version %d: %v", n, version.ErrVersionNotFound)
		formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	var text string
	if opts.Remove {
		if h.RemoveTagFromVersion(n, tag) {
			text = fmt.Sprintf("removed tag %q from version %d\n", tag, n)
		} else {
			text = fmt.Sprintf("version %d does not carry tag %q\n", n, tag)
		}
	} else {
		if err := h.AddTagToVersion(n, tag); err != nil {
			formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "tagging version", err)
		}
		text = fmt.Sprintf("tagged version %d with %q\n", n, tag)
	}

	if err := s.SaveHistory(ctx, h); err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "saving history", err)
	}
	return formatter.SuccessText(text, v.Meta)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &storeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored histories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "specfold.db", "path to the history database")
	return cmd
}

func runList(opts *storeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	s, err := opts.openStore()
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return err
	}
	defer s.Close()

	infos, err := s.ListHistories(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing histories", err)
	}

	var b strings.Builder
	if len(infos) == 0 {
		b.WriteString("no histories\n")
	}
	for _, info := range infos {
		fmt.Fprintf(&b, "%s  versions=%d  updated=%s\n",
			info.ID, info.CurrentVersion, info.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	}
	return formatter.SuccessText(b.String(), infos)
}

func parseVersionNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid version number %q", s))
	}
	return n, nil
}
