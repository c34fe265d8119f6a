package version

import (
	"fmt"
	"strings"
	"time"
)

// ChangeLog renders version metadata for the inclusive range start..end
// as ordered human-readable text, newest first. Pass 0 for either bound
// to mean "unbounded" (full history). Purely a formatting function: no
// side effects, no mutation.
//
// Returns ErrVersionNotFound when an explicit bound names a version
// that does not exist.
func (h *History) ChangeLog(start, end int) (string, error) {
	if start == 0 {
		start = 1
	}
	if end == 0 {
		end = len(h.versions)
	}
	if len(h.versions) == 0 {
		return "(no versions)\n", nil
	}
	if start < 1 || start > len(h.versions) {
		return "", fmt.Errorf("change log: version %d: %w", start, ErrVersionNotFound)
	}
	if end < start || end > len(h.versions) {
		return "", fmt.Errorf("change log: version %d: %w", end, ErrVersionNotFound)
	}

	var b strings.Builder
	for n := end; n >= start; n-- {
		v := h.versions[n-1]
		writeLogEntry(&b, v)
	}
	return b.String(), nil
}

func writeLogEntry(b *strings.Builder, v *Version) {
	fmt.Fprintf(b, "version %d", v.Meta.Version)
	if v.Meta.ParentVersion == nil {
		b.WriteString(" (root)")
	}
	fmt.Fprintf(b, "  %s", v.Meta.CreatedAt.UTC().Format(time.RFC3339))
	if v.Meta.Author != "" {
		fmt.Fprintf(b, "  author=%s", v.Meta.Author)
	}
	if len(v.Meta.Tags) > 0 {
		fmt.Fprintf(b, "  tags=[%s]", strings.Join(v.Meta.Tags, " "))
	}
	b.WriteByte('\n')

	if v.Meta.ChangeSummary != "" {
		fmt.Fprintf(b, "    %s\n", v.Meta.ChangeSummary)
	}
	if d := v.Meta.DiffFromParent; d != nil && !d.Empty() {
		fmt.Fprintf(b, "    %d change(s) from parent, similarity %.2f\n", len(d.All()), d.Similarity())
	}
	b.WriteByte('\n')
}
