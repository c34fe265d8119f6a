package version

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/specfold/specfold/internal/ir"
)

// historyWire is the serialized history form. current_version is
// derived on encode and cross-checked on decode.
type historyWire struct {
	ID             string     `json:"id"`
	CurrentVersion int        `json:"current_version"`
	Versions       []*Version `json:"versions"`
}

// EncodeHistory serializes the full history, all versions included.
func EncodeHistory(h *History) ([]byte, error) {
	w := historyWire{
		ID:             h.ID(),
		CurrentVersion: h.CurrentVersion(),
		Versions:       h.versions,
	}
	return ir.EncodeJSON(w)
}

// DecodeHistory parses a serialized history and rebuilds it, enforcing
// the numbering invariants and validating every stored document. A
// decoded history continues where the encoded one left off: appending
// yields the next version number.
func DecodeHistory(data []byte) (*History, error) {
	var w historyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	var errs []error
	for i, v := range w.Versions {
		if v == nil {
			errs = append(errs, &ir.DecodeError{
				Field:   fmt.Sprintf("versions[%d]", i),
				Message: "version entry is null",
			})
			continue
		}
		if v.IR == nil {
			errs = append(errs, &ir.DecodeError{
				Field:   fmt.Sprintf("versions[%d].ir", i),
				Message: "missing document",
			})
			continue
		}
		for _, verr := range v.IR.Validate() {
			errs = append(errs, &ir.DecodeError{
				Field:   fmt.Sprintf("versions[%d].ir.%s", i, verr.Field),
				Message: verr.Message,
			})
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("decode history: %w", errors.Join(errs...))
	}
	for _, v := range w.Versions {
		v.IR.Normalize()
	}
	h, err := Rebuild(w.ID, w.Versions)
	if err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if w.CurrentVersion != h.CurrentVersion() {
		return nil, fmt.Errorf("decode history: current_version %d does not match %d stored versions", w.CurrentVersion, h.CurrentVersion())
	}
	return h, nil
}
