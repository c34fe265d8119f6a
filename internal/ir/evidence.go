package ir

import "github.com/google/uuid"

// NewEvidenceRecord builds an evidence record with a fresh UUIDv7 id.
// V7 is time-ordered, so records created later sort later, which keeps
// evidence listings stable without a separate sequence column.
func NewEvidenceRecord(fields map[string]string) EvidenceRecord {
	rec := make(EvidenceRecord, len(fields)+1)
	for k, v := range fields {
		rec[k] = v
	}
	rec["id"] = uuid.Must(uuid.NewV7()).String()
	return rec
}

// Keys returns the record's keys in ascending order for deterministic
// rendering.
func (r EvidenceRecord) Keys() []string {
	return sortedKeys(r)
}
