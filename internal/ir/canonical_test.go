package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zebra": int64(1),
		"alpha": int64(2),
		"mango": int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mango":3,"zebra":1}`, string(out))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{"expr": "a < b && c > d"})
	require.NoError(t, err)
	assert.Equal(t, `{"expr":"a < b && c > d"}`, string(out))
}

func TestMarshalCanonicalFloats(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"integral", 1, "1"},
		{"zero", 0, "0"},
		{"fraction", 0.85, "0.85"},
		{"shortest_form", 0.1, "0.1"},
		{"small_exponent", 1e-7, "1e-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestMarshalCanonicalRejectsNullAndNonFinite(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshalCanonicalPreservesLargeIntegers(t *testing.T) {
	// 2^53 + 1 cannot round-trip through float64.
	out, err := MarshalCanonical(json.Number("9007199254740993"))
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", string(out))
}

func TestCanonicalDocumentIsDeterministic(t *testing.T) {
	a, err := CanonicalDocument(sampleDocument())
	require.NoError(t, err)
	b, err := CanonicalDocument(sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCanonicalDocumentRoundTrips(t *testing.T) {
	canonical, err := CanonicalDocument(sampleDocument())
	require.NoError(t, err)

	back, err := DecodeDocument(canonical)
	require.NoError(t, err)
	assert.True(t, sampleDocument().Equal(back))
}
