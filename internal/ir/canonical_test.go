package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", int64(42), "42"},
		{"negative int", -100, "-100"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"nil", nil, "null"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []any{1, 2, 3}, "[1,2,3]"},
		{"string value", NewString("Bob"), `{"t":"string","v":"Bob"}`},
		{"null value", Null{}, `{"t":"null"}`},
		{"int value", NewInt(7), `{"t":"int","v":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"b": 1, "a": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as the surrogate pair 0xD800 0xDC00, which sorts before 0xE000.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = MarshalCanonical(map[string]any{"x": float32(2)})
	require.Error(t, err)
}

func TestMarshalCanonicalRejectsUnknownTypes(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalExactKeepsBytes(t *testing.T) {
	decomposed := "Jose\u0301"

	result, err := marshalExact(map[string]any{decomposed: decomposed})
	require.NoError(t, err)
	assert.Equal(t, `{"`+decomposed+`":"`+decomposed+`"}`, string(result))

	_, err = marshalExact("a\xffb")
	require.Error(t, err)
	_, err = marshalExact(map[string]any{"a\xffb": "x"})
	require.Error(t, err)
}

func TestMarshalCanonicalU2028U2029NotEscaped(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	// A literal backslash followed by "u2028" must stay escaped.
	result, err := MarshalCanonical(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	result, err := MarshalCanonical("quote\" back\\ tab\t")
	require.NoError(t, err)
	assert.Equal(t, `"quote\" back\\ tab\t"`, string(result))
}

func FuzzMarshalCanonicalIdempotent(f *testing.F) {
	f.Add("hello")
	f.Add("<&>")
	f.Add("\u2028")
	f.Add(`\u2028`)
	f.Fuzz(func(t *testing.T, s string) {
		first, err := MarshalCanonical(s)
		if err != nil {
			return
		}
		second, err := MarshalCanonical(s)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
