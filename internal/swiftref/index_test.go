package swiftref

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already normalized", in: "ABSAZAXXX", want: "ABSAZAXXX"},
		{name: "lower case", in: "absazaxxx", want: "ABSAZAXXX"},
		{name: "mixed case with surrounding whitespace", in: "  AbSaZaXxX\t", want: "ABSAZAXXX"},
		{name: "interior whitespace", in: "absa zaxxx", want: "ABSAZAXXX"},
		{name: "blank", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIndexContains_NormalizesBeforeLookup(t *testing.T) {
	idx := New([]Record{
		{BIC: "ABSAZAXXX"},
		{BIC: " fnbzajjxxx "}, // dataset entries are normalized too
		{BIC: ""},
	})

	assert.Equal(t, 2, idx.Len())

	// Identical verdict regardless of input casing or whitespace.
	assert.True(t, idx.Contains("ABSAZAXXX"))
	assert.True(t, idx.Contains("absa zaxxx"))
	assert.True(t, idx.Contains("  AbsaZAxxx "))
	assert.True(t, idx.Contains("FNBZAJJXXX"))

	assert.False(t, idx.Contains("DEUTDEFFXXX"))
	assert.False(t, idx.Contains(""))
	assert.False(t, idx.Contains("   "))
}

func TestEmptyIndex_AllLookupsMiss(t *testing.T) {
	idx := Empty()
	assert.Equal(t, 0, idx.Len())
	assert.False(t, idx.Contains("ABSAZAXXX"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swift.json")
	payload := `[{"bic":"ABSAZAXXX","bankName":"Absa Bank"},{"bic":"SBZAZAJJ","bankName":"Standard Bank"}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	idx, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("sbzazajj"))
}

func TestLoadFile_MissingOrMalformed(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
