package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		in      interface{}
		want    float64
		wantErr bool
	}{
		{"integer string", "120", 120, false},
		{"padded string", "  64 ", 64, false},
		{"decimal string", "120.7", 120.7, false},
		{"exponent string", "1e3", 1000, false},
		{"negative string", "-5", -5, false},
		{"bytes", []byte("42"), 42, false},
		{"int64", int64(300), 300, false},
		{"float64", 2.5, 2.5, false},
		{"uint8 via reflection", uint8(7), 7, false},
		{"garbage", "abc", 0, true},
		{"empty", "", 0, true},
		{"nil", nil, 0, true},
		{"nan", "NaN", 0, true},
		{"infinity", "inf", 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "N/A"},
		{"Alice", "Alice"},
		{[]byte("raw"), "raw"},
		{int64(34), "34"},
		{12.5, "12.5"},
		{12.0, "12.0"},
		{1e21, "1e+21"},
		{true, "True"},
		{time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), "2024-01-15 09:30:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in))
	}
}

func TestOutputManager(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "out")
	om := NewOutputManager(base)

	require.NoError(t, om.EnsureOutputDirExists())
	require.NoError(t, om.EnsureOutputDirExists(), "creation is idempotent")

	assert.Equal(t, filepath.Join(base, "x.pdf"), om.ArtifactPath("../../x.pdf"))

	path := om.ArtifactPath("a.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o644))
	size, err := GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), size)

	_, err = GetFileSize(om.ArtifactPath("missing.pdf"))
	assert.Error(t, err)
}
