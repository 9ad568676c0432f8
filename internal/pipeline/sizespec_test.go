package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
)

var testParser = SizeSpecParser{SizeColumn: "file_size", FilenameColumn: "file_name"}

func TestSizeSpecParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		row      model.Row
		wantKB   int
		wantName string
		warns    int
	}{
		{
			name:   "numeric string",
			row:    model.Row{{Name: "name", Value: "Alice"}, {Name: "file_size", Value: "120"}},
			wantKB: 120,
		},
		{
			name:   "padded string",
			row:    model.Row{{Name: "file_size", Value: " 42 "}},
			wantKB: 42,
		},
		{
			name:   "integer column",
			row:    model.Row{{Name: "file_size", Value: int64(300)}},
			wantKB: 300,
		},
		{
			name:   "fraction truncates",
			row:    model.Row{{Name: "file_size", Value: 120.9}},
			wantKB: 120,
		},
		{
			name:   "below one KB is absent",
			row:    model.Row{{Name: "file_size", Value: "0.5"}},
			wantKB: 0,
		},
		{
			name:   "negative is absent without warning",
			row:    model.Row{{Name: "file_size", Value: -5}},
			wantKB: 0,
		},
		{
			name:   "malformed warns",
			row:    model.Row{{Name: "name", Value: "Bob"}, {Name: "file_size", Value: "abc"}},
			wantKB: 0,
			warns:  1,
		},
		{
			name:   "absurdly large warns",
			row:    model.Row{{Name: "file_size", Value: "1e12"}},
			wantKB: 0,
			warns:  1,
		},
		{
			name:   "null column",
			row:    model.Row{{Name: "file_size", Value: nil}, {Name: "file_name", Value: nil}},
			wantKB: 0,
		},
		{
			name:   "missing columns",
			row:    model.Row{{Name: "name", Value: "Carol"}},
			wantKB: 0,
		},
		{
			name:     "filename is trimmed",
			row:      model.Row{{Name: "file_name", Value: "  bob report  "}, {Name: "file_size", Value: "10"}},
			wantKB:   10,
			wantName: "bob report",
		},
		{
			name:     "numeric filename",
			row:      model.Row{{Name: "file_name", Value: int64(7)}},
			wantName: "7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, restore := logger.Capture()
			defer restore()

			spec := testParser.Parse(tt.row, 3)
			assert.Equal(t, tt.wantKB, spec.TargetKB)
			assert.Equal(t, tt.wantName, spec.Filename)
			assert.Len(t, rec.Entries(logger.WarnLevel), tt.warns)
		})
	}
}

func TestSizeSpecParser_WarningCarriesRowIndex(t *testing.T) {
	rec, restore := logger.Capture()
	defer restore()

	testParser.Parse(model.Row{{Name: "file_size", Value: "abc"}}, 4)

	warns := rec.Entries(logger.WarnLevel)
	require.Len(t, warns, 1)
	assert.Equal(t, 4, warns[0].Value("row"))
	assert.Equal(t, "abc", warns[0].Value("value"))
}
