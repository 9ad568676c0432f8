package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_RecordsLevelsAndKeyVals(t *testing.T) {
	rec, restore := Capture()
	defer restore()

	Debug("debug message")
	Warn("bad size", "row", 3, "value", "abc")
	Error("boom")

	warns := rec.Entries(WarnLevel)
	require.Len(t, warns, 1)
	assert.Equal(t, "bad size", warns[0].Msg)
	assert.Equal(t, 3, warns[0].Value("row"))
	assert.Equal(t, "abc", warns[0].Value("value"))
	assert.Nil(t, warns[0].Value("missing"))
	assert.Len(t, rec.Entries(""), 3)
}

func TestSlogFunc_ForwardsAtMatchingLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	SetLogger(SlogFunc(l))
	defer SetLogger(nil)

	Info("hidden")
	Warn("shown", "target_kb", 120)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "target_kb=120")
}
