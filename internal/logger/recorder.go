package logger

import "sync"

// Entry is one captured log record
type Entry struct {
	Level   LogLevel
	Msg     string
	KeyVals []interface{}
}

// Value returns the value paired with key, or nil
func (e Entry) Value(key string) interface{} {
	for i := 0; i+1 < len(e.KeyVals); i += 2 {
		if k, ok := e.KeyVals[i].(string); ok && k == key {
			return e.KeyVals[i+1]
		}
	}
	return nil
}

// Recorder keeps log records in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Func returns a LogFunc that appends to the recorder
func (r *Recorder) Func() LogFunc {
	return func(level LogLevel, msg string, keyvals ...interface{}) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries = append(r.entries, Entry{Level: level, Msg: msg, KeyVals: keyvals})
	}
}

// Entries returns the captured records at level, or all records if level is empty
func (r *Recorder) Entries(level LogLevel) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Capture installs a fresh recorder as the global logger and returns it
// along with a function restoring the previous logger.
func Capture() (*Recorder, func()) {
	prev := logFunc
	rec := &Recorder{}
	logFunc = rec.Func()
	return rec, func() { logFunc = prev }
}
