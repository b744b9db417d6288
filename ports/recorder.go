package ports

// Recorder is the diagnostics sink handed to every core component at
// construction. Components never reach for a global logger; callers decide
// where diagnostics go.
type Recorder interface {
	Error(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// NopRecorder discards all diagnostics. Useful in tests.
type NopRecorder struct{}

func (NopRecorder) Error(string, ...interface{}) {}
func (NopRecorder) Warn(string, ...interface{})  {}
func (NopRecorder) Info(string, ...interface{})  {}
func (NopRecorder) Debug(string, ...interface{}) {}
