package instrument

// NoopRecorder discards all events. Used when request recording is disabled.
type NoopRecorder struct{}

func (NoopRecorder) Record(Event) {}

func (NoopRecorder) Recent(int) []Event { return nil }
