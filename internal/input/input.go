// Package input defines the boundary between the tracker core and the
// input-producing side. Hook registration against the OS is a platform
// concern and lives outside this module; anything that can call a
// Recorder is a valid source.
package input

// Recorder is the sink side of the tracker's producer API. Calls may
// arrive on arbitrary goroutines and at arbitrary rates.
type Recorder interface {
	RecordPointerAction()
	RecordKeyDown(key string)
	RecordKeyUp(key string)
}

// Source feeds a Recorder until stopped.
type Source interface {
	Start(rec Recorder)
	Stop()
}
