package contract

import "time"

// Stage names a pipeline step for failure accounting
type Stage string

const (
	StageAuth  Stage = "auth"
	StageKeys  Stage = "keys"
	StageFetch Stage = "fetch"
	StageWrite Stage = "write"
)

// Recorder receives run statistics, typically a metrics collector
type Recorder interface {
	ObservePage(fetched, admitted, rejected int)
	ObserveFailure(stage Stage)
	ObserveWrite(rows int, retrieved time.Time)
	ObserveRun(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObservePage(int, int, int) {}
func (nopRecorder) ObserveFailure(Stage) {}
func (nopRecorder) ObserveWrite(int, time.Time) {}
func (nopRecorder) ObserveRun(time.Duration) {}
