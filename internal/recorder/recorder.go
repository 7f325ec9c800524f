package recorder

import (
	"time"

	"RSIWatch/internal/model"
)

// Recorder receives the outcomes of a run for monitoring.
type Recorder interface {
	RecordFetch(symbol string, err error)
	RecordRSI(symbol string, period int, result model.RSIResult)
	RecordEvents(events []model.ExtremeEvent)
	RecordDelivery(endpoint string, ok bool)
	RecordRun(duration time.Duration, err error)
}
