package recorder

import (
	"time"

	"RSIWatch/internal/model"
)

// NoopRecorder is used when no metrics listener is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFetch(_ string, _ error)                {}
func (n *NoopRecorder) RecordRSI(_ string, _ int, _ model.RSIResult) {}
func (n *NoopRecorder) RecordEvents(_ []model.ExtremeEvent)          {}
func (n *NoopRecorder) RecordDelivery(_ string, _ bool)              {}
func (n *NoopRecorder) RecordRun(_ time.Duration, _ error)           {}
