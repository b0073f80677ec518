package impulse

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Trial is the record of one completed run.
type Trial struct {
	ID          uuid.UUID `json:"id"`
	Number      int       `json:"number"`
	Events      []Event   `json:"events"`
	MeasuredMs  float64   `json:"measured_ms"`
	PredictedMs float64   `json:"predicted_ms"`
}

// WriteTimeline prints the trial's events relative to the stimulus.
func (t Trial) WriteTimeline(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "=== Reflex timeline (trial %d) ===\n", t.Number); err != nil {
		return err
	}
	for _, e := range t.Events {
		if _, err := fmt.Fprintf(w, "%7.2f ms : %s\n", e.OffsetMs, e.Label); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total latency: %.2f ms (predicted %.2f ms)\n", t.MeasuredMs, t.PredictedMs)
	return err
}
