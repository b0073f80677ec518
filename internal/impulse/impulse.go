// Package impulse implements the signal token that travels the reflex arc,
// along with the Segment data model it walks.
//
// The Impulse is a tick-driven state machine. The caller owns the frame loop
// and calls Update(dt) once per frame; Start and TogglePause are the only
// other operations that change run state:
//
//	idle/finished --Start--> traveling --arrive--> waiting_at_synapse
//	     ^                      |  ^                   |
//	     |                      |  +-------------------+
//	     +------ last leg ------+
//
// traveling and waiting_at_synapse can be paused; the run clock stops while
// paused, so measured latency excludes the pause.
package impulse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/cxd309/reflex-engine/internal/arc"
	"github.com/cxd309/reflex-engine/internal/latency"
	"github.com/cxd309/reflex-engine/internal/logging"
)

// Status describes where the impulse is in its run.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusTraveling        Status = "traveling"
	StatusWaitingAtSynapse Status = "waiting_at_synapse"
	StatusPaused           Status = "paused"
	StatusFinished         Status = "finished"
)

// Event labels written to the run's event log.
const (
	EventStimulus    = "Stimulus"
	EventReached     = "Reached "
	EventContraction = "Muscle contracts"
)

// Demo defaults.
const (
	DefaultSpeed  = 300.0 // distance units per second
	DefaultDelay1 = 0.003 // seconds
	DefaultDelay2 = 0.003 // seconds
)

// focusFraction of the first leg still counts as being at the origin station.
const focusFraction = 0.20

// ErrInvalidSpeed is returned for speeds that are not finite and positive.
var ErrInvalidSpeed = errors.New("speed must be finite and greater than zero")

// Options configures a new Impulse. The configured speed and delays also
// serve as the values Reset restores.
type Options struct {
	Speed  float64
	Delay1 float64
	Delay2 float64

	// Limits bound the nudge operations and the delay setters.
	// The zero value selects DefaultLimits.
	Limits Limits

	// Clock defaults to clockwork's real clock.
	Clock Clock

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// DefaultOptions returns the demo configuration.
func DefaultOptions() Options {
	return Options{
		Speed:  DefaultSpeed,
		Delay1: DefaultDelay1,
		Delay2: DefaultDelay2,
		Limits: DefaultLimits(),
	}
}

// Event is one timestamped milestone of a run.
type Event struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`

	// OffsetMs is run-clock time since the stimulus, excluding pauses.
	OffsetMs float64 `json:"offset_ms"`
}

// Impulse is the single in-flight signal. It is not safe for concurrent use;
// all calls are expected from the frame loop's goroutine.
type Impulse struct {
	layout   arc.Layout
	defaults Options
	limits   Limits
	clock    Clock
	log      *slog.Logger

	speed    float64
	delay1   float64
	delay2   float64
	segments []Segment

	status       Status
	resumeStatus Status
	index        int
	dist         float64
	wait         float64

	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	runID     uuid.UUID
	events    []Event
	trials    int
	lastTrial *Trial
}

// New creates an idle Impulse on layout.
func New(layout arc.Layout, opts Options) (*Impulse, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if !validSpeed(opts.Speed) {
		return nil, fmt.Errorf("speed %v: %w", opts.Speed, ErrInvalidSpeed)
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if err := opts.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = defaultClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	opts.Delay1 = opts.Limits.clampDelay(opts.Delay1)
	opts.Delay2 = opts.Limits.clampDelay(opts.Delay2)

	imp := &Impulse{
		layout:   layout,
		defaults: opts,
		limits:   opts.Limits,
		clock:    opts.Clock,
		log:      opts.Logger,
		speed:    opts.Speed,
		delay1:   opts.Delay1,
		delay2:   opts.Delay2,
		status:   StatusIdle,
	}
	imp.rebuildSegments()
	return imp, nil
}

// Start fires a stimulus. While a run is in flight it does nothing; while
// paused it resumes instead of restarting.
func (imp *Impulse) Start() {
	switch imp.status {
	case StatusTraveling, StatusWaitingAtSynapse:
		return
	case StatusPaused:
		imp.resume()
		return
	}

	now := imp.clock.Now()
	imp.startedAt = now
	imp.pausedTotal = 0
	imp.index = 0
	imp.dist = 0
	imp.wait = 0
	imp.trials++
	imp.runID = uuid.New()
	imp.events = []Event{{Label: EventStimulus, At: now}}
	imp.status = StatusTraveling

	imp.log.Debug("stimulus", "trial", imp.trials, "run_id", imp.runID)
}

// TogglePause pauses an in-flight run or resumes a paused one. It has no
// effect when no run is active.
func (imp *Impulse) TogglePause() {
	switch imp.status {
	case StatusTraveling, StatusWaitingAtSynapse:
		imp.resumeStatus = imp.status
		imp.status = StatusPaused
		imp.pausedAt = imp.clock.Now()
		imp.log.Debug("paused", "trial", imp.trials, "resume_to", imp.resumeStatus)
	case StatusPaused:
		imp.resume()
	}
}

func (imp *Impulse) resume() {
	imp.pausedTotal += imp.clock.Now().Sub(imp.pausedAt)
	imp.status = imp.resumeStatus
	imp.log.Debug("resumed", "trial", imp.trials, "status", imp.status, "paused_total", imp.pausedTotal)
}

// Update advances the run by dt seconds. Negative, NaN or infinite dt counts
// as zero.
// Time left over after reaching a station or finishing a synapse hold is
// spent on the next phase within the same call.
func (imp *Impulse) Update(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		dt = 0
	}

	remaining := dt
	for {
		switch imp.status {
		case StatusTraveling:
			seg := imp.segments[imp.index]
			imp.dist += imp.speed * remaining
			if imp.dist < seg.length {
				return
			}
			remaining = (imp.dist - seg.length) / imp.speed
			imp.dist = seg.length
			imp.arrive(seg)

		case StatusWaitingAtSynapse:
			if remaining < imp.wait {
				imp.wait -= remaining
				return
			}
			remaining -= imp.wait
			imp.wait = 0
			imp.advance()

		default:
			return
		}
	}
}

func (imp *Impulse) arrive(seg Segment) {
	imp.record(EventReached + seg.destination)
	imp.log.Log(context.Background(), logging.LevelTrace, "station reached",
		"trial", imp.trials, "station", seg.destination, "synapse_delay", seg.synapseDelay)

	if seg.synapseDelay > 0 {
		imp.wait = seg.synapseDelay
		imp.status = StatusWaitingAtSynapse
		return
	}
	imp.advance()
}

func (imp *Impulse) advance() {
	if imp.index == len(imp.segments)-1 {
		imp.finish()
		return
	}
	imp.index++
	imp.dist = 0
	imp.status = StatusTraveling
}

func (imp *Impulse) finish() {
	imp.record(EventContraction)
	measured := latency.MeasuredMs(imp.elapsed())
	predicted := imp.PredictedLatencyMs()

	events := make([]Event, len(imp.events))
	copy(events, imp.events)
	imp.lastTrial = &Trial{
		ID:          imp.runID,
		Number:      imp.trials,
		Events:      events,
		MeasuredMs:  measured,
		PredictedMs: predicted,
	}
	imp.status = StatusFinished

	imp.log.Info("reflex completed",
		"trial", imp.trials, "run_id", imp.runID,
		"measured_ms", measured, "predicted_ms", predicted)
}

func (imp *Impulse) record(label string) {
	imp.events = append(imp.events, Event{
		Label:    label,
		At:       imp.clock.Now(),
		OffsetMs: latency.MeasuredMs(imp.elapsed()),
	})
}

// elapsed is run-clock time since the stimulus, excluding time spent paused.
func (imp *Impulse) elapsed() time.Duration {
	if imp.trials == 0 {
		return 0
	}
	now := imp.clock.Now()
	if imp.status == StatusPaused {
		now = imp.pausedAt
	}
	return now.Sub(imp.startedAt) - imp.pausedTotal
}

// SetSpeed changes the travel speed, effective from the next Update.
func (imp *Impulse) SetSpeed(v float64) error {
	if !validSpeed(v) {
		return fmt.Errorf("speed %v: %w", v, ErrInvalidSpeed)
	}
	imp.speed = v
	imp.log.Debug("speed changed", "speed", v)
	return nil
}

// SetDelay1 sets the sensory-to-spinal synapse delay, clamped to
// [0, Limits.MaxDelay], and rebuilds the segments.
func (imp *Impulse) SetDelay1(v float64) {
	imp.delay1 = imp.limits.clampDelay(v)
	imp.rebuildSegments()
	imp.log.Debug("delay changed", "synapse", 1, "delay", imp.delay1)
}

// SetDelay2 sets the spinal-to-motor synapse delay, clamped to
// [0, Limits.MaxDelay], and rebuilds the segments.
func (imp *Impulse) SetDelay2(v float64) {
	imp.delay2 = imp.limits.clampDelay(v)
	imp.rebuildSegments()
	imp.log.Debug("delay changed", "synapse", 2, "delay", imp.delay2)
}

// Reset restores the configured speed and delays. Run state is untouched:
// an in-flight or paused run carries on.
func (imp *Impulse) Reset() {
	imp.speed = imp.defaults.Speed
	imp.delay1 = imp.defaults.Delay1
	imp.delay2 = imp.defaults.Delay2
	imp.rebuildSegments()
	imp.log.Debug("configuration reset", "speed", imp.speed, "delay1", imp.delay1, "delay2", imp.delay2)
}

// rebuildSegments replaces the segment list in place. The current index and
// distance are kept; a pending synapse countdown is not changed.
func (imp *Impulse) rebuildSegments() {
	imp.segments = buildSegments(imp.layout, imp.delay1, imp.delay2)
}

// Status returns the current run state.
func (imp *Impulse) Status() Status { return imp.status }

// Speed returns the travel speed in distance units per second.
func (imp *Impulse) Speed() float64 { return imp.speed }

// Delay1 returns the sensory-to-spinal synapse delay in seconds.
func (imp *Impulse) Delay1() float64 { return imp.delay1 }

// Delay2 returns the spinal-to-motor synapse delay in seconds.
func (imp *Impulse) Delay2() float64 { return imp.delay2 }

// Limits returns the adjustment bounds in force.
func (imp *Impulse) Limits() Limits { return imp.limits }

// TrialCount is the number of runs started so far.
func (imp *Impulse) TrialCount() int { return imp.trials }

// SegmentIndex is the index of the leg being travelled or waited on.
func (imp *Impulse) SegmentIndex() int { return imp.index }

// DistanceIntoSegment is the distance travelled along the current segment.
func (imp *Impulse) DistanceIntoSegment() float64 { return imp.dist }

// Paused reports whether a run is frozen by TogglePause.
func (imp *Impulse) Paused() bool { return imp.status == StatusPaused }

// Active reports whether a run is in flight, paused or not.
func (imp *Impulse) Active() bool {
	switch imp.status {
	case StatusTraveling, StatusWaitingAtSynapse, StatusPaused:
		return true
	}
	return false
}

// Visible reports whether the token should be drawn.
func (imp *Impulse) Visible() bool { return imp.Active() || imp.wait > 0 }

// Segments returns a copy of the current segment list.
func (imp *Impulse) Segments() []Segment {
	segs := make([]Segment, len(imp.segments))
	copy(segs, imp.segments)
	return segs
}

// Position is the token's current point on the arc.
func (imp *Impulse) Position() orb.Point {
	return imp.segments[imp.index].PointAt(imp.dist)
}

// CurrentDestination names the station the current segment ends at, or ""
// when no run is active.
func (imp *Impulse) CurrentDestination() string {
	if !imp.Active() {
		return ""
	}
	return imp.segments[imp.index].destination
}

// CurrentFocusStation names the station a presentation should highlight:
// the origin while idle or just after the stimulus, otherwise the current
// destination.
func (imp *Impulse) CurrentFocusStation() string {
	if !imp.Active() {
		return imp.layout.Origin()
	}
	if imp.index == 0 && imp.dist < math.Max(1.0, imp.segments[0].length*focusFraction) {
		return imp.layout.Origin()
	}
	return imp.segments[imp.index].destination
}

// ProgressPercent is how far along the current segment the token is, 0..100.
func (imp *Impulse) ProgressPercent() float64 {
	seg := imp.segments[imp.index]
	if seg.length == 0 {
		return 0
	}
	return math.Min(100, 100*imp.dist/seg.length)
}

// SynapseWaitRemainingMs is the hold time left at the current synapse.
func (imp *Impulse) SynapseWaitRemainingMs() float64 {
	return math.Max(0, imp.wait) * 1000
}

// LastMeasuredLatencyMs returns the latency of the most recently completed
// run. ok is false until a run completes.
func (imp *Impulse) LastMeasuredLatencyMs() (ms float64, ok bool) {
	if imp.lastTrial == nil {
		return 0, false
	}
	return imp.lastTrial.MeasuredMs, true
}

// LastTrial returns the most recently completed run.
func (imp *Impulse) LastTrial() (Trial, bool) {
	if imp.lastTrial == nil {
		return Trial{}, false
	}
	return *imp.lastTrial, true
}

// PredictedLatencyMs is the expected stimulus-to-contraction time for the
// current speed and delays.
func (imp *Impulse) PredictedLatencyMs() float64 {
	return latency.PredictedMs(imp.layout.TotalLength(), imp.speed, imp.delay1, imp.delay2)
}

// EventLog returns the current run's events. It is empty before the first run.
func (imp *Impulse) EventLog() []Event {
	events := make([]Event, len(imp.events))
	copy(events, imp.events)
	return events
}

func validSpeed(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
