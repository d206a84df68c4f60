// Package stepper implements the press-and-hold numeric range control.
package stepper

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/bobmcallan/raymonds/internal/common"
)

// Phase is the press state.
type Phase int

const (
	Idle Phase = iota
	PressedWaiting
	Repeating
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PressedWaiting:
		return "pressed-waiting"
	case Repeating:
		return "repeating"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Thumb selects which end of the range a press adjusts.
type Thumb int

const (
	Low Thumb = iota
	High
)

// ParseThumb accepts "low"/"min" and "high"/"max".
func ParseThumb(s string) (Thumb, error) {
	switch s {
	case "low", "min":
		return Low, nil
	case "high", "max":
		return High, nil
	}
	return Low, fmt.Errorf("unknown thumb %q", s)
}

// Direction is the sign of a step.
type Direction int

const (
	Down Direction = -1
	Up   Direction = 1
)

// ParseDirection accepts "up"/"inc" and "down"/"dec".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "inc", "+":
		return Up, nil
	case "down", "dec", "-":
		return Down, nil
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// Range is a paired (low, high) value.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Config bounds and paces a RangeStepper.
type Config struct {
	Min            float64
	Max            float64
	Step           float64
	Delay          time.Duration
	Interval       time.Duration
	AccelIncrement float64
	MaxAccel       float64
}

// ConfigFromCommon converts the [stepper] config section.
func ConfigFromCommon(c common.StepperConfig) Config {
	return Config{
		Min:            c.Min,
		Max:            c.Max,
		Step:           c.Step,
		Delay:          c.GetDelay(),
		Interval:       c.GetInterval(),
		AccelIncrement: c.AccelIncrement,
		MaxAccel:       c.MaxAccel,
	}
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = 1
	}
	if c.Max <= c.Min {
		c.Min, c.Max = 0, 120
	}
	if c.Max-c.Min < c.Step {
		c.Max = c.Min + c.Step
	}
	if c.Delay <= 0 {
		c.Delay = 300 * time.Millisecond
	}
	if c.Interval <= 0 {
		c.Interval = 80 * time.Millisecond
	}
	if c.AccelIncrement <= 0 {
		c.AccelIncrement = 0.5
	}
	if c.MaxAccel < 1 {
		c.MaxAccel = 5
	}
	return c
}

// RangeStepper adjusts a Range one step per press, then repeatedly with
// growing magnitude while the press is held.
//
// Every exit from a press goes through cancel, which stops the pending timer,
// bumps the generation and resets the multiplier. A timer callback carrying
// an old generation does nothing.
type RangeStepper struct {
	cfg    Config
	sched  Scheduler
	logger *common.Logger

	mu       sync.Mutex
	rng      Range
	phase    Phase
	accel    float64
	gen      uint64
	timer    Timer
	thumb    Thumb
	dir      Direction
	ticks    int
	onChange func(Range)
}

// Option configures a RangeStepper.
type Option func(*RangeStepper)

func WithScheduler(s Scheduler) Option {
	return func(r *RangeStepper) {
		if s != nil {
			r.sched = s
		}
	}
}

func WithLogger(l *common.Logger) Option {
	return func(r *RangeStepper) {
		r.logger = l
	}
}

// WithOnChange registers a callback receiving each new range. It runs
// outside the stepper's lock.
func WithOnChange(fn func(Range)) Option {
	return func(r *RangeStepper) {
		r.onChange = fn
	}
}

// New creates a stepper starting at the full [Min, Max] range.
func New(cfg Config, opts ...Option) *RangeStepper {
	cfg = cfg.withDefaults()
	r := &RangeStepper{
		cfg:    cfg,
		sched:  RealScheduler,
		logger: common.NewSilentLogger(),
		rng:    Range{Low: cfg.Min, High: cfg.Max},
		accel:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RangeStepper) Config() Config {
	return r.cfg
}

func (r *RangeStepper) Range() Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng
}

func (r *RangeStepper) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Accel returns the current multiplier.
func (r *RangeStepper) Accel() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accel
}

// Ticks returns the number of repeat ticks applied during the current press.
func (r *RangeStepper) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Press applies one step immediately and arms the hold delay. Pressing
// while already pressed restarts the press.
func (r *RangeStepper) Press(thumb Thumb, dir Direction) Range {
	r.mu.Lock()
	r.cancel()
	r.thumb, r.dir = thumb, dir
	r.phase = PressedWaiting
	changed := r.apply(r.cfg.Step)
	gen := r.gen
	r.timer = r.sched.AfterFunc(r.cfg.Delay, func() { r.startRepeating(gen) })
	rng := r.rng
	r.mu.Unlock()

	r.logger.Debug().Str("phase", PressedWaiting.String()).Float64("low", rng.Low).Float64("high", rng.High).Msg("Stepper pressed")
	r.notify(changed, rng)
	return rng
}

// Release ends the press from any state.
func (r *RangeStepper) Release() Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel()
	return r.rng
}

// Leave is a pointer leaving the control; it ends the press like Release.
func (r *RangeStepper) Leave() Range {
	return r.Release()
}

// Close stops any pending timer. The stepper stays usable.
func (r *RangeStepper) Close() {
	r.Release()
}

// Set replaces the range with directly entered values, clamped by the same
// rules as stepping. Low is applied first.
func (r *RangeStepper) Set(low, high float64) Range {
	r.mu.Lock()
	before := r.rng
	r.rng.Low = clamp(low, r.cfg.Min, r.cfg.Max-r.cfg.Step)
	r.rng.High = clamp(high, r.rng.Low+r.cfg.Step, r.cfg.Max)
	rng := r.rng
	r.mu.Unlock()

	r.notify(rng != before, rng)
	return rng
}

// cancel must be called with r.mu held.
func (r *RangeStepper) cancel() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
	r.phase = Idle
	r.accel = 1
	r.ticks = 0
}

func (r *RangeStepper) startRepeating(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return
	}
	r.phase = Repeating
	r.timer = r.sched.AfterFunc(r.cfg.Interval, func() { r.tick(gen) })
}

func (r *RangeStepper) tick(gen uint64) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	changed := r.apply(r.cfg.Step * math.Floor(r.accel))
	r.ticks++
	r.accel = math.Min(r.accel+r.cfg.AccelIncrement, r.cfg.MaxAccel)
	r.timer = r.sched.AfterFunc(r.cfg.Interval, func() { r.tick(gen) })
	rng := r.rng
	r.mu.Unlock()

	r.notify(changed, rng)
}

// apply moves the pressed thumb by magnitude and clamps it. Must be called
// with r.mu held.
func (r *RangeStepper) apply(magnitude float64) bool {
	before := r.rng
	delta := float64(r.dir) * magnitude
	switch r.thumb {
	case Low:
		r.rng.Low = clamp(r.rng.Low+delta, r.cfg.Min, r.rng.High-r.cfg.Step)
	case High:
		r.rng.High = clamp(r.rng.High+delta, r.rng.Low+r.cfg.Step, r.cfg.Max)
	}
	return r.rng != before
}

func (r *RangeStepper) notify(changed bool, rng Range) {
	if changed && r.onChange != nil {
		r.onChange(rng)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
