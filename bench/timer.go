package bench

import (
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises timed samples in milliseconds.
type Stats struct {
	Samples int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Timer collects wall-clock samples for one named operation.
type Timer struct {
	name  string
	times []float64
	start time.Time
}

// NewTimer returns a Timer reporting under name.
func NewTimer(name string) *Timer {
	return &Timer{name: name}
}

// Name returns the operation name.
func (t *Timer) Name() string { return t.name }

// Start begins a sample.
func (t *Timer) Start() {
	t.start = time.Now()
}

// Stop ends the sample begun by Start and records it.
func (t *Timer) Stop() {
	t.Record(time.Since(t.start))
}

// Record adds a sample measured elsewhere.
func (t *Timer) Record(elapsed time.Duration) {
	t.times = append(t.times, float64(elapsed.Nanoseconds())/1e6)
}

// Stats returns the population mean, standard deviation, minimum and
// maximum of the recorded samples. All fields are zero without samples.
func (t *Timer) Stats() Stats {
	if len(t.times) == 0 {
		return Stats{}
	}
	mean, std := stat.PopMeanStdDev(t.times, nil)
	return Stats{
		Samples: len(t.times),
		Mean:    mean,
		StdDev:  std,
		Min:     floats.Min(t.times),
		Max:     floats.Max(t.times),
	}
}

// Report writes the statistics in a fixed, human-readable layout.
func (t *Timer) Report(w io.Writer) error {
	s := t.Stats()
	_, err := fmt.Fprintf(w, "%s\n    mean: %.6f ± %.6fms\n    min: %.6fms\n    max: %.6fms\n",
		t.name, s.Mean, s.StdDev, s.Min, s.Max)
	return err
}
