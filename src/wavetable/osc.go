// Package wavetable implements a band-limited wavetable oscillator.
//
// An Osc holds up to MaxTables single-cycle tables, each valid up to its own
// frequency ceiling. Tables are added from the lowest ceiling to the highest.
// SetFrequency picks the first table whose ceiling lies above the requested
// normalized frequency, and Output reads the selected table at the current
// phase with linear interpolation.
//
// An Osc must be used by one goroutine at a time. Callers that share an
// oscillator between goroutines have to serialize access themselves.
package wavetable

import (
	"errors"

	"github.com/jinjor/wavetable-osc/src/interp"
)

// MaxTables is the number of table slots of an Osc.
const MaxTables = 40

var (
	// ErrCapacityExceeded is returned by AddTable when all slots are in use.
	ErrCapacityExceeded = errors.New("wavetable: capacity exceeded")
	// ErrNoTables is returned when reading from an oscillator without tables.
	ErrNoTables = errors.New("wavetable: no tables")
	// ErrInvalidTable is returned by AddTable for an empty or short sample slice.
	ErrInvalidTable = errors.New("wavetable: invalid table")
	// ErrPhaseOutOfRange is returned when the phase is outside [0, 1].
	ErrPhaseOutOfRange = errors.New("wavetable: phase out of range")
)

// noCopy makes go vet complain about copies of an Osc.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type table struct {
	topFreq float64
	length  int
	// length+1 values, the last one duplicates the first
	samples []float32
}

// Osc is a wavetable oscillator. The zero value is an oscillator without
// tables; it must not be copied after first use.
type Osc struct {
	_ noCopy

	phase     float64 // phase accumulator, [0, 1)
	phaseInc  float64 // normalized frequency
	curTable  int
	numTables int
	tables    [MaxTables]table
}

// NewOsc returns an oscillator without tables.
func NewOsc() *Osc {
	return &Osc{}
}

// AddTable copies the first length values of samples into a new table that
// is valid up to the normalized frequency topFreq.
//
// Tables must be added in order of increasing topFreq; the order is not
// checked. AddTable returns 0 on success. When no slot is left it returns
// the number of tables together with ErrCapacityExceeded and the oscillator
// is left unchanged.
func (o *Osc) AddTable(length int, samples []float32, topFreq float64) (int, error) {
	if o.numTables >= MaxTables {
		return o.numTables, ErrCapacityExceeded
	}
	if length < 1 || len(samples) < length {
		return o.numTables, ErrInvalidTable
	}
	buf := make([]float32, length+1)
	copy(buf, samples[:length])
	buf[length] = buf[0] // duplicate for interpolation wraparound
	o.tables[o.numTables] = table{
		topFreq: topFreq,
		length:  length,
		samples: buf,
	}
	o.numTables++
	return 0, nil
}

// SetFrequency sets the normalized frequency (cycles per sample, 0 < inc < 1)
// and selects the table to read from. A frequency at or above every ceiling
// selects the last table.
func (o *Osc) SetFrequency(inc float64) {
	o.phaseInc = inc

	cur := 0
	for cur < o.numTables-1 && inc >= o.tables[cur].topFreq {
		cur++
	}
	o.curTable = cur
}

// Output returns the current output of the oscillator. It does not advance
// the phase.
func (o *Osc) Output() (float32, error) {
	if o.numTables == 0 {
		return 0, ErrNoTables
	}
	if !(o.phase >= 0 && o.phase <= 1) {
		return 0, ErrPhaseOutOfRange
	}
	t := &o.tables[o.curTable]

	pos := o.phase * float64(t.length)
	i := int(pos)
	if i >= t.length {
		// phase 1 is the start of the next cycle
		i -= t.length
		pos -= float64(t.length)
	}
	frac := float32(pos - float64(i))
	return interp.Linear(t.samples[i], t.samples[i+1], frac), nil
}

// Sample sets the frequency from freq and sampleRate (both in Hz), replaces
// the phase with phase and returns the output. It is meant for callers that
// keep their own phase accumulator.
func (o *Osc) Sample(phase, freq, sampleRate float64) (float32, error) {
	o.SetFrequency(freq / sampleRate)
	o.phase = phase

	return o.Output()
}

// Step returns the current output and then advances the phase by one sample.
func (o *Osc) Step() (float32, error) {
	v, err := o.Output()
	if err != nil {
		return 0, err
	}
	o.phase += o.phaseInc
	for o.phase >= 1 {
		o.phase--
	}
	return v, nil
}

// Fill writes len(out) consecutive samples into out.
func (o *Osc) Fill(out []float32) error {
	for i := range out {
		v, err := o.Step()
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

// Phase returns the phase accumulator.
func (o *Osc) Phase() float64 { return o.phase }

// SetPhase replaces the phase accumulator.
func (o *Osc) SetPhase(phase float64) { o.phase = phase }

// Frequency returns the last normalized frequency passed to SetFrequency.
func (o *Osc) Frequency() float64 { return o.phaseInc }

// TableIndex returns the index of the table selected by SetFrequency.
func (o *Osc) TableIndex() int { return o.curTable }

// NumTables returns the number of tables added so far.
func (o *Osc) NumTables() int { return o.numTables }
