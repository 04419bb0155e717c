package wavetable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOsc(t *testing.T, tables ...[]float32) *Osc {
	t.Helper()
	o := NewOsc()
	topFreq := 0.5 / math.Pow(2, float64(len(tables)-1))
	for _, samples := range tables {
		n, err := o.AddTable(len(samples), samples, topFreq)
		require.NoError(t, err)
		require.Equal(t, 0, n)
		topFreq *= 2
	}
	return o
}

func TestAddTableWraparound(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1}, []float32{0.5, -0.5})
	for i := 0; i < o.NumTables(); i++ {
		tab := o.tables[i]
		require.Len(t, tab.samples, tab.length+1)
		assert.Equal(t, tab.samples[0], tab.samples[tab.length])
	}
}

func TestAddTableCopies(t *testing.T) {
	src := []float32{0, 1, 0, -1, 42}
	o := NewOsc()
	_, err := o.AddTable(4, src, 0.5)
	require.NoError(t, err)
	src[1] = 7
	assert.Equal(t, []float32{0, 1, 0, -1, 0}, o.tables[0].samples)
}

func TestAddTableInvalid(t *testing.T) {
	o := NewOsc()
	n, err := o.AddTable(0, []float32{1}, 0.5)
	assert.ErrorIs(t, err, ErrInvalidTable)
	assert.Equal(t, 0, n)
	_, err = o.AddTable(4, []float32{1, 2}, 0.5)
	assert.ErrorIs(t, err, ErrInvalidTable)
	assert.Equal(t, 0, o.NumTables())
}

func TestAddTableCapacity(t *testing.T) {
	o := NewOsc()
	for i := 0; i < MaxTables; i++ {
		n, err := o.AddTable(2, []float32{float32(i), -float32(i)}, float64(i+1)/MaxTables)
		require.NoError(t, err)
		require.Equal(t, 0, n)
	}
	n, err := o.AddTable(2, []float32{100, 100}, 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, MaxTables, n)
	assert.Equal(t, MaxTables, o.NumTables())
	for i := 0; i < MaxTables; i++ {
		assert.Equal(t, []float32{float32(i), -float32(i), float32(i)}, o.tables[i].samples)
		assert.Equal(t, float64(i+1)/MaxTables, o.tables[i].topFreq)
	}
}

func TestAddTableKeepsState(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1}, []float32{0, 1})
	o.SetFrequency(0.4)
	o.SetPhase(0.3)
	idx := o.TableIndex()
	_, err := o.AddTable(2, []float32{1, 0}, 0.9)
	require.NoError(t, err)
	assert.Equal(t, idx, o.TableIndex())
	assert.Equal(t, 0.3, o.Phase())
}

func TestSetFrequency(t *testing.T) {
	o := NewOsc()
	for _, topFreq := range []float64{0.1, 0.2, 0.4} {
		_, err := o.AddTable(2, []float32{1, -1}, topFreq)
		require.NoError(t, err)
	}
	for _, c := range []struct {
		inc  float64
		want int
	}{
		{0.01, 0},
		{0.0999, 0},
		{0.1, 1}, // a ceiling equal to the frequency moves on
		{0.15, 1},
		{0.2, 2},
		{0.3, 2},
		{0.4, 2},
		{0.9, 2},
	} {
		o.SetFrequency(c.inc)
		assert.Equal(t, c.want, o.TableIndex(), "SetFrequency(%v)", c.inc)
		assert.Equal(t, c.inc, o.Frequency())
	}
}

func TestSetFrequencyMonotonic(t *testing.T) {
	o := NewOsc()
	topFreq := 2.0 / 3.0 / 512
	for i := 0; i < 10; i++ {
		_, err := o.AddTable(1, []float32{0}, topFreq)
		require.NoError(t, err)
		topFreq *= 2
	}
	prev := -1
	for f := 0.0001; f < 1; f *= 1.07 {
		o.SetFrequency(f)
		assert.GreaterOrEqual(t, o.TableIndex(), prev, "f=%v", f)
		prev = o.TableIndex()
	}
	assert.Equal(t, 9, prev)
}

func TestSetFrequencyWithoutTables(t *testing.T) {
	o := NewOsc()
	o.SetFrequency(0.2)
	assert.Equal(t, 0, o.TableIndex())
	assert.Equal(t, 0.2, o.Frequency())
}

func TestOutputWithoutTables(t *testing.T) {
	o := NewOsc()
	_, err := o.Output()
	assert.ErrorIs(t, err, ErrNoTables)
	_, err = o.Sample(0.25, 440, 48000)
	assert.ErrorIs(t, err, ErrNoTables)
	_, err = o.Step()
	assert.ErrorIs(t, err, ErrNoTables)
}

func TestOutputPhaseOutOfRange(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1})
	for _, phase := range []float64{-0.1, 1.5, math.NaN()} {
		o.SetPhase(phase)
		_, err := o.Output()
		assert.ErrorIs(t, err, ErrPhaseOutOfRange, "phase=%v", phase)
	}
}

func TestOutputAtCycleEnd(t *testing.T) {
	o := newTestOsc(t, []float32{0.25, 1, 0, -1})
	o.SetPhase(0)
	start, err := o.Output()
	require.NoError(t, err)
	o.SetPhase(1)
	end, err := o.Output()
	require.NoError(t, err)
	assert.Equal(t, start, end)
}

func TestSample(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1})
	o.SetFrequency(0.1)

	v, err := o.Sample(0.25, 4800, 48000)
	require.NoError(t, err)
	assert.Equal(t, float32(1), v)

	v, err = o.Sample(0.375, 4800, 48000)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), v)

	v, err = o.Sample(0.875, 4800, 48000)
	require.NoError(t, err)
	assert.Equal(t, float32(-0.5), v)
	assert.Equal(t, 0.1, o.Frequency())
	assert.Equal(t, 0.875, o.Phase())
}

func TestSampleThenOutput(t *testing.T) {
	o := newTestOsc(t, []float32{0, 0.3, 0.9, 0.1, -0.7}, []float32{0.2, -0.4, 0.6})
	for _, phase := range []float64{0, 0.1, 0.33, 0.5, 0.77, 0.999} {
		for _, freq := range []float64{100, 5000, 15000, 23000} {
			v, err := o.Sample(phase, freq, 48000)
			require.NoError(t, err)
			again, err := o.Output()
			require.NoError(t, err)
			assert.Equal(t, v, again)
		}
	}
}

func TestOutputBetweenNeighbours(t *testing.T) {
	samples := []float32{0.1, 0.9, -0.3, -0.8, 0.4, 0.0, 0.7}
	o := newTestOsc(t, samples)
	n := len(samples)
	for k := 0; k < 1000; k++ {
		phase := float64(k) / 1000
		o.SetPhase(phase)
		v, err := o.Output()
		require.NoError(t, err)
		i := int(phase * float64(n))
		a, b := samples[i], samples[(i+1)%n]
		assert.GreaterOrEqual(t, v, min(a, b), "phase=%v", phase)
		assert.LessOrEqual(t, v, max(a, b), "phase=%v", phase)
	}
}

func TestOutputSelectsTable(t *testing.T) {
	o := newTestOsc(t, []float32{1, 1}, []float32{2, 2}, []float32{3, 3})
	for _, c := range []struct {
		inc  float64
		want float32
	}{
		{0.05, 1},
		{0.2, 2},
		{0.3, 3},
		{0.7, 3},
	} {
		o.SetFrequency(c.inc)
		v, err := o.Output()
		require.NoError(t, err)
		assert.Equal(t, c.want, v, "inc=%v", c.inc)
	}
}

func TestStep(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1})
	o.SetFrequency(0.25)
	var got []float32
	for i := 0; i < 8; i++ {
		v, err := o.Step()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []float32{0, 1, 0, -1, 0, 1, 0, -1}, got)
	assert.InDelta(t, 0, o.Phase(), 1e-12)
}

func TestStepWrapsPhase(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1})
	o.SetFrequency(0.3)
	for i := 0; i < 1000; i++ {
		_, err := o.Step()
		require.NoError(t, err)
		require.GreaterOrEqual(t, o.Phase(), 0.0)
		require.Less(t, o.Phase(), 1.0)
	}
}

func TestFill(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1})
	o.SetFrequency(0.125)
	out := make([]float32, 8)
	require.NoError(t, o.Fill(out))
	assert.Equal(t, []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}, out)

	assert.ErrorIs(t, NewOsc().Fill(out), ErrNoTables)
}

func TestOutputDoesNotAllocate(t *testing.T) {
	o := newTestOsc(t, []float32{0, 1, 0, -1}, []float32{0, 1})
	o.SetFrequency(0.01)
	allocs := testing.AllocsPerRun(100, func() {
		_, _ = o.Step()
		_, _ = o.Sample(0.3, 440, 48000)
	})
	assert.Zero(t, allocs)
}

func BenchmarkStep(b *testing.B) {
	o := NewOsc()
	samples := make([]float32, 2048)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(len(samples))))
	}
	topFreq := 2.0 / 3.0 / 1024
	for i := 0; i < 10; i++ {
		if _, err := o.AddTable(len(samples), samples, topFreq); err != nil {
			b.Fatal(err)
		}
		topFreq *= 2
	}
	o.SetFrequency(440.0 / 48000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := o.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
