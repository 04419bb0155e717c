package wavetable

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// maxSamples bounds the length of a single table read from a file.
const maxSamples = 1 << 20

// SetTable is one table of a Set.
type SetTable struct {
	TopFreq float64
	Samples []float32
}

// Set is an ordered collection of tables, lowest ceiling first, as produced
// by an external table generator.
type Set struct {
	Tables []*SetTable
}

// Append adds a table to the end of the set.
func (s *Set) Append(topFreq float64, samples []float32) {
	s.Tables = append(s.Tables, &SetTable{TopFreq: topFreq, Samples: samples})
}

// NewOsc returns an oscillator holding every table of the set.
func (s *Set) NewOsc() (*Osc, error) {
	o := NewOsc()
	for i, t := range s.Tables {
		if _, err := o.AddTable(len(t.Samples), t.Samples, t.TopFreq); err != nil {
			return nil, fmt.Errorf("table %d: %w", i, err)
		}
	}
	return o, nil
}

// IO
//   all = { number_of_tables int32, tables []table }
//   table = { top_freq float64, number_of_samples int32, samples []float32 }

// WriteTo writes the set in its binary form.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := binary.Write(cw, binary.BigEndian, int32(len(s.Tables))); err != nil {
		return cw.n, err
	}
	for _, t := range s.Tables {
		if err := binary.Write(cw, binary.BigEndian, t.TopFreq); err != nil {
			return cw.n, err
		}
		if err := binary.Write(cw, binary.BigEndian, int32(len(t.Samples))); err != nil {
			return cw.n, err
		}
		if err := binary.Write(cw, binary.BigEndian, t.Samples); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// ReadSet reads a set written by WriteTo.
func ReadSet(r io.Reader) (*Set, error) {
	var numTables int32
	if err := binary.Read(r, binary.BigEndian, &numTables); err != nil {
		return nil, fmt.Errorf("read number of tables: %w", err)
	}
	if numTables < 0 || numTables > MaxTables {
		return nil, fmt.Errorf("number of tables %d: %w", numTables, ErrCapacityExceeded)
	}
	s := &Set{Tables: make([]*SetTable, 0, numTables)}
	for i := 0; i < int(numTables); i++ {
		t := &SetTable{}
		if err := binary.Read(r, binary.BigEndian, &t.TopFreq); err != nil {
			return nil, fmt.Errorf("read table %d: %w", i, err)
		}
		var numSamples int32
		if err := binary.Read(r, binary.BigEndian, &numSamples); err != nil {
			return nil, fmt.Errorf("read table %d: %w", i, err)
		}
		if numSamples < 1 || numSamples > maxSamples {
			return nil, fmt.Errorf("table %d has %d samples: %w", i, numSamples, ErrInvalidTable)
		}
		t.Samples = make([]float32, numSamples)
		if err := binary.Read(r, binary.BigEndian, t.Samples); err != nil {
			return nil, fmt.Errorf("read table %d: %w", i, err)
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

// Save writes the set to path.
func (s *Set) Save(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(file)
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return w.Flush()
}

// Load reads a set from path.
func Load(path string) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	s, err := ReadSet(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
