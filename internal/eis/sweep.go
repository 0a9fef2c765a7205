package eis

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"battlab/internal/cycler"
	"battlab/internal/errors"
)

// sweepColumns is the fixed number of data columns in a Gamry DTA sweep
// table: point index, elapsed time, frequency, the impedance components,
// DC current, DC voltage and the instrument range code.
const sweepColumns = 11

// Sweep is a single electrochemical impedance sweep: a run from a start
// frequency to an end frequency at a fixed state of charge. It is populated
// exactly once from a DTA file; reading into an already-populated sweep is
// rejected.
type Sweep struct {
	Name      string
	SOC       float64
	StepIndex int

	// Annotations are attached after parsing by the analysis package.
	Annotations cycler.Annotations

	headers []string
	pt      []int
	time    []float64
	freq    []float64
	zReal   []float64
	zImag   []float64
	zSig    []float64
	zMod    []float64
	zPhase  []float64
	iDC     []float64
	vDC     []float64
	ieRange []int

	populated bool
}

// NewSweep creates an empty sweep. soc is the state of charge the
// measurement was taken at and must lie in [0, 1].
func NewSweep(name string, soc float64, stepIndex int) (*Sweep, error) {
	if soc < 0 || soc > 1 {
		return nil, errors.InvalidArgument("state of charge must be in [0, 1], got %g", soc)
	}
	return &Sweep{Name: name, SOC: soc, StepIndex: stepIndex}, nil
}

// String implements fmt.Stringer.
func (s *Sweep) String() string {
	return fmt.Sprintf("Sweep name: %s, soc: %g, step_index: %d", s.Name, s.SOC, s.StepIndex)
}

// RecordStepIndex implements cycler.Record, so merged sweeps participate in
// step lookups next to cycler steps.
func (s *Sweep) RecordStepIndex() int { return s.StepIndex }

// Populated reports whether the sweep has been read from a file.
func (s *Sweep) Populated() bool { return s.populated }

// Headers returns the composite column names built from the DTA header and
// units lines, for example "Freq (Hz)".
func (s *Sweep) Headers() []string { return s.headers }

// Points reports the number of measurements in the sweep.
func (s *Sweep) Points() int { return len(s.pt) }

// Pt returns the measurement point numbers.
func (s *Sweep) Pt() []int { return s.pt }

// Time returns the measurement times in seconds.
func (s *Sweep) Time() []float64 { return s.time }

// Freq returns the measurement frequencies in Hz.
func (s *Sweep) Freq() []float64 { return s.freq }

// ZReal returns the real impedance component in Ohms.
func (s *Sweep) ZReal() []float64 { return s.zReal }

// ZImag returns the imaginary impedance component in Ohms.
func (s *Sweep) ZImag() []float64 { return s.zImag }

// ZSig returns the excitation signal amplitude in Volts.
func (s *Sweep) ZSig() []float64 { return s.zSig }

// ZMod returns the impedance magnitude in Ohms.
func (s *Sweep) ZMod() []float64 { return s.zMod }

// ZPhase returns the impedance phase in degrees.
func (s *Sweep) ZPhase() []float64 { return s.zPhase }

// IDC returns the measured DC current in Amps.
func (s *Sweep) IDC() []float64 { return s.iDC }

// VDC returns the measured DC voltage in Volts.
func (s *Sweep) VDC() []float64 { return s.vDC }

// IERange returns the instrument range codes.
func (s *Sweep) IERange() []int { return s.ieRange }

// Column returns the values of the named composite column, with the two
// integer columns widened to float64.
func (s *Sweep) Column(name string) ([]float64, error) {
	for i, h := range s.headers {
		if h == name {
			return s.columnAt(i), nil
		}
	}
	return nil, errors.NotFound("sweep %q has no column %q", s.Name, name)
}

// DataAsArray returns the sweep as a Points x 11 table in file column
// order, with the integer columns widened to float64.
func (s *Sweep) DataAsArray() [][]float64 {
	out := make([][]float64, s.Points())
	for i := range out {
		row := make([]float64, sweepColumns)
		for j := 0; j < sweepColumns; j++ {
			row[j] = s.columnAt(j)[i]
		}
		out[i] = row
	}
	return out
}

func (s *Sweep) columnAt(i int) []float64 {
	switch i {
	case 0:
		return widen(s.pt)
	case 1:
		return s.time
	case 2:
		return s.freq
	case 3:
		return s.zReal
	case 4:
		return s.zImag
	case 5:
		return s.zSig
	case 6:
		return s.zMod
	case 7:
		return s.zPhase
	case 8:
		return s.iDC
	case 9:
		return s.vDC
	default:
		return widen(s.ieRange)
	}
}

func widen(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// ReadDTA reads a Gamry DTA output file into the sweep.
func (s *Sweep) ReadDTA(path string) error {
	if s.populated {
		return errors.Reuse("sweep %q already holds data from a previous read", s.Name)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Parse(err, "cannot open DTA file %s", path)
	}
	defer f.Close()
	if err := s.ReadDTAFrom(f); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// ReadDTAFrom reads DTA content from r. The sweep table starts at a header
// line beginning with a tab and "Pt", followed by a units line beginning
// with a tab and "#"; every line from the first one beginning with a tab
// and "0" to the end of input is a data row of exactly 11 fields.
func (s *Sweep) ReadDTAFrom(r io.Reader) error {
	if s.populated {
		return errors.Reuse("sweep %q already holds data from a previous read", s.Name)
	}

	var rawHeaders []string
	reading := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "\tPt"):
			rawHeaders = strings.Fields(line)
		case strings.HasPrefix(line, "\t#"):
			units := strings.Fields(line)
			headers, err := composeHeaders(rawHeaders, units)
			if err != nil {
				return err
			}
			s.headers = headers
		case strings.HasPrefix(line, "\t0"):
			reading = true
		}
		if !reading {
			continue
		}
		if len(s.headers) != sweepColumns {
			return errors.Parse(nil, "data row before complete header and units lines")
		}
		if err := s.appendRow(strings.Fields(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Parse(err, "cannot read DTA content")
	}

	s.populated = true
	return nil
}

// composeHeaders joins the header tokens with their unit tokens into the
// final column names. The phase column carries a degree symbol that varies
// by instrument locale, so it gets the literal label "Zphz (degrees)".
func composeHeaders(rawHeaders, units []string) ([]string, error) {
	if len(rawHeaders) != sweepColumns {
		return nil, errors.Parse(nil, "expected %d header fields, got %d", sweepColumns, len(rawHeaders))
	}
	if len(units) < sweepColumns {
		return nil, errors.Parse(nil, "expected %d unit fields, got %d", sweepColumns, len(units))
	}
	headers := make([]string, sweepColumns)
	for i, h := range rawHeaders {
		if h == "Zphz" {
			headers[i] = "Zphz (degrees)"
			continue
		}
		headers[i] = h + " (" + units[i] + ")"
	}
	return headers, nil
}

func (s *Sweep) appendRow(fields []string) error {
	if len(fields) != sweepColumns {
		return errors.Parse(nil, "expected %d data fields, got %d", sweepColumns, len(fields))
	}
	pt, err := strconv.Atoi(fields[0])
	if err != nil {
		return errors.Parse(err, "point index %q is not an integer", fields[0])
	}
	ieRange, err := strconv.Atoi(fields[10])
	if err != nil {
		return errors.Parse(err, "IE range %q is not an integer", fields[10])
	}
	floats := make([]float64, 9)
	for i := 1; i <= 9; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return errors.Parse(err, "field %q is not numeric", fields[i])
		}
		floats[i-1] = v
	}

	s.pt = append(s.pt, pt)
	s.time = append(s.time, floats[0])
	s.freq = append(s.freq, floats[1])
	s.zReal = append(s.zReal, floats[2])
	s.zImag = append(s.zImag, floats[3])
	s.zSig = append(s.zSig, floats[4])
	s.zMod = append(s.zMod, floats[5])
	s.zPhase = append(s.zPhase, floats[6])
	s.iDC = append(s.iDC, floats[7])
	s.vDC = append(s.vDC, floats[8])
	s.ieRange = append(s.ieRange, ieRange)
	return nil
}
