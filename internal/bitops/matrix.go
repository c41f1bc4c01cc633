package bitops

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MatrixMode selects the order in which a row-major filled matrix is read out.
type MatrixMode int

const (
	// Standard reads row by row, left to right. It is the identity.
	Standard MatrixMode = iota
	// SpinRight reads columns left to right, each from the last row up.
	SpinRight
	// SpinLeft reads columns right to left, each from the first row down.
	SpinLeft
)

// Modes lists every matrix mode in enumeration order.
var Modes = []MatrixMode{Standard, SpinRight, SpinLeft}

var (
	// ErrDimensionMismatch is matched by every *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("matrix dimension mismatch")
	// ErrUnknownMode is returned for a MatrixMode outside the defined set.
	ErrUnknownMode = errors.New("unknown matrix mode")
)

func (m MatrixMode) String() string {
	switch m {
	case Standard:
		return "standard"
	case SpinRight:
		return "spin-right"
	case SpinLeft:
		return "spin-left"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// MarshalText encodes the mode by name.
func (m MatrixMode) MarshalText() ([]byte, error) {
	if m < Standard || m > SpinLeft {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *MatrixMode) UnmarshalText(text []byte) error {
	parsed, err := ParseMatrixMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMatrixMode accepts the names produced by MatrixMode.String.
func ParseMatrixMode(s string) (MatrixMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return Standard, nil
	case "spin-right":
		return SpinRight, nil
	case "spin-left":
		return SpinLeft, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Dimension is a rows x cols matrix shape.
type Dimension struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Rows, d.Cols)
}

// Size returns the number of cells.
func (d Dimension) Size() int {
	return d.Rows * d.Cols
}

// ParseDimension reads the "RxC" form produced by Dimension.String.
func ParseDimension(s string) (Dimension, error) {
	rowsPart, colsPart, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Dimension{}, fmt.Errorf("invalid matrix dimension %q: want RxC", s)
	}
	rows, err := strconv.Atoi(rowsPart)
	if err != nil || rows <= 0 {
		return Dimension{}, fmt.Errorf("invalid matrix rows in %q", s)
	}
	cols, err := strconv.Atoi(colsPart)
	if err != nil || cols <= 0 {
		return Dimension{}, fmt.Errorf("invalid matrix cols in %q", s)
	}
	return Dimension{Rows: rows, Cols: cols}, nil
}

// DimensionMismatchError reports a matrix shape that does not cover the bit
// string exactly.
type DimensionMismatchError struct {
	Rows int
	Cols int
	Bits int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("matrix dimensions %dx%d = %d do not match bit count %d", e.Rows, e.Cols, e.Rows*e.Cols, e.Bits)
}

// Is lets errors.Is(err, ErrDimensionMismatch) match.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// ReadMatrix fills a rows x cols grid row-major from b and reads it back out
// in the order selected by mode. rows*cols must equal len(b). The result is a
// permutation of b with the same length.
func ReadMatrix(b Bits, mode MatrixMode, rows, cols int) (Bits, error) {
	if rows <= 0 || cols <= 0 || rows*cols != len(b) {
		return nil, &DimensionMismatchError{Rows: rows, Cols: cols, Bits: len(b)}
	}

	out := make(Bits, 0, len(b))
	at := func(row, col int) byte { return b[row*cols+col] }

	switch mode {
	case Standard:
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				out = append(out, at(row, col))
			}
		}
	case SpinRight:
		for col := 0; col < cols; col++ {
			for row := rows - 1; row >= 0; row-- {
				out = append(out, at(row, col))
			}
		}
	case SpinLeft:
		for col := cols - 1; col >= 0; col-- {
			for row := 0; row < rows; row++ {
				out = append(out, at(row, col))
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	return out, nil
}

// FactorPairs returns every (rows, cols) pair with rows*cols == n, ascending by
// rows. A square pair appears once.
func FactorPairs(n int) []Dimension {
	if n <= 0 {
		return nil
	}
	var pairs []Dimension
	for i := 1; i*i <= n; i++ {
		if n%i != 0 {
			continue
		}
		pairs = append(pairs, Dimension{Rows: i, Cols: n / i})
		if i != n/i {
			pairs = append(pairs, Dimension{Rows: n / i, Cols: i})
		}
	}
	slices.SortStableFunc(pairs, func(a, b Dimension) int {
		return a.Rows - b.Rows
	})
	return pairs
}
