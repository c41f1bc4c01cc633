// Package analysis holds the data model shared by the search engine and its
// consumers: the combination of transform parameters that was tried and the
// scored outcome of trying it.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RowanDark/xorsift/internal/bitops"
)

// Rotations is the number of rotation phases tried per scenario. Eight
// rotations cover every bit offset relative to a byte boundary.
const Rotations = 8

// Scenario fixes the order of the rotation and XOR steps.
type Scenario string

const (
	// RotateThenXor rotates the ciphertext bits, repacks bytes, then XORs.
	RotateThenXor Scenario = "rotate-then-xor"
	// XorThenRotate XORs the ciphertext, then rotates the bits and repacks.
	XorThenRotate Scenario = "xor-then-rotate"
)

// Scenarios lists both scenarios in enumeration order.
var Scenarios = []Scenario{RotateThenXor, XorThenRotate}

// ParseScenario accepts the canonical names and the short aliases used on the
// command line.
func ParseScenario(s string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rotate-then-xor", "rotated-then-xored", "rx", "1":
		return RotateThenXor, nil
	case "xor-then-rotate", "xored-then-rotated", "xr", "2":
		return XorThenRotate, nil
	default:
		return "", fmt.Errorf("unknown scenario %q", s)
	}
}

// Title is the human readable scenario name.
func (s Scenario) Title() string {
	switch s {
	case RotateThenXor:
		return "Rotated then XORed"
	case XorThenRotate:
		return "XORed then Rotated"
	default:
		return string(s)
	}
}

// MatrixConfig is either no matrix step (the zero value) or a rows x cols
// read-out applied to the ciphertext bits before the scenario runs.
type MatrixConfig struct {
	Rows int
	Cols int
}

// NoMatrix disables the matrix step.
var NoMatrix = MatrixConfig{}

// MatrixOf wraps a dimension.
func MatrixOf(d bitops.Dimension) MatrixConfig {
	return MatrixConfig{Rows: d.Rows, Cols: d.Cols}
}

// None reports whether the matrix step is disabled.
func (m MatrixConfig) None() bool {
	return m.Rows == 0 && m.Cols == 0
}

// Dimension returns the matrix shape.
func (m MatrixConfig) Dimension() bitops.Dimension {
	return bitops.Dimension{Rows: m.Rows, Cols: m.Cols}
}

func (m MatrixConfig) String() string {
	if m.None() {
		return "none"
	}
	return m.Dimension().String()
}

// ParseMatrixConfig accepts "none" or "RxC".
func ParseMatrixConfig(s string) (MatrixConfig, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" || trimmed == "none" {
		return NoMatrix, nil
	}
	d, err := bitops.ParseDimension(trimmed)
	if err != nil {
		return NoMatrix, err
	}
	return MatrixOf(d), nil
}

// MarshalText encodes the config as "none" or "RxC".
func (m MatrixConfig) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes "none" or "RxC".
func (m *MatrixConfig) UnmarshalText(text []byte) error {
	parsed, err := ParseMatrixConfig(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Combination is one point of the search space.
type Combination struct {
	Matrix   MatrixConfig      `json:"matrix"`
	Mode     bitops.MatrixMode `json:"mode"`
	Scenario Scenario          `json:"scenario"`
	Rotation int               `json:"rotation"`
}

// String renders the combination as matrix:mode:scenario:rotation, the form
// accepted by ParseCombination.
func (c Combination) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", c.Matrix, c.Mode, c.Scenario, c.Rotation)
}

// Label is the one-line description used in ranked listings.
func (c Combination) Label() string {
	matrix := "No matrix"
	if !c.Matrix.None() {
		matrix = "Matrix: " + c.Matrix.String()
	}
	return fmt.Sprintf("%s | %s | Mode: %s | Rotation: %d bits", c.Scenario.Title(), matrix, c.Mode, c.Rotation)
}

// ParseCombination reads the matrix:mode:scenario:rotation form.
func ParseCombination(s string) (Combination, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return Combination{}, fmt.Errorf("invalid combination %q: want matrix:mode:scenario:rotation", s)
	}
	matrix, err := ParseMatrixConfig(parts[0])
	if err != nil {
		return Combination{}, err
	}
	mode, err := bitops.ParseMatrixMode(parts[1])
	if err != nil {
		return Combination{}, err
	}
	scenario, err := ParseScenario(parts[2])
	if err != nil {
		return Combination{}, err
	}
	rotation, err := strconv.Atoi(parts[3])
	if err != nil || rotation < 0 || rotation >= Rotations {
		return Combination{}, fmt.Errorf("invalid rotation %q: want 0..%d", parts[3], Rotations-1)
	}
	return Combination{Matrix: matrix, Mode: mode, Scenario: scenario, Rotation: rotation}, nil
}

// ByteSeq is a byte sequence that encodes to JSON as an array of integers
// rather than base64.
type ByteSeq []byte

// MarshalJSON encodes the bytes as numbers.
func (b ByteSeq) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// UnmarshalJSON decodes an array of numbers in 0..255.
func (b *ByteSeq) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make(ByteSeq, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d at index %d out of range", v, i)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// ByteMatch describes one position whose byte passed the plausibility check.
type ByteMatch struct {
	Index      int     `json:"index"`
	Byte       byte    `json:"byte"`
	Candidates ByteSeq `json:"candidates"`
}

// Result is the scored outcome of one combination.
type Result struct {
	Combination
	// Bytes is the final byte sequence that was scored.
	Bytes ByteSeq `json:"bytes"`
	// Intermediate is the sequence after the first step of the scenario:
	// the rotated bytes before XOR, or the XORed bytes before rotation.
	Intermediate    ByteSeq     `json:"intermediate,omitempty"`
	Matches         []bool      `json:"matches"`
	MatchingBytes   []ByteMatch `json:"matching_bytes,omitempty"`
	MatchCount      int         `json:"match_count"`
	TotalBytes      int         `json:"total_bytes"`
	MatchPercentage float64     `json:"match_percentage"`
}

// RoundedPercentage is MatchPercentage rounded to two decimals for display.
// Ranking always uses the unrounded value.
func (r Result) RoundedPercentage() float64 {
	return math.Round(r.MatchPercentage*100) / 100
}

// PercentageString formats the percentage with two decimals.
func (r Result) PercentageString() string {
	return strconv.FormatFloat(r.MatchPercentage, 'f', 2, 64)
}
