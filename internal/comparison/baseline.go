package comparison

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/RowanDark/xorsift/internal/analysis"
)

// ErrNoBaseline is returned when no baseline is stored for an input.
var ErrNoBaseline = errors.New("no baseline set")

// BaselineManager stores the best known combination per ciphertext and key
// pair so that later runs can be compared against it.
type BaselineManager struct {
	configDir string
}

// NewBaselineManager stores baselines under ~/.xorsift/baselines.
func NewBaselineManager() (*BaselineManager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determine home directory: %w", err)
	}
	return NewBaselineManagerAt(filepath.Join(home, ".xorsift", "baselines"))
}

// NewBaselineManagerAt stores baselines in dir, creating it if needed.
func NewBaselineManagerAt(dir string) (*BaselineManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create baseline directory: %w", err)
	}
	return &BaselineManager{configDir: dir}, nil
}

// InputID identifies a ciphertext and key pair without storing either.
func InputID(ciphertext, key []byte) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(ciphertext))))
	h.Write([]byte{':'})
	h.Write(ciphertext)
	h.Write(key)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SetBaseline records r as the baseline for the input.
func (m *BaselineManager) SetBaseline(ciphertext, key []byte, r analysis.Result, runID, name string) (*Baseline, error) {
	baseline := Baseline{
		InputID:         InputID(ciphertext, key),
		Combination:     r.Combination.String(),
		MatchPercentage: r.MatchPercentage,
		RunID:           runID,
		SetAt:           time.Now().UTC(),
		Name:            name,
	}

	data, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal baseline: %w", err)
	}
	if err := os.WriteFile(m.path(baseline.InputID), data, 0o644); err != nil {
		return nil, fmt.Errorf("write baseline: %w", err)
	}
	return &baseline, nil
}

// GetBaseline retrieves the baseline for the input.
func (m *BaselineManager) GetBaseline(ciphertext, key []byte) (*Baseline, error) {
	id := InputID(ciphertext, key)
	data, err := os.ReadFile(m.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w for input %s", ErrNoBaseline, id)
		}
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	var baseline Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, fmt.Errorf("unmarshal baseline: %w", err)
	}
	return &baseline, nil
}

// CompareToBaseline re-evaluates the stored baseline combination and compares
// it (as side A) against current.
func (m *BaselineManager) CompareToBaseline(ciphertext, key []byte, current analysis.Combination, opts CompareOptions) (*ComparisonResult, error) {
	baseline, err := m.GetBaseline(ciphertext, key)
	if err != nil {
		return nil, err
	}
	combo, err := analysis.ParseCombination(baseline.Combination)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", baseline.InputID, err)
	}
	return CompareCombinations(ciphertext, key, combo, current, opts)
}

// ListBaselines returns all baselines, most recent first.
func (m *BaselineManager) ListBaselines() ([]Baseline, error) {
	matches, err := filepath.Glob(filepath.Join(m.configDir, "baseline_*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob baselines: %w", err)
	}

	var baselines []Baseline
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue // Skip unreadable files
		}
		var baseline Baseline
		if err := json.Unmarshal(data, &baseline); err != nil {
			continue // Skip invalid files
		}
		baselines = append(baselines, baseline)
	}
	sort.SliceStable(baselines, func(i, j int) bool {
		return baselines[i].SetAt.After(baselines[j].SetAt)
	})
	return baselines, nil
}

// DeleteBaseline removes the baseline for the input.
func (m *BaselineManager) DeleteBaseline(ciphertext, key []byte) error {
	id := InputID(ciphertext, key)
	if err := os.Remove(m.path(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w for input %s", ErrNoBaseline, id)
		}
		return fmt.Errorf("delete baseline: %w", err)
	}
	return nil
}

// HasBaseline checks if a baseline exists for the input.
func (m *BaselineManager) HasBaseline(ciphertext, key []byte) bool {
	_, err := os.Stat(m.path(InputID(ciphertext, key)))
	return err == nil
}

func (m *BaselineManager) path(inputID string) string {
	return filepath.Join(m.configDir, fmt.Sprintf("baseline_%s.json", inputID))
}
