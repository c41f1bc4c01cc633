package cipher

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
)

var (
	base64Pattern  = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
	hexPattern     = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+$`)
	octalPattern   = regexp.MustCompile(`^[0-7]+$`)
	binaryPattern  = regexp.MustCompile(`^[01]+$`)
)

// SmartDetector reports every format whose shape matches the input.
type SmartDetector struct{}

// NewSmartDetector creates a new smart detector
func NewSmartDetector() *SmartDetector {
	return &SmartDetector{}
}

// Detect returns the matching formats in detection order. ascii always
// matches and is always last, so the result is never empty.
func (d *SmartDetector) Detect(ctx context.Context, input []byte) ([]DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(input))
	compact := stripSpace(trimmed)

	var results []DetectionResult
	if r, ok := d.detectBase64(trimmed); ok {
		results = append(results, r)
	}
	for _, probe := range []struct {
		format     Format
		pattern    *regexp.Regexp
		confidence float64
		reasoning  string
	}{
		{FormatHex, hexPattern, 0.8, "Only hexadecimal digits once whitespace is removed"},
		{FormatDecimal, decimalPattern, 0.6, "Only decimal digits once whitespace is removed"},
		{FormatOctal, octalPattern, 0.5, "Only octal digits once whitespace is removed"},
		{FormatBinary, binaryPattern, 0.4, "Only 0 and 1 once whitespace is removed"},
	} {
		if probe.pattern.MatchString(compact) {
			results = append(results, DetectionResult{
				Format:     probe.format,
				Confidence: probe.confidence,
				Reasoning:  probe.reasoning,
				Operation:  probe.format.DecodeOperation(),
			})
		}
	}
	results = append(results, DetectionResult{
		Format:     FormatASCII,
		Confidence: 0.1,
		Reasoning:  "Fallback: one byte per character",
		Operation:  FormatASCII.DecodeOperation(),
	})
	return results, nil
}

// SupportedFormats returns the formats in detection order.
func (d *SmartDetector) SupportedFormats() []Format {
	return append([]Format(nil), Formats...)
}

// detectBase64 requires the base64 alphabet, a length that is a multiple of
// four and a successful standard decode.
func (d *SmartDetector) detectBase64(trimmed string) (DetectionResult, bool) {
	if !base64Pattern.MatchString(trimmed) || len(trimmed)%4 != 0 {
		return DetectionResult{}, false
	}
	if _, err := base64.StdEncoding.DecodeString(trimmed); err != nil {
		return DetectionResult{}, false
	}
	return DetectionResult{
		Format:     FormatBase64,
		Confidence: 0.9,
		Reasoning:  "Matches the Base64 alphabet, length is a multiple of 4 and decodes",
		Operation:  FormatBase64.DecodeOperation(),
	}, true
}

// DetectFormat returns explicit unchanged when it names a concrete format.
// For FormatAuto (or an empty format) it returns the first format that
// matches text in detection order.
func DetectFormat(text string, explicit Format) Format {
	if explicit != "" && explicit != FormatAuto {
		return explicit
	}
	results, _ := NewSmartDetector().Detect(context.Background(), []byte(text))
	return results[0].Format
}
