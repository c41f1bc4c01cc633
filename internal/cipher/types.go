package cipher

import (
	"context"
	"fmt"
	"strings"
)

// Format names an input text format.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatBase64  Format = "base64"
	FormatHex     Format = "hex"
	FormatDecimal Format = "decimal"
	FormatOctal   Format = "octal"
	FormatBinary  Format = "binary"
	FormatASCII   Format = "ascii"
)

// Formats lists the concrete formats in detection order.
var Formats = []Format{FormatBase64, FormatHex, FormatDecimal, FormatOctal, FormatBinary, FormatASCII}

// ParseFormat accepts a format name, case-insensitively. Empty means auto.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" || f == FormatAuto {
		return FormatAuto, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DecodeOperation is the registry name of the operation decoding f.
func (f Format) DecodeOperation() string { return string(f) + "_decode" }

// EncodeOperation is the registry name of the operation encoding to f.
func (f Format) EncodeOperation() string { return string(f) + "_encode" }

// OperationType defines the category of a registered operation.
type OperationType string

const (
	OperationTypeEncode    OperationType = "encode"
	OperationTypeDecode    OperationType = "decode"
	OperationTypeTransform OperationType = "transform"
)

// Operation is a single named transformation over bytes.
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the category of this operation
	Type() OperationType

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input data
	Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig represents configuration for an operation in a pipeline
type OperationConfig struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Pipeline represents a chain of operations that can be applied sequentially
type Pipeline struct {
	Operations []OperationConfig `json:"operations"`
}

// Execute runs the pipeline on the input data. The first failing step aborts
// the pipeline and its error is returned unchanged, so sentinel errors from
// the operation stay matchable.
func (p *Pipeline) Execute(ctx context.Context, input []byte) ([]byte, error) {
	result := input
	var err error

	for i, opConfig := range p.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("%w: unknown operation at step %d: %s", ErrUnknownFormat, i, opConfig.Name)
		}

		result, err = op.Execute(ctx, result, opConfig.Parameters)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// DetectionResult is one format that matches the input.
type DetectionResult struct {
	Format     Format  `json:"format"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
	Reasoning  string  `json:"reasoning"`
	Operation  string  `json:"operation"`
}

// Detector identifies the format of input text.
type Detector interface {
	// Detect returns every matching format, most likely first.
	Detect(ctx context.Context, input []byte) ([]DetectionResult, error)

	// SupportedFormats returns the formats this detector can identify
	SupportedFormats() []Format
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
