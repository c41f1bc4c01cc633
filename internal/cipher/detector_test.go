package cipher

import (
	"context"
	"reflect"
	"testing"
)

func detectedFormats(t *testing.T, input string) []Format {
	t.Helper()
	results, err := NewSmartDetector().Detect(context.Background(), []byte(input))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	formats := make([]Format, len(results))
	for i, r := range results {
		formats[i] = r.Format
		if r.Operation != r.Format.DecodeOperation() {
			t.Fatalf("result %s suggests operation %s", r.Format, r.Operation)
		}
	}
	return formats
}

func TestDetectListsEveryMatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Format
	}{
		{"binary-looking base64", "0101", []Format{FormatBase64, FormatHex, FormatDecimal, FormatOctal, FormatBinary, FormatASCII}},
		{"spaced binary", "01 01 1", []Format{FormatHex, FormatDecimal, FormatOctal, FormatBinary, FormatASCII}},
		{"decimal digits", "789", []Format{FormatHex, FormatDecimal, FormatASCII}},
		{"hex", "48656C6C6F", []Format{FormatHex, FormatASCII}},
		{"padded base64", "SGVsbG8=", []Format{FormatBase64, FormatASCII}},
		{"plain text", "Hello, World!", []Format{FormatASCII}},
		{"empty", "", []Format{FormatASCII}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectedFormats(t, tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDetectConfidenceDescends(t *testing.T) {
	results, err := NewSmartDetector().Detect(context.Background(), []byte("0101"))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Confidence >= results[i-1].Confidence {
			t.Fatalf("confidence should descend: %v", results)
		}
	}
}

func TestDetectBase64Rules(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"SGVsbG8=", true},
		{"  SGVsbG8=  ", true},
		{"SGVsbG8", false},  // length not a multiple of 4
		{"SGV=bG8=", false}, // padding in the middle does not decode
		{"SGVs bG8=", false},
	}
	d := NewSmartDetector()
	for _, tt := range tests {
		results, _ := d.Detect(context.Background(), []byte(tt.input))
		got := results[0].Format == FormatBase64
		if got != tt.want {
			t.Errorf("%q: base64 detected=%v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		input    string
		explicit Format
		want     Format
	}{
		{"48656C6C6F", FormatAuto, FormatHex},
		{"48656C6C6F", "", FormatHex},
		{"72 101 108", FormatAuto, FormatHex},
		{"72 101 108", FormatDecimal, FormatDecimal},
		{"Hello", FormatAuto, FormatASCII},
		{"abcd", FormatAuto, FormatBase64},
		{"anything", FormatOctal, FormatOctal},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.input, tt.explicit); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %s, want %s", tt.input, tt.explicit, got, tt.want)
		}
	}
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSmartDetector().Detect(ctx, []byte("00")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSupportedFormats(t *testing.T) {
	got := NewSmartDetector().SupportedFormats()
	if !reflect.DeepEqual(got, Formats) {
		t.Fatalf("expected %v, got %v", Formats, got)
	}
	got[0] = "mutated"
	if Formats[0] != FormatBase64 {
		t.Fatal("SupportedFormats must return a copy")
	}
}
