package cipher

import (
	"context"
	"errors"
	"testing"
)

// mockOperation is a test implementation of Operation
type mockOperation struct {
	BaseOperation
}

func (m *mockOperation) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return input, nil
}

func TestRegisterOperation(t *testing.T) {
	op := &mockOperation{
		BaseOperation: BaseOperation{
			NameValue:        "mock_transform",
			TypeValue:        OperationTypeTransform,
			DescriptionValue: "Mock operation for testing",
		},
	}
	defer UnregisterOperation(op.Name())

	if err := RegisterOperation(op); err != nil {
		t.Fatalf("failed to register operation: %v", err)
	}
	if err := RegisterOperation(op); err == nil {
		t.Fatal("expected error when registering duplicate operation")
	}

	retrieved, exists := GetOperation("mock_transform")
	if !exists || retrieved.Name() != "mock_transform" {
		t.Fatalf("expected registered operation to be retrievable, got %v %v", retrieved, exists)
	}
}

func TestRegisterOperationRejectsInvalid(t *testing.T) {
	if err := RegisterOperation(nil); err == nil {
		t.Fatal("expected error for nil operation")
	}
	if err := RegisterOperation(&mockOperation{}); err == nil {
		t.Fatal("expected error for unnamed operation")
	}
}

func TestBuiltinOperationsRegistered(t *testing.T) {
	for _, f := range Formats {
		decode, ok := GetOperation(f.DecodeOperation())
		if !ok {
			t.Fatalf("missing %s", f.DecodeOperation())
		}
		encode, ok := GetOperation(f.EncodeOperation())
		if !ok {
			t.Fatalf("missing %s", f.EncodeOperation())
		}
		rev, ok := decode.Reverse()
		if !ok || rev.Name() != encode.Name() {
			t.Fatalf("%s should reverse to %s", decode.Name(), encode.Name())
		}
	}
	if _, ok := GetOperation(ReverseOperation); !ok {
		t.Fatalf("missing %s", ReverseOperation)
	}
	if _, exists := GetOperation("non-existent"); exists {
		t.Fatal("non-existent operation should not exist")
	}
}

func TestListOperationsSorted(t *testing.T) {
	list := ListOperations()
	if len(list) != 2*len(Formats)+1 {
		t.Fatalf("expected %d operations, got %d", 2*len(Formats)+1, len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name() >= list[i].Name() {
			t.Fatalf("operations should be sorted by name: %s before %s", list[i-1].Name(), list[i].Name())
		}
	}
}

func TestListOperationsByType(t *testing.T) {
	if got := len(ListOperationsByType(OperationTypeDecode)); got != len(Formats) {
		t.Errorf("expected %d decoders, got %d", len(Formats), got)
	}
	if got := len(ListOperationsByType(OperationTypeEncode)); got != len(Formats) {
		t.Errorf("expected %d encoders, got %d", len(Formats), got)
	}
	if got := len(ListOperationsByType(OperationTypeTransform)); got != 1 {
		t.Errorf("expected 1 transform, got %d", got)
	}
}

func TestCodecFor(t *testing.T) {
	op, err := codecFor(FormatHex, OperationTypeEncode)
	if err != nil {
		t.Fatalf("hex encoder: %v", err)
	}
	if op.Name() != FormatHex.EncodeOperation() {
		t.Fatalf("got %s", op.Name())
	}

	_, err = codecFor(Format("rot13"), OperationTypeDecode)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	op, ok := GetOperation(FormatHex.DecodeOperation())
	if !ok {
		t.Fatal("hex decoder missing")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a duplicate registration")
		}
	}()
	mustRegister(op)
}
