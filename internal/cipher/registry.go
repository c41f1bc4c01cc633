package cipher

import (
	"fmt"
	"sort"
	"sync"
)

// registry holds every codec operation by name. Formats register a decode
// and an encode operation in init; the reverse transform registers once.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Operation)
)

// RegisterOperation adds op under its name. Names are unique.
func RegisterOperation(op Operation) error {
	if op == nil {
		return fmt.Errorf("cannot register nil operation")
	}
	name := op.Name()
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("operation %s is already registered", name)
	}
	registry[name] = op
	return nil
}

// GetOperation looks an operation up by name.
func GetOperation(name string) (Operation, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	op, ok := registry[name]
	return op, ok
}

// codecFor returns the decode or encode operation registered for f.
func codecFor(f Format, opType OperationType) (Operation, error) {
	name := f.DecodeOperation()
	if opType == OperationTypeEncode {
		name = f.EncodeOperation()
	}
	op, ok := GetOperation(name)
	if !ok || op.Type() != opType {
		return nil, &DecodeError{Format: f, Err: ErrUnknownFormat}
	}
	return op, nil
}

// ListOperations returns all registered operations sorted by name.
func ListOperations() []Operation {
	return listOperations(func(Operation) bool { return true })
}

// ListOperationsByType returns the operations of one type sorted by name.
func ListOperationsByType(opType OperationType) []Operation {
	return listOperations(func(op Operation) bool { return op.Type() == opType })
}

func listOperations(keep func(Operation) bool) []Operation {
	registryMu.RLock()
	ops := make([]Operation, 0, len(registry))
	for _, op := range registry {
		if keep(op) {
			ops = append(ops, op)
		}
	}
	registryMu.RUnlock()

	sort.Slice(ops, func(i, j int) bool { return ops[i].Name() < ops[j].Name() })
	return ops
}

// UnregisterOperation removes an operation. Tests use it to clean up.
func UnregisterOperation(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}
