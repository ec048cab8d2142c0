package host

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// ReceiptPrefix is the TypeID prefix of receipt ids.
const ReceiptPrefix = "rcpt"

// NewReceiptID returns a fresh, time-sortable receipt id ("rcpt_…").
func NewReceiptID() (string, error) {
	tid, err := typeid.Generate(ReceiptPrefix)
	if err != nil {
		return "", fmt.Errorf("generating receipt id: %w", err)
	}
	return tid.String(), nil
}

// ParseReceiptID validates s as a receipt id.
func ParseReceiptID(s string) (string, error) {
	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("receipt id %q: %w", s, err)
	}
	if tid.Prefix() != ReceiptPrefix {
		return "", fmt.Errorf("receipt id %q: expected prefix %q, got %q", s, ReceiptPrefix, tid.Prefix())
	}
	return tid.String(), nil
}
