package interactor

import (
	"strings"

	"github.com/go-openapi/swag"
)

// Underscore normalizes a type-like name into an event name:
// OrderFinalizer becomes order_finalizer, Order::Finalizer becomes order/finalizer
// and order-finalizer becomes order_finalizer.
func Underscore(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(strings.ReplaceAll(name, "::", "/"), "/")
	for i, part := range parts {
		parts[i] = swag.ToFileName(part)
	}
	return strings.Join(parts, "/")
}

// Topics are the event names derived from the root event name
type Topics struct {
	Success string
	Failure string
	Error   string
}

// TopicsFor the root event name
func TopicsFor(name string) Topics {
	return Topics{
		Success: name,
		Failure: name + "_failure",
		Error:   name + "_error",
	}
}
