package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateOrderID generates a unique order ID with prefix. Used when an order
// dispatched through the control API carries no id of its own.
func GenerateOrderID() string {
	return fmt.Sprintf("order_%s", uuid.NewString())
}
