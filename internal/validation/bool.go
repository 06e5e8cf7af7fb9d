package validation

import (
	"errors"
	"strings"
)

var ErrNotBoolean = errors.New("must be a boolean")

// ParseBool is the single boolean coercion rule used for every flag the API
// accepts, whether it arrives as a form value, a query parameter or JSON.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, ErrNotBoolean
}
