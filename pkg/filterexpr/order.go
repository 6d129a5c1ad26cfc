package filterexpr

import (
	"fmt"
	"strings"
)

// Order is a parsed order_by clause.
type Order struct {
	Key  string
	Desc bool
}

// OrderSchema whitelists sortable keys and supplies the default ordering.
type OrderSchema struct {
	Default     string
	DefaultDesc bool
	Keys        []string
}

// ParseOrderBy validates a raw order_by input ("key", "key desc", "key asc")
// against the schema. Empty input falls back to the schema default.
func ParseOrderBy(raw string, schema OrderSchema) (Order, error) {
	if schema.Default == "" {
		return Order{}, fmt.Errorf("filterexpr: order schema default key required")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Order{Key: schema.Default, Desc: schema.DefaultDesc}, nil
	}

	parts := strings.Fields(strings.ToLower(raw))
	if len(parts) > 2 {
		return Order{}, fmt.Errorf("%w: malformed order_by %q", ErrInvalid, raw)
	}
	ord := Order{Key: parts[0]}
	if len(parts) == 2 {
		switch parts[1] {
		case "asc":
		case "desc":
			ord.Desc = true
		default:
			return Order{}, fmt.Errorf("%w: unknown order direction %q", ErrInvalid, parts[1])
		}
	}

	for _, key := range schema.Keys {
		if key == ord.Key {
			return ord, nil
		}
	}
	return Order{}, fmt.Errorf("%w: order key %q not allowed", ErrInvalid, ord.Key)
}
