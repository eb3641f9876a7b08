package gen

import "github.com/randalmurphal/specflow"

// Placed is a fresh payload with its assigned position.
type Placed struct {
	Payload  specflow.Payload
	Position int
}

// Merge assigns positions to fresh payloads around locked items. Locked
// items keep their exact positions; fresh payloads fill the unused
// positions in [0, limit) smallest-first, in provider order. Payloads
// beyond the available positions are dropped.
func Merge(locked []specflow.Item, fresh []specflow.Payload, limit int) []Placed {
	taken := make(map[int]bool, len(locked))
	for _, item := range locked {
		taken[item.Position] = true
	}

	free := limit - len(locked)
	if free < 0 {
		free = 0
	}
	if len(fresh) > free {
		fresh = fresh[:free]
	}

	placed := make([]Placed, 0, len(fresh))
	pos := 0
	for _, p := range fresh {
		for taken[pos] {
			pos++
		}
		placed = append(placed, Placed{Payload: p, Position: pos})
		taken[pos] = true
	}
	return placed
}
