package ipv4

import "github.com/maruel/natural"

// Compare orders two strings with digit runs compared by numeric value, so
// "10.0.0.9" sorts before "10.0.0.10". Returns -1, 0 or 1.
func Compare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}
