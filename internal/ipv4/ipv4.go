// Package ipv4 holds the dotted-quad helpers used to validate and group
// IP bookmarks.
package ipv4

import (
	"regexp"
	"strings"
)

// NonStandardSubnet is the group key for values that are not valid IPv4.
const NonStandardSubnet = "Non-Standard"

// Each octet is 0-255; leading zeros such as "010" are tolerated.
var dottedQuad = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)

// Valid reports whether s is a strict dotted-quad IPv4 address.
func Valid(s string) bool {
	return dottedQuad.MatchString(s)
}

// Subnet returns the /24 group key for an address, e.g. "192.168.10.0/24".
func Subnet(s string) string {
	if !Valid(s) {
		return NonStandardSubnet
	}
	return s[:strings.LastIndexByte(s, '.')] + ".0/24"
}
