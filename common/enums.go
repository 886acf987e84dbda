// Enums shared between configuration and the at-rule passes. They live in
// their own package so the core packages do not depend on config.
//
//go:generate go tool go-enum --marshal --names
package common

import "strings"

// Policy for detecting unsatisfiable min/max pairs when joining conditions.
// ENUM(strict, disjoint)
type RangePolicy int

// Tree transformation pass.
// ENUM(flatten, merge, nest)
type Pass int

// Label returns the capitalized pass name used in diagnostics.
func (x Pass) Label() string {
	s := x.String()
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
