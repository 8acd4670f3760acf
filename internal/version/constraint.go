// Package version turns a user supplied version request into a semantic
// version range and picks the release that satisfies it.
//
// Accepted requests:
//
//	latest    any release
//	1         1.x.x
//	1.2       1.2.x
//	1.2.3     exactly 1.2.3 (pre-release and build metadata allowed,
//	          an optional "=" or "v" prefix is dropped)
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Latest is the request that matches every release.
const Latest = "latest"

var (
	// ErrInvalidVersion is returned for requests that are neither "latest",
	// a full semantic version, nor a numeric major[.minor] prefix.
	ErrInvalidVersion = errors.New("invalid version request")
	// ErrNoMatchingRelease is returned when no release satisfies a constraint.
	ErrNoMatchingRelease = errors.New("no matching release")
)

// Constraint is a normalized version request.
type Constraint struct {
	text   string
	exact  *semver.Version
	ranged *semver.Constraints
}

// String returns the range expression, e.g. "1.2.x" or "x.x.x".
func (c *Constraint) String() string {
	return c.text
}

// Exact reports whether the constraint pins a single version.
func (c *Constraint) Exact() bool {
	return c.exact != nil
}

// Check reports whether v satisfies the constraint.
func (c *Constraint) Check(v *semver.Version) bool {
	if v == nil {
		return false
	}
	if c.exact != nil {
		return v.Equal(c.exact)
	}
	return c.ranged.Check(v)
}

// NormalizeConstraint converts a version request into a Constraint.
//
// The request is case-folded first. A full semantic version is kept as is.
// Otherwise only the first two dot separated parts are read; anything after
// the minor part is ignored without validation.
func NormalizeConstraint(input string) (*Constraint, error) {
	req := strings.ToLower(strings.TrimSpace(input))

	if req == Latest {
		return newRange("x.x.x", "*")
	}

	if v, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimPrefix(req, "="), "v")); err == nil {
		return &Constraint{text: req, exact: v}, nil
	}

	parts := strings.Split(req, ".")
	major, ok := parseComponent(parts[0])
	if !ok {
		return nil, fmt.Errorf("%q: major version must be a non-negative number: %w", input, ErrInvalidVersion)
	}
	if len(parts) == 1 {
		text := fmt.Sprintf("%d.x.x", major)
		return newRange(text, text)
	}

	minor, ok := parseComponent(parts[1])
	if !ok {
		return nil, fmt.Errorf("%q: minor version must be a non-negative number: %w", input, ErrInvalidVersion)
	}
	text := fmt.Sprintf("%d.%d.x", major, minor)
	return newRange(text, text)
}

func newRange(text, expr string) (*Constraint, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	return &Constraint{text: text, ranged: c}, nil
}

// parseComponent reads the leading integer of s the way a lenient
// string-to-int coercion does: leading blanks and a sign are allowed, a 0x
// prefix switches to hexadecimal and everything after the digits is
// ignored. It fails when there are no digits or the value is negative.
func parseComponent(s string) (uint64, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}

	n, err := strconv.ParseUint(s[:end], base, 64)
	if err != nil {
		return 0, false
	}
	if negative && n != 0 {
		return 0, false
	}
	return n, true
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
