package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxWidth bounds the width accepted from users. The search is exponential in
// the width; anything above this is a typo rather than a request.
const MaxWidth = 64

// ValidateWidth validates a requested hypertree width.
func ValidateWidth(k int) error {
	if k <= 0 {
		return New(ErrCodeInvalidWidth, "width must be positive, got %d", k)
	}
	if k > MaxWidth {
		return New(ErrCodeInvalidWidth, "width too large (max %d), got %d", MaxWidth, k)
	}
	return nil
}

// identifierRegex matches names accepted for vertices and atoms.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.:'$-]*$`)

// ValidateIdentifier validates a vertex or atom name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 256 characters
func ValidateIdentifier(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "identifier too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "identifier %q contains invalid characters", name)
		}
	}

	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid identifier: %q", name)
	}

	return nil
}

// ValidatePath validates a user-supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateAlgorithm validates an algorithm name against the registered set.
func ValidateAlgorithm(name string, known []string) error {
	for _, k := range known {
		if name == k {
			return nil
		}
	}
	return New(ErrCodeInvalidAlgorithm, "unknown algorithm %q (valid: %s)", name, strings.Join(known, ", "))
}
