package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// maxIDLength bounds textual parcel identities; anything longer cannot be a
// registered parcel and is rejected before parsing.
const maxIDLength = 9

// ParseParcelID parses a parcel identity from user input (CLI arguments, URL
// path segments). Identities are positive decimal integers; an optional leading
// "#" is accepted because plots are displayed as "Plot #12".
//
// Parsing does not consult the registry: an identity that parses but is not
// registered is reported later as PARCEL_NOT_FOUND by the registry itself.
func ParseParcelID(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0, New(ErrCodeInvalidInput, "parcel id cannot be empty")
	}
	if len(s) > maxIDLength {
		return 0, New(ErrCodeInvalidInput, "parcel id too long: %q", s)
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, New(ErrCodeInvalidInput, "parcel id must be numeric: %q", s)
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "parse parcel id %q", s)
	}
	if id <= 0 {
		return 0, New(ErrCodeInvalidInput, "parcel id must be positive: %d", id)
	}
	return id, nil
}

// ValidateSessionID checks that a session identifier is safe to use as a map
// key and log field. Session IDs are UUID strings issued by the server.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "session id too long (max 64 characters)")
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-') {
			return New(ErrCodeInvalidInput, "session id contains invalid characters")
		}
	}
	return nil
}
