package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"forum-api/internal/response"
)

// Username length bounds, matching the binding rules on the request DTOs
const (
	minUsernameLength = 2
	maxUsernameLength = 55
)

// slugify lower-cases s, strips accents and joins words with single dashes
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(strings.ToLower(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// lookupError maps a repository lookup failure to NotFound or Internal
func lookupError(err error, notFoundMessage, internalMessage string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFoundError(notFoundMessage, "")
	}
	return response.NewInternalError(internalMessage, err)
}

// changed reports whether an optional string field carries a new value
func changed(next *string, current string) bool {
	return next != nil && *next != current
}

// checkUsername applies the username length rule to the trimmed value
func checkUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return response.NewValidationError("Invalid username",
			fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
