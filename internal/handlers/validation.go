package handlers

import (
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	fullNamePattern = regexp.MustCompile(`^[a-zA-Z ]{2,50}$`)

	reservedUsernames = map[string]struct{}{
		"admin":     {},
		"user":      {},
		"moderator": {},
		"system":    {},
	}
)

// pathID reads a path identifier and rejects anything that does not parse
// as a UUID before it can reach storage.
func pathID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if err := uuid.Validate(id); err != nil {
		respondError(r.Context(), w, http.StatusBadRequest, "invalid "+param)
		return "", false
	}
	return id, true
}

func validateUsername(username string) []string {
	var problems []string
	if !usernamePattern.MatchString(username) {
		problems = append(problems, "username must be 3-30 characters of letters, digits, or underscores")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		problems = append(problems, "username is reserved")
	}
	return problems
}

func validateFullName(fullName string) []string {
	if !fullNamePattern.MatchString(fullName) {
		return []string{"full name must be 2-50 characters of letters and spaces"}
	}
	return nil
}

func validateEmail(email string) []string {
	if _, err := mail.ParseAddress(email); err != nil {
		return []string{"email address is invalid"}
	}
	return nil
}

func validatePassword(password string) []string {
	var problems []string
	if len(password) < 6 {
		problems = append(problems, "password must be at least 6 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		problems = append(problems, "password must contain upper and lower case letters, a digit, and a special character")
	}
	return problems
}
