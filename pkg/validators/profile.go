package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrUsernameEmpty    = errors.New("no username provided")
	ErrUsernameTooLong  = errors.New("username can't be longer than 50 characters")
	ErrUsernameInvalid  = errors.New("username can't contain whitespace")
	ErrNicknameTooLong  = errors.New("nickname can't be longer than 50 characters")
	ErrGenderTooLong    = errors.New("gender can't be longer than 10 characters")
	ErrFavoriteHasComma = errors.New("favorites can't contain commas")
)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if utf8.RuneCountInString(u) > 50 {
		return ErrUsernameTooLong
	}

	if strings.ContainsFunc(u, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }) {
		return ErrUsernameInvalid
	}

	return nil
}

// ProfileValidator checks the optional profile fields. Nil pointers are
// skipped.
func ProfileValidator(nickname, gender *string, favorites []string) error {
	if nickname != nil && utf8.RuneCountInString(*nickname) > 50 {
		return ErrNicknameTooLong
	}

	if gender != nil && utf8.RuneCountInString(*gender) > 10 {
		return ErrGenderTooLong
	}

	for _, f := range favorites {
		if strings.Contains(f, ",") {
			return ErrFavoriteHasComma
		}
	}

	return nil
}
