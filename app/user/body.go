// Package user contains the user record endpoints
package user

import (
	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/model"
	"bitwise74/user-api/internal/repository"
	"bitwise74/user-api/pkg/validators"
)

type createBody struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Nickname  *string     `json:"nickname"`
	AboutMe   *string     `json:"about_me"`
	Gender    *string     `json:"gender"`
	Birthdate *model.Date `json:"birthdate"`
	Favorites []string    `json:"favorites"`
}

func (b *createBody) validate() error {
	for _, err := range []error{
		validators.UsernameValidator(b.Username),
		validators.EmailValidator(b.Email),
		validators.PasswordValidator(b.Password),
		validators.ProfileValidator(b.Nickname, b.Gender, b.Favorites),
	} {
		if err != nil {
			return apperr.New(apperr.ErrValidation, err.Error())
		}
	}

	return nil
}

func (b *createBody) toCreate() repository.CreateUser {
	return repository.CreateUser{
		Username:  b.Username,
		Email:     b.Email,
		Password:  b.Password,
		Nickname:  b.Nickname,
		AboutMe:   b.AboutMe,
		Gender:    b.Gender,
		Birthdate: b.Birthdate,
		Favorites: model.StringSlice(b.Favorites),
	}
}

// updateBody is shared by PUT and PATCH. Absent and null fields are left
// as they are.
type updateBody struct {
	Username  *string     `json:"username"`
	Email     *string     `json:"email"`
	Nickname  *string     `json:"nickname"`
	AboutMe   *string     `json:"about_me"`
	Gender    *string     `json:"gender"`
	Birthdate *model.Date `json:"birthdate"`
	Favorites *[]string   `json:"favorites"`
}

func (b *updateBody) validate() error {
	var errs []error

	if b.Username != nil {
		errs = append(errs, validators.UsernameValidator(*b.Username))
	}

	if b.Email != nil {
		errs = append(errs, validators.EmailValidator(*b.Email))
	}

	var favorites []string
	if b.Favorites != nil {
		favorites = *b.Favorites
	}

	errs = append(errs, validators.ProfileValidator(b.Nickname, b.Gender, favorites))

	for _, err := range errs {
		if err != nil {
			return apperr.New(apperr.ErrValidation, err.Error())
		}
	}

	return nil
}

func (b *updateBody) toChanges() repository.UserChanges {
	ch := repository.UserChanges{
		Username:  b.Username,
		Email:     b.Email,
		Nickname:  b.Nickname,
		AboutMe:   b.AboutMe,
		Gender:    b.Gender,
		Birthdate: b.Birthdate,
	}

	if b.Favorites != nil {
		f := model.StringSlice(*b.Favorites)
		ch.Favorites = &f
	}

	return ch
}
