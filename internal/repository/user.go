// Package repository owns every read and write against the users and tokens
// tables
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/model"
	"bitwise74/user-api/pkg/security"

	"gorm.io/gorm"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

type CreateUser struct {
	Username  string
	Email     string
	Password  string
	Nickname  *string
	AboutMe   *string
	Gender    *string
	Birthdate *model.Date
	Favorites model.StringSlice
}

// UserChanges lists the fields a caller wants to change. Nil fields are left
// as they are.
type UserChanges struct {
	Username  *string
	Email     *string
	Nickname  *string
	AboutMe   *string
	Gender    *string
	Birthdate *model.Date
	Favorites *model.StringSlice
}

// apply copies every provided field onto u and returns the columns that
// were touched
func (ch *UserChanges) apply(u *model.User) []string {
	var cols []string

	if ch.Username != nil {
		u.Username = *ch.Username
		cols = append(cols, "username")
	}

	if ch.Email != nil {
		u.Email = *ch.Email
		cols = append(cols, "email")
	}

	if ch.Nickname != nil {
		u.Nickname = ch.Nickname
		cols = append(cols, "nickname")
	}

	if ch.AboutMe != nil {
		u.AboutMe = ch.AboutMe
		cols = append(cols, "about_me")
	}

	if ch.Gender != nil {
		u.Gender = ch.Gender
		cols = append(cols, "gender")
	}

	if ch.Birthdate != nil {
		u.Birthdate = ch.Birthdate
		cols = append(cols, "birthdate")
	}

	if ch.Favorites != nil {
		u.Favorites = *ch.Favorites
		cols = append(cols, "favorites")
	}

	return cols
}

type UserStore struct {
	db    *gorm.DB
	argon *security.ArgonHash
}

func NewUserStore(db *gorm.DB, argon *security.ArgonHash) *UserStore {
	return &UserStore{db: db, argon: argon}
}

// Create hashes the password and inserts a new user. The existence check is
// only a fast path: two concurrent creates can both pass it, and the unique
// indexes decide which one wins.
func (s *UserStore) Create(ctx context.Context, in CreateUser) (*model.User, error) {
	tx := s.db.WithContext(ctx)

	if err := checkUnique(tx, 0, &in.Username, &in.Email); err != nil {
		return nil, err
	}

	hash, err := s.argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		Nickname:     in.Nickname,
		AboutMe:      in.AboutMe,
		Gender:       in.Gender,
		Birthdate:    in.Birthdate,
		Favorites:    in.Favorites,
		PasswordHash: hash,
	}

	if err := tx.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.New(apperr.ErrConflict, "Username or email already exists")
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return u, nil
}

func (s *UserStore) Get(ctx context.Context, id uint) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "User not found")
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	return &u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "User not found")
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	return &u, nil
}

// List returns users ordered by ID. A limit outside 1..MaxListLimit falls
// back to the default.
func (s *UserStore) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	if skip < 0 {
		skip = 0
	}

	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}

	users := []model.User{}

	err := s.db.WithContext(ctx).
		Order("id asc").
		Offset(skip).
		Limit(limit).
		Find(&users).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users, %w", err)
	}

	return users, nil
}

// Update applies ch to the user with the given ID. Full and partial updates
// both land here; a full update simply provides more fields. The uniqueness
// pre-check has the same race as Create and the unique indexes stay the
// final arbiter.
func (s *UserStore) Update(ctx context.Context, id uint, ch UserChanges) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.ErrNotFound, "User not found")
			}

			return fmt.Errorf("failed to fetch user, %w", err)
		}

		if err := checkUnique(tx, u.ID, ch.Username, ch.Email); err != nil {
			return err
		}

		cols := ch.apply(&u)
		if len(cols) == 0 {
			return nil
		}

		u.UpdatedAt = time.Now().UTC()
		cols = append(cols, "updated_at")

		if err := tx.Model(&u).Select(cols).Updates(&u).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.ErrConflict, "Update failed due to constraint violation")
			}

			return fmt.Errorf("failed to update user, %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Delete removes the user and every ledger row it owns. It reports false
// without an error when there is no such user.
func (s *UserStore) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.Select("id").First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}

			return fmt.Errorf("failed to fetch user, %w", err)
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&model.Token{}).Error; err != nil {
			return fmt.Errorf("failed to delete user tokens, %w", err)
		}

		if err := tx.Delete(&model.User{}, u.ID).Error; err != nil {
			return fmt.Errorf("failed to delete user, %w", err)
		}

		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// checkUnique fails with a conflict when another user than exclude already
// holds the username or the email
func checkUnique(tx *gorm.DB, exclude uint, username, email *string) error {
	if username != nil {
		taken, err := heldByOther(tx, "username", *username, exclude)
		if err != nil {
			return err
		}

		if taken {
			return apperr.New(apperr.ErrConflict, "Username already exists")
		}
	}

	if email != nil {
		taken, err := heldByOther(tx, "email", *email, exclude)
		if err != nil {
			return err
		}

		if taken {
			return apperr.New(apperr.ErrConflict, "Email already exists")
		}
	}

	return nil
}

func heldByOther(tx *gorm.DB, column, value string, exclude uint) (bool, error) {
	var n int64

	err := tx.Model(&model.User{}).
		Where(column+" = ? AND id <> ?", value, exclude).
		Count(&n).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check if %s is taken, %w", column, err)
	}

	return n > 0, nil
}

// isUniqueViolation recognises unique index violations. Dialects that
// implement gorm's error translation return ErrDuplicatedKey; the message
// checks cover drivers that don't.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
