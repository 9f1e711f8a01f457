package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bitwise74/user-api/db"
	"bitwise74/user-api/internal/apperr"
	"bitwise74/user-api/internal/model"
	"bitwise74/user-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	d, err := db.New(&db.Opts{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(d) })

	return d
}

func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestStore(t *testing.T) (*UserStore, *gorm.DB) {
	t.Helper()

	d := openTestDB(t)
	return NewUserStore(d, testArgon()), d
}

func ptr[T any](v T) *T {
	return &v
}

func mustCreate(t *testing.T, s *UserStore, username, email string) *model.User {
	t.Helper()

	u, err := s.Create(context.Background(), CreateUser{
		Username: username,
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)

	return u
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	birthdate := model.NewDate(1990, time.January, 1)

	created, err := s.Create(ctx, CreateUser{
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "secret1",
		Nickname:  ptr("Al"),
		AboutMe:   ptr("hi"),
		Gender:    ptr("other"),
		Birthdate: &birthdate,
		Favorites: model.StringSlice{"coding", "reading"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "secret1", created.PasswordHash)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "Al", *got.Nickname)
	assert.Equal(t, "hi", *got.AboutMe)
	assert.Equal(t, "other", *got.Gender)
	assert.Equal(t, "1990-01-01", got.Birthdate.String())
	assert.Equal(t, model.StringSlice{"coding", "reading"}, got.Favorites)
	assert.Equal(t, created.PasswordHash, got.PasswordHash)

	ok, err := testArgon().VerifyPasswd("secret1", got.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateConflicts(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, "alice", "a@x.com")

	_, err := s.Create(context.Background(), CreateUser{Username: "alice", Email: "other@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Username already exists", apperr.Message(err))

	_, err = s.Create(context.Background(), CreateUser{Username: "bob", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Email already exists", apperr.Message(err))
}

func TestConcurrentCreateSameUsername(t *testing.T) {
	s, d := newTestStore(t)

	const n = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)

	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			_, errs[i] = s.Create(context.Background(), CreateUser{
				Username: "racer",
				Email:    "racer" + string(rune('a'+i)) + "@x.com",
				Password: "secret1",
			})
		}()
	}

	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, apperr.ErrConflict):
			conflicts++
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	var count int64
	require.NoError(t, d.Model(&model.User{}).Where("username = ?", "racer").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIsUniqueViolation(t *testing.T) {
	_, d := newTestStore(t)

	require.NoError(t, d.Create(&model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"}).Error)
	err := d.Create(&model.User{Username: "alice", Email: "b@x.com", PasswordHash: "h"}).Error
	require.Error(t, err)

	assert.True(t, isUniqueViolation(err))
	assert.False(t, isUniqueViolation(gorm.ErrRecordNotFound))
}

func TestUpdatePartialLeavesOtherFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, CreateUser{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret1",
		AboutMe:  ptr("hello"),
	})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, UserChanges{Nickname: ptr("Al")})
	require.NoError(t, err)
	assert.Equal(t, "Al", *updated.Nickname)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "hello", *got.AboutMe)
	assert.Equal(t, "Al", *got.Nickname)
	assert.Nil(t, got.Gender)
	assert.Equal(t, created.PasswordHash, got.PasswordHash)
	assert.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestUpdateFullReplacesProvidedFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "alice", "a@x.com")
	birthdate := model.NewDate(1991, time.June, 2)
	favorites := model.StringSlice{"go"}

	updated, err := s.Update(ctx, u.ID, UserChanges{
		Username:  ptr("alice2"),
		Email:     ptr("alice2@x.com"),
		Nickname:  ptr("A"),
		AboutMe:   ptr("bio"),
		Gender:    ptr("f"),
		Birthdate: &birthdate,
		Favorites: &favorites,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "alice2@x.com", got.Email)
	assert.Equal(t, "1991-06-02", got.Birthdate.String())
	assert.Equal(t, model.StringSlice{"go"}, got.Favorites)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestUpdateOwnValuesIsNotAConflict(t *testing.T) {
	s, _ := newTestStore(t)
	u := mustCreate(t, s, "alice", "a@x.com")

	_, err := s.Update(context.Background(), u.ID, UserChanges{Username: ptr("alice"), Email: ptr("a@x.com")})
	assert.NoError(t, err)
}

func TestUpdateConflicts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := mustCreate(t, s, "alice", "a@x.com")
	mustCreate(t, s, "bob", "b@x.com")

	_, err := s.Update(ctx, alice.ID, UserChanges{Username: ptr("bob")})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.Update(ctx, alice.ID, UserChanges{Email: ptr("b@x.com")})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// a failed update leaves the record untouched
	got, err := s.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestConcurrentUpdatesOfDistinctUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const n = 8
	ids := make([]uint, n)
	for i := range n {
		ids[i] = mustCreate(t, s, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@x.com", i)).ID
	}

	for round := range 20 {
		var (
			wg   sync.WaitGroup
			errs = make([]error, n)
		)

		start := make(chan struct{})
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start

				_, errs[i] = s.Update(ctx, ids[i], UserChanges{Nickname: ptr(fmt.Sprintf("nick-%d-%d", round, i))})
			}()
		}

		close(start)
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "round %d, user %d", round, i)
		}
	}

	for i, id := range ids {
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("nick-19-%d", i), *got.Nickname)
	}
}

func TestConcurrentDeletesAndUpdates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const n = 8
	ids := make([]uint, n)
	for i := range n {
		ids[i] = mustCreate(t, s, fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@x.com", i)).ID
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)

	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			if i%2 == 0 {
				_, errs[i] = s.Delete(ctx, ids[i])
				return
			}

			_, errs[i] = s.Update(ctx, ids[i], UserChanges{AboutMe: ptr("still here")})
		}()
	}

	close(start)
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "user %d", i)
	}
}

func TestUpdateConflictAtCommit(t *testing.T) {
	s, d := newTestStore(t)
	ctx := context.Background()
	alice := mustCreate(t, s, "alice", "a@x.com")

	// another writer takes the name after the uniqueness check passed
	var once sync.Once
	err := d.Callback().Update().Before("gorm:update").Register("test:take_username", func(tx *gorm.DB) {
		once.Do(func() {
			now := time.Now().UTC()
			tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
				"carol", "c@x.com", "h", now, now,
			).Error)
		})
	})
	require.NoError(t, err)

	_, err = s.Update(ctx, alice.ID, UserChanges{Username: ptr("carol")})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Update failed due to constraint violation", apperr.Message(err))

	got, err := s.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Update(context.Background(), 404, UserChanges{Nickname: ptr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApplyTracksColumns(t *testing.T) {
	u := &model.User{Username: "alice", Email: "a@x.com"}
	ch := UserChanges{Nickname: ptr("Al"), Gender: ptr("m")}

	cols := ch.apply(u)
	assert.Equal(t, []string{"nickname", "gender"}, cols)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Al", *u.Nickname)

	assert.Empty(t, (&UserChanges{}).apply(u))
}

func TestDelete(t *testing.T) {
	s, d := newTestStore(t)
	ctx := context.Background()
	u := mustCreate(t, s, "alice", "a@x.com")

	ledger := NewTokenLedger(d)
	require.NoError(t, ledger.Record(ctx, "tok-1", u.ID))

	deleted, err := s.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.Get(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// tokens cascade with their owner
	var count int64
	require.NoError(t, d.Model(&model.Token{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Zero(t, count)

	deleted, err = s.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	s, _ := newTestStore(t)

	deleted, err := s.Delete(context.Background(), 12345)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		mustCreate(t, s, name, name+"@x.com")
	}

	all, err := s.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Username)

	page, err := s.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Username)

	none, err := s.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetByUsername(t *testing.T) {
	s, _ := newTestStore(t)
	u := mustCreate(t, s, "alice", "a@x.com")

	got, err := s.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
