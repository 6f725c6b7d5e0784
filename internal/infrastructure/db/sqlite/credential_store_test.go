package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pennywise/expense-tracker/internal/core/domain"
)

// StoreTestSuite runs every test against a fresh in-memory database.
type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	store, err := Open(suite.ctx, ":memory:")
	require.NoError(suite.T(), err, "failed to open test database")
	suite.store = store
}

func (suite *StoreTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func (suite *StoreTestSuite) createUser(username, email string) int64 {
	id, err := suite.store.CreateUser(suite.ctx, username, email, "$argon2id$hash")
	require.NoError(suite.T(), err, "failed to create user %s", username)
	return id
}

func (suite *StoreTestSuite) TestCreateAndFindUser() {
	id := suite.createUser("alice", "alice@example.com")
	assert.Positive(suite.T(), id)

	byEmail, err := suite.store.FindUserByEmail(suite.ctx, "alice@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, byEmail.ID)
	assert.Equal(suite.T(), "alice", byEmail.Username)
	assert.Equal(suite.T(), "$argon2id$hash", byEmail.PasswordHash)
	assert.WithinDuration(suite.T(), time.Now(), byEmail.CreatedAt, 5*time.Second)

	byID, err := suite.store.FindUserByID(suite.ctx, id)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), byEmail.Public(), byID)
}

func (suite *StoreTestSuite) TestIDsAreNotReused() {
	first := suite.createUser("alice", "alice@example.com")
	second := suite.createUser("bob", "bob@example.com")
	assert.Greater(suite.T(), second, first)
}

func (suite *StoreTestSuite) TestCreateUser_Duplicates() {
	suite.createUser("alice", "alice@example.com")

	_, err := suite.store.CreateUser(suite.ctx, "alice2", "alice@example.com", "h")
	assert.ErrorIs(suite.T(), err, domain.ErrDuplicateEmail)

	_, err = suite.store.CreateUser(suite.ctx, "alice", "other@example.com", "h")
	assert.ErrorIs(suite.T(), err, domain.ErrDuplicateUsername)

	_, err = suite.store.CreateUser(suite.ctx, "carol", "ALICE@example.com", "h")
	assert.ErrorIs(suite.T(), err, domain.ErrDuplicateEmail, "email uniqueness ignores case")
}

func (suite *StoreTestSuite) TestInsertUser_ConstraintCatchesRace() {
	// insertUser skips the pre-check, as a concurrent registration would.
	_, err := suite.store.insertUser(suite.ctx, "alice", "alice@example.com", "h")
	require.NoError(suite.T(), err)

	_, err = suite.store.insertUser(suite.ctx, "alice-2", "alice@example.com", "h")
	assert.ErrorIs(suite.T(), err, domain.ErrDuplicateEmail)

	_, err = suite.store.insertUser(suite.ctx, "alice", "fresh@example.com", "h")
	assert.ErrorIs(suite.T(), err, domain.ErrDuplicateUsername)
}

func (suite *StoreTestSuite) TestFindUser_NotFound() {
	_, err := suite.store.FindUserByEmail(suite.ctx, "ghost@example.com")
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)

	for _, id := range []int64{0, -1, 999} {
		_, err := suite.store.FindUserByID(suite.ctx, id)
		assert.ErrorIs(suite.T(), err, domain.ErrNotFound, "id %d", id)
	}
}

func (suite *StoreTestSuite) TestSessionLifecycle() {
	userID := suite.createUser("alice", "alice@example.com")
	now := time.Now()

	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "tok-1", now.Add(time.Hour)))

	sess, err := suite.store.FindValidSession(suite.ctx, "tok-1", now)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), userID, sess.UserID)
	assert.WithinDuration(suite.T(), now.Add(time.Hour), sess.ExpiresAt, time.Millisecond)

	require.NoError(suite.T(), suite.store.DeleteSession(suite.ctx, "tok-1"))
	_, err = suite.store.FindValidSession(suite.ctx, "tok-1", now)
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)

	// deleting again, or deleting nothing, is not an error
	assert.NoError(suite.T(), suite.store.DeleteSession(suite.ctx, "tok-1"))
	assert.NoError(suite.T(), suite.store.DeleteSession(suite.ctx, ""))
}

func (suite *StoreTestSuite) TestFindValidSession_Expiry() {
	userID := suite.createUser("alice", "alice@example.com")
	expiresAt := time.Now().Add(time.Minute).Truncate(time.Millisecond)
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "tok", expiresAt))

	_, err := suite.store.FindValidSession(suite.ctx, "tok", expiresAt.Add(-time.Millisecond))
	assert.NoError(suite.T(), err, "valid just before expiry")

	_, err = suite.store.FindValidSession(suite.ctx, "tok", expiresAt)
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound, "invalid at expiry")

	_, err = suite.store.FindValidSession(suite.ctx, "unknown", time.Now())
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)

	_, err = suite.store.FindValidSession(suite.ctx, "", time.Now())
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)
}

func (suite *StoreTestSuite) TestMultipleSessionsPerUser() {
	userID := suite.createUser("alice", "alice@example.com")
	exp := time.Now().Add(time.Hour)
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "laptop", exp))
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "phone", exp))

	require.NoError(suite.T(), suite.store.DeleteSession(suite.ctx, "laptop"))

	_, err := suite.store.FindValidSession(suite.ctx, "phone", time.Now())
	assert.NoError(suite.T(), err, "other devices stay logged in")

	_, err = suite.store.FindUserByID(suite.ctx, userID)
	assert.NoError(suite.T(), err, "deleting a session never deletes the user")
}

func (suite *StoreTestSuite) TestTokensAreStoredAsDigest() {
	userID := suite.createUser("alice", "alice@example.com")
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "plain-token", time.Now().Add(time.Hour)))

	var stored string
	require.NoError(suite.T(), suite.store.db.QueryRow("SELECT session_token FROM sessions").Scan(&stored))
	assert.NotEqual(suite.T(), "plain-token", stored)
	assert.Len(suite.T(), stored, 64)
}

func (suite *StoreTestSuite) TestCreateSession_UnknownUser() {
	err := suite.store.CreateSession(suite.ctx, 42, "tok", time.Now().Add(time.Hour))
	assert.Error(suite.T(), err, "foreign key enforced")
}

func (suite *StoreTestSuite) TestDeleteExpiredSessions() {
	userID := suite.createUser("alice", "alice@example.com")
	now := time.Now()
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "old-1", now.Add(-time.Hour)))
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "old-2", now.Add(-time.Minute)))
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, userID, "live", now.Add(time.Hour)))

	n, err := suite.store.DeleteExpiredSessions(suite.ctx, now)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), n)

	_, err = suite.store.FindValidSession(suite.ctx, "live", now)
	assert.NoError(suite.T(), err)
}

func (suite *StoreTestSuite) TestUserCount() {
	suite.createUser("alice", "alice@example.com")
	suite.createUser("bob", "bob@example.com")

	count, err := suite.store.UserCount(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := store.CreateUser(ctx, "alice", "alice@example.com", "h")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err, "migrations are idempotent")
	defer reopened.Close()

	u, err := reopened.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir())
	assert.Error(t, err)
}
