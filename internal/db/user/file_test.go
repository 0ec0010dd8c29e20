package user

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL         = "a@b.com"
	USERNAME      = "eiz"
	PASSWORD_HASH = "test-password-hash"
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type fileTestSuite struct {
	suite.Suite
	path string
	repo *FileUserRepository
}

func (suite *fileTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "users.json")
	suite.repo = NewFileRepository(suite.path)
}

func TestFileUserRepository(t *testing.T) {
	suite.Run(t, new(fileTestSuite))
}

func (suite *fileTestSuite) writeFile(content string) {
	suite.Require().NoError(os.WriteFile(suite.path, []byte(content), 0o600))
}

func (suite *fileTestSuite) TestMissingFileIsEmpty() {
	_, err := suite.repo.GetByEmail(context.Background(), EMAIL)
	suite.Require().ErrorIs(err, user.ErrUserDoesNotExist)

	err = suite.repo.SetPassword(context.Background(), EMAIL, PASSWORD_HASH, NOW)
	suite.Require().ErrorIs(err, user.ErrUserDoesNotExist)

	_, err = os.Stat(suite.path)
	suite.Require().True(os.IsNotExist(err))
}

func (suite *fileTestSuite) TestReadsExistingLayout() {
	suite.writeFile(`{
  "a@b.com": {"email": "a@b.com", "username": "eiz", "passwordHash": "test-password-hash"}
}`)

	a, err := suite.repo.GetByEmail(context.Background(), EMAIL)

	assert := suite.Require()
	assert.NoError(err)
	assert.Equal(user.Account{Email: EMAIL, Username: USERNAME, PasswordHash: PASSWORD_HASH}, a)
}

func (suite *fileTestSuite) TestSetPassword() {
	suite.Require().NoError(suite.repo.Create(context.Background(), user.Account{
		Email:        EMAIL,
		Username:     USERNAME,
		PasswordHash: PASSWORD_HASH,
	}))

	err := suite.repo.SetPassword(context.Background(), EMAIL, "new-hash", NOW)
	suite.Require().NoError(err)

	a, err := suite.repo.GetByEmail(context.Background(), EMAIL)
	assert := suite.Require()
	assert.NoError(err)
	assert.Equal(user.PasswordHash("new-hash"), a.PasswordHash)
	assert.Equal(user.Username(USERNAME), a.Username)
	assert.Equal(c.NewOptional(NOW, true), a.UpdatedAt)

	reopened, err := NewFileRepository(suite.path).GetByEmail(context.Background(), EMAIL)
	assert.NoError(err)
	assert.Equal(a, reopened)
}

func (suite *fileTestSuite) TestEmailIsCaseSensitive() {
	suite.Require().NoError(suite.repo.Create(context.Background(), user.Account{
		Email:        EMAIL,
		Username:     USERNAME,
		PasswordHash: PASSWORD_HASH,
	}))

	err := suite.repo.SetPassword(context.Background(), "A@b.com", "new-hash", NOW)
	suite.Require().ErrorIs(err, user.ErrUserDoesNotExist)
}

func (suite *fileTestSuite) TestCorruptFile() {
	suite.writeFile(`{"a@b.com": [`)

	_, err := suite.repo.GetByEmail(context.Background(), EMAIL)
	var invalidState *e.InvalidStateError
	suite.Require().ErrorAs(err, &invalidState)

	err = suite.repo.SetPassword(context.Background(), EMAIL, "new-hash", NOW)
	suite.Require().ErrorAs(err, &invalidState)
}

func (suite *fileTestSuite) TestRecordWithoutHashIsInvalid() {
	suite.writeFile(`{"a@b.com": {"email": "a@b.com", "username": "eiz"}}`)

	_, err := suite.repo.GetByEmail(context.Background(), EMAIL)
	var invalidState *e.InvalidStateError
	suite.Require().ErrorAs(err, &invalidState)
}

func (suite *fileTestSuite) TestNoTemporaryFilesLeft() {
	suite.Require().NoError(suite.repo.Create(context.Background(), user.Account{
		Email:        EMAIL,
		Username:     USERNAME,
		PasswordHash: PASSWORD_HASH,
	}))
	suite.Require().NoError(suite.repo.SetPassword(context.Background(), EMAIL, "new-hash", NOW))

	entries, err := os.ReadDir(filepath.Dir(suite.path))
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Require().Equal("users.json", entries[0].Name())
}

func (suite *fileTestSuite) TestConcurrentUpdatesOfDistinctAccounts() {
	const count = 20
	for i := 0; i < count; i++ {
		suite.Require().NoError(suite.repo.Create(context.Background(), user.Account{
			Email:        c.Email(fmt.Sprintf("user-%d@b.com", i)),
			Username:     user.Username(fmt.Sprintf("user-%d", i)),
			PasswordHash: PASSWORD_HASH,
		}))
	}

	wg := sync.WaitGroup{}
	errs := make(chan error, count)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := c.Email(fmt.Sprintf("user-%d@b.com", i))
			hash := user.PasswordHash(fmt.Sprintf("hash-%d", i))
			errs <- suite.repo.SetPassword(context.Background(), email, hash, NOW)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.Require().NoError(err)
	}

	for i := 0; i < count; i++ {
		a, err := suite.repo.GetByEmail(context.Background(), c.Email(fmt.Sprintf("user-%d@b.com", i)))
		suite.Require().NoError(err)
		suite.Require().Equal(user.PasswordHash(fmt.Sprintf("hash-%d", i)), a.PasswordHash)
	}
}

func (suite *fileTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := suite.repo.SetPassword(ctx, EMAIL, "new-hash", NOW)
	suite.Require().ErrorIs(err, context.Canceled)
}
