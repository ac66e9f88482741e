package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fluss/internal/models"
	"fluss/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fameRepoStub struct {
	castFn          func(context.Context, uint, uint, int) (int, repository.CastOutcome, error)
	valueForFn      func(context.Context, uint, uint) (*int, error)
	removeForPostFn func(context.Context, uint) error
}

func (s *fameRepoStub) Cast(ctx context.Context, userID, postID uint, value int) (int, repository.CastOutcome, error) {
	return s.castFn(ctx, userID, postID, value)
}
func (s *fameRepoStub) ValueFor(ctx context.Context, userID, postID uint) (*int, error) {
	return s.valueForFn(ctx, userID, postID)
}
func (s *fameRepoStub) RemoveForPost(ctx context.Context, postID uint) error {
	return s.removeForPostFn(ctx, postID)
}

func noopFameRepo() *fameRepoStub {
	return &fameRepoStub{
		castFn: func(context.Context, uint, uint, int) (int, repository.CastOutcome, error) {
			return 1, repository.CastCreated, nil
		},
		valueForFn:      func(context.Context, uint, uint) (*int, error) { return nil, nil },
		removeForPostFn: func(context.Context, uint) error { return nil },
	}
}

type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint, uint) (*models.Post, error)
	getByOwnerIDFn func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	feedFn         func(context.Context, int, *time.Time, uint) ([]*models.Post, bool, error)
	updateFn       func(context.Context, *models.Post) error
	deleteFn       func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) GetByOwnerID(ctx context.Context, ownerID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.getByOwnerIDFn(ctx, ownerID, limit, offset, viewerID)
}
func (s *postRepoStub) Feed(ctx context.Context, limit int, cursor *time.Time, viewerID uint) ([]*models.Post, bool, error) {
	return s.feedFn(ctx, limit, cursor, viewerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		getByOwnerIDFn: func(context.Context, uint, int, int, uint) ([]*models.Post, error) { return nil, nil },
		feedFn: func(context.Context, int, *time.Time, uint) ([]*models.Post, bool, error) {
			return nil, false, nil
		},
		updateFn: func(context.Context, *models.Post) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listFn          func(context.Context, int, int) ([]*models.User, error)
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(context.Context, *models.User) error { return nil },
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		listFn:          func(context.Context, int, int) ([]*models.User, error) { return nil, nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
	}
}

type mailerStub struct {
	sendFn func(context.Context, string, string, string) error
}

func (s *mailerStub) Send(ctx context.Context, to, subject, body string) error {
	if s.sendFn == nil {
		return nil
	}
	return s.sendFn(ctx, to, subject, body)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertPermissionError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodePermissionDenied)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}
