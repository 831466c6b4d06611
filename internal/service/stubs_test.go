package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceDB opens a fresh in-memory sqlite database with the schema
// migrated. Services open transactions on it; the stub repositories ignore
// the transaction handle and behave the same inside and outside one.
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	searchFn        func(context.Context, string, int, int) ([]models.User, error)
	listFn          func(context.Context, int, int) ([]models.User, error)
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
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		searchFn:        func(_ context.Context, _ string, _, _ int) ([]models.User, error) { return nil, nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getByUserIDFn func(context.Context, uint) (*models.Profile, error)
	getOrCreateFn func(context.Context, uint) (*models.Profile, error)
	updateFn      func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) GetOrCreate(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getOrCreateFn(ctx, userID)
}
func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{UserID: userID, Role: models.RoleUser}, nil
		},
		getOrCreateFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{UserID: userID, Role: models.RoleUser}, nil
		},
		updateFn: func(_ context.Context, _ *models.Profile) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint, uint) (*models.Post, error)
	listFeedFn   func(context.Context, uint, int, int) ([]*models.Post, error)
	listByUserFn func(context.Context, uint, uint, int, int) ([]*models.Post, error)
	deleteFn     func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.listFeedFn(ctx, viewerID, limit, offset)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID, currentUserID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByUserFn(ctx, userID, currentUserID, limit, offset)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) WithTx(*gorm.DB) repository.PostRepository { return s }

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		listFeedFn:   func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByUserFn: func(_ context.Context, _, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) WithTx(*gorm.DB) repository.CommentRepository { return s }

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]models.Comment, error) { return nil, nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	insertFn       func(context.Context, uint, uint) (bool, error)
	removeFn       func(context.Context, uint, uint) (bool, error)
	existsFn       func(context.Context, uint, uint) (bool, error)
	countForPostFn func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Insert(ctx context.Context, userID, postID uint) (bool, error) {
	return s.insertFn(ctx, userID, postID)
}
func (s *likeRepoStub) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	return s.removeFn(ctx, userID, postID)
}
func (s *likeRepoStub) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	return s.existsFn(ctx, userID, postID)
}
func (s *likeRepoStub) CountForPost(ctx context.Context, postID uint) (int64, error) {
	return s.countForPostFn(ctx, postID)
}
func (s *likeRepoStub) WithTx(*gorm.DB) repository.LikeRepository { return s }

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		insertFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		removeFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsFn:       func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countForPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	insertFn        func(context.Context, uint, uint) (bool, error)
	removeFn        func(context.Context, uint, uint) (bool, error)
	existsFn        func(context.Context, uint, uint) (bool, error)
	removeBetweenFn func(context.Context, uint, uint) error
	listFollowersFn func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) Insert(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.insertFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Remove(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.removeFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) RemoveBetween(ctx context.Context, userID1, userID2 uint) error {
	return s.removeBetweenFn(ctx, userID1, userID2)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) WithTx(*gorm.DB) repository.FollowRepository { return s }

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		insertFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		removeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsFn:        func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		removeBetweenFn: func(_ context.Context, _, _ uint) error { return nil },
		listFollowersFn: func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		listFollowingFn: func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// blockRepoStub is a stub for repository.BlockRepository.
type blockRepoStub struct {
	insertFn        func(context.Context, uint, uint) (bool, error)
	removeFn        func(context.Context, uint, uint) (bool, error)
	existsBetweenFn func(context.Context, uint, uint) (bool, error)
	listByBlockerFn func(context.Context, uint, int, int) ([]models.Block, error)
}

func (s *blockRepoStub) Insert(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return s.insertFn(ctx, blockerID, blockedID)
}
func (s *blockRepoStub) Remove(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return s.removeFn(ctx, blockerID, blockedID)
}
func (s *blockRepoStub) ExistsBetween(ctx context.Context, userID1, userID2 uint) (bool, error) {
	return s.existsBetweenFn(ctx, userID1, userID2)
}
func (s *blockRepoStub) ListByBlocker(ctx context.Context, blockerID uint, limit, offset int) ([]models.Block, error) {
	return s.listByBlockerFn(ctx, blockerID, limit, offset)
}
func (s *blockRepoStub) WithTx(*gorm.DB) repository.BlockRepository { return s }

func noopBlockRepo() *blockRepoStub {
	return &blockRepoStub{
		insertFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		removeFn:        func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsBetweenFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		listByBlockerFn: func(_ context.Context, _ uint, _, _ int) ([]models.Block, error) { return nil, nil },
	}
}

// reportRepoStub is a stub for repository.ReportRepository.
type reportRepoStub struct {
	createFn       func(context.Context, *models.Report) error
	getByIDFn      func(context.Context, uint) (*models.Report, error)
	listFn         func(context.Context, models.ReportStatus, int, int) ([]models.Report, error)
	updateStatusFn func(context.Context, uint, models.ReportStatus) error
}

func (s *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	return s.createFn(ctx, report)
}
func (s *reportRepoStub) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	return s.getByIDFn(ctx, id)
}
func (s *reportRepoStub) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	return s.listFn(ctx, status, limit, offset)
}
func (s *reportRepoStub) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error {
	return s.updateStatusFn(ctx, id, status)
}

func noopReportRepo() *reportRepoStub {
	return &reportRepoStub{
		createFn: func(_ context.Context, _ *models.Report) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Report, error) {
			return &models.Report{ID: id, Status: models.ReportStatusPending}, nil
		},
		listFn:         func(_ context.Context, _ models.ReportStatus, _, _ int) ([]models.Report, error) { return nil, nil },
		updateStatusFn: func(_ context.Context, _ uint, _ models.ReportStatus) error { return nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn      func(context.Context, *models.Notification) error
	markReadFn    func(context.Context, uint, uint) (bool, error)
	unreadCountFn func(context.Context, uint) (int64, error)
	listByUserFn  func(context.Context, uint, int, int) ([]models.Notification, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	return s.createFn(ctx, notification)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, id, userID uint) (bool, error) {
	return s.markReadFn(ctx, id, userID)
}
func (s *notificationRepoStub) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.unreadCountFn(ctx, userID)
}
func (s *notificationRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:      func(_ context.Context, _ *models.Notification) error { return nil },
		markReadFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unreadCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listByUserFn:  func(_ context.Context, _ uint, _, _ int) ([]models.Notification, error) { return nil, nil },
	}
}

// messageRepoStub is a stub for repository.MessageRepository.
type messageRepoStub struct {
	createFn    func(context.Context, *models.Message) error
	listInboxFn func(context.Context, uint, int, int) ([]models.Message, error)
	listSentFn  func(context.Context, uint, int, int) ([]models.Message, error)
}

func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	return s.createFn(ctx, message)
}
func (s *messageRepoStub) ListInbox(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.listInboxFn(ctx, userID, limit, offset)
}
func (s *messageRepoStub) ListSent(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	return s.listSentFn(ctx, userID, limit, offset)
}
func (s *messageRepoStub) WithTx(*gorm.DB) repository.MessageRepository { return s }

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:    func(_ context.Context, _ *models.Message) error { return nil },
		listInboxFn: func(_ context.Context, _ uint, _, _ int) ([]models.Message, error) { return nil, nil },
		listSentFn:  func(_ context.Context, _ uint, _, _ int) ([]models.Message, error) { return nil, nil },
	}
}

// activityRepoStub is a stub for repository.ActivityRepository.
type activityRepoStub struct {
	createFn     func(context.Context, *models.ActivityLog) error
	listByUserFn func(context.Context, uint, int, int) ([]models.ActivityLog, error)
}

func (s *activityRepoStub) Create(ctx context.Context, entry *models.ActivityLog) error {
	return s.createFn(ctx, entry)
}
func (s *activityRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ActivityLog, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}

func noopActivityRepo() *activityRepoStub {
	return &activityRepoStub{
		createFn:     func(_ context.Context, _ *models.ActivityLog) error { return nil },
		listByUserFn: func(_ context.Context, _ uint, _, _ int) ([]models.ActivityLog, error) { return nil, nil },
	}
}

// notifierStub records Notify calls. A non-nil err makes every delivery
// fail, which the rollback tests use to poison a transaction.
type notifierStub struct {
	calls []notifierCall
	err   error
}

type notifierCall struct {
	userID  uint
	message string
	trigger string
}

func (s *notifierStub) Notify(_ context.Context, userID uint, message, trigger string) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, notifierCall{userID: userID, message: message, trigger: trigger})
	return nil
}

func (s *notifierStub) NotifyTx(ctx context.Context, _ *gorm.DB, userID uint, message, trigger string) error {
	return s.Notify(ctx, userID, message, trigger)
}

// recorderStub records LogActivity calls.
type recorderStub struct {
	actions []string
}

func (s *recorderStub) LogActivity(_ context.Context, _ uint, action string) error {
	s.actions = append(s.actions, action)
	return nil
}

func (s *recorderStub) LogActivityTx(ctx context.Context, _ *gorm.DB, userID uint, action string) error {
	return s.LogActivity(ctx, userID, action)
}

func allowAllVisibility(_ context.Context, _, _ uint) (bool, error) { return true, nil }

func denyAllVisibility(_ context.Context, _, _ uint) (bool, error) { return false, nil }

func neverAdmin(_ context.Context, _ uint) (bool, error) { return false, nil }

func alwaysAdmin(_ context.Context, _ uint) (bool, error) { return true, nil }

// assertAppErrorCode asserts that err is an AppError carrying the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
