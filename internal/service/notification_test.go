package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brainbattle-platform/brainbattle-clan/internal/domain"
	"github.com/brainbattle-platform/brainbattle-clan/internal/repository/mocks"
	"github.com/brainbattle-platform/brainbattle-clan/internal/service"
)

func TestNotificationService_CreateOnce_PushesWhenOnline(t *testing.T) {
	// Arrange
	mockNotifRepo := new(mocks.NotificationRepository)
	mockState := new(mocks.StateRepository)
	broadcaster := &recorderBroadcaster{}
	svc := service.NewNotificationService(mockNotifRepo, mockState, broadcaster)
	ctx := context.Background()

	mockNotifRepo.On("CreateOnce", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		assert.Equal(t, "user-1", n.UserID)
		assert.Equal(t, "evt-1", n.EventID)
		assert.Equal(t, domain.NotificationMutualFollow, n.Type)
		assert.NotEmpty(t, n.ID)
		return true
	})).Return(true, nil).Once()
	mockState.On("IsOnline", ctx, "user-1").Return(true, nil).Once()

	// Act
	created, err := svc.CreateOnce(ctx, "user-1", domain.NotificationMutualFollow, "evt-1", map[string]string{"peerId": "user-2"})

	// Assert
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, broadcaster.frames, 1)
	assert.Equal(t, "user-1", broadcaster.frames[0].User)
	assert.Equal(t, "notification.new", broadcaster.frames[0].Event)
	mockNotifRepo.AssertExpectations(t)
}

func TestNotificationService_CreateOnce_DuplicateAbsorbedSilently(t *testing.T) {
	// A redelivered event must not produce a second notification or push.
	mockNotifRepo := new(mocks.NotificationRepository)
	mockState := new(mocks.StateRepository)
	broadcaster := &recorderBroadcaster{}
	svc := service.NewNotificationService(mockNotifRepo, mockState, broadcaster)
	ctx := context.Background()

	mockNotifRepo.On("CreateOnce", ctx, mock.AnythingOfType("*domain.Notification")).
		Return(false, nil).Once()

	created, err := svc.CreateOnce(ctx, "user-1", domain.NotificationFollowCreated, "evt-dup", map[string]string{"followerId": "user-2"})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, broadcaster.frames)
	mockState.AssertNotCalled(t, "IsOnline", mock.Anything, mock.Anything)
}

func TestNotificationService_CreateOnce_OfflineSkipsPush(t *testing.T) {
	mockNotifRepo := new(mocks.NotificationRepository)
	mockState := new(mocks.StateRepository)
	broadcaster := &recorderBroadcaster{}
	svc := service.NewNotificationService(mockNotifRepo, mockState, broadcaster)
	ctx := context.Background()

	mockNotifRepo.On("CreateOnce", ctx, mock.AnythingOfType("*domain.Notification")).
		Return(true, nil).Once()
	mockState.On("IsOnline", ctx, "user-1").Return(false, nil).Once()

	created, err := svc.CreateOnce(ctx, "user-1", domain.NotificationFollowCreated, "evt-2", nil)

	require.NoError(t, err)
	assert.True(t, created, "the durable row is created regardless of presence")
	assert.Empty(t, broadcaster.frames)
}

func TestNotificationService_SweepRead_UsesRetentionCutoff(t *testing.T) {
	mockNotifRepo := new(mocks.NotificationRepository)
	mockState := new(mocks.StateRepository)
	svc := service.NewNotificationService(mockNotifRepo, mockState, &recorderBroadcaster{})
	ctx := context.Background()

	retention := 30 * 24 * time.Hour
	mockNotifRepo.On("DeleteReadBefore", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().UTC().Add(-retention)
		return cutoff.Sub(expected) < time.Minute && expected.Sub(cutoff) < time.Minute
	})).Return(int64(7), nil).Once()

	deleted, err := svc.SweepRead(ctx, retention)

	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	mockNotifRepo.AssertExpectations(t)
}
