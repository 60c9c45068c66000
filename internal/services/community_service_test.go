// file: internal/services/community_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"engagehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventReq(communityID int64) *CreateEventRequest {
	return &CreateEventRequest{
		CommunityID: communityID,
		Title:       "Beach Cleanup Morning",
		StartsAt:    time.Now().Add(48 * time.Hour),
	}
}

func TestJoinCommunity(t *testing.T) {
	e := newEnv()
	e.f.addUser(2, models.RoleUser)
	e.f.addCommunity(10, 1, models.VerificationVerified)
	ctx := context.Background()

	require.NoError(t, e.community.Join(ctx, 2, 10))

	assert.True(t, e.f.members[10][2])
	assert.Equal(t, 1, e.f.communities[10].MemberCount)
	assert.Equal(t, int64(PointsCommunityJoined), e.userTotal(2))

	metrics := e.f.impact[2]
	require.NotNil(t, metrics)
	assert.Equal(t, 1, metrics.CommunitiesJoined)
}

func TestJoinCommunityTwiceConflicts(t *testing.T) {
	e := newEnv()
	e.f.addUser(2, models.RoleUser)
	e.f.addCommunity(10, 1, models.VerificationVerified)
	ctx := context.Background()

	require.NoError(t, e.community.Join(ctx, 2, 10))

	err := e.community.Join(ctx, 2, 10)
	require.Error(t, err)
	assert.True(t, IsConflictError(err))

	// No second joining award.
	assert.Equal(t, int64(PointsCommunityJoined), e.userTotal(2))
}

func TestJoinUnknownCommunity(t *testing.T) {
	e := newEnv()
	e.f.addUser(2, models.RoleUser)

	err := e.community.Join(context.Background(), 2, 404)
	assert.True(t, IsNotFoundError(err))
}

func TestCreateEvent(t *testing.T) {
	e := newEnv()
	creator := e.f.addUser(1, models.RoleUser)
	e.f.addCommunity(10, creator.ID, models.VerificationVerified)
	ctx := context.Background()

	event, err := e.community.CreateEvent(ctx, 1, eventReq(10))
	require.NoError(t, err)

	assert.NotZero(t, event.ID)
	assert.Equal(t, int64(10), event.CommunityID)
	assert.Equal(t, 1, e.f.communities[10].EventCount)

	assert.Equal(t, int64(PointsEventCreation), e.userTotal(1))
	metrics := e.f.impact[1]
	require.NotNil(t, metrics)
	assert.Equal(t, 1, metrics.EventsCreated)
}

func TestCreateEventRequiresVerifiedCommunity(t *testing.T) {
	e := newEnv()
	creator := e.f.addUser(1, models.RoleUser)
	e.f.addCommunity(10, creator.ID, "unverified")

	_, err := e.community.CreateEvent(context.Background(), 1, eventReq(10))
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, CodeNotVerified))
}

func TestCreateEventRequiresCreatorOrStaff(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(2, models.RoleUser)
	mod := e.f.addUser(5, models.RoleModerator)
	e.f.addCommunity(10, 1, models.VerificationVerified)
	ctx := context.Background()

	_, err := e.community.CreateEvent(ctx, 2, eventReq(10))
	assert.True(t, IsForbiddenError(err))

	_, err = e.community.CreateEvent(ctx, mod.ID, eventReq(10))
	assert.NoError(t, err)
}

func TestGetEventComputesCapacity(t *testing.T) {
	e := newEnv()
	organizer := e.f.addUser(1, models.RoleUser)
	e.f.addCommunity(10, organizer.ID, models.VerificationVerified)
	max := 3
	e.f.addEvent(100, 10, organizer.ID, &max)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	_, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	event, err := e.community.GetEvent(ctx, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, event.ParticipantCount)
	require.NotNil(t, event.AvailableSpots)
	assert.Equal(t, 2, *event.AvailableSpots)
	assert.False(t, event.IsFull)
}

func TestGetImpactMetricsLazyCreate(t *testing.T) {
	e := newEnv()
	e.f.addUser(2, models.RoleUser)

	metrics, err := e.user.GetImpactMetrics(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), metrics.UserID)
	assert.Zero(t, metrics.EventsParticipated)

	_, err = e.user.GetImpactMetrics(context.Background(), 404)
	assert.True(t, IsNotFoundError(err))
}
