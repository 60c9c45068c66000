// file: internal/services/participation_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"engagehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedEvent sets up a verified community, its creator and one event.
func seedEvent(e *env, maxParticipants *int) (organizer *models.User, event *models.Event) {
	organizer = e.f.addUser(1, models.RoleUser)
	e.f.addCommunity(10, organizer.ID, models.VerificationVerified)
	event = e.f.addEvent(100, 10, organizer.ID, maxParticipants)
	return organizer, event
}

func TestRegisterHappyPath(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)

	p, err := e.participation.Register(context.Background(), 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	assert.Equal(t, models.ParticipationRegistered, p.Status)
	assert.Equal(t, int64(100), p.EventID)
	assert.Equal(t, int64(10), p.CommunityID)
}

func TestRegisterUnknownEvent(t *testing.T) {
	e := newEnv()
	e.f.addUser(2, models.RoleUser)

	_, err := e.participation.Register(context.Background(), 2, &RegisterParticipationRequest{EventID: 999})
	assert.True(t, IsNotFoundError(err))
}

func TestRegisterTwiceConflicts(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	_, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, CodeAlreadyRegistered))
}

func TestRegisterCapacityExceeded(t *testing.T) {
	e := newEnv()
	max := 2
	seedEvent(e, &max)
	ctx := context.Background()

	for _, uid := range []int64{2, 3, 4} {
		e.f.addUser(uid, models.RoleUser)
	}

	_, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)
	_, err = e.participation.Register(ctx, 3, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.Register(ctx, 4, &RegisterParticipationRequest{EventID: 100})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, CodeCapacityExceeded))
}

func TestRegisterAfterLeaveSucceeds(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	_, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)
	require.NoError(t, e.participation.Leave(ctx, 2, 100))

	_, err = e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	assert.NoError(t, err, "a fresh registration after leaving must be allowed")
}

func TestVerifyAttendanceAwardsPoints(t *testing.T) {
	e := newEnv()
	organizer, _ := seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	result, err := e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 2})
	require.NoError(t, err)

	// 50 base + 2h * 10/h
	assert.Equal(t, models.ParticipationAttended, result.Participation.Status)
	assert.Equal(t, int64(70), result.Participation.PointsEarned)
	require.NotNil(t, result.Award)
	assert.Equal(t, int64(70), result.Award.NewTotal)
	assert.Equal(t, int64(70), e.userTotal(2))

	// The hosting community's ledger mirrors the award.
	assert.Equal(t, int64(70), e.communityTotal(10))

	// Impact counters follow.
	metrics := e.f.impact[2]
	require.NotNil(t, metrics)
	assert.Equal(t, 1, metrics.EventsParticipated)
	assert.InDelta(t, 2.0, metrics.HoursVolunteered, 0.001)
}

func TestVerifyAttendanceTwiceIsInvalidState(t *testing.T) {
	e := newEnv()
	organizer, _ := seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 1})
	require.NoError(t, err)

	_, err = e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 1})
	require.Error(t, err)
	assert.True(t, IsInvalidStateError(err))

	// The first award must stand alone.
	assert.Equal(t, int64(60), e.userTotal(2))
}

func TestVerifyAttendanceRevertsOnAwardFailure(t *testing.T) {
	e := newEnv()
	organizer, _ := seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	e.pointsRepo.failAward = errors.New("ledger unavailable")
	_, err = e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 1})
	require.Error(t, err)

	// The transition was compensated, so the retry can succeed.
	stored := e.f.participation[p.ID]
	assert.Equal(t, models.ParticipationRegistered, stored.Status)

	e.pointsRepo.failAward = nil
	result, err := e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.Award.NewTotal)
}

func TestVerifyAttendanceRequiresOrganizer(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	e.f.addUser(3, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.VerifyAttendance(ctx, 3, p.ID, &VerifyAttendanceRequest{Hours: 1})
	assert.True(t, IsForbiddenError(err))
}

func TestVerifyAttendanceAllowsModerator(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	mod := e.f.addUser(5, models.RoleModerator)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.VerifyAttendance(ctx, mod.ID, p.ID, &VerifyAttendanceRequest{Hours: 0})
	assert.NoError(t, err)
	assert.Equal(t, int64(50), e.userTotal(2), "zero hours still earns the base award")
}

func TestRejectRequiresReason(t *testing.T) {
	e := newEnv()
	organizer, _ := seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.Reject(ctx, organizer.ID, p.ID, &RejectParticipationRequest{})
	assert.True(t, IsValidationError(err))

	rejected, err := e.participation.Reject(ctx, organizer.ID, p.ID, &RejectParticipationRequest{Reason: "no-show at check-in"})
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "no-show at check-in", *rejected.RejectionReason)
}

func TestCompleteOnlyFromAttended(t *testing.T) {
	e := newEnv()
	organizer, _ := seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)

	_, err = e.participation.Complete(ctx, organizer.ID, p.ID)
	assert.True(t, IsInvalidStateError(err))

	_, err = e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 1})
	require.NoError(t, err)

	completed, err := e.participation.Complete(ctx, organizer.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationCompleted, completed.Status)
}

func TestLeaveKeepsEarnedPoints(t *testing.T) {
	e := newEnv()
	organizer, _ := seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	p, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100})
	require.NoError(t, err)
	_, err = e.participation.VerifyAttendance(ctx, organizer.ID, p.ID, &VerifyAttendanceRequest{Hours: 1})
	require.NoError(t, err)

	require.NoError(t, e.participation.Leave(ctx, 2, 100))

	assert.Equal(t, int64(60), e.userTotal(2), "leaving must not claw back earned points")
}

func TestLeaveWithoutParticipation(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)

	err := e.participation.Leave(context.Background(), 2, 100)
	assert.True(t, IsNotFoundError(err))
}

func TestWishlistClearedOnRegistration(t *testing.T) {
	e := newEnv()
	seedEvent(e, nil)
	e.f.addUser(2, models.RoleUser)
	ctx := context.Background()

	require.NoError(t, e.participation.AddToWishlist(ctx, 2, 100))
	assert.True(t, e.f.wishlist[2][100])

	_, err := e.participation.Register(ctx, 2, &RegisterParticipationRequest{EventID: 100, FromWishlist: true})
	require.NoError(t, err)
	assert.False(t, e.f.wishlist[2][100])
}
