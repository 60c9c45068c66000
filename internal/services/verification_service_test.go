// file: internal/services/verification_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"engagehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyReq() *ApplyForManagerRequest {
	return &ApplyForManagerRequest{
		CommunityName: "River Cleanup Crew",
		Motivation:    "I have organized cleanups for three years and want a home for the group.",
	}
}

func TestSubmitApplication(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)

	app, err := e.verification.SubmitApplication(context.Background(), 1, applyReq())
	require.NoError(t, err)

	assert.Equal(t, models.VerificationPending, app.Status)
	assert.Equal(t, int64(1), app.ApplicantID)
}

func TestSubmitApplicationWhilePendingConflicts(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	ctx := context.Background()

	_, err := e.verification.SubmitApplication(ctx, 1, applyReq())
	require.NoError(t, err)

	_, err = e.verification.SubmitApplication(ctx, 1, applyReq())
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, CodePendingApplication))
}

func TestSubmitApplicationCooldown(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(9, models.RoleAdmin)
	ctx := context.Background()

	app, err := e.verification.SubmitApplication(ctx, 1, applyReq())
	require.NoError(t, err)

	_, err = e.verification.ReviewApplication(ctx, 9, app.ID, &ReviewApplicationRequest{
		Approve: false, Reason: "not enough detail",
	})
	require.NoError(t, err)

	svc := e.verification.(*verificationService)
	reviewedAt := *e.f.applications[app.ID].ReviewedAt

	// 29 days after rejection: still blocked.
	svc.now = func() time.Time { return reviewedAt.Add(29 * 24 * time.Hour) }
	_, err = e.verification.SubmitApplication(ctx, 1, applyReq())
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, CodeCooldownActive))

	// 31 days: allowed again.
	svc.now = func() time.Time { return reviewedAt.Add(31 * 24 * time.Hour) }
	_, err = e.verification.SubmitApplication(ctx, 1, applyReq())
	assert.NoError(t, err)
}

func TestReviewApplicationRequiresAdmin(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(5, models.RoleModerator)
	ctx := context.Background()

	app, err := e.verification.SubmitApplication(ctx, 1, applyReq())
	require.NoError(t, err)

	_, err = e.verification.ReviewApplication(ctx, 5, app.ID, &ReviewApplicationRequest{Approve: true})
	assert.True(t, IsForbiddenError(err))
}

func TestApproveApplication(t *testing.T) {
	e := newEnv()
	applicant := e.f.addUser(1, models.RoleUser)
	e.f.addUser(9, models.RoleAdmin)
	ctx := context.Background()

	app, err := e.verification.SubmitApplication(ctx, 1, applyReq())
	require.NoError(t, err)

	approved, err := e.verification.ReviewApplication(ctx, 9, app.ID, &ReviewApplicationRequest{Approve: true})
	require.NoError(t, err)

	assert.Equal(t, models.VerificationApproved, approved.Status)
	require.NotNil(t, approved.CreatedCommunityID)

	community := e.f.communities[*approved.CreatedCommunityID]
	require.NotNil(t, community)
	assert.Equal(t, models.VerificationVerified, community.VerificationStatus)
	assert.Equal(t, int64(1), community.CreatedBy)
	assert.True(t, e.f.members[community.ID][1], "the founder joins their community")

	assert.Equal(t, models.RoleModerator, applicant.Role)

	// Founding award plus impact counters.
	assert.Equal(t, int64(PointsCommunityCreated), e.userTotal(1))
	metrics := e.f.impact[1]
	require.NotNil(t, metrics)
	assert.Equal(t, 1, metrics.CommunitiesCreated)
	assert.Equal(t, 1, metrics.CommunitiesJoined)
}

func TestReviewApplicationIsTerminal(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(9, models.RoleAdmin)
	ctx := context.Background()

	app, err := e.verification.SubmitApplication(ctx, 1, applyReq())
	require.NoError(t, err)

	_, err = e.verification.ReviewApplication(ctx, 9, app.ID, &ReviewApplicationRequest{Approve: true})
	require.NoError(t, err)

	_, err = e.verification.ReviewApplication(ctx, 9, app.ID, &ReviewApplicationRequest{
		Approve: false, Reason: "changed my mind",
	})
	require.Error(t, err)
	assert.True(t, IsInvalidStateError(err))
}

func TestRejectApplicationRequiresReason(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(9, models.RoleAdmin)
	ctx := context.Background()

	app, err := e.verification.SubmitApplication(ctx, 1, applyReq())
	require.NoError(t, err)

	_, err = e.verification.ReviewApplication(ctx, 9, app.ID, &ReviewApplicationRequest{Approve: false})
	assert.True(t, IsValidationError(err))
}

func TestSubmitCommunityVerification(t *testing.T) {
	e := newEnv()
	creator := e.f.addUser(1, models.RoleUser)
	e.f.addCommunity(10, creator.ID, "unverified")
	ctx := context.Background()

	v, err := e.verification.SubmitCommunityVerification(ctx, 1, &SubmitVerificationRequest{CommunityID: 10})
	require.NoError(t, err)

	assert.Equal(t, models.VerificationPending, v.Status)
	assert.Equal(t, models.VerificationPending, e.f.communities[10].VerificationStatus)
}

func TestSubmitCommunityVerificationOnlyCreatorOrAdmin(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(2, models.RoleUser)
	e.f.addCommunity(10, 1, "unverified")

	_, err := e.verification.SubmitCommunityVerification(context.Background(), 2, &SubmitVerificationRequest{CommunityID: 10})
	assert.True(t, IsForbiddenError(err))
}

func TestSubmitCommunityVerificationAlreadyVerified(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addCommunity(10, 1, models.VerificationVerified)

	_, err := e.verification.SubmitCommunityVerification(context.Background(), 1, &SubmitVerificationRequest{CommunityID: 10})
	assert.True(t, IsConflictError(err))
}

func TestReviewCommunityVerification(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(9, models.RoleAdmin)
	e.f.addCommunity(10, 1, "unverified")
	ctx := context.Background()

	v, err := e.verification.SubmitCommunityVerification(ctx, 1, &SubmitVerificationRequest{CommunityID: 10})
	require.NoError(t, err)

	reviewed, err := e.verification.ReviewCommunityVerification(ctx, 9, v.ID, &ReviewVerificationRequest{Approve: true})
	require.NoError(t, err)

	assert.Equal(t, models.VerificationVerified, reviewed.Status)
	assert.Equal(t, models.VerificationVerified, e.f.communities[10].VerificationStatus)

	// Decisions are terminal.
	_, err = e.verification.ReviewCommunityVerification(ctx, 9, v.ID, &ReviewVerificationRequest{
		Approve: false, Note: "revisit",
	})
	assert.True(t, IsInvalidStateError(err))
}

func TestReviewCommunityVerificationRejection(t *testing.T) {
	e := newEnv()
	e.f.addUser(1, models.RoleUser)
	e.f.addUser(9, models.RoleAdmin)
	e.f.addCommunity(10, 1, "unverified")
	ctx := context.Background()

	v, err := e.verification.SubmitCommunityVerification(ctx, 1, &SubmitVerificationRequest{CommunityID: 10})
	require.NoError(t, err)

	reviewed, err := e.verification.ReviewCommunityVerification(ctx, 9, v.ID, &ReviewVerificationRequest{
		Approve: false, Note: "guidelines not met",
	})
	require.NoError(t, err)

	assert.Equal(t, models.VerificationRejected, reviewed.Status)
	assert.Equal(t, models.VerificationRejected, e.f.communities[10].VerificationStatus)
}
