// file: internal/services/fakes_test.go
package services

import (
	"context"
	"math"
	"sort"
	"strconv"
	"time"

	"engagehub/internal/events"
	"engagehub/internal/models"
	"engagehub/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// fixture is a shared in-memory world backing all fake repositories, so
// cross-repository effects (awards, promotions, aggregates) stay visible.
type fixture struct {
	users         map[int64]*models.User
	communities   map[int64]*models.Community
	events        map[int64]*models.Event
	members       map[int64]map[int64]bool // communityID -> userID
	participation map[int64]*models.Participation
	wishlist      map[int64]map[int64]bool // userID -> eventID
	ratings       map[int64]*models.Rating
	applications  map[int64]*models.CommunityManagerApplication
	verifications map[int64]*models.CommunityVerification
	impact        map[int64]*models.ImpactMetric

	ledgerTotals map[string]int64
	ledgerKeys   map[string]bool

	nextID int64
}

func newFixture() *fixture {
	return &fixture{
		users:         make(map[int64]*models.User),
		communities:   make(map[int64]*models.Community),
		events:        make(map[int64]*models.Event),
		members:       make(map[int64]map[int64]bool),
		participation: make(map[int64]*models.Participation),
		wishlist:      make(map[int64]map[int64]bool),
		ratings:       make(map[int64]*models.Rating),
		applications:  make(map[int64]*models.CommunityManagerApplication),
		verifications: make(map[int64]*models.CommunityVerification),
		impact:        make(map[int64]*models.ImpactMetric),
		ledgerTotals:  make(map[string]int64),
		ledgerKeys:    make(map[string]bool),
		nextID:        1000,
	}
}

func (f *fixture) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fixture) addUser(id int64, role string) *models.User {
	u := &models.User{ID: id, Username: "u", Role: role, IsActive: true, Level: 1}
	f.users[id] = u
	return u
}

func (f *fixture) addCommunity(id, createdBy int64, status string) *models.Community {
	c := &models.Community{ID: id, Name: "Test Community", CreatedBy: createdBy, VerificationStatus: status}
	f.communities[id] = c
	return c
}

func (f *fixture) addEvent(id, communityID, createdBy int64, maxParticipants *int) *models.Event {
	e := &models.Event{
		ID: id, CommunityID: communityID, CreatedBy: createdBy,
		Title: "Test Event", StartsAt: time.Now(), MaxParticipants: maxParticipants,
	}
	f.events[id] = e
	return e
}

func ledgerKey(kind models.SubjectKind, id int64) string {
	return string(kind) + ":" + strconv.FormatInt(id, 10)
}

// ===============================
// FAKE REPOSITORIES
// ===============================

type fakePointsRepo struct {
	f         *fixture
	failAward error
}

func (r *fakePointsRepo) Award(ctx context.Context, award *repositories.PointsAward) (*repositories.AwardOutcome, error) {
	if r.failAward != nil {
		return nil, r.failAward
	}
	if r.f.ledgerKeys[award.IdempotencyKey] {
		return nil, repositories.ErrDuplicate
	}
	if award.SubjectKind == models.SubjectUser {
		if _, ok := r.f.users[award.SubjectID]; !ok {
			return nil, repositories.ErrNotFound
		}
	} else {
		if _, ok := r.f.communities[award.SubjectID]; !ok {
			return nil, repositories.ErrNotFound
		}
	}

	key := ledgerKey(award.SubjectKind, award.SubjectID)
	prev := r.f.ledgerTotals[key]
	next := prev + award.Points
	r.f.ledgerTotals[key] = next
	r.f.ledgerKeys[award.IdempotencyKey] = true

	prevRank := award.RankFor(prev)
	newRank := award.RankFor(next)
	return &repositories.AwardOutcome{
		NewTotal:      next,
		PreviousLevel: prevRank.Level,
		NewLevel:      newRank.Level,
		NewRank:       newRank.Label,
		LeveledUp:     newRank.Level > prevRank.Level,
	}, nil
}

func (r *fakePointsRepo) GetVolunteerPoints(ctx context.Context, userID int64) (*models.VolunteerPoints, error) {
	total := r.f.ledgerTotals[ledgerKey(models.SubjectUser, userID)]
	return &models.VolunteerPoints{UserID: userID, TotalPoints: total}, nil
}

func (r *fakePointsRepo) GetCommunityRewards(ctx context.Context, communityID int64) (*models.CommunityRewards, error) {
	if _, ok := r.f.communities[communityID]; !ok {
		return nil, nil
	}
	total := r.f.ledgerTotals[ledgerKey(models.SubjectCommunity, communityID)]
	return &models.CommunityRewards{CommunityID: communityID, TotalPoints: total}, nil
}

func (r *fakePointsRepo) GetHistory(ctx context.Context, kind models.SubjectKind, subjectID int64, p models.PaginationParams) ([]*models.PointsEntry, error) {
	return nil, nil
}

func (r *fakePointsRepo) TopUsers(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	return nil, nil
}

type fakeUserRepo struct {
	f *fixture
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.f.users[id]
	if !ok || !u.IsActive {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, userID int64, role string) error {
	u, ok := r.f.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) GetImpactMetric(ctx context.Context, userID int64) (*models.ImpactMetric, error) {
	m, ok := r.f.impact[userID]
	if !ok {
		m = &models.ImpactMetric{UserID: userID}
		r.f.impact[userID] = m
	}
	return m, nil
}

func (r *fakeUserRepo) BumpImpact(ctx context.Context, userID int64, delta repositories.ImpactDelta) error {
	m, _ := r.GetImpactMetric(ctx, userID)
	m.EventsParticipated += delta.EventsParticipated
	m.EventsCreated += delta.EventsCreated
	m.CommunitiesJoined += delta.CommunitiesJoined
	m.CommunitiesCreated += delta.CommunitiesCreated
	m.HoursVolunteered += delta.HoursVolunteered
	m.CO2Reduced += delta.CO2Reduced
	m.TreesPlanted += delta.TreesPlanted
	m.PeopleHelped += delta.PeopleHelped
	return nil
}

type fakeParticipationRepo struct {
	f *fixture
}

func activeStatus(status string) bool {
	return status == models.ParticipationRegistered ||
		status == models.ParticipationAttended ||
		status == models.ParticipationCompleted
}

func (r *fakeParticipationRepo) Register(ctx context.Context, userID, eventID int64, fromWishlist bool) (*models.Participation, error) {
	event, ok := r.f.events[eventID]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	active := 0
	for _, p := range r.f.participation {
		if p.EventID == eventID && activeStatus(p.Status) {
			if p.UserID == userID {
				return nil, repositories.ErrDuplicate
			}
			active++
		}
	}
	if event.MaxParticipants != nil && active >= *event.MaxParticipants {
		return nil, repositories.ErrCapacityExceeded
	}

	p := &models.Participation{
		ID:          r.f.id(),
		UserID:      userID,
		EventID:     eventID,
		CommunityID: event.CommunityID,
		Status:      models.ParticipationRegistered,
		CreatedAt:   time.Now(),
	}
	r.f.participation[p.ID] = p
	if fromWishlist {
		delete(r.f.wishlist[userID], eventID)
	}
	return p, nil
}

func (r *fakeParticipationRepo) GetByID(ctx context.Context, id int64) (*models.Participation, error) {
	return r.f.participation[id], nil
}

func (r *fakeParticipationRepo) MarkAttended(ctx context.Context, id int64, hours float64, points int64, verifiedBy int64) (*models.Participation, error) {
	p, ok := r.f.participation[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if p.Status != models.ParticipationRegistered {
		return nil, repositories.ErrInvalidTransition
	}
	now := time.Now()
	p.Status = models.ParticipationAttended
	p.HoursContributed = hours
	p.PointsEarned = points
	p.VerifiedAt = &now
	p.VerifiedBy = &verifiedBy
	return p, nil
}

func (r *fakeParticipationRepo) RevertAttended(ctx context.Context, id int64) error {
	p, ok := r.f.participation[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if p.Status != models.ParticipationAttended {
		return repositories.ErrInvalidTransition
	}
	p.Status = models.ParticipationRegistered
	p.HoursContributed = 0
	p.PointsEarned = 0
	p.VerifiedAt = nil
	p.VerifiedBy = nil
	return nil
}

func (r *fakeParticipationRepo) Reject(ctx context.Context, id int64, reason string, actorID int64) (*models.Participation, error) {
	p, ok := r.f.participation[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if p.Status != models.ParticipationRegistered {
		return nil, repositories.ErrInvalidTransition
	}
	p.Status = models.ParticipationRejected
	p.RejectionReason = &reason
	p.VerifiedBy = &actorID
	return p, nil
}

func (r *fakeParticipationRepo) Complete(ctx context.Context, id int64) (*models.Participation, error) {
	p, ok := r.f.participation[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if p.Status != models.ParticipationAttended {
		return nil, repositories.ErrInvalidTransition
	}
	p.Status = models.ParticipationCompleted
	return p, nil
}

func (r *fakeParticipationRepo) Delete(ctx context.Context, userID, eventID int64) (*models.Participation, error) {
	for id, p := range r.f.participation {
		if p.UserID == userID && p.EventID == eventID && activeStatus(p.Status) {
			delete(r.f.participation, id)
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeParticipationRepo) CountActiveForEvent(ctx context.Context, eventID int64) (int, error) {
	n := 0
	for _, p := range r.f.participation {
		if p.EventID == eventID && activeStatus(p.Status) {
			n++
		}
	}
	return n, nil
}

func (r *fakeParticipationRepo) HasAttended(ctx context.Context, userID int64, entityType models.EntityType, entityID int64) (bool, error) {
	for _, p := range r.f.participation {
		if p.UserID != userID {
			continue
		}
		if p.Status != models.ParticipationAttended && p.Status != models.ParticipationCompleted {
			continue
		}
		if entityType == models.EntityEvent && p.EventID == entityID {
			return true, nil
		}
		if entityType == models.EntityCommunity && p.CommunityID == entityID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeParticipationRepo) AddToWishlist(ctx context.Context, userID, eventID int64) error {
	if r.f.wishlist[userID] == nil {
		r.f.wishlist[userID] = make(map[int64]bool)
	}
	r.f.wishlist[userID][eventID] = true
	return nil
}

type fakeCommunityRepo struct {
	f *fixture
}

func (r *fakeCommunityRepo) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	return r.f.communities[id], nil
}

func (r *fakeCommunityRepo) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return r.f.events[id], nil
}

func (r *fakeCommunityRepo) CreateEvent(ctx context.Context, event *models.Event) error {
	c, ok := r.f.communities[event.CommunityID]
	if !ok {
		return repositories.ErrNotFound
	}
	event.ID = r.f.id()
	r.f.events[event.ID] = event
	c.EventCount++
	return nil
}

func (r *fakeCommunityRepo) AddMember(ctx context.Context, communityID, userID int64) error {
	c, ok := r.f.communities[communityID]
	if !ok {
		return repositories.ErrNotFound
	}
	if r.f.members[communityID] == nil {
		r.f.members[communityID] = make(map[int64]bool)
	}
	if r.f.members[communityID][userID] {
		return repositories.ErrDuplicate
	}
	r.f.members[communityID][userID] = true
	c.MemberCount++
	return nil
}

func (r *fakeCommunityRepo) IsMember(ctx context.Context, communityID, userID int64) (bool, error) {
	return r.f.members[communityID][userID], nil
}

type fakeRatingRepo struct {
	f *fixture
}

func (r *fakeRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	for _, existing := range r.f.ratings {
		if existing.RatedBy == rating.RatedBy &&
			existing.EntityType == rating.EntityType &&
			existing.EntityID == rating.EntityID {
			return repositories.ErrDuplicate
		}
	}
	rating.ID = r.f.id()
	r.f.ratings[rating.ID] = rating
	return nil
}

func (r *fakeRatingRepo) GetByID(ctx context.Context, id int64) (*models.Rating, error) {
	return r.f.ratings[id], nil
}

func (r *fakeRatingRepo) Update(ctx context.Context, id int64, value int, review *string) (*models.Rating, error) {
	rating, ok := r.f.ratings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	rating.Rating = value
	rating.Review = review
	return rating, nil
}

func (r *fakeRatingRepo) Delete(ctx context.Context, id int64) (*models.Rating, error) {
	rating, ok := r.f.ratings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	delete(r.f.ratings, id)
	return rating, nil
}

func (r *fakeRatingRepo) ListForEntity(ctx context.Context, entityType models.EntityType, entityID int64, p models.PaginationParams) ([]*models.Rating, error) {
	var out []*models.Rating
	for _, rating := range r.f.ratings {
		if rating.EntityType == string(entityType) && rating.EntityID == entityID {
			out = append(out, rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRatingRepo) Recompute(ctx context.Context, entityType models.EntityType, entityID int64) (*models.RatingAggregate, error) {
	var sum, count int
	for _, rating := range r.f.ratings {
		if rating.EntityType == string(entityType) && rating.EntityID == entityID {
			sum += rating.Rating
			count++
		}
	}

	agg := &models.RatingAggregate{TotalRatings: count}
	if count > 0 {
		agg.AvgRating = math.Round(float64(sum)/float64(count)*10) / 10
	}

	switch entityType {
	case models.EntityCommunity:
		if c, ok := r.f.communities[entityID]; ok {
			c.AvgRating = agg.AvgRating
			c.TotalRatings = agg.TotalRatings
		}
	case models.EntityEvent:
		if e, ok := r.f.events[entityID]; ok {
			e.AvgRating = agg.AvgRating
			e.TotalRatings = agg.TotalRatings
		}
	}
	return agg, nil
}

func (r *fakeRatingRepo) Vote(ctx context.Context, id int64, helpful bool) (*models.Rating, error) {
	rating, ok := r.f.ratings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if helpful {
		rating.HelpfulCount++
	} else {
		rating.UnhelpfulCount++
	}
	return rating, nil
}

type fakeVerificationRepo struct {
	f *fixture
}

func (r *fakeVerificationRepo) CreateApplication(ctx context.Context, app *models.CommunityManagerApplication) error {
	for _, existing := range r.f.applications {
		if existing.ApplicantID == app.ApplicantID && existing.Status == models.VerificationPending {
			return repositories.ErrDuplicate
		}
	}
	app.ID = r.f.id()
	app.Status = models.VerificationPending
	app.CreatedAt = time.Now()
	r.f.applications[app.ID] = app
	return nil
}

func (r *fakeVerificationRepo) GetApplication(ctx context.Context, id int64) (*models.CommunityManagerApplication, error) {
	return r.f.applications[id], nil
}

func (r *fakeVerificationRepo) LatestApplicationByApplicant(ctx context.Context, applicantID int64) (*models.CommunityManagerApplication, error) {
	var latest *models.CommunityManagerApplication
	for _, app := range r.f.applications {
		if app.ApplicantID != applicantID {
			continue
		}
		if latest == nil || app.ID > latest.ID {
			latest = app
		}
	}
	return latest, nil
}

func (r *fakeVerificationRepo) ApproveApplication(ctx context.Context, id, reviewerID int64, notes *string) (*models.CommunityManagerApplication, *models.Community, error) {
	app, ok := r.f.applications[id]
	if !ok {
		return nil, nil, repositories.ErrNotFound
	}
	if app.Status != models.VerificationPending {
		return nil, nil, repositories.ErrInvalidTransition
	}

	now := time.Now()
	app.Status = models.VerificationApproved
	app.Notes = notes
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now

	community := &models.Community{
		ID:                 r.f.id(),
		Name:               app.CommunityName,
		CreatedBy:          app.ApplicantID,
		VerificationStatus: models.VerificationVerified,
		MemberCount:        1,
	}
	r.f.communities[community.ID] = community
	if r.f.members[community.ID] == nil {
		r.f.members[community.ID] = make(map[int64]bool)
	}
	r.f.members[community.ID][app.ApplicantID] = true

	if u, ok := r.f.users[app.ApplicantID]; ok && u.Role == models.RoleUser {
		u.Role = models.RoleModerator
	}
	app.CreatedCommunityID = &community.ID
	return app, community, nil
}

func (r *fakeVerificationRepo) RejectApplication(ctx context.Context, id, reviewerID int64, reason string) (*models.CommunityManagerApplication, error) {
	app, ok := r.f.applications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if app.Status != models.VerificationPending {
		return nil, repositories.ErrInvalidTransition
	}
	now := time.Now()
	app.Status = models.VerificationRejected
	app.Reason = &reason
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now
	return app, nil
}

func (r *fakeVerificationRepo) CreateVerification(ctx context.Context, v *models.CommunityVerification) error {
	for _, existing := range r.f.verifications {
		if existing.CommunityID == v.CommunityID && existing.Status == models.VerificationPending {
			return repositories.ErrDuplicate
		}
	}
	v.ID = r.f.id()
	v.Status = models.VerificationPending
	v.CreatedAt = time.Now()
	r.f.verifications[v.ID] = v
	if c, ok := r.f.communities[v.CommunityID]; ok && c.VerificationStatus != models.VerificationVerified {
		c.VerificationStatus = models.VerificationPending
	}
	return nil
}

func (r *fakeVerificationRepo) GetVerification(ctx context.Context, id int64) (*models.CommunityVerification, error) {
	return r.f.verifications[id], nil
}

func (r *fakeVerificationRepo) ReviewVerification(ctx context.Context, id, reviewerID int64, approve bool, note string) (*models.CommunityVerification, error) {
	v, ok := r.f.verifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if v.Status != models.VerificationPending {
		return nil, repositories.ErrInvalidTransition
	}
	now := time.Now()
	if approve {
		v.Status = models.VerificationVerified
	} else {
		v.Status = models.VerificationRejected
		v.Reason = &note
	}
	v.ReviewedBy = &reviewerID
	v.ReviewedAt = &now
	if c, ok := r.f.communities[v.CommunityID]; ok {
		c.VerificationStatus = v.Status
	}
	return v, nil
}

// ===============================
// TEST WIRING
// ===============================

// env bundles a fully wired service graph over one fixture.
type env struct {
	f *fixture

	pointsRepo        *fakePointsRepo
	userRepo          *fakeUserRepo
	participationRepo *fakeParticipationRepo
	communityRepo     *fakeCommunityRepo
	ratingRepo        *fakeRatingRepo
	verificationRepo  *fakeVerificationRepo

	points        PointsService
	participation ParticipationService
	rating        RatingService
	verification  VerificationService
	community     CommunityService
	user          UserService
}

func newEnv() *env {
	f := newFixture()
	logger := zap.NewNop()
	validate := validator.New()
	bus := events.NewInMemoryEventBus(events.DefaultEventBusConfig(), logger)

	e := &env{
		f:                 f,
		pointsRepo:        &fakePointsRepo{f: f},
		userRepo:          &fakeUserRepo{f: f},
		participationRepo: &fakeParticipationRepo{f: f},
		communityRepo:     &fakeCommunityRepo{f: f},
		ratingRepo:        &fakeRatingRepo{f: f},
		verificationRepo:  &fakeVerificationRepo{f: f},
	}

	e.points = NewPointsService(e.pointsRepo, e.userRepo, bus, validate, logger)
	e.participation = NewParticipationService(
		e.participationRepo, e.communityRepo, e.userRepo, e.points, bus, validate, logger)
	e.rating = NewRatingService(
		e.ratingRepo, e.participationRepo, e.communityRepo, e.userRepo, bus, validate, logger)
	e.verification = NewVerificationService(
		e.verificationRepo, e.communityRepo, e.userRepo, e.points, bus, validate, logger)
	e.community = NewCommunityService(
		e.communityRepo, e.participationRepo, e.userRepo, e.points, bus, validate, logger)
	e.user = NewUserService(e.userRepo, logger)

	return e
}

func (e *env) userTotal(userID int64) int64 {
	return e.f.ledgerTotals[ledgerKey(models.SubjectUser, userID)]
}

func (e *env) communityTotal(communityID int64) int64 {
	return e.f.ledgerTotals[ledgerKey(models.SubjectCommunity, communityID)]
}
