package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Get(ctx context.Context, email string) (*domain.UserAnalytics, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.UserAnalytics); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, a *domain.UserAnalytics) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockRepo) Increment(ctx context.Context, email, group, name string, at time.Time) (*domain.UserAnalytics, error) {
	args := m.Called(ctx, email, group, name, at)
	if a, _ := args.Get(0).(*domain.UserAnalytics); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Set(ctx context.Context, email, group, name string, value int, at time.Time) (*domain.UserAnalytics, error) {
	args := m.Called(ctx, email, group, name, value, at)
	if a, _ := args.Get(0).(*domain.UserAnalytics); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func notFound() error { return fmt.Errorf("analytics: %w", domain.ErrNotFound) }

func TestGet_Existing(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "a@x.com").Return(&domain.UserAnalytics{Email: "a@x.com"}, nil)

	a, err := NewService(repo, nil).Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", a.Email)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGet_CreatesOnFirstUse(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "a@x.com").Return(nil, notFound())
	repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.UserAnalytics) bool {
		return a.Email == "a@x.com" && a.LastActivity.Equal(clock.Now().UTC())
	})).Return(nil)

	a, err := NewService(repo, clock).Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Zero(t, a.CredentialsIssued.Skill)
	repo.AssertExpectations(t)
}

func TestGet_ConcurrentCreateRereads(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "a@x.com").Return(nil, notFound()).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("exists: %w", domain.ErrConflict))
	repo.On("Get", mock.Anything, "a@x.com").Return(&domain.UserAnalytics{Email: "a@x.com", ClickRates: domain.ClickRates{ShareCredential: 1}}, nil).Once()

	a, err := NewService(repo, nil).Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, a.ClickRates.ShareCredential)
}

func TestGet_RepoError(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Get", mock.Anything, "a@x.com").Return(nil, errors.New("throttled"))

	_, err := NewService(repo, nil).Get(context.Background(), "a@x.com")
	assert.ErrorContains(t, err, "throttled")
}

func TestIncrement(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := &mockRepo{}
	repo.On("Increment", mock.Anything, "a@x.com", domain.AnalyticsClicks, "shareCredential", clock.Now().UTC()).
		Return(&domain.UserAnalytics{ClickRates: domain.ClickRates{ShareCredential: 2}}, nil)

	a, err := NewService(repo, clock).Increment(context.Background(), "a@x.com", domain.AnalyticsClicks, "shareCredential")
	require.NoError(t, err)
	assert.Equal(t, 2, a.ClickRates.ShareCredential)
}

func TestIncrement_UnknownType(t *testing.T) {
	_, err := NewService(&mockRepo{}, nil).Increment(context.Background(), "a@x.com", domain.AnalyticsEvidence, "selfies")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := &mockRepo{}
	repo.On("Set", mock.Anything, "a@x.com", domain.AnalyticsEvidence, "skillVCs", 4, clock.Now().UTC()).
		Return(&domain.UserAnalytics{EvidenceAttachmentRates: domain.EvidenceAttachmentRates{SkillVCs: 4}}, nil)

	a, err := NewService(repo, clock).Set(context.Background(), "a@x.com", domain.AnalyticsEvidence, "skillVCs", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, a.EvidenceAttachmentRates.SkillVCs)
}

func TestSet_RejectsClicksAndNegative(t *testing.T) {
	svc := NewService(&mockRepo{}, nil)

	_, err := svc.Set(context.Background(), "a@x.com", domain.AnalyticsClicks, "shareCredential", 1)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.Set(context.Background(), "a@x.com", domain.AnalyticsCredentials, "skill", -1)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
