package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aurelius/mintbid/internal/adapters/ai"
	"github.com/aurelius/mintbid/internal/domain/consignment"
)

// MockSourceRepository is a mock implementation of consignment.SourceRepository
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) CreateSource(ctx context.Context, source *consignment.Source) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockSourceRepository) GetSourceByID(ctx context.Context, sourceID uuid.UUID) (*consignment.Source, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consignment.Source), args.Error(1)
}

func (m *MockSourceRepository) ListEnabledSources(ctx context.Context) ([]*consignment.Source, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*consignment.Source), args.Error(1)
}

func (m *MockSourceRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]*consignment.Source, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*consignment.Source), args.Error(1)
}

func (m *MockSourceRepository) UpdateSource(ctx context.Context, source *consignment.Source) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockSourceRepository) DeleteSource(ctx context.Context, sourceID uuid.UUID) error {
	args := m.Called(ctx, sourceID)
	return args.Error(0)
}

func TestReloadSources_SyncsCronEntries(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sourceID := uuid.New()
	source := &consignment.Source{
		ID:       sourceID,
		Schedule: "0 * * * *",
		Enabled:  true,
	}

	repo := new(MockSourceRepository)
	w := New(nil, nil, repo, ai.NewCompsScraper(), logger)

	// First load schedules the source
	repo.On("ListEnabledSources", mock.Anything).Return([]*consignment.Source{source}, nil).Once()
	require.NoError(t, w.reloadSources(ctx))
	require.Len(t, w.cron.Entries(), 1)
	firstEntry := w.sourceEntries[sourceID]
	assert.Equal(t, "0 * * * *", firstEntry.schedule)

	// An unchanged schedule keeps the existing entry
	repo.On("ListEnabledSources", mock.Anything).Return([]*consignment.Source{source}, nil).Once()
	require.NoError(t, w.reloadSources(ctx))
	require.Len(t, w.cron.Entries(), 1)
	assert.Equal(t, firstEntry.entryID, w.sourceEntries[sourceID].entryID)

	// An edited schedule replaces the entry
	edited := *source
	edited.Schedule = "30 * * * *"
	repo.On("ListEnabledSources", mock.Anything).Return([]*consignment.Source{&edited}, nil).Once()
	require.NoError(t, w.reloadSources(ctx))
	require.Len(t, w.cron.Entries(), 1)
	assert.NotEqual(t, firstEntry.entryID, w.sourceEntries[sourceID].entryID)
	assert.Equal(t, "30 * * * *", w.sourceEntries[sourceID].schedule)

	// A disabled source gets unscheduled
	repo.On("ListEnabledSources", mock.Anything).Return([]*consignment.Source{}, nil).Once()
	require.NoError(t, w.reloadSources(ctx))
	assert.Empty(t, w.cron.Entries())
	assert.Empty(t, w.sourceEntries)

	repo.AssertExpectations(t)
}

func TestMedianPrice(t *testing.T) {
	tests := []struct {
		name  string
		comps []ai.Comp
		want  int64
	}{
		{
			name:  "empty",
			comps: nil,
			want:  0,
		},
		{
			name:  "single comp",
			comps: []ai.Comp{{PriceCents: 4200}},
			want:  4200,
		},
		{
			name: "odd count takes middle",
			comps: []ai.Comp{
				{PriceCents: 9000},
				{PriceCents: 1000},
				{PriceCents: 5000},
			},
			want: 5000,
		},
		{
			name: "even count averages the middle pair",
			comps: []ai.Comp{
				{PriceCents: 1000},
				{PriceCents: 2000},
				{PriceCents: 8000},
				{PriceCents: 4000},
			},
			want: 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, medianPrice(tt.comps))
		})
	}
}
