package metals

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetQuote(ctx context.Context, metal Metal) (*Quote, error) {
	args := m.Called(ctx, metal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Quote), args.Error(1)
}

func (m *MockCache) SetQuote(ctx context.Context, quote *Quote, ttl time.Duration) error {
	args := m.Called(ctx, quote, ttl)
	return args.Error(0)
}

type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) FetchSpot(ctx context.Context, metal Metal) (*Quote, error) {
	args := m.Called(ctx, metal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Quote), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveQuote(ctx context.Context, quote *Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockRepository) GetLatestQuote(ctx context.Context, metal Metal) (*Quote, error) {
	args := m.Called(ctx, metal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Quote), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_GetSpot(t *testing.T) {
	now := time.Now()
	cachedQuote := &Quote{Metal: Gold, Price: 264500, FetchedAt: now.Add(-time.Minute)}
	freshQuote := &Quote{Metal: Gold, Price: 265200, FetchedAt: now}
	staleQuote := &Quote{Metal: Gold, Price: 263000, FetchedAt: now.Add(-2 * time.Hour)}

	tests := []struct {
		name      string
		metal     Metal
		setupMock func(*MockCache, *MockFeed, *MockRepository)
		wantErr   error
		wantPrice int64
	}{
		{
			name:  "cache hit skips the upstream feed",
			metal: Gold,
			setupMock: func(cache *MockCache, feed *MockFeed, repo *MockRepository) {
				cache.On("GetQuote", mock.Anything, Gold).Return(cachedQuote, nil)
			},
			wantPrice: 264500,
		},
		{
			name:  "cache miss fetches upstream and writes cache and db",
			metal: Gold,
			setupMock: func(cache *MockCache, feed *MockFeed, repo *MockRepository) {
				cache.On("GetQuote", mock.Anything, Gold).Return(nil, nil)
				feed.On("FetchSpot", mock.Anything, Gold).Return(freshQuote, nil)
				cache.On("SetQuote", mock.Anything, freshQuote, DefaultTTL).Return(nil)
				repo.On("SaveQuote", mock.Anything, freshQuote).Return(nil)
			},
			wantPrice: 265200,
		},
		{
			name:  "feed failure falls back to last stored value",
			metal: Gold,
			setupMock: func(cache *MockCache, feed *MockFeed, repo *MockRepository) {
				cache.On("GetQuote", mock.Anything, Gold).Return(nil, nil)
				feed.On("FetchSpot", mock.Anything, Gold).Return(nil, errors.New("upstream down"))
				repo.On("GetLatestQuote", mock.Anything, Gold).Return(staleQuote, nil)
			},
			wantPrice: 263000,
		},
		{
			name:  "feed and db both failing falls back to static default",
			metal: Gold,
			setupMock: func(cache *MockCache, feed *MockFeed, repo *MockRepository) {
				cache.On("GetQuote", mock.Anything, Gold).Return(nil, nil)
				feed.On("FetchSpot", mock.Anything, Gold).Return(nil, errors.New("upstream down"))
				repo.On("GetLatestQuote", mock.Anything, Gold).Return(nil, errors.New("no rows"))
			},
			wantPrice: staticFallback[Gold],
		},
		{
			name:  "cache read error degrades to upstream fetch",
			metal: Gold,
			setupMock: func(cache *MockCache, feed *MockFeed, repo *MockRepository) {
				cache.On("GetQuote", mock.Anything, Gold).Return(nil, errors.New("redis gone"))
				feed.On("FetchSpot", mock.Anything, Gold).Return(freshQuote, nil)
				cache.On("SetQuote", mock.Anything, freshQuote, DefaultTTL).Return(nil)
				repo.On("SaveQuote", mock.Anything, freshQuote).Return(nil)
			},
			wantPrice: 265200,
		},
		{
			name:      "unknown metal is rejected",
			metal:     Metal("unobtanium"),
			setupMock: func(cache *MockCache, feed *MockFeed, repo *MockRepository) {},
			wantErr:   ErrUnknownMetal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := new(MockCache)
			feed := new(MockFeed)
			repo := new(MockRepository)
			tt.setupMock(cache, feed, repo)

			service := NewService(cache, feed, repo, DefaultTTL, discardLogger())
			quote, err := service.GetSpot(context.Background(), tt.metal)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, quote)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, quote)
				assert.Equal(t, tt.wantPrice, quote.Price)
			}

			cache.AssertExpectations(t)
			feed.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_GetTicker(t *testing.T) {
	cache := new(MockCache)
	feed := new(MockFeed)
	repo := new(MockRepository)

	for _, metal := range Tracked {
		cache.On("GetQuote", mock.Anything, metal).Return(&Quote{
			Metal:     metal,
			Price:     staticFallback[metal],
			FetchedAt: time.Now(),
		}, nil)
	}

	service := NewService(cache, feed, repo, DefaultTTL, discardLogger())
	quotes, err := service.GetTicker(context.Background())

	assert.NoError(t, err)
	assert.Len(t, quotes, len(Tracked))
	for i, metal := range Tracked {
		assert.Equal(t, metal, quotes[i].Metal)
	}
	cache.AssertExpectations(t)
}
