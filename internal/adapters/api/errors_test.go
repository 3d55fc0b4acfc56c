package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelius/mintbid/internal/domain/auctions"
	"github.com/aurelius/mintbid/internal/domain/consignment"
	"github.com/aurelius/mintbid/internal/domain/reviews"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, err)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(rec, req)
	return rec
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "outbid maps to bad request with retry code",
			err:        fmt.Errorf("%w: minimum is 1100", auctions.ErrOutbid),
			wantStatus: http.StatusBadRequest,
			wantCode:   "outbid",
		},
		{
			name:       "closed auction maps to conflict",
			err:        auctions.ErrAuctionClosed,
			wantStatus: http.StatusConflict,
			wantCode:   "auction_closed",
		},
		{
			name:       "missing auction maps to not found",
			err:        auctions.ErrAuctionNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "auction_not_found",
		},
		{
			name:       "seller bidding maps to forbidden",
			err:        auctions.ErrSellerCannotBid,
			wantStatus: http.StatusForbidden,
			wantCode:   "seller_cannot_bid",
		},
		{
			name:       "duplicate review maps to conflict",
			err:        reviews.ErrAlreadyReviewed,
			wantStatus: http.StatusConflict,
			wantCode:   "already_reviewed",
		},
		{
			name:       "invalid rating maps to bad request",
			err:        reviews.ErrInvalidRating,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_rating",
		},
		{
			name:       "analysis failure is a 500 without upstream detail",
			err:        fmt.Errorf("%w: %v", consignment.ErrAnalysisFailed, errors.New("upstream timeout")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "analysis_failed",
		},
		{
			name:       "unmapped error is an opaque 500",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performWithError(t, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])

			if tt.wantCode == "internal" {
				assert.Equal(t, "internal server error", body["error"], "internals must not leak")
			}
			if tt.wantCode == "analysis_failed" {
				assert.Equal(t, consignment.ErrAnalysisFailed.Error(), body["error"],
					"upstream detail must not leak")
			}
		})
	}
}
