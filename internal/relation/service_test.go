package relation_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/relation"
	"bookstore/internal/relation/mocks"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestService_Apply_RateValidation(t *testing.T) {
	tests := []struct {
		name string
		rate *int
		ok   bool
	}{
		{name: "nil rate skips the check", rate: nil, ok: true},
		{name: "lowest valid", rate: intPtr(1), ok: true},
		{name: "highest valid", rate: intPtr(5), ok: true},
		{name: "zero", rate: intPtr(0), ok: false},
		{name: "six", rate: intPtr(6), ok: false},
		{name: "negative", rate: intPtr(-1), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := mocks.NewMockRepository(ctrl)
			service := relation.NewService(repo)

			p := relation.Patch{Rate: tt.rate}
			if tt.ok {
				repo.EXPECT().Upsert(gomock.Any(), int64(1), int64(2), p).
					Return(relation.Relation{UserID: 1, BookID: 2, Rate: tt.rate}, nil)
			}
			// on rejection the repository is never reached, so any stored rate survives

			rel, err := service.Apply(context.Background(), 1, 2, p)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.rate, rel.Rate)
				return
			}
			assert.ErrorIs(t, err, relation.ErrRateOutOfRange)
		})
	}
}

func TestService_Apply_PassesPatchThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mocks.NewMockRepository(ctrl)
	service := relation.NewService(repo)

	comments := "great book"
	p := relation.Patch{Like: boolPtr(true), Comments: &comments}
	repo.EXPECT().Upsert(gomock.Any(), int64(7), int64(3), p).
		Return(relation.Relation{UserID: 7, BookID: 3, Like: true, Comments: comments}, nil)

	rel, err := service.Apply(context.Background(), 7, 3, p)
	require.NoError(t, err)
	assert.True(t, rel.Like)
	assert.Equal(t, "great book", rel.Comments)
}
