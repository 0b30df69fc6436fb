package relation_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/internal/book"
	"bookstore/internal/httpx"
	"bookstore/internal/relation"
	"bookstore/internal/relation/mocks"
	"bookstore/internal/testutil"
)

func newHandler(t *testing.T) (*relation.HTTPHandler, *mocks.MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	repo := mocks.NewMockRepository(ctrl)
	return relation.NewHTTPHandler(relation.NewService(repo)), repo
}

func patchRequest(bookID string, body interface{}, userID int64) *http.Request {
	r := testutil.NewRequest(http.MethodPatch, "/relations/"+bookID, body)
	r.SetPathValue("bookID", bookID)
	if userID != 0 {
		r = r.WithContext(httpx.ContextWithUser(r.Context(), userID, false))
	}
	return r
}

func TestRelationHandler_Get(t *testing.T) {
	t.Run("returns the caller's relation", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().Get(gomock.Any(), int64(1), int64(2)).
			Return(relation.Relation{UserID: 1, BookID: 2, Like: true, Rate: intPtr(4)}, nil)

		r := testutil.NewRequest(http.MethodGet, "/relations/2", nil)
		r.SetPathValue("bookID", "2")
		r = r.WithContext(httpx.ContextWithUser(r.Context(), 1, false))
		w := httptest.NewRecorder()
		handler.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, true, data["like"])
		assert.Equal(t, float64(4), data["rate"])
	})

	t.Run("never-touched pair is a 404", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().Get(gomock.Any(), int64(1), int64(2)).
			Return(relation.Relation{}, relation.ErrNotFound)

		r := testutil.NewRequest(http.MethodGet, "/relations/2", nil)
		r.SetPathValue("bookID", "2")
		r = r.WithContext(httpx.ContextWithUser(r.Context(), 1, false))
		w := httptest.NewRecorder()
		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		handler, _ := newHandler(t)

		r := testutil.NewRequest(http.MethodGet, "/relations/2", nil)
		r.SetPathValue("bookID", "2")
		w := httptest.NewRecorder()
		handler.Get(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRelationHandler_Patch(t *testing.T) {
	t.Run("anonymous is unauthorized", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("1", map[string]any{"like": true}, 0))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("like creates the relation on first write", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().
			Upsert(gomock.Any(), int64(1), int64(2), relation.Patch{Like: boolPtr(true)}).
			Return(relation.Relation{UserID: 1, BookID: 2, Like: true}, nil)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("2", map[string]any{"like": true}, 1))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, float64(2), data["book"])
		assert.Equal(t, true, data["like"])
		assert.Equal(t, false, data["in_bookmarks"])
		assert.Nil(t, data["rate"])
	})

	t.Run("partial patch leaves other fields to the store", func(t *testing.T) {
		handler, repo := newHandler(t)
		// the store merges: a prior like survives a rate-only patch
		repo.EXPECT().
			Upsert(gomock.Any(), int64(1), int64(2), relation.Patch{Rate: intPtr(3)}).
			Return(relation.Relation{UserID: 1, BookID: 2, Like: true, Rate: intPtr(3)}, nil)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("2", map[string]any{"rate": 3}, 1))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]interface{})
		assert.Equal(t, true, data["like"])
		assert.Equal(t, float64(3), data["rate"])
	})

	t.Run("rate above five is rejected before any write", func(t *testing.T) {
		handler, _ := newHandler(t)
		// no Upsert expectation: the prior rate must be preserved

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("2", map[string]any{"rate": 6}, 1))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		errBody := resp.Body["error"].(map[string]interface{})
		details := errBody["details"].([]interface{})
		require.NotEmpty(t, details)
		assert.Equal(t, "rate", details[0].(map[string]interface{})["field"])
	})

	t.Run("rate zero is rejected", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("2", map[string]any{"rate": 0}, 1))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown book", func(t *testing.T) {
		handler, repo := newHandler(t)
		repo.EXPECT().
			Upsert(gomock.Any(), int64(1), int64(99), gomock.Any()).
			Return(relation.Relation{}, book.ErrNotFound)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("99", map[string]any{"like": true}, 1))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed book id", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("abc", map[string]any{"like": true}, 1))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		handler, _ := newHandler(t)

		w := httptest.NewRecorder()
		handler.Patch(w, patchRequest("2", "not-an-object", 1))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
