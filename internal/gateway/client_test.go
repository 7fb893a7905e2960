package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlibro/librogate/internal/domain/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "http://img.local", 2*time.Second, nil)
}

func TestGetBook_MapsAndNormalizes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/books/b1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "b1", "title": "Dune", "category": "Sci-Fi",
			"image": "", "author": "Frank Herbert", "publisher": "Chilton",
			"numberOfPages": 412,
		})
	})

	b, err := c.GetBook(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "http://img.local/images/book/", b.Image)
	assert.Nil(t, b.PublishDate)
	assert.Equal(t, 412, b.NumberOfPages)
}

func TestGetBook_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such book", http.StatusNotFound)
	})

	_, err := c.GetBook(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 404, StatusOf(err))
}

func TestSearchBooks_FlattensNestedNames(t *testing.T) {
	var gotCriteria entity.SearchCriteria
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/books/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCriteria))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id": "b2", "title": "Children of Dune",
				"category":  map[string]any{"name": "Sci-Fi"},
				"author":    map[string]any{"name": "Frank Herbert"},
				"publisher": map[string]any{"name": "Putnam"},
				"image":     "covers/b2.jpg",
			},
		})
	})

	books, err := c.SearchBooks(context.Background(), entity.SearchCriteria{Author: "Frank Herbert"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Sci-Fi", books[0].Category)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	assert.Equal(t, "Putnam", books[0].Publisher)
	assert.Equal(t, "covers/b2.jpg", books[0].Image)
	assert.Equal(t, "Frank Herbert", gotCriteria.Author)
}

func TestSubmitBorrow_SendsPayload(t *testing.T) {
	var got BorrowRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/borrows", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.SubmitBorrow(context.Background(), BorrowRequest{
		CardNumber: "card-7",
		BookID:     "b1",
		BorrowDate: "2026-08-30",
		ReturnDate: "2026-09-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "card-7", got.CardNumber)
	assert.Equal(t, "2026-09-10", got.ReturnDate)
}

func TestDo_UnreachableServerMapsToStatusZero(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, "http://img.local", 500*time.Millisecond, nil)
	_, err := c.GetBook(context.Background(), "b1")
	require.Error(t, err)
	assert.Equal(t, StatusUnreachable, StatusOf(err))
}

func TestStatusOf_NonGatewayError(t *testing.T) {
	assert.Equal(t, -1, StatusOf(nil))
	assert.Equal(t, -1, StatusOf(context.Canceled))
}

func TestLinkLibraryCard_ReturnsCard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/library-cards/link", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "card-7", "issueDate": "2026-01-01"})
	})

	card, err := c.LinkLibraryCard(context.Background(), CardLink{UserID: "u1", CardNumber: "card-7", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "card-7", card.ID)
	require.NotNil(t, card.IssueDate)
	assert.Equal(t, "2026-01-01", *card.IssueDate)
}

func TestEditUser_FailureCarriesStatusAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "email already taken", http.StatusConflict)
	})

	_, err := c.EditUser(context.Background(), map[string]any{"username": "alice", "email": "a@b.c"})
	require.Error(t, err)
	assert.Equal(t, 409, StatusOf(err))
	assert.Contains(t, err.Error(), "email already taken")
}
