package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/session"
)

func dune() entity.Book {
	return entity.Book{
		ID:        "b1",
		Title:     "Dune",
		Category:  "Sci-Fi",
		Author:    "Frank Herbert",
		Publisher: "Chilton",
	}
}

// searchByCriteria serves results that echo back the filter field used, so
// tests can check each list matches the field that queried it.
func searchByCriteria(ctx context.Context, c entity.SearchCriteria) ([]entity.Book, error) {
	switch {
	case len(c.Category) == 1:
		return []entity.Book{{ID: "c1", Category: c.Category[0]}, {ID: "c2", Category: c.Category[0]}}, nil
	case c.Author != "":
		return []entity.Book{{ID: "a1", Author: c.Author}}, nil
	case c.Publisher != "":
		return []entity.Book{{ID: "p1", Publisher: c.Publisher}}, nil
	}
	return []entity.Book{}, nil
}

func TestDetailLoad_RelatedListsMatchTheirFilters(t *testing.T) {
	gw := &fakeGateway{books: map[string]entity.Book{"b1": dune()}, searchFn: searchByCriteria}
	sess := &fakeSessions{}
	o := NewBookDetail(gw, sess, nil)

	ctx := context.Background()
	view, err := o.Load(ctx, nil, "b1")
	require.NoError(t, err)

	for _, b := range view.InCategory.Wait(ctx) {
		assert.Equal(t, "Sci-Fi", b.Category)
	}
	for _, b := range view.FromAuthor.Wait(ctx) {
		assert.Equal(t, "Frank Herbert", b.Author)
	}
	for _, b := range view.FromPublisher.Wait(ctx) {
		assert.Equal(t, "Chilton", b.Publisher)
	}
	assert.Len(t, view.InCategory.Wait(ctx), 2)
}

func TestDetailLoad_MissingPublishDateGetsSentinel(t *testing.T) {
	gw := &fakeGateway{books: map[string]entity.Book{"b1": dune()}}
	o := NewBookDetail(gw, &fakeSessions{}, nil)

	view, err := o.Load(context.Background(), nil, "b1")
	require.NoError(t, err)
	require.NotNil(t, view.Book.PublishDate)
	assert.Equal(t, entity.PublishDateUnknown, *view.Book.PublishDate)
}

func TestDetailLoad_PrimaryFetchFailureFailsThePage(t *testing.T) {
	gw := &fakeGateway{books: map[string]entity.Book{}}
	o := NewBookDetail(gw, &fakeSessions{}, nil)

	_, err := o.Load(context.Background(), nil, "missing")
	require.Error(t, err)
	assert.True(t, gateway.IsNotFound(err))
}

func TestDetailLoad_SessionContextResolved(t *testing.T) {
	user := entity.User{ID: "u1", Username: "alice", LibraryCard: &entity.LibraryCard{ID: "card-7"}}
	gw := &fakeGateway{books: map[string]entity.Book{"b1": dune()}}
	sess := &fakeSessions{authenticated: true, user: user}
	o := NewBookDetail(gw, sess, nil)

	view, err := o.Load(context.Background(), &session.Session{UserID: "u1", Username: "alice"}, "b1")
	require.NoError(t, err)
	assert.Equal(t, "u1", view.UserID)
	assert.Equal(t, "card-7", view.CardNumber)
}

func TestDetailLoad_SessionFailureDoesNotBlockRelatedQueries(t *testing.T) {
	gw := &fakeGateway{books: map[string]entity.Book{"b1": dune()}, searchFn: searchByCriteria}
	sess := &fakeSessions{authenticated: true, err: &gateway.StatusError{Op: "currentUser", Status: 0}}
	o := NewBookDetail(gw, sess, nil)

	ctx := context.Background()
	view, err := o.Load(ctx, &session.Session{UserID: "u1", Username: "alice"}, "b1")
	require.NoError(t, err)
	assert.Empty(t, view.UserID)
	assert.Empty(t, view.CardNumber)
	assert.Len(t, view.FromAuthor.Wait(ctx), 1)
}

func TestDetailLoad_FailedRelatedQueryDegradesToEmpty(t *testing.T) {
	gw := &fakeGateway{
		books: map[string]entity.Book{"b1": dune()},
		searchFn: func(ctx context.Context, c entity.SearchCriteria) ([]entity.Book, error) {
			if c.Author != "" {
				return nil, &gateway.StatusError{Op: "searchBooks", Status: 500}
			}
			return searchByCriteria(ctx, c)
		},
	}
	o := NewBookDetail(gw, &fakeSessions{}, nil)

	ctx := context.Background()
	view, err := o.Load(ctx, nil, "b1")
	require.NoError(t, err)
	assert.Empty(t, view.FromAuthor.Wait(ctx))
	assert.Len(t, view.InCategory.Wait(ctx), 2)
	assert.Len(t, view.FromPublisher.Wait(ctx), 1)
}

func TestDetailLoad_CancellationAbandonsRelatedQueries(t *testing.T) {
	blocked := make(chan struct{})
	gw := &fakeGateway{
		books: map[string]entity.Book{"b1": dune()},
		searchFn: func(ctx context.Context, c entity.SearchCriteria) ([]entity.Book, error) {
			select {
			case <-blocked:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return []entity.Book{{ID: "late"}}, nil
		},
	}
	o := NewBookDetail(gw, &fakeSessions{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	view, err := o.Load(ctx, nil, "b1")
	require.NoError(t, err)

	cancel() // navigate away
	assert.Empty(t, view.InCategory.Wait(ctx))
	assert.Empty(t, view.FromAuthor.Wait(ctx))
	close(blocked)

	// The futures settle to empty even after the late results arrive.
	assert.Eventually(t, view.InCategory.Resolved, time.Second, 5*time.Millisecond)
	assert.Empty(t, view.InCategory.Wait(context.Background()))
}
