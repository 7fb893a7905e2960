package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/session"
)

// RelatedQuery is a future for one derived related-book search. It resolves
// exactly once; a failed search resolves to an empty list rather than
// failing the page.
type RelatedQuery struct {
	done  chan struct{}
	books []entity.Book
}

func newRelatedQuery() *RelatedQuery {
	return &RelatedQuery{done: make(chan struct{})}
}

// Wait blocks until the query resolves or ctx is cancelled. After
// cancellation it reports an empty list.
func (q *RelatedQuery) Wait(ctx context.Context) []entity.Book {
	select {
	case <-q.done:
		return q.books
	case <-ctx.Done():
		return []entity.Book{}
	}
}

// Resolved reports whether the query has completed, without blocking.
func (q *RelatedQuery) Resolved() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// DetailView is the composed state of one book-detail page: the primary
// record, the visitor's session context, and three independent related-book
// futures. The futures share the Load context; cancelling it (navigating
// away) abandons whatever is still in flight.
type DetailView struct {
	Book       entity.Book
	UserID     string
	CardNumber string

	InCategory    *RelatedQuery
	FromAuthor    *RelatedQuery
	FromPublisher *RelatedQuery
}

// BookDetail composes the detail page: the primary fetch strictly precedes
// the three derived searches (data dependency); the searches and the session
// lookup then proceed in parallel with no ordering between them.
type BookDetail struct {
	Gateway gateway.API
	Session SessionSource
	Logger  *logrus.Logger
}

func NewBookDetail(gw gateway.API, sess SessionSource, logger *logrus.Logger) *BookDetail {
	return &BookDetail{Gateway: gw, Session: sess, Logger: logger}
}

// Load runs the pipeline for one book id. Each call is a fresh pipeline;
// callers restart it by cancelling the previous ctx and calling Load again.
// Only the primary fetch can fail the page: a missing session or a failed
// related search degrades that part of the view and nothing else.
func (o *BookDetail) Load(ctx context.Context, s *session.Session, id string) (*DetailView, error) {
	book, err := o.Gateway.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.PublishDate == nil || *book.PublishDate == "" {
		unknown := entity.PublishDateUnknown
		book.PublishDate = &unknown
	}

	view := &DetailView{
		Book:          book,
		InCategory:    o.search(ctx, entity.SearchCriteria{Category: []string{book.Category}}),
		FromAuthor:    o.search(ctx, entity.SearchCriteria{Author: book.Author}),
		FromPublisher: o.search(ctx, entity.SearchCriteria{Publisher: book.Publisher}),
	}

	if o.Session.IsAuthenticated(s) {
		u, err := o.Session.Current(ctx, s)
		if err != nil {
			// The page still renders for an anonymous-looking visitor; the
			// related queries above are already in flight.
			if o.Logger != nil {
				o.Logger.WithError(err).WithField("book_id", id).Warn("session lookup failed on detail view")
			}
		} else {
			view.UserID = u.ID
			view.CardNumber = u.CardNumber()
		}
	}

	return view, nil
}

func (o *BookDetail) search(ctx context.Context, criteria entity.SearchCriteria) *RelatedQuery {
	q := newRelatedQuery()
	go func() {
		defer close(q.done)
		books, err := o.Gateway.SearchBooks(ctx, criteria)
		if err != nil {
			if o.Logger != nil {
				o.Logger.WithError(err).Warn("related-book search failed, list degraded to empty")
			}
			q.books = []entity.Book{}
			return
		}
		if books == nil {
			books = []entity.Book{}
		}
		q.books = books
	}()
	return q
}
