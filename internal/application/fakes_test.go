package application

import (
	"context"
	"sync"

	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/session"
)

// fakeGateway records calls and serves canned results. Per-operation fn
// overrides allow blocking or custom behavior where a test needs it.
type fakeGateway struct {
	mu sync.Mutex

	books    map[string]entity.Book
	getErr   error
	searchFn func(ctx context.Context, c entity.SearchCriteria) ([]entity.Book, error)

	borrowErr   error
	borrowCalls []gateway.BorrowRequest

	editFn    func(ctx context.Context, draft map[string]any) (entity.User, error)
	editErr   error
	editCalls []map[string]any

	deleteErr   error
	deleteCalls []map[string]any

	avatarRef   string
	avatarErr   error
	avatarCalls []gateway.AvatarUpload

	passwordErr   error
	passwordCalls []gateway.PasswordChange

	linkCard  entity.LibraryCard
	linkErr   error
	linkCalls []gateway.CardLink

	currentUser entity.User
	currentErr  error
}

func (f *fakeGateway) GetBook(ctx context.Context, id string) (entity.Book, error) {
	if f.getErr != nil {
		return entity.Book{}, f.getErr
	}
	b, ok := f.books[id]
	if !ok {
		return entity.Book{}, &gateway.StatusError{Op: "getBook", Status: 404}
	}
	return b, nil
}

func (f *fakeGateway) SearchBooks(ctx context.Context, c entity.SearchCriteria) ([]entity.Book, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, c)
	}
	return []entity.Book{}, nil
}

func (f *fakeGateway) SubmitBorrow(ctx context.Context, req gateway.BorrowRequest) error {
	f.mu.Lock()
	f.borrowCalls = append(f.borrowCalls, req)
	f.mu.Unlock()
	return f.borrowErr
}

func (f *fakeGateway) EditUser(ctx context.Context, draft map[string]any) (entity.User, error) {
	f.mu.Lock()
	f.editCalls = append(f.editCalls, draft)
	f.mu.Unlock()
	if f.editFn != nil {
		return f.editFn(ctx, draft)
	}
	return entity.User{}, f.editErr
}

func (f *fakeGateway) DeleteUser(ctx context.Context, draft map[string]any) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, draft)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeGateway) UploadAvatar(ctx context.Context, req gateway.AvatarUpload) (string, error) {
	f.mu.Lock()
	f.avatarCalls = append(f.avatarCalls, req)
	f.mu.Unlock()
	return f.avatarRef, f.avatarErr
}

func (f *fakeGateway) ChangePassword(ctx context.Context, req gateway.PasswordChange) error {
	f.mu.Lock()
	f.passwordCalls = append(f.passwordCalls, req)
	f.mu.Unlock()
	return f.passwordErr
}

func (f *fakeGateway) LinkLibraryCard(ctx context.Context, req gateway.CardLink) (entity.LibraryCard, error) {
	f.mu.Lock()
	f.linkCalls = append(f.linkCalls, req)
	f.mu.Unlock()
	return f.linkCard, f.linkErr
}

func (f *fakeGateway) CurrentUser(ctx context.Context, username string) (entity.User, error) {
	return f.currentUser, f.currentErr
}

// fakeSessions is a canned SessionSource. Subscribe emits the user once per
// call; the re-publish after Refresh is not exercised here.
type fakeSessions struct {
	mu            sync.Mutex
	user          entity.User
	err           error
	authenticated bool
	ended         bool
	refreshes     int

	// refreshTo, when set, becomes the served user after a Refresh, standing
	// in for the cache invalidation a real provider performs.
	refreshTo *entity.User
}

func (f *fakeSessions) IsAuthenticated(s *session.Session) bool {
	return f.authenticated && s != nil && s.UserID != ""
}

func (f *fakeSessions) Current(ctx context.Context, s *session.Session) (entity.User, error) {
	if f.err != nil {
		return entity.User{}, f.err
	}
	return f.user, nil
}

func (f *fakeSessions) Subscribe(ctx context.Context, s *session.Session) (<-chan entity.User, func(), error) {
	ch := make(chan entity.User, 1)
	if f.err != nil {
		close(ch)
	} else {
		f.mu.Lock()
		ch <- f.user
		f.mu.Unlock()
	}
	return ch, func() {}, nil
}

func (f *fakeSessions) Refresh(ctx context.Context, s *session.Session) error {
	f.mu.Lock()
	f.refreshes++
	if f.refreshTo != nil {
		f.user = *f.refreshTo
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeSessions) End(ctx context.Context, s *session.Session) error {
	f.mu.Lock()
	f.ended = true
	f.mu.Unlock()
	return nil
}

func strptr(s string) *string { return &s }
