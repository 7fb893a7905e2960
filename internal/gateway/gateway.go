package gateway

import (
	"context"

	"github.com/openlibro/librogate/internal/domain/entity"
)

// BorrowRequest is the payload for a loan request submission.
type BorrowRequest struct {
	CardNumber string `json:"cardNumber"`
	BookID     string `json:"bookId"`
	BorrowDate string `json:"borrowDate"`
	ReturnDate string `json:"returnDate"`
}

// AvatarUpload carries a fully read avatar image as raw bytes.
type AvatarUpload struct {
	Username   string `json:"username"`
	ImageBytes []byte `json:"imageBytes"`
}

// PasswordChange is the payload for a credential rotation.
type PasswordChange struct {
	Username    string `json:"username"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// CardLink is the payload for attaching a physical library card to a user.
type CardLink struct {
	UserID     string `json:"userId"`
	CardNumber string `json:"cardNumber"`
	Password   string `json:"password"`
}

// API is the upstream books-api surface consumed by the orchestrators.
// Every call returns exactly one result or one failure; failures carry a
// transport status via *StatusError.
type API interface {
	GetBook(ctx context.Context, id string) (entity.Book, error)
	SearchBooks(ctx context.Context, criteria entity.SearchCriteria) ([]entity.Book, error)
	SubmitBorrow(ctx context.Context, req BorrowRequest) error
	EditUser(ctx context.Context, draft map[string]any) (entity.User, error)
	DeleteUser(ctx context.Context, draft map[string]any) error
	UploadAvatar(ctx context.Context, req AvatarUpload) (string, error)
	ChangePassword(ctx context.Context, req PasswordChange) error
	LinkLibraryCard(ctx context.Context, req CardLink) (entity.LibraryCard, error)
	CurrentUser(ctx context.Context, username string) (entity.User, error)
}
