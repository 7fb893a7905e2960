package application

import (
	"context"

	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/session"
)

// SessionSource is the slice of the session provider the orchestrators
// consume.
type SessionSource interface {
	IsAuthenticated(s *session.Session) bool
	Current(ctx context.Context, s *session.Session) (entity.User, error)
	Subscribe(ctx context.Context, s *session.Session) (<-chan entity.User, func(), error)
	Refresh(ctx context.Context, s *session.Session) error
	End(ctx context.Context, s *session.Session) error
}

// User-facing copy for workflow outcomes. Text shown verbatim by the
// front-end alert regions.
const (
	msgInvalidInput    = "Invalid input, please check and try again"
	msgUnreachable     = "Cannot reach the server, please try again later"
	msgGeneric         = "Something went wrong, please try again later"
	msgAccountMissing  = "Account does not exist"
	msgCardRequired    = "Please link a library card before borrowing"
	msgBorrowAccepted  = "Borrow request accepted, bring your card to the library to pick up the book"
	msgProfileUpdated  = "Profile updated successfully"
	msgAccountDeleted  = "Account deleted successfully"
	msgAvatarUpdated   = "Avatar updated, reload the page to see the change"
	msgPasswordChanged = "Password changed successfully"
	msgCardLinked      = "Library card linked successfully"
)

// failureMessage maps a gateway failure onto the user-facing taxonomy:
// unreachable server is retryable, 400/409 ask the user to fix their input,
// 404 only means anything on account deletion, everything else is generic.
func failureMessage(err error, deletion bool) string {
	switch gateway.StatusOf(err) {
	case gateway.StatusUnreachable:
		return msgUnreachable
	case 400, 409:
		return msgInvalidInput
	case 404:
		if deletion {
			return msgAccountMissing
		}
		return msgGeneric
	default:
		return msgGeneric
	}
}
