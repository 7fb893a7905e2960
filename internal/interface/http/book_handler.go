package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/application"
	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/interface/middleware"
	"github.com/openlibro/librogate/internal/notify"
	"github.com/openlibro/librogate/pkg/response"
	"github.com/openlibro/librogate/pkg/validation"
)

// BookHandler serves the book-detail view and the borrow action.
type BookHandler struct {
	Detail   *application.BookDetail
	Gateway  gateway.API
	Sessions application.SessionSource
	Logger   *logrus.Logger
}

func NewBookHandler(detail *application.BookDetail, gw gateway.API, sessions application.SessionSource, logger *logrus.Logger) *BookHandler {
	return &BookHandler{Detail: detail, Gateway: gw, Sessions: sessions, Logger: logger}
}

type detailResponse struct {
	Book          entity.Book   `json:"book"`
	UserID        string        `json:"userId,omitempty"`
	CardNumber    string        `json:"cardNumber,omitempty"`
	InCategory    []entity.Book `json:"inCategory"`
	FromAuthor    []entity.Book `json:"fromAuthor"`
	FromPublisher []entity.Book `json:"fromPublisher"`
}

// Get composes the detail page for one book. The request context bounds the
// whole pipeline: a client that navigates away aborts the related searches
// still in flight.
func (h *BookHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.Detail.Load(ctx, middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		if gateway.IsNotFound(err) {
			response.Error[any](c, http.StatusNotFound, "book not found", nil, nil)
			return
		}
		response.Error[any](c, http.StatusBadGateway, "could not load book", err.Error(), nil)
		return
	}

	response.Success(c, http.StatusOK, detailResponse{
		Book:          view.Book,
		UserID:        view.UserID,
		CardNumber:    view.CardNumber,
		InCategory:    view.InCategory.Wait(ctx),
		FromAuthor:    view.FromAuthor.Wait(ctx),
		FromPublisher: view.FromPublisher.Wait(ctx),
	}, "book detail", nil)
}

// Borrow gates and submits a loan request. Outcomes other than a malformed
// form come back as 200 with alerts; the front-end renders them in place.
func (h *BookHandler) Borrow(c *gin.Context) {
	var form application.BorrowForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err), nil)
		return
	}

	s := middleware.SessionFrom(c)
	var userID, cardNumber string
	if s != nil {
		u, err := h.Sessions.Current(c.Request.Context(), s)
		if err != nil {
			if h.Logger != nil {
				h.Logger.WithError(err).Warn("session lookup failed on borrow")
			}
		} else {
			userID = u.ID
			cardNumber = u.CardNumber()
		}
	}

	alerts := notify.NewCenter(h.Logger)
	workflow := application.NewBorrow(h.Gateway, alerts, h.Logger)
	outcome := workflow.Request(c.Request.Context(), userID, cardNumber, c.Param("id"), form)

	switch outcome {
	case application.BorrowRedirectLogin:
		response.Error[any](c, http.StatusUnauthorized, "login required", gin.H{"redirect": "/login"}, nil)
	case application.BorrowInvalidForm:
		response.Error[any](c, http.StatusBadRequest, "borrow and return dates are required", nil, alerts.DrainAll())
	default:
		response.Success[any](c, http.StatusOK, gin.H{"outcome": outcomeLabel(outcome)}, "borrow request settled", alerts.DrainAll())
	}
}

func outcomeLabel(o application.BorrowOutcome) string {
	switch o {
	case application.BorrowAccepted:
		return "accepted"
	case application.BorrowCardRequired:
		return "card_required"
	case application.BorrowFailed:
		return "failed"
	default:
		return "rejected"
	}
}
