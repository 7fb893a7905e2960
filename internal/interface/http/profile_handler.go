package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/application"
	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/interface/middleware"
	"github.com/openlibro/librogate/pkg/helpers"
	"github.com/openlibro/librogate/pkg/response"
	"github.com/openlibro/librogate/pkg/validation"
)

// maxAvatarBytes caps how much of an uploaded avatar is read into memory.
const maxAvatarBytes = 8 << 20

// ProfileHandler exposes the profile page orchestration. All routes require
// an authenticated session; each user is served by their own orchestrator
// instance from the registry.
type ProfileHandler struct {
	Registry *application.ProfileRegistry
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
}

func NewProfileHandler(registry *application.ProfileRegistry, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *ProfileHandler {
	return &ProfileHandler{Registry: registry, Cookies: helpers.NewCookie(cookieDomain, cookieSecure), Logger: logger}
}

type profileResponse struct {
	User entity.User             `json:"user"`
	Form application.ProfileForm `json:"form"`
}

// Get loads (or reloads) the profile read model and edit form.
func (h *ProfileHandler) Get(c *gin.Context) {
	p, alerts := h.Registry.For(middleware.SessionFrom(c))
	if err := p.Load(c.Request.Context()); err != nil {
		if errors.Is(err, application.ErrBusy) {
			response.Error[any](c, http.StatusConflict, "another operation is in progress", nil, alerts.DrainAll())
			return
		}
		response.Error[any](c, http.StatusBadGateway, "could not load profile", err.Error(), alerts.DrainAll())
		return
	}
	response.Success(c, http.StatusOK, profileResponse{User: sanitized(p.User()), Form: p.Form()}, "profile", alerts.DrainAll())
}

// Stage merges submitted form values into the pending-change buffer without
// committing anything.
func (h *ProfileHandler) Stage(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err), nil)
		return
	}
	p, alerts := h.Registry.For(middleware.SessionFrom(c))
	p.Stage(partial)
	response.Success[any](c, http.StatusOK, gin.H{"staged": true}, "changes staged", alerts.DrainAll())
}

// Commit submits the pending-change buffer. Transport failures settle into
// alerts, not HTTP errors; only a busy orchestrator is reported as an error.
func (h *ProfileHandler) Commit(c *gin.Context) {
	p, alerts := h.Registry.For(middleware.SessionFrom(c))
	if err := p.Commit(c.Request.Context()); err != nil && errors.Is(err, application.ErrBusy) {
		response.Error[any](c, http.StatusConflict, "another operation is in progress", nil, alerts.DrainAll())
		return
	}
	response.Success(c, http.StatusOK, profileResponse{User: sanitized(p.User()), Form: p.Form()}, "edit settled", alerts.DrainAll())
}

// Delete submits the buffer as account-deletion context. On success the
// session cookies are cleared and the front-end is told to navigate home.
func (h *ProfileHandler) Delete(c *gin.Context) {
	s := middleware.SessionFrom(c)
	p, alerts := h.Registry.For(s)
	home, err := p.Delete(c.Request.Context())
	if err != nil && errors.Is(err, application.ErrBusy) {
		response.Error[any](c, http.StatusConflict, "another operation is in progress", nil, alerts.DrainAll())
		return
	}
	if home {
		drained := alerts.DrainAll()
		h.Registry.Drop(s.UserID)
		h.Cookies.Clear(c)
		response.Success[any](c, http.StatusOK, gin.H{"redirect": "/home"}, "account deleted", drained)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": false}, "delete settled", alerts.DrainAll())
}

// UploadAvatar reads the selected file fully into memory and submits it.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", nil, nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read avatar file", err.Error(), nil)
		return
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "could not read avatar file", err.Error(), nil)
		return
	}

	p, alerts := h.Registry.For(middleware.SessionFrom(c))
	if err := p.UploadAvatar(c.Request.Context(), content); err != nil {
		switch {
		case errors.Is(err, application.ErrBusy):
			response.Error[any](c, http.StatusConflict, "another operation is in progress", nil, alerts.DrainAll())
		case errors.Is(err, application.ErrAvatarNotBinary):
			response.Error[any](c, http.StatusUnprocessableEntity, "avatar must be a binary image file", nil, alerts.DrainAll())
		default:
			response.Success[any](c, http.StatusOK, gin.H{"uploaded": false}, "upload settled", alerts.DrainAll())
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"avatarImage": p.User().AvatarImage}, "upload settled", alerts.DrainAll())
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword rotates the account secret. The empty/equal guard lives in
// the workflow: a guarded call is a silent no-op, not an error.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err), nil)
		return
	}
	p, alerts := h.Registry.For(middleware.SessionFrom(c))
	performed, err := p.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
	if err != nil && errors.Is(err, application.ErrBusy) {
		response.Error[any](c, http.StatusConflict, "another operation is in progress", nil, alerts.DrainAll())
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"performed": performed}, "password change settled", alerts.DrainAll())
}

type linkCardRequest struct {
	CardNumber   string `json:"cardNumber"`
	CardPassword string `json:"cardPassword"`
}

// LinkCard attaches a physical library card to the account.
func (h *ProfileHandler) LinkCard(c *gin.Context) {
	var req linkCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err), nil)
		return
	}
	p, alerts := h.Registry.For(middleware.SessionFrom(c))
	performed, err := p.LinkLibraryCard(c.Request.Context(), req.CardNumber, req.CardPassword)
	if err != nil && errors.Is(err, application.ErrBusy) {
		response.Error[any](c, http.StatusConflict, "another operation is in progress", nil, alerts.DrainAll())
		return
	}
	u := sanitized(p.User())
	response.Success[any](c, http.StatusOK, gin.H{"performed": performed, "libraryCard": u.LibraryCard}, "card link settled", alerts.DrainAll())
}

// sanitized strips secrets before a profile record leaves the service.
func sanitized(u entity.User) entity.User {
	u.Password = ""
	u.CardPassword = ""
	if u.LibraryCard != nil {
		card := *u.LibraryCard
		card.Password = ""
		u.LibraryCard = &card
	}
	return u
}
