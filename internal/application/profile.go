package application

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/domain/entity"
	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/notify"
	"github.com/openlibro/librogate/internal/session"
)

const profileAlertSeconds = 5

var (
	// ErrBusy rejects a sub-workflow start while another one is in flight.
	// The sub-workflows share one busy flag and one pending-change buffer,
	// so they are serialized rather than interleaved.
	ErrBusy = errors.New("another profile operation is in progress")

	// ErrAvatarNotBinary flags an avatar read that produced text content.
	// This is a caller bug, not user input to correct.
	ErrAvatarNotBinary = errors.New("avatar read produced text content, expected binary image data")

	// ErrProfileUnavailable is returned when the profile stream ended
	// before the first emission.
	ErrProfileUnavailable = errors.New("profile stream ended before a record was received")
)

// editableFields is the fixed subset of the profile that the general edit
// form may touch. Identifier, username, password, avatar and card fields are
// mutated only through their dedicated sub-workflows.
var editableFields = map[string]bool{
	"lastName":    true,
	"firstName":   true,
	"dateOfBirth": true,
	"gender":      true,
	"phoneNumber": true,
	"email":       true,
	"address":     true,
}

// ProfileForm is the editable slice of the profile, seeded from each
// successful load.
type ProfileForm struct {
	LastName    *string `json:"lastName"`
	FirstName   string  `json:"firstName"`
	DateOfBirth *string `json:"dateOfBirth"`
	Gender      *bool   `json:"gender"`
	PhoneNumber *string `json:"phoneNumber"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
}

// Profile orchestrates one user's profile page: a read model refreshed from
// the session stream, an editable form, a pending-change buffer, and five
// mutating sub-workflows that share a single busy flag.
type Profile struct {
	Gateway gateway.API
	Session SessionSource
	Alerts  notify.Sink
	Logger  *logrus.Logger
	Sess    *session.Session

	mu    sync.Mutex
	busy  bool
	user  entity.User
	form  ProfileForm
	draft map[string]any
	stop  func()
}

func NewProfile(gw gateway.API, src SessionSource, alerts notify.Sink, logger *logrus.Logger, s *session.Session) *Profile {
	return &Profile{
		Gateway: gw,
		Session: src,
		Alerts:  alerts,
		Logger:  logger,
		Sess:    s,
		draft:   map[string]any{"password": ""},
	}
}

// Busy reports whether any sub-workflow is in flight.
func (p *Profile) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// User returns the current read model.
func (p *Profile) User() entity.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// Form returns the edit form as last seeded.
func (p *Profile) Form() ProfileForm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

// Draft returns a copy of the pending-change buffer.
func (p *Profile) Draft() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]any, len(p.draft))
	for k, v := range p.draft {
		out[k] = v
	}
	return out
}

// Load re-subscribes to the session's profile stream and waits for the next
// record. The read model is replaced and the edit form re-seeded with
// exactly the editable fields; id, secrets, avatar and card data are never
// copied into the seed. The buffer keeps previously staged values but its
// username is refreshed and its password blanked.
func (p *Profile) Load(ctx context.Context) error {
	if err := p.begin(); err != nil {
		return err
	}
	defer p.settle()

	p.mu.Lock()
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	p.mu.Unlock()

	ch, stop, err := p.Session.Subscribe(ctx, p.Sess)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.stop = stop
	p.mu.Unlock()

	select {
	case u, ok := <-ch:
		if !ok {
			return ErrProfileUnavailable
		}
		p.apply(u)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the profile stream subscription.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

// Stage merges edited fields into the pending-change buffer. The merge is
// additive: later values overwrite same-named earlier ones and untouched
// fields carry over, so edits can accumulate across several staging actions
// before a commit. Fields outside the editable subset are ignored.
func (p *Profile) Stage(partial map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range partial {
		if editableFields[k] {
			p.draft[k] = v
		}
	}
}

// Commit submits the pending-change buffer. Either way the busy flag is
// cleared and the transient password blanked; success additionally refreshes
// the session record and reloads the profile before notifying, so the read
// model and form re-seed from the post-edit record rather than the cache.
func (p *Profile) Commit(ctx context.Context) error {
	if err := p.begin(); err != nil {
		return err
	}

	_, err := p.Gateway.EditUser(ctx, p.draftSnapshot())
	p.settle()

	if err != nil {
		p.clearDraftPassword()
		p.Alerts.Append(failureMessage(err, false), notify.Danger, profileAlertSeconds, notify.DefaultRegion)
		return err
	}

	p.refreshSession(ctx, "edit")
	if lerr := p.Load(ctx); lerr != nil && p.Logger != nil {
		p.Logger.WithError(lerr).WithField("user_id", p.Sess.UserID).Warn("profile reload after edit failed")
	}
	p.clearDraftPassword()
	p.Alerts.Append(msgProfileUpdated, notify.Success, profileAlertSeconds, notify.DefaultRegion)
	return nil
}

// Delete submits the buffer as account-deletion context. On success the
// session is terminated and the caller is told to navigate home. The
// password is blanked regardless of outcome.
func (p *Profile) Delete(ctx context.Context) (navigateHome bool, err error) {
	if err := p.begin(); err != nil {
		return false, err
	}

	err = p.Gateway.DeleteUser(ctx, p.draftSnapshot())
	p.settle()
	p.clearDraftPassword()

	if err != nil {
		p.Alerts.Append(failureMessage(err, true), notify.Danger, profileAlertSeconds, notify.DefaultRegion)
		return false, err
	}

	if eerr := p.Session.End(ctx, p.Sess); eerr != nil && p.Logger != nil {
		p.Logger.WithError(eerr).WithField("user_id", p.Sess.UserID).Warn("session end after delete failed")
	}
	p.Alerts.Append(msgAccountDeleted, notify.Success, profileAlertSeconds, notify.DefaultRegion)
	return true, nil
}

// UploadAvatar submits a fully read image file. The read must have produced
// binary content; a text-decodable payload aborts the upload with the busy
// flag cleared. On success the local avatar reference is updated but the
// displayed image is only swapped on the next page load.
func (p *Profile) UploadAvatar(ctx context.Context, content []byte) error {
	if err := p.begin(); err != nil {
		return err
	}

	if len(content) == 0 || utf8.Valid(content) {
		p.settle()
		return ErrAvatarNotBinary
	}

	p.mu.Lock()
	username := p.user.Username
	p.mu.Unlock()

	ref, err := p.Gateway.UploadAvatar(ctx, gateway.AvatarUpload{Username: username, ImageBytes: content})
	p.settle()

	if err != nil {
		p.Alerts.Append(failureMessage(err, false), notify.Danger, profileAlertSeconds, notify.DefaultRegion)
		return err
	}

	p.refreshSession(ctx, "avatar upload")
	p.mu.Lock()
	p.user.AvatarImage = &ref
	p.mu.Unlock()
	p.Alerts.Append(msgAvatarUpdated, notify.Success, profileAlertSeconds, notify.DefaultRegion)
	return nil
}

// ChangePassword rotates the account secret. Empty or identical old/new
// values make the whole operation a silent no-op with no gateway call.
func (p *Profile) ChangePassword(ctx context.Context, oldPassword, newPassword string) (performed bool, err error) {
	if oldPassword == "" || newPassword == "" || oldPassword == newPassword {
		return false, nil
	}
	if err := p.begin(); err != nil {
		return false, err
	}

	p.mu.Lock()
	username := p.user.Username
	p.mu.Unlock()

	err = p.Gateway.ChangePassword(ctx, gateway.PasswordChange{
		Username:    username,
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	p.settle()

	if err != nil {
		p.Alerts.Append(failureMessage(err, false), notify.Danger, profileAlertSeconds, notify.DefaultRegion)
		return true, err
	}
	p.Alerts.Append(msgPasswordChanged, notify.Success, profileAlertSeconds, notify.DefaultRegion)
	return true, nil
}

// LinkLibraryCard attaches a physical card to the account. Both the card
// number and its secret are required; otherwise the call is a silent no-op.
// The returned card record is attached to the read model on success.
func (p *Profile) LinkLibraryCard(ctx context.Context, cardNumber, cardPassword string) (performed bool, err error) {
	if cardNumber == "" || cardPassword == "" {
		return false, nil
	}
	if err := p.begin(); err != nil {
		return false, err
	}

	p.mu.Lock()
	userID := p.user.ID
	p.mu.Unlock()

	card, err := p.Gateway.LinkLibraryCard(ctx, gateway.CardLink{
		UserID:     userID,
		CardNumber: cardNumber,
		Password:   cardPassword,
	})
	p.settle()

	if err != nil {
		p.Alerts.Append(failureMessage(err, false), notify.Danger, profileAlertSeconds, notify.DefaultRegion)
		return true, err
	}

	p.refreshSession(ctx, "card link")
	p.mu.Lock()
	p.user.LibraryCard = &card
	p.mu.Unlock()
	p.Alerts.Append(msgCardLinked, notify.Success, profileAlertSeconds, notify.DefaultRegion)
	return true, nil
}

// refreshSession invalidates the cached session record after a successful
// mutation, so the next read serves the post-mutation profile. A failed
// refresh is logged and tolerated; the stale record ages out with its TTL.
func (p *Profile) refreshSession(ctx context.Context, after string) {
	if err := p.Session.Refresh(ctx, p.Sess); err != nil && p.Logger != nil {
		p.Logger.WithError(err).WithField("user_id", p.Sess.UserID).Warnf("session refresh after %s failed", after)
	}
}

func (p *Profile) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrBusy
	}
	p.busy = true
	return nil
}

func (p *Profile) settle() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}

func (p *Profile) apply(u entity.User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u.CardPassword = "" // transient, never taken back from a profile read
	p.user = u
	p.form = ProfileForm{
		LastName:    u.LastName,
		FirstName:   u.FirstName,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Address:     u.Address,
	}
	p.draft["username"] = u.Username
	p.draft["password"] = ""
}

func (p *Profile) draftSnapshot() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]any, len(p.draft))
	for k, v := range p.draft {
		out[k] = v
	}
	return out
}

func (p *Profile) clearDraftPassword() {
	p.mu.Lock()
	p.draft["password"] = ""
	p.mu.Unlock()
}
