package application

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openlibro/librogate/internal/gateway"
	"github.com/openlibro/librogate/internal/notify"
)

const borrowAlertSeconds = 10

// BorrowForm is the loan-request form: the start date defaults to today,
// the return date has no default and is required.
type BorrowForm struct {
	BorrowDate string `json:"borrowDate" binding:"required"`
	ReturnDate string `json:"returnDate" binding:"required"`
}

// NewBorrowForm returns a form with the start date seeded to today.
func NewBorrowForm() BorrowForm {
	return BorrowForm{BorrowDate: time.Now().Format("2006-01-02")}
}

// BorrowOutcome is the settled result of one borrow attempt.
type BorrowOutcome int

const (
	// BorrowRedirectLogin means no session exists; the caller should send
	// the visitor to the login entry point. No gateway call was made.
	BorrowRedirectLogin BorrowOutcome = iota
	// BorrowCardRequired means the visitor is logged in but has no linked
	// library card. A warning was emitted; no gateway call was made.
	BorrowCardRequired
	// BorrowInvalidForm means a required date was missing. No gateway call.
	BorrowInvalidForm
	// BorrowAccepted means the loan request was submitted successfully.
	BorrowAccepted
	// BorrowFailed means the submission reached the gateway and failed.
	BorrowFailed
)

// Borrow gates a loan-request submission behind the two preconditions and
// runs it as an Idle -> Submitting -> Settled cycle.
type Borrow struct {
	Gateway gateway.API
	Alerts  notify.Sink
	Logger  *logrus.Logger

	mu   sync.Mutex
	busy bool
}

func NewBorrow(gw gateway.API, alerts notify.Sink, logger *logrus.Logger) *Borrow {
	return &Borrow{Gateway: gw, Alerts: alerts, Logger: logger}
}

// Busy reports whether a submission is in flight.
func (w *Borrow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Request checks the preconditions in order, then submits the loan request.
// The failure notification is deliberately generic: unlike the profile
// workflows, borrow outcomes are not classified by transport status.
func (w *Borrow) Request(ctx context.Context, userID, cardNumber, bookID string, form BorrowForm) BorrowOutcome {
	if userID == "" {
		return BorrowRedirectLogin
	}
	if cardNumber == "" {
		w.Alerts.Append(msgCardRequired, notify.Danger, borrowAlertSeconds, notify.DefaultRegion)
		return BorrowCardRequired
	}
	if form.BorrowDate == "" || form.ReturnDate == "" {
		return BorrowInvalidForm
	}

	w.mu.Lock()
	w.busy = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	err := w.Gateway.SubmitBorrow(ctx, gateway.BorrowRequest{
		CardNumber: cardNumber,
		BookID:     bookID,
		BorrowDate: form.BorrowDate,
		ReturnDate: form.ReturnDate,
	})
	if err != nil {
		if w.Logger != nil {
			w.Logger.WithError(err).WithField("book_id", bookID).Warn("borrow submission failed")
		}
		w.Alerts.Append(msgGeneric, notify.Danger, borrowAlertSeconds, notify.DefaultRegion)
		return BorrowFailed
	}

	w.Alerts.Append(msgBorrowAccepted, notify.Success, borrowAlertSeconds, notify.DefaultRegion)
	return BorrowAccepted
}
