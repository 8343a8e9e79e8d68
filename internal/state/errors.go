package state

import (
	"errors"
	"fmt"
)

// RejectionCode categorizes rejected transitions.
type RejectionCode string

const (
	// CodeNotFound indicates a binder, page, task or user referenced by the
	// action does not exist.
	CodeNotFound RejectionCode = "NOT_FOUND"

	// CodeDuplicateEmail indicates the email is already taken in the
	// directory.
	CodeDuplicateEmail RejectionCode = "DUPLICATE_EMAIL"

	// CodeInvalidDeadline indicates a countdown was armed on a task whose
	// deadline is missing or already past.
	CodeInvalidDeadline RejectionCode = "INVALID_DEADLINE"

	// CodeTaskTimerActive indicates the task's countdown is live: armed and
	// not yet expired.
	CodeTaskTimerActive RejectionCode = "TASK_TIMER_ACTIVE"

	// CodeReminderActive indicates the reminder is already armed and not
	// yet expired.
	CodeReminderActive RejectionCode = "REMINDER_ACTIVE"

	// CodeCorporateMismatch indicates the target user is outside the acting
	// admin's corporate group or is not a corporate user.
	CodeCorporateMismatch RejectionCode = "CORPORATE_MISMATCH"
)

// RejectionError reports a validation failure. The transition that produced
// it was an identity transition: the returned state equals the input state.
//
// Authorization failures are NOT rejections; they are silent no-ops, because
// permission gating belongs to the caller and the reducer only backs it up.
type RejectionError struct {
	Code    RejectionCode
	Message string

	// Entity ids for diagnostics, filled where known.
	BinderID string
	PageID   string
	TaskID   string
	UserID   string
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	switch {
	case e.BinderID != "" && e.PageID != "":
		return fmt.Sprintf("%s: %s (binder=%s, page=%s)", e.Code, e.Message, e.BinderID, e.PageID)
	case e.BinderID != "":
		return fmt.Sprintf("%s: %s (binder=%s)", e.Code, e.Message, e.BinderID)
	case e.UserID != "":
		return fmt.Sprintf("%s: %s (user=%s)", e.Code, e.Message, e.UserID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsRejection reports whether err is a RejectionError with the given code.
// Uses errors.As to handle wrapped errors.
func IsRejection(err error, code RejectionCode) bool {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func rejectNotFound(msg, binderID, pageID string) *RejectionError {
	return &RejectionError{Code: CodeNotFound, Message: msg, BinderID: binderID, PageID: pageID}
}
