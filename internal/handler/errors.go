package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/neighborly/engage/internal/httputil"
	"github.com/neighborly/engage/internal/model"
)

// writeServiceError maps domain sentinels onto the HTTP error envelope.
// Shared across handlers so every operation reports the same error kinds
// the same way.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrUnknownKind),
		errors.Is(err, model.ErrInvalidTargetID),
		errors.Is(err, model.ErrInvalidEmoji),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrContentRequired),
		errors.Is(err, model.ErrContentTooLong),
		errors.Is(err, model.ErrReplyToReply),
		errors.Is(err, model.ErrParentMismatch),
		errors.Is(err, model.ErrNotAttending),
		errors.Is(err, model.ErrTooManyTargets):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrTargetNotFound),
		errors.Is(err, model.ErrCommentNotFound),
		errors.Is(err, model.ErrEventNotFound),
		errors.Is(err, model.ErrShareNotFound):
		httputil.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrForbidden),
		errors.Is(err, model.ErrNotCommentOwner),
		errors.Is(err, model.ErrNotOrganizer),
		errors.Is(err, model.ErrNotShareOwner):
		httputil.WriteForbidden(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		httputil.WriteConflict(w, "Concurrent modification, please re-fetch and retry")
	case errors.Is(err, model.ErrUnavailable):
		httputil.WriteUnavailable(w, "Engagement store temporarily unavailable")
	default:
		log.Printf("[ERROR] %s: %v", op, err)
		httputil.WriteInternalError(w, "Internal error")
	}
}
