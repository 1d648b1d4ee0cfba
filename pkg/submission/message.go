package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-tripform/pkg/client"
	"github.com/goliatone/go-tripform/pkg/trip"
)

// UnexpectedMessage is shown when a failure carries no HTTP status.
const UnexpectedMessage = "unexpected error"

// FailureMessage turns a planner error into the text shown to the user. It
// includes the HTTP status code whenever the error carries one.
func FailureMessage(err error) string {
	var status *client.StatusError
	if errors.As(err, &status) {
		msg := fmt.Sprintf("planning service returned %d", status.StatusCode())
		if status.Detail != "" && len(status.Fields) == 0 {
			msg += ": " + status.Detail
		}
		return msg
	}
	var decode *client.DecodeError
	if errors.As(err, &decode) {
		return fmt.Sprintf("planning service returned an unreadable response (status %d)", decode.StatusCode())
	}
	var transport *client.TransportError
	if errors.As(err, &transport) {
		if errors.Is(err, context.Canceled) {
			return UnexpectedMessage + ": request cancelled"
		}
		return UnexpectedMessage + ": planning service unreachable"
	}
	return UnexpectedMessage
}

// failureFields extracts service side field errors, if any.
func failureFields(err error) trip.FieldErrors {
	var status *client.StatusError
	if errors.As(err, &status) {
		return status.Fields
	}
	return nil
}
