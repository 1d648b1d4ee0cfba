package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// validationDetail is the 422 body shape of the planning service:
// {"detail":[{"loc":["body","dias"],"msg":"...","type":"..."}]}. Some error
// paths return detail as a plain string instead.
type validationDetail struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func statusError(op string, code int, body []byte) *StatusError {
	err := &StatusError{Op: op, Code: code}
	if len(body) == 0 {
		return err
	}

	var payload validationDetail
	if json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return err
	}

	var text string
	if json.Unmarshal(payload.Detail, &text) == nil {
		err.Detail = strings.TrimSpace(text)
		return err
	}

	var items []detailItem
	if json.Unmarshal(payload.Detail, &items) != nil {
		return err
	}

	fields := trip.FieldErrors{}
	var unmatched []string
	for _, item := range items {
		if name, ok := fieldFromLoc(item.Loc); ok {
			if _, seen := fields[name]; !seen {
				fields[name] = item.Msg
			}
			continue
		}
		unmatched = append(unmatched, locString(item.Loc, item.Msg))
	}
	if len(fields) > 0 {
		err.Fields = fields
	}
	if len(unmatched) > 0 {
		sort.Strings(unmatched)
		err.Detail = strings.Join(unmatched, "; ")
	} else if len(fields) > 0 {
		err.Detail = fields.Error()
	}
	return err
}

func fieldFromLoc(loc []any) (string, bool) {
	for i := len(loc) - 1; i >= 0; i-- {
		name, ok := loc[i].(string)
		if !ok {
			continue
		}
		if canonical, ok := trip.CanonicalName(name); ok {
			return canonical, true
		}
	}
	return "", false
}

func locString(loc []any, msg string) string {
	parts := make([]string, 0, len(loc))
	for _, p := range loc {
		parts = append(parts, fmt.Sprint(p))
	}
	if len(parts) == 0 {
		return msg
	}
	return strings.Join(parts, ".") + ": " + msg
}
