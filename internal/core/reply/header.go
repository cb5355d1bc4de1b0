package reply

import (
	perr "afsearch/internal/platform/errors"
)

// OrchestrationType names how the engine rewrote the query
type OrchestrationType string

const (
	AutoSpellchecker   OrchestrationType = "autoSpellchecker"
	FallbackToOptional OrchestrationType = "fallbackToOptional"
)

// Header wraps the reply header
type Header struct {
	w *wireHeader
}

func (h Header) UserID() string    { return h.w.Query.UserID }
func (h Header) SessionID() string { return h.w.Query.SessionID }

// Duration is the server side processing time in milliseconds
func (h Header) Duration() int { return h.w.Performance.DurationMs }

// TextQuery is the text query as understood by the engine
func (h Header) TextQuery() string { return h.w.Query.TextQuery }

func (h Header) InError() bool { return h.w.Error != nil }

// Error returns the first error message, "" when the reply is not in error
func (h Header) Error() string {
	if h.w.Error == nil {
		return ""
	}
	if len(h.w.Error.Message) == 0 {
		return "unknown error"
	}
	return h.w.Error.Message[0]
}

// QueryParam returns the value of a query parameter echoed by the engine
func (h Header) QueryParam(name string) (string, error) {
	for _, p := range h.w.Query.QueryParam {
		if p.Name == name {
			return string(p.Value), nil
		}
	}
	return "", perr.WithField(perr.NotFoundf("no query parameter %q in reply header", name), "name")
}

func (h Header) IsOrchestrated() bool { return h.w.OrchestrationInfo != nil }

// OrchestrationType fails with a state error when the query was not orchestrated
func (h Header) OrchestrationType() (OrchestrationType, error) {
	if !h.IsOrchestrated() {
		return "", perr.Statef("this request is not orchestrated")
	}
	for _, t := range []OrchestrationType{AutoSpellchecker, FallbackToOptional} {
		if _, ok := h.w.OrchestrationInfo[string(t)]; ok {
			return t, nil
		}
	}
	return "", perr.ReplyInvalid(nil, nil, "unknown orchestration type")
}
