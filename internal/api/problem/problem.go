package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs used across the API.
const (
	TypeValidation   = "https://streetcode.com.ua/problems/validation-error"
	TypeNotFound     = "https://streetcode.com.ua/problems/not-found"
	TypeUnauthorized = "https://streetcode.com.ua/problems/unauthorized"
	TypeForbidden    = "https://streetcode.com.ua/problems/forbidden"
	TypeConflict     = "https://streetcode.com.ua/problems/conflict"
	TypeServerError  = "https://streetcode.com.ua/problems/server-error"
)

// environment controls whether raw error details leak into responses.
// Outside development and test the detail falls back to the status text.
var environment atomic.Value

func init() {
	environment.Store("development")
}

// SetEnvironment configures detail redaction. Call once at startup.
func SetEnvironment(env string) {
	environment.Store(env)
}

func detailAllowed() bool {
	env, _ := environment.Load().(string)
	return env == "development" || env == "test"
}

type ProblemDetails struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Errors   map[string]interface{} `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithError(err error) Option {
	return func(p *ProblemDetails) {
		if err == nil {
			return
		}
		if detailAllowed() {
			p.Detail = err.Error()
		}
	}
}

func WithErrors(errs map[string]interface{}) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, opts ...Option) {
	pd := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&pd)
	}

	if pd.Detail == "" {
		pd.Detail = http.StatusText(status)
	}

	if pd.Instance == "" && r != nil {
		pd.Instance = r.URL.Path
	}

	if r != nil && status >= 400 {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, pd)
}

func WriteProblem(w http.ResponseWriter, pd ProblemDetails) {
	payload, err := json.Marshal(pd)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(pd.Status)
	_, _ = w.Write(payload)
}

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
