// Package api serves the character document over HTTP in the shape the
// sheet's remote client expects.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/charsheet/internal/platform/errors"
	"github.com/louisbranch/charsheet/internal/platform/httpx"
	i18ncatalog "github.com/louisbranch/charsheet/internal/platform/i18n/catalog"
	"github.com/louisbranch/charsheet/internal/platform/id"
	"github.com/louisbranch/charsheet/internal/platform/requestctx"
	"github.com/louisbranch/charsheet/internal/services/charstore/storage"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
)

const (
	// CharacterPath is the document endpoint.
	CharacterPath = "/character"
	// RevisionsPath lists stored revisions.
	RevisionsPath = CharacterPath + "/revisions"

	// MaxDocumentBytes caps an accepted POST body.
	MaxDocumentBytes = 1 << 20
)

// Handler serves GET and POST for the character document.
type Handler struct {
	store   storage.DocumentStore
	logger  *log.Logger
	newID   func() (string, error)
	now     func() time.Time
	initial domain.Document
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock overrides the revision timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithIDGenerator overrides the revision ID source.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(h *Handler) {
		if newID != nil {
			h.newID = newID
		}
	}
}

// WithInitialDocument sets the document served before anything is saved.
func WithInitialDocument(doc domain.Document) Option {
	return func(h *Handler) {
		h.initial = doc
	}
}

// NewHandler builds a handler over store.
func NewHandler(store storage.DocumentStore, opts ...Option) *Handler {
	h := &Handler{
		store:  store,
		logger: log.Default(),
		newID:  id.NewID,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the endpoint mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(CharacterPath, h.handleCharacter)
	mux.HandleFunc(RevisionsPath, h.handleRevisions)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, apperrors.New(apperrors.CodeNotFound, "no route for "+r.URL.Path), localeOf(r))
	})
	return mux
}

type documentResponse struct {
	StatusCode int             `json:"statusCode"`
	Body       domain.Document `json:"body"`
}

type saveResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Revision   string `json:"revision"`
}

type revisionSummary struct {
	Revision  string    `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
}

type revisionsResponse struct {
	StatusCode int               `json:"statusCode"`
	Revisions  []revisionSummary `json:"revisions"`
}

func (h *Handler) handleCharacter(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getCharacter(w, r)
	case http.MethodPost:
		h.saveCharacter(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		httpx.WriteError(w, methodNotAllowed(r.Method), localeOf(r))
	}
}

func (h *Handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	doc := h.initial
	revision, err := h.store.LatestRevision(r.Context())
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		h.logf(r, "load latest revision: %v", err)
		httpx.WriteError(w, err, localeOf(r))
		return
	default:
		var stored domain.Document
		if err := json.Unmarshal(revision.Payload, &stored); err != nil {
			h.logf(r, "decode revision %s: %v", revision.ID, err)
			httpx.WriteError(w, err, localeOf(r))
			return
		}
		doc = stored
	}
	if doc.Attributes == nil {
		doc.Attributes = []domain.Attribute{}
	}
	if doc.Skills == nil {
		doc.Skills = []domain.Skill{}
	}
	h.write(w, http.StatusOK, documentResponse{StatusCode: http.StatusOK, Body: doc})
}

func (h *Handler) saveCharacter(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(w, r)
	if err != nil {
		httpx.WriteError(w, err, localeOf(r))
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		httpx.WriteError(w, err, localeOf(r))
		return
	}
	revisionID, err := h.newID()
	if err != nil {
		h.logf(r, "new revision id: %v", err)
		httpx.WriteError(w, err, localeOf(r))
		return
	}
	revision := storage.Revision{ID: revisionID, Payload: payload, CreatedAt: h.now().UTC()}
	if err := h.store.PutRevision(r.Context(), revision); err != nil {
		h.logf(r, "put revision %s: %v", revision.ID, err)
		httpx.WriteError(w, err, localeOf(r))
		return
	}
	message := i18ncatalog.Default().Printer(localeOf(r)).Sprintf("sheet.saved")
	h.write(w, http.StatusOK, saveResponse{StatusCode: http.StatusOK, Message: message, Revision: revision.ID})
}

func (h *Handler) handleRevisions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httpx.WriteError(w, methodNotAllowed(r.Method), localeOf(r))
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(w, apperrors.Wrap(apperrors.CodeDocumentInvalid, "invalid limit "+strconv.Quote(raw), err), localeOf(r))
			return
		}
		limit = parsed
	}
	revisions, err := h.store.ListRevisions(r.Context(), limit)
	if err != nil {
		h.logf(r, "list revisions: %v", err)
		httpx.WriteError(w, err, localeOf(r))
		return
	}
	out := make([]revisionSummary, 0, len(revisions))
	for _, rev := range revisions {
		out = append(out, revisionSummary{Revision: rev.ID, CreatedAt: rev.CreatedAt})
	}
	h.write(w, http.StatusOK, revisionsResponse{StatusCode: http.StatusOK, Revisions: out})
}

// logf logs with the request correlation id appended.
func (h *Handler) logf(r *http.Request, format string, args ...any) {
	args = append(args, requestctx.RequestIDFromContext(r.Context()))
	h.logger.Printf(format+" request_id=%s", args...)
}

func (h *Handler) write(w http.ResponseWriter, status int, payload any) {
	if err := httpx.WriteJSON(w, status, payload); err != nil {
		h.logger.Printf("write response: %v", err)
	}
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (domain.Document, error) {
	body := http.MaxBytesReader(w, r.Body, MaxDocumentBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Document{}, apperrors.Wrap(apperrors.CodeDocumentTooLarge, "character document too large", err)
		}
		return domain.Document{}, apperrors.Wrap(apperrors.CodeDocumentInvalid, "read character document", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, apperrors.Wrap(apperrors.CodeDocumentInvalid, "decode character document", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return domain.Document{}, err
	}
	if doc.Attributes == nil {
		doc.Attributes = []domain.Attribute{}
	}
	if doc.Skills == nil {
		doc.Skills = []domain.Skill{}
	}
	return doc, nil
}

// ValidateDocument rejects empty or repeated names and negative skill
// points. Attribute values are not bounded.
func ValidateDocument(doc domain.Document) error {
	attrs := make(map[string]struct{}, len(doc.Attributes))
	for i, attr := range doc.Attributes {
		name := strings.TrimSpace(attr.Name)
		if name == "" {
			return invalidDocument(fmt.Sprintf("attribute %d has no name", i))
		}
		if _, dup := attrs[name]; dup {
			return invalidDocument(fmt.Sprintf("attribute %q is repeated", name))
		}
		attrs[name] = struct{}{}
	}
	skills := make(map[string]struct{}, len(doc.Skills))
	for i, skill := range doc.Skills {
		name := strings.TrimSpace(skill.Name)
		if name == "" {
			return invalidDocument(fmt.Sprintf("skill %d has no name", i))
		}
		if _, dup := skills[name]; dup {
			return invalidDocument(fmt.Sprintf("skill %q is repeated", name))
		}
		skills[name] = struct{}{}
		if skill.PointsSpent < 0 {
			return invalidDocument(fmt.Sprintf("skill %q has negative points", name))
		}
	}
	return nil
}

func invalidDocument(message string) error {
	return apperrors.New(apperrors.CodeDocumentInvalid, message)
}

func methodNotAllowed(method string) error {
	return apperrors.WithMetadata(apperrors.CodeMethodNotAllowed, "method "+method+" not allowed", map[string]string{"Method": method})
}

func localeOf(r *http.Request) string {
	return i18ncatalog.Default().MatchLocale(r.Header.Get("Accept-Language"))
}
