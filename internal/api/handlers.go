package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seywald/marque/internal/bookmark"
	"github.com/seywald/marque/internal/linkservice"
)

// defaultPageSize is the number of links returned when no limit is provided.
const defaultPageSize = 20

// Handler holds API route handlers.
type Handler struct {
	svc *linkservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *linkservice.Service) *Handler {
	return &Handler{svc: svc}
}

// visibilityFor clamps the requested visibility for non-owners, who may
// only ever see public bookmarks.
func visibilityFor(r *http.Request, requested string) string {
	if !isOwner(r) {
		return string(bookmark.VisibilityPublic)
	}
	return requested
}

// GetInfo handles GET /api/v1/info.
func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info := InfoResponse{}
	if isOwner(r) {
		info.GlobalCounter = h.svc.Count(r.Context(), "all")
		info.PrivateCounter = h.svc.Count(r.Context(), "private")
	} else {
		info.GlobalCounter = h.svc.Count(r.Context(), "public")
	}
	writeJSON(w, http.StatusOK, info)
}

// ListLinks handles GET /api/v1/links.
//
// Query parameters: searchterm, searchtags, visibility (all|public|private),
// untaggedonly, offset, limit (a number, or "all" for everything).
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset := 0
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid offset"))
			return
		}
		offset = n
	}

	limit := defaultPageSize
	switch s := q.Get("limit"); {
	case s == "":
	case s == "all":
		limit = 0
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		limit = n
	}

	untagged, _ := strconv.ParseBool(q.Get("untaggedonly"))

	links := h.svc.List(r.Context(), linkservice.ListRequest{
		SearchTerm:   q.Get("searchterm"),
		SearchTags:   q.Get("searchtags"),
		Visibility:   visibilityFor(r, q.Get("visibility")),
		UntaggedOnly: untagged,
		Offset:       offset,
		Limit:        limit,
	})
	writeJSON(w, http.StatusOK, toDTOs(links, isOwner(r)))
}

// GetLink handles GET /api/v1/links/{id}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if b.Private && !isOwner(r) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDTO(b, isOwner(r)))
}

// GetLinkByHash handles GET /api/v1/links/hash/{hash}.
func (h *Handler) GetLinkByHash(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.GetByHash(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, err)
		return
	}
	if b.Private && !isOwner(r) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDTO(b, isOwner(r)))
}

// CreateLink handles POST /api/v1/links.
//
// Posting a URL that already exists does not create a duplicate: the
// existing bookmark is returned with 409.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	if !isOwner(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if req.URL != "" {
		if existing := h.svc.FindByURL(r.Context(), req.URL); existing != nil {
			writeJSON(w, http.StatusConflict, toDTO(existing, true))
			return
		}
	}

	b := bookmark.New()
	applyRequest(b, req)
	if err := h.svc.Create(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(b, true))
}

// UpdateLink handles PUT /api/v1/links/{id}.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	if !isOwner(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	applyRequest(b, req)
	if err := h.svc.Update(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(b, true))
}

// DeleteLink handles DELETE /api/v1/links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if !isOwner(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/v1/tags.
//
// The optional searchtags parameter narrows the counted subset, which
// backs "related tags" pages.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cloud := h.svc.TagCloud(r.Context(), q.Get("searchtags"), visibilityFor(r, q.Get("visibility")))
	if !isOwner(r) {
		kept := cloud[:0]
		for _, tc := range cloud {
			if !strings.HasPrefix(tc.Tag, ".") {
				kept = append(kept, tc)
			}
		}
		cloud = kept
	}
	if cloud == nil {
		cloud = []bookmark.TagCount{}
	}
	writeJSON(w, http.StatusOK, cloud)
}

// RenameTag handles PUT /api/v1/tags/{tag}.
func (h *Handler) RenameTag(w http.ResponseWriter, r *http.Request) {
	if !isOwner(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	var req RenameTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("new tag name is required"))
		return
	}
	altered, err := h.svc.RenameTag(r.Context(), chi.URLParam(r, "tag"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(altered),
		"links": toDTOs(altered, true),
	})
}

// DeleteTag handles DELETE /api/v1/tags/{tag}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if !isOwner(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	altered, err := h.svc.DeleteTag(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(altered)})
}

// GetDaily handles GET /api/v1/daily?day=YYYYMMDD.
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'day' is required"))
		return
	}
	links, err := h.svc.Daily(r.Context(), day, visibilityFor(r, r.URL.Query().Get("visibility")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(links, isOwner(r)))
}

// ListDays handles GET /api/v1/days.
func (h *Handler) ListDays(w http.ResponseWriter, r *http.Request) {
	days := h.svc.Days(r.Context(), visibilityFor(r, "all"))
	writeJSON(w, http.StatusOK, days)
}

// GetHistory handles GET /api/v1/history. Owner only.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if !isOwner(r) {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		limit = n
	}
	events, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// applyRequest copies the writable fields of a link request onto a bookmark.
func applyRequest(b *bookmark.Bookmark, req LinkRequest) {
	b.URL = req.URL
	b.Title = req.Title
	b.Description = req.Description
	b.Private = req.Private
	b.Sticky = req.Sticky
	if req.Tags == nil {
		b.Tags = []string{}
	} else {
		b.Tags = bookmark.UniqueTags(req.Tags)
	}
}
