package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tahp/LinkManager/internal/httpserver/deps"
	"github.com/tahp/LinkManager/internal/logger"
	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/query"
	"github.com/tahp/LinkManager/internal/reminder"
)

// linkView is a link enriched for display.
type linkView struct {
	model.Link
	Reminder           reminder.Info `json:"reminder"`
	CreatedDisplay     string        `json:"created_display"`
	LastVisitedDisplay string        `json:"last_visited_display"`
}

type pageResponse struct {
	Items      []linkView `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

func newLinkView(d deps.Deps, l model.Link) linkView {
	return linkView{
		Link:               l,
		Reminder:           reminder.StatusAt(l.ReminderTimestamp, d.Now()),
		CreatedDisplay:     d.Settings.FormatTimestamp(l.CreatedTimestamp),
		LastVisitedDisplay: d.Settings.FormatTimestamp(l.LastVisitedTimestamp),
	}
}

type createLinkRequest struct {
	URL               string `json:"url"`
	Title             string `json:"title"`
	Notes             string `json:"notes"`
	IsDefault         bool   `json:"is_default"`
	ReminderTimestamp int64  `json:"reminder_timestamp"`
}

// ListLinks serves one page of links. Query parameters: q (substring),
// query (field:value tokens), sort_by, sort_order, page.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()

		req := query.Request{
			Search: params.Get("q"),
			Query:  params.Get("query"),
			Sort:   string(query.DefaultSort),
			Order:  params.Get("sort_order"),
			Page:   1,
		}
		if params.Has("sort_by") {
			req.Sort = params.Get("sort_by")
		}
		if raw := params.Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, d.Logger, model.NewValidationError("page", "must be an integer"))
				return
			}
			req.Page = n
		}

		all, err := d.Links.ListAll(r.Context())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		page, err := query.Select(all, req, d.Settings.PageSize())
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		items := make([]linkView, len(page.Items))
		for i, l := range page.Items {
			items[i] = newLinkView(d, l)
		}
		writeJSON(w, http.StatusOK, pageResponse{
			Items:      items,
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			SortBy:     req.Sort,
			SortOrder:  string(query.ParseOrder(req.Order)),
		})
	}
}

func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createLinkRequest
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		link, err := d.Links.Add(r.Context(), model.NewLink{
			URL:               body.URL,
			Title:             body.Title,
			Notes:             body.Notes,
			IsDefault:         body.IsDefault,
			ReminderTimestamp: body.ReminderTimestamp,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.Header().Set("Location", "/api/links/"+link.ID)
		writeJSON(w, http.StatusCreated, newLinkView(d, link))
	}
}

func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := d.Links.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newLinkView(d, link))
	}
}

// UpdateLink applies a partial update. Only url, title, notes, is_default
// and reminder_timestamp may be sent.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u model.LinkUpdate
		if err := decodeJSON(w, r, &u); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if u.Empty() {
			writeError(w, d.Logger, model.NewValidationError("body", "no updatable fields supplied"))
			return
		}

		link, err := d.Links.Update(r.Context(), chi.URLParam(r, "id"), u)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newLinkView(d, link))
	}
}

func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Links.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RecordVisit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, err := d.Links.RecordVisit(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newLinkView(d, link))
	}
}

// VisitRedirect records a visit and redirects the browser to the link.
func VisitRedirect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		link, err := d.Links.RecordVisit(r.Context(), id)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Debug("visit redirect", logger.String("id", id), logger.String("url", link.URL))
		http.Redirect(w, r, link.URL, http.StatusFound)
	}
}
