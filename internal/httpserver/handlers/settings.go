package handlers

import (
	"net/http"

	"github.com/tahp/LinkManager/internal/httpserver/deps"
	"github.com/tahp/LinkManager/internal/settings"
)

type settingsResponse struct {
	settings.Settings
	ActiveDateFormat string `json:"active_date_format"`
}

func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, settingsResponse{
			Settings:         d.Settings.Get(),
			ActiveDateFormat: d.Settings.ActiveDateFormat(),
		})
	}
}

func UpdateSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u settings.Update
		if err := decodeJSON(w, r, &u); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := d.Settings.Apply(r.Context(), u); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, settingsResponse{
			Settings:         d.Settings.Get(),
			ActiveDateFormat: d.Settings.ActiveDateFormat(),
		})
	}
}
