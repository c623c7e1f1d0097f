package content

import (
	"errors"
	"net/http"
	"strconv"

	"sharehub/core"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// HandleGet serves the raw bytes behind a file item's content id. The
// socket transport only ever carries file metadata; clients download the
// payload here.
func HandleGet(store core.ContentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Content id is required"})
			return
		}

		if store == nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "No content store configured"})
			return
		}

		data, err := store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrContentNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, map[string]string{"error": "Content not found"})
				return
			}
			logrus.WithField("content_id", id).WithError(err).Error("Failed to retrieve content")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to retrieve content"})
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if _, err := w.Write(data); err != nil {
			logrus.WithField("content_id", id).WithError(err).Warn("Failed to write content response")
		}
	}
}
