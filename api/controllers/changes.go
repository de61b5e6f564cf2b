package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/comptoir-backend/api/responses"
	pkgerrors "github.com/angelmondragon/comptoir-backend/pkg/errors"
	"github.com/angelmondragon/comptoir-backend/pkg/logger"
	"github.com/angelmondragon/comptoir-backend/pkg/store"
)

const changeKeepAlive = 25 * time.Second

// StreamChanges pushes store changes to the client as server-sent events so
// open screens can refresh. ?collections=tables,articles narrows the stream.
func StreamChanges(feed store.Feed, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}
		filter, err := collectionFilter(r.URL.Query().Get("collections"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		changes, err := feed.Subscribe(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "change feed unavailable"))
			return
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ticker := time.NewTicker(changeKeepAlive)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case change, open := <-changes:
				if !open {
					return
				}
				if len(filter) > 0 && !filter[change.Collection] {
					continue
				}
				payload, err := json.Marshal(change)
				if err != nil {
					logg.Error(r.Context(), "changes.encode_failed", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func collectionFilter(raw string) (map[store.Name]bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	filter := map[store.Name]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, err := store.ParseName(part)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown collection")
		}
		filter[name] = true
	}
	return filter, nil
}
