package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"church-site/backend/internal/docstore"
	"church-site/backend/internal/httpjson"
)

const heartbeatInterval = 25 * time.Second

// StreamCollection serves a live collection view over Server-Sent Events.
// Each request gets its own listener, torn down when the client disconnects.
// Every backend snapshot is pushed as one "snapshot" event carrying the full
// decoded result set.
func StreamCollection[T any](newWatch func() *docstore.CollectionWatch[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			httpjson.Error(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		updates := make(chan []T, 1)
		watch := newWatch()
		watch.OnData(func(recs []T) {
			// A slow client only ever sees the freshest snapshot.
			for {
				select {
				case updates <- recs:
					return
				default:
					select {
					case <-updates:
					default:
					}
				}
			}
		})
		watch.Start(r.Context())
		defer watch.Stop()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case recs := <-updates:
				payload, err := json.Marshal(recs)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
				flusher.Flush()
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
