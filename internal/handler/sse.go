package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
	"github.com/google/uuid"
)

// serveEvents streams a hub subscription as server-sent events until the
// hub drops it or the client goes away.
func serveEvents(
	w http.ResponseWriter,
	r *http.Request,
	subscribe func(subscriberID string) (*service.Subscriber, error),
	unsubscribe func(subscriberID string),
) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	subscriberID := uuid.NewString()
	sub, err := subscribe(subscriberID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer unsubscribe(subscriberID)

	// the stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()
		case <-sub.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
