package gateway

import (
	"net/http"
	"strconv"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	Endpoint      string           `json:"endpoint"`
	Tools         []string         `json:"tools"`
	Counters      CountersSnapshot `json:"counters"`
}

func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var uptime time.Duration
		if !g.startedAt.IsZero() {
			uptime = time.Since(g.startedAt)
		}
		writeJSON(w, http.StatusOK, StatusResponse{
			UptimeSeconds: int64(uptime / time.Second),
			Endpoint:      g.config.Endpoint,
			Tools:         g.tools(),
			Counters:      g.counters.Snapshot(),
		})
	}
}

// JournalEntry is the JSON form of a journal entry.
type JournalEntry struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Filename  string    `json:"filename"`
	Directory string    `json:"directory"`
	Outcome   string    `json:"outcome"`
	Bytes     int       `json:"bytes"`
}

const (
	defaultJournalLimit = 20
	maxJournalLimit     = 500
)

// handleJournal serves GET /api/journal?n=20, newest first.
func (g *Gateway) handleJournal() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := defaultJournalLimit
		if raw := r.URL.Query().Get("n"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v <= 0 {
				http.Error(w, "n must be a positive integer", http.StatusBadRequest)
				return
			}
			n = min(v, maxJournalLimit)
		}

		entries, err := g.opts.Journal.Recent(r.Context(), n)
		if err != nil {
			g.logger.Error("journal read failed", "error", err)
			http.Error(w, "journal unavailable", http.StatusInternalServerError)
			return
		}
		out := make([]JournalEntry, len(entries))
		for i, e := range entries {
			out[i] = JournalEntry(e)
		}
		writeJSON(w, http.StatusOK, out)
	}
}
