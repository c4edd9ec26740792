// Package webui serves a small HTTP view of the last numbering run: a JSON
// summary endpoint and a static HTML page showing owned/shared counts per
// rank and per sharer, grounded on the teacher's internal/webui package.
package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/scheduler"
	"github.com/meshnum/pkg/utils"
)

// SharerEntry is one peer rank's visible share of a rank's owned nodes.
type SharerEntry struct {
	Peer            int   `json:"peer"`
	SharedMineCount int32 `json:"sharedMineCount"`
}

// RankSummary is one rank's ownership and sharer counts.
type RankSummary struct {
	Rank     int           `json:"rank"`
	NumOwned int32         `json:"numOwned"`
	Sharers  []SharerEntry `json:"sharers"`
}

// Summary is the JSON view of a finished run.
type Summary struct {
	WorldSize int           `json:"worldSize"`
	Ranks     []RankSummary `json:"ranks"`
}

// BuildSummary derives a Summary from a scheduler run's per-rank results.
func BuildSummary(results []scheduler.RankResult) Summary {
	s := Summary{WorldSize: len(results), Ranks: make([]RankSummary, 0, len(results))}

	for _, r := range results {
		rs := RankSummary{Rank: r.Rank, NumOwned: r.Finalize.NumOwned}
		for peer, sharer := range r.Finalize.Sharers {
			if peer == finalize.LocalRankKey || sharer.SharedMineCount == 0 {
				continue
			}
			rs.Sharers = append(rs.Sharers, SharerEntry{Peer: peer, SharedMineCount: sharer.SharedMineCount})
		}
		sort.Slice(rs.Sharers, func(i, j int) bool { return rs.Sharers[i].Peer < rs.Sharers[j].Peer })
		s.Ranks = append(s.Ranks, rs)
	}
	sort.Slice(s.Ranks, func(i, j int) bool { return s.Ranks[i].Rank < s.Ranks[j].Rank })

	return s
}

// Server is a minimal HTTP view of a run's ownership/sharer summary.
type Server struct {
	mu      sync.RWMutex
	summary Summary

	port   int
	logger utils.Logger
	server *http.Server
}

// NewServer creates a Server listening on port. SetResults must be called
// at least once before Start for /api/summary to report anything.
func NewServer(port int, logger utils.Logger) *Server {
	return &Server{port: port, logger: logger}
}

// SetResults replaces the summary the server reports.
func (s *Server) SetResults(results []scheduler.RankResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = BuildSummary(results)
}

// Start runs the HTTP server until it is shut down or fails to bind.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/", s.handleIndex)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("starting web server at http://localhost:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	summary := s.summary
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		s.logger.Error("encoding summary response: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	summary := s.summary
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, summary); err != nil {
		s.logger.Error("rendering index page: %v", err)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>meshnum run summary</title></head>
<body>
<h1>meshnum run summary ({{.WorldSize}} ranks)</h1>
<table border="1" cellpadding="4">
<tr><th>rank</th><th>owned</th><th>sharers</th></tr>
{{range .Ranks}}
<tr>
  <td>{{.Rank}}</td>
  <td>{{.NumOwned}}</td>
  <td>{{range .Sharers}}peer {{.Peer}}: {{.SharedMineCount}}&nbsp;&nbsp;{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
