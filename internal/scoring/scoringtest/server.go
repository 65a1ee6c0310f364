// Package scoringtest provides an in-process scoring service for tests.
package scoringtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reply scripts the answer to one guess. Wait, when set, holds the response
// until the channel is closed; Delay is applied after that.
type Reply struct {
	Status int
	Body   string
	Delay  time.Duration
	Wait   <-chan struct{}
}

type ScoreFunc func(guess string) Reply

// Fixed answers every guess with the same score.
func Fixed(score float64) ScoreFunc {
	return func(string) Reply { return ScoreReply(score) }
}

func ScoreReply(score float64) Reply {
	return Reply{Status: http.StatusOK, Body: `{"score":` + strconv.FormatFloat(score, 'f', -1, 64) + `}`}
}

type Request struct {
	Guess       string
	ContentType string
	RawBody     string
}

type Server struct {
	*httptest.Server

	score       ScoreFunc
	startStatus int

	mu       sync.Mutex
	requests []Request
	starts   int
}

func NewServer(t testing.TB, score ScoreFunc) *Server {
	t.Helper()
	s := &Server{score: score, startStatus: http.StatusOK}

	r := chi.NewRouter()
	r.Post("/process_guess", s.handleGuess)
	r.Post("/start_game", s.handleStart)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) SetStartStatus(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startStatus = code
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) Guesses() []string {
	reqs := s.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Guess
	}
	return out
}

func (s *Server) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"error":"read"}`, http.StatusBadRequest)
		return
	}
	var body struct {
		Guess string `json:"guess"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		http.Error(w, `{"error":"bad json"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Guess:       body.Guess,
		ContentType: r.Header.Get("Content-Type"),
		RawBody:     string(raw),
	})
	s.mu.Unlock()

	reply := s.score(body.Guess)
	if reply.Wait != nil {
		select {
		case <-reply.Wait:
		case <-r.Context().Done():
			return
		}
	}
	if reply.Delay > 0 {
		time.Sleep(reply.Delay)
	}
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = w.Write([]byte(reply.Body))
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.starts++
	code := s.startStatus
	s.mu.Unlock()

	w.WriteHeader(code)
}
