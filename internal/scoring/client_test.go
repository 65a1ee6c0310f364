package scoring_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trknhr/semantle/internal/config"
	"github.com/trknhr/semantle/internal/scoring"
	"github.com/trknhr/semantle/internal/scoring/scoringtest"
)

func newClient(baseURL string) *scoring.HTTPClient {
	return scoring.NewHTTPClient(config.Server{
		BaseURL:   baseURL,
		GuessPath: "/process_guess",
		StartPath: "/start_game",
		Timeout:   2 * time.Second,
	})
}

func TestHTTPClient_Score(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.42))
	client := newClient(srv.URL)

	resp, err := client.Score(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 0.42, resp.Score)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "alpha", reqs[0].Guess)
	assert.Equal(t, "application/json", reqs[0].ContentType)
	assert.JSONEq(t, `{"guess":"alpha"}`, reqs[0].RawBody)
}

func TestHTTPClient_Score_SendsTextVerbatim(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.1))
	client := newClient(srv.URL)

	inputs := []string{"  Padded ", "UPPER", "naïve", `quote"d`, "<tag>&amp;"}
	for _, in := range inputs {
		_, err := client.Score(context.Background(), in)
		require.NoError(t, err)
	}
	assert.Equal(t, inputs, srv.Guesses())
}

func TestHTTPClient_Score_NonSuccessStatus(t *testing.T) {
	srv := scoringtest.NewServer(t, func(string) scoringtest.Reply {
		return scoringtest.Reply{Status: http.StatusInternalServerError, Body: `{"score":0.9}`}
	})
	client := newClient(srv.URL)

	resp, err := client.Score(context.Background(), "alpha")
	assert.Nil(t, resp)
	require.ErrorIs(t, err, scoring.ErrStatus)

	var statusErr *scoring.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "status", scoring.Kind(err))
}

func TestHTTPClient_Score_Malformed(t *testing.T) {
	bodies := map[string]string{
		"missing score": `{"similarity":0.4}`,
		"null score":    `{"score":null}`,
		"string score":  `{"score":"0.4"}`,
		"not json":      `<html>oops</html>`,
		"empty body":    ``,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := scoringtest.NewServer(t, func(string) scoringtest.Reply {
				return scoringtest.Reply{Status: http.StatusOK, Body: body}
			})
			client := newClient(srv.URL)

			resp, err := client.Score(context.Background(), "alpha")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, scoring.ErrMalformed)
			assert.Equal(t, "malformed", scoring.Kind(err))
		})
	}
}

func TestHTTPClient_Score_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := newClient(url)
	_, err := client.Score(context.Background(), "alpha")
	assert.ErrorIs(t, err, scoring.ErrTransport)
	assert.Equal(t, "transport", scoring.Kind(err))
}

func TestHTTPClient_Score_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	srv := scoringtest.NewServer(t, func(string) scoringtest.Reply {
		return scoringtest.Reply{Wait: release}
	})
	client := newClient(srv.URL)
	client.Timeout = 50 * time.Millisecond

	_, err := client.Score(context.Background(), "alpha")
	assert.ErrorIs(t, err, scoring.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_StartGame(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0))
	client := newClient(srv.URL)

	require.NoError(t, client.StartGame(context.Background()))
	assert.Equal(t, 1, srv.Starts())

	srv.SetStartStatus(http.StatusServiceUnavailable)
	err := client.StartGame(context.Background())
	assert.ErrorIs(t, err, scoring.ErrStatus)
	assert.Equal(t, 2, srv.Starts())
}
