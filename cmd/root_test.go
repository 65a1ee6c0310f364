package cmd

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trknhr/semantle/internal/guess"
	"github.com/trknhr/semantle/internal/scoring/scoringtest"
)

func setupEnv(t *testing.T, srv *scoringtest.Server) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SEMANTLE_SERVER_URL", srv.URL)
	t.Setenv("SEMANTLE_LOG_FILE", filepath.Join(dir, "semantle.log"))
	t.Setenv("SEMANTLE_DB_PATH", filepath.Join(dir, "semantle.db"))
	t.Setenv("SEMANTLE_LOG_LEVEL", "none")
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGuessSingleWord(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.42))
	setupEnv(t, srv)

	out, _, err := run(t, "guess", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "Similarity Score: 0.42\n", out)
	assert.Equal(t, []string{"alpha"}, srv.Guesses())
	assert.Zero(t, srv.Starts())
}

func TestGuessSeveralWordsKeepsArgumentOrder(t *testing.T) {
	srv := scoringtest.NewServer(t, func(g string) scoringtest.Reply {
		switch g {
		case "cat":
			return scoringtest.ScoreReply(0.1)
		case "dog":
			return scoringtest.ScoreReply(0.2)
		}
		return scoringtest.ScoreReply(0.3)
	})
	setupEnv(t, srv)

	out, _, err := run(t, "guess", "cat", "dog", "house")
	require.NoError(t, err)
	assert.Equal(t,
		"cat\tSimilarity Score: 0.1\n"+
			"dog\tSimilarity Score: 0.2\n"+
			"house\tSimilarity Score: 0.3\n", out)
	assert.ElementsMatch(t, []string{"cat", "dog", "house"}, srv.Guesses())
}

func TestGuessWithStart(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.5))
	setupEnv(t, srv)

	_, _, err := run(t, "guess", "--start", "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Starts())
}

func TestGuessServerErrorFails(t *testing.T) {
	srv := scoringtest.NewServer(t, func(g string) scoringtest.Reply {
		if g == "bad" {
			return scoringtest.Reply{Status: http.StatusInternalServerError}
		}
		return scoringtest.ScoreReply(0.7)
	})
	setupEnv(t, srv)

	out, errOut, err := run(t, "guess", "good", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 guesses failed")
	assert.Equal(t, "good\tSimilarity Score: 0.7\n", out)
	assert.Contains(t, errOut, "bad\terror:")
}

func TestGuessEmptyWordSendsNothing(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.5))
	setupEnv(t, srv)

	_, _, err := run(t, "guess", "alpha", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, guess.ErrEmptyGuess)
	assert.Empty(t, srv.Guesses())
}

func TestGuessServerFlagOverridesEnv(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.25))
	setupEnv(t, srv)
	t.Setenv("SEMANTLE_SERVER_URL", "http://127.0.0.1:1")

	out, _, err := run(t, "--server", srv.URL, "--no-journal", "guess", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "Similarity Score: 0.25\n", out)
}

func TestInvalidLogLevelRejected(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.25))
	setupEnv(t, srv)

	_, _, err := run(t, "--log-level", "loud", "guess", "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Empty(t, srv.Guesses())
}

func TestStartCommand(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0))
	setupEnv(t, srv)

	out, _, err := run(t, "start")
	require.NoError(t, err)
	assert.Equal(t, "Game started successfully!\n", out)
	assert.Equal(t, 1, srv.Starts())

	srv.SetStartStatus(http.StatusServiceUnavailable)
	_, _, err = run(t, "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start game")
}

func TestHistoryListsJournaledGuesses(t *testing.T) {
	srv := scoringtest.NewServer(t, func(g string) scoringtest.Reply {
		if g == "broken" {
			return scoringtest.Reply{Status: http.StatusBadGateway}
		}
		return scoringtest.ScoreReply(0.33)
	})
	setupEnv(t, srv)

	_, _, err := run(t, "guess", "alpha")
	require.NoError(t, err)
	_, _, err = run(t, "guess", "broken")
	require.Error(t, err)

	out, _, err := run(t, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "GUESS")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "0.33")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "failed")
}

func TestHistoryEmptyAndDisabled(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0))
	setupEnv(t, srv)

	out, _, err := run(t, "history")
	require.NoError(t, err)
	assert.Equal(t, "no guesses recorded yet\n", out)

	_, _, err = run(t, "--no-journal", "history")
	assert.ErrorIs(t, err, errJournalDisabled)

	_, _, err = run(t, "history", "--limit", "0")
	assert.Error(t, err)
}

func TestHistoryRecordsBatchGuessesAsApplied(t *testing.T) {
	srv := scoringtest.NewServer(t, scoringtest.Fixed(0.5))
	setupEnv(t, srv)

	out, _, err := run(t, "guess", "cat", "dog")
	require.NoError(t, err)
	assert.Contains(t, out, "cat\tSimilarity Score: 0.5")

	out, _, err = run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "cat")
	assert.Contains(t, out, "dog")
	assert.Equal(t, 2, strings.Count(out, "applied"))
	assert.NotContains(t, out, "stale")
}
