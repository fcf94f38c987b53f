package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out, io.Discard)
	return out.String(), err
}

func TestRun_OfflineDaily(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.yaml")

	out, err := runCLI(t, "-offline", "-state", statePath, "-date", "2024-01-01", "-user", "user-123")
	require.NoError(t, err)
	assert.Contains(t, out, "Ace of Swords (reversed)")
	assert.Contains(t, out, "/images/tarot/decks/rider-waite/minor/swords/ace-of-swords.png")
	assert.Contains(t, out, "(computed locally)")
}

func TestRun_RemoteDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"card":{"id":"magician","name":"The Magician","arcana":"major",
			"meaningUpright":"Manifestation","meaningReversed":"Manipulation"},
			"isReversed":false,"timestamp":"2024-01-01T00:00:00Z"}`)
	}))
	defer srv.Close()

	out, err := runCLI(t, "-server", srv.URL, "-state", filepath.Join(t.TempDir(), "s.yaml"), "-date", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "The Magician (upright)")
	assert.Contains(t, out, "Manifestation")
	assert.NotContains(t, out, "computed locally")
}

func TestRun_Draw(t *testing.T) {
	out, err := runCLI(t, "-draw", "3", "-state", filepath.Join(t.TempDir(), "s.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "/images/tarot/decks/rider-waite/"))

	_, err = runCLI(t, "-draw", "11", "-state", filepath.Join(t.TempDir(), "s.yaml"))
	require.Error(t, err)
}

func TestRun_DeckIsRemembered(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "state.yaml")

	_, err := runCLI(t, "-offline", "-state", statePath, "-deck", "rider-waite")
	require.NoError(t, err)

	st, err := loadState(statePath)
	require.NoError(t, err)
	assert.Equal(t, "rider-waite", st.Deck)

	_, err = runCLI(t, "-offline", "-state", statePath, "-deck", "no-such-deck")
	require.Error(t, err)

	st, err = loadState(statePath)
	require.NoError(t, err)
	assert.Equal(t, "rider-waite", st.Deck, "invalid deck is not persisted")
}

func TestRun_StaleStateFallsBackToDefault(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, saveState(statePath, state{Deck: "retired-deck"}))

	out, err := runCLI(t, "-offline", "-state", statePath, "-date", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "/images/tarot/decks/rider-waite/major/magician.png")
}

func TestRun_BadDate(t *testing.T) {
	_, err := runCLI(t, "-offline", "-state", filepath.Join(t.TempDir(), "s.yaml"), "-date", "tomorrow")
	require.Error(t, err)
}
