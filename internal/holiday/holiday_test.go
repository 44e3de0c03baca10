package holiday

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planer/internal/storage"
)

const feedBody = `[
	{"date": "2025-01-01", "localName": "Nowy Rok", "name": "New Year's Day", "types": ["Public"]},
	{"date": "2025-05-01", "localName": "Święto Pracy", "name": "Labour Day", "types": []},
	{"date": "2025-12-25", "localName": "Boże Narodzenie", "name": "Christmas Day", "types": ["Public", "Bank"]}
]`

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "planer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PublicHolidays/2025/PL", r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := feedServer(t, http.StatusOK, feedBody)
	client := NewClient(WithBaseURL(srv.URL))

	holidays, err := client.Fetch(context.Background(), 2025, "PL")
	require.NoError(t, err)
	require.Len(t, holidays, 3)
	assert.Equal(t, "Nowy Rok", holidays[0].LocalName)
	assert.Equal(t, "2025-01-01", holidays[0].Date)
}

func TestFetchNon200(t *testing.T) {
	srv := feedServer(t, http.StatusServiceUnavailable, "")
	client := NewClient(WithBaseURL(srv.URL))

	_, err := client.Fetch(context.Background(), 2025, "PL")
	assert.Error(t, err)
}

func TestFetchBadJSON(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "{not json")
	client := NewClient(WithBaseURL(srv.URL))

	_, err := client.Fetch(context.Background(), 2025, "PL")
	assert.Error(t, err)
}

func TestHolidayTypeFallback(t *testing.T) {
	assert.Equal(t, "Public", Holiday{Types: []string{"Public", "Bank"}}.Type())
	assert.Equal(t, FallbackType, Holiday{}.Type())
}

func TestIngest(t *testing.T) {
	srv := feedServer(t, http.StatusOK, feedBody)
	client := NewClient(WithBaseURL(srv.URL))
	store := openTestStore(t)

	require.NoError(t, Ingest(context.Background(), store, client, 2025, "PL"))

	reminders, err := store.UpcomingReminders("2025-01-01", 10)
	require.NoError(t, err)
	require.Len(t, reminders, 3)
	assert.Equal(t, "Nowy Rok", reminders[0].Name)
	assert.Equal(t, "Public", reminders[0].Type)
	assert.Equal(t, FallbackType, reminders[1].Type, "empty types falls back")

	// A second run must not duplicate rows.
	require.NoError(t, Ingest(context.Background(), store, client, 2025, "PL"))
	reminders, err = store.UpcomingReminders("2025-01-01", 10)
	require.NoError(t, err)
	assert.Len(t, reminders, 3)
}

func TestIngestFailureLeavesRemindersIntact(t *testing.T) {
	store := openTestStore(t)
	_, err := store.InsertReminderIfAbsent("Existing", "2025-07-01", "Holiday")
	require.NoError(t, err)

	srv := feedServer(t, http.StatusInternalServerError, "")
	client := NewClient(WithBaseURL(srv.URL))

	err = Ingest(context.Background(), store, client, 2025, "PL")
	assert.Error(t, err)

	reminders, err := store.UpcomingReminders("2025-01-01", 10)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "Existing", reminders[0].Name)
}
