package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/VoxDroid/nycschools/internal/config"
	"github.com/VoxDroid/nycschools/internal/db"
	"github.com/VoxDroid/nycschools/internal/store"
)

const schoolsJSON = `[
 {"dbn":"01M292","school_name":"Orchard Collegiate Academy","boro":"M","borough":"MANHATTAN ",
  "neighborhood":"Chinatown","primary_address_line_1":"220 Henry Street","city":"Manhattan","zip":"10002",
  "phone_number":"212-406-9411","school_email":"admissions@ocacademy.org","website":"www.ocacademy.org",
  "overview_paragraph":"Small school.\nBig ideas.","total_students":"376","graduation_rate":"0.669999",
  "attendance_rate":"0.87"},
 {"dbn":"31R080","school_name":"The Michael J. Petrides School","borough":"STATEN IS",
  "neighborhood":"Sunnyside","total_students":"1260","graduation_rate":"0.925"},
 {"dbn":"","school_name":"No Key"}
]`

const satJSON = `[
 {"dbn":"01M292","school_name":"ORCHARD","num_of_sat_test_takers":"29","sat_critical_reading_avg_score":"355",
  "sat_math_avg_score":"404","sat_writing_avg_score":"363"},
 {"dbn":"31R080","num_of_sat_test_takers":"s","sat_critical_reading_avg_score":"s",
  "sat_math_avg_score":"s","sat_writing_avg_score":"s"},
 {"dbn":"99X999","num_of_sat_test_takers":"10"}
]`

func setupRepo(t *testing.T) *store.Repository {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "fetch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return store.NewRepository(conn)
}

// newServer serves the two datasets; satStatus other than 200 fails SAT.
func newServer(t *testing.T, satStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/schools.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(schoolsJSON))
	})
	mux.HandleFunc("/sat.json", func(w http.ResponseWriter, r *http.Request) {
		if satStatus != http.StatusOK {
			http.Error(w, "upstream unavailable", satStatus)
			return
		}
		_, _ = w.Write([]byte(satJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) OnDataChanged() { c.n.Add(1) }

func TestFetchStoresBothDatasets(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	srv := newServer(t, http.StatusOK)
	notes := &countingNotifier{}
	f := New(repo, config.Sources{Schools: srv.URL + "/schools.json", SAT: srv.URL + "/sat.json"},
		WithNotifier(notes), WithLogger(zaptest.NewLogger(t)))

	res, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.FetchOK, res.Status)
	assert.Equal(t, 2, res.Schools)
	assert.Equal(t, 2, res.SATScores)
	assert.Equal(t, 1, res.Skipped)
	assert.NotEmpty(t, res.ID)
	assert.EqualValues(t, 1, notes.n.Load())

	s, err := repo.GetSchool(ctx, "01M292")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Manhattan", s.Borough)
	assert.Equal(t, "Small school. Big ideas.", s.Overview)
	assert.Equal(t, 376, s.TotalStudents)
	require.NotNil(t, s.SAT)
	assert.Equal(t, 404, s.SAT.MathAvg)

	s, err = repo.GetSchool(ctx, "31R080")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Staten Island", s.Borough)
	require.NotNil(t, s.SAT)
	assert.Zero(t, s.SAT.TestTakers)

	last, err := repo.LastFetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, store.FetchOK, last.Status)
	assert.Equal(t, 2, last.Schools)
}

func TestFetchPartialWhenSATFails(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	srv := newServer(t, http.StatusServiceUnavailable)
	notes := &countingNotifier{}
	f := New(repo, config.Sources{Schools: srv.URL + "/schools.json", SAT: srv.URL + "/sat.json"}, WithNotifier(notes))

	res, err := f.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.FetchPartial, res.Status)
	assert.Equal(t, 2, res.Schools)
	assert.Zero(t, res.SATScores)
	var se *StatusError
	require.ErrorAs(t, res.SATErr, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "upstream unavailable", se.Body)
	assert.EqualValues(t, 1, notes.n.Load())

	last, err := repo.LastFetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, store.FetchPartial, last.Status)
	assert.Contains(t, last.Error, "503")
}

func TestFetchFailureDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	srv := newServer(t, http.StatusOK)
	notes := &countingNotifier{}
	f := New(repo, config.Sources{Schools: srv.URL + "/missing.json", SAT: srv.URL + "/sat.json"}, WithNotifier(notes))

	_, err := f.Fetch(ctx)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Zero(t, notes.n.Load())

	n, err := repo.CountSchools(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	last, err := repo.LastFetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, store.FetchFailed, last.Status)
}

func TestFetchMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "schools.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"not":"an array"}`), 0o600))
	f := New(setupRepo(t), config.Sources{Schools: p})

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode schools")
}

func TestFetchFromFiles(t *testing.T) {
	dir := t.TempDir()
	sp := filepath.Join(dir, "schools.json")
	tp := filepath.Join(dir, "sat.json")
	require.NoError(t, os.WriteFile(sp, []byte(schoolsJSON), 0o600))
	require.NoError(t, os.WriteFile(tp, []byte(satJSON), 0o600))

	called := false
	f := New(setupRepo(t), config.Sources{Schools: sp, SAT: tp}, WithNotifier(NotifyFunc(func() { called = true })))
	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Schools)
	assert.True(t, called)
}

func TestFetchWithoutSources(t *testing.T) {
	f := New(setupRepo(t), config.Sources{})
	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestFetchCanceled(t *testing.T) {
	repo := setupRepo(t)
	srv := newServer(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := New(repo, config.Sources{Schools: srv.URL + "/schools.json"})
	_, err := f.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)

	last, err := repo.LastFetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, store.FetchFailed, last.Status)
}

func TestBorough(t *testing.T) {
	cases := []struct{ code, name, want string }{
		{"X", "", "Bronx"},
		{"k", "whatever", "Brooklyn"},
		{"", "STATEN IS", "Staten Island"},
		{"", " staten   is ", "Staten Island"},
		{"", "QUEENS", "Queens"},
		{"", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Borough(c.code, c.name), "Borough(%q, %q)", c.code, c.name)
	}
}

func TestDecodeStripsEscapes(t *testing.T) {
	in := `[{"dbn":"01m001","school_name":"\u001b[31mRed\u001b[0m School"}]`
	got, skipped, err := DecodeSchools(strings.NewReader(in))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, got, 1)
	assert.Equal(t, "01M001", got[0].DBN)
	assert.Equal(t, "Red School", got[0].Name)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/x.json"))
	assert.True(t, IsRemote("HTTP://example.com"))
	assert.False(t, IsRemote("/tmp/x.json"))
	assert.False(t, IsRemote("~/x.json"))
}
