// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/goleak"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/llm"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metadata"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

// The genai SDK links opencensus, whose view worker starts at package init
// and never exits.
var leakIgnores = []goleak.Option{
	goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
}

func verifyNoLeaks(t *testing.T) {
	t.Helper()
	goleak.VerifyNone(t, leakIgnores...)
}

var (
	countPattern = regexp.MustCompile(`Generate exactly (\d+) title`)
	titlePattern = regexp.MustCompile(`Title: "(.*)"`)
)

// fakeModel answers ideation calls from a script and enrichment calls with
// a well-formed document for the requested title.
type fakeModel struct {
	mu sync.Mutex

	// ideations is consumed in order; once exhausted every call fails.
	ideations []ideationReply
	counts    []int
	prompts   []string

	// enrich overrides the default enrichment reply.
	enrich func(title string) (string, error)

	enrichCalls atomic.Int32
}

type ideationReply struct {
	raw string
	err error
}

func ideationJSON(label string, titles ...string) ideationReply {
	b, _ := json.Marshal(map[string]any{
		"mood_label":       label,
		"mood_tags":        []string{"cozy", "light"},
		"candidate_titles": append([]string{}, titles...),
	})
	return ideationReply{raw: string(b)}
}

func enrichJSON(title string, ct models.ContentType, score any) string {
	b, _ := json.Marshal(map[string]any{
		"title":             title,
		"tmdb_type":         ct,
		"tmdb_search_query": title,
		"primary_genres":    []string{"Drama"},
		"tone_tags":         []string{"warm", "quiet"},
		"reason":            "You liked slow, warm stories.",
		"match_score":       score,
	})
	return string(b)
}

func (m *fakeModel) Generate(_ context.Context, _, user string, opts llm.Options) (string, error) {
	switch opts.Phase {
	case "candidates":
		m.mu.Lock()
		defer m.mu.Unlock()
		if sm := countPattern.FindStringSubmatch(user); sm != nil {
			n, _ := strconv.Atoi(sm[1])
			m.counts = append(m.counts, n)
		}
		m.prompts = append(m.prompts, user)
		if len(m.ideations) == 0 {
			return "", llm.ErrTransport
		}
		next := m.ideations[0]
		m.ideations = m.ideations[1:]
		return next.raw, next.err
	case "enrich":
		m.enrichCalls.Add(1)
		sm := titlePattern.FindStringSubmatch(user)
		if sm == nil {
			return "", errors.New("no title in prompt")
		}
		if m.enrich != nil {
			return m.enrich(sm[1])
		}
		return enrichJSON(sm[1], models.ContentMovie, 88), nil
	}
	return "", errors.New("unexpected phase " + opts.Phase)
}

func (m *fakeModel) ideationCounts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.counts...)
}

// fakeMeta resolves queries by exact match against ids.
type fakeMeta struct {
	mu        sync.Mutex
	ids       map[string]int64
	names     map[int64]string
	noDetails map[int64]bool
	providers *metadata.WatchProvidersDoc

	searchCalls   atomic.Int32
	detailsCalls  atomic.Int32
	providerCalls atomic.Int32
}

func newFakeMeta(titles ...string) *fakeMeta {
	m := &fakeMeta{ids: map[string]int64{}, names: map[int64]string{}, noDetails: map[int64]bool{}}
	for i, title := range titles {
		m.add(title, int64(100+i))
	}
	return m
}

func (m *fakeMeta) add(query string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[query] = id
	if _, ok := m.names[id]; !ok {
		m.names[id] = query
	}
}

func (m *fakeMeta) SearchOne(_ context.Context, query string, ct models.ContentType) (*metadata.SearchResult, error) {
	m.searchCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.ids[query]
	if !ok {
		return nil, nil
	}
	return &metadata.SearchResult{TMDBID: id, ContentType: ct, Title: m.names[id]}, nil
}

func (m *fakeMeta) Details(_ context.Context, tmdbID int64, ct models.ContentType) (*metadata.Details, error) {
	m.detailsCalls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.noDetails[tmdbID] {
		return nil, nil
	}
	name := m.names[tmdbID]
	imdb := "tt" + strconv.FormatInt(tmdbID, 10)
	runtime := 110
	d := &metadata.Details{
		ID:          tmdbID,
		Title:       &name,
		Name:        &name,
		ReleaseDate: "2019-05-01",
		Runtime:     &runtime,
		PosterPath:  "/p" + strconv.FormatInt(tmdbID, 10) + ".jpg",
		IMDbID:      &imdb,
		Genres:      []metadata.Genre{{ID: 18, Name: "Drama"}},
		Raw:         []byte(`{"id":` + strconv.FormatInt(tmdbID, 10) + `}`),
	}
	d.Credits = &struct {
		Cast []metadata.CastMember `json:"cast"`
		Crew []metadata.CrewMember `json:"crew"`
	}{
		Cast: []metadata.CastMember{{Name: "Lead Actor"}, {Name: "Second Actor"}},
		Crew: []metadata.CrewMember{{Name: "Some Director", Job: "Director"}},
	}
	return d, nil
}

func (m *fakeMeta) WatchProviders(_ context.Context, tmdbID int64, _ models.ContentType) (*metadata.WatchProvidersDoc, error) {
	m.providerCalls.Add(1)
	return m.providers, nil
}

func (m *fakeMeta) ImageBaseURL() string { return "https://image.tmdb.org/t/p" }

func usProviders() *metadata.WatchProvidersDoc {
	link := "https://www.themoviedb.org/watch"
	netflix := int64(8)
	return &metadata.WatchProvidersDoc{Results: map[string]metadata.RegionProviders{
		"US": {Link: &link, Flatrate: []metadata.ProviderEntry{{ProviderID: &netflix, ProviderName: "Netflix", LogoPath: "/n.jpg"}}},
	}}
}

// fakeTitles is an in-memory TitleStore keyed by provider key.
type fakeTitles struct {
	mu      sync.Mutex
	rows    map[string]*models.MediaTitle
	nextID  int
	now     time.Time
	inserts int
	updates int

	// insertErr, when set, fails InsertTitle after storing the row, as a
	// losing concurrent creator would observe.
	insertErr error
}

func newFakeTitles() *fakeTitles {
	return &fakeTitles{rows: map[string]*models.MediaTitle{}, now: testNow}
}

func (f *fakeTitles) GetTitleByExternal(_ context.Context, ct models.ContentType, tmdbID int64) (*models.MediaTitle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[models.ProviderKey(ct, tmdbID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTitles) InsertTitle(_ context.Context, t *models.MediaTitle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if _, ok := f.rows[t.Key()]; ok {
		return store.ErrConflict
	}
	f.nextID++
	row := *t
	row.ID = "title-" + strconv.Itoa(f.nextID)
	row.CreatedAt, row.UpdatedAt = f.now, f.now
	f.rows[row.Key()] = &row
	if f.insertErr != nil {
		return f.insertErr
	}
	*t = row
	return nil
}

func (f *fakeTitles) UpdateTitle(_ context.Context, t *models.MediaTitle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	row := *t
	row.UpdatedAt = f.now
	f.rows[row.Key()] = &row
	*t = row
	return nil
}

func (f *fakeTitles) put(t models.MediaTitle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.Key()] = &t
}

func newTestResolver(meta Metadata, titles TitleStore) *Resolver {
	r := NewResolver(meta, nil, titles, DefaultConfig())
	r.now = func() time.Time { return testNow }
	return r
}

func movieItem(title string) models.CandidateItem {
	return models.CandidateItem{
		Title:       title,
		ContentType: models.ContentMovie,
		SearchQuery: title,
		Reason:      "fits your mood",
		MatchScore:  90,
	}
}

func movieItems(titles ...string) []models.CandidateItem {
	out := make([]models.CandidateItem, len(titles))
	for i, title := range titles {
		out[i] = movieItem(title)
	}
	return out
}

// recordingSink collects stream events.
type recordingSink struct {
	mu      sync.Mutex
	events  []Event
	failAt  int // fail the Send with this 1-based index; zero never fails
	sendErr error
}

func (s *recordingSink) Send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.events)+1 == s.failAt {
		return s.sendErr
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.EventType()
	}
	return out
}

// recordingAvail records availability handed off for persistence.
type recordingAvail struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (a *recordingAvail) Enqueue(_ context.Context, titleID, region string, _ models.WatchProviders) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, titleID+"@"+region)
	return a.err
}

func (a *recordingAvail) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func newMemStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true, Clock: func() time.Time { return testNow }})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}
