// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	dto "github.com/prometheus/client_model/go"

	"github.com/tomtom215/waypoint/internal/auth"
	"github.com/tomtom215/waypoint/internal/authz"
	"github.com/tomtom215/waypoint/internal/cache"
	"github.com/tomtom215/waypoint/internal/clustering"
	"github.com/tomtom215/waypoint/internal/config"
	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/library"
	"github.com/tomtom215/waypoint/internal/mapsession"
	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/snapshot"
	"github.com/tomtom215/waypoint/internal/sources"
	ws "github.com/tomtom215/waypoint/internal/websocket"
)

// ---- fakes ----

type fakeCollection struct {
	owner string
	name  string
	items []string
}

type fakeLibrary struct {
	mu          sync.Mutex
	items       map[string]models.MapMarkerCandidate
	likes       map[string][]string
	collections map[string]*fakeCollection
	nextID      int
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		items:       make(map[string]models.MapMarkerCandidate),
		likes:       make(map[string][]string),
		collections: make(map[string]*fakeCollection),
	}
}

func (f *fakeLibrary) Ping(context.Context) error { return nil }

func (f *fakeLibrary) UpsertItem(_ context.Context, c *models.MapMarkerCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[c.ID] = *c
	return nil
}

func (f *fakeLibrary) Like(_ context.Context, userID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[itemID]; !ok {
		return library.ErrNotFound
	}
	f.likes[userID] = append([]string{itemID}, f.likes[userID]...)
	return nil
}

func (f *fakeLibrary) Unlike(_ context.Context, userID, itemID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.likes[userID]
	for i, id := range ids {
		if id == itemID {
			f.likes[userID] = append(ids[:i], ids[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLibrary) LikedItems(_ context.Context, userID string, offset, limit int) ([]models.MapMarkerCandidate, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.likes[userID]
	out := []models.MapMarkerCandidate{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, f.items[ids[i]])
	}
	return out, offset+len(out) < len(ids), nil
}

func (f *fakeLibrary) CreateCollection(_ context.Context, userID, name string) (models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("col-%d", f.nextID)
	f.collections[id] = &fakeCollection{owner: userID, name: name}
	return models.Collection{ID: id, UserID: userID, Name: name, Items: []models.MapMarkerCandidate{}}, nil
}

func (f *fakeLibrary) Collections(_ context.Context, userID string) ([]models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Collection
	for id, c := range f.collections {
		if c.owner != userID {
			continue
		}
		col := models.Collection{ID: id, UserID: c.owner, Name: c.name, Items: []models.MapMarkerCandidate{}}
		for _, itemID := range c.items {
			col.Items = append(col.Items, f.items[itemID])
		}
		out = append(out, col)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLibrary) CollectionOwner(_ context.Context, collectionID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[collectionID]
	if !ok {
		return "", library.ErrNotFound
	}
	return c.owner, nil
}

func (f *fakeLibrary) AddToCollection(_ context.Context, collectionID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[collectionID]
	if !ok {
		return library.ErrNotFound
	}
	if _, ok := f.items[itemID]; !ok {
		return library.ErrNotFound
	}
	c.items = append(c.items, itemID)
	return nil
}

func (f *fakeLibrary) liked(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.likes[userID]...)
}

type memorySnapshots struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: make(map[string][]byte)}
}

func (m *memorySnapshots) Put(_ context.Context, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = append([]byte(nil), data...)
	return nil
}

func (m *memorySnapshots) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[id]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return d, nil
}

func (m *memorySnapshots) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return snapshot.ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *memorySnapshots) Ping(context.Context) error { return nil }

func (m *memorySnapshots) Close() error { return nil }

type recordingPublisher struct {
	mu   sync.Mutex
	invs []events.Invalidation
}

func (p *recordingPublisher) Publish(_ context.Context, invs ...events.Invalidation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invs = append(p.invs, invs...)
	return nil
}

func (p *recordingPublisher) reasons() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.invs))
	for _, inv := range p.invs {
		out = append(out, string(inv.Source)+":"+inv.Query+":"+inv.Reason)
	}
	return out
}

type staticStrategy struct {
	items []models.MapMarkerCandidate
}

func (s *staticStrategy) Kind() sources.Kind { return sources.KindContent }

func (s *staticStrategy) Enabled(sources.Request) error { return nil }

func (s *staticStrategy) FetchPage(context.Context, sources.Request, int) (sources.Page, error) {
	return sources.Page{Items: s.items}, nil
}

// ---- harness ----

func cand(id string, lat, lng float64) models.MapMarkerCandidate {
	return models.MapMarkerCandidate{ID: id, Title: id, Latitude: models.Float(lat), Longitude: models.Float(lng)}
}

func testCandidates() []models.MapMarkerCandidate {
	return []models.MapMarkerCandidate{
		cand("a", 51.5000, -0.1200),
		cand("b", 51.5005, -0.1205),
		cand("c", 52.5000, -0.1200),
		{ID: "d", Title: "no coordinates"},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{DefaultPageSize: 20, MaxPageSize: 100, MaxPages: 5},
		Clustering: config.ClusteringConfig{
			BaseDistance:     0.005,
			DisableThreshold: 0.02,
			Cohesion:         0.7,
			MinZoomFactor:    0.001,
		},
		Snapshots: config.SnapshotConfig{MaxBytes: 256},
		Security: config.SecurityConfig{
			JWTSecret:   strings.Repeat("s", 32),
			JWTIssuer:   "waypoint",
			CORSOrigins: []string{"*"},
		},
		Session: config.SessionConfig{
			CardWidth:         280,
			Spacing:           12,
			MinAnimation:      time.Millisecond,
			MaxAnimation:      50 * time.Millisecond,
			DefaultAnimation:  10 * time.Millisecond,
			SendBuffer:        64,
			DefaultLatDelta:   0.05,
			DefaultLngDelta:   0.05,
			MaxCandidateCount: 500,
		},
	}
}

type testServer struct {
	handler   http.Handler
	lib       *fakeLibrary
	snapshots *memorySnapshots
	events    *recordingPublisher
	jwt       *auth.JWTManager
	sessions  *mapsession.Manager
	hub       *ws.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := testConfig()
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	registry := sources.NewRegistry(&staticStrategy{items: testCandidates()})
	pages := cache.New[sources.Page](time.Minute, 64)
	sessions := mapsession.NewManager(mapsession.Options{
		Registry: registry,
		Pages:    pages,
		MaxPages: cfg.Server.MaxPages,
		Clustering: clustering.Config{
			BaseDistance:     cfg.Clustering.BaseDistance,
			DisableThreshold: cfg.Clustering.DisableThreshold,
			Cohesion:         cfg.Clustering.Cohesion,
			MinZoomFactor:    cfg.Clustering.MinZoomFactor,
		},
		Session: cfg.Session,
	})
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		sessions.CloseAll()
	})

	ts := &testServer{
		lib:       newFakeLibrary(),
		snapshots: newMemorySnapshots(),
		events:    &recordingPublisher{},
		jwt:       jwtManager,
		sessions:  sessions,
		hub:       hub,
	}
	handler := NewHandler(Deps{
		Config:    cfg,
		Registry:  registry,
		Pages:     pages,
		Library:   ts.lib,
		Snapshots: snapshot.WithLimit(ts.snapshots, cfg.Snapshots.MaxBytes),
		Events:    ts.events,
		Sessions:  sessions,
		Hub:       hub,
		Enforcer:  enforcer,
		Version:   "test",
	})
	ts.handler = NewRouter(handler, auth.NewMiddleware(jwtManager), enforcer).Setup()
	return ts
}

func (ts *testServer) token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := ts.jwt.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("decode data: %v (data %s)", err, env.Data)
		}
	}
	return env
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// ---- map ----

func TestMarkersClustersRegion(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/map/markers?source=content&query=coffee&latDelta=0.05&regionLat=51.5&regionLng=-0.12", "", "")
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}

	var resp models.MarkersResponse
	decodeEnvelope(t, rec, &resp)
	if len(resp.Data) != 3 {
		t.Fatalf("data has %d candidates, want the 3 mappable ones", len(resp.Data))
	}
	if resp.IsLoading || resp.IsError || resp.Source != "content" {
		t.Errorf("flags = %+v", resp)
	}
	if len(resp.ClusteredData) != 2 {
		t.Fatalf("clusteredData has %d items, want 2", len(resp.ClusteredData))
	}
	if !resp.ClusteredData[0].IsCluster || resp.ClusteredData[0].Count != 2 {
		t.Errorf("first item = %+v, want a cluster of 2", resp.ClusteredData[0])
	}
	if idx, ok := resp.ClusteredData[1].Index(); !ok || idx != 2 {
		t.Errorf("singleton index = %d, %v; want 2", idx, ok)
	}
}

func TestMarkersWithoutRegionSkipsClustering(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/map/markers?source=content", "", "")
	expectStatus(t, rec, http.StatusOK)
	var resp models.MarkersResponse
	decodeEnvelope(t, rec, &resp)
	if resp.ClusteredData != nil {
		t.Errorf("clusteredData = %v, want none", resp.ClusteredData)
	}
}

func TestMarkersRejectsBadParameters(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing source", ""},
		{"unknown source", "source=bogus"},
		{"unregistered source", "source=likes"},
		{"bad latitude", "source=content&latitude=north"},
		{"latitude out of range", "source=content&latitude=91&longitude=0"},
		{"bad latDelta", "source=content&latDelta=wide"},
		{"negative latDelta", "source=content&latDelta=-1"},
		{"bad collection id", "source=collection&collectionId=a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/v1/map/markers?"+tt.query, "", "")
			expectStatus(t, rec, http.StatusBadRequest)
			env := decodeEnvelope(t, rec, nil)
			if env.Status != "error" || env.Error == nil || env.Error.Code != ErrCodeValidation {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestMarkersRejectsInvalidToken(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/map/markers?source=content", "not-a-jwt", "")
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestClusterEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	body, err := json.Marshal(models.ClusterRequest{
		Candidates: testCandidates(),
		Region:     models.Region{Latitude: 51.5, Longitude: -0.12, LatitudeDelta: 0.01, LongitudeDelta: 0.01},
	})
	if err != nil {
		t.Fatal(err)
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/map/cluster", "", string(body))
	expectStatus(t, rec, http.StatusOK)

	var items []models.ClusterItem
	decodeEnvelope(t, rec, &items)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 singletons below the disable threshold", len(items))
	}
	for i, item := range items {
		if item.IsCluster {
			t.Errorf("item %d is a cluster", i)
		}
	}
}

func TestClusterEndpointRecordsMetrics(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	body, err := json.Marshal(models.ClusterRequest{
		Candidates: testCandidates(),
		Region:     models.Region{Latitude: 51.5, Longitude: -0.12, LatitudeDelta: 0.01, LongitudeDelta: 0.01},
	})
	if err != nil {
		t.Fatal(err)
	}

	var before dto.Metric
	if err := metrics.ClusteringOutputSize.Write(&before); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/map/cluster", "", string(body))
	expectStatus(t, rec, http.StatusOK)

	var after dto.Metric
	if err := metrics.ClusteringOutputSize.Write(&after); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Other tests cluster concurrently, so only lower bounds hold.
	if d := after.GetHistogram().GetSampleCount() - before.GetHistogram().GetSampleCount(); d < 1 {
		t.Errorf("sample count delta = %d, want at least 1", d)
	}
	if d := after.GetHistogram().GetSampleSum() - before.GetHistogram().GetSampleSum(); d < 3 {
		t.Errorf("sample sum delta = %v, want at least 3", d)
	}
}

func TestClusterEndpointRejectsBadBodies(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", "{", http.StatusBadRequest},
		{"region out of range", `{"candidates":[],"region":{"latitude":95,"longitude":0,"latitudeDelta":1,"longitudeDelta":1}}`, http.StatusBadRequest},
		{"too large", `{"candidates":[` + strings.Repeat(" ", maxClusterBody) + `]}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/v1/map/cluster", "", tt.body)
			expectStatus(t, rec, tt.want)
		})
	}
}

// ---- library ----

func TestLibraryRequiresAuthentication(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/likes", "/api/v1/collections"} {
		rec := ts.do(t, http.MethodGet, path, "", "")
		expectStatus(t, rec, http.StatusUnauthorized)
	}
}

func TestViewerCannotLike(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	viewer := ts.token(t, "v1", auth.RoleViewer)
	rec := ts.do(t, http.MethodPut, "/api/v1/likes/item-1", viewer, "")
	expectStatus(t, rec, http.StatusForbidden)

	rec = ts.do(t, http.MethodGet, "/api/v1/likes", viewer, "")
	expectStatus(t, rec, http.StatusOK)
}

func TestLikeAndUnlikePublishInvalidations(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := ts.token(t, "u1", auth.RoleUser)

	rec := ts.do(t, http.MethodPut, "/api/v1/likes/item-1", user, `{"id":"ignored","title":"Blue Door","latitude":51.5,"longitude":-0.12}`)
	expectStatus(t, rec, http.StatusOK)
	if got := ts.lib.liked("u1"); len(got) != 1 || got[0] != "item-1" {
		t.Fatalf("likes = %v", got)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/likes", user, "")
	expectStatus(t, rec, http.StatusOK)
	var page LikesPage
	decodeEnvelope(t, rec, &page)
	if len(page.Items) != 1 || page.Items[0].ID != "item-1" || page.Items[0].Title != "Blue Door" {
		t.Errorf("likes page = %+v", page)
	}

	rec = ts.do(t, http.MethodDelete, "/api/v1/likes/item-1", user, "")
	expectStatus(t, rec, http.StatusOK)

	want := []string{"likes:user:u1:like", "likes:user:u1:unlike"}
	if got := ts.events.reasons(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("invalidations = %v, want %v", got, want)
	}
}

func TestLikeUnknownItemWithoutBody(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/likes/missing", ts.token(t, "u1", auth.RoleUser), "")
	expectStatus(t, rec, http.StatusNotFound)
	if got := ts.events.reasons(); len(got) != 0 {
		t.Errorf("failed mutation published %v", got)
	}
}

func TestCollectionOwnership(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	owner := ts.token(t, "u1", auth.RoleUser)
	other := ts.token(t, "u2", auth.RoleUser)
	admin := ts.token(t, "root", auth.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/api/v1/collections", owner, `{"name":"Weekend"}`)
	expectStatus(t, rec, http.StatusCreated)
	var col models.Collection
	decodeEnvelope(t, rec, &col)

	item := `{"itemId":"item-9","item":{"title":"Museum","latitude":48.86,"longitude":2.34}}`
	path := "/api/v1/collections/" + col.ID + "/items"

	rec = ts.do(t, http.MethodPost, path, other, item)
	expectStatus(t, rec, http.StatusForbidden)

	rec = ts.do(t, http.MethodPost, path, owner, item)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodPost, path, admin, `{"itemId":"item-9"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/v1/collections", owner, "")
	expectStatus(t, rec, http.StatusOK)
	var cols []models.Collection
	decodeEnvelope(t, rec, &cols)
	if len(cols) != 1 || len(cols[0].Items) != 2 || cols[0].Items[0].Title != "Museum" {
		t.Errorf("collections = %+v", cols)
	}

	want := []string{
		"collections:user:u1:collection_create",
		"collections:user:u1:collection_add",
		"collection:collection:" + col.ID + ":collection_add",
		"collections:user:u1:collection_add",
		"collection:collection:" + col.ID + ":collection_add",
	}
	if got := ts.events.reasons(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("invalidations = %v, want %v", got, want)
	}
}

func TestCollectionValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := ts.token(t, "u1", auth.RoleUser)

	rec := ts.do(t, http.MethodPost, "/api/v1/collections", user, `{"name":""}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, "/api/v1/collections/unknown/items", user, `{"itemId":"x"}`)
	expectStatus(t, rec, http.StatusNotFound)
}

// ---- snapshots ----

func TestSnapshotLifecycle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := ts.token(t, "u1", auth.RoleUser)

	rec := ts.do(t, http.MethodPost, "/api/v1/snapshots", user, `[{"id":"a","title":"A","latitude":1,"longitude":2}]`)
	expectStatus(t, rec, http.StatusCreated)
	var ref SnapshotRef
	decodeEnvelope(t, rec, &ref)
	if ref.ID == "" || ref.Items != 1 {
		t.Fatalf("ref = %+v", ref)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/snapshots/"+ref.ID, user, "")
	expectStatus(t, rec, http.StatusOK)
	var stored []models.MapMarkerCandidate
	decodeEnvelope(t, rec, &stored)
	if len(stored) != 1 || stored[0].ID != "a" {
		t.Errorf("stored = %+v", stored)
	}

	rec = ts.do(t, http.MethodPut, "/api/v1/snapshots/"+ref.ID, user, `[]`)
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodDelete, "/api/v1/snapshots/"+ref.ID, user, "")
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodDelete, "/api/v1/snapshots/"+ref.ID, user, "")
	expectStatus(t, rec, http.StatusNotFound)

	want := []string{
		"custom:snapshot:" + ref.ID + ":snapshot_put",
		"custom:snapshot:" + ref.ID + ":snapshot_put",
		"custom:snapshot:" + ref.ID + ":snapshot_delete",
	}
	if got := ts.events.reasons(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("invalidations = %v, want %v", got, want)
	}
}

func TestSnapshotRejections(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	user := ts.token(t, "u1", auth.RoleUser)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"object instead of array", http.MethodPost, "/api/v1/snapshots", `{"id":"a"}`, http.StatusBadRequest},
		{"invalid json", http.MethodPost, "/api/v1/snapshots", `[{"id":`, http.StatusBadRequest},
		{"too large", http.MethodPost, "/api/v1/snapshots", `[` + strings.Repeat(`"x",`, 100) + `"x"]`, http.StatusRequestEntityTooLarge},
		{"bad id", http.MethodPut, "/api/v1/snapshots/bad.id", `[]`, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/snapshots/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, user, tt.body)
			expectStatus(t, rec, tt.want)
		})
	}
	if got := ts.events.reasons(); len(got) != 0 {
		t.Errorf("rejected writes published %v", got)
	}
}

func TestSnapshotsUnavailableWithoutStore(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(Deps{Config: cfg, Registry: sources.NewRegistry()})
	router := NewRouter(h, auth.NewMiddleware(jwtManager), nil).Setup()

	tok, _ := jwtManager.GenerateToken("u1", auth.RoleUser)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", bytes.NewReader([]byte(`[]`)))
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

// ---- operations ----

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/health", "", "")
	expectStatus(t, rec, http.StatusOK)
	var status models.HealthStatus
	decodeEnvelope(t, rec, &status)
	if status.Status != "healthy" || !status.LibraryOK || !status.SnapshotsOK || status.Version != "test" {
		t.Errorf("health = %+v", status)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id missing")
	}
}

func TestHealthDegradedWithoutStores(t *testing.T) {
	t.Parallel()

	h := NewHandler(Deps{Config: testConfig(), Registry: sources.NewRegistry()})
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	var status models.HealthStatus
	decodeEnvelope(t, rec, &status)
	if status.Status != "degraded" || status.UpstreamState != "unknown" {
		t.Errorf("health = %+v", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/metrics", "", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.RateLimitRequests = 2
	cfg.Server.RateLimitWindow = time.Minute
	router := NewRouter(NewHandler(Deps{Config: cfg, Registry: sources.NewRegistry()}), nil, nil).Setup()

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		router.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
	}
	expectStatus(t, last, http.StatusTooManyRequests)
	env := decodeEnvelope(t, last, nil)
	if env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("envelope = %+v", env)
	}
}

// ---- websocket ----

func TestMapWebSocketSession(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/map/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	first := readState(t, conn)
	if !first.Disabled {
		t.Errorf("initial state = %+v, want disabled", first)
	}

	if err := conn.WriteJSON(map[string]interface{}{
		"type": ws.TypeSetSource,
		"data": map[string]interface{}{"source": "content", "query": "coffee"},
	}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		st := readState(t, conn)
		if !st.IsLoading && len(st.Data) == 3 {
			if st.Source != "content" || len(st.ClusteredData) == 0 {
				t.Errorf("state = %+v", st)
			}
			return
		}
	}
	t.Fatal("session never reported the loaded candidates")
}

func TestMapWebSocketUnavailable(t *testing.T) {
	t.Parallel()

	h := NewHandler(Deps{Config: testConfig(), Registry: sources.NewRegistry()})
	rec := httptest.NewRecorder()
	h.MapWebSocket(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map/ws", nil))
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

// readState reads frames until the next state message.
func readState(t *testing.T, conn *websocket.Conn) mapsession.StateData {
	t.Helper()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage: %v", err)
		}
		var env ws.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if env.Type != ws.TypeState {
			continue
		}
		var st mapsession.StateData
		if err := json.Unmarshal(env.Data, &st); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		return st
	}
}
