package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type mockResult struct {
	records []*neo4j.Record
	idx     int
}

func (m *mockResult) Next(context.Context) bool {
	if m.idx < len(m.records) {
		m.idx++
		return true
	}
	return false
}

func (m *mockResult) Record() *neo4j.Record { return m.records[m.idx-1] }

type mockRunner struct {
	records []*neo4j.Record
	err     error
	cyphers []string
	params  []map[string]any
}

func (m *mockRunner) Run(_ context.Context, cypher string, params map[string]any) (result, error) {
	m.cyphers = append(m.cyphers, cypher)
	m.params = append(m.params, params)
	if m.err != nil {
		return nil, m.err
	}
	return &mockResult{records: m.records}, nil
}

func (m *mockRunner) Close(context.Context) error { return nil }

type cable struct {
	ID   int64
	Name string
}

func cableRecord(id int64, name string) *neo4j.Record {
	return &neo4j.Record{Values: []any{map[string]any{"id": id, "name": name}}, Keys: []string{"n"}}
}

func newTestRepo(r *mockRunner, opts ...Neo4jOption[cable, int64]) *Neo4jRepo[cable, int64] {
	repo := NewNeo4jRepo[cable, int64](
		nil, "CableType",
		func(c cable) map[string]any { return map[string]any{"id": c.ID, "name": c.Name} },
		func(rec *neo4j.Record) (cable, error) {
			m, ok := rec.Values[0].(map[string]any)
			if !ok {
				return cable{}, errors.New("bad record")
			}
			return cable{ID: m["id"].(int64), Name: m["name"].(string)}, nil
		},
		opts...,
	)
	repo.newSession = func(context.Context) runner { return r }
	return repo
}

func TestGet(t *testing.T) {
	r := &mockRunner{records: []*neo4j.Record{cableRecord(1, "UTP")}}
	c, err := newTestRepo(r).Get(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "UTP" {
		t.Fatalf("got %+v", c)
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := newTestRepo(&mockRunner{}).Get(context.Background(), 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunErrorsPropagate(t *testing.T) {
	boom := errors.New("db down")
	repo := newTestRepo(&mockRunner{err: boom})
	ctx := context.Background()
	if _, err := repo.Get(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("Get: %v", err)
	}
	if _, err := repo.List(ctx, ListOpts{}); !errors.Is(err, boom) {
		t.Errorf("List: %v", err)
	}
	if _, err := repo.Upsert(ctx, cable{}); !errors.Is(err, boom) {
		t.Errorf("Upsert: %v", err)
	}
}

func TestList(t *testing.T) {
	r := &mockRunner{records: []*neo4j.Record{cableRecord(1, "A"), cableRecord(2, "B")}}
	items, err := newTestRepo(r).List(context.Background(), ListOpts{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if r.params[0]["limit"] != 100 || r.params[0]["offset"] != 10 {
		t.Fatalf("params %v", r.params[0])
	}
}

func TestUpsert_ReadOnly(t *testing.T) {
	r := &mockRunner{}
	repo := NewNeo4jRepo[cable, int64](nil, "CableType", nil, nil)
	repo.newSession = func(context.Context) runner { return r }
	if _, err := repo.Upsert(context.Background(), cable{ID: 1}); !errors.Is(err, errReadOnly) {
		t.Fatalf("expected read-only error, got %v", err)
	}
	if len(r.cyphers) != 0 {
		t.Fatal("read-only upsert must not reach the database")
	}
}

func TestList_DecodeError(t *testing.T) {
	r := &mockRunner{records: []*neo4j.Record{{Values: []any{"nope"}, Keys: []string{"n"}}}}
	if _, err := newTestRepo(r).List(context.Background(), ListOpts{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestUpsert(t *testing.T) {
	r := &mockRunner{records: []*neo4j.Record{cableRecord(5, "ШВВП")}}
	c, err := newTestRepo(r).Upsert(context.Background(), cable{ID: 5, Name: "ШВВП"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != 5 || r.params[0]["id"] != int64(5) {
		t.Fatalf("got %+v params %v", c, r.params[0])
	}
	if _, err := newTestRepo(&mockRunner{}).Upsert(context.Background(), cable{}); err == nil {
		t.Fatal("expected error when no record returned")
	}
}

func TestCypherGeneration(t *testing.T) {
	r := &mockRunner{records: []*neo4j.Record{cableRecord(1, "A")}}
	repo := newTestRepo(r, WithIDKey[cable, int64]("code"))
	ctx := context.Background()
	repo.Get(ctx, 1)
	repo.List(ctx, ListOpts{Limit: 50})
	repo.Upsert(ctx, cable{ID: 1, Name: "A"})

	expected := []string{
		"MATCH (n:CableType {code: $id}) RETURN n",
		"MATCH (n:CableType) RETURN n ORDER BY n.code SKIP $offset LIMIT $limit",
		"MERGE (n:CableType {code: $id}) SET n += $props RETURN n",
	}
	if len(r.cyphers) != len(expected) {
		t.Fatalf("got %d cyphers, want %d", len(r.cyphers), len(expected))
	}
	for i, want := range expected {
		if r.cyphers[i] != want {
			t.Errorf("[%d] got %q, want %q", i, r.cyphers[i], want)
		}
	}
}

type fakeDriver struct {
	neo4j.DriverWithContext
	sessions int
}

type fakeSession struct{ neo4j.SessionWithContext }

func (d *fakeDriver) NewSession(context.Context, neo4j.SessionConfig) neo4j.SessionWithContext {
	d.sessions++
	return &fakeSession{}
}

func TestSession_UsesDriver(t *testing.T) {
	fd := &fakeDriver{}
	r := NewNeo4jRepo[cable, int64](fd, "CableType", nil, nil)
	if _, ok := r.session(context.Background()).(sessionAdapter); !ok {
		t.Fatal("expected driver-backed session adapter")
	}
	if fd.sessions != 1 {
		t.Fatalf("expected one session, got %d", fd.sessions)
	}
}

func TestDefaults(t *testing.T) {
	r := NewNeo4jRepo[cable, int64](nil, "CableType", nil, nil)
	if r.idKey != "id" || r.label != "CableType" {
		t.Fatalf("idKey=%s label=%s", r.idKey, r.label)
	}
}
