package synth

import (
	"errors"
	"testing"

	"tessera/internal/engine"
	"tessera/internal/metadata"
)

func TestSQLite_TableWithPolicies(t *testing.T) {
	s := NewSQLite()
	node := tableNode("root/orders", &metadata.TableSpec{
		Columns: []metadata.Column{{Name: "col", Type: "string"}},
	})
	grants := []metadata.Grant{
		{Producer: "root/orders", Principal: "root/worker", Role: metadata.RoleRead},
	}

	objs, err := s.Synthesize(node, grants)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("expected table + policy, got %d objects", len(objs))
	}
	if objs[0].Type != "sqlite:table" {
		t.Fatalf("expected sqlite:table, got %s", objs[0].Type)
	}
	if objs[1].Type != "gateway:policy" {
		t.Fatalf("expected gateway:policy, got %s", objs[1].Type)
	}
	if objs[1].Properties["role"] != "READ" {
		t.Fatalf("expected READ policy, got %v", objs[1].Properties["role"])
	}
}

// The sqlite template vocabulary has no seed-data primitive; configured
// initial rows must fail synthesis rather than be silently dropped.
func TestSQLite_InitialRowsUnsupported(t *testing.T) {
	s := NewSQLite()
	node := tableNode("root/orders", &metadata.TableSpec{
		Columns:     []metadata.Column{{Name: "col", Type: "string"}},
		InitialRows: []map[string]any{{"col": "a"}},
	})

	objs, err := s.Synthesize(node, nil)
	if err == nil {
		t.Fatal("expected UNSUPPORTED_FEATURE error")
	}
	if objs != nil {
		t.Fatal("no objects may be emitted on error")
	}
	var synthErr *engine.SynthError
	if !errors.As(err, &synthErr) || synthErr.Code != "UNSUPPORTED_FEATURE" {
		t.Fatalf("expected UNSUPPORTED_FEATURE, got %v", err)
	}
	if synthErr.Resource != "root/orders" {
		t.Fatalf("error must name the offending resource, got %q", synthErr.Resource)
	}
}

// A failing node anywhere in the graph aborts the whole run with no
// partial template.
func TestSessionSynthesize_AbortsWithoutPartialTemplate(t *testing.T) {
	session := engine.NewSession()
	if _, err := session.DefineTable("root/a-ok", &metadata.TableSpec{
		Columns: []metadata.Column{{Name: "col", Type: "string"}},
	}); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := session.DefineTable("root/b-seeded", &metadata.TableSpec{
		Columns:     []metadata.Column{{Name: "col", Type: "string"}},
		InitialRows: []map[string]any{{"col": "a"}},
	}); err != nil {
		t.Fatalf("define: %v", err)
	}

	tpl, err := session.Synthesize(NewSQLite())
	if err == nil {
		t.Fatal("expected synthesis to fail")
	}
	if tpl != nil {
		t.Fatal("expected no partial template on failure")
	}
}

func TestSessionSynthesize_FullGraph(t *testing.T) {
	session := engine.NewSession()
	if _, err := session.DefineTable("root/orders", &metadata.TableSpec{
		Columns: []metadata.Column{{Name: "col", Type: "string"}},
	}); err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := session.DefineFunction("root/worker", &metadata.FunctionSpec{Handler: "app.handle"}); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := session.Bind("root/worker", "root/orders", metadata.OpGet, metadata.OpInsert); err != nil {
		t.Fatalf("bind: %v", err)
	}

	tpl, err := session.Synthesize(NewPostgres())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if tpl.Target != "postgres" {
		t.Fatalf("expected postgres target, got %s", tpl.Target)
	}
	// table + role + grant + service
	if len(tpl.Objects) != 4 {
		t.Fatalf("expected 4 objects, got %d: %+v", len(tpl.Objects), tpl.Objects)
	}
	if len(tpl.ByType("postgres:grant")) != 1 {
		t.Fatal("expected exactly one grant object")
	}
	svc := tpl.ByType("process:service")
	if len(svc) != 1 {
		t.Fatal("expected one service object")
	}
	env := svc[0].Properties["env"].(map[string]string)
	if env["TESSERA_TABLE_ORDERS_ROLE"] != "READWRITE" {
		t.Fatalf("expected READWRITE env for bound table, got %v", env)
	}
}
