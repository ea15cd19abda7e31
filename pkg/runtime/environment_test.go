package runtime

import (
	"errors"
	"testing"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	value := StringValue{Val: "hello"}
	env.Define("greeting", value)

	got, err := env.Get("greeting")
	if err != nil {
		t.Fatalf("expected to retrieve binding: %v", err)
	}

	if gv, ok := got.(StringValue); !ok || gv.Val != "hello" {
		t.Fatalf("unexpected value returned: %#v", got)
	}
}

func TestEnvironmentGetSearchesParentChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("x", IntegerValue{Val: 1})
	inner := NewEnvironment(NewEnvironment(global))

	got, err := inner.Get("x")
	if err != nil {
		t.Fatalf("chained lookup failed: %v", err)
	}
	if iv, ok := got.(IntegerValue); !ok || iv.Val != 1 {
		t.Fatalf("unexpected value: %#v", got)
	}
}

func TestEnvironmentShadowing(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("x", IntegerValue{Val: 1})
	inner := NewEnvironment(outer)
	inner.Define("x", IntegerValue{Val: 2})

	got, _ := inner.Get("x")
	if iv, ok := got.(IntegerValue); !ok || iv.Val != 2 {
		t.Fatalf("inner frame should shadow: %#v", got)
	}
	got, _ = outer.Get("x")
	if iv, ok := got.(IntegerValue); !ok || iv.Val != 1 {
		t.Fatalf("outer frame should be untouched: %#v", got)
	}
}

func TestEnvironmentAssignRespectsLexicalParent(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("counter", IntegerValue{Val: 1})

	child := NewEnvironment(env)
	if err := child.Assign("counter", IntegerValue{Val: 2}); err != nil {
		t.Fatalf("assign into parent failed: %v", err)
	}

	got, err := env.Get("counter")
	if err != nil {
		t.Fatalf("parent lookup failed: %v", err)
	}
	if iv, ok := got.(IntegerValue); !ok || iv.Val != 2 {
		t.Fatalf("unexpected counter value: %#v", got)
	}
}

func TestEnvironmentAssignVisibleThroughAliases(t *testing.T) {
	shared := NewEnvironment(nil)
	shared.Define("cell", IntegerValue{Val: 1})

	aliasA := NewEnvironment(shared)
	aliasB := NewEnvironment(shared)

	if err := aliasA.Assign("cell", IntegerValue{Val: 9}); err != nil {
		t.Fatalf("assign through alias failed: %v", err)
	}
	got, _ := aliasB.Get("cell")
	if iv, ok := got.(IntegerValue); !ok || iv.Val != 9 {
		t.Fatalf("mutation not visible through second alias: %#v", got)
	}
}

func TestEnvironmentAssignUnknownFails(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("missing", NullValue{})
	if err == nil {
		t.Fatalf("expected error when assigning undefined variable")
	}
	if err.Error() != "Undefined variable 'missing'" {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
	var evalErr *Error
	if !errors.As(err, &evalErr) || evalErr.Kind != UnboundVariable {
		t.Fatalf("expected UnboundVariable kind, got %#v", err)
	}
}

func TestEnvironmentExtendDoesNotMutateReceiver(t *testing.T) {
	env := NewEnvironment(nil)
	child := env.Extend()
	child.Define("fresh", BoolValue{Val: true})

	if _, err := env.Get("fresh"); err == nil {
		t.Fatalf("binding in child frame leaked into parent")
	}
	if child.Parent() != env {
		t.Fatalf("child should chain to receiver")
	}
}

func TestEnvironmentKeysSorted(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("zeta", NullValue{})
	env.Define("alpha", NullValue{})
	env.Define("mid", NullValue{})

	keys := env.Keys()
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
