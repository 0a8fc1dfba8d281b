package extraction

import (
	"testing"
)

func TestParseTreeRoundTripKeepsOrder(t *testing.T) {
	in := `{"z":1,"a":{"y":[true,false,null],"b":"x"},"m":1.50}`
	root, err := ParseTree([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := root.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("expected %s, got %s", in, out)
	}
}

func TestParseTreeDuplicateKeys(t *testing.T) {
	root, err := ParseTree([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(root.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(root.Members))
	}
	out, _ := root.MarshalJSON()
	if string(out) != `{"a":3,"b":2}` {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func TestAnyDescendantSkipsRoot(t *testing.T) {
	root, err := ParseTree([]byte(`null`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if root.AnyDescendant(func(n *Node) bool { return n.Kind == NullNode }) {
		t.Fatalf("root should not be visited")
	}

	nested, _ := ParseTree([]byte(`{"a":[[{"b":null}]]}`))
	if !nested.AnyDescendant(func(n *Node) bool { return n.Kind == NullNode }) {
		t.Fatalf("expected deeply nested null to be found")
	}
}

func TestIsBlank(t *testing.T) {
	root, _ := ParseTree([]byte(`{"n":null,"e":"","z":0,"f":false,"s":" "}`))
	want := map[string]bool{"n": true, "e": true, "z": false, "f": false, "s": false}
	for key, blank := range want {
		v, ok := root.Get(key)
		if !ok {
			t.Fatalf("missing key %s", key)
		}
		if v.IsBlank() != blank {
			t.Errorf("IsBlank(%s) = %v, want %v", key, v.IsBlank(), blank)
		}
	}
}
