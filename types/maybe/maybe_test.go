package maybe

import (
	"encoding/json"
	"testing"
)

func TestSomeAndNone(t *testing.T) {
	s := Some(42)
	if !s.IsValid() || s.Value() != 42 {
		t.Errorf("Some(42): IsValid=%v Value=%d", s.IsValid(), s.Value())
	}

	n := None[int]()
	if n.IsValid() {
		t.Error("None: expected IsValid=false")
	}
	if n.ValueOrDefault(7) != 7 {
		t.Error("None: expected default value")
	}
	if s.ValueOrDefault(7) != 42 {
		t.Error("Some: expected held value over default")
	}
}

func TestMarshalJSON(t *testing.T) {
	type wrapper struct {
		Price Maybe[float64] `json:"price"`
	}

	b, err := json.Marshal(wrapper{Price: Some(12.5)})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"price":12.5}` {
		t.Errorf("unexpected JSON: %s", b)
	}

	b, err = json.Marshal(wrapper{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"price":null}` {
		t.Errorf("unexpected JSON: %s", b)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var m Maybe[string]
	if err := json.Unmarshal([]byte(`"hello"`), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !m.IsValid() || m.Value() != "hello" {
		t.Errorf("unexpected value: %+v", m)
	}

	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m.IsValid() {
		t.Error("expected null to reset to None")
	}
}
