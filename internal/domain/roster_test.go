package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewRosterDeduplicates(t *testing.T) {
	r := NewRoster("alice", "bob", "alice")
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if !reflect.DeepEqual(r.Names(), []string{"alice", "bob"}) {
		t.Errorf("Names() = %v", r.Names())
	}
}

func TestRosterIsCaseSensitive(t *testing.T) {
	r := NewRoster("Alice")
	if got := r.Minus(NewRoster("alice")); !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Errorf("Minus(alice) = %v, want [Alice]", got)
	}
	if got := r.Minus(NewRoster("Alice")); len(got) != 0 {
		t.Errorf("Minus(Alice) = %v, want empty", got)
	}
}

func TestNilRosterBehavesAsEmpty(t *testing.T) {
	var r *Roster
	if r.Known() {
		t.Error("nil roster should be unknown")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
	if got := r.Names(); len(got) != 0 {
		t.Errorf("Names() = %v, want empty", got)
	}
	if !r.OrEmpty().Known() {
		t.Error("OrEmpty() should return a known roster")
	}
	if !r.Equal(EmptyRoster()) {
		t.Error("unknown roster should equal empty roster")
	}
}

func TestRosterMinus(t *testing.T) {
	tests := []struct {
		name string
		a    *Roster
		b    *Roster
		want []string
	}{
		{name: "disjoint", a: NewRoster("a", "b"), b: NewRoster("c"), want: []string{"a", "b"}},
		{name: "overlap", a: NewRoster("a", "b", "c"), b: NewRoster("b"), want: []string{"a", "c"}},
		{name: "subset", a: NewRoster("a"), b: NewRoster("a", "b"), want: []string{}},
		{name: "minus unknown", a: NewRoster("z", "y"), b: nil, want: []string{"y", "z"}},
		{name: "unknown minus", a: nil, b: NewRoster("a"), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Minus(tt.b)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Minus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRosterEqual(t *testing.T) {
	if !NewRoster("a", "b").Equal(NewRoster("b", "a")) {
		t.Error("rosters with same players should be equal")
	}
	if NewRoster("a").Equal(NewRoster("b")) {
		t.Error("rosters with different players should not be equal")
	}
}

func TestRosterJSON(t *testing.T) {
	data, err := json.Marshal(NewRoster("zed", "amy"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["amy","zed"]` {
		t.Errorf("Marshal() = %s", data)
	}

	r := EmptyRoster()
	if err := json.Unmarshal([]byte(`["x","y","x"]`), r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !r.Equal(NewRoster("x", "y")) {
		t.Errorf("Unmarshal() = %v", r.Names())
	}

	if err := json.Unmarshal([]byte(`null`), r); err == nil {
		t.Error("Unmarshal() of null should fail")
	}
	if err := json.Unmarshal([]byte(`{"not":"an array"}`), r); err == nil {
		t.Error("Unmarshal() of an object should fail")
	}
}
