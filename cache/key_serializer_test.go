package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "no args",
			method: "List",
			args:   []any{},
			want:   "List",
		},
		{
			name:   "single string",
			method: "GetByID",
			args:   []any{"user-123"},
			want:   "GetByID::user-123",
		},
		{
			name:   "mixed basics",
			method: "Page",
			args:   []any{2, true, 1.5},
			want:   "Page::2::true::1.5",
		},
		{
			name:   "nil arg",
			method: "Get",
			args:   []any{nil},
			want:   "Get::nil",
		},
		{
			name:   "string slice",
			method: "ByTags",
			args:   []any{[]string{"a", "b"}},
			want:   "ByTags::slice[2]:{a,b}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.method, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_MapDeterminism(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	args := map[string]int{"b": 2, "a": 1, "c": 3}

	first := serializer.SerializeKey("Query", args)
	for i := 0; i < 20; i++ {
		if got := serializer.SerializeKey("Query", args); got != first {
			t.Fatalf("map serialization unstable: %q != %q", got, first)
		}
	}
	if want := "Query::map[3]:{a=1,b=2,c=3}"; first != want {
		t.Errorf("SerializeKey() = %q, want %q", first, want)
	}
}

func TestDefaultKeySerializer_StructFields(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	type criteria struct {
		Limit  int
		Offset int
		order  string // unexported, must be skipped
	}

	got := serializer.SerializeKey("List", criteria{Limit: 10, Offset: 20, order: "ignored"})
	want := "List::struct:{Limit:10,Offset:20}"
	if got != want {
		t.Errorf("SerializeKey() = %q, want %q", got, want)
	}
}

func TestDefaultKeySerializer_PointerDereference(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	id := "user-123"
	got := serializer.SerializeKey("GetByID", &id)
	if got != "GetByID::user-123" {
		t.Errorf("SerializeKey() = %q, want pointer to be dereferenced", got)
	}

	var nilID *string
	got = serializer.SerializeKey("GetByID", nilID)
	if got != "GetByID::nil" {
		t.Errorf("SerializeKey() = %q, want nil pointer to serialize as nil", got)
	}
}

func TestDefaultKeySerializer_FuncIdentityStable(t *testing.T) {
	serializer := NewDefaultKeySerializer()
	fn := func() {}

	first := serializer.SerializeKey("Get", fn)
	second := serializer.SerializeKey("Get", fn)
	if first != second {
		t.Errorf("same func serialized differently: %q vs %q", first, second)
	}
	if !strings.Contains(first, "func:") {
		t.Errorf("SerializeKey() = %q, want func pointer form", first)
	}
}
