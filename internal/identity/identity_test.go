package identity

import "testing"

func TestUUIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := UUID{}.NewID()
		if !Valid(id) {
			t.Fatalf("NewID() = %q, not a canonical UUID", id)
		}
		if seen[id] {
			t.Fatalf("NewID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestSequence(t *testing.T) {
	s := &Sequence{Prefix: "reading"}
	for _, want := range []string{"reading-1", "reading-2", "reading-3"} {
		if got := s.NewID(); got != want {
			t.Errorf("NewID() = %q, want %q", got, want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"7d444840-9dc0-11d1-b245-5ffdce74fad2", true},
		{"", false},
		{"not-a-uuid", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
