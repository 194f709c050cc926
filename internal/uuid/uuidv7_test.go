package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	id := New()
	parsed, err := googleuuid.Parse(id)
	if err != nil {
		t.Fatalf("New() returned unparsable id %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("version = %d, want 7", parsed.Version())
	}
}

func TestNew_Ordered(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(New()) {
		t.Error("expected generated id to be valid")
	}
	if IsValid("id-1") {
		t.Error("expected id-1 to be invalid")
	}
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected parse error")
	}
}
