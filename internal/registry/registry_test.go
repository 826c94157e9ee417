package registry

import (
	"testing"

	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

func TestPutFindSeal(t *testing.T) {
	r := New()
	ct := &typesystem.ClassType{Reference: "a/G"}
	r.Put(ct)
	r.Seal()

	found, ok := r.Find("a/G")
	if !ok || found != ct {
		t.Fatalf("Find did not return the registered class")
	}

	if _, ok := r.Find("a/Missing"); ok {
		t.Fatalf("Find should miss an unregistered reference")
	}
}

func TestPutAfterSealPanics(t *testing.T) {
	r := New()
	r.Seal()
	defer func() {
		if recover() == nil {
			t.Fatal("Put after Seal should panic")
		}
	}()
	r.Put(&typesystem.ClassType{Reference: "a/G"})
}

func TestFindTypeUnknown(t *testing.T) {
	r := New()
	r.Seal()
	if _, err := r.FindType("missing/Class"); err == nil {
		t.Fatal("FindType should error on an unregistered reference")
	}
}
