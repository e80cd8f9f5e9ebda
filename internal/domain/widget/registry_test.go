package widget

import (
	"testing"
)

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(Definition{
		Class: "reportdeck/widgets/stub",
		Title: "Stub",
		New:   newStub,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	def, ok := reg.Resolve("reportdeck/widgets/stub")
	if !ok {
		t.Fatal("Registered class should resolve")
	}
	if def.Title != "Stub" {
		t.Errorf("Unexpected title: %s", def.Title)
	}

	if _, ok := reg.Resolve("reportdeck/widgets/missing"); ok {
		t.Error("Unregistered class should not resolve")
	}
}

func TestRegistryRejectsEmptyClass(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{New: newStub}); err == nil {
		t.Error("Empty class should be rejected")
	}
}

func TestRegistryRejectsNilConstructor(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Class: "x"}); err == nil {
		t.Error("Nil constructor should be rejected")
	}
}

func TestRegistryRejectsNilProbe(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Definition{
		Class: "x",
		New:   func() Widget { return nil },
	})
	if err == nil {
		t.Error("Constructor returning nil should be rejected")
	}
}

func TestRegistryRejectsNonReportWidget(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Definition{
		Class: "reportdeck/widgets/bare",
		New:   newBare,
	})
	if err == nil {
		t.Error("Type without the report widget contract should be rejected")
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	reg := NewRegistry()
	def := Definition{Class: "reportdeck/widgets/stub", New: newStub}

	if err := reg.Register(def); err != nil {
		t.Fatalf("First Register failed: %v", err)
	}
	if err := reg.Register(def); err == nil {
		t.Error("Duplicate class should be rejected")
	}
}

func TestRegistryListSorted(t *testing.T) {
	reg := NewRegistry()
	for _, class := range []string{"c/widget", "a/widget", "b/widget"} {
		if err := reg.Register(Definition{Class: class, New: newStub}); err != nil {
			t.Fatalf("Register %s failed: %v", class, err)
		}
	}

	list := reg.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 definitions, got %d", len(list))
	}
	want := []string{"a/widget", "b/widget", "c/widget"}
	for i, def := range list {
		if def.Class != want[i] {
			t.Errorf("List should be sorted: index %d is %s, want %s", i, def.Class, want[i])
		}
	}

	classes := reg.Classes()
	for i, class := range classes {
		if class != want[i] {
			t.Errorf("Classes should be sorted: index %d is %s, want %s", i, class, want[i])
		}
	}

	if reg.Len() != 3 {
		t.Errorf("Len should be 3, got %d", reg.Len())
	}
}
