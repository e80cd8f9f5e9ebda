package widget

import (
	"errors"
	"testing"
)

func TestFactoryUnknownClass(t *testing.T) {
	factory := NewFactory(NewRegistry())

	_, err := factory.Construct("reportdeck/widgets/nope", nil)
	if !errors.Is(err, ErrUnknownWidgetType) {
		t.Errorf("Expected ErrUnknownWidgetType, got %v", err)
	}
}

func TestFactoryConstructSeedsConfiguration(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Class: "reportdeck/widgets/stub", New: newStub}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	factory := NewFactory(reg)

	w, err := factory.Construct("reportdeck/widgets/stub", map[string]interface{}{
		"title":   "Visits",
		PropWidth: float64(5),
	})
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}

	if title, _ := w.Property("title"); title != "Visits" {
		t.Errorf("Configuration should seed the instance, got title %v", title)
	}
	if width, _ := w.Property(PropWidth); width != 5 {
		t.Errorf("Width should be coerced to 5, got %v", width)
	}
}

func TestFactoryConstructBadSeed(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Class: "reportdeck/widgets/stub", New: newStub}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	factory := NewFactory(reg)

	_, err := factory.Construct("reportdeck/widgets/stub", map[string]interface{}{
		PropWidth: 42,
	})
	if err == nil {
		t.Fatal("Out-of-range stored width should fail construction")
	}
	if errors.Is(err, ErrUnknownWidgetType) || errors.Is(err, ErrWrongWidgetKind) {
		t.Errorf("Seed failure is not a taxonomy error: %v", err)
	}
}

func TestFactoryWrongKindAtConstructTime(t *testing.T) {
	// A constructor is arbitrary code: this one passes the registration
	// probe, then degrades.
	calls := 0
	flaky := func() Widget {
		calls++
		if calls == 1 {
			return newStub()
		}
		return newBare()
	}

	reg := NewRegistry()
	if err := reg.Register(Definition{Class: "reportdeck/widgets/flaky", New: flaky}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	factory := NewFactory(reg)

	_, err := factory.Construct("reportdeck/widgets/flaky", nil)
	if !errors.Is(err, ErrWrongWidgetKind) {
		t.Errorf("Expected ErrWrongWidgetKind, got %v", err)
	}
}

func TestFactoryTypedNilConstructor(t *testing.T) {
	calls := 0
	flaky := func() Widget {
		calls++
		if calls == 1 {
			return newStub()
		}
		return (*stubWidget)(nil)
	}

	reg := NewRegistry()
	if err := reg.Register(Definition{Class: "reportdeck/widgets/nil", New: flaky}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	factory := NewFactory(reg)

	_, err := factory.Construct("reportdeck/widgets/nil", nil)
	if !errors.Is(err, ErrWrongWidgetKind) {
		t.Errorf("Expected ErrWrongWidgetKind for typed nil, got %v", err)
	}
}
