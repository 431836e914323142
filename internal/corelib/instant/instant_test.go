package instant

import (
	"testing"
	"time"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

func TestReadInstantParsesRFC3339(t *testing.T) {
	got, err := ReadInstant("2024-01-02T03:04:05.000Z")
	if err != nil {
		t.Fatalf("ReadInstant: %v", err)
	}
	h, ok := got.(*value.HostObject)
	if !ok || h.Tag != "inst" {
		t.Fatalf("got %#v, want *value.HostObject{Tag: \"inst\"}", got)
	}
	tm, ok := h.Obj.(time.Time)
	if !ok {
		t.Fatalf("HostObject.Obj = %#v, want time.Time", h.Obj)
	}
	if tm.Year() != 2024 || tm.Month() != time.January || tm.Day() != 2 {
		t.Errorf("parsed time = %v, want 2024-01-02", tm)
	}
}

func TestReadInstantRejectsGarbage(t *testing.T) {
	if _, err := ReadInstant("not a date"); err == nil {
		t.Fatal("expected an error for an unparseable instant")
	}
}

func TestInstantPredicate(t *testing.T) {
	rt := runtime.NewEnv()
	Install(rt)
	ns, _ := rt.FindNS("clojure.instant")
	v, _ := ns.Own("instant?")
	fn := v.MustDeref().(value.Fn)

	inst, _ := ReadInstant("2024-01-01T00:00:00.000Z")
	got, err := fn.Call([]value.Value{inst})
	if err != nil {
		t.Fatalf("instant?: %v", err)
	}
	if got != value.Bool(true) {
		t.Errorf("instant?(inst) = %v, want true", got)
	}

	got, err = fn.Call([]value.Value{value.Int(1)})
	if err != nil {
		t.Fatalf("instant?: %v", err)
	}
	if got != value.Bool(false) {
		t.Errorf("instant?(1) = %v, want false", got)
	}
}
