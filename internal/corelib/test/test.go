// Package test implements the clojure.test namespace's runtime half:
// deftest/testing/is/are (internal/macro/extra.go) expand into calls
// against report-test and *testing-context* defined here; run-tests scans
// every var carrying {:test true} metadata (deftest's marker) and invokes
// it, tallying pass/fail the way the teacher's CLI tallies a run's results
// before printing a summary line.
package test

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clojurewasm/corelisp/internal/corelib"
	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

type counters struct {
	test, pass, fail, err int
}

func truthy(v value.Value) bool {
	switch x := v.(type) {
	case value.Nil:
		return false
	case value.Bool:
		return bool(x)
	default:
		return true
	}
}

func contextLabel(ctx value.Value) string {
	items := corelib.ToSlice(ctx)
	labels := make([]string, len(items))
	for i, it := range items {
		labels[len(items)-1-i] = it.String()
	}
	return strings.Join(labels, " ")
}

func Install(rt *runtime.Env) {
	ns := rt.CreateNS("clojure.test")

	ctxVar := ns.Intern("*testing-context*")
	ctxVar.SetDynamic(true)
	ctxVar.BindRoot(value.EmptyList())

	countersVar := ns.Intern("*report-counters*")
	countersVar.SetDynamic(true)
	countersVar.BindRoot(&value.HostObject{Tag: "test-counters", Obj: &counters{}})

	stderr := io.Writer(os.Stderr)

	corelib.Install(ns, []corelib.Entry{
		{Name: "report-test", Ar: corelib.Fixed(3), Fn: func(a []value.Value) (value.Value, error) {
			exprForm, result, msg := a[0], a[1], a[2]
			cur := countersVar
			cv, err := cur.Deref()
			if err != nil {
				return nil, err
			}
			h := cv.(*value.HostObject)
			c := h.Obj.(*counters)
			c.test++
			ctx, _ := ctxVar.Deref()
			label := contextLabel(ctx)
			if truthy(result) {
				c.pass++
				return value.Bool(true), nil
			}
			c.fail++
			if label != "" {
				fmt.Fprintf(stderr, "FAIL in (%s)\n", label)
			} else {
				fmt.Fprintln(stderr, "FAIL")
			}
			if !isNilVal(msg) {
				fmt.Fprintf(stderr, "  %s\n", msg.String())
			}
			fmt.Fprintf(stderr, "expected: %s\nactual: %s\n", exprForm.String(), value.PrStr(result))
			return value.Bool(false), nil
		}},
		{Name: "successful?", Ar: corelib.Fixed(1), Fn: func(a []value.Value) (value.Value, error) {
			h, ok := a[0].(*value.HostObject)
			if !ok {
				return value.Bool(false), nil
			}
			c, ok := h.Obj.(*counters)
			if !ok {
				return value.Bool(false), nil
			}
			return value.Bool(c.fail == 0 && c.err == 0), nil
		}},
		{Name: "run-tests", Ar: corelib.VariadicFrom(0), Fn: func(a []value.Value) (value.Value, error) {
			targets := []*runtime.Namespace{rt.Current()}
			if len(a) > 0 {
				targets = nil
				for _, v := range a {
					if n, err := asNamespace(v, rt); err == nil {
						targets = append(targets, n)
					}
				}
			}
			total := &counters{}
			for _, n := range targets {
				for _, v := range n.Publics() {
					m := v.Meta()
					if m == nil {
						continue
					}
					testFlag, ok := m.Get(value.Keyword{Name: "test"})
					if !ok || !truthy(testFlag) {
						continue
					}
					fn, ok := func() (value.Fn, bool) {
						cur, err := v.Deref()
						if err != nil {
							return nil, false
						}
						f, ok := cur.(value.Fn)
						return f, ok
					}()
					if !ok {
						continue
					}
					before := snapshotCounters(countersVar)
					if _, err := fn.Call(nil); err != nil {
						total.err++
						fmt.Fprintf(stderr, "ERROR in %s: %s\n", v.Name, err)
						continue
					}
					after := snapshotCounters(countersVar)
					total.test += after.test - before.test
					total.pass += after.pass - before.pass
					total.fail += after.fail - before.fail
				}
			}
			fmt.Fprintf(stderr, "\nRan %d tests containing %d assertions.\n%d failures, %d errors.\n",
				countTestFns(targets), total.test, total.fail, total.err)
			return &value.HostObject{Tag: "test-counters", Obj: total}, nil
		}},
	})
}

func isNilVal(v value.Value) bool {
	_, ok := v.(value.Nil)
	return ok
}

func snapshotCounters(v *value.Var) counters {
	cv, err := v.Deref()
	if err != nil {
		return counters{}
	}
	h, ok := cv.(*value.HostObject)
	if !ok {
		return counters{}
	}
	c, ok := h.Obj.(*counters)
	if !ok {
		return counters{}
	}
	return *c
}

func countTestFns(nss []*runtime.Namespace) int {
	n := 0
	for _, ns := range nss {
		for _, v := range ns.Publics() {
			m := v.Meta()
			if m == nil {
				continue
			}
			if flag, ok := m.Get(value.Keyword{Name: "test"}); ok && truthy(flag) {
				n++
			}
		}
	}
	return n
}

func asNamespace(v value.Value, rt *runtime.Env) (*runtime.Namespace, error) {
	switch x := v.(type) {
	case value.Symbol:
		if n, ok := rt.FindNS(x.Name); ok {
			return n, nil
		}
	case value.String:
		if n, ok := rt.FindNS(string(x)); ok {
			return n, nil
		}
	}
	return nil, fmt.Errorf("not a namespace: %s", v.String())
}
