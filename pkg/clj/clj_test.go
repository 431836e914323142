package clj

import (
	"strings"
	"testing"

	"github.com/clojurewasm/corelisp/internal/value"
)

func evalStr(t *testing.T, src string) value.Value {
	t.Helper()
	rt := New()
	v, err := rt.EvalString(src)
	if err != nil {
		t.Fatalf("EvalString(%q): %v", src, err)
	}
	return v
}

func evalPrStr(t *testing.T, src string) string {
	t.Helper()
	return value.PrStr(evalStr(t, src))
}

func TestEvalStringArithmetic(t *testing.T) {
	if got := evalPrStr(t, "(+ 1 2 3)"); got != "6" {
		t.Errorf("got %s, want 6", got)
	}
}

func TestEvalStringMultipleForms(t *testing.T) {
	got := evalPrStr(t, "(def x 10) (def y 20) (+ x y)")
	if got != "30" {
		t.Errorf("got %s, want 30", got)
	}
}

func TestClojureSetNamespace(t *testing.T) {
	got := evalPrStr(t, `(clojure.set/union #{1 2} #{2 3})`)
	// set printing order is unspecified, so just check membership.
	for _, want := range []string{"1", "2", "3"} {
		if !strings.Contains(got, want) {
			t.Errorf("union result %s missing %s", got, want)
		}
	}
}

func TestClojureWalkPostwalk(t *testing.T) {
	got := evalPrStr(t, `(clojure.walk/postwalk (fn [x] (if (number? x) (inc x) x)) [1 2 3])`)
	if got != "[2 3 4]" {
		t.Errorf("got %s, want [2 3 4]", got)
	}
}

func TestClojureDataJSONRoundTrip(t *testing.T) {
	got := evalPrStr(t, `(clojure.data.json/read-str (clojure.data.json/write-str {:a 1}))`)
	if !strings.Contains(got, ":a") || !strings.Contains(got, "1") {
		t.Errorf("got %s", got)
	}
}

func TestClojureTestDeftestRunTests(t *testing.T) {
	rt := New()
	src := `
(require (quote clojure.test))
(deftest arith-test
  (is (= 4 (+ 2 2))))
(clojure.test/run-tests)
`
	_, err := rt.EvalString(src)
	if err != nil {
		t.Fatalf("EvalString: %v", err)
	}
}

func TestClojureTestAreAndTesting(t *testing.T) {
	rt := New()
	src := `
(require (quote clojure.test))
(deftest are-test
  (testing "addition"
    (are [x y] (= x y)
      4 (+ 2 2)
      9 (+ 4 5))))
(clojure.test/run-tests)
`
	_, err := rt.EvalString(src)
	if err != nil {
		t.Fatalf("EvalString: %v", err)
	}
}

func TestUUIDTaggedLiteral(t *testing.T) {
	got := evalStr(t, `#uuid "550e8400-e29b-41d4-a716-446655440000"`)
	if s, ok := got.(value.String); !ok || string(s) != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("got %#v", got)
	}
}

func TestInstTaggedLiteral(t *testing.T) {
	got := evalStr(t, `#inst "2024-01-01T00:00:00.000Z"`)
	ho, ok := got.(*value.HostObject)
	if !ok || ho.Tag != "inst" {
		t.Fatalf("got %#v, want *value.HostObject{Tag: \"inst\"}", got)
	}
}

func TestIsIncompleteInput(t *testing.T) {
	rt := New()
	_, err := rt.ReadAll("(+ 1 2")
	if err == nil {
		t.Fatal("expected an error reading an unterminated list")
	}
	if !IsIncompleteInput(err) {
		t.Errorf("IsIncompleteInput(%v) = false, want true", err)
	}
}

func TestLetStarAndFnStar(t *testing.T) {
	got := evalPrStr(t, `(let* [f (fn* [x y] (+ x y))] (f 3 4))`)
	if got != "7" {
		t.Errorf("got %s, want 7", got)
	}
}

func TestLoopStarRecur(t *testing.T) {
	got := evalPrStr(t, `(loop* [n 5 acc 1] (if (= n 0) acc (recur (dec n) (* acc n))))`)
	if got != "120" {
		t.Errorf("got %s, want 120", got)
	}
}

func TestDestructuring(t *testing.T) {
	got := evalPrStr(t, `(let* [{:keys [a b]} {:a 1 :b 2}] (+ a b))`)
	if got != "3" {
		t.Errorf("got %s, want 3", got)
	}
}

func TestTryCatchFinally(t *testing.T) {
	got := evalPrStr(t, `(let* [log (atom [])]
  (do
    (try
      (swap! log conj :try)
      (throw (ex-info "boom" {}))
      (catch Exception e
        (swap! log conj :catch))
      (finally
        (swap! log conj :finally)))
    @log))`)
	if got != "[:try :catch :finally]" {
		t.Errorf("got %s, want [:try :catch :finally]", got)
	}
}

func TestLazySeqTake(t *testing.T) {
	got := evalPrStr(t, `(take 5 (iterate inc 0))`)
	if got != "(0 1 2 3 4)" {
		t.Errorf("got %s, want (0 1 2 3 4)", got)
	}
}

func TestClformatDirectives(t *testing.T) {
	got := evalStr(t, `(cl-format nil "~A and ~A" 1 2)`)
	if s, ok := got.(value.String); !ok || string(s) != "1 and 2" {
		t.Errorf("got %#v, want \"1 and 2\"", got)
	}
}

func TestIsIncompleteInputRejectsRealSyntaxError(t *testing.T) {
	rt := New()
	_, err := rt.ReadAll(")")
	if err == nil {
		t.Fatal("expected an error reading a stray close paren")
	}
	if IsIncompleteInput(err) {
		t.Errorf("IsIncompleteInput(%v) = true, want false", err)
	}
}
