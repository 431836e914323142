// Package replcfg interns the process-wide dynamic vars of spec.md section
// 6.4 that need a concrete Go-level default, mirroring the teacher's
// internal/config: a small set of package-level defaults read once at
// bootstrap, rather than a flags-parsing struct (this core has no CLI of
// its own -- spec.md section 6.5 leaves that to the host).
package replcfg

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/clojurewasm/corelisp/internal/runtime"
	"github.com/clojurewasm/corelisp/internal/value"
)

// IsTerminalStdout reports whether *out*'s underlying fd is a real terminal,
// the same isatty idiom the teacher's term builtins use to decide whether to
// color/wrap output at all; the REPL error renderer (section 7) uses this to
// decide whether a triaged error gets ANSI highlighting.
func IsTerminalStdout() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// DefaultRightMargin is spec.md section 6.4's pinned default for
// *print-right-margin*; it does not vary with actual terminal width.
func DefaultRightMargin() value.Value {
	return value.Int(72)
}

// Install interns every env/runtime var spec.md section 6.4 lists beyond
// *ns* (wired in internal/builtins/ns.go, kept in sync with rt.Current())
// and *in*/*out*/*err* (wired in internal/builtins/print.go, holding real
// os.Stdin/Stdout/Stderr).
func Install(core *runtime.Namespace) {
	dynamic := func(name string, root value.Value) {
		v := core.Intern(name)
		v.SetDynamic(true)
		v.BindRoot(root)
	}

	dynamic("*print-meta*", value.Bool(false))
	dynamic("*print-length*", value.NilValue)
	dynamic("*print-level*", value.NilValue)
	dynamic("*print-readably*", value.Bool(true))
	dynamic("*print-pretty*", value.Bool(true))
	dynamic("*print-right-margin*", DefaultRightMargin())
	dynamic("*print-miser-width*", value.Int(40))
	dynamic("*print-base*", value.Int(10))
	dynamic("*print-radix*", value.Bool(false))
	dynamic("*print-suppress-namespaces*", value.Bool(false))
	dynamic("*print-pprint-dispatch*", value.NilValue)
	dynamic("*command-line-args*", value.NilValue)
	dynamic("*data-readers*", value.EmptyArrayMap())
	dynamic("*default-data-reader-fn*", value.NilValue)
	dynamic("*math-context*", value.NilValue)
	dynamic("*math-context-precision*", value.NilValue)
	dynamic("*assert*", value.Bool(true))
	dynamic("*warn-on-reflection*", value.Bool(false))
	dynamic("*file*", value.String("NO_SOURCE_PATH"))
	dynamic("*source-path*", value.String("NO_SOURCE_PATH"))
	dynamic("*repl*", value.Bool(false))

	// *1/*2/*3 and *e are clojure.main's names for the last three REPL
	// results and the last REPL exception; they are interned here bound to
	// nil, and the REPL loop in cmd/clj does not update them.
	dynamic("*1", value.NilValue)
	dynamic("*2", value.NilValue)
	dynamic("*3", value.NilValue)
	dynamic("*e", value.NilValue)
}
