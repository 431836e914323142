// Command clj is the CLI entry point: given a file argument it loads and
// evaluates that file; with none it starts a REPL, both driven through
// pkg/clj the way the teacher's cmd/funxy/main.go is a thin wrapper around
// pkg/cli.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/clojurewasm/corelisp/internal/replcfg"
	"github.com/clojurewasm/corelisp/internal/value"
	"github.com/clojurewasm/corelisp/pkg/clj"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		if err := runFile(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, clj.FormatError(err))
			os.Exit(1)
		}
		return
	}
	repl()
}

func runFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rt := clj.New()
	_, err = rt.EvalString(string(src))
	return err
}

func repl() {
	rt := clj.New()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	prompt := func() {
		if replcfg.IsTerminalStdout() {
			fmt.Fprint(os.Stdout, rt.Env.Current().Name, "=> ")
		}
	}

	var buf string
	prompt()
	for scanner.Scan() {
		buf += scanner.Text() + "\n"
		forms, err := rt.ReadAll(buf)
		if err != nil && clj.IsIncompleteInput(err) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, clj.FormatError(err))
			buf = ""
			prompt()
			continue
		}
		buf = ""
		var last value.Value = value.NilValue
		for _, f := range forms {
			last, err = rt.EvalForm(f)
			if err != nil {
				fmt.Fprintln(os.Stderr, clj.FormatError(err))
				last = nil
				break
			}
		}
		if last != nil {
			fmt.Fprintln(os.Stdout, value.PrStr(last))
		}
		prompt()
	}
}
