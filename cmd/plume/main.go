package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/plume-lang/plume"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	root := &cobra.Command{
		Use:   "plume [script-file ...]",
		Short: "Plume TCL interpreter",
		Long:  "Runs Plume scripts, or starts an interactive session when no files are given.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			i := newInterp()
			defer i.Close()
			if len(args) > 0 {
				return runFiles(i, args)
			}
			if term.IsTerminal(int(os.Stdin.Fd())) {
				runEditorREPL(i)
				return nil
			}
			return runStdin(i)
		},
	}

	evalCmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a script given on the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i := newInterp()
			defer i.Close()
			result, err := i.Eval(strings.Join(args, " "))
			if err != nil {
				return evalFailure(err)
			}
			if result.String() != "" {
				fmt.Println(result.String())
			}
			return nil
		},
	}

	parseCmd := &cobra.Command{
		Use:   "parse <script-file>",
		Short: "Check a script for syntax errors without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			i := newInterp()
			defer i.Close()
			switch pr := i.Parse(string(src)); pr.Status {
			case plume.ParseOK:
				fmt.Println("ok")
				return nil
			case plume.ParseIncomplete:
				return fmt.Errorf("incomplete: %s", pr.Message)
			default:
				return fmt.Errorf("syntax error: %s", pr.Message)
			}
		},
	}

	root.AddCommand(evalCmd, parseCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newInterp builds an interpreter with the host-side commands scripts
// expect from a shell.
func newInterp() *plume.Interp {
	i := plume.New()
	i.RegisterCommand("puts", cmdPuts)
	return i
}

func cmdPuts(i *plume.Interp, cmd *plume.Obj, args []*plume.Obj) plume.Result {
	out := io.Writer(os.Stdout)
	newline := true
	for len(args) > 0 {
		switch args[0].String() {
		case "-nonewline":
			newline = false
			args = args[1:]
		case "stderr":
			out = os.Stderr
			args = args[1:]
		case "stdout":
			args = args[1:]
		default:
			goto write
		}
	}
write:
	if len(args) != 1 {
		return plume.Errorf("wrong # args: should be \"puts ?-nonewline? ?channel? string\"")
	}
	if newline {
		fmt.Fprintln(out, args[0].String())
	} else {
		fmt.Fprint(out, args[0].String())
	}
	return plume.OK("")
}

func runFiles(i *plume.Interp, paths []string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := i.Eval(string(src)); err != nil {
			return evalFailure(err)
		}
	}
	return nil
}

func runStdin(i *plume.Interp) error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	result, err := i.Eval(string(src))
	if err != nil {
		return evalFailure(err)
	}
	if result.String() != "" {
		fmt.Println(result.String())
	}
	return nil
}

// evalFailure prints the accumulated stack trace when one exists, then
// reports the bare message as the command error.
func evalFailure(err error) error {
	if ee, ok := err.(*plume.EvalError); ok && ee.Info != "" {
		fmt.Fprintln(os.Stderr, ee.Info)
	}
	return err
}

// runREPL reads commands interactively, continuing the prompt while the
// input is syntactically incomplete.
func runREPL(i *plume.Interp) {
	scanner := bufio.NewScanner(os.Stdin)
	var inputBuffer string

	for {
		if inputBuffer == "" {
			fmt.Print("% ")
		} else {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if inputBuffer != "" {
			inputBuffer += "\n" + line
		} else {
			inputBuffer = line
		}

		pr := i.Parse(inputBuffer)
		if pr.Status == plume.ParseIncomplete {
			continue
		}
		if pr.Status == plume.ParseError {
			fmt.Fprintf(os.Stderr, "error: %s\n", pr.Message)
			inputBuffer = ""
			continue
		}

		result, err := i.Eval(inputBuffer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		} else if result.String() != "" {
			fmt.Println(result.String())
		}
		inputBuffer = ""
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
	}
}
