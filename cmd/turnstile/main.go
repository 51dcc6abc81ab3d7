/*
Turnstile starts an interactive propositional-logic session.

It reads formulas and proofs from the command line (or from a file for the
"check" subcommand) and reports parse results, truth tables, and proof
validation using the turnstile engine.

Usage:

	turnstile [flags]
	turnstile [flags] SUBCOMMAND [ARGS...]

The flags are:

	-v, --version
		Give the current version of turnstile and then exit.

	-m, --mode MODE
		Print formulas using the given mode, either "ascii" or "utf8".
		Defaults to "ascii".

	-l, --library PATH
		Load the TOML theorem library or manifest at PATH before starting.
		Makes its theorems available to the "theorem" proof rule and to the
		"theorems" subcommand.

If a subcommand is given on the command line, it is run once and the program
exits. Otherwise an interactive session is started, reading one subcommand
invocation per line until end of input or the "quit" command.

The subcommands are:

	parse FORMULA
		Parse FORMULA and print it back in both ASCII and UTF-8 form.

	print FORMULA
		Parse FORMULA and print it back in the configured mode.

	table FORMULA
		Parse FORMULA and print its full truth table, along with whether it
		is a tautology, a contradiction, or satisfiable.

	check FILE
		Load a proof from the JSON file at FILE and validate it, reporting
		the first error found for each invalid step.

	theorems
		List the theorems in the loaded library.

	build
		Interactively compose a proof line by line (only available in an
		interactive session), then check it. Enter one step per line as
		"FORMULA | RULE | JUST1,JUST2,... | DEPTH | THEOREM_ID" (THEOREM_ID
		may be omitted). Type "undo" to remove the last entered step,
		"redo" to restore it, "show" to print the steps entered so far, and
		"done" to run the check.

	quit
		Exit an interactive session.
*/
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/dekarrin/turnstile/internal/library"
	"github.com/dekarrin/turnstile/internal/logic"
	"github.com/dekarrin/turnstile/internal/proof"
	"github.com/dekarrin/turnstile/internal/util"
	"github.com/dekarrin/turnstile/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates an unsuccessful program execution due to
	// invalid flags or arguments.
	ExitUsageError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the session.
	ExitInitError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	flagMode    = pflag.StringP("mode", "m", "ascii", "Formula print mode: ascii or utf8")
	flagLibrary = pflag.StringP("library", "l", "", "Load the theorem library at this path")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	mode, err := parseMode(*flagMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	var lib *library.Library
	if *flagLibrary != "" {
		lib, err = library.Load(*flagLibrary)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: could not load library: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	sess := &session{mode: mode, lib: lib, out: os.Stdout}

	args := pflag.Args()
	if len(args) > 0 {
		if err := sess.runLine(strings.Join(args, " ")); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitUsageError
		}
		return
	}

	if err := sess.runInteractive(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
	}
}

func parseMode(s string) (logic.Mode, error) {
	switch strings.ToLower(s) {
	case "", "ascii":
		return logic.ModeASCII, nil
	case "utf8":
		return logic.ModeUTF8, nil
	default:
		return logic.ModeASCII, fmt.Errorf("mode: must be one of 'ascii' or 'utf8', got %q", s)
	}
}

// session holds the state of one turnstile CLI session: the configured print
// mode, the loaded theorem library (may be nil), and where output goes.
type session struct {
	mode logic.Mode
	lib  *library.Library
	out  io.Writer
	rl   *readline.Instance // nil outside of an interactive session
}

func (s *session) runInteractive() error {
	rl, err := readline.NewEx(&readline.Config{Prompt: "turnstile> "})
	if err != nil {
		return fmt.Errorf("create readline config: %w", err)
	}
	defer rl.Close()
	s.rl = rl

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			return nil
		}

		if err := s.runLine(line); err != nil {
			fmt.Fprintf(s.out, "ERROR: %s\n", err.Error())
		}
	}
}

func (s *session) runLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd {
	case "parse":
		return s.cmdParse(rest)
	case "print":
		return s.cmdPrint(rest)
	case "table":
		return s.cmdTable(rest)
	case "check":
		return s.cmdCheck(rest)
	case "theorems":
		return s.cmdTheorems()
	case "build":
		return s.cmdBuild()
	default:
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
}

func (s *session) cmdParse(src string) error {
	if src == "" {
		return fmt.Errorf("parse: requires a formula argument")
	}
	f, perr := logic.Parse(src)
	if perr != nil {
		return fmt.Errorf("parse: %s", perr.Error())
	}
	fmt.Fprintf(s.out, "ASCII: %s\nUTF8:  %s\n", logic.Print(f, logic.ModeASCII), logic.Print(f, logic.ModeUTF8))
	return nil
}

func (s *session) cmdPrint(src string) error {
	if src == "" {
		return fmt.Errorf("print: requires a formula argument")
	}
	f, perr := logic.Parse(src)
	if perr != nil {
		return fmt.Errorf("print: %s", perr.Error())
	}
	fmt.Fprintln(s.out, logic.Print(f, s.mode))
	return nil
}

func (s *session) cmdTable(src string) error {
	if src == "" {
		return fmt.Errorf("table: requires a formula argument")
	}
	f, perr := logic.Parse(src)
	if perr != nil {
		return fmt.Errorf("table: %s", perr.Error())
	}

	table := logic.Table(f)

	data := [][]string{append(append([]string{}, table.Variables...), "Result")}
	for _, row := range table.Rows {
		rowVals := make([]string, 0, len(table.Variables)+1)
		for _, v := range table.Variables {
			rowVals = append(rowVals, strconv.FormatBool(row.Inputs[v]))
		}
		rowVals = append(rowVals, strconv.FormatBool(row.Result))
		data = append(data, rowVals)
	}

	tableOpts := rosed.Options{
		TableHeaders:             true,
		NoTrailingLineSeparators: true,
	}

	output := rosed.Edit(logic.Print(f, s.mode)).
		InsertTableOpts(1, data, 80, tableOpts).
		String()

	fmt.Fprintln(s.out, output)
	fmt.Fprintf(s.out, "tautology=%t contradiction=%t satisfiable=%t\n",
		table.IsTautology, table.IsContradiction, table.IsSatisfiable)
	return nil
}

// proofFile is the JSON shape read by the "check" subcommand.
type proofFile struct {
	Premises   []string        `json:"premises"`
	Conclusion string          `json:"conclusion"`
	Steps      []proofFileStep `json:"steps"`
}

type proofFileStep struct {
	ID            string   `json:"id"`
	Formula       string   `json:"formula"`
	Rule          string   `json:"rule"`
	Justification []string `json:"justification,omitempty"`
	Depth         int      `json:"depth"`
	TheoremID     string   `json:"theorem_id,omitempty"`
}

func (s *session) cmdCheck(path string) error {
	if path == "" {
		return fmt.Errorf("check: requires a file path argument")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	defer f.Close()

	var pf proofFile
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&pf); err != nil {
		return fmt.Errorf("check: malformed proof file: %w", err)
	}

	premises := make([]logic.Formula, len(pf.Premises))
	for i, src := range pf.Premises {
		pr, perr := logic.Parse(src)
		if perr != nil {
			return fmt.Errorf("check: premise %d: %s", i+1, perr.Error())
		}
		premises[i] = pr
	}

	conclusion, perr := logic.Parse(pf.Conclusion)
	if perr != nil {
		return fmt.Errorf("check: conclusion: %s", perr.Error())
	}

	steps := make(proof.Proof, len(pf.Steps))
	for i, st := range pf.Steps {
		stepFormula, perr := logic.Parse(st.Formula)
		if perr != nil {
			return fmt.Errorf("check: step %s: %s", st.ID, perr.Error())
		}
		steps[i] = proof.ProofStep{
			ID:            st.ID,
			Formula:       stepFormula,
			Rule:          proof.Rule(st.Rule),
			Justification: st.Justification,
			Depth:         st.Depth,
			TheoremID:     st.TheoremID,
		}
	}

	var lib proof.Library
	if s.lib != nil {
		lib = s.lib
	}

	result := proof.Check(steps, premises, conclusion, lib)

	if result.Valid && result.Complete {
		fmt.Fprintln(s.out, "VALID: proof establishes the conclusion")
		return nil
	}

	fmt.Fprintf(s.out, "INVALID: valid=%t complete=%t\n", result.Valid, result.Complete)
	for _, e := range result.Errors {
		fmt.Fprintf(s.out, "  step %s: [%s] %s\n", e.StepID, e.Code, e.Message)
	}
	return nil
}

func (s *session) cmdTheorems() error {
	if s.lib == nil {
		fmt.Fprintln(s.out, "no library loaded")
		return nil
	}

	theorems := s.lib.List()
	if len(theorems) == 0 {
		fmt.Fprintln(s.out, "library is empty")
		return nil
	}

	data := [][]string{{"ID", "Name", "Premises", "Conclusion"}}
	for _, t := range theorems {
		premiseStrs := make([]string, len(t.Premises))
		for i, p := range t.Premises {
			premiseStrs[i] = logic.Print(p, s.mode)
		}
		data = append(data, []string{
			t.ID,
			t.Name,
			strings.Join(premiseStrs, ", "),
			logic.Print(t.Conclusion, s.mode),
		})
	}

	tableOpts := rosed.Options{TableHeaders: true, NoTrailingLineSeparators: true}
	output := rosed.Edit("").InsertTableOpts(0, data, 100, tableOpts).String()
	fmt.Fprintln(s.out, output)
	return nil
}

// cmdBuild interactively composes a proof by accumulating one step line per
// entry into an undoable buffer, so a mistyped step can be backed out with
// "undo" without retyping the whole proof. Only available in interactive
// sessions, since it needs the readline instance to prompt line by line.
func (s *session) cmdBuild() error {
	if s.rl == nil {
		return fmt.Errorf("build: only available in an interactive session")
	}

	premisesLine, err := s.readBuildLine("premises (comma-separated, blank for none): ")
	if err != nil {
		return err
	}
	var premises []string
	if strings.TrimSpace(premisesLine) != "" {
		for _, p := range strings.Split(premisesLine, ",") {
			premises = append(premises, strings.TrimSpace(p))
		}
	}

	conclusion, err := s.readBuildLine("conclusion: ")
	if err != nil {
		return err
	}

	var buf util.UndoableStringBuilder
	var lineCount int

	fmt.Fprintln(s.out, "entering steps; one per line as FORMULA | RULE | JUST,... | DEPTH | THEOREM_ID")
	for {
		line, err := s.readBuildLine(fmt.Sprintf("step %d> ", lineCount+1))
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		switch strings.ToLower(line) {
		case "done":
			return s.runBuiltProof(premises, conclusion, buf.String())
		case "undo":
			buf.Undo()
			if lineCount > 0 {
				lineCount--
			}
			continue
		case "redo":
			buf.Redo()
			lineCount++
			continue
		case "show":
			fmt.Fprint(s.out, buf.String())
			continue
		case "":
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		lineCount++
	}
}

func (s *session) readBuildLine(prompt string) (string, error) {
	s.rl.SetPrompt(prompt)
	defer s.rl.SetPrompt("turnstile> ")
	return s.rl.Readline()
}

// runBuiltProof parses the pipe-delimited step lines accumulated by
// cmdBuild and checks the resulting proof.
func (s *session) runBuiltProof(premiseSrcs []string, conclusionSrc, stepLines string) error {
	premises := make([]logic.Formula, len(premiseSrcs))
	for i, src := range premiseSrcs {
		f, perr := logic.Parse(src)
		if perr != nil {
			return fmt.Errorf("build: premise %d: %s", i+1, perr.Error())
		}
		premises[i] = f
	}

	conclusion, perr := logic.Parse(conclusionSrc)
	if perr != nil {
		return fmt.Errorf("build: conclusion: %s", perr.Error())
	}

	var steps proof.Proof
	for i, line := range strings.Split(stepLines, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		step, err := parseBuildStep(fmt.Sprintf("%d", i+1), line)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		steps = append(steps, step)
	}

	var lib proof.Library
	if s.lib != nil {
		lib = s.lib
	}

	result := proof.Check(steps, premises, conclusion, lib)
	if result.Valid && result.Complete {
		fmt.Fprintln(s.out, "VALID: proof establishes the conclusion")
		return nil
	}

	fmt.Fprintf(s.out, "INVALID: valid=%t complete=%t\n", result.Valid, result.Complete)
	for _, e := range result.Errors {
		fmt.Fprintf(s.out, "  step %s: [%s] %s\n", e.StepID, e.Code, e.Message)
	}
	return nil
}

func parseBuildStep(id, line string) (proof.ProofStep, error) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 4 {
		return proof.ProofStep{}, fmt.Errorf("step %s: expected at least 4 fields separated by '|', got %d", id, len(parts))
	}

	f, perr := logic.Parse(parts[0])
	if perr != nil {
		return proof.ProofStep{}, fmt.Errorf("step %s formula: %s", id, perr.Error())
	}

	depth, err := strconv.Atoi(parts[3])
	if err != nil {
		return proof.ProofStep{}, fmt.Errorf("step %s depth: %w", id, err)
	}

	var justification []string
	if parts[2] != "" {
		for _, j := range strings.Split(parts[2], ",") {
			justification = append(justification, strings.TrimSpace(j))
		}
	}

	var theoremID string
	if len(parts) > 4 {
		theoremID = parts[4]
	}

	return proof.ProofStep{
		ID:            id,
		Formula:       f,
		Rule:          proof.Rule(parts[1]),
		Justification: justification,
		Depth:         depth,
		TheoremID:     theoremID,
	}, nil
}
