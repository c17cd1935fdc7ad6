// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/wphooks/ast"
	"github.com/luthersystems/wphooks/astutil"
	"github.com/luthersystems/wphooks/contract"
	"github.com/luthersystems/wphooks/diagnostic"
	"github.com/luthersystems/wphooks/semtype"
)

// AnalyzerHookContract reports the issues found while checking hook calls
// against the hook registry: unknown hooks, kind mismatches, deprecated
// hooks, callbacks registered with an impossible argument count, and
// corpus documentation errors.
var AnalyzerHookContract = &Analyzer{
	Name:     "hook-contract",
	Doc:      "Report hook calls that do not match the known hooks.\n\nUnknown hook names, actions used as filters and the reverse, deprecated hooks, and add_action calls whose default argument count does not fit the hook are reported. Invalid corpus documentation is reported at the first hook call after it was loaded.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, issue := range pass.Issues {
			sev := SeverityError
			if issue.Kind.Severity() == diagnostic.SeverityWarning {
				sev = SeverityWarning
			}
			pass.Report(Diagnostic{
				Pos:      Position{File: issue.File, Line: issue.Line},
				Message:  issue.Message,
				Severity: sev,
				Code:     issue.Kind.String(),
			})
		}
		return nil
	},
}

// AnalyzerCallArguments checks the arguments of hook calls against the
// parameters their hook expects.
var AnalyzerCallArguments = &Analyzer{
	Name:     "call-arguments",
	Doc:      "Check argument counts and types of hook calls.\n\nA do_action or apply_filters call must pass the arguments the hook is documented with, and an add_action or add_filter call may not ask for more arguments than the hook passes. Only argument types that can be determined from literals are checked.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, site := range pass.Sites {
			if site.Contract == nil || len(site.Contract.Params) == 0 {
				continue
			}
			checkArguments(pass, site.Call, site.Contract.Params)
		}
		return nil
	},
}

func checkArguments(pass *Pass, c contract.Call, params []contract.Param) {
	bound := make([]*ast.Node, len(params))
	positional := 0
	for _, a := range c.Node.Args {
		if a.Unpack {
			// Spread arguments cannot be counted.
			return
		}
		if a.Name == "" {
			if positional < len(bound) {
				bound[positional] = a.Value
			}
			positional++
			continue
		}
		for i, p := range params {
			if p.Name == a.Name && bound[i] == nil {
				bound[i] = a.Value
				break
			}
		}
	}

	line := astutil.LineOf(c.Node)
	if positional > len(params) {
		pass.Reportf(line, "too many arguments to %s: %d passed, at most %d accepted",
			c.Function, positional, len(params))
	}
	required := 0
	for _, p := range params {
		if !p.Optional {
			required++
		}
	}
	for i, p := range params {
		if bound[i] == nil && !p.Optional {
			pass.Reportf(line, "too few arguments to %s: at least %d required", c.Function, required)
			break
		}
	}

	for i, p := range params {
		if bound[i] == nil || p.Type == nil || p.Name == "callback" {
			continue
		}
		got := pass.Oracle.TypeOf(bound[i])
		if got == nil || semtype.ContainedBy(got, p.Type) {
			continue
		}
		pass.Reportf(max(astutil.LineOf(bound[i]), line), "argument %d ($%s) of %s expects %s, %s given",
			i+1, p.Name, c.Function, p.Type, got)
	}
}

// AnalyzerCallbackSignature checks closures registered with add_action or
// add_filter against the arguments their hook passes.
var AnalyzerCallbackSignature = &Analyzer{
	Name:     "callback-signature",
	Doc:      "Check closures registered as hook callbacks.\n\nThe callback may not require more parameters than accepted_args passes, its declared parameter types must accept the hook's argument types, and a filter callback's declared return type must fit the filtered value. Named function and method callbacks are not checked.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		for _, site := range pass.Sites {
			if site.Contract == nil || site.Contract.Callback == nil {
				continue
			}
			cb := astutil.ArgValue(site.Call.Node, 1, "callback")
			sig, ok := contract.SignatureOf(cb)
			if !ok {
				continue
			}
			line := max(astutil.LineOf(cb), astutil.LineOf(site.Call.Node))
			for _, problem := range contract.CheckCallback(site.Contract.Callback, sig) {
				pass.Reportf(line, "%s callback: %s", site.Call.Function, problem)
			}
		}
		return nil
	},
}

// AnalyzerUncheckedCall warns about hook calls that could not be checked,
// typically because the hook name is built from an expression that has no
// static form.
var AnalyzerUncheckedCall = &Analyzer{
	Name:     "unchecked-call",
	Doc:      "Warn about hook calls that could not be checked.\n\nHook names built from expressions such as ternaries or match arms have no static form, so neither the hook nor its arguments can be checked.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		for _, site := range pass.Sites {
			if site.Err == nil {
				continue
			}
			pass.ReportWithNotes(Diagnostic{
				Pos:     Position{File: site.Call.File, Line: astutil.LineOf(site.Call.Node)},
				Message: fmt.Sprintf("%s call could not be checked: %v", site.Call.Function, site.Err),
			}, "use a literal hook name or assign the name to a variable first")
		}
		return nil
	},
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
