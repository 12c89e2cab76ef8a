// Command calcctl is the external CLI collaborator spec.md names but
// scopes out of the core: it loads a document (here, a fixtures-shaped
// YAML file — the same format internal/fixtures already reads for
// tests), drives calcengine.Evaluate, and implements the handful of
// verbs that only need to call the core repeatedly or report on its
// output. Flag-based subcommand dispatch, one function per verb,
// mirrors the teacher's own cmd/ entry points rather than reaching for
// a CLI framework.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/planforge/calcengine"
	"github.com/planforge/calcengine/internal/auditlog"
	"github.com/planforge/calcengine/internal/docschema"
	"github.com/planforge/calcengine/internal/fixtures"
	"github.com/planforge/calcengine/internal/funcspec"
	"github.com/planforge/calcengine/internal/scheduler"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "validate":
		err = runValidate(args)
	case "calculate":
		err = runCalculate(args)
	case "audit":
		err = runAudit(args)
	case "schema":
		err = runSchema(args)
	case "watch":
		err = runWatch(args)
	case "export", "import", "upgrade", "sensitivity", "goal-seek", "variance", "compare":
		err = fmt.Errorf("calcctl: %q is not yet implemented in this build", cmd)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "calcctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: calcctl <validate|calculate|audit|export|import|upgrade|watch|schema|sensitivity|goal-seek|variance|compare> [args]")
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	version := fs.String("version", "1.0.0", "document schema version")
	path := fs.String("file", "", "path to the document")
	fs.Parse(args)

	if err := docschema.CheckVersion(*version); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("validate: -file is required")
	}
	if _, err := fixtures.Load(*path); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func runCalculate(args []string) error {
	fs := flag.NewFlagSet("calculate", flag.ExitOnError)
	path := fs.String("file", "", "path to the document")
	dryRun := fs.Bool("dry-run", false, "parse and build the model without writing results")
	fs.Parse(args)

	if *path == "" {
		return fmt.Errorf("calculate: -file is required")
	}
	f, err := fixtures.Load(*path)
	if err != nil {
		return err
	}
	m, err := f.BuildModel()
	if err != nil {
		return err
	}
	if *dryRun {
		fmt.Println("model built, evaluation skipped (-dry-run)")
		return nil
	}
	if err := calcengine.Evaluate(context.Background(), m); err != nil {
		return err
	}
	for _, name := range m.Scalars.Keys() {
		s, _ := m.Scalars.Get(name)
		fmt.Printf("%s = %v\n", name, s.Value)
	}
	return nil
}

func runAudit(args []string) error {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	path := fs.String("file", "", "path to the document")
	logPath := fs.String("log", "calcctl_audit.db", "audit trail database path")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("audit: requires exactly one variable name argument")
	}
	variable := fs.Arg(0)

	f, err := fixtures.Load(*path)
	if err != nil {
		return err
	}
	m, err := f.BuildModel()
	if err != nil {
		return err
	}

	runID := calcengine.NewRunID()
	evalErr := calcengine.Evaluate(context.Background(), m)

	logDB, err := auditlog.Open(*logPath)
	if err != nil {
		return err
	}
	defer logDB.Close()

	ctx := context.Background()
	if evalErr != nil {
		_ = logDB.Record(ctx, runID, variable, "", true, evalErr.Error())
		return evalErr
	}

	s, ok := m.Scalars.Get(variable)
	if !ok {
		return fmt.Errorf("audit: unknown scalar %q", variable)
	}
	_ = logDB.Record(ctx, runID, variable, fmt.Sprintf("%v", s.Value), false, "")

	history, err := logDB.History(ctx, variable)
	if err != nil {
		return err
	}
	fmt.Printf("%s = %v (run %s)\n", variable, s.Value, runID)

	deps, err := calcengine.Dependencies(m, variable)
	if err != nil {
		return err
	}
	if len(deps) > 0 {
		fmt.Println("dependencies:")
		for _, dep := range deps {
			fmt.Printf("  %s = %s\n", dep, describeEntity(m, dep))
		}
	}

	for _, h := range history {
		fmt.Printf("  %s  %s  failed=%v  %s\n", h.RanAt, h.RunID, h.Failed, h.ValueText)
	}
	return nil
}

// describeEntity renders a dependency's current value for the audit
// trace: a scalar prints its Value directly, a table.column prints every
// row bracketed the way a Value array does.
func describeEntity(m *calcengine.Model, name string) string {
	if s, ok := m.Scalars.Get(name); ok {
		return s.Value.String()
	}
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		tblName, col := name[:dot], name[dot+1:]
		if t, ok := m.Tables.Get(tblName); ok {
			if c, ok := t.Columns.Get(col); ok {
				rows := make([]string, c.Len())
				for i := range rows {
					v, err := c.At(i)
					if err != nil {
						rows[i] = "?"
						continue
					}
					rows[i] = v.String()
				}
				return "[" + strings.Join(rows, ", ") + "]"
			}
		}
	}
	return "?"
}

func runSchema(args []string) error {
	fmt.Println("supported document versions:", docschema.SupportedVersions)
	fmt.Println("functions:")
	for _, name := range funcspec.Names() {
		fmt.Println(" ", name)
	}
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	path := fs.String("file", "", "path to the document")
	cron := fs.String("cron", "*/5 * * * * *", "cron expression for the poll interval (seconds enabled)")
	fs.Parse(args)
	if *path == "" {
		return fmt.Errorf("watch: -file is required")
	}

	w, err := scheduler.NewWatcher(*path, *cron, runnerFunc(func(ctx context.Context, p string) error {
		f, err := fixtures.Load(p)
		if err != nil {
			return err
		}
		m, err := f.BuildModel()
		if err != nil {
			return err
		}
		if err := calcengine.Evaluate(ctx, m); err != nil {
			return err
		}
		log.Printf("watch: re-evaluated %s", p)
		return nil
	}))
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	select {}
}

type runnerFunc func(ctx context.Context, path string) error

func (f runnerFunc) Run(ctx context.Context, path string) error { return f(ctx, path) }
