package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/calderdb/calder/sql"
	"github.com/calderdb/calder/sql/catalog"
	"github.com/calderdb/calder/sql/plan"
	"github.com/calderdb/calder/sql/resolve"
	"github.com/calderdb/calder/sql/rewrite"
	"github.com/calderdb/calder/sql/trace"
)

func main() {
	var queryStr string
	var verbose bool
	var maxIter int
	var help bool

	flag.StringVar(&queryStr, "query", "", "SQL SELECT to resolve and rewrite")
	flag.BoolVar(&verbose, "verbose", false, "verbose mode (show rewrite events)")
	flag.IntVar(&maxIter, "max-iter", 100, "iteration cap for fixed-point batches")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Explains how the rewrite engine simplifies a logical query plan.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -query 'SELECT name FROM (SELECT * FROM users) AS u WHERE id > 3'\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -verbose -query 'SELECT * FROM users WHERE true AND age >= 21 LIMIT 10'\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}
	if queryStr == "" && flag.NArg() > 0 {
		queryStr = flag.Arg(0)
	}
	if queryStr == "" {
		queryStr = "SELECT name, total FROM (SELECT * FROM (SELECT * FROM orders) AS inner_q) AS outer_q WHERE true AND total >= 100 LIMIT 20"
		fmt.Printf("No query given, using demo query:\n  %s\n\n", queryStr)
	}

	cat := demoCatalog()
	resolver := resolve.NewResolver(cat, "demo")

	resolved, err := resolver.Resolve(queryStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Resolved plan:")
	fmt.Print(plan.Format(resolved))

	var tracer *trace.Collector
	if verbose {
		tracer = trace.NewCollector(trace.ConsoleHandler())
	}

	executor := rewrite.NewExecutor(rewrite.DefaultBatches(maxIter), tracer)
	optimized, report, err := executor.Execute(resolved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rewrite: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nOptimized plan:")
	fmt.Print(plan.Format(optimized))

	if !report.Converged() {
		for _, nc := range report.NonConvergence {
			fmt.Fprintf(os.Stderr, "warning: %s\n", nc)
		}
	}

	fmt.Println("\nOutput schema:")
	fmt.Println(plan.NewSchemaFormatter().FormatSchema(optimized.Schema()))
}

// demoCatalog registers the tables the demo queries run against
func demoCatalog() *catalog.Catalog {
	cat := catalog.NewCatalog()
	if err := cat.CreateDatabase("demo"); err != nil {
		panic(err)
	}
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(cat.CreateTable("demo", "users", sql.Schema{
		{Name: "id", Type: sql.TypeInt},
		{Name: "name", Type: sql.TypeString},
		{Name: "age", Type: sql.TypeInt},
	}))
	must(cat.CreateTable("demo", "orders", sql.Schema{
		{Name: "id", Type: sql.TypeInt},
		{Name: "user_id", Type: sql.TypeInt},
		{Name: "name", Type: sql.TypeString},
		{Name: "total", Type: sql.TypeFloat},
	}))
	return cat
}
