package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
)

var (
	cli     = kingpin.New("todotxt", "Parse, format, sort and search todo.txt files")
	file    = cli.Flag("file", "Document name, relative to the storage base (TODOTXT_FILE)").Short('f').String()
	noColor = cli.Flag("no-color", "Disable colored output").Bool()
	remote  = cli.Flag("server", "Run document commands against a todotxt server at this URL").URL()

	// Line commands
	lexCmd  = cli.Command("lex", "Print the tokens of a line")
	lexLine = lexCmd.Arg("line", "todo.txt line").Required().String()

	parseCmd  = cli.Command("parse", "Parse a line and print it in canonical form")
	parseLine = parseCmd.Arg("line", "todo.txt line").Required().String()
	parseJSON = parseCmd.Flag("json", "Print the tokens and task as JSON").Bool()

	fmtCmd = cli.Command("fmt", "Rewrite lines read from stdin in canonical form")

	templateCmd = cli.Command("template", "Print the template line for a new task")

	lintCmd   = cli.Command("lint", "Report lines that are not valid todo.txt tasks")
	lintFiles = lintCmd.Arg("files", "Files to check").Required().ExistingFiles()

	// Document commands
	listCmd      = cli.Command("list", "List tasks matching all criteria").Alias("search")
	listCriteria = listCmd.Arg("criteria", "+project, @context or key:value").Strings()
	listStrict   = listCmd.Flag("strict", "Reject criteria that are not tags or key:value pairs").Bool()

	sortCmd    = cli.Command("sort", "Sort the document")
	sortDryRun = sortCmd.Flag("dry-run", "Print the diff without writing").Bool()

	addCmd  = cli.Command("add", "Append a task and sort the document")
	addText = addCmd.Arg("text", "Task text").Required().Strings()

	toggleCmd  = cli.Command("toggle", "Mark a task done or reopen it")
	toggleLine = toggleCmd.Arg("line", "1-based line number").Required().Int()

	priorityCmd       = cli.Command("priority", "Raise or lower a task's priority")
	priorityDirection = priorityCmd.Arg("direction", "up or down").Required().Enum("up", "down")
	priorityLine      = priorityCmd.Arg("line", "1-based line number").Required().Int()

	exportCmd      = cli.Command("export", "Export matching tasks as JSON or YAML")
	exportFormat   = exportCmd.Flag("format", "json or yaml").Default("json").Enum("json", "yaml")
	exportCriteria = exportCmd.Arg("criteria", "+project, @context or key:value").Strings()

	// Long-running commands
	serveCmd   = cli.Command("serve", "Serve the HTTP API")
	serveWatch = serveCmd.Flag("watch", "Sort the document whenever it changes on disk").Bool()

	watchCmd = cli.Command("watch", "Sort the document whenever it changes on disk")
)

func main() {
	command := kingpin.MustParse(cli.Parse(os.Args[1:]))
	if *noColor {
		color.NoColor = true
	}

	a, err := newApp()
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case lexCmd.FullCommand():
		err = a.lex(*lexLine)
	case parseCmd.FullCommand():
		err = a.parse(*parseLine, *parseJSON)
	case fmtCmd.FullCommand():
		err = a.format(os.Stdin)
	case templateCmd.FullCommand():
		fmt.Fprintln(a.out, a.service.Template())
	case lintCmd.FullCommand():
		err = a.lint(ctx, *lintFiles)
	case listCmd.FullCommand():
		err = a.list(ctx, *listCriteria, *listStrict)
	case sortCmd.FullCommand():
		err = a.sort(ctx, *sortDryRun)
	case addCmd.FullCommand():
		err = a.add(ctx, *addText)
	case toggleCmd.FullCommand():
		err = a.toggle(ctx, *toggleLine)
	case priorityCmd.FullCommand():
		err = a.priority(ctx, *priorityDirection, *priorityLine)
	case exportCmd.FullCommand():
		err = a.export(ctx, *exportFormat, *exportCriteria)
	case serveCmd.FullCommand():
		err = a.serve(ctx, *serveWatch)
	case watchCmd.FullCommand():
		err = a.watch(ctx)
	}
	if err != nil {
		slog.Error(command+" failed", "error", err)
		os.Exit(1)
	}
}
