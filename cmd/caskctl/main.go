// caskctl is a small command-line front end for caskdb. It only ever
// touches the database through caskdb's exported Engine operations: it
// carries no storage-engine logic of its own.
//
// Usage:
//
//	caskctl [--config path] <db-file> get <key>
//	caskctl [--config path] <db-file> set <key> <value>
//	caskctl [--config path] <db-file> del <key>
//	caskctl [--config path] <db-file> compact
//	caskctl [--config path] <db-file>            Open a REPL
//
// REPL commands:
//
//	get <key>
//	set <key> <value>
//	del <key>
//	compact
//	help
//	exit / quit
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/jpl-au/caskdb"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	flagSet := flag.NewFlagSet("caskctl", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	configPath := flagSet.String("config", "", "path to a JSONC config file")
	threshold := flagSet.Int64("compaction-threshold", 0, "override compaction threshold (bytes)")
	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	rest := flagSet.Args()
	if len(rest) < 1 {
		fmt.Fprintln(errOut, "caskctl: missing database file")
		return 2
	}
	dbPath := rest[0]
	cmdArgs := rest[1:]

	cfg, err := loadConfigFile(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	opts := cfg.toOptions()
	if *threshold > 0 {
		opts.CompactionThreshold = *threshold
	}

	e, err := caskdb.OpenWithOptions(dbPath, opts)
	if err != nil {
		fmt.Fprintf(errOut, "caskctl: open %s: %v\n", dbPath, err)
		return 1
	}
	defer e.Close()

	if len(cmdArgs) == 0 {
		return runRepl(e, out, errOut)
	}
	if err := dispatch(e, cmdArgs, out); err != nil {
		fmt.Fprintln(errOut, "caskctl:", err)
		return 1
	}
	return 0
}

// dispatch runs a single get/set/del/compact command.
func dispatch(e *caskdb.Engine, args []string, out io.Writer) error {
	switch args[0] {
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get <key>")
		}
		return doGet(e, args[1], out)
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("usage: set <key> <value>")
		}
		return e.Set([]byte(args[1]), []byte(args[2]))
	case "del":
		if len(args) != 2 {
			return fmt.Errorf("usage: del <key>")
		}
		existed, err := e.Del([]byte(args[1]))
		if err != nil {
			return err
		}
		if !existed {
			fmt.Fprintln(out, "(not found)")
		}
		return nil
	case "compact":
		return e.Compact()
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func doGet(e *caskdb.Engine, key string, out io.Writer) error {
	v, err := e.Get([]byte(key))
	if err != nil {
		return err
	}
	if v == nil {
		fmt.Fprintln(out, "(not found)")
		return nil
	}
	fmt.Fprintln(out, string(v))
	return nil
}

const replHelp = `  get <key>            Retrieve a value
  set <key> <value>    Store a value
  del <key>            Delete a key
  compact              Force a compaction now
  help                 Show this help
  exit / quit          Exit`

// runRepl opens an interactive line-editing session, as
// calvinalkan-agent-task's sloty CLI does for its cache file format.
func runRepl(e *caskdb.Engine, out, errOut io.Writer) int {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("caskctl> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return 0
			}
			fmt.Fprintln(errOut, "caskctl:", err)
			return 1
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "exit", "quit":
			return 0
		case "help":
			fmt.Fprintln(out, replHelp)
		default:
			if err := dispatch(e, fields, out); err != nil {
				fmt.Fprintln(errOut, "caskctl:", err)
			}
		}
	}
}
