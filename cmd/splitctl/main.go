package main

import (
	"github.com/jessevdk/go-flags"

	mbp "go.splitkit.dev/core/mainboilerplate"
)

const iniFilename = "splitctl.ini"

var baseCfg = new(struct {
	Log     mbp.LogConfig     `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Metrics mbp.MetricsConfig `group:"Metrics" namespace:"metrics" env-namespace:"METRICS"`
})

func main() {
	var parser = flags.NewParser(baseCfg, flags.Default)

	parser.LongDescription = `splitctl computes region split keys of large key sets, and drives the table-admin service to create pre-split tables and snapshots.

	See --help pages of each sub-command for documentation and usage examples.
	Optionally configure splitctl with a '` + iniFilename + `' file in the current working directory,
	or with '~/.config/splitkit/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
	the tool's current configuration.
	`

	mbp.AddPrintConfigCmd(parser, iniFilename)

	_ = mustAddCmd(parser.Command, "compute", "Compute region split keys", `
Compute reads row keys from newline-delimited key files, and prints the
ordered boundary keys which divide the key space into --split.regions ranges
of approximately equal cardinality.

Key files may be compressed, with the codec determined by file suffix
(.gz, .sz, .zst).

Examples:
  splitctl compute --split.regions 16 keys/part-*.gz
  splitctl compute --split.regions 4 -o json keys.txt
`, &cmdCompute{})

	var tables = mustAddCmd(parser.Command, "tables", "Interact with the table-admin service", "", tablesCfg)

	_ = mustAddCmd(tables, "create", "Create a pre-split table", `
Create computes region split keys from the given key files, and creates the
table described by the YAML --spec with those pre-split regions. Creation is
idempotent: an already-existing table is a no-op.

Without key files, the table is created un-split.

Examples:
  splitctl tables create --spec events.yaml --split.regions 16 keys/part-*.gz
`, &cmdTablesCreate{})

	_ = mustAddCmd(tables, "exists", "Check existence of a table", `
Exists prints whether the table exists. If required column families are
named and the table exists without one of them, exists fails loudly.
`, &cmdTablesExists{})

	_ = mustAddCmd(tables, "snapshot", "Take a table snapshot", `
Snapshot takes a snapshot of the table, printing the snapshot name. If no
--name is given, one is generated from the table name.
`, &cmdTablesSnapshot{})

	mbp.MustParseConfig(parser, iniFilename)
}

func mustAddCmd(cmd *flags.Command, name, short, long string, cfg interface{}) *flags.Command {
	cmd, err := cmd.AddCommand(name, short, long, cfg)
	mbp.Must(err, "failed to add command")
	return cmd
}

// startup initializes logging and metrics of an executing sub-command.
func startup() {
	mbp.InitLog(baseCfg.Log)
	mbp.InitMetrics(baseCfg.Metrics)
}
