package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"go.splitkit.dev/core/keys"
	"go.splitkit.dev/core/keyset"
	"go.splitkit.dev/core/metrics"
	"go.splitkit.dev/core/split"
)

type cmdCompute struct {
	Split  split.Config `group:"Split" namespace:"split" env-namespace:"SPLIT"`
	Format string       `long:"format" short:"o" choice:"table" choice:"json" choice:"yaml" default:"table" description:"Output format"`
}

func (cmd *cmdCompute) Execute(args []string) error {
	startup()
	prometheus.MustRegister(metrics.SplitCollectors()...)

	if len(args) == 0 {
		return errors.New("at least one key file is required")
	}
	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var splits, err = split.Compute(ctx, cmd.Split, keyset.NewFileSet(afero.NewOsFs(), args...))
	if err != nil {
		return err
	}
	return writeSplits(os.Stdout, splits, cmd.Format)
}

func writeSplits(w io.Writer, splits []keys.Key, format string) error {
	switch format {
	case "table":
		var table = tablewriter.NewWriter(w)
		table.Header("Region", "Start Key")

		for i, k := range splits {
			if err := table.Append([]string{strconv.Itoa(i + 1), k.String()}); err != nil {
				return err
			}
		}
		return table.Render()

	case "json":
		var enc = json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(splitStrings(splits))

	case "yaml":
		var b, err = yaml.Marshal(splitStrings(splits))
		if err == nil {
			_, err = w.Write(b)
		}
		return err

	default:
		return errors.Errorf("invalid output format (%s)", format)
	}
}

func splitStrings(splits []keys.Key) []string {
	var out = make([]string, len(splits))
	for i, k := range splits {
		out[i] = k.String()
	}
	return out
}
