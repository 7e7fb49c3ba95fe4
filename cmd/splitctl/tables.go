package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"go.splitkit.dev/core/keyset"
	"go.splitkit.dev/core/metrics"
	"go.splitkit.dev/core/split"
	"go.splitkit.dev/core/tableadmin"
)

var tablesCfg = new(struct {
	Admin tableadmin.Config `group:"Table-admin service" namespace:"admin" env-namespace:"ADMIN"`
})

type cmdTablesCreate struct {
	Spec  string       `long:"spec" required:"true" description:"Path of the YAML table specification"`
	Split split.Config `group:"Split" namespace:"split" env-namespace:"SPLIT"`
}

func (cmd *cmdTablesCreate) Execute(args []string) error {
	startup()
	prometheus.MustRegister(metrics.SplitCollectors()...)
	prometheus.MustRegister(metrics.AdminCollectors()...)

	var spec, err = readTableSpec(cmd.Spec)
	if err != nil {
		return err
	}
	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Compute split keys before the admin handle is opened: a failed
	// computation must not create or mutate any table.
	if len(args) != 0 {
		if spec.SplitKeys, err = split.Compute(ctx, cmd.Split,
			keyset.NewFileSet(afero.NewOsFs(), args...)); err != nil {
			return err
		}
	} else if cmd.Split.Regions > 1 {
		return errors.New("pre-splitting requires at least one key file")
	}

	admin, err := tableadmin.Open(tablesCfg.Admin)
	if err != nil {
		return err
	}
	defer admin.Close()

	return admin.CreateTable(ctx, spec)
}

type cmdTablesExists struct {
	Table  string   `long:"table" required:"true" description:"Name of the table"`
	Family []string `long:"family" short:"f" description:"Column family which must be present. May be repeated"`
}

func (cmd *cmdTablesExists) Execute([]string) error {
	startup()
	prometheus.MustRegister(metrics.AdminCollectors()...)

	var admin, err = tableadmin.Open(tablesCfg.Admin)
	if err != nil {
		return err
	}
	defer admin.Close()

	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ok, err := admin.TableExists(ctx, cmd.Table, cmd.Family...)
	if err != nil {
		return err
	}
	fmt.Println(ok)
	return nil
}

type cmdTablesSnapshot struct {
	Table string `long:"table" required:"true" description:"Name of the table"`
	Name  string `long:"name" description:"Name of the snapshot. Generated if not set"`
}

func (cmd *cmdTablesSnapshot) Execute([]string) error {
	startup()
	prometheus.MustRegister(metrics.AdminCollectors()...)

	var admin, err = tableadmin.Open(tablesCfg.Admin)
	if err != nil {
		return err
	}
	defer admin.Close()

	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	name, err := admin.Snapshot(ctx, cmd.Table, cmd.Name)
	if err != nil {
		return err
	}
	fmt.Println(name)
	return nil
}

// readTableSpec reads and validates the YAML table specification at path.
func readTableSpec(path string) (tableadmin.TableSpec, error) {
	var spec tableadmin.TableSpec

	var b, err = os.ReadFile(path)
	if err != nil {
		return spec, errors.WithMessage(err, "reading table spec")
	}
	if err = yaml.UnmarshalStrict(b, &spec); err != nil {
		return spec, errors.WithMessagef(err, "parsing table spec %s", path)
	}
	return spec, spec.Validate()
}
