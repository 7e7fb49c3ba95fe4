// Package tableadmin is a client of the table-management service: the
// collaborator owning table existence checks, creation of pre-split
// tables, and snapshots.
//
// An Admin is a capability handle over one configured endpoint. It's
// acquired with Open against an explicit Config, used, and must be
// Closed on every exit path, including failure:
//
//	var admin, err = tableadmin.Open(cfg)
//	if err != nil { ... }
//	defer admin.Close()
package tableadmin

import (
	"context"
	"net/http"
	"net/url"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"go.splitkit.dev/core/keepalive"
	"go.splitkit.dev/core/keys"
)

// Config configures the table-admin service client. It is explicit
// value state: operations needing a connection take an Admin opened
// from a Config, never ambient globals.
type Config struct {
	Endpoint  string        `long:"endpoint" env:"ENDPOINT" default:"http://localhost:9980" description:"Table-admin service endpoint"`
	Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"Timeout of a single admin request"`
	CacheSize int           `long:"cache-size" env:"CACHE_SIZE" default:"256" description:"Size of the table descriptor cache. If 0, caching is disabled"`
	CacheTTL  time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"1m" description:"Duration for which cached table descriptors remain valid"`
}

// Validate returns an error if the Config is malformed.
func (cfg Config) Validate() error {
	var ep, err = url.Parse(cfg.Endpoint)
	if err != nil {
		return errors.WithMessage(err, "endpoint")
	} else if ep.Scheme != "http" && ep.Scheme != "https" {
		return errors.Errorf("endpoint scheme must be http(s) (%s)", cfg.Endpoint)
	} else if ep.Host == "" {
		return errors.Errorf("endpoint is missing a host (%s)", cfg.Endpoint)
	} else if cfg.Timeout < 0 {
		return errors.Errorf("timeout cannot be negative (%s)", cfg.Timeout)
	} else if cfg.CacheSize < 0 {
		return errors.Errorf("cache-size cannot be negative (%d)", cfg.CacheSize)
	}
	return nil
}

// TableSpec describes a table to create, optionally pre-split at
// SplitKeys.
type TableSpec struct {
	// Name of the table.
	Name string `json:"name" yaml:"name"`
	// Families are the column families of the table. At least one is
	// required.
	Families []string `json:"families" yaml:"families"`
	// SplitKeys are the interior region boundaries the table is created
	// with, in non-decreasing order. Keys are passed verbatim; repeated
	// keys are tolerated (they create empty regions), matching the
	// degenerate-input policy of split.Compute.
	SplitKeys []keys.Key `json:"splitKeys,omitempty" yaml:"-"`
}

// Validate returns an error if the TableSpec is malformed.
func (s TableSpec) Validate() error {
	if s.Name == "" {
		return errors.New("table name is required")
	} else if len(s.Families) == 0 {
		return errors.Errorf("table %s requires at least one column family", s.Name)
	}
	for _, f := range s.Families {
		if f == "" {
			return errors.Errorf("table %s names an empty column family", s.Name)
		}
	}
	for i, k := range s.SplitKeys {
		if len(k) == 0 {
			return errors.Errorf("split key %d is empty", i)
		} else if i != 0 && k.Less(s.SplitKeys[i-1]) {
			return errors.Errorf("split keys are not in order (%q > %q)", s.SplitKeys[i-1], k)
		}
	}
	return nil
}

// ErrClosed is returned by operations of an Admin which has been Closed.
var ErrClosed = errors.New("admin handle is closed")

// Admin is a capability handle of the table-admin service.
type Admin struct {
	endpoint *url.URL
	hc       *http.Client
	cache    *descriptorCache
	closed   bool
}

// Open returns an Admin handle of the Config's endpoint. The caller
// must Close it when done.
func Open(cfg Config) (*Admin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var endpoint, _ = url.Parse(cfg.Endpoint)

	return &Admin{
		endpoint: endpoint,
		hc: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &http.Transport{DialContext: keepalive.DialerFunc},
		},
		cache: newDescriptorCache(cfg.CacheSize, cfg.CacheTTL),
	}, nil
}

// Close releases the Admin. Further operations return ErrClosed.
func (a *Admin) Close() error {
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	a.hc.CloseIdleConnections()
	return nil
}

// TableExists returns whether the table exists. If it does, but lacks
// any of the given column families, TableExists fails loudly rather
// than reporting a half-usable table.
func (a *Admin) TableExists(ctx context.Context, table string, families ...string) (bool, error) {
	if a.closed {
		return false, ErrClosed
	}
	var desc, ok = a.cache.get(table)
	if !ok {
		var err = a.do(ctx, opGetTable, http.MethodGet, "/v1/tables/"+table, nil, nil, &desc)
		if isNotFound(err) {
			return false, nil
		} else if err != nil {
			return false, errors.WithMessagef(err, "fetching descriptor of table %s", table)
		}
		a.cache.put(table, desc)
	}

	var missing []string
	for _, want := range families {
		if !desc.hasFamily(want) {
			missing = append(missing, want)
		}
	}
	if len(missing) != 0 {
		return true, errors.Errorf("table %s exists, but lacks required column families %v", table, missing)
	}
	return true, nil
}

// CreateTable creates the table described by the TableSpec, pre-split
// at its SplitKeys. Creation is idempotent: if the table already
// exists, CreateTable is a no-op success.
func (a *Admin) CreateTable(ctx context.Context, spec TableSpec) error {
	if a.closed {
		return ErrClosed
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	var err = a.do(ctx, opCreateTable, http.MethodPost, "/v1/tables", nil, &spec, nil)
	if isConflict(err) {
		log.WithField("table", spec.Name).Info("table already exists")
		return nil
	} else if err != nil {
		return errors.WithMessagef(err, "creating table %s", spec.Name)
	}
	a.cache.drop(spec.Name) // A stale absent-family descriptor may be cached.

	log.WithFields(log.Fields{
		"table":     spec.Name,
		"families":  spec.Families,
		"splitKeys": len(spec.SplitKeys),
	}).Info("created table")
	return nil
}

// Snapshot takes a snapshot of the table, returning the snapshot name.
// If name is empty, a generated "<table>-<petname>" name is used.
func (a *Admin) Snapshot(ctx context.Context, table, name string) (string, error) {
	if a.closed {
		return "", ErrClosed
	}
	if table == "" {
		return "", errors.New("table name is required")
	}
	if name == "" {
		name = table + "-" + petname.Generate(2, "-")
	}

	var query, err = snapshotQuery{Name: name}.encode()
	if err != nil {
		return "", err
	}
	var resp snapshotResponse
	if err = a.do(ctx, opSnapshot, http.MethodPost, "/v1/tables/"+table+"/snapshots", query, nil, &resp); err != nil {
		return "", errors.WithMessagef(err, "snapshotting table %s", table)
	}

	log.WithFields(log.Fields{"table": table, "snapshot": resp.Name}).Info("took table snapshot")
	return resp.Name, nil
}
