package tableadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"

	"go.splitkit.dev/core/metrics"
)

// Operation labels of admin request metrics.
const (
	opGetTable    = "get_table"
	opCreateTable = "create_table"
	opSnapshot    = "snapshot"
)

// tableDescriptor is the admin service's representation of a table.
type tableDescriptor struct {
	Name     string   `json:"name"`
	Families []string `json:"families"`
}

func (d tableDescriptor) hasFamily(name string) bool {
	for _, f := range d.Families {
		if f == name {
			return true
		}
	}
	return false
}

type snapshotQuery struct {
	Name string `schema:"name"`
}

func (q snapshotQuery) encode() (url.Values, error) {
	var values = make(url.Values)
	if err := queryEncoder.Encode(&q, values); err != nil {
		return nil, errors.WithMessage(err, "encoding query")
	}
	return values, nil
}

var queryEncoder = schema.NewEncoder()

type snapshotResponse struct {
	Name string `json:"name"`
}

// statusError is a non-2xx response of the admin service.
type statusError struct {
	op      string
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.op, e.message, http.StatusText(e.code))
}

func isNotFound(err error) bool {
	var se, ok = errors.Cause(err).(*statusError)
	return ok && se.code == http.StatusNotFound
}

func isConflict(err error) bool {
	var se, ok = errors.Cause(err).(*statusError)
	return ok && se.code == http.StatusConflict
}

// do issues one admin service request, decoding a JSON response into
// out (if non-nil). Non-2xx responses map to statusError.
func (a *Admin) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) (err error) {
	defer func() { instrumentOp(op, err) }()

	var u = *a.endpoint
	u.Path, u.RawQuery = path, query.Encode()

	var reqBody io.Reader
	if body != nil {
		var b []byte
		if b, err = json.Marshal(body); err != nil {
			return errors.WithMessage(err, "encoding request")
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{op: op, code: resp.StatusCode, message: errorMessage(resp.Body)}
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.WithMessage(err, "decoding response")
		}
	}
	return nil
}

// errorMessage extracts the service's {"error": ...} message, falling
// back to the raw (bounded) body.
func errorMessage(r io.Reader) string {
	var b, _ = io.ReadAll(io.LimitReader(r, 1024))

	var wrapper struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &wrapper) == nil && wrapper.Error != "" {
		return wrapper.Error
	}
	return string(b)
}

func instrumentOp(op string, err error) {
	if err != nil {
		metrics.AdminRequestTotal.WithLabelValues(op, metrics.Fail).Inc()
	} else {
		metrics.AdminRequestTotal.WithLabelValues(op, metrics.Ok).Inc()
	}
}
