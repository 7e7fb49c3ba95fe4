package mainboilerplate

import (
	log "github.com/sirupsen/logrus"
)

// Must panics if |err| is non-nil, supplemented with |msg| and |extra|
// alternating key / value fields.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var fields = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		fields[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(fields).Fatal(msg)
}
