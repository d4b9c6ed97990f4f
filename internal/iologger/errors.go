package iologger

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/taillookup/taillookup/pkg/errcode"
)

// OpenLogFileError is returned when the "file" destination is unusable.
// The message points to the flag that sends logs to the terminal instead.
func OpenLogFileError(path string, err error) error {
	msg := "Cannot open log file <em>%s</em>, " +
		"try <em>--log-dest stderr</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.OpenLogFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open log %s for append: %w",
			fn.Name(), path, err),
	}
}
