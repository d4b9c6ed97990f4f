package ioingest

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/taillookup/taillookup/pkg/errcode"
)

func LayoutError(err error) error {
	msg := "Cannot load registry file layouts"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.IngestLayoutError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: invalid layout: %w", fn.Name(), err),
	}
}

func ReadError(file string, err error) error {
	msg := "Cannot read registry file <em>%s</em>"
	vars := []any{file}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.IngestReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read %s: %w", fn.Name(), file, err),
	}
}

// EmptySnapshotError is returned when no registration survived parsing.
func EmptySnapshotError(origin string) error {
	msg := `No registrations were found in <em>%s</em>

The snapshot was not published.`
	vars := []any{origin}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.IngestEmptySnapshotError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: empty snapshot from %s", fn.Name(), origin),
	}
}

// TruncatedSnapshotError is returned when the new snapshot is much
// smaller than the published one.
func TruncatedSnapshotError(accepted, prior int, ratio float64) error {
	msg := `New snapshot has <em>%d</em> registrations, the current one has <em>%d</em>

The source looks truncated, the snapshot was not published.
Use <em>--force</em> to publish it anyway.`
	vars := []any{accepted, prior}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.IngestTruncatedSnapshotError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %d registrations is less than %.2f of %d",
			fn.Name(), accepted, ratio, prior),
	}
}
