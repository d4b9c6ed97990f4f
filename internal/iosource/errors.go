package iosource

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/taillookup/taillookup/pkg/errcode"
)

// DownloadError is returned when the registry archive could not be
// downloaded after the retry.
func DownloadError(url string, err error) error {
	msg := `Cannot download the aircraft registry

<em>URL:</em> %s

<em>Possible causes:</em>
  - The FAA server is unavailable or slow
  - Network or proxy problems

The previously published snapshot is still served.
Try again later or use <em>--source</em> with a local copy.`

	vars := []any{url}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SourceDownloadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot download %s: %w",
			fn.Name(), url, err),
	}
}

func ArchiveError(path string, err error) error {
	msg := "Cannot read registry archive <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SourceArchiveError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open archive %s: %w",
			fn.Name(), path, err),
	}
}

// FileMissingError is returned when the archive or directory has no
// entry for one of the registry files.
func FileMissingError(origin, file string, found []string) error {
	msg := `Registry file <em>%s</em> is missing in <em>%s</em>

<em>Found files:</em> %s`

	vars := []any{file, origin, strings.Join(found, ", ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SourceFileMissingError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: no %s file in %s",
			fn.Name(), file, origin),
	}
}
