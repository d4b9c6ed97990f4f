package iohttp

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/taillookup/taillookup/pkg/errcode"
)

func StartError(addr string, err error) error {
	msg := `Cannot start HTTP server on <em>%s</em>

Check that the port is free or choose another one with <em>--port</em>.`
	vars := []any{addr}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ServerStartError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot listen on %s: %w", fn.Name(), addr, err),
	}
}

func ReloadError(path string, err error) error {
	msg := "Cannot load snapshot <em>%s</em>, keeping the current one"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ServerReloadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot reload %s: %w", fn.Name(), path, err),
	}
}
