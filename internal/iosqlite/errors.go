package iosqlite

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/taillookup/taillookup/pkg/errcode"
)

func OpenError(path string, err error) error {
	msg := "Cannot open snapshot <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open sqlite file %s: %w",
			fn.Name(), path, err),
	}
}

func NotConnectedError() error {
	msg := "Snapshot is not open"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: builder has no open database", fn.Name()),
	}
}

func SchemaError(err error) error {
	msg := "Cannot create snapshot tables"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreSchemaError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: cannot create schema: %w", fn.Name(), err),
	}
}

func LoadError(table string, err error) error {
	msg := "Cannot load data into <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreLoadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot load %s: %w",
			fn.Name(), table, err),
	}
}

func IndexError(err error) error {
	msg := "Cannot create snapshot indexes"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreIndexError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: cannot create index: %w", fn.Name(), err),
	}
}

func MetadataError(err error) error {
	msg := "Cannot write snapshot metadata"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreMetadataError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: cannot write metadata: %w", fn.Name(), err),
	}
}

func PublishError(path string, err error) error {
	msg := "Cannot publish snapshot to <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StorePublishError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot publish %s: %w",
			fn.Name(), path, err),
	}
}

func QueryError(err error) error {
	msg := "Snapshot query failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: query failed: %w", fn.Name(), err),
	}
}
