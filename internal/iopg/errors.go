package iopg

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/taillookup/taillookup/pkg/errcode"
)

func ConnectionError(host string, port int, database, user string, err error) error {
	msg := `Cannot connect to PostgreSQL at <em>%s:%d/%s</em> as <em>%s</em>.
Check that the server is running and the store settings are correct.`
	vars := []any{host, port, database, user}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: failed to connect to %s:%d/%s: %w",
			fn.Name(), host, port, database, err),
	}
}

func NotConnectedError() error {
	msg := "PostgreSQL store is not connected"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: no connection pool", fn.Name()),
	}
}

func GORMConnectionError(err error) error {
	msg := "Cannot prepare schema tools for PostgreSQL"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreSchemaError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: gorm open failed: %w", fn.Name(), err),
	}
}

func SchemaError(table string, err error) error {
	msg := "Cannot create table <em>%s</em>"
	vars := []any{table}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreSchemaError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot create %s: %w",
			fn.Name(), table, err),
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
		Err: fmt.Errorf("from %s: cannot copy into %s: %w",
			fn.Name(), table, err),
	}
}

func IndexError(err error) error {
	msg := "Cannot create indexes"
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

func PublishError(err error) error {
	msg := "Cannot swap new tables into place"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StorePublishError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: table swap failed: %w", fn.Name(), err),
	}
}

func QueryError(err error) error {
	msg := "Query to PostgreSQL failed"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.StoreQueryError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: query failed: %w", fn.Name(), err),
	}
}
