package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	WriteConfigError
	ReadFileError

	// Logging errors
	OpenLogFileError

	// Store errors
	StoreOpenError
	StoreNotConnectedError
	StoreSchemaError
	StoreLoadError
	StoreIndexError
	StoreMetadataError
	StorePublishError
	StoreQueryError

	// Source errors
	SourceDownloadError
	SourceArchiveError
	SourceFileMissingError

	// Ingest errors
	IngestLayoutError
	IngestReadError
	IngestEmptySnapshotError
	IngestTruncatedSnapshotError

	// Server errors
	ServerStartError
	ServerReloadError
)
