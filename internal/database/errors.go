// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

package database

import (
	"errors"
	"io"
)

// Sentinel errors mapped to HTTP status codes by the API layer.
var (
	// ErrAlreadyExists signals a generation request without the overwrite
	// flag against a non-empty table.
	ErrAlreadyExists = errors.New("data already exists")

	// ErrInvalidArgument signals a malformed record rejected at ingestion.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound signals a lookup that matched nothing.
	ErrNotFound = errors.New("not found")
)

// closeQuietly closes a resource in an error path where Close errors are not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
