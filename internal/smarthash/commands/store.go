package commands

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/lib"
)

// StoreOptions selects how an existing consolidated store is read and,
// for commands that rewrite it, written back.
type StoreOptions struct {
	// JSON forces the JSON encoding. Stores whose name ends in ".json" are
	// always read as JSON.
	JSON             bool
	AbsolutePaths    bool
	NormCase         bool
	SortByHash       bool
	SuppressComments bool

	Logger *slog.Logger
	Clock  lib.Clock
}

func (o StoreOptions) libOptions(storePath string) lib.StoreOptions {
	return lib.StoreOptions{
		JSON:             o.JSON || strings.EqualFold(filepath.Ext(storePath), jsonExtension),
		AbsolutePaths:    o.AbsolutePaths,
		NormCase:         o.NormCase,
		SortByHash:       o.SortByHash,
		SuppressComments: o.SuppressComments,
		PreserveUnused:   true,
		AutosaveInterval: lib.AutosaveDisabled,
		Logger:           o.Logger,
		Clock:            o.Clock,
	}
}
