package daemon

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/config"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/journal"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/pathutil"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/trash"
)

// NewServiceFromConfig builds the service bulkfsd serves and the CLI runs
// in-process: a permanent-delete engine, a trash engine, a lister and,
// when enabled, a journal.
func NewServiceFromConfig(cfg *config.Config, version string) (*Service, error) {
	resolver, err := pathutil.New(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(engine.WithResolver(resolver))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	trashEng, err := engine.New(engine.WithResolver(resolver), engine.WithRemover(trash.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create trash engine: %w", err)
	}

	opts := []ServiceOption{
		WithTrashEngine(trashEng),
		WithLister(listing.New(afero.NewOsFs(), resolver)),
		WithVersion(version),
	}
	if cfg.Journal.Enabled {
		j, err := journal.New(cfg.JournalDir())
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		opts = append(opts, WithJournal(j))
	}

	return NewService(eng, opts...), nil
}
