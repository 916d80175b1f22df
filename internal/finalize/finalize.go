// Package finalize concatenates each problem's stamped pages into one
// downloadable per-problem PDF.
package finalize

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/AlvinPalmgren/PunktGrader/internal/home"
	"github.com/AlvinPalmgren/PunktGrader/internal/session"
)

// Run builds one final document per problem number from the current
// problem collections and registers them with the store. It always
// rebuilds from scratch, so re-finalizing unchanged collections yields
// identical documents and finalizing after new submissions picks up the
// new contributions.
//
// Run does not check whether tasks are still processing; callers are
// expected to poll the status endpoint first. Invoked early it simply
// reflects whatever partial data exists.
//
// Pages within each collection are sorted by (student id, page) before
// merging so final documents are deterministic regardless of how
// concurrent tasks interleaved their appends.
func Run(store *session.Store, homeDir *home.Dir, logger *slog.Logger) ([]int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	collections, generation := store.Collections()
	sessionID := store.SessionID()

	problems := make([]int, 0, len(collections))
	for problem := range collections {
		problems = append(problems, problem)
	}
	sort.Ints(problems)

	finals := make(map[int]string, len(problems))
	for _, problem := range problems {
		pages := collections[problem]
		sort.Slice(pages, func(i, j int) bool {
			if pages[i].StudentID != pages[j].StudentID {
				return pages[i].StudentID < pages[j].StudentID
			}
			return pages[i].Page < pages[j].Page
		})

		paths := make([]string, len(pages))
		for i, page := range pages {
			paths[i] = page.Path
		}

		outPath := homeDir.FinalPath(sessionID, problem)
		if err := api.MergeCreateFile(paths, outPath, false, conf()); err != nil {
			return nil, fmt.Errorf("failed to merge problem %d: %w", problem, err)
		}
		finals[problem] = outPath
		logger.Info("final document built", "problem", problem, "pages", len(pages))
	}

	store.SetFinals(generation, finals)
	return problems, nil
}

func conf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}
