// Package importer keeps a deck's flashcards in line with its source: a local
// directory or a git repository of markdown and spreadsheet files.
package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/gitsource"
	"github.com/lifehub/studycore/internal/logger"
	"github.com/lifehub/studycore/internal/storage"
)

const parseWorkers = 4

type Importer struct {
	store    *storage.Store
	reposDir string
	log      *logger.Logger
	now      func() time.Time
}

func New(store *storage.Store, reposDir string, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{
		store:    store,
		reposDir: reposDir,
		log:      log.With("component", "importer"),
		now:      time.Now,
	}
}

// Report summarizes one reconciliation.
type Report struct {
	DeckID    string
	Source    string
	Revision  string
	Files     int
	Parsed    int
	Inserted  int
	Restored  int
	Suspended int
	Unchanged int
}

// EnsureDeck returns the user's deck called name, creating it under parent when
// missing. The parent of an existing deck is left alone.
func (im *Importer) EnsureDeck(ctx context.Context, userID, name string, parent domain.Parent) (*domain.Deck, error) {
	if userID == "" || name == "" {
		return nil, apperr.Validationf("deck", "user id and deck name are required")
	}
	d, err := im.store.FindDeckByName(ctx, nil, userID, name)
	if err != nil || d != nil {
		return d, err
	}
	d = &domain.Deck{UserID: userID, Name: name, Parent: parent, CreatedAt: im.now()}
	if err := im.store.CreateDeck(ctx, nil, d); err != nil {
		return nil, err
	}
	im.log.Info("deck created", "deck_id", d.ID, "name", name)
	return d, nil
}

// Import reads every card from source and reconciles the deck against it. New cards
// are inserted as NEW, cards that reappear are unsuspended, and cards missing from
// the source are suspended so their review history survives.
func (im *Importer) Import(ctx context.Context, deckID, source string) (*Report, error) {
	if source == "" {
		return nil, apperr.Validationf("source", "source is required")
	}
	if _, err := im.store.GetDeck(ctx, nil, deckID); err != nil {
		return nil, err
	}

	report := &Report{DeckID: deckID, Source: source}
	dir, err := im.checkout(ctx, source, report)
	if err != nil {
		return nil, err
	}

	files, err := deckFiles(dir)
	if err != nil {
		return nil, err
	}
	report.Files = len(files)

	drafts, err := parseAll(ctx, files)
	if err != nil {
		return nil, err
	}
	report.Parsed = len(drafts)

	err = im.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		return im.reconcile(ctx, tx, deckID, source, drafts, report)
	})
	if err != nil {
		return nil, err
	}

	im.log.Info("reconciliation complete",
		"deck_id", deckID,
		"source", source,
		"files", report.Files,
		"parsed", report.Parsed,
		"inserted", report.Inserted,
		"restored", report.Restored,
		"suspended", report.Suspended,
	)
	return report, nil
}

// SyncAll re-imports every deck that has a source. A failing deck is logged and
// skipped; the first error is returned after all decks were tried.
func (im *Importer) SyncAll(ctx context.Context) ([]Report, error) {
	decks, err := im.store.ListDecks(ctx, nil, "")
	if err != nil {
		return nil, err
	}
	var reports []Report
	var firstErr error
	for _, d := range decks {
		if d.Source == "" {
			continue
		}
		r, err := im.Import(ctx, d.ID, d.Source)
		if err != nil {
			im.log.Error("deck sync failed", "deck_id", d.ID, "source", d.Source, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		reports = append(reports, *r)
	}
	return reports, firstErr
}

// checkout returns the local directory holding source, syncing git sources first.
func (im *Importer) checkout(ctx context.Context, source string, report *Report) (string, error) {
	if !gitsource.IsRemote(source) {
		info, err := os.Stat(source)
		if err != nil || !info.IsDir() {
			return "", apperr.Validationf("source", "source %s is not a readable directory", source)
		}
		return source, nil
	}
	dir, err := gitsource.LocalPath(im.reposDir, source)
	if err != nil {
		return "", apperr.Validation("source", err)
	}
	if err := gitsource.Sync(ctx, source, dir, im.log); err != nil {
		return "", err
	}
	rev, err := gitsource.Revision(dir)
	if err != nil {
		return "", err
	}
	report.Revision = rev
	return dir, nil
}

// parseAll parses files concurrently and returns their cards in file order with
// duplicate content dropped.
func parseAll(ctx context.Context, files []string) ([]domain.CardDraft, error) {
	results := make([][]domain.CardDraft, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parseWorkers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cards, err := parseFile(path)
			if err != nil {
				return err
			}
			results[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to parse deck files: %w", err)
	}

	seen := make(map[string]bool)
	var drafts []domain.CardDraft
	for _, cards := range results {
		for _, c := range cards {
			if seen[c.Hash] {
				continue
			}
			seen[c.Hash] = true
			drafts = append(drafts, c)
		}
	}
	return drafts, nil
}

func (im *Importer) reconcile(ctx context.Context, tx *sqlx.Tx, deckID, source string, drafts []domain.CardDraft, report *Report) error {
	existing, err := im.store.ListFlashcardsByDeck(ctx, tx, deckID)
	if err != nil {
		return err
	}
	byHash := make(map[string]domain.Flashcard, len(existing))
	for _, c := range existing {
		byHash[c.ContentHash] = c
	}

	now := im.now()
	found := make(map[string]bool, len(drafts))
	for _, d := range drafts {
		found[d.Hash] = true
		card, ok := byHash[d.Hash]
		switch {
		case !ok:
			c := domain.NewFlashcard(deckID, d, now)
			if err := im.store.InsertFlashcard(ctx, tx, &c); err != nil {
				return err
			}
			report.Inserted++
		case card.Suspended:
			if err := im.store.SetSuspended(ctx, tx, card.ID, false); err != nil {
				return err
			}
			report.Restored++
		default:
			report.Unchanged++
		}
	}

	for _, c := range existing {
		if found[c.ContentHash] || c.Suspended {
			continue
		}
		if err := im.store.SetSuspended(ctx, tx, c.ID, true); err != nil {
			return err
		}
		report.Suspended++
	}
	return im.store.SetDeckSource(ctx, tx, deckID, source)
}
