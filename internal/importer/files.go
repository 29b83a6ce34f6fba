package importer

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lifehub/studycore/internal/contenthash"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/parser"
)

const (
	extMarkdown = ".md"
	extSheet    = ".xlsx"
)

// deckFiles lists the markdown and spreadsheet files below root in lexical order.
func deckFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case extMarkdown, extSheet:
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func parseFile(path string) ([]domain.CardDraft, error) {
	if strings.EqualFold(filepath.Ext(path), extSheet) {
		return parseSheet(path)
	}
	return parser.ParseFile(path)
}

// parseSheet reads every worksheet of an .xlsx deck. The first row of each sheet is
// a header; columns A, B and C hold front, back and context.
func parseSheet(path string) ([]domain.CardDraft, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var cards []domain.CardDraft
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
		}
		for i, row := range rows {
			if i == 0 {
				continue
			}
			draft := domain.CardDraft{
				Front:   cell(row, 0),
				Back:    cell(row, 1),
				Context: cell(row, 2),
			}
			if draft.Front == "" {
				continue
			}
			draft.Hash = contenthash.Hash(draft)
			cards = append(cards, draft)
		}
	}
	return cards, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
