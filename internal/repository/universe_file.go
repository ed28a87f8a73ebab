package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	domrepo "PairScope/internal/domain/repository"
	"PairScope/pkg/util"
)

// FileUniverse reads the batch inputs from CSV files with a header row.
// The symbols file carries the ticker in its second column; the pairs file carries "Y_X" in its first.
type FileUniverse struct {
	symbolsPath string
	pairsPath   string
}

func NewFileUniverse(symbolsPath, pairsPath string) *FileUniverse {
	return &FileUniverse{symbolsPath: symbolsPath, pairsPath: pairsPath}
}

var _ domrepo.Universe = (*FileUniverse)(nil)

func (u *FileUniverse) Symbols(_ context.Context) ([]string, error) {
	records, err := readRecords(u.symbolsPath)
	if err != nil {
		return nil, fmt.Errorf("read symbols: %w", err)
	}
	var out []string
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("read symbols: line %d: want at least 2 columns, got %d", i+2, len(rec))
		}
		if s := util.NormalizeSymbol(rec[1]); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func (u *FileUniverse) Pairs(_ context.Context) ([]domrepo.PairRef, error) {
	records, err := readRecords(u.pairsPath)
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}
	var out []domrepo.PairRef
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		y, x, ok := util.SplitPair(rec[0])
		if !ok {
			return nil, fmt.Errorf("read pairs: line %d: %q is not Y_X", i+2, rec[0])
		}
		out = append(out, domrepo.PairRef{Y: y, X: x})
	}
	return out, nil
}

// readRecords returns every row after the header.
func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return r.ReadAll()
}
