package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/uptrace/bun/dialect"
)

// Suggest returns at most SuggestLimit rows whose name has a word starting with
// every token of q, best match first. A query with no tokens matches nothing.
func (i *Index) Suggest(ctx context.Context, q string) ([]ItemIndexRow, error) {
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return []ItemIndexRow{}, nil
	}

	if i.dialect() == dialect.PG {
		return i.suggestFullText(ctx, tokens)
	}
	return i.suggestPrefix(ctx, tokens)
}

// suggestFullText ranks with ts_rank over a prefix tsquery.
func (i *Index) suggestFullText(ctx context.Context, tokens []string) ([]ItemIndexRow, error) {
	terms := make([]string, len(tokens))
	for n, tok := range tokens {
		terms[n] = tok + ":*"
	}
	tsq := strings.Join(terms, " & ")

	rows := make([]ItemIndexRow, 0, SuggestLimit)
	err := i.db.NewSelect().
		Model(&rows).
		Column("market_hash_name").
		Where("to_tsvector('simple', market_hash_name) @@ to_tsquery('simple', ?)", tsq).
		OrderExpr("ts_rank(to_tsvector('simple', market_hash_name), to_tsquery('simple', ?)) DESC", tsq).
		OrderExpr("market_hash_name ASC").
		Limit(SuggestLimit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest items: %w", err)
	}

	return rows, nil
}

// suggestPrefix narrows candidates with LIKE and ranks them in process.
func (i *Index) suggestPrefix(ctx context.Context, tokens []string) ([]ItemIndexRow, error) {
	var candidates []ItemIndexRow

	query := i.db.NewSelect().
		Model(&candidates).
		Column("market_hash_name")
	for _, tok := range tokens {
		query = query.Where("lower(market_hash_name) LIKE ?", "%"+tok+"%")
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("suggest items: %w", err)
	}

	type scored struct {
		row   ItemIndexRow
		score float64
	}

	matches := make([]scored, 0, len(candidates))
	for _, row := range candidates {
		if score, ok := prefixScore(tokens, tokenize(row.MarketHashName)); ok {
			matches = append(matches, scored{row: row, score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		ma, mb := matches[a], matches[b]
		if ma.score != mb.score {
			return ma.score > mb.score
		}
		if len(ma.row.MarketHashName) != len(mb.row.MarketHashName) {
			return len(ma.row.MarketHashName) < len(mb.row.MarketHashName)
		}
		return ma.row.MarketHashName < mb.row.MarketHashName
	})

	rows := make([]ItemIndexRow, 0, SuggestLimit)
	for n := 0; n < len(matches) && n < SuggestLimit; n++ {
		rows = append(rows, matches[n].row)
	}
	return rows, nil
}

// prefixScore requires every token to prefix some word. Each token adds the
// share of the best word it covers.
func prefixScore(tokens, words []string) (float64, bool) {
	var total float64
	for _, tok := range tokens {
		best := 0.0
		for _, w := range words {
			if strings.HasPrefix(w, tok) {
				best = max(best, float64(len(tok))/float64(len(w)))
			}
		}
		if best == 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}

// tokenize lowercases s and splits it into runs of letters and digits.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
