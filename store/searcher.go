package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrEmptyQuery is returned when a search query contains no terms.
var ErrEmptyQuery = errors.New("query must not be empty")

// Match is one search hit: an indexed file whose description matched.
type Match struct {
	Hash        string `json:"-"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// SplitTerms breaks a query into whitespace-separated terms, dropping
// case-insensitive duplicates while keeping first-seen order.
func SplitTerms(query string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, part := range strings.Fields(query) {
		key := strings.ToLower(part)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, part)
	}
	return terms
}

// Search returns all indexed files under root whose description contains
// any of the query terms (case-insensitive substring match, OR semantics),
// ordered by path. The root scope always applies: a description match
// outside root is never returned.
func Search(ctx context.Context, db *sql.DB, root, query string) ([]Match, error) {
	terms := SplitTerms(query)
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	prefix := abs
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	descParts := make([]string, len(terms))
	args := []any{abs, prefix + "%"}
	for i, term := range terms {
		descParts[i] = "d.description LIKE ?"
		args = append(args, "%"+term+"%")
	}

	query = "SELECT f.hash, f.path, d.description " +
		"FROM IMAGE_FILE f " +
		"JOIN IMAGE_METADATA m ON m.hash = f.hash " +
		"JOIN DESCRIPTION d ON d.id = m.description_fk " +
		"WHERE (f.path = ? OR f.path LIKE ?) " +
		"AND (" + strings.Join(descParts, " OR ") + ") " +
		"ORDER BY f.path ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Hash, &m.Path, &m.Description); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
