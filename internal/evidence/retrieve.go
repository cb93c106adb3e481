// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for evidence queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// TaskID restricts results to one research task.
	TaskID string

	// Provider filters by the search provider that found the source.
	Provider string

	// Dimension filters by research dimension.
	Dimension string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.TaskID == "" && q.Provider == "" && q.Dimension == ""
}

// QueryResult is an indexed source with its finding, when one exists.
type QueryResult struct {
	TaskID    string   `json:"task_id" yaml:"task_id"`
	URL       string   `json:"url" yaml:"url"`
	Title     string   `json:"title" yaml:"title"`
	Provider  string   `json:"provider" yaml:"provider"`
	Dimension string   `json:"dimension" yaml:"dimension"`
	Enriched  bool     `json:"enriched" yaml:"enriched"`
	Snippet   string   `json:"snippet" yaml:"snippet"`
	KeyPoints []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Features  []string `json:"features,omitempty" yaml:"features,omitempty"`
}

const snippetLen = 300

// Retrieve queries indexed sources with optional full-text search and
// structured filters. Full-text queries rank by relevance; structured-only
// queries sort by task and URL.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT src.task_id, src.url, src.title, src.provider, src.dimension,
				src.enriched, src.content, f.key_points, f.features
			FROM sources_fts
			JOIN sources src ON src.rowid = sources_fts.rowid
			LEFT JOIN findings f ON f.task_id = src.task_id AND f.url = src.url
			WHERE sources_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT src.task_id, src.url, src.title, src.provider, src.dimension,
				src.enriched, src.content, f.key_points, f.features
			FROM sources src
			LEFT JOIN findings f ON f.task_id = src.task_id AND f.url = src.url
			WHERE 1=1`)
	}

	if opts.TaskID != "" {
		qb.WriteString(` AND src.task_id = ?`)
		args = append(args, opts.TaskID)
	}
	if opts.Provider != "" {
		qb.WriteString(` AND src.provider = ?`)
		args = append(args, opts.Provider)
	}
	if opts.Dimension != "" {
		qb.WriteString(` AND src.dimension = ?`)
		args = append(args, opts.Dimension)
	}

	if useFTS {
		qb.WriteString(` ORDER BY sources_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY src.task_id, src.url`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying evidence index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr        QueryResult
			dimension string
			enriched  int
			content   sql.NullString
			keyPoints sql.NullString
			features  sql.NullString
		)
		if err := rows.Scan(
			&qr.TaskID, &qr.URL, &qr.Title, &qr.Provider, &dimension,
			&enriched, &content, &keyPoints, &features,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Dimension = dimension
		qr.Enriched = enriched != 0
		if content.Valid {
			qr.Snippet = snippet(content.String)
		}
		if keyPoints.Valid {
			json.Unmarshal([]byte(keyPoints.String), &qr.KeyPoints)
		}
		if features.Valid {
			json.Unmarshal([]byte(features.String), &qr.Features)
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

// snippet returns the leading portion of content, cut at a rune boundary.
func snippet(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= snippetLen {
		return content
	}
	runes := []rune(content)
	if len(runes) <= snippetLen {
		return content
	}
	return string(runes[:snippetLen]) + "..."
}
