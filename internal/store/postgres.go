package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"webseek/pkg/postgres"
)

// schemaSQL is idempotent; every statement uses IF NOT EXISTS.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS urls (
    url TEXT PRIMARY KEY CHECK (url <> ''),
    claimed BOOLEAN NOT NULL DEFAULT FALSE,
    added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_urls_claimed ON urls (claimed);
CREATE INDEX IF NOT EXISTS idx_urls_added_at ON urls (added_at);

CREATE TABLE IF NOT EXISTS pages (
    url TEXT PRIMARY KEY CHECK (url <> ''),
    metadata JSONB NOT NULL,
    content JSONB NOT NULL,
    index_claimed BOOLEAN NOT NULL DEFAULT FALSE,
    indexed BOOLEAN NOT NULL DEFAULT FALSE,
    added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_pages_index_claimed ON pages (index_claimed);
CREATE INDEX IF NOT EXISTS idx_pages_added_at ON pages (added_at);

CREATE TABLE IF NOT EXISTS term_index (
    term TEXT PRIMARY KEY,
    urls JSONB NOT NULL DEFAULT '[]'::jsonb
);
`

// PostgresStore implements Store on top of PostgreSQL. Claim operations use
// a conditional UPDATE over a FOR UPDATE SKIP LOCKED subselect so that
// concurrent claimants never receive the same row.
type PostgresStore struct {
	client *postgres.Client
	logger *slog.Logger
}

// NewPostgres runs the schema and returns a ready store.
func NewPostgres(ctx context.Context, client *postgres.Client) (*PostgresStore, error) {
	if _, err := client.DB.ExecContext(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{
		client: client,
		logger: slog.Default().With("component", "postgres-store"),
	}, nil
}

func (s *PostgresStore) UpsertURLs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	_, err := s.client.DB.ExecContext(ctx, `
		INSERT INTO urls (url)
		SELECT unnest($1::text[])
		ON CONFLICT (url) DO NOTHING;
	`, pq.Array(urls))
	if err != nil {
		return fmt.Errorf("upserting %d urls: %w", len(urls), err)
	}
	return nil
}

func (s *PostgresStore) ClaimNextURL(ctx context.Context) (string, bool, error) {
	var url string
	err := s.client.DB.QueryRowContext(ctx, `
		UPDATE urls SET claimed = TRUE
		WHERE url = (
			SELECT url FROM urls
			WHERE claimed = FALSE
			ORDER BY added_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING url;
	`).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("claiming next url: %w", err)
	}
	return url, true, nil
}

func (s *PostgresStore) PageExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pages WHERE url = $1);`, url,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking page existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) InsertPageIfAbsent(ctx context.Context, page *Page) error {
	metadata, err := json.Marshal(page.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling page metadata: %w", err)
	}
	content, err := json.Marshal(page.Content)
	if err != nil {
		return fmt.Errorf("marshaling page content: %w", err)
	}
	_, err = s.client.DB.ExecContext(ctx, `
		INSERT INTO pages (url, metadata, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (url) DO NOTHING;
	`, page.URL, metadata, content)
	if err != nil {
		return fmt.Errorf("inserting page %s: %w", page.URL, err)
	}
	return nil
}

func (s *PostgresStore) CountPages(ctx context.Context) (int, error) {
	var count int
	if err := s.client.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ClaimNextUnindexedPage(ctx context.Context) (string, string, bool, error) {
	var url, text string
	err := s.client.DB.QueryRowContext(ctx, `
		UPDATE pages SET index_claimed = TRUE
		WHERE url = (
			SELECT url FROM pages
			WHERE index_claimed = FALSE
			ORDER BY added_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING url, COALESCE(content->>'text', '');
	`).Scan(&url, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("claiming next unindexed page: %w", err)
	}
	return url, text, true, nil
}

func (s *PostgresStore) MergePostings(ctx context.Context, term, url string) error {
	// The jsonb ? operator tests membership of a string element, keeping the
	// append idempotent per URL.
	_, err := s.client.DB.ExecContext(ctx, `
		INSERT INTO term_index (term, urls)
		VALUES ($1, jsonb_build_array($2::text))
		ON CONFLICT (term) DO UPDATE
		SET urls = CASE
			WHEN term_index.urls ? $2 THEN term_index.urls
			ELSE term_index.urls || jsonb_build_array($2::text)
		END;
	`, term, url)
	if err != nil {
		return fmt.Errorf("merging postings for term %q: %w", term, err)
	}
	return nil
}

func (s *PostgresStore) MarkPageIndexed(ctx context.Context, url string) error {
	_, err := s.client.DB.ExecContext(ctx,
		`UPDATE pages SET indexed = TRUE WHERE url = $1;`, url,
	)
	if err != nil {
		return fmt.Errorf("marking page %s indexed: %w", url, err)
	}
	return nil
}

func (s *PostgresStore) ExactPostings(ctx context.Context, term string) ([]string, error) {
	var raw []byte
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT urls FROM term_index WHERE term = $1;`, term,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up term %q: %w", term, err)
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, fmt.Errorf("decoding postings for term %q: %w", term, err)
	}
	return urls, nil
}

func (s *PostgresStore) SubstringPostings(ctx context.Context, term string, limit int) ([]PostingsList, error) {
	rows, err := s.client.DB.QueryContext(ctx, `
		SELECT term, urls FROM term_index
		WHERE term LIKE '%' || $1 || '%' ESCAPE '\'
		LIMIT $2;
	`, escapeLike(term), limit)
	if err != nil {
		return nil, fmt.Errorf("substring lookup for %q: %w", term, err)
	}
	defer rows.Close()

	var lists []PostingsList
	for rows.Next() {
		var entry PostingsList
		var raw []byte
		if err := rows.Scan(&entry.Term, &raw); err != nil {
			return nil, fmt.Errorf("scanning postings row: %w", err)
		}
		if err := json.Unmarshal(raw, &entry.URLs); err != nil {
			return nil, fmt.Errorf("decoding postings for term %q: %w", entry.Term, err)
		}
		lists = append(lists, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating postings rows: %w", err)
	}
	return lists, nil
}

// escapeLike neutralizes LIKE metacharacters so a query term containing %
// or _ matches literally instead of as a wildcard.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *PostgresStore) GetPageMetadata(ctx context.Context, url string) (PageMetadata, bool, error) {
	var raw []byte
	err := s.client.DB.QueryRowContext(ctx,
		`SELECT metadata FROM pages WHERE url = $1;`, url,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return PageMetadata{}, false, nil
	}
	if err != nil {
		return PageMetadata{}, false, fmt.Errorf("fetching metadata for %s: %w", url, err)
	}
	var meta PageMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return PageMetadata{}, false, fmt.Errorf("decoding metadata for %s: %w", url, err)
	}
	return meta, true, nil
}

func (s *PostgresStore) EnsureLive(ctx context.Context) error {
	return s.client.EnsureLive(ctx)
}

func (s *PostgresStore) Close() error {
	return s.client.Close()
}
