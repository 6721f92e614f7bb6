package repository

import (
	"errors"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"civicreport/internal/config"
)

// dialect hides the two places where Postgres and SQLite SQL differ: full-text
// search and constraint error codes. Everything else is written once with `?`
// placeholders and rebound by sqlx.
type dialect interface {
	// searchSource is the FROM source for full-text search; it must expose the complaints row as "c".
	searchSource() string
	searchPredicate() string
	searchArg(query string) string
	isUniqueViolation(err error) bool
}

func dialectFor(db *sqlx.DB) dialect {
	if db.DriverName() == config.DriverSQLite {
		return sqliteDialect{}
	}
	return postgresDialect{}
}

type postgresDialect struct{}

func (postgresDialect) searchSource() string { return "complaints c" }

func (postgresDialect) searchPredicate() string {
	return "to_tsvector('english', c.title || ' ' || c.description) @@ to_tsquery('english', ?)"
}

// searchArg builds a tsquery of ANDed prefix terms, matching the SQLite behaviour.
func (postgresDialect) searchArg(query string) string {
	words := searchWords(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, w+":*")
	}
	return strings.Join(terms, " & ")
}

func (postgresDialect) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type sqliteDialect struct{}

func (sqliteDialect) searchSource() string {
	return "complaint_search JOIN complaints c ON complaint_search.rowid = c.id"
}

func (sqliteDialect) searchPredicate() string { return "complaint_search MATCH ?" }

// searchArg turns free text into an FTS5 expression: every word becomes a quoted
// prefix term, terms are ANDed. Quoting keeps user input from being parsed as FTS syntax.
func (sqliteDialect) searchArg(query string) string {
	words := searchWords(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+w+`"*`)
	}
	return strings.Join(terms, " ")
}

// searchWords splits free text into letter/digit runs; nothing else reaches a query parser.
func searchWords(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func (sqliteDialect) isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch code := sqliteErr.Code(); code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		// primary code only when extended codes are off
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
	}
}
