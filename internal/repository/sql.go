package repository

import (
	"database/sql"
	"strings"
)

// likeEscaper escapes LIKE metacharacters with backslash, Postgres' default escape
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps search text for a literal substring match
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
