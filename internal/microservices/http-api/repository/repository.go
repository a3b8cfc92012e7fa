package repository

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is gorm's sentinel, shared so non-SQL stores report misses the same way.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when a write hits a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
	// ErrPageOutOfRange is returned when a page's row offset does not fit in an int.
	ErrPageOutOfRange = errors.New("page out of range")
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translate maps driver errors onto repository sentinels. A missing foreign
// key row is reported as gorm.ErrRecordNotFound: the parent vanished.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", gorm.ErrRecordNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// paginate is a gorm scope for 1-based page numbers.
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize > 0 && page-1 > math.MaxInt/pageSize {
			_ = db.AddError(ErrPageOutOfRange)
			return db
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// metacharacters in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// deleteResult turns a delete with no affected rows into gorm.ErrRecordNotFound.
func deleteResult(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
