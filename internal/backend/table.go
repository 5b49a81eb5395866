package backend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var columnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Op is a filter operator.
type Op string

const (
	OpEq    Op = "eq"
	OpILike Op = "ilike"
)

// Filter restricts the rows an operation touches.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// Eq matches rows whose column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// ILike matches rows whose column contains substr, ignoring case. LIKE
// wildcards inside substr are matched literally.
func ILike(column, substr string) Filter {
	return Filter{Column: column, Op: OpILike, Value: substr}
}

// Query describes a select.
type Query struct {
	Filters   []Filter
	OrderBy   string
	Ascending bool
	// Limit caps the number of rows; zero or less means unlimited.
	Limit int
}

// Table is a typed handle on one table.
type Table[T any] struct {
	db   *gorm.DB
	name string
}

// From returns the handle for table name holding rows of type T.
func From[T any](c *Client, name string) Table[T] {
	return Table[T]{db: c.db, name: name}
}

// Name returns the table name.
func (t Table[T]) Name() string { return t.name }

func (t Table[T]) session(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.name)
}

// Insert stores row and fills in server-assigned columns.
func (t Table[T]) Insert(ctx context.Context, row *T) error {
	return tableError("insert into", t.name, t.session(ctx).Create(row).Error)
}

// Select returns the rows matching q.
func (t Table[T]) Select(ctx context.Context, q Query) ([]T, error) {
	tx, err := applyFilters(t.session(ctx), q.Filters)
	if err != nil {
		return nil, tableError("select from", t.name, err)
	}
	if q.OrderBy != "" {
		if !columnPattern.MatchString(q.OrderBy) {
			return nil, tableError("select from", t.name, fmt.Errorf("invalid order column %q", q.OrderBy))
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: !q.Ascending})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	rows := make([]T, 0)
	if err := tx.Find(&rows).Error; err != nil {
		return nil, tableError("select from", t.name, err)
	}
	return rows, nil
}

// Single returns exactly one row matching filters or ErrNoRows.
func (t Table[T]) Single(ctx context.Context, filters ...Filter) (T, error) {
	var row T
	tx, err := applyFilters(t.session(ctx), filters)
	if err != nil {
		return row, tableError("select from", t.name, err)
	}
	if err := tx.Take(&row).Error; err != nil {
		return row, tableError("select from", t.name, err)
	}
	return row, nil
}

// Update writes values to the row whose id matches and returns the stored row.
func (t Table[T]) Update(ctx context.Context, id any, values map[string]any) (T, error) {
	if len(values) > 0 {
		for column := range values {
			if !columnPattern.MatchString(column) {
				var zero T
				return zero, tableError("update", t.name, fmt.Errorf("invalid column %q", column))
			}
		}
		res := t.session(ctx).Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Updates(values)
		if res.Error != nil {
			var zero T
			return zero, tableError("update", t.name, res.Error)
		}
	}
	return t.Single(ctx, Eq("id", id))
}

// Delete removes the rows matching filters and reports how many were removed.
func (t Table[T]) Delete(ctx context.Context, filters ...Filter) (int64, error) {
	if len(filters) == 0 {
		return 0, tableError("delete from", t.name, fmt.Errorf("refusing to delete without a filter"))
	}
	tx, err := applyFilters(t.session(ctx), filters)
	if err != nil {
		return 0, tableError("delete from", t.name, err)
	}
	res := tx.Delete(new(T))
	if res.Error != nil {
		return 0, tableError("delete from", t.name, res.Error)
	}
	return res.RowsAffected, nil
}

// Count returns the number of rows matching filters without fetching them.
func (t Table[T]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	tx, err := applyFilters(t.session(ctx), filters)
	if err != nil {
		return 0, tableError("count", t.name, err)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, tableError("count", t.name, err)
	}
	return n, nil
}

func applyFilters(tx *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		if !columnPattern.MatchString(f.Column) {
			return nil, fmt.Errorf("invalid filter column %q", f.Column)
		}
		column := clause.Column{Name: f.Column}
		switch f.Op {
		case OpEq:
			tx = tx.Where(clause.Eq{Column: column, Value: f.Value})
		case OpILike:
			substr, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("ilike on %q needs a string value", f.Column)
			}
			pattern := "%" + escapeLike(strings.ToLower(substr)) + "%"
			if tx.Dialector.Name() == "postgres" {
				tx = tx.Where(clause.Expr{SQL: `? ILIKE ? ESCAPE '\'`, Vars: []any{column, pattern}})
				continue
			}
			// SQLite handles go through db.SQLite, whose LOWER folds Unicode.
			tx = tx.Where(clause.Expr{SQL: `LOWER(?) LIKE ? ESCAPE '\'`, Vars: []any{column, pattern}})
		default:
			return nil, fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	return tx, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
