package database

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/lysyi3m/rss-picks/app/errs"
)

type preferenceRepository struct {
	db *DB
}

func NewPreferenceRepository(db *DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) ListAuthors(ctx context.Context, userID string) ([]Preference, error) {
	return r.list(ctx, userID, PreferenceAuthor)
}

func (r *preferenceRepository) ListCategories(ctx context.Context, userID string) ([]Preference, error) {
	return r.list(ctx, userID, PreferenceCategory)
}

func (r *preferenceRepository) AddAuthor(ctx context.Context, userID, name string) (int64, error) {
	return r.add(ctx, userID, PreferenceAuthor, name)
}

func (r *preferenceRepository) AddCategory(ctx context.Context, userID, name string) (int64, error) {
	return r.add(ctx, userID, PreferenceCategory, name)
}

func (r *preferenceRepository) RemoveAuthor(ctx context.Context, userID, name string) (int64, error) {
	return r.remove(ctx, userID, PreferenceAuthor, name)
}

func (r *preferenceRepository) RemoveCategory(ctx context.Context, userID, name string) (int64, error) {
	return r.remove(ctx, userID, PreferenceCategory, name)
}

func (r *preferenceRepository) CompactDuplicates(ctx context.Context) (int64, error) {
	var total int64
	for _, kind := range []PreferenceKind{PreferenceAuthor, PreferenceCategory} {
		table, _ := kind.table()
		query := fmt.Sprintf(
			"DELETE FROM %s WHERE id NOT IN (SELECT MIN(id) FROM %s GROUP BY user_id, name)",
			table, table)

		result, err := r.db.ExecContext(ctx, query)
		if err != nil {
			return total, errs.Storage("compact "+table, err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return total, errs.Storage("compact "+table, err)
		}
		total += removed
	}
	return total, nil
}

// list returns the saved names in insertion order with case-insensitive
// duplicates collapsed onto their first spelling.
func (r *preferenceRepository) list(ctx context.Context, userID string, kind PreferenceKind) ([]Preference, error) {
	table, err := kind.table()
	if err != nil {
		return nil, err
	}

	prefs, err := r.selectAll(ctx, table, userID)
	if err != nil {
		return nil, err
	}

	return lo.UniqBy(prefs, func(p Preference) string {
		return foldName(p.Name)
	}), nil
}

func (r *preferenceRepository) selectAll(ctx context.Context, table, userID string) ([]Preference, error) {
	sb := r.db.Flavor.NewSelectBuilder()
	sb.Select("id", "name").
		From(table).
		Where(sb.Equal("user_id", userID)).
		OrderBy("id").Asc()
	query, args := sb.Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Storage("list "+table, err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var pref Preference
		if err := rows.Scan(&pref.ID, &pref.Name); err != nil {
			return nil, errs.Storage("scan "+table, err)
		}
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list "+table, err)
	}

	return prefs, nil
}

// foldName is the comparison key shared by listing and removal. SQL LOWER
// folds ASCII only, so names are compared here.
func foldName(name string) string {
	return cases.Fold().String(name)
}

func (r *preferenceRepository) add(ctx context.Context, userID string, kind PreferenceKind, name string) (int64, error) {
	table, err := kind.table()
	if err != nil {
		return 0, err
	}

	ib := r.db.Flavor.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("user_id", "name").
		Values(userID, name)
	query, args := ib.Build()

	var id int64
	if err := r.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, errs.Storage("insert into "+table, err)
	}

	return id, nil
}

func (r *preferenceRepository) remove(ctx context.Context, userID string, kind PreferenceKind, name string) (int64, error) {
	table, err := kind.table()
	if err != nil {
		return 0, err
	}

	prefs, err := r.selectAll(ctx, table, userID)
	if err != nil {
		return 0, err
	}

	want := foldName(name)
	ids := lo.FilterMap(prefs, func(p Preference, _ int) (any, bool) {
		return p.ID, foldName(p.Name) == want
	})
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.db.Flavor.NewDeleteBuilder()
	db.DeleteFrom(table).Where(
		db.Equal("user_id", userID),
		db.In("id", ids...),
	)
	query, args := db.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errs.Storage("delete from "+table, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, errs.Storage("delete from "+table, err)
	}

	return removed, nil
}
