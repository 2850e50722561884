package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"wesync/internal/domain/folder"
)

// FolderRepository папки в PostgreSQL. Порядок детей задается индексом
// (score, child_id), порядок журнала колонками kind, num, txt, is_add.
type FolderRepository struct {
	s *Storage
}

func NewFolderRepository(s *Storage) *FolderRepository {
	return &FolderRepository{s: s}
}

// Пересозданная папка продолжает счетчик из folder_tombstones
const ensureFolderQuery = `
	INSERT INTO folders (id, counter)
	VALUES ($1, COALESCE((SELECT counter FROM folder_tombstones WHERE id = $1), 0))
	ON CONFLICT (id) DO NOTHING
`

func (r *FolderRepository) CreateFolder(ctx context.Context, folderID string) error {
	if _, err := r.s.pool.Exec(ctx, ensureFolderQuery, folderID); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) DestroyFolder(ctx context.Context, folderID string) error {
	err := r.s.tx(ctx, func(q querier) error {
		for _, query := range []string{
			`INSERT INTO folder_tombstones (id, counter)
				SELECT id, counter FROM folders WHERE id = $1
				ON CONFLICT (id) DO UPDATE SET counter = EXCLUDED.counter`,
			`DELETE FROM folder_changes WHERE folder_id = $1`,
			`DELETE FROM folder_children WHERE folder_id = $1`,
			`DELETE FROM folders WHERE id = $1`,
		} {
			if _, err := q.Exec(ctx, query, folderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to destroy folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) FolderExists(ctx context.Context, folderID string) (bool, error) {
	var exists bool
	err := r.s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM folders WHERE id = $1)`, folderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check folder: %w", err)
	}
	return exists, nil
}

func (r *FolderRepository) Counter(ctx context.Context, folderID string) (int64, error) {
	var counter int64
	err := r.s.pool.QueryRow(ctx, `SELECT counter FROM folders WHERE id = $1`, folderID).Scan(&counter)
	if errors.Is(err, pgx.ErrNoRows) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return counter, nil
}

func (r *FolderRepository) IncrementCounter(ctx context.Context, folderID string) (int64, error) {
	query := `
		INSERT INTO folders (id, counter)
		VALUES ($1, COALESCE((SELECT counter FROM folder_tombstones WHERE id = $1), 0) + 1)
		ON CONFLICT (id) DO UPDATE SET counter = folders.counter + 1
		RETURNING counter
	`
	var counter int64
	if err := r.s.pool.QueryRow(ctx, query, folderID).Scan(&counter); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return counter, nil
}

// Журнал изменений

// changeOrder колонки сортировки журнала, повторяющие folder.CompareChanges
func changeOrder(c folder.Change) (kind int16, num int64, txt string) {
	if score, ok := c.Score(); ok {
		return 0, score, ""
	}
	return 1, 0, c.ChildID
}

const changeColumns = `child_id, is_add`
const changeOrderAsc = `ORDER BY kind, num, txt, is_add`
const changeOrderDesc = `ORDER BY kind DESC, num DESC, txt DESC, is_add DESC`

func scanChanges(rows pgx.Rows) ([]folder.Change, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (folder.Change, error) {
		var c folder.Change
		err := row.Scan(&c.ChildID, &c.IsAdd)
		return c, err
	})
}

func (r *FolderRepository) queryChanges(ctx context.Context, query string, args ...any) ([]folder.Change, error) {
	rows, err := r.s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	changes, err := scanChanges(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan changes: %w", err)
	}
	return changes, nil
}

func (r *FolderRepository) Changes(ctx context.Context, folderID string) ([]folder.Change, error) {
	return r.queryChanges(ctx, `SELECT `+changeColumns+` FROM folder_changes WHERE folder_id = $1 `+changeOrderAsc, folderID)
}

func (r *FolderRepository) ChangesRange(ctx context.Context, folderID string, begin, end int) ([]folder.Change, error) {
	n, err := r.CountChanges(ctx, folderID)
	if err != nil {
		return nil, err
	}
	offset, limit, ok := window(n, begin, end)
	if !ok {
		return nil, nil
	}
	return r.queryChanges(ctx,
		`SELECT `+changeColumns+` FROM folder_changes WHERE folder_id = $1 `+changeOrderAsc+` OFFSET $2 LIMIT $3`,
		folderID, offset, limit)
}

func (r *FolderRepository) ChangesAfter(ctx context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	if n <= 0 {
		return nil, nil
	}
	kind, num, txt := changeOrder(anchor)
	return r.queryChanges(ctx,
		`SELECT `+changeColumns+` FROM folder_changes
		WHERE folder_id = $1 AND (kind, num, txt, is_add) > ($2, $3, $4, $5) `+changeOrderAsc+` LIMIT $6`,
		folderID, kind, num, txt, anchor.IsAdd, n)
}

func (r *FolderRepository) ChangesBefore(ctx context.Context, folderID string, anchor folder.Change, n int) ([]folder.Change, error) {
	if n <= 0 {
		return nil, nil
	}
	kind, num, txt := changeOrder(anchor)
	changes, err := r.queryChanges(ctx,
		`SELECT `+changeColumns+` FROM folder_changes
		WHERE folder_id = $1 AND (kind, num, txt, is_add) < ($2, $3, $4, $5) `+changeOrderDesc+` LIMIT $6`,
		folderID, kind, num, txt, anchor.IsAdd, n)
	if err != nil {
		return nil, err
	}
	slices.Reverse(changes)
	return changes, nil
}

func (r *FolderRepository) CountChanges(ctx context.Context, folderID string) (int, error) {
	var n int
	err := r.s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM folder_changes WHERE folder_id = $1`, folderID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count changes: %w", err)
	}
	return n, nil
}

func (r *FolderRepository) AddChange(ctx context.Context, folderID string, c folder.Change) error {
	kind, num, txt := changeOrder(c)
	err := r.s.tx(ctx, func(q querier) error {
		if _, err := q.Exec(ctx, ensureFolderQuery, folderID); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
			INSERT INTO folder_changes (folder_id, kind, num, txt, is_add, child_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, folderID, kind, num, txt, c.IsAdd, c.ChildID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add change: %w", err)
	}
	return nil
}

func (r *FolderRepository) RemoveChange(ctx context.Context, folderID string, c folder.Change) (bool, error) {
	kind, num, txt := changeOrder(c)
	tag, err := r.s.pool.Exec(ctx,
		`DELETE FROM folder_changes WHERE folder_id = $1 AND kind = $2 AND num = $3 AND txt = $4 AND is_add = $5`,
		folderID, kind, num, txt, c.IsAdd)
	if err != nil {
		return false, fmt.Errorf("failed to remove change: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FolderRepository) RemoveFirstChanges(ctx context.Context, folderID string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := r.s.pool.Exec(ctx, `
		DELETE FROM folder_changes WHERE folder_id = $1 AND (kind, num, txt, is_add) IN (
			SELECT kind, num, txt, is_add FROM folder_changes WHERE folder_id = $1 `+changeOrderAsc+` LIMIT $2
		)
	`, folderID, n)
	if err != nil {
		return fmt.Errorf("failed to remove changes: %w", err)
	}
	return nil
}

func (r *FolderRepository) RemoveChangesThrough(ctx context.Context, folderID string, anchor folder.Change) error {
	kind, num, txt := changeOrder(anchor)
	_, err := r.s.pool.Exec(ctx,
		`DELETE FROM folder_changes WHERE folder_id = $1 AND (kind, num, txt, is_add) <= ($2, $3, $4, $5)`,
		folderID, kind, num, txt, anchor.IsAdd)
	if err != nil {
		return fmt.Errorf("failed to remove changes: %w", err)
	}
	return nil
}

func (r *FolderRepository) ClearChanges(ctx context.Context, folderID string) ([]folder.Change, error) {
	removed, err := r.queryChanges(ctx,
		`DELETE FROM folder_changes WHERE folder_id = $1 RETURNING `+changeColumns, folderID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(removed, folder.CompareChanges)
	return removed, nil
}

// Дети

const childColumns = `child_id, score`

func (r *FolderRepository) queryChildren(ctx context.Context, query string, args ...any) ([]folder.Child, error) {
	rows, err := r.s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	children, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (folder.Child, error) {
		var c folder.Child
		err := row.Scan(&c.ID, &c.Score)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan children: %w", err)
	}
	return children, nil
}

func (r *FolderRepository) Children(ctx context.Context, folderID string) ([]folder.Child, error) {
	return r.queryChildren(ctx,
		`SELECT `+childColumns+` FROM folder_children WHERE folder_id = $1 ORDER BY score, child_id`, folderID)
}

func (r *FolderRepository) ChildrenRange(ctx context.Context, folderID string, begin, end int) ([]folder.Child, error) {
	n, err := r.CountChildren(ctx, folderID)
	if err != nil {
		return nil, err
	}
	offset, limit, ok := window(n, begin, end)
	if !ok {
		return nil, nil
	}
	return r.queryChildren(ctx,
		`SELECT `+childColumns+` FROM folder_children WHERE folder_id = $1 ORDER BY score, child_id OFFSET $2 LIMIT $3`,
		folderID, offset, limit)
}

func (r *FolderRepository) ChildrenAfter(ctx context.Context, folderID string, childID string, n int) ([]folder.Child, error) {
	anchor, ok, err := r.locate(ctx, folderID, childID)
	if err != nil || !ok || n <= 0 {
		return nil, err
	}
	return r.queryChildren(ctx, `
		SELECT `+childColumns+` FROM folder_children
		WHERE folder_id = $1 AND (score, child_id) > ($2, $3)
		ORDER BY score, child_id LIMIT $4
	`, folderID, anchor.Score, anchor.ID, n)
}

func (r *FolderRepository) ChildrenBefore(ctx context.Context, folderID string, childID string, n int) ([]folder.Child, error) {
	anchor, ok, err := r.locate(ctx, folderID, childID)
	if err != nil || !ok || n <= 0 {
		return nil, err
	}
	children, err := r.queryChildren(ctx, `
		SELECT `+childColumns+` FROM folder_children
		WHERE folder_id = $1 AND (score, child_id) < ($2, $3)
		ORDER BY score DESC, child_id DESC LIMIT $4
	`, folderID, anchor.Score, anchor.ID, n)
	if err != nil {
		return nil, err
	}
	slices.Reverse(children)
	return children, nil
}

func (r *FolderRepository) CountChildren(ctx context.Context, folderID string) (int, error) {
	var n int
	err := r.s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM folder_children WHERE folder_id = $1`, folderID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return n, nil
}

func (r *FolderRepository) AddChild(ctx context.Context, folderID string, c folder.Child) error {
	insert := `
		INSERT INTO folder_children (folder_id, child_id, score) VALUES ($1, $2, $3)
		ON CONFLICT (folder_id, child_id) DO UPDATE SET score = EXCLUDED.score
	`
	if folder.TypeOf(folderID) == folder.Root {
		insert = `
			INSERT INTO folder_children (folder_id, child_id, score) VALUES ($1, $2, $3)
			ON CONFLICT (folder_id, child_id) DO NOTHING
		`
	}
	err := r.s.tx(ctx, func(q querier) error {
		if _, err := q.Exec(ctx, ensureFolderQuery, folderID); err != nil {
			return err
		}
		_, err := q.Exec(ctx, insert, folderID, c.ID, c.Score)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add child: %w", err)
	}
	return nil
}

func (r *FolderRepository) RemoveChild(ctx context.Context, folderID string, childID string) (bool, error) {
	tag, err := r.s.pool.Exec(ctx,
		`DELETE FROM folder_children WHERE folder_id = $1 AND child_id = $2`, folderID, childID)
	if err != nil {
		return false, fmt.Errorf("failed to remove child: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FolderRepository) RemoveFirstChildren(ctx context.Context, folderID string, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := r.s.pool.Exec(ctx, `
		DELETE FROM folder_children WHERE folder_id = $1 AND child_id IN (
			SELECT child_id FROM folder_children WHERE folder_id = $1 ORDER BY score, child_id LIMIT $2
		)
	`, folderID, n)
	if err != nil {
		return fmt.Errorf("failed to remove children: %w", err)
	}
	return nil
}

func (r *FolderRepository) ClearChildren(ctx context.Context, folderID string) error {
	if _, err := r.s.pool.Exec(ctx, `DELETE FROM folder_children WHERE folder_id = $1`, folderID); err != nil {
		return fmt.Errorf("failed to clear children: %w", err)
	}
	return nil
}

func (r *FolderRepository) IsChild(ctx context.Context, folderID string, childID string) (bool, error) {
	_, ok, err := r.score(ctx, folderID, childID)
	return ok, err
}

func (r *FolderRepository) score(ctx context.Context, folderID, childID string) (int64, bool, error) {
	var score int64
	err := r.s.pool.QueryRow(ctx,
		`SELECT score FROM folder_children WHERE folder_id = $1 AND child_id = $2`, folderID, childID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read child: %w", err)
	}
	return score, true, nil
}

func (r *FolderRepository) locate(ctx context.Context, folderID, childID string) (folder.Child, bool, error) {
	score, ok, err := r.score(ctx, folderID, childID)
	if err != nil {
		return folder.Child{}, false, err
	}
	if ok {
		return folder.Child{ID: childID, Score: score}, true, nil
	}
	c, ok := folder.AnchorChild(childID)
	return c, ok, nil
}

// window переводит индексы в стиле ZRANGE в OFFSET и LIMIT
func window(n, begin, end int) (offset, limit int, ok bool) {
	if n == 0 {
		return 0, 0, false
	}
	if begin < 0 {
		begin += n
	}
	if end < 0 {
		end += n
	}
	begin = max(begin, 0)
	end = min(end, n-1)
	if begin > end {
		return 0, 0, false
	}
	return begin, end - begin + 1, true
}
