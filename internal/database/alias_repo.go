package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/verdantlabs/menu-match/internal/models"
)

// AliasKind selects which alias table to operate on.
type AliasKind string

const (
	AliasKindVendor AliasKind = "vendor"
	AliasKindStrain AliasKind = "strain"
)

var (
	ErrAliasGroupNotFound = errors.New("alias group not found")
	ErrAliasGroupTooSmall = errors.New("alias group needs at least two names")
)

func aliasTable(kind AliasKind) string {
	if kind == AliasKindStrain {
		return "strain_aliases"
	}
	return "vendor_aliases"
}

// ListAliasGroups returns every alias group of a kind, names sorted within
// each group.
func (db *DB) ListAliasGroups(ctx context.Context, kind AliasKind) ([]*models.VendorAliasGroup, error) {
	rows, err := db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT group_id, name FROM %s ORDER BY group_id ASC, name ASC
	`, aliasTable(kind)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.VendorAliasGroup
	var current *models.VendorAliasGroup
	for rows.Next() {
		var groupID int
		var name string
		if err := rows.Scan(&groupID, &name); err != nil {
			return nil, err
		}
		if current == nil || current.GroupID != groupID {
			current = &models.VendorAliasGroup{GroupID: groupID}
			groups = append(groups, current)
		}
		current.Names = append(current.Names, name)
	}

	return groups, rows.Err()
}

// CreateAliasGroup creates a new alias group from a set of names and
// returns it with its assigned group id.
func (db *DB) CreateAliasGroup(ctx context.Context, kind AliasKind, names []string) (*models.VendorAliasGroup, error) {
	if len(names) < 2 {
		return nil, ErrAliasGroupTooSmall
	}

	table := aliasTable(kind)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var groupID int
	err = tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT COALESCE(MAX(group_id), 0) + 1 FROM %s
	`, table)).Scan(&groupID)
	if err != nil {
		return nil, err
	}

	group := &models.VendorAliasGroup{GroupID: groupID}
	for _, name := range names {
		_, err := tx.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (group_id, name) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, table), groupID, name)
		if err != nil {
			return nil, err
		}
		group.Names = append(group.Names, name)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return group, nil
}

// DeleteAliasGroup removes an alias group by id
func (db *DB) DeleteAliasGroup(ctx context.Context, kind AliasKind, groupID int) error {
	result, err := db.Pool.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE group_id = $1
	`, aliasTable(kind)), groupID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrAliasGroupNotFound
	}

	return nil
}
