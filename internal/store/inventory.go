package store

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"cryptic-server/internal/model"
)

func (s *Store) ListInventory(owner string) ([]model.InventoryElement, error) {
	rows, err := s.DB.Query(
		`SELECT element_uuid, element_name, related_ms, owner FROM inventory_inventory WHERE owner = ?`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.InventoryElement, 0)
	for rows.Next() {
		var el model.InventoryElement
		if err := rows.Scan(&el.ElementUUID, &el.ElementName, &el.RelatedMS, &el.Owner); err != nil {
			return nil, err
		}
		result = append(result, el)
	}
	return result, rows.Err()
}

func (s *Store) GetInventoryElement(elementUUID string) (*model.InventoryElement, error) {
	row := s.DB.QueryRow(
		`SELECT element_uuid, element_name, related_ms, owner FROM inventory_inventory WHERE element_uuid = ?`,
		elementUUID,
	)
	var el model.InventoryElement
	if err := row.Scan(&el.ElementUUID, &el.ElementName, &el.RelatedMS, &el.Owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &el, nil
}

func (s *Store) CreateInventoryElement(el model.InventoryElement) error {
	_, err := s.DB.Exec(
		`INSERT INTO inventory_inventory (element_uuid, element_name, related_ms, owner) VALUES (?, ?, ?, ?)`,
		el.ElementUUID, el.ElementName, el.RelatedMS, el.Owner,
	)
	return err
}

func (s *Store) UpdateInventoryOwner(elementUUID, newOwner string) error {
	_, err := s.DB.Exec(
		`UPDATE inventory_inventory SET owner = ? WHERE element_uuid = ?`, newOwner, elementUUID,
	)
	return err
}

// CountInventoryNamed returns how many elements with the given name the
// owner holds.
func (s *Store) CountInventoryNamed(owner, name string) (int, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM inventory_inventory WHERE owner = ? AND element_name = ?`, owner, name,
	).Scan(&n)
	return n, err
}

// ConsumeInventoryElements removes exactly one element per name from the
// owner's inventory, all-or-nothing. Returns ErrNotFound with no mutation
// when any name is missing.
func (s *Store) ConsumeInventoryElements(owner string, names []string) error {
	return s.withTx(func(tx DBTX) error {
		for _, name := range names {
			var elementUUID string
			err := tx.QueryRowContext(bg,
				`SELECT element_uuid FROM inventory_inventory WHERE owner = ? AND element_name = ? LIMIT 1`,
				owner, name,
			).Scan(&elementUUID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrNotFound
				}
				return err
			}
			if _, err := tx.ExecContext(bg,
				`DELETE FROM inventory_inventory WHERE element_uuid = ?`, elementUUID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// GrantInventoryElements inserts one element per unit inside tx and returns
// the created rows.
func GrantInventoryElements(tx DBTX, owner, name, relatedMS string, count int) ([]model.InventoryElement, error) {
	result := make([]model.InventoryElement, 0, count)
	for i := 0; i < count; i++ {
		el := model.InventoryElement{
			ElementUUID: uuid.NewString(),
			ElementName: name,
			RelatedMS:   relatedMS,
			Owner:       owner,
		}
		if _, err := tx.ExecContext(bg,
			`INSERT INTO inventory_inventory (element_uuid, element_name, related_ms, owner) VALUES (?, ?, ?, ?)`,
			el.ElementUUID, el.ElementName, el.RelatedMS, el.Owner,
		); err != nil {
			return nil, err
		}
		result = append(result, el)
	}
	return result, nil
}
