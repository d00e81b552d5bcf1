package store

import (
	"database/sql"
	"errors"

	"cryptic-server/internal/model"
)

func scanFile(row *sql.Row) (*model.File, error) {
	var f model.File
	if err := row.Scan(&f.UUID, &f.Device, &f.Filename, &f.Content, &f.IsDirectory, &f.ParentDirUUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// GetFile returns the file only if it belongs to the given device.
func (s *Store) GetFile(deviceUUID, fileUUID string) (*model.File, error) {
	return scanFile(s.DB.QueryRow(
		`SELECT uuid, device, filename, content, is_directory, parent_dir_uuid
		 FROM device_file WHERE uuid = ? AND device = ?`, fileUUID, deviceUUID,
	))
}

// ListFiles returns the entries of one directory; a nil parent lists the root.
func (s *Store) ListFiles(deviceUUID string, parentDirUUID *string) ([]model.File, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentDirUUID == nil {
		rows, err = s.DB.Query(
			`SELECT uuid, device, filename, content, is_directory, parent_dir_uuid
			 FROM device_file WHERE device = ? AND parent_dir_uuid IS NULL ORDER BY filename`, deviceUUID,
		)
	} else {
		rows, err = s.DB.Query(
			`SELECT uuid, device, filename, content, is_directory, parent_dir_uuid
			 FROM device_file WHERE device = ? AND parent_dir_uuid = ? ORDER BY filename`, deviceUUID, *parentDirUUID,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.File, 0)
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.UUID, &f.Device, &f.Filename, &f.Content, &f.IsDirectory, &f.ParentDirUUID); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// FileExistsInDir reports whether a file with the name already exists in the
// given directory of the device.
func (s *Store) FileExistsInDir(deviceUUID string, parentDirUUID *string, filename string) (bool, error) {
	var (
		n   int
		err error
	)
	if parentDirUUID == nil {
		err = s.DB.QueryRow(
			`SELECT COUNT(*) FROM device_file WHERE device = ? AND parent_dir_uuid IS NULL AND filename = ?`,
			deviceUUID, filename,
		).Scan(&n)
	} else {
		err = s.DB.QueryRow(
			`SELECT COUNT(*) FROM device_file WHERE device = ? AND parent_dir_uuid = ? AND filename = ?`,
			deviceUUID, *parentDirUUID, filename,
		).Scan(&n)
	}
	return n > 0, err
}

func (s *Store) CreateFile(f model.File) error {
	_, err := s.DB.Exec(
		`INSERT INTO device_file (uuid, device, filename, content, is_directory, parent_dir_uuid)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.UUID, f.Device, f.Filename, f.Content, f.IsDirectory, f.ParentDirUUID,
	)
	return err
}

func (s *Store) UpdateFileContent(fileUUID, content string) error {
	_, err := s.DB.Exec(`UPDATE device_file SET content = ? WHERE uuid = ?`, content, fileUUID)
	return err
}

// MoveFile reparents and renames a file in one statement.
func (s *Store) MoveFile(fileUUID string, newParentDirUUID *string, newFilename string) error {
	_, err := s.DB.Exec(
		`UPDATE device_file SET parent_dir_uuid = ?, filename = ? WHERE uuid = ?`,
		newParentDirUUID, newFilename, fileUUID,
	)
	return err
}

// DeleteFile removes the file; for a directory the whole subtree goes with it.
func (s *Store) DeleteFile(deviceUUID, fileUUID string) error {
	return s.withTx(func(tx DBTX) error {
		pending := []string{fileUUID}
		for len(pending) > 0 {
			current := pending[0]
			pending = pending[1:]

			rows, err := tx.QueryContext(bg,
				`SELECT uuid FROM device_file WHERE device = ? AND parent_dir_uuid = ?`, deviceUUID, current,
			)
			if err != nil {
				return err
			}
			for rows.Next() {
				var child string
				if err := rows.Scan(&child); err != nil {
					rows.Close()
					return err
				}
				pending = append(pending, child)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return err
			}
			rows.Close()

			if _, err := tx.ExecContext(bg, `DELETE FROM device_file WHERE uuid = ?`, current); err != nil {
				return err
			}
		}
		return nil
	})
}

// IsAncestorDir reports whether candidate is fileUUID itself or any ancestor
// found by walking parent_dir_uuid up to the root. Used to reject moving a
// directory into its own subtree.
func (s *Store) IsAncestorDir(deviceUUID, fileUUID, candidate string) (bool, error) {
	current := candidate
	for current != "" {
		if current == fileUUID {
			return true, nil
		}
		var parent sql.NullString
		err := s.DB.QueryRow(
			`SELECT parent_dir_uuid FROM device_file WHERE uuid = ? AND device = ?`, current, deviceUUID,
		).Scan(&parent)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, err
		}
		if !parent.Valid {
			return false, nil
		}
		current = parent.String
	}
	return false, nil
}
