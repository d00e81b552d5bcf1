package store

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"cryptic-server/internal/model"
)

func scanNetwork(row *sql.Row) (*model.Network, error) {
	var n model.Network
	if err := row.Scan(&n.UUID, &n.Name, &n.Owner, &n.Hidden); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func collectNetworks(rows *sql.Rows) ([]model.Network, error) {
	defer rows.Close()
	result := make([]model.Network, 0)
	for rows.Next() {
		var n model.Network
		if err := rows.Scan(&n.UUID, &n.Name, &n.Owner, &n.Hidden); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (s *Store) GetNetwork(networkUUID string) (*model.Network, error) {
	return scanNetwork(s.DB.QueryRow(
		`SELECT uuid, name, owner, hidden FROM network_network WHERE uuid = ?`, networkUUID,
	))
}

func (s *Store) GetNetworkByName(name string) (*model.Network, error) {
	return scanNetwork(s.DB.QueryRow(
		`SELECT uuid, name, owner, hidden FROM network_network WHERE name = ?`, name,
	))
}

func (s *Store) ListPublicNetworks() ([]model.Network, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, name, owner, hidden FROM network_network WHERE hidden = 0`,
	)
	if err != nil {
		return nil, err
	}
	return collectNetworks(rows)
}

// ListNetworksByMember returns every network a device belongs to, owned
// networks included.
func (s *Store) ListNetworksByMember(deviceUUID string) ([]model.Network, error) {
	rows, err := s.DB.Query(
		`SELECT n.uuid, n.name, n.owner, n.hidden FROM network_network n
		 JOIN network_member m ON m.network = n.uuid
		 WHERE m.device = ?`,
		deviceUUID,
	)
	if err != nil {
		return nil, err
	}
	return collectNetworks(rows)
}

func (s *Store) ListNetworksByOwner(deviceUUID string) ([]model.Network, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, name, owner, hidden FROM network_network WHERE owner = ?`, deviceUUID,
	)
	if err != nil {
		return nil, err
	}
	return collectNetworks(rows)
}

func (s *Store) CountNetworksByOwner(deviceUUID string) (int, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM network_network WHERE owner = ?`, deviceUUID,
	).Scan(&n)
	return n, err
}

// CreateNetwork inserts the network and its owner membership together.
func (s *Store) CreateNetwork(name, ownerDevice string, hidden bool) (*model.Network, error) {
	n := model.Network{UUID: uuid.NewString(), Name: name, Owner: ownerDevice, Hidden: hidden}
	err := s.withTx(func(tx DBTX) error {
		if _, err := tx.ExecContext(bg,
			`INSERT INTO network_network (uuid, name, owner, hidden) VALUES (?, ?, ?, ?)`,
			n.UUID, n.Name, n.Owner, n.Hidden,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(bg,
			`INSERT INTO network_member (uuid, network, device) VALUES (?, ?, ?)`,
			uuid.NewString(), n.UUID, ownerDevice,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) DeleteNetwork(networkUUID string) error {
	return s.withTx(func(tx DBTX) error {
		if _, err := tx.ExecContext(bg,
			`DELETE FROM network_invitation WHERE network = ?`, networkUUID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(bg,
			`DELETE FROM network_member WHERE network = ?`, networkUUID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(bg, `DELETE FROM network_network WHERE uuid = ?`, networkUUID)
		return err
	})
}

func (s *Store) IsNetworkMember(networkUUID, deviceUUID string) (bool, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM network_member WHERE network = ? AND device = ?`,
		networkUUID, deviceUUID,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) AddNetworkMember(networkUUID, deviceUUID string) error {
	_, err := s.DB.Exec(
		`INSERT INTO network_member (uuid, network, device) VALUES (?, ?, ?)`,
		uuid.NewString(), networkUUID, deviceUUID,
	)
	return err
}

func (s *Store) RemoveNetworkMember(networkUUID, deviceUUID string) (bool, error) {
	res, err := s.DB.Exec(
		`DELETE FROM network_member WHERE network = ? AND device = ?`, networkUUID, deviceUUID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ListNetworkMembers(networkUUID string) ([]model.NetworkMember, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, network, device FROM network_member WHERE network = ?`, networkUUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.NetworkMember, 0)
	for rows.Next() {
		var m model.NetworkMember
		if err := rows.Scan(&m.UUID, &m.Network, &m.Device); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanInvitation(row *sql.Row) (*model.NetworkInvitation, error) {
	var inv model.NetworkInvitation
	if err := row.Scan(&inv.UUID, &inv.Network, &inv.Device, &inv.Request); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) GetInvitation(invitationUUID string) (*model.NetworkInvitation, error) {
	return scanInvitation(s.DB.QueryRow(
		`SELECT uuid, network, device, request FROM network_invitation WHERE uuid = ?`,
		invitationUUID,
	))
}

// GetInvitationFor finds any pending invitation or join request tying the
// device to the network, regardless of direction.
func (s *Store) GetInvitationFor(networkUUID, deviceUUID string) (*model.NetworkInvitation, error) {
	return scanInvitation(s.DB.QueryRow(
		`SELECT uuid, network, device, request FROM network_invitation WHERE network = ? AND device = ?`,
		networkUUID, deviceUUID,
	))
}

func (s *Store) CreateInvitation(networkUUID, deviceUUID string, request bool) (*model.NetworkInvitation, error) {
	inv := model.NetworkInvitation{
		UUID:    uuid.NewString(),
		Network: networkUUID,
		Device:  deviceUUID,
		Request: request,
	}
	_, err := s.DB.Exec(
		`INSERT INTO network_invitation (uuid, network, device, request) VALUES (?, ?, ?, ?)`,
		inv.UUID, inv.Network, inv.Device, inv.Request,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) DeleteInvitation(invitationUUID string) error {
	_, err := s.DB.Exec(`DELETE FROM network_invitation WHERE uuid = ?`, invitationUUID)
	return err
}

func collectInvitations(rows *sql.Rows) ([]model.NetworkInvitation, error) {
	defer rows.Close()
	result := make([]model.NetworkInvitation, 0)
	for rows.Next() {
		var inv model.NetworkInvitation
		if err := rows.Scan(&inv.UUID, &inv.Network, &inv.Device, &inv.Request); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// ListInvitationsByDevice returns the entries addressed to a device:
// invitations when request is false, the device's own join requests when
// request is true.
func (s *Store) ListInvitationsByDevice(deviceUUID string, request bool) ([]model.NetworkInvitation, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, network, device, request FROM network_invitation WHERE device = ? AND request = ?`,
		deviceUUID, request,
	)
	if err != nil {
		return nil, err
	}
	return collectInvitations(rows)
}

func (s *Store) ListInvitationsByNetwork(networkUUID string, request bool) ([]model.NetworkInvitation, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, network, device, request FROM network_invitation WHERE network = ? AND request = ?`,
		networkUUID, request,
	)
	if err != nil {
		return nil, err
	}
	return collectInvitations(rows)
}
