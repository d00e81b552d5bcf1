package store

import (
	"database/sql"
	"errors"

	"cryptic-server/internal/model"
)

func (s *Store) CreateService(svc model.Service) error {
	_, err := s.DB.Exec(
		`INSERT INTO service_service (uuid, device, owner, name, running, running_port, part_owner, speed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.UUID, svc.Device, svc.Owner, svc.Name, svc.Running, svc.RunningPort, svc.PartOwner, svc.Speed,
	)
	return err
}

func scanService(row *sql.Row) (*model.Service, error) {
	var svc model.Service
	err := row.Scan(&svc.UUID, &svc.Device, &svc.Owner, &svc.Name,
		&svc.Running, &svc.RunningPort, &svc.PartOwner, &svc.Speed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}

func collectServices(rows *sql.Rows) ([]model.Service, error) {
	defer rows.Close()
	result := make([]model.Service, 0)
	for rows.Next() {
		var svc model.Service
		err := rows.Scan(&svc.UUID, &svc.Device, &svc.Owner, &svc.Name,
			&svc.Running, &svc.RunningPort, &svc.PartOwner, &svc.Speed)
		if err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}

const serviceCols = `uuid, device, owner, name, running, running_port, part_owner, speed`

// GetService looks up a service scoped to its device; the protocol always
// addresses services by the device and service pair.
func (s *Store) GetService(deviceUUID, serviceUUID string) (*model.Service, error) {
	return scanService(s.DB.QueryRow(
		`SELECT `+serviceCols+` FROM service_service WHERE uuid = ? AND device = ?`,
		serviceUUID, deviceUUID,
	))
}

// GetServiceByUUID looks a service up without a device scope; the miner
// endpoints address services by uuid alone.
func (s *Store) GetServiceByUUID(serviceUUID string) (*model.Service, error) {
	return scanService(s.DB.QueryRow(
		`SELECT `+serviceCols+` FROM service_service WHERE uuid = ?`, serviceUUID,
	))
}

func (s *Store) ListServices(deviceUUID string) ([]model.Service, error) {
	rows, err := s.DB.Query(
		`SELECT `+serviceCols+` FROM service_service WHERE device = ?`, deviceUUID,
	)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func (s *Store) ListServicesByPartOwner(userUUID string) ([]model.Service, error) {
	rows, err := s.DB.Query(
		`SELECT `+serviceCols+` FROM service_service WHERE part_owner = ?`, userUUID,
	)
	if err != nil {
		return nil, err
	}
	return collectServices(rows)
}

func (s *Store) GetServiceOnDeviceNamed(deviceUUID, name string) (*model.Service, error) {
	return scanService(s.DB.QueryRow(
		`SELECT `+serviceCols+` FROM service_service WHERE device = ? AND name = ?`,
		deviceUUID, name,
	))
}

// AnyRunningServiceNamed reports whether another running instance of the
// named service exists on the device. Two copies of one service cannot run
// side by side.
func (s *Store) AnyRunningServiceNamed(deviceUUID, name, excludeUUID string) (bool, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM service_service WHERE device = ? AND name = ? AND running = 1 AND uuid != ?`,
		deviceUUID, name, excludeUUID,
	).Scan(&n)
	return n > 0, err
}

// HasPartOwnerAccess reports whether the user hacked their way onto the
// device through any of its services.
func (s *Store) HasPartOwnerAccess(deviceUUID, userUUID string) (bool, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM service_service WHERE device = ? AND part_owner = ?`,
		deviceUUID, userUUID,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) SetServiceRunning(serviceUUID string, running bool) error {
	_, err := s.DB.Exec(
		`UPDATE service_service SET running = ? WHERE uuid = ?`, running, serviceUUID,
	)
	return err
}

func (s *Store) SetServicePartOwner(serviceUUID string, partOwner *string) error {
	_, err := s.DB.Exec(
		`UPDATE service_service SET part_owner = ? WHERE uuid = ?`, partOwner, serviceUUID,
	)
	return err
}

// DeleteService removes the service, any specialization row attached to it
// and its resource allocation.
func (s *Store) DeleteService(serviceUUID string) error {
	return s.withTx(func(tx DBTX) error {
		if _, err := tx.ExecContext(bg,
			`DELETE FROM service_bruteforce WHERE uuid = ?`, serviceUUID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(bg,
			`DELETE FROM device_service_req WHERE service_uuid = ?`, serviceUUID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(bg,
			`DELETE FROM service_miner WHERE uuid = ?`, serviceUUID,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(bg, `DELETE FROM service_service WHERE uuid = ?`, serviceUUID)
		return err
	})
}

func (s *Store) GetBruteforce(serviceUUID string) (*model.BruteforceAttack, error) {
	var b model.BruteforceAttack
	err := s.DB.QueryRow(
		`SELECT uuid, started, target_device, target_service, progress FROM service_bruteforce WHERE uuid = ?`,
		serviceUUID,
	).Scan(&b.UUID, &b.Started, &b.TargetDevice, &b.TargetService, &b.Progress)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) CreateBruteforce(b model.BruteforceAttack) error {
	_, err := s.DB.Exec(
		`INSERT INTO service_bruteforce (uuid, started, target_device, target_service, progress)
		 VALUES (?, ?, ?, ?, ?)`,
		b.UUID, b.Started, b.TargetDevice, b.TargetService, b.Progress,
	)
	return err
}

func (s *Store) UpdateBruteforce(b model.BruteforceAttack) error {
	_, err := s.DB.Exec(
		`UPDATE service_bruteforce SET started = ?, target_device = ?, target_service = ?, progress = ? WHERE uuid = ?`,
		b.Started, b.TargetDevice, b.TargetService, b.Progress, b.UUID,
	)
	return err
}

func (s *Store) GetMiner(serviceUUID string) (*model.MinerState, error) {
	var m model.MinerState
	err := s.DB.QueryRow(
		`SELECT uuid, wallet, started, power FROM service_miner WHERE uuid = ?`, serviceUUID,
	).Scan(&m.UUID, &m.Wallet, &m.Started, &m.Power)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMiner(m model.MinerState) error {
	_, err := s.DB.Exec(
		`INSERT INTO service_miner (uuid, wallet, started, power) VALUES (?, ?, ?, ?)`,
		m.UUID, m.Wallet, m.Started, m.Power,
	)
	return err
}

func (s *Store) UpdateMiner(m model.MinerState) error {
	_, err := s.DB.Exec(
		`UPDATE service_miner SET wallet = ?, started = ?, power = ? WHERE uuid = ?`,
		m.Wallet, m.Started, m.Power, m.UUID,
	)
	return err
}

// ListMinersByWallet returns the miners paying into a wallet along with their
// carrying service rows.
func (s *Store) ListMinersByWallet(walletUUID string) ([]model.MinerState, []model.Service, error) {
	rows, err := s.DB.Query(
		`SELECT m.uuid, m.wallet, m.started, m.power,
		        s.uuid, s.device, s.owner, s.name, s.running, s.running_port, s.part_owner, s.speed
		 FROM service_miner m
		 JOIN service_service s ON s.uuid = m.uuid
		 WHERE m.wallet = ?`,
		walletUUID,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	miners := make([]model.MinerState, 0)
	services := make([]model.Service, 0)
	for rows.Next() {
		var m model.MinerState
		var svc model.Service
		err := rows.Scan(&m.UUID, &m.Wallet, &m.Started, &m.Power,
			&svc.UUID, &svc.Device, &svc.Owner, &svc.Name,
			&svc.Running, &svc.RunningPort, &svc.PartOwner, &svc.Speed)
		if err != nil {
			return nil, nil, err
		}
		miners = append(miners, m)
		services = append(services, svc)
	}
	return miners, services, rows.Err()
}

// RunningMiners returns every miner whose service is currently running,
// joined with its speed, for the periodic coin accrual sweep.
func (s *Store) RunningMiners() ([]model.MinerState, []model.Service, error) {
	rows, err := s.DB.Query(
		`SELECT m.uuid, m.wallet, m.started, m.power,
		        s.uuid, s.device, s.owner, s.name, s.running, s.running_port, s.part_owner, s.speed
		 FROM service_miner m
		 JOIN service_service s ON s.uuid = m.uuid
		 WHERE s.running = 1 AND m.wallet IS NOT NULL`,
	)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	miners := make([]model.MinerState, 0)
	services := make([]model.Service, 0)
	for rows.Next() {
		var m model.MinerState
		var svc model.Service
		err := rows.Scan(&m.UUID, &m.Wallet, &m.Started, &m.Power,
			&svc.UUID, &svc.Device, &svc.Owner, &svc.Name,
			&svc.Running, &svc.RunningPort, &svc.PartOwner, &svc.Speed)
		if err != nil {
			return nil, nil, err
		}
		miners = append(miners, m)
		services = append(services, svc)
	}
	return miners, services, rows.Err()
}
