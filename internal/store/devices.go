package store

import (
	"database/sql"
	"errors"

	"cryptic-server/internal/model"
)

func (s *Store) CreateDevice(d model.Device) error {
	_, err := s.DB.Exec(
		`INSERT INTO device_device (uuid, name, owner, powered_on, starter_device) VALUES (?, ?, ?, ?, ?)`,
		d.UUID, d.Name, d.Owner, d.PoweredOn, d.StarterDevice,
	)
	return err
}

func scanDevice(row *sql.Row) (*model.Device, error) {
	var d model.Device
	if err := row.Scan(&d.UUID, &d.Name, &d.Owner, &d.PoweredOn, &d.StarterDevice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetDevice(deviceUUID string) (*model.Device, error) {
	return scanDevice(s.DB.QueryRow(
		`SELECT uuid, name, owner, powered_on, starter_device FROM device_device WHERE uuid = ?`,
		deviceUUID,
	))
}

func (s *Store) ListDevicesByOwner(owner string) ([]model.Device, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, name, owner, powered_on, starter_device FROM device_device WHERE owner = ? ORDER BY name`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Device, 0)
	for rows.Next() {
		var d model.Device
		if err := rows.Scan(&d.UUID, &d.Name, &d.Owner, &d.PoweredOn, &d.StarterDevice); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *Store) CountDevicesByOwner(owner string) (int, error) {
	var n int
	err := s.DB.QueryRow(`SELECT COUNT(*) FROM device_device WHERE owner = ?`, owner).Scan(&n)
	return n, err
}

// RandomPoweredDevice returns a random powered-on device of any owner, or nil
// when none exists.
func (s *Store) RandomPoweredDevice() (*model.Device, error) {
	return scanDevice(s.DB.QueryRow(
		`SELECT uuid, name, owner, powered_on, starter_device FROM device_device
		 WHERE powered_on = 1 ORDER BY RANDOM() LIMIT 1`,
	))
}

func (s *Store) UpdateDevicePower(deviceUUID string, poweredOn bool) error {
	_, err := s.DB.Exec(`UPDATE device_device SET powered_on = ? WHERE uuid = ?`, poweredOn, deviceUUID)
	return err
}

func (s *Store) UpdateDeviceName(deviceUUID, name string) error {
	_, err := s.DB.Exec(`UPDATE device_device SET name = ? WHERE uuid = ?`, name, deviceUUID)
	return err
}

// DeleteDevice removes the device together with everything scoped to it:
// hardware, workload, files, services and their specialization rows.
func (s *Store) DeleteDevice(deviceUUID string) error {
	return s.withTx(func(tx DBTX) error {
		stmts := []string{
			`DELETE FROM service_bruteforce WHERE uuid IN (SELECT uuid FROM service_service WHERE device = ?)`,
			`DELETE FROM service_miner WHERE uuid IN (SELECT uuid FROM service_service WHERE device = ?)`,
			`DELETE FROM device_service_req WHERE device_uuid = ?`,
			`DELETE FROM service_service WHERE device = ?`,
			`DELETE FROM device_file WHERE device = ?`,
			`DELETE FROM device_hardware WHERE device_uuid = ?`,
			`DELETE FROM device_workload WHERE uuid = ?`,
			`DELETE FROM device_device WHERE uuid = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(bg, stmt, deviceUUID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AddHardwareElement(el model.HardwareElement) error {
	_, err := s.DB.Exec(
		`INSERT INTO device_hardware (uuid, device_uuid, hardware_type, hardware_element) VALUES (?, ?, ?, ?)`,
		el.UUID, el.DeviceUUID, el.HardwareType, el.HardwareElement,
	)
	return err
}

func (s *Store) ListHardware(deviceUUID string) ([]model.HardwareElement, error) {
	rows, err := s.DB.Query(
		`SELECT uuid, device_uuid, hardware_type, hardware_element FROM device_hardware WHERE device_uuid = ?`,
		deviceUUID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.HardwareElement, 0)
	for rows.Next() {
		var el model.HardwareElement
		if err := rows.Scan(&el.UUID, &el.DeviceUUID, &el.HardwareType, &el.HardwareElement); err != nil {
			return nil, err
		}
		result = append(result, el)
	}
	return result, rows.Err()
}

func (s *Store) SetWorkload(w model.Workload) error {
	_, err := s.DB.Exec(
		`INSERT INTO device_workload
		 (uuid, performance_cpu, performance_gpu, performance_ram, performance_disk, performance_network,
		  usage_cpu, usage_gpu, usage_ram, usage_disk, usage_network)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uuid) DO UPDATE SET
		  performance_cpu=excluded.performance_cpu, performance_gpu=excluded.performance_gpu,
		  performance_ram=excluded.performance_ram, performance_disk=excluded.performance_disk,
		  performance_network=excluded.performance_network,
		  usage_cpu=excluded.usage_cpu, usage_gpu=excluded.usage_gpu, usage_ram=excluded.usage_ram,
		  usage_disk=excluded.usage_disk, usage_network=excluded.usage_network`,
		w.UUID, w.PerformanceCPU, w.PerformanceGPU, w.PerformanceRAM, w.PerformanceDisk, w.PerformanceNetwork,
		w.UsageCPU, w.UsageGPU, w.UsageRAM, w.UsageDisk, w.UsageNetwork,
	)
	return err
}

func (s *Store) GetWorkload(deviceUUID string) (*model.Workload, error) {
	row := s.DB.QueryRow(
		`SELECT uuid, performance_cpu, performance_gpu, performance_ram, performance_disk, performance_network,
		        usage_cpu, usage_gpu, usage_ram, usage_disk, usage_network
		 FROM device_workload WHERE uuid = ?`, deviceUUID,
	)
	var w model.Workload
	err := row.Scan(&w.UUID, &w.PerformanceCPU, &w.PerformanceGPU, &w.PerformanceRAM, &w.PerformanceDisk,
		&w.PerformanceNetwork, &w.UsageCPU, &w.UsageGPU, &w.UsageRAM, &w.UsageDisk, &w.UsageNetwork)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (s *Store) CreateServiceRequirement(r model.ServiceRequirement) error {
	_, err := s.DB.Exec(
		`INSERT INTO device_service_req
		 (service_uuid, device_uuid, allocated_cpu, allocated_ram, allocated_gpu, allocated_disk, allocated_network)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ServiceUUID, r.DeviceUUID, r.AllocatedCPU, r.AllocatedRAM, r.AllocatedGPU, r.AllocatedDisk, r.AllocatedNetwork,
	)
	return err
}

func (s *Store) GetServiceRequirement(serviceUUID string) (*model.ServiceRequirement, error) {
	row := s.DB.QueryRow(
		`SELECT service_uuid, device_uuid, allocated_cpu, allocated_ram, allocated_gpu, allocated_disk, allocated_network
		 FROM device_service_req WHERE service_uuid = ?`, serviceUUID,
	)
	var r model.ServiceRequirement
	err := row.Scan(&r.ServiceUUID, &r.DeviceUUID, &r.AllocatedCPU, &r.AllocatedRAM, &r.AllocatedGPU,
		&r.AllocatedDisk, &r.AllocatedNetwork)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
