package store

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups that must distinguish a missing row
// inside a transaction; plain getters return a nil pointer instead.
var ErrNotFound = errors.New("store: not found")

// ErrInsufficientFunds is returned by wallet transfers whose source balance
// cannot cover the amount.
var ErrInsufficientFunds = errors.New("store: insufficient funds")

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer, and :memory: databases exist per
	// connection; one pooled connection serves both cases.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user (
			uuid TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created INTEGER NOT NULL,
			last INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session (
			uuid TEXT PRIMARY KEY,
			user TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			created INTEGER NOT NULL,
			valid INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			user TEXT NOT NULL,
			setting_key TEXT NOT NULL,
			setting_value TEXT NOT NULL,
			PRIMARY KEY (user, setting_key)
		);`,
		`CREATE TABLE IF NOT EXISTS device_device (
			uuid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner TEXT NOT NULL,
			powered_on INTEGER NOT NULL,
			starter_device INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_device_owner ON device_device(owner);`,
		`CREATE TABLE IF NOT EXISTS device_hardware (
			uuid TEXT PRIMARY KEY,
			device_uuid TEXT NOT NULL,
			hardware_type TEXT NOT NULL,
			hardware_element TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS device_workload (
			uuid TEXT PRIMARY KEY,
			performance_cpu REAL NOT NULL,
			performance_gpu REAL NOT NULL,
			performance_ram REAL NOT NULL,
			performance_disk REAL NOT NULL,
			performance_network REAL NOT NULL,
			usage_cpu REAL NOT NULL,
			usage_gpu REAL NOT NULL,
			usage_ram REAL NOT NULL,
			usage_disk REAL NOT NULL,
			usage_network REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS device_service_req (
			service_uuid TEXT PRIMARY KEY,
			device_uuid TEXT NOT NULL,
			allocated_cpu REAL NOT NULL,
			allocated_ram REAL NOT NULL,
			allocated_gpu REAL NOT NULL,
			allocated_disk REAL NOT NULL,
			allocated_network REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS device_file (
			uuid TEXT PRIMARY KEY,
			device TEXT NOT NULL,
			filename TEXT NOT NULL,
			content TEXT NOT NULL,
			is_directory INTEGER NOT NULL,
			parent_dir_uuid TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_file_device_parent ON device_file(device, parent_dir_uuid);`,
		`CREATE TABLE IF NOT EXISTS inventory_inventory (
			element_uuid TEXT PRIMARY KEY,
			element_name TEXT NOT NULL,
			related_ms TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS currency_wallet (
			source_uuid TEXT PRIMARY KEY,
			time_stamp INTEGER NOT NULL,
			key TEXT NOT NULL,
			amount INTEGER NOT NULL,
			user_uuid TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS currency_transaction (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time_stamp INTEGER NOT NULL,
			source_uuid TEXT NOT NULL,
			destination_uuid TEXT NOT NULL,
			send_amount INTEGER NOT NULL,
			usage TEXT NOT NULL,
			origin INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS network_network (
			uuid TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			owner TEXT NOT NULL,
			hidden INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS network_member (
			uuid TEXT PRIMARY KEY,
			device TEXT NOT NULL,
			network TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS network_invitation (
			uuid TEXT PRIMARY KEY,
			device TEXT NOT NULL,
			network TEXT NOT NULL,
			request INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS service_service (
			uuid TEXT PRIMARY KEY,
			device TEXT NOT NULL,
			owner TEXT NOT NULL,
			name TEXT NOT NULL,
			running INTEGER NOT NULL,
			running_port INTEGER NOT NULL,
			part_owner TEXT,
			speed REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_service_device ON service_service(device);`,
		`CREATE TABLE IF NOT EXISTS service_bruteforce (
			uuid TEXT PRIMARY KEY,
			started INTEGER NOT NULL,
			target_device TEXT NOT NULL,
			target_service TEXT NOT NULL,
			progress REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS service_miner (
			uuid TEXT PRIMARY KEY,
			wallet TEXT,
			started INTEGER NOT NULL,
			power REAL NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// DBTX is the subset of database/sql used by store methods. Both *sql.DB and
// *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Store wraps the sqlite handle with the domain queries.
type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

var bg = context.Background()

func (s *Store) withTx(fn func(tx DBTX) error) error {
	return WithTx(bg, s.DB, func(_ context.Context, tx DBTX) error { return fn(tx) })
}
