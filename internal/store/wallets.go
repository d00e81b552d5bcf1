package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"cryptic-server/internal/model"
)

// newWalletKey returns the 10-hex-digit wallet secret.
func newWalletKey() (string, error) {
	raw := make([]byte, 5)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func (s *Store) CreateWallet(userUUID string) (*model.Wallet, error) {
	key, err := newWalletKey()
	if err != nil {
		return nil, err
	}
	w := model.Wallet{
		TimeStamp:  time.Now().Unix(),
		SourceUUID: uuid.NewString(),
		Key:        key,
		Amount:     0,
		UserUUID:   userUUID,
	}
	_, err = s.DB.Exec(
		`INSERT INTO currency_wallet (source_uuid, time_stamp, key, amount, user_uuid) VALUES (?, ?, ?, ?, ?)`,
		w.SourceUUID, w.TimeStamp, w.Key, w.Amount, w.UserUUID,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWallet(row *sql.Row) (*model.Wallet, error) {
	var w model.Wallet
	if err := row.Scan(&w.SourceUUID, &w.TimeStamp, &w.Key, &w.Amount, &w.UserUUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (s *Store) GetWallet(sourceUUID string) (*model.Wallet, error) {
	return scanWallet(s.DB.QueryRow(
		`SELECT source_uuid, time_stamp, key, amount, user_uuid FROM currency_wallet WHERE source_uuid = ?`,
		sourceUUID,
	))
}

func (s *Store) GetWalletByUser(userUUID string) (*model.Wallet, error) {
	return scanWallet(s.DB.QueryRow(
		`SELECT source_uuid, time_stamp, key, amount, user_uuid FROM currency_wallet WHERE user_uuid = ?`,
		userUUID,
	))
}

func (s *Store) ListWalletUUIDsByUser(userUUID string) ([]string, error) {
	rows, err := s.DB.Query(`SELECT source_uuid FROM currency_wallet WHERE user_uuid = ?`, userUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

// DeleteWallet removes the wallet row; subsequent lookups report unknown.
// Reset shares the same terminal state.
func (s *Store) DeleteWallet(sourceUUID string) error {
	_, err := s.DB.Exec(`DELETE FROM currency_wallet WHERE source_uuid = ?`, sourceUUID)
	return err
}

// CreditWallet adds amount to the wallet balance (used by the miner accrual
// loop). Missing wallets are ignored.
func (s *Store) CreditWallet(sourceUUID string, amount int64) error {
	_, err := s.DB.Exec(
		`UPDATE currency_wallet SET amount = amount + ? WHERE source_uuid = ?`, amount, sourceUUID,
	)
	return err
}

// Transfer moves amount between two wallets and records one transaction, all
// inside a single database transaction so the check-then-debit cannot race.
// Returns ErrNotFound when either side is unknown and ErrInsufficientFunds
// when the source cannot cover the amount.
func (s *Store) Transfer(sourceUUID, destinationUUID string, amount int64, usage string, origin int) error {
	return s.withTx(func(tx DBTX) error {
		var balance int64
		err := tx.QueryRowContext(bg,
			`SELECT amount FROM currency_wallet WHERE source_uuid = ?`, sourceUUID,
		).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		var destExists int
		if err := tx.QueryRowContext(bg,
			`SELECT COUNT(*) FROM currency_wallet WHERE source_uuid = ?`, destinationUUID,
		).Scan(&destExists); err != nil {
			return err
		}
		if destExists == 0 {
			return ErrNotFound
		}
		if balance < amount {
			return ErrInsufficientFunds
		}
		if _, err := tx.ExecContext(bg,
			`UPDATE currency_wallet SET amount = amount - ? WHERE source_uuid = ?`, amount, sourceUUID,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(bg,
			`UPDATE currency_wallet SET amount = amount + ? WHERE source_uuid = ?`, amount, destinationUUID,
		); err != nil {
			return err
		}
		_, err = tx.ExecContext(bg,
			`INSERT INTO currency_transaction (time_stamp, source_uuid, destination_uuid, send_amount, usage, origin)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			time.Now().Unix(), sourceUUID, destinationUUID, amount, usage, origin,
		)
		return err
	})
}

// Purchase debits the wallet and grants one inventory element per bought
// unit, atomically. The shop itself is the transaction counterparty.
func (s *Store) Purchase(walletUUID, buyer string, total int64, items []PurchaseItem) ([]model.InventoryElement, error) {
	bought := make([]model.InventoryElement, 0)
	err := s.withTx(func(tx DBTX) error {
		var balance int64
		err := tx.QueryRowContext(bg,
			`SELECT amount FROM currency_wallet WHERE source_uuid = ?`, walletUUID,
		).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if balance < total {
			return ErrInsufficientFunds
		}
		if _, err := tx.ExecContext(bg,
			`UPDATE currency_wallet SET amount = amount - ? WHERE source_uuid = ?`, total, walletUUID,
		); err != nil {
			return err
		}
		for _, item := range items {
			elements, err := GrantInventoryElements(tx, buyer, item.Name, item.RelatedMS, item.Count)
			if err != nil {
				return err
			}
			bought = append(bought, elements...)
		}
		_, err = tx.ExecContext(bg,
			`INSERT INTO currency_transaction (time_stamp, source_uuid, destination_uuid, send_amount, usage, origin)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			time.Now().Unix(), walletUUID, "shop", total, "shop purchase", 1,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bought, nil
}

type PurchaseItem struct {
	Name      string
	RelatedMS string
	Count     int
}

// ListTransactions pages the ledger of one wallet, newest first. Rows where
// the wallet is either side are visible.
func (s *Store) ListTransactions(walletUUID string, count, offset int) ([]model.Transaction, error) {
	rows, err := s.DB.Query(
		`SELECT id, time_stamp, source_uuid, destination_uuid, send_amount, usage, origin
		 FROM currency_transaction
		 WHERE source_uuid = ? OR destination_uuid = ?
		 ORDER BY time_stamp DESC, id DESC LIMIT ? OFFSET ?`,
		walletUUID, walletUUID, count, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Transaction, 0)
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.TimeStamp, &t.SourceUUID, &t.DestinationUUID, &t.SendAmount, &t.Usage, &t.Origin); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) CountTransactions(walletUUID string) (int, error) {
	var n int
	err := s.DB.QueryRow(
		`SELECT COUNT(*) FROM currency_transaction WHERE source_uuid = ? OR destination_uuid = ?`,
		walletUUID, walletUUID,
	).Scan(&n)
	return n, err
}
