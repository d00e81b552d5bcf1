package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"cryptic-server/internal/model"
)

func (s *Store) CreateUser(name, passwordHash string) (*model.User, error) {
	now := time.Now().Unix()
	u := model.User{
		UUID:     uuid.NewString(),
		Name:     name,
		Password: passwordHash,
		Created:  now,
		Last:     now,
	}
	_, err := s.DB.Exec(
		`INSERT INTO user (uuid, name, password, created, last) VALUES (?, ?, ?, ?, ?)`,
		u.UUID, u.Name, u.Password, u.Created, u.Last,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.UUID, &u.Name, &u.Password, &u.Created, &u.Last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUser(userUUID string) (*model.User, error) {
	return scanUser(s.DB.QueryRow(
		`SELECT uuid, name, password, created, last FROM user WHERE uuid = ?`, userUUID,
	))
}

func (s *Store) GetUserByName(name string) (*model.User, error) {
	return scanUser(s.DB.QueryRow(
		`SELECT uuid, name, password, created, last FROM user WHERE name = ?`, name,
	))
}

func (s *Store) UpdateUserPassword(userUUID, passwordHash string) error {
	_, err := s.DB.Exec(`UPDATE user SET password = ? WHERE uuid = ?`, passwordHash, userUUID)
	return err
}

// TouchUser bumps the activity timestamp.
func (s *Store) TouchUser(userUUID string) error {
	_, err := s.DB.Exec(`UPDATE user SET last = ? WHERE uuid = ?`, time.Now().Unix(), userUUID)
	return err
}

func (s *Store) CreateSession(userUUID string) (*model.Session, error) {
	sess := model.Session{
		UUID:    uuid.NewString(),
		User:    userUUID,
		Token:   uuid.NewString(),
		Created: time.Now().Unix(),
		Valid:   true,
	}
	_, err := s.DB.Exec(
		`INSERT INTO session (uuid, user, token, created, valid) VALUES (?, ?, ?, ?, 1)`,
		sess.UUID, sess.User, sess.Token, sess.Created,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) GetSessionByToken(token string) (*model.Session, error) {
	row := s.DB.QueryRow(
		`SELECT uuid, user, token, created, valid FROM session WHERE token = ? AND valid = 1`, token,
	)
	var sess model.Session
	if err := row.Scan(&sess.UUID, &sess.User, &sess.Token, &sess.Created, &sess.Valid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (s *Store) InvalidateSession(token string) error {
	_, err := s.DB.Exec(`UPDATE session SET valid = 0 WHERE token = ?`, token)
	return err
}

func (s *Store) GetSetting(userUUID, key string) (*string, error) {
	row := s.DB.QueryRow(
		`SELECT setting_value FROM user_settings WHERE user = ? AND setting_key = ?`, userUUID, key,
	)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}

func (s *Store) SetSetting(userUUID, key, value string) error {
	_, err := s.DB.Exec(
		`INSERT INTO user_settings (user, setting_key, setting_value) VALUES (?, ?, ?)
		 ON CONFLICT(user, setting_key) DO UPDATE SET setting_value = excluded.setting_value`,
		userUUID, key, value,
	)
	return err
}

func (s *Store) DeleteSetting(userUUID, key string) (bool, error) {
	res, err := s.DB.Exec(
		`DELETE FROM user_settings WHERE user = ? AND setting_key = ?`, userUUID, key,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
