package store

import (
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateAccount(username, passwordHash string) (*Account, error) {
	acc := &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err := s.sql.Exec(
		"INSERT INTO accounts (id, username, password_hash, created_at) VALUES (?,?,?,?)",
		acc.ID, acc.Username, acc.PasswordHash, acc.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *Store) GetAccountByUsername(username string) (*Account, error) {
	row := s.sql.QueryRow(
		"SELECT id, username, password_hash, created_at FROM accounts WHERE username = ?",
		username,
	)
	var acc Account
	var createdAt int64
	if err := row.Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	acc.CreatedAt = time.UnixMilli(createdAt)
	return &acc, nil
}

func (s *Store) GetAccountByID(id string) (*Account, error) {
	row := s.sql.QueryRow(
		"SELECT id, username, password_hash, created_at FROM accounts WHERE id = ?",
		id,
	)
	var acc Account
	var createdAt int64
	if err := row.Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	acc.CreatedAt = time.UnixMilli(createdAt)
	return &acc, nil
}

func (s *Store) UpdateAccountPassword(accountID, passwordHash string) error {
	_, err := s.sql.Exec("UPDATE accounts SET password_hash = ? WHERE id = ?", passwordHash, accountID)
	return err
}

func (s *Store) SaveRefreshToken(token, accountID string, expiresAt time.Time) error {
	_, err := s.sql.Exec(
		"INSERT INTO refresh_tokens (token, account_id, expires_at, created_at) VALUES (?,?,?,?)",
		token, accountID, expiresAt.UnixMilli(), time.Now().UnixMilli(),
	)
	return err
}

func (s *Store) GetRefreshToken(token string) (*RefreshToken, error) {
	row := s.sql.QueryRow(
		"SELECT token, account_id, expires_at, created_at FROM refresh_tokens WHERE token = ?",
		token,
	)
	var rt RefreshToken
	var expiresAt, createdAt int64
	if err := row.Scan(&rt.Token, &rt.AccountID, &expiresAt, &createdAt); err != nil {
		return nil, err
	}
	rt.ExpiresAt = time.UnixMilli(expiresAt)
	rt.CreatedAt = time.UnixMilli(createdAt)
	return &rt, nil
}

func (s *Store) DeleteRefreshToken(token string) error {
	_, err := s.sql.Exec("DELETE FROM refresh_tokens WHERE token = ?", token)
	return err
}

func (s *Store) DeleteRefreshTokensByAccount(accountID string) error {
	_, err := s.sql.Exec("DELETE FROM refresh_tokens WHERE account_id = ?", accountID)
	return err
}

func (s *Store) DeleteExpiredRefreshTokens() error {
	_, err := s.sql.Exec("DELETE FROM refresh_tokens WHERE expires_at < ?", time.Now().UnixMilli())
	return err
}
