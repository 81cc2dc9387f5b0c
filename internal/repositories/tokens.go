package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/shared"
)

// TokenStore persists per-account OAuth tokens in a single JSON document.
//
// Every save reads the whole document, replaces one entry and rewrites the file.
// There is no locking: concurrent invocations racing on the same file are not handled.
type TokenStore struct {
	path string
}

// NewTokenStore creates a TokenStore backed by the document at path. A leading "~" is expanded.
func NewTokenStore(path string) *TokenStore {
	if path == "" {
		path = filepath.Join(shared.AppDir(), "tokens.json")
	}
	return &TokenStore{path: shared.ExpandPath(path)}
}

// Path returns the location of the token document.
func (s *TokenStore) Path() string {
	return s.path
}

// Save inserts or replaces the record stored under account.
func (s *TokenStore) Save(account string, record models.TokenRecord) error {
	if account == "" {
		return fmt.Errorf("%w: account name must not be empty", shared.ErrInvalidArgument)
	}

	doc, err := s.read()
	if errors.Is(err, shared.ErrNoStoreFile) {
		doc = &models.TokenDocument{Accounts: map[string]models.TokenRecord{}}
	} else if err != nil {
		return err
	}

	doc.Accounts[account] = record

	return s.write(doc)
}

// Load returns the record stored under account.
func (s *TokenStore) Load(account string) (models.TokenRecord, error) {
	doc, err := s.read()
	if err != nil {
		return models.TokenRecord{}, err
	}

	record, ok := doc.Accounts[account]
	if !ok {
		return models.TokenRecord{}, fmt.Errorf("%w: '%s'", shared.ErrAccountNotFound, account)
	}
	return record, nil
}

// ListAccounts returns the known account names in sorted order.
//
// A store that has never been written yields an empty list rather than an error.
func (s *TokenStore) ListAccounts() ([]string, error) {
	accounts, err := s.accounts()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// accounts returns every stored record keyed by account name, or an empty map when no document exists.
func (s *TokenStore) accounts() (map[string]models.TokenRecord, error) {
	doc, err := s.read()
	if errors.Is(err, shared.ErrNoStoreFile) {
		return map[string]models.TokenRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Accounts, nil
}

func (s *TokenStore) read() (*models.TokenDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNoStoreFile, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}

	var doc models.TokenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptStore, s.path, err)
	}
	if doc.Accounts == nil {
		return nil, fmt.Errorf("%w: %s: missing accounts", shared.ErrCorruptStore, s.path)
	}

	return &doc, nil
}

// write replaces the document via a temporary file and rename so readers never see a partial file.
func (s *TokenStore) write(doc *models.TokenDocument) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := shared.MarshalJSON(doc, true)
	if err != nil {
		return fmt.Errorf("failed to marshal token store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token store: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set token store permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace token store: %w", err)
	}
	return nil
}
