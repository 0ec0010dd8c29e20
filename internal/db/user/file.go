package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	c "resetkit/internal/core/domain/common"
	e "resetkit/internal/core/domain/errors"
	"resetkit/internal/core/domain/user"
	"sync"
	"time"
)

// FileUserRepository keeps every account in one JSON document keyed by email.
// Writers hold the lock for the whole read, mutate and write cycle, and the
// document is replaced through a rename so readers never see a partial write.
type FileUserRepository struct {
	path string
	lock sync.Mutex
}

func NewFileRepository(path string) *FileUserRepository {
	if path == "" {
		panic(e.NewInvalidArgumentError("path", "must not be empty"))
	}
	return &FileUserRepository{path: path}
}

func (r *FileUserRepository) GetByEmail(ctx context.Context, email c.Email) (a user.Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	records, err := r.read()
	if err != nil {
		return a, err
	}
	rec, ok := records[string(email)]
	if !ok {
		return a, user.ErrUserDoesNotExist
	}
	return decodeAccount(rec)
}

func (r *FileUserRepository) SetPassword(
	ctx context.Context,
	email c.Email,
	password user.PasswordHash,
	at time.Time,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	rec, ok := records[string(email)]
	if !ok {
		return user.ErrUserDoesNotExist
	}
	at = at.UTC()
	rec.PasswordHash = string(password)
	rec.UpdatedAt = &at
	records[string(email)] = rec
	return r.write(records)
}

// Create adds an account, replacing one with the same email.
func (r *FileUserRepository) Create(ctx context.Context, a user.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	records[string(a.Email)] = encodeAccount(a)
	return r.write(records)
}

func (r *FileUserRepository) read() (map[string]record, error) {
	records := make(map[string]record)
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read users file: %w", err)
	}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, e.NewInvalidStateError("users file %s is corrupt: %v", r.path, err)
	}
	return records, nil
}

func (r *FileUserRepository) write(records map[string]record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary users file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write users file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write users file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("could not replace users file: %w", err)
	}
	return nil
}
