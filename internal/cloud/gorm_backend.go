package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mrlokans/chumash/internal/database/usersettings"
	"github.com/mrlokans/chumash/internal/entities"
)

// GormBackend stores columns in the local user_settings table.
type GormBackend struct {
	repo *usersettings.Repository
}

func NewGormBackend(repo *usersettings.Repository) *GormBackend {
	return &GormBackend{repo: repo}
}

func (b *GormBackend) ReadColumn(ctx context.Context, table, column, userID string) (json.RawMessage, error) {
	if table != entities.TableUserSettings {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := b.repo.ReadColumn(userID, column)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if value == nil {
		return nil, nil
	}
	return json.RawMessage(*value), nil
}

func (b *GormBackend) WriteColumn(ctx context.Context, table, column, userID string, value json.RawMessage) error {
	if table != entities.TableUserSettings {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("cloud: value for %s is not valid JSON", column)
	}
	return translateRepoError(b.repo.WriteColumn(userID, column, string(value)))
}

func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, usersettings.ErrNoRow):
		return ErrNoRow
	case errors.Is(err, usersettings.ErrUnknownColumn):
		return fmt.Errorf("%w: %v", ErrUnknownColumn, err)
	default:
		return err
	}
}
