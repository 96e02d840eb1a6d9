package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SaveVariable stores a named value pool. An existing pool with the same
// name has its values replaced wholesale and its usage count incremented;
// a new name is inserted with a usage count of one. Values keep their
// order, duplicates included.
func (s *Store) SaveVariable(name string, values []string) (*Variable, error) {
	var out Variable
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		err := tx.Where("name = ?", name).First(&out).Error
		switch {
		case err == nil:
			updates := map[string]any{
				"value_list":  encodeStringList(values),
				"usage_count": gorm.Expr("usage_count + 1"),
				"last_used":   now,
			}
			if err := tx.Model(&out).Updates(updates).Error; err != nil {
				return fmt.Errorf("update variable %q: %w", name, err)
			}
			return tx.First(&out, out.ID).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			out = Variable{
				Name:         name,
				ValueList:    encodeStringList(values),
				CreationDate: now,
				LastUsed:     now,
				UsageCount:   1,
			}
			if err := tx.Create(&out).Error; err != nil {
				return fmt.Errorf("insert variable %q: %w", name, err)
			}
			return nil

		default:
			return fmt.Errorf("look up variable %q: %w", name, err)
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("variable saved", "name", name, "values", len(values))
	return &out, nil
}

// GetVariable fetches a value pool by name. A missing name yields
// ErrNotFound.
func (s *Store) GetVariable(name string) (*Variable, error) {
	var v Variable
	err := s.db.Where("name = ?", name).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("variable %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get variable %q: %w", name, err)
	}
	return &v, nil
}

// VariableValues returns the stored values for name, or ErrNotFound when
// no pool with that name exists.
func (s *Store) VariableValues(name string) ([]string, error) {
	v, err := s.GetVariable(name)
	if err != nil {
		return nil, err
	}
	return v.Values(), nil
}

// ListVariables returns every value pool ordered by name.
func (s *Store) ListVariables() ([]Variable, error) {
	var vars []Variable
	if err := s.db.Order("name ASC").Find(&vars).Error; err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	return vars, nil
}

// DeleteVariable removes a value pool by name. Deleting an unknown name
// yields ErrNotFound.
func (s *Store) DeleteVariable(name string) error {
	res := s.db.Where("name = ?", name).Delete(&Variable{})
	if res.Error != nil {
		return fmt.Errorf("delete variable %q: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("variable %q: %w", name, ErrNotFound)
	}
	return nil
}

// TouchVariable bumps the usage count and last-used time of a pool whose
// values were just drawn. Unknown names are ignored.
func (s *Store) TouchVariable(name string) error {
	err := s.db.Model(&Variable{}).Where("name = ?", name).Updates(map[string]any{
		"usage_count": gorm.Expr("usage_count + 1"),
		"last_used":   time.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("touch variable %q: %w", name, err)
	}
	return nil
}
