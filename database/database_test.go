package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGormConfig(t *testing.T) {
	cfg := gormConfig()

	// Registering a duplicate email relies on errors.Is(err,
	// gorm.ErrDuplicatedKey); without translation the driver error falls
	// through to a 500.
	assert.True(t, cfg.TranslateError)
	assert.True(t, cfg.SkipDefaultTransaction)
}
