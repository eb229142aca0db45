package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	"github.com/smallbiznis/voltgrid/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (unitdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&unitdomain.ConsumingUnit{}))

	svc := NewService(ServiceParam{
		Log:   zap.NewNop(),
		Units: repository.ProvideStore[unitdomain.ConsumingUnit](db),
	})
	return svc, db
}

func TestGetByCode(t *testing.T) {
	svc, db := newTestService(t)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	require.NoError(t, db.Create(&unitdomain.ConsumingUnit{
		ID:             node.Generate(),
		Code:           "uc-001",
		EquipmentID:    "eq-1",
		Concessionaire: "cemig",
		Irrigation:     true,
	}).Error)

	unit, err := svc.GetByCode(context.Background(), "uc-001")
	require.NoError(t, err)
	assert.Equal(t, "eq-1", unit.EquipmentID)
	assert.True(t, unit.Irrigation)

	_, err = svc.GetByCode(context.Background(), "uc-404")
	assert.ErrorIs(t, err, unitdomain.ErrUnitNotFound)

	_, err = svc.GetByCode(context.Background(), " ")
	assert.ErrorIs(t, err, unitdomain.ErrInvalidUnit)
}
