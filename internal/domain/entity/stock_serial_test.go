package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

func TestCanClaim(t *testing.T) {
	libre := &entity.StockSerial{Status: entity.SerialStatusAvailable}
	assert.True(t, libre.CanClaim("REM-001"), "un serial libre lo reclama cualquier documento")

	reservado := &entity.StockSerial{Status: entity.SerialStatusReserved, IssuedAgainst: "REM-001"}
	assert.True(t, reservado.CanClaim("REM-001"), "la reserva cede ante el mismo documento")
	assert.False(t, reservado.CanClaim("REM-999"), "otro documento no puede saltarse la reserva")

	emitido := &entity.StockSerial{Status: entity.SerialStatusIssued}
	assert.False(t, emitido.CanClaim("REM-001"))
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, (&entity.StockSerial{Status: entity.SerialStatusAvailable}).IsAvailable())
	assert.False(t, (&entity.StockSerial{Status: entity.SerialStatusReserved}).IsAvailable())
	assert.False(t, (&entity.StockSerial{Status: entity.SerialStatusIssued}).IsAvailable())
}
