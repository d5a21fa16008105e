package inventory

import (
	"github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/pkg/config"
)

// NewPolicyFromConfig construye la política del motor desde la configuración
// (ENGINE_NEGATIVE_STOCK_TYPES, ENGINE_ENFORCE_MAKER_CHECKER). Es el punto de
// entrada para binarios que arman el motor vía pkg/config.
func NewPolicyFromConfig(cfg config.EngineConfig) *inventory.Policy {
	return inventory.NewPolicy(cfg.NegativeStockTypes, cfg.EnforceMakerChecker)
}
