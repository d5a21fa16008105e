package inventory

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// Policy concentra las decisiones configurables del motor (servicio de dominio):
// qué tipos de transacción pueden dejar stock negativo, qué tipos reversan una
// salida (reactivan seriales ISSUED) y si el workflow exige maker-checker.
type Policy struct {
	negativeStockTypes  map[string]struct{}
	reversalTypes       map[string]struct{}
	EnforceMakerChecker bool
}

// NewPolicy construye una política. negativeStockTypes lista los tipos de
// transacción autorizados a dejar quantity_on_hand negativo en salidas.
func NewPolicy(negativeStockTypes []string, enforceMakerChecker bool) *Policy {
	p := &Policy{
		negativeStockTypes:  make(map[string]struct{}, len(negativeStockTypes)),
		reversalTypes:       map[string]struct{}{entity.TxnTypeSalesReturn: {}},
		EnforceMakerChecker: enforceMakerChecker,
	}
	for _, t := range negativeStockTypes {
		p.negativeStockTypes[t] = struct{}{}
	}
	return p
}

// DefaultPolicy: solo la importación correctiva de inventario usado puede
// dejar stock negativo; maker-checker activo.
func DefaultPolicy() *Policy {
	return NewPolicy([]string{entity.TxnTypeUsedInventoryImport}, true)
}

// AllowsNegativeStock indica si el tipo de transacción puede sobregirar el stock.
func (p *Policy) AllowsNegativeStock(transactionType string) bool {
	_, ok := p.negativeStockTypes[transactionType]
	return ok
}

// IsReversal indica si el tipo de transacción es una devolución: su entrada
// puede reactivar un serial ISSUED de vuelta a AVAILABLE.
func (p *Policy) IsReversal(transactionType string) bool {
	_, ok := p.reversalTypes[transactionType]
	return ok
}
