package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentido del movimiento.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Tipos de transacción que originan un asiento en el ledger.
// El par (TransactionType, TransactionID) es la referencia polimórfica al documento causante.
const (
	TxnTypePOInward            = "PO_INWARD"             // recepción de orden de compra
	TxnTypeDeliveryOut         = "DELIVERY_OUT"          // despacho / remisión
	TxnTypeB2BOut              = "B2B_OUT"               // envío B2B
	TxnTypeTransferOut         = "TRANSFER_OUT"          // salida por traslado
	TxnTypeTransferIn          = "TRANSFER_IN"           // entrada por traslado
	TxnTypeAdjustmentIn        = "ADJUSTMENT_IN"         // ajuste positivo
	TxnTypeAdjustmentOut       = "ADJUSTMENT_OUT"        // ajuste negativo
	TxnTypeUsedInventoryImport = "USED_INVENTORY_IMPORT" // importación correctiva de inventario usado
	TxnTypeSalesReturn         = "SALES_RETURN"          // devolución (reversa una salida)
)

// LedgerEntry es un asiento inmutable del journal de inventario: la fuente de
// verdad. Cada mutación de Stock produce exactamente un asiento; nunca se
// edita ni se borra, los errores se corrigen con un asiento compensatorio.
type LedgerEntry struct {
	ID              string
	Seq             int64 // orden total de inserción (desempate de PerformedAt)
	ProductID       string
	WarehouseID     string
	TransactionType string
	TransactionID   string
	MovementType    string
	OpeningQuantity decimal.Decimal
	Quantity        decimal.Decimal // magnitud positiva del movimiento
	ClosingQuantity decimal.Decimal
	Rate            decimal.Decimal
	Amount          decimal.Decimal
	SerialID        string // vacío para productos LOT, obligatorio para SERIAL
	PerformedBy     string
	PerformedAt     time.Time
}

// SignedQuantity devuelve la cantidad con signo según el sentido del movimiento.
func (e *LedgerEntry) SignedQuantity() decimal.Decimal {
	if e.MovementType == MovementTypeOUT {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// IsValidTransactionType valida que el tipo de transacción sea conocido.
func IsValidTransactionType(t string) bool {
	switch t {
	case TxnTypePOInward, TxnTypeDeliveryOut, TxnTypeB2BOut,
		TxnTypeTransferOut, TxnTypeTransferIn,
		TxnTypeAdjustmentIn, TxnTypeAdjustmentOut,
		TxnTypeUsedInventoryImport, TxnTypeSalesReturn:
		return true
	}
	return false
}
