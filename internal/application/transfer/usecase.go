package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// UseCase implementa el workflow maker-checker de traslados:
// DRAFT -> REQUESTED -> APPROVED -> RECEIVED, o REQUESTED -> REJECTED.
// Receive es la transición terminal: por cada línea llama al orquestador dos
// veces (OUT en origen, IN en destino) dentro de una sola transacción, de modo
// que una unidad jamás se debita del origen sin acreditarse en el destino.
type UseCase struct {
	txRunner      TxRunner
	movementUC    *appinventory.MovementUseCase
	transferRepo  repository.TransferRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	policy        *inventory.Policy
}

// NewUseCase construye el workflow.
func NewUseCase(
	txRunner TxRunner,
	movementUC *appinventory.MovementUseCase,
	transferRepo repository.TransferRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	policy *inventory.Policy,
) *UseCase {
	if policy == nil {
		policy = inventory.DefaultPolicy()
	}
	return &UseCase{
		txRunner:      txRunner,
		movementUC:    movementUC,
		transferRepo:  transferRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		policy:        policy,
	}
}

// LineInput es una línea del traslado a crear.
type LineInput struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	SerialNumbers   []string
}

// CreateInput es la entrada de Create.
type CreateInput struct {
	Number      string
	RequestedBy string
	Remarks     string
	Lines       []LineInput
}

// Create registra el traslado en DRAFT tras validar líneas y maestros.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Transfer, error) {
	if input.RequestedBy == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	t := &entity.Transfer{
		ID:          uuid.New().String(),
		Number:      input.Number,
		Status:      entity.TransferStatusDraft,
		RequestedBy: input.RequestedBy,
		Remarks:     input.Remarks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Number == "" {
		t.Number = t.ID
	}
	for _, line := range input.Lines {
		if _, err := uc.validateLine(line); err != nil {
			return nil, err
		}
		t.Lines = append(t.Lines, entity.TransferLine{
			ID:              uuid.New().String(),
			TransferID:      t.ID,
			ProductID:       line.ProductID,
			FromWarehouseID: line.FromWarehouseID,
			ToWarehouseID:   line.ToWarehouseID,
			Quantity:        line.Quantity,
			SerialNumbers:   line.SerialNumbers,
		})
	}
	if err := uc.transferRepo.Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

// validateLine valida producto, bodegas y consistencia serial de una línea.
func (uc *UseCase) validateLine(line LineInput) (*entity.Product, error) {
	if line.ProductID == "" || line.FromWarehouseID == "" || line.ToWarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if line.FromWarehouseID == line.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if !line.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(line.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.TrackingMode == entity.TrackingModeSerial {
		if !line.Quantity.Equal(decimal.NewFromInt(int64(len(line.SerialNumbers)))) {
			return nil, domain.ErrInvalidInput
		}
	} else if len(line.SerialNumbers) > 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, whID := range []string{line.FromWarehouseID, line.ToWarehouseID} {
		wh, err := uc.warehouseRepo.GetByID(whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}
	return product, nil
}

// Request transiciona DRAFT -> REQUESTED.
func (uc *UseCase) Request(ctx context.Context, id string) error {
	t, err := uc.load(id)
	if err != nil {
		return err
	}
	if !t.CanRequest() {
		return domain.ErrWorkflowState
	}
	return uc.transferRepo.MarkRequested(id, time.Now())
}

// Approve transiciona REQUESTED -> APPROVED. Con maker-checker activo el
// aprobador debe ser distinto del solicitante.
func (uc *UseCase) Approve(ctx context.Context, id, approvedBy string) error {
	if approvedBy == "" {
		return domain.ErrInvalidInput
	}
	t, err := uc.load(id)
	if err != nil {
		return err
	}
	if !t.CanApprove() {
		return domain.ErrWorkflowState
	}
	if uc.policy.EnforceMakerChecker && approvedBy == t.RequestedBy {
		return domain.ErrForbidden
	}
	return uc.transferRepo.MarkApproved(id, approvedBy, time.Now())
}

// Reject transiciona REQUESTED -> REJECTED (terminal).
func (uc *UseCase) Reject(ctx context.Context, id, rejectedBy, reason string) error {
	if rejectedBy == "" {
		return domain.ErrInvalidInput
	}
	t, err := uc.load(id)
	if err != nil {
		return err
	}
	if !t.CanReject() {
		return domain.ErrWorkflowState
	}
	return uc.transferRepo.MarkRejected(id, rejectedBy, reason, time.Now())
}

// Receive es la transición terminal APPROVED -> RECEIVED: marca el documento
// (update guardado por estado, así un Receive repetido falla con
// ErrWorkflowState sin asientos adicionales) y ejecuta OUT+IN por línea en la
// misma transacción.
func (uc *UseCase) Receive(ctx context.Context, id, receivedBy string) error {
	if receivedBy == "" {
		return domain.ErrInvalidInput
	}
	t, err := uc.load(id)
	if err != nil {
		return err
	}
	if !t.CanReceive() {
		return domain.ErrWorkflowState
	}

	// Productos resueltos fuera de la tx; son maestros de solo lectura.
	products := make(map[string]*entity.Product, len(t.Lines))
	for _, line := range t.Lines {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		products[line.ProductID] = product
	}

	now := time.Now()
	return uc.txRunner.RunTransfer(ctx, func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
		serialRepo repository.SerialRepository,
		transferRepo repository.TransferRepository,
	) error {
		if err := transferRepo.MarkReceived(id, now); err != nil {
			return err
		}
		for _, line := range t.Lines {
			product := products[line.ProductID]
			out := appinventory.MovementInput{
				ProductID:       line.ProductID,
				WarehouseID:     line.FromWarehouseID,
				TransactionType: entity.TxnTypeTransferOut,
				TransactionID:   t.ID,
				MovementType:    entity.MovementTypeOUT,
				Quantity:        line.Quantity,
				SerialNumbers:   line.SerialNumbers,
				IssuedAgainst:   t.Number,
				ReferenceNumber: t.Number,
				PerformedBy:     receivedBy,
				PerformedAt:     now,
			}
			if _, err := uc.movementUC.PostMovementInTx(ledgerRepo, stockRepo, serialRepo, product, out); err != nil {
				return err
			}
			in := out
			in.WarehouseID = line.ToWarehouseID
			in.TransactionType = entity.TxnTypeTransferIn
			in.MovementType = entity.MovementTypeIN
			if _, err := uc.movementUC.PostMovementInTx(ledgerRepo, stockRepo, serialRepo, product, in); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get devuelve el traslado con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	return uc.load(id)
}

func (uc *UseCase) load(id string) (*entity.Transfer, error) {
	t, err := uc.transferRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
