package adjustment

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

// UseCase implementa el workflow maker-checker de ajustes:
// DRAFT -> REQUESTED -> APPROVED -> POSTED, o REQUESTED -> REJECTED.
// Post es la transición terminal: un movimiento por línea (INCREASE = IN,
// DECREASE = OUT) en una sola transacción.
type UseCase struct {
	txRunner       TxRunner
	movementUC     *appinventory.MovementUseCase
	adjustmentRepo repository.AdjustmentRepository
	productRepo    repository.ProductRepository
	warehouseRepo  repository.WarehouseRepository
	policy         *inventory.Policy
}

// NewUseCase construye el workflow.
func NewUseCase(
	txRunner TxRunner,
	movementUC *appinventory.MovementUseCase,
	adjustmentRepo repository.AdjustmentRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	policy *inventory.Policy,
) *UseCase {
	if policy == nil {
		policy = inventory.DefaultPolicy()
	}
	return &UseCase{
		txRunner:       txRunner,
		movementUC:     movementUC,
		adjustmentRepo: adjustmentRepo,
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		policy:         policy,
	}
}

// LineInput es una línea del ajuste a crear.
type LineInput struct {
	ProductID      string
	WarehouseID    string
	AdjustmentType string // INCREASE | DECREASE
	Quantity       decimal.Decimal
	Rate           decimal.Decimal
	SerialNumbers  []string
}

// CreateInput es la entrada de Create.
type CreateInput struct {
	Number      string
	Reason      string
	RequestedBy string
	Lines       []LineInput
}

// Create registra el ajuste en DRAFT tras validar líneas y maestros.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Adjustment, error) {
	if input.RequestedBy == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	a := &entity.Adjustment{
		ID:          uuid.New().String(),
		Number:      input.Number,
		Status:      entity.AdjustmentStatusDraft,
		Reason:      input.Reason,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if a.Number == "" {
		a.Number = a.ID
	}
	for _, line := range input.Lines {
		if err := uc.validateLine(line); err != nil {
			return nil, err
		}
		a.Lines = append(a.Lines, entity.AdjustmentLine{
			ID:             uuid.New().String(),
			AdjustmentID:   a.ID,
			ProductID:      line.ProductID,
			WarehouseID:    line.WarehouseID,
			AdjustmentType: line.AdjustmentType,
			Quantity:       line.Quantity,
			Rate:           line.Rate,
			SerialNumbers:  line.SerialNumbers,
		})
	}
	if err := uc.adjustmentRepo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *UseCase) validateLine(line LineInput) error {
	if line.ProductID == "" || line.WarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if line.AdjustmentType != entity.AdjustmentTypeIncrease && line.AdjustmentType != entity.AdjustmentTypeDecrease {
		return domain.ErrInvalidInput
	}
	if !line.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.TrackingMode == entity.TrackingModeSerial {
		if !line.Quantity.Equal(decimal.NewFromInt(int64(len(line.SerialNumbers)))) {
			return domain.ErrInvalidInput
		}
	} else if len(line.SerialNumbers) > 0 {
		return domain.ErrInvalidInput
	}
	wh, err := uc.warehouseRepo.GetByID(line.WarehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.ErrNotFound
	}
	return nil
}

// Request transiciona DRAFT -> REQUESTED.
func (uc *UseCase) Request(ctx context.Context, id string) error {
	a, err := uc.load(id)
	if err != nil {
		return err
	}
	if !a.CanRequest() {
		return domain.ErrWorkflowState
	}
	return uc.adjustmentRepo.MarkRequested(id, time.Now())
}

// Approve transiciona REQUESTED -> APPROVED con maker-checker.
func (uc *UseCase) Approve(ctx context.Context, id, approvedBy string) error {
	if approvedBy == "" {
		return domain.ErrInvalidInput
	}
	a, err := uc.load(id)
	if err != nil {
		return err
	}
	if !a.CanApprove() {
		return domain.ErrWorkflowState
	}
	if uc.policy.EnforceMakerChecker && approvedBy == a.RequestedBy {
		return domain.ErrForbidden
	}
	return uc.adjustmentRepo.MarkApproved(id, approvedBy, time.Now())
}

// Reject transiciona REQUESTED -> REJECTED (terminal).
func (uc *UseCase) Reject(ctx context.Context, id, rejectedBy, reason string) error {
	if rejectedBy == "" {
		return domain.ErrInvalidInput
	}
	a, err := uc.load(id)
	if err != nil {
		return err
	}
	if !a.CanReject() {
		return domain.ErrWorkflowState
	}
	return uc.adjustmentRepo.MarkRejected(id, rejectedBy, reason, time.Now())
}

// Post es la transición terminal APPROVED -> POSTED: marca el documento con
// update guardado por estado y ejecuta un movimiento por línea en la misma
// transacción. Un Post repetido falla con ErrWorkflowState sin asientos nuevos.
func (uc *UseCase) Post(ctx context.Context, id, postedBy string) error {
	if postedBy == "" {
		return domain.ErrInvalidInput
	}
	a, err := uc.load(id)
	if err != nil {
		return err
	}
	if !a.CanPost() {
		return domain.ErrWorkflowState
	}

	products := make(map[string]*entity.Product, len(a.Lines))
	for _, line := range a.Lines {
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
	return uc.txRunner.RunAdjustment(ctx, func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
		serialRepo repository.SerialRepository,
		adjustmentRepo repository.AdjustmentRepository,
	) error {
		if err := adjustmentRepo.MarkPosted(id, now); err != nil {
			return err
		}
		for _, line := range a.Lines {
			movementType := entity.MovementTypeIN
			transactionType := entity.TxnTypeAdjustmentIn
			if line.AdjustmentType == entity.AdjustmentTypeDecrease {
				movementType = entity.MovementTypeOUT
				transactionType = entity.TxnTypeAdjustmentOut
			}
			input := appinventory.MovementInput{
				ProductID:       line.ProductID,
				WarehouseID:     line.WarehouseID,
				TransactionType: transactionType,
				TransactionID:   a.ID,
				MovementType:    movementType,
				Quantity:        line.Quantity,
				SerialNumbers:   line.SerialNumbers,
				Rate:            line.Rate,
				IssuedAgainst:   a.Number,
				ReferenceNumber: a.Number,
				PerformedBy:     postedBy,
				PerformedAt:     now,
			}
			if _, err := uc.movementUC.PostMovementInTx(ledgerRepo, stockRepo, serialRepo, products[line.ProductID], input); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get devuelve el ajuste con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Adjustment, error) {
	return uc.load(id)
}

func (uc *UseCase) load(id string) (*entity.Adjustment, error) {
	a, err := uc.adjustmentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
