package memory

import (
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := *t
	return &d
}

// Clones profundos: el Store nunca comparte punteros con el caller, igual que
// un adaptador real nunca comparte filas.

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneWarehouse(w *entity.Warehouse) *entity.Warehouse {
	c := *w
	return &c
}

func cloneStock(s *entity.Stock) *entity.Stock {
	c := *s
	return &c
}

func cloneEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	c := *e
	return &c
}

func cloneSerial(s *entity.StockSerial) *entity.StockSerial {
	c := *s
	if s.OutwardDate != nil {
		d := *s.OutwardDate
		c.OutwardDate = &d
	}
	return &c
}

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	c := *t
	c.RequestedAt = cloneTime(t.RequestedAt)
	c.ApprovedAt = cloneTime(t.ApprovedAt)
	c.ReceivedAt = cloneTime(t.ReceivedAt)
	c.Lines = make([]entity.TransferLine, len(t.Lines))
	for i, l := range t.Lines {
		c.Lines[i] = l
		c.Lines[i].SerialNumbers = append([]string(nil), l.SerialNumbers...)
	}
	return &c
}

func cloneAdjustment(a *entity.Adjustment) *entity.Adjustment {
	c := *a
	c.RequestedAt = cloneTime(a.RequestedAt)
	c.ApprovedAt = cloneTime(a.ApprovedAt)
	c.PostedAt = cloneTime(a.PostedAt)
	c.Lines = make([]entity.AdjustmentLine, len(a.Lines))
	for i, l := range a.Lines {
		c.Lines[i] = l
		c.Lines[i].SerialNumbers = append([]string(nil), l.SerialNumbers...)
	}
	return &c
}
