package order

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const (
	reconcileService = "reconcile-service"
	useCaseReconcile = "order.reconcile"
)

type ReconcileCommand struct {
	// DryRun reports repairs without writing them.
	DryRun bool
}

// Discrepancy is one payment/order pair that disagrees.
type Discrepancy struct {
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId,omitempty"`
	Detail        string `json:"detail"`
}

type ReconcileReport struct {
	PaymentsScanned int           `json:"paymentsScanned"`
	OrdersScanned   int           `json:"paidOrdersScanned"`
	Repaired        []Discrepancy `json:"repaired"`
	OrphanPayments  []Discrepancy `json:"orphanPayments"`
	UnsettledOrders []Discrepancy `json:"unsettledOrders"`
	Mismatched      []Discrepancy `json:"mismatched"`
	DryRun          bool          `json:"dryRun"`
}

// Clean reports whether the pass found nothing to repair or report.
func (r *ReconcileReport) Clean() bool {
	return len(r.Repaired) == 0 && len(r.OrphanPayments) == 0 &&
		len(r.UnsettledOrders) == 0 && len(r.Mismatched) == 0
}

// ReconcileUseCase walks payments and paid orders looking for halves of a
// settlement written without the other. Payments whose order is still
// unpaid are repaired by flipping the order; everything else is reported.
type ReconcileUseCase struct {
	orders   domain.Repository
	payments dompayment.Repository
	guard    *auth.Guard
	obs      *application.Instrument
}

var _ application.UseCase[ReconcileCommand, *ReconcileReport] = (*ReconcileUseCase)(nil)

func NewReconcileUseCase(orders domain.Repository, payments dompayment.Repository, guard *auth.Guard, tel observability.Observability) *ReconcileUseCase {
	return &ReconcileUseCase{
		orders:   orders,
		payments: payments,
		guard:    guard,
		obs:      application.NewInstrument(tel, reconcileService),
	}
}

func (uc *ReconcileUseCase) Execute(ctx context.Context, cmd ReconcileCommand) (_ *ReconcileReport, err error) {
	ctx, run := uc.obs.Begin(ctx, useCaseReconcile, "Reconcile")
	defer func() { run.End(err) }()

	report := &ReconcileReport{
		DryRun:          cmd.DryRun,
		Repaired:        []Discrepancy{},
		OrphanPayments:  []Discrepancy{},
		UnsettledOrders: []Discrepancy{},
		Mismatched:      []Discrepancy{},
	}

	payments, err := uc.payments.List(ctx)
	if err != nil {
		run.Fail("PAYMENT_LIST_FAILED")
		return nil, application.Upstream("payment_store", err)
	}
	report.PaymentsScanned = len(payments)

	for _, p := range payments {
		if err := ctx.Err(); err != nil {
			run.Fail("CONTEXT_CANCELED")
			return nil, err
		}
		if err := uc.checkPayment(ctx, p, report); err != nil {
			run.Fail("ORDER_REPAIR_FAILED")
			return nil, err
		}
	}

	paid, err := uc.orders.List(ctx, domain.Filter{PaidOnly: true})
	if err != nil {
		run.Fail("ORDER_LIST_FAILED")
		return nil, application.Upstream("order_store", err)
	}
	report.OrdersScanned = len(paid)

	for _, o := range paid {
		_, ferr := uc.payments.FindByOrder(ctx, o.ID)
		switch {
		case errors.Is(ferr, dompayment.ErrNotFound):
			report.UnsettledOrders = append(report.UnsettledOrders, Discrepancy{
				OrderID:       o.ID,
				TransactionID: o.TransactionID,
				Detail:        "order is paid but has no payment record",
			})
		case ferr != nil:
			run.Fail("PAYMENT_LOOKUP_FAILED")
			return nil, application.Upstream("payment_store", ferr)
		}
	}

	run.With(
		observability.F("payments_scanned", report.PaymentsScanned),
		observability.F("paid_orders_scanned", report.OrdersScanned),
		observability.F("repaired", len(report.Repaired)),
		observability.F("orphan_payments", len(report.OrphanPayments)),
		observability.F("unsettled_orders", len(report.UnsettledOrders)),
		observability.F("mismatched", len(report.Mismatched)),
		observability.F("dry_run", cmd.DryRun),
	)
	if !report.Clean() {
		run.Note("DISCREPANCIES_FOUND")
	}
	return report, nil
}

func (uc *ReconcileUseCase) checkPayment(ctx context.Context, p *dompayment.Payment, report *ReconcileReport) error {
	o, err := uc.orders.Get(ctx, p.OrderID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		report.OrphanPayments = append(report.OrphanPayments, Discrepancy{
			OrderID:       p.OrderID,
			TransactionID: p.TransactionID,
			Detail:        "payment references a missing order",
		})
		return nil
	case err != nil:
		return application.Upstream("order_store", err)
	}

	if o.Paid {
		if o.TransactionID != p.TransactionID {
			report.Mismatched = append(report.Mismatched, Discrepancy{
				OrderID:       o.ID,
				TransactionID: p.TransactionID,
				Detail:        "order is paid with transaction " + o.TransactionID,
			})
		}
		return nil
	}

	d := Discrepancy{
		OrderID:       o.ID,
		TransactionID: p.TransactionID,
		Detail:        "payment recorded but order unpaid; marked paid",
	}
	if report.DryRun {
		d.Detail = "payment recorded but order unpaid"
		report.Repaired = append(report.Repaired, d)
		return nil
	}

	next := o.Clone()
	if err := next.RecordPayment(p.TransactionID); err != nil {
		return err
	}
	err = uc.orders.CompareAndUpdate(ctx, next, domain.StatusCreated)
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		// Paid concurrently; the next pass will compare transaction ids.
		return nil
	case err != nil:
		return application.Upstream("order_store", err)
	}
	report.Repaired = append(report.Repaired, d)
	return nil
}

// RunAs runs one pass on behalf of caller, who must be an admin. The
// command line runs Execute directly.
func (uc *ReconcileUseCase) RunAs(ctx context.Context, caller string, cmd ReconcileCommand) (*ReconcileReport, error) {
	if uc.guard == nil {
		return nil, domauth.ErrForbidden
	}
	if err := uc.guard.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	return uc.Execute(ctx, cmd)
}
