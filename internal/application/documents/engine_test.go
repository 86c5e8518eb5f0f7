package documents_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/shift"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	engine *documents.Engine
	reg    *shift.Register
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithEffects(t, nil)
}

// newFixtureWithEffects permite sustituir los efectos de turno (nil = Register real).
func newFixtureWithEffects(t *testing.T, effects documents.ShiftEffects) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "p1", SKU: "GG10WP035020", Name: "Tuyau PVC 35mm",
		Price: d("4.50"), VATRate: d("21"), StockQty: 10, MinStock: 2,
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "p2", SKU: "VIS-INOX-6", Name: "Vis inox 6mm",
		Price: d("0.35"), VATRate: d("6"), StockQty: 100, MinStock: 20,
	}))
	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{
		ID: "c1", Type: entity.CustomerCompany, Name: "Batiplus SPRL", VATNumber: "BE0123456789",
		Street: "Rue de la Loi 1", City: "Bruxelles", PostalCode: "1000", Country: "BE",
	}))

	trail := audit.NewTrail(store.AuditLogs())
	log := logger.Nop()
	reg := shift.NewRegister(store, store.Shifts(), store.Documents(), trail, log)
	ledger := inventory.NewStockLedger(store, store.Products(), store.Movements(), trail, log)
	if effects == nil {
		effects = reg
	}
	engine := documents.NewEngine(store, store.Documents(), ledger, effects, trail, log)
	engine.SetClock(func() time.Time { return fixedNow })
	return &fixture{ctx: ctx, store: store, engine: engine, reg: reg}
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQty
}

func (f *fixture) doc(t *testing.T, id string) *entity.Document {
	t.Helper()
	doc, err := f.engine.Get(f.ctx, id)
	require.NoError(t, err)
	return doc
}

func (f *fixture) invoice(t *testing.T, qty int, price, vat string, payments ...documents.PaymentInput) *entity.Document {
	t.Helper()
	doc, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:    entity.DocTypeInvoice,
		CustomerID: "c1",
		Items:      []documents.ItemInput{{ProductID: "p1", Quantity: qty, UnitPrice: d(price), VATRate: d(vat)}},
		Payments:   payments,
		UserID:     "u1",
	})
	require.NoError(t, err)
	return doc
}

func (f *fixture) openShift(t *testing.T, cash string) *entity.Shift {
	t.Helper()
	sh, err := f.reg.OpenShift(f.ctx, shift.OpenShiftInput{OpeningCash: d(cash), CashierName: "Marie", RegisterNumber: 1, UserID: "u1"})
	require.NoError(t, err)
	return sh
}

func auditActions(t *testing.T, f *fixture, entityID string) []string {
	t.Helper()
	logs, err := f.engine.AuditHistory(f.ctx, entityID)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	return actions
}

// ── Escenarios de punta a punta ──

func TestEscenario1_FacturaSinCobro(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 2, "10.00", "21")

	assert.Equal(t, "FA260314-001", inv.Number)
	assert.True(t, d("20.00").Equal(inv.Subtotal))
	assert.True(t, d("4.20").Equal(inv.VATTotal))
	assert.True(t, d("24.20").Equal(inv.Total))
	assert.Equal(t, entity.DocStatusUnpaid, inv.Status)
	assert.Equal(t, "Batiplus SPRL", inv.Customer.Name)
	assert.Equal(t, "GG10WP035020", inv.Items[0].SKU)
	assert.Equal(t, 8, f.stock(t, "p1"))
	assert.Len(t, inv.StockMovementIDs, 1)
	assert.Equal(t, []string{entity.AuditCreate}, auditActions(t, f, inv.ID))
}

func TestEscenario2_CobroTotal(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 2, "10.00", "21")

	paid, err := f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCard, Amount: d("24.20")})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusPaid, paid.Status)
	assert.True(t, d("24.20").Equal(paid.PaidTotal))
	assert.Equal(t, []string{entity.AuditCreate, entity.AuditPayment}, auditActions(t, f, inv.ID))
}

func TestEscenario3_CobrosParciales(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 2, "10.00", "21")

	first, err := f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("10.00")})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusPartiallyPaid, first.Status)
	assert.True(t, d("10.00").Equal(first.PaidTotal))

	second, err := f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCard, Amount: d("14.20")})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusPaid, second.Status)
	assert.True(t, d("24.20").Equal(second.PaidTotal))
	assert.Len(t, second.Payments, 2)
}

func TestEscenario4_ConvertirPresupuesto(t *testing.T) {
	f := newFixture(t)
	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:    entity.DocTypeQuote,
		CustomerID: "c1",
		Items: []documents.ItemInput{
			{ProductID: "p1", Quantity: 3, UnitPrice: d("4.50"), VATRate: d("21"), DiscountType: entity.DiscountPercent, DiscountValue: d("10")},
		},
		Notes: "Chantier Ixelles",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusDraft, quote.Status)
	assert.Equal(t, "DV260314-001", quote.Number)
	assert.Equal(t, 10, f.stock(t, "p1"), "un presupuesto no mueve stock")

	inv, err := f.engine.ConvertDocument(f.ctx, documents.ConvertInput{DocumentID: quote.ID, TargetType: entity.DocTypeInvoice})
	require.NoError(t, err)

	assert.Equal(t, entity.DocTypeInvoice, inv.DocType)
	assert.Equal(t, quote.ID, inv.SourceDocumentID)
	assert.True(t, quote.Total.Equal(inv.Total))
	assert.Equal(t, entity.DiscountPercent, inv.Items[0].DiscountType)
	assert.Equal(t, "Chantier Ixelles", inv.Notes)
	assert.Empty(t, inv.Payments)
	assert.Equal(t, 7, f.stock(t, "p1"))

	src := f.doc(t, quote.ID)
	assert.Equal(t, entity.DocStatusAccepted, src.Status)
	assert.Contains(t, src.RelatedDocuments, inv.ID)
	assert.Equal(t, []string{entity.AuditCreate, entity.AuditConvert}, auditActions(t, f, quote.ID))
}

func TestEscenario5_DevolucionTotal(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 1, "50.00", "21")
	require.True(t, d("60.50").Equal(inv.Total))
	before := f.stock(t, "p1")

	cn, err := f.engine.CreateReturn(f.ctx, documents.ReturnInput{
		DocumentID: inv.ID,
		Lines:      []documents.ReturnLine{{ItemIndex: 0, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DocTypeCreditNote, cn.DocType)
	assert.Equal(t, "CN260314-001", cn.Number)
	assert.True(t, d("-60.50").Equal(cn.Total), cn.Total.String())
	assert.Equal(t, inv.ID, cn.ReferenceInvoiceID)
	assert.Equal(t, inv.Number, cn.ReferenceInvoiceNumber)
	assert.Equal(t, "RETOUR: Tuyau PVC 35mm", cn.Items[0].Name)
	assert.Equal(t, entity.DocStatusUnpaid, cn.Status)
	assert.Equal(t, before+1, f.stock(t, "p1"))

	orig := f.doc(t, inv.ID)
	assert.Equal(t, entity.DocStatusCredited, orig.Status)
	assert.Contains(t, orig.RelatedDocuments, cn.ID)
	assert.Equal(t, []string{entity.AuditCreate, entity.AuditCreditNote}, auditActions(t, f, inv.ID))
	assert.Equal(t, []string{entity.AuditCreditNote}, auditActions(t, f, cn.ID))
}

func TestEscenario6_ArqueoSinDescuadre(t *testing.T) {
	t.Run("cobro al crear", func(t *testing.T) {
		f := newFixture(t)
		sh := f.openShift(t, "100")
		_, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
			DocType:  entity.DocTypeInvoice,
			Items:    []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("50"), VATRate: d("0")}},
			Payments: []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("50")}},
			ShiftID:  sh.ID,
		})
		require.NoError(t, err)

		closed, err := f.reg.CloseShift(f.ctx, shift.CloseShiftInput{RegisterNumber: 1, CountedCash: d("150")})
		require.NoError(t, err)
		assert.True(t, closed.Discrepancy.IsZero(), closed.Discrepancy.String())
		assert.True(t, d("150").Equal(closed.ClosingCash))
		assert.Equal(t, 1, closed.SalesCount)
	})

	t.Run("cobro posterior", func(t *testing.T) {
		f := newFixture(t)
		sh := f.openShift(t, "100")
		inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
			DocType: entity.DocTypeInvoice,
			Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("50"), VATRate: d("0")}},
			ShiftID: sh.ID,
		})
		require.NoError(t, err)
		_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("50"), ShiftID: sh.ID})
		require.NoError(t, err)

		closed, err := f.reg.CloseShift(f.ctx, shift.CloseShiftInput{RegisterNumber: 1, CountedCash: d("150")})
		require.NoError(t, err)
		assert.True(t, closed.Discrepancy.IsZero(), closed.Discrepancy.String())
	})
}

// ── Creación ──

func TestCreateDocument_Validacion(t *testing.T) {
	item := []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}}
	cases := []struct {
		name string
		in   documents.CreateDocumentInput
		want error
	}{
		{"tipo desconocido", documents.CreateDocumentInput{DocType: "bon", Items: item}, domain.ErrInvalidInput},
		{"nota de crédito directa", documents.CreateDocumentInput{DocType: entity.DocTypeCreditNote, Items: item}, domain.ErrInvalidInput},
		{"sin líneas", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice}, domain.ErrInvalidInput},
		{"cantidad cero", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: []documents.ItemInput{{ProductID: "p1", Quantity: 0}}}, domain.ErrInvalidInput},
		{"cantidad negativa en factura", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: []documents.ItemInput{{ProductID: "p1", Quantity: -2, UnitPrice: d("10"), VATRate: d("21")}}}, domain.ErrInvalidInput},
		{"cantidad negativa en ticket", documents.CreateDocumentInput{DocType: entity.DocTypeReceipt, Items: []documents.ItemInput{{ProductID: "p1", Quantity: -1, UnitPrice: d("10"), VATRate: d("21")}}}, domain.ErrInvalidInput},
		{"cantidad negativa en albarán", documents.CreateDocumentInput{DocType: entity.DocTypeDeliveryNote, Items: []documents.ItemInput{{ProductID: "p1", Quantity: -1}}}, domain.ErrInvalidInput},
		{"descuento desconocido", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: item, GlobalDiscountType: "bogo"}, domain.ErrInvalidInput},
		{"cobro cero", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: item, Payments: []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("0")}}}, domain.ErrInvalidAmount},
		{"cobro con tres decimales", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: item, Payments: []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("10.005")}}}, domain.ErrInvalidAmount},
		{"medio desconocido", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: item, Payments: []documents.PaymentInput{{Method: "cheque", Amount: d("1")}}}, domain.ErrInvalidInput},
		{"cobro en presupuesto", documents.CreateDocumentInput{DocType: entity.DocTypeQuote, Items: item, Payments: []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("1")}}}, domain.ErrInvalidInput},
		{"cliente inexistente", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: item, CustomerID: "nope"}, domain.ErrNotFound},
		{"turno inexistente", documents.CreateDocumentInput{DocType: entity.DocTypeInvoice, Items: item, ShiftID: "nope"}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.engine.CreateDocument(f.ctx, tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
			assert.Equal(t, 10, f.stock(t, "p1"))
		})
	}
}

func TestCreateDocument_FalloNoConsumeNumeracion(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeInvoice,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}},
		ShiftID: "nope",
	})
	require.Error(t, err)

	inv := f.invoice(t, 1, "10", "21")
	assert.Equal(t, "FA260314-001", inv.Number)
}

func TestCreateDocument_EstadoInicialSegunCobros(t *testing.T) {
	f := newFixture(t)
	partial := f.invoice(t, 2, "10.00", "21", documents.PaymentInput{Method: entity.PaymentCash, Amount: d("5")})
	assert.Equal(t, entity.DocStatusPartiallyPaid, partial.Status)

	full := f.invoice(t, 2, "10.00", "21",
		documents.PaymentInput{Method: entity.PaymentCash, Amount: d("20")},
		documents.PaymentInput{Method: entity.PaymentCard, Amount: d("4.195")},
	)
	assert.Equal(t, entity.DocStatusPaid, full.Status, "dentro de la tolerancia de 0.01")
	assert.Equal(t, "FA260314-002", full.Number)
}

func TestCreateDocument_NumeracionPorTipoYDia(t *testing.T) {
	f := newFixture(t)
	item := []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("1"), VATRate: d("21")}}

	a, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{DocType: entity.DocTypeReceipt, Items: item})
	require.NoError(t, err)
	b, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{DocType: entity.DocTypeReceipt, Items: item})
	require.NoError(t, err)
	c, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{DocType: entity.DocTypeDeliveryNote, Items: item})
	require.NoError(t, err)
	assert.Equal(t, "RC260314-001", a.Number)
	assert.Equal(t, "RC260314-002", b.Number)
	assert.Equal(t, "BL260314-001", c.Number)

	f.engine.SetClock(func() time.Time { return fixedNow.Add(24 * time.Hour) })
	next, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{DocType: entity.DocTypeReceipt, Items: item})
	require.NoError(t, err)
	assert.Equal(t, "RC260315-001", next.Number)
}

func TestCreateDocument_NumerosUnicosEnConcurrencia(t *testing.T) {
	f := newFixture(t)
	const n = 20
	numbers := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
				DocType: entity.DocTypeReceipt,
				Items:   []documents.ItemInput{{ProductID: "p2", Quantity: 1, UnitPrice: d("0.35"), VATRate: d("6")}},
			})
			if assert.NoError(t, err) {
				numbers[i] = doc.Number
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, num := range numbers {
		assert.False(t, seen[num], "número repetido %s", num)
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("RC260314-%03d", i)])
	}
	assert.Equal(t, 100-n, f.stock(t, "p2"))
}

func TestCreateDocument_EfectosDeStockPorTipo(t *testing.T) {
	item := []documents.ItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: d("4.50"), VATRate: d("21")}}
	cases := []struct {
		docType string
		want    int
	}{
		{entity.DocTypeInvoice, 8},
		{entity.DocTypeReceipt, 8},
		{entity.DocTypeDeliveryNote, 8},
		{entity.DocTypeQuote, 10},
		{entity.DocTypeProforma, 10},
		{entity.DocTypePurchaseOrder, 10},
	}
	for _, tc := range cases {
		t.Run(tc.docType, func(t *testing.T) {
			f := newFixture(t)
			doc, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{DocType: tc.docType, Items: item})
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.stock(t, "p1"))

			movs, err := f.store.Movements().ListByReference(f.ctx, documents.ReferenceDocument, doc.ID)
			require.NoError(t, err)
			assert.Len(t, movs, 10-tc.want)
		})
	}
}

func TestCreateDocument_ProductoInexistenteSeRegistraComoOmitido(t *testing.T) {
	f := newFixture(t)
	doc, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeInvoice,
		Items: []documents.ItemInput{
			{ProductID: "ghost", SKU: "OLD-1", Name: "Descatalogado", Quantity: 1, UnitPrice: d("5"), VATRate: d("21")},
			{ProductID: "p1", Quantity: 1, UnitPrice: d("4.50"), VATRate: d("21")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, doc.StockMovementIDs, 1)
	assert.Equal(t, 9, f.stock(t, "p1"))

	logs, err := f.engine.AuditHistory(f.ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	var meta struct {
		StockSkipped []documents.StockSkip `json:"stock_skipped"`
	}
	require.NoError(t, json.Unmarshal(logs[0].Metadata, &meta))
	require.Len(t, meta.StockSkipped, 1)
	assert.Equal(t, "ghost", meta.StockSkipped[0].ProductID)
	assert.Equal(t, 0, meta.StockSkipped[0].ItemIndex)
}

type failingEffects struct{}

func (failingEffects) RecordSaleEffect(context.Context, repository.Repos, string, decimal.Decimal, decimal.Decimal, map[string]decimal.Decimal) error {
	return errors.New("turno no disponible")
}

func (failingEffects) RecordStandalonePayment(context.Context, repository.Repos, string, string, decimal.Decimal) error {
	return errors.New("turno no disponible")
}

func (failingEffects) RecordRefund(context.Context, repository.Repos, string, decimal.Decimal, string) error {
	return errors.New("turno no disponible")
}

func TestCreateDocument_FalloDelTurnoDeshaceTodo(t *testing.T) {
	f := newFixtureWithEffects(t, failingEffects{})
	sh := f.openShift(t, "50")

	_, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeInvoice,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 4, UnitPrice: d("4.50"), VATRate: d("21")}},
		ShiftID: sh.ID,
	})
	require.Error(t, err)

	assert.Equal(t, 10, f.stock(t, "p1"))
	docs, err := f.engine.List(f.ctx, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
	movs, err := f.store.Movements().ListByProduct(f.ctx, "p1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestConvertDocument_CantidadNegativaNoMueveStock(t *testing.T) {
	f := newFixture(t)
	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeQuote,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: -2, UnitPrice: d("10"), VATRate: d("21")}},
	})
	require.NoError(t, err)

	_, err = f.engine.ConvertDocument(f.ctx, documents.ConvertInput{DocumentID: quote.ID, TargetType: entity.DocTypeInvoice})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 10, f.stock(t, "p1"))
	assert.Equal(t, entity.DocStatusDraft, f.doc(t, quote.ID).Status)
}

// El documento origen se bloquea antes que el turno: con origen inexistente y turno cerrado
// el error es el del origen.
func TestCreateDocument_OrigenAntesQueTurno(t *testing.T) {
	f := newFixture(t)
	sh := f.openShift(t, "0")
	_, err := f.reg.CloseShift(f.ctx, shift.CloseShiftInput{RegisterNumber: 1, CountedCash: d("0")})
	require.NoError(t, err)

	_, err = f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:          entity.DocTypeInvoice,
		Items:            []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("4.50"), VATRate: d("21")}},
		SourceDocumentID: "nope",
		ShiftID:          sh.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrShiftClosed)
}

func TestCreateDocument_TurnoCerrado(t *testing.T) {
	f := newFixture(t)
	sh := f.openShift(t, "0")
	_, err := f.reg.CloseShift(f.ctx, shift.CloseShiftInput{RegisterNumber: 1, CountedCash: d("0")})
	require.NoError(t, err)

	_, err = f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeReceipt,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("4.50"), VATRate: d("21")}},
		ShiftID: sh.ID,
	})
	assert.ErrorIs(t, err, domain.ErrShiftClosed)
}

func TestCreateDocument_VentaConTurnoActualizaAcumuladores(t *testing.T) {
	f := newFixture(t)
	sh := f.openShift(t, "100")
	_, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeReceipt,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: d("10"), VATRate: d("21")}},
		Payments: []documents.PaymentInput{
			{Method: entity.PaymentCash, Amount: d("20")},
			{Method: entity.PaymentCard, Amount: d("4.20")},
		},
		ShiftID: sh.ID,
	})
	require.NoError(t, err)

	// una proforma no es venta: solo cuenta el cobro
	_, err = f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:  entity.DocTypeProforma,
		Items:    []documents.ItemInput{{Quantity: 1, UnitPrice: d("100"), VATRate: d("21")}},
		Payments: []documents.PaymentInput{{Method: entity.PaymentBankTransfer, Amount: d("30")}},
		ShiftID:  sh.ID,
	})
	require.NoError(t, err)

	got, err := f.reg.Get(f.ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SalesCount)
	assert.True(t, d("24.20").Equal(got.SalesTotal))
	assert.True(t, d("4.20").Equal(got.VATCollected))
	assert.True(t, d("20").Equal(got.CashTotal))
	assert.True(t, d("4.20").Equal(got.CardTotal))
	assert.True(t, d("30").Equal(got.TransferTotal))
}

// ── Cobros ──

func TestAddPayment_Rechazos(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 1, "10", "21")
	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeQuote,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}},
	})
	require.NoError(t, err)

	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: quote.ID, Method: entity.PaymentCash, Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: "nope", Method: entity.PaymentCash, Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("10.005")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.True(t, f.doc(t, inv.ID).PaidTotal.IsZero())

	cn, err := f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID})
	require.NoError(t, err)
	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: cn.ID, Method: entity.PaymentCash, Amount: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddPayment_SaldoTrasDevolucionParcial(t *testing.T) {
	f := newFixture(t)
	sh := f.openShift(t, "0")
	inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:  entity.DocTypeInvoice,
		Items:    []documents.ItemInput{{ProductID: "p1", Quantity: 3, UnitPrice: d("10"), VATRate: d("21")}},
		Payments: []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("12.10")}},
		ShiftID:  sh.ID,
	})
	require.NoError(t, err)
	require.Equal(t, entity.DocStatusPartiallyPaid, inv.Status)

	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{
		DocumentID: inv.ID,
		Lines:      []documents.ReturnLine{{ItemIndex: 0, Quantity: 1}},
	})
	require.NoError(t, err)

	doc, err := f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCard, Amount: d("12.10"), ShiftID: sh.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusCredited, doc.Status)
	assert.True(t, d("24.20").Equal(doc.PaidTotal))
	assert.Len(t, doc.Payments, 2)

	cur, err := f.reg.Current(f.ctx, 1)
	require.NoError(t, err)
	assert.True(t, d("12.10").Equal(cur.CardTotal))
	assert.Contains(t, auditActions(t, f, inv.ID), entity.AuditPayment)
}

func TestAddPayment_SobrepagoAceptado(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 1, "10", "21")

	doc, err := f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("20")})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusPaid, doc.Status)
	assert.True(t, d("20").Equal(doc.PaidTotal))
}

func TestAddPayment_TurnoCerradoNoRegistraCobro(t *testing.T) {
	f := newFixture(t)
	sh := f.openShift(t, "0")
	inv := f.invoice(t, 1, "10", "21")
	_, err := f.reg.CloseShift(f.ctx, shift.CloseShiftInput{RegisterNumber: 1, CountedCash: d("0")})
	require.NoError(t, err)

	_, err = f.engine.AddPayment(f.ctx, documents.AddPaymentInput{DocumentID: inv.ID, Method: entity.PaymentCash, Amount: d("5"), ShiftID: sh.ID})
	assert.ErrorIs(t, err, domain.ErrShiftClosed)
	assert.True(t, f.doc(t, inv.ID).PaidTotal.IsZero())
}

// ── Conversión, duplicado y estados ──

func TestConvertDocument_Rechazos(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 1, "10", "21")
	_, err := f.engine.ConvertDocument(f.ctx, documents.ConvertInput{DocumentID: inv.ID, TargetType: entity.DocTypeReceipt})
	assert.ErrorIs(t, err, domain.ErrNotConvertible)

	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeQuote,
		Items:   []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}},
	})
	require.NoError(t, err)
	_, err = f.engine.ConvertDocument(f.ctx, documents.ConvertInput{DocumentID: quote.ID, TargetType: entity.DocTypeCreditNote})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.engine.ChangeStatus(f.ctx, documents.ChangeStatusInput{DocumentID: quote.ID, Status: entity.DocStatusCancelled})
	require.NoError(t, err)
	_, err = f.engine.ConvertDocument(f.ctx, documents.ConvertInput{DocumentID: quote.ID, TargetType: entity.DocTypeInvoice})
	assert.ErrorIs(t, err, domain.ErrNotConvertible)
}

func TestConvertDocument_ConservaSnapshotDelCliente(t *testing.T) {
	f := newFixture(t)
	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:             entity.DocTypeQuote,
		CustomerID:          "c1",
		Items:               []documents.ItemInput{{ProductID: "p1", Quantity: 4, UnitPrice: d("25"), VATRate: d("21")}},
		GlobalDiscountType:  entity.DiscountFixed,
		GlobalDiscountValue: d("20"),
	})
	require.NoError(t, err)

	proforma, err := f.engine.ConvertDocument(f.ctx, documents.ConvertInput{DocumentID: quote.ID, TargetType: entity.DocTypeProforma})
	require.NoError(t, err)
	assert.Equal(t, quote.Customer, proforma.Customer)
	assert.Equal(t, entity.DiscountFixed, proforma.GlobalDiscountType)
	assert.True(t, d("96.80").Equal(proforma.Total))
	assert.Equal(t, 10, f.stock(t, "p1"))
}

func TestDuplicateDocument(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:    entity.DocTypeInvoice,
		CustomerID: "c1",
		Items:      []documents.ItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: d("10"), VATRate: d("21")}},
		Payments:   []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("24.20")}},
		Notes:      "Livraison mardi",
	})
	require.NoError(t, err)

	dup, err := f.engine.DuplicateDocument(f.ctx, documents.DuplicateInput{DocumentID: inv.ID})
	require.NoError(t, err)
	assert.NotEqual(t, inv.ID, dup.ID)
	assert.Equal(t, "FA260314-002", dup.Number)
	assert.Equal(t, entity.DocTypeInvoice, dup.DocType)
	assert.Equal(t, "Duplicated from FA260314-001\nLivraison mardi", dup.Notes)
	assert.Empty(t, dup.Payments)
	assert.Empty(t, dup.SourceDocumentID)
	assert.Equal(t, entity.DocStatusUnpaid, dup.Status)
	assert.True(t, inv.Total.Equal(dup.Total))
	assert.Equal(t, 6, f.stock(t, "p1"))
	assert.Empty(t, f.doc(t, inv.ID).RelatedDocuments)
}

func TestChangeStatus(t *testing.T) {
	f := newFixture(t)
	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeQuote,
		Items:   []documents.ItemInput{{Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}},
	})
	require.NoError(t, err)

	sent, err := f.engine.ChangeStatus(f.ctx, documents.ChangeStatusInput{DocumentID: quote.ID, Status: entity.DocStatusSent})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusSent, sent.Status)

	_, err = f.engine.ChangeStatus(f.ctx, documents.ChangeStatusInput{DocumentID: quote.ID, Status: entity.DocStatusDraft})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	inv := f.invoice(t, 1, "10", "21")
	_, err = f.engine.ChangeStatus(f.ctx, documents.ChangeStatusInput{DocumentID: inv.ID, Status: entity.DocStatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, []string{entity.AuditCreate, entity.AuditStatusChange}, auditActions(t, f, quote.ID))
}

// ── Devoluciones ──

func TestCreateReturn_Parcial(t *testing.T) {
	f := newFixture(t)
	inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeInvoice,
		Items: []documents.ItemInput{
			{ProductID: "p1", Quantity: 4, UnitPrice: d("10"), VATRate: d("21"), DiscountType: entity.DiscountPercent, DiscountValue: d("10")},
			{ProductID: "p2", Quantity: 10, UnitPrice: d("1"), VATRate: d("6")},
		},
	})
	require.NoError(t, err)

	cn, err := f.engine.CreateReturn(f.ctx, documents.ReturnInput{
		DocumentID: inv.ID,
		Lines:      []documents.ReturnLine{{ItemIndex: 0, Quantity: 1}},
		Notes:      "Défaut",
	})
	require.NoError(t, err)
	require.Len(t, cn.Items, 1)
	// precio neto del descuento de línea: 36 / 4
	assert.True(t, d("-9").Equal(cn.Items[0].UnitPrice))
	assert.True(t, d("-9").Equal(cn.Subtotal))
	assert.True(t, d("-1.89").Equal(cn.VATTotal))
	assert.True(t, d("-10.89").Equal(cn.Total))
	assert.Equal(t, 7, f.stock(t, "p1"))
	assert.Equal(t, 90, f.stock(t, "p2"))

	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyCredited)
}

func TestCreateReturn_Rechazos(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 2, "10", "21")
	quote, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeQuote,
		Items:   []documents.ItemInput{{Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}},
	})
	require.NoError(t, err)

	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: quote.ID})
	assert.ErrorIs(t, err, domain.ErrNotCreditable)
	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID, Lines: []documents.ReturnLine{{ItemIndex: 0, Quantity: 3}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID, Lines: []documents.ReturnLine{{ItemIndex: 0, Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID, Lines: []documents.ReturnLine{{ItemIndex: 5, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID, RefundMethod: "cheque"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, entity.DocStatusUnpaid, f.doc(t, inv.ID).Status)
	assert.Equal(t, 8, f.stock(t, "p1"))
}

func TestCreateReturn_ReembolsoEnEfectivoConTurno(t *testing.T) {
	f := newFixture(t)
	sh := f.openShift(t, "100")
	inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType:  entity.DocTypeReceipt,
		Items:    []documents.ItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: d("50"), VATRate: d("0")}},
		Payments: []documents.PaymentInput{{Method: entity.PaymentCash, Amount: d("50")}},
		ShiftID:  sh.ID,
	})
	require.NoError(t, err)

	cn, err := f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID, RefundMethod: entity.PaymentCash, ShiftID: sh.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.DocStatusPaid, cn.Status)
	assert.True(t, d("-50").Equal(cn.PaidTotal))
	require.Len(t, cn.Payments, 1)
	assert.True(t, d("-50").Equal(cn.Payments[0].Amount))

	got, err := f.reg.Get(f.ctx, sh.ID)
	require.NoError(t, err)
	assert.True(t, d("50").Equal(got.RefundsTotal))
	assert.True(t, got.CashTotal.IsZero())
	// el reembolso en efectivo descuenta del acumulador y de refunds_total
	assert.True(t, d("50").Equal(shift.ExpectedCash(got)), shift.ExpectedCash(got).String())
}

func TestCreateReturn_DescuentoGlobal(t *testing.T) {
	t.Run("porcentaje", func(t *testing.T) {
		f := newFixture(t)
		inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
			DocType:             entity.DocTypeInvoice,
			Items:               []documents.ItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: d("50"), VATRate: d("21")}},
			GlobalDiscountType:  entity.DiscountPercent,
			GlobalDiscountValue: d("10"),
		})
		require.NoError(t, err)
		require.True(t, d("108.90").Equal(inv.Total))

		cn, err := f.engine.CreateReturn(f.ctx, documents.ReturnInput{DocumentID: inv.ID})
		require.NoError(t, err)
		assert.True(t, d("-108.90").Equal(cn.Total), cn.Total.String())
	})

	t.Run("fijo prorrateado", func(t *testing.T) {
		f := newFixture(t)
		inv, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
			DocType:             entity.DocTypeInvoice,
			Items:               []documents.ItemInput{{ProductID: "p1", Quantity: 4, UnitPrice: d("25"), VATRate: d("21")}},
			GlobalDiscountType:  entity.DiscountFixed,
			GlobalDiscountValue: d("20"),
		})
		require.NoError(t, err)
		require.True(t, d("96.80").Equal(inv.Total))

		cn, err := f.engine.CreateReturn(f.ctx, documents.ReturnInput{
			DocumentID: inv.ID,
			Lines:      []documents.ReturnLine{{ItemIndex: 0, Quantity: 2}},
		})
		require.NoError(t, err)
		// la mitad de la mercadería se lleva la mitad del descuento
		assert.True(t, d("-10").Equal(cn.GlobalDiscountValue))
		assert.True(t, d("-40").Equal(cn.Subtotal))
		assert.True(t, d("-48.40").Equal(cn.Total), cn.Total.String())
	})
}

// ── Consultas ──

func TestListYGet(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, 1, "10", "21")
	_, err := f.engine.CreateDocument(f.ctx, documents.CreateDocumentInput{
		DocType: entity.DocTypeQuote,
		Items:   []documents.ItemInput{{Quantity: 1, UnitPrice: d("10"), VATRate: d("21")}},
	})
	require.NoError(t, err)

	invoices, err := f.engine.List(f.ctx, repository.DocumentFilter{DocType: entity.DocTypeInvoice})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, inv.ID, invoices[0].ID)

	byCustomer, err := f.engine.List(f.ctx, repository.DocumentFilter{CustomerID: "c1"})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)

	_, err = f.engine.Get(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.engine.AuditHistory(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
