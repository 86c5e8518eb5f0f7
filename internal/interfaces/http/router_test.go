package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/audit"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/documents"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/shift"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/peppol"
	"github.com/jhoicas/pos-api/internal/infrastructure/ticket"
	apphttp "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app    *fiber.App
	store  *memory.Store
	authUC *auth.AuthUseCase
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID:       "p1",
		SKU:      "GG10WP035020",
		Name:     "Tuyau PVC 35mm",
		Unit:     "piece",
		Price:    decimal.RequireFromString("4.50"),
		VATRate:  decimal.RequireFromString("21"),
		StockQty: 10,
		MinStock: 2,
	}))
	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{
		ID:        "c1",
		Type:      entity.CustomerCompany,
		Name:      "Batiplus SPRL",
		VATNumber: "BE0123456789",
		PeppolID:  "0208:0123456789",
		Country:   "BE",
	}))

	log := logger.Nop()
	trail := audit.NewTrail(store.AuditLogs())
	reg := shift.NewRegister(store, store.Shifts(), store.Documents(), trail, log)
	ledger := inventory.NewStockLedger(store, store.Products(), store.Movements(), trail, log)
	engine := documents.NewEngine(store, store.Documents(), ledger, reg, trail, log)
	issuer := entity.Company{Name: "Quincaillerie Test", VATNumber: "BE0999999999", PeppolID: "0208:0999999999", Country: "BE"}
	output := documents.NewOutputUseCase(store.Documents(), pdf.NewMarotoPDFGenerator(), peppol.NewUBLBuilder(), ticket.NewPrinter(), issuer)
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:          authUC,
		Catalog:         catalog.NewCatalogUseCase(store.Products(), store.Categories(), store.Customers()),
		Documents:       engine,
		Output:          output,
		Shifts:          reg,
		Stock:           ledger,
		Trail:           trail,
		JWTSecret:       testJWTSecret,
		DefaultRegister: 1,
	})
	return &testAPI{app: app, store: store, authUC: authUC}
}

// call lanza la petición con el token del rol dado ("" = sin token) y body JSON opcional.
func (a *testAPI) call(t *testing.T, method, path, role string, body any, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, resp).Code
}

func saleBody(docType string, paid string) map[string]any {
	body := map[string]any{
		"doc_type":    docType,
		"customer_id": "c1",
		"items": []map[string]any{{
			"product_id": "p1",
			"sku":        "GG10WP035020",
			"name":       "Tuyau PVC 35mm",
			"qty":        2,
			"unit_price": "4.50",
			"vat_rate":   "21",
		}},
	}
	if paid != "" {
		body["payments"] = []map[string]any{{"method": "cash", "amount": paid}}
	}
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_DevuelveTokenUsable(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.authUC.RegisterUser(context.Background(), dto.CreateUserRequest{
		Email:    "caisse@quincaillerie.be",
		Password: "motdepasse",
		Name:     "Caisse 1",
		Role:     entity.RoleCashier,
	})
	require.NoError(t, err)

	resp := api.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "caisse@quincaillerie.be", Password: "motdepasse"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LoginResponse](t, resp)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, entity.RoleCashier, out.User.Role)

	req := httptest.NewRequest(http.MethodGet, "/api/stock-alerts", nil)
	req.Header.Set("Authorization", "Bearer "+out.Token)
	res, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLogin_PasswordIncorrecto_Retorna401(t *testing.T) {
	api := newTestAPI(t)
	resp := api.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@quincaillerie.be", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

func TestRegister_SoloAdmin(t *testing.T) {
	api := newTestAPI(t)
	body := dto.CreateUserRequest{Email: "gerant@quincaillerie.be", Password: "motdepasse", Role: entity.RoleManager}

	resp := api.call(t, http.MethodPost, "/api/auth/register", entity.RoleCashier, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/auth/register", entity.RoleAdmin, body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/auth/register", entity.RoleAdmin, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Turno + venta + devolución
// ──────────────────────────────────────────────────────────────────────────────

func TestVentaConTurno_YDevolucion(t *testing.T) {
	api := newTestAPI(t)

	resp := api.call(t, http.MethodPost, "/api/shifts/open", entity.RoleCashier, map[string]any{"opening_cash": "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sh := decode[dto.ShiftResponse](t, resp)
	assert.Equal(t, 1, sh.RegisterNumber)
	assert.Equal(t, testUserName, sh.CashierName)

	resp = api.call(t, http.MethodPost, "/api/shifts/open", entity.RoleCashier, map[string]any{"opening_cash": "100"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SHIFT_ALREADY_OPEN", errorCode(t, resp))

	resp = api.call(t, http.MethodPost, "/api/documents", entity.RoleCashier, saleBody(entity.DocTypeReceipt, "10.89"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, entity.DocStatusPaid, sale.Status)
	assert.Equal(t, sh.ID, sale.ShiftID)
	assert.Equal(t, "10.89", sale.Total.StringFixed(2))

	p, err := api.store.Products().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.StockQty)

	resp = api.call(t, http.MethodGet, "/api/shifts/current", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	current := decode[dto.ShiftResponse](t, resp)
	assert.Equal(t, 1, current.SalesCount)
	assert.Equal(t, "10.89", current.CashTotal.StringFixed(2))

	resp = api.call(t, http.MethodPost, "/api/documents/"+sale.ID+"/return", entity.RoleCashier, map[string]any{"refund_method": "cash"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cn := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, entity.DocTypeCreditNote, cn.DocType)
	assert.Equal(t, sale.Number, cn.ReferenceInvoiceNumber)
	assert.True(t, cn.Total.IsNegative())

	resp = api.call(t, http.MethodGet, "/api/documents/"+sale.ID, entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.DocStatusCredited, decode[dto.DocumentResponse](t, resp).Status)

	resp = api.call(t, http.MethodPost, "/api/documents/"+sale.ID+"/return", entity.RoleCashier, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_CREDITED", errorCode(t, resp))

	p, err = api.store.Products().GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQty)

	resp = api.call(t, http.MethodGet, "/api/documents/"+sale.ID+"/audit", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[[]dto.AuditLogResponse](t, resp)
	require.NotEmpty(t, history)
	assert.Equal(t, entity.AuditCreate, history[0].Action)

	// cierre: el cajero no puede, el manager sí
	resp = api.call(t, http.MethodPost, "/api/shifts/current/close", entity.RoleCashier, map[string]any{"counted_cash": "100"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/shifts/current/close", entity.RoleManager, map[string]any{"counted_cash": "100"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decode[dto.ShiftResponse](t, resp)
	assert.Equal(t, entity.ShiftClosed, closed.Status)

	resp = api.call(t, http.MethodGet, "/api/shifts/"+sh.ID+"/z-report", entity.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dto.ZReportResponse](t, resp)
	assert.Equal(t, sh.ID, report.Shift.ID)

	resp = api.call(t, http.MethodGet, "/api/shifts/current", entity.RoleCashier, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_OPEN_SHIFT", errorCode(t, resp))
}

func TestCajasSeparadasPorCabecera(t *testing.T) {
	api := newTestAPI(t)

	resp := api.call(t, http.MethodPost, "/api/shifts/open", entity.RoleCashier, map[string]any{"opening_cash": "50"}, apphttp.RegisterHeader, "2")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, decode[dto.ShiftResponse](t, resp).RegisterNumber)

	// la caja 1 no tiene turno: la venta queda sin turno
	resp = api.call(t, http.MethodPost, "/api/documents", entity.RoleCashier, saleBody(entity.DocTypeReceipt, "10.89"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Empty(t, decode[dto.DocumentResponse](t, resp).ShiftID)

	resp = api.call(t, http.MethodGet, "/api/shifts/current", entity.RoleCashier, nil, apphttp.RegisterHeader, "abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Presupuestos y salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestPresupuesto_ConvertirYExportar(t *testing.T) {
	api := newTestAPI(t)

	resp := api.call(t, http.MethodPost, "/api/documents", entity.RoleCashier, saleBody(entity.DocTypeQuote, ""))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	quote := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, entity.DocStatusDraft, quote.Status)

	resp = api.call(t, http.MethodPatch, "/api/documents/"+quote.ID+"/status", entity.RoleCashier, dto.ChangeStatusRequest{Status: entity.DocStatusSent})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/documents/"+quote.ID+"/convert", entity.RoleCashier, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/documents/"+quote.ID+"/convert?target_type=invoice", entity.RoleCashier, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	invoice := decode[dto.DocumentResponse](t, resp)
	assert.Equal(t, entity.DocTypeInvoice, invoice.DocType)
	assert.Equal(t, entity.DocStatusUnpaid, invoice.Status)
	assert.Equal(t, quote.ID, invoice.SourceDocumentID)

	resp = api.call(t, http.MethodPost, "/api/documents/"+invoice.ID+"/convert?target_type=receipt", entity.RoleCashier, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NOT_CONVERTIBLE", errorCode(t, resp))

	resp = api.call(t, http.MethodPost, "/api/documents/"+invoice.ID+"/pay", entity.RoleCashier, dto.PaymentRequest{Method: entity.PaymentCard, Amount: decimal.RequireFromString("5")})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.DocStatusPartiallyPaid, decode[dto.DocumentResponse](t, resp).Status)

	resp = api.call(t, http.MethodGet, "/api/documents/"+invoice.ID+"/ubl", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), invoice.Number+".xml")
	xml, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(xml), invoice.Number)

	resp = api.call(t, http.MethodGet, "/api/documents/"+invoice.ID+"/pdf", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = api.call(t, http.MethodGet, "/api/documents/"+quote.ID+"/ubl", entity.RoleCashier, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodGet, "/api/documents/"+invoice.ID+"/ticket", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodGet, "/api/documents?doc_type=invoice", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.DocumentResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, invoice.ID, list[0].ID)
}

func TestDocumentoInexistente_Retorna404(t *testing.T) {
	api := newTestAPI(t)
	resp := api.call(t, http.MethodGet, "/api/documents/no-existe", entity.RoleCashier, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestCrearDocumento_ValidacionRetorna400(t *testing.T) {
	api := newTestAPI(t)
	resp := api.call(t, http.MethodPost, "/api/documents", entity.RoleCashier, map[string]any{"doc_type": "bon", "items": []any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/documents", "", saleBody(entity.DocTypeReceipt, ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario y auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientoManual_YAlertas(t *testing.T) {
	api := newTestAPI(t)
	body := dto.RegisterMovementRequest{ProductID: "p1", Type: entity.MovementAdjustment, Quantity: -9, Reason: "inventaire"}

	resp := api.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleCashier, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = api.call(t, http.MethodPost, "/api/inventory/movements", entity.RoleManager, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mv := decode[dto.StockMovementResponse](t, resp)
	assert.Equal(t, 1, mv.StockAfter)

	resp = api.call(t, http.MethodGet, "/api/stock-alerts", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	alerts := decode[dto.StockAlertsResponse](t, resp)
	assert.Equal(t, 1, alerts.LowStockCount)
	require.Len(t, alerts.Items, 1)
	assert.Equal(t, "p1", alerts.Items[0].ProductID)

	resp = api.call(t, http.MethodGet, "/api/inventory/movements?product_id=p1", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.StockMovementResponse](t, resp), 1)

	resp = api.call(t, http.MethodGet, "/api/audit-logs?entity_type=product&entity_id=p1", entity.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]dto.AuditLogResponse](t, resp)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditStockAdjustment, logs[0].Action)
}

func TestCatalogo_ProductosYClientes(t *testing.T) {
	api := newTestAPI(t)

	resp := api.call(t, http.MethodGet, "/api/products/p1", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GG10WP035020", decode[dto.ProductResponse](t, resp).SKU)

	resp = api.call(t, http.MethodGet, "/api/customers/c1", entity.RoleCashier, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Batiplus SPRL", decode[dto.CustomerResponse](t, resp).Name)

	resp = api.call(t, http.MethodPost, "/api/products", entity.RoleCashier, dto.CreateProductRequest{SKU: "X", Name: "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
