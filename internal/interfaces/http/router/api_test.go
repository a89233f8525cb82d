package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wimotos/backend/internal/application/catalog"
	"github.com/wimotos/backend/internal/application/finance"
	"github.com/wimotos/backend/internal/application/identity"
	"github.com/wimotos/backend/internal/application/partner"
	"github.com/wimotos/backend/internal/application/promissory"
	"github.com/wimotos/backend/internal/application/sales"
	"github.com/wimotos/backend/internal/infrastructure/config"
	"github.com/wimotos/backend/internal/infrastructure/storage"
	"github.com/wimotos/backend/internal/interfaces/http/handler"
	"github.com/wimotos/backend/internal/interfaces/http/router"
	"github.com/wimotos/backend/tests/testutil"
)

const (
	adminEmail    = "admin@wimotos.test"
	adminPassword = "admin-secret"
)

type apiEnv struct {
	t      *testing.T
	engine *gin.Engine
	fx     *testutil.Fixture
	token  string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fx := testutil.NewFixture(t)
	scope := fx.Scope()
	log := zap.NewNop()

	users := identity.NewUserService(scope, fx.Clock, log)
	created, err := users.EnsureAdmin(context.Background(), "Admin", adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	sqlDB, err := fx.DB.DB()
	require.NoError(t, err)

	engine := router.NewEngine(router.EngineConfig{
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20, MaxUploadSize: 4 << 20},
		ServiceName: "wimotos-test",
		JWT:         testutil.NewJWTService(),
		Logger:      log,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(identity.NewAuthService(scope, testutil.NewJWTService(), log)),
		Users:      handler.NewUserHandler(users),
		Clients:    handler.NewClientHandler(partner.NewClientService(scope, fx.Clock, log)),
		Products:   handler.NewProductHandler(catalog.NewProductService(scope, storage.NewMemoryObjectStorage(), fx.Clock, log)),
		Sales:      handler.NewSaleHandler(sales.NewService(scope, fx.Clock, log)),
		Promissory: handler.NewPromissoryHandler(promissory.NewService(scope, fx.Clock, nil, log)),
		Finance:    handler.NewFinanceHandler(finance.NewEntryService(scope, fx.Clock, log)),
		Health:     handler.NewHealthHandler(sqlDB),
	})

	env := &apiEnv{t: t, engine: engine, fx: fx}
	env.token = env.login(adminEmail, adminPassword)
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func (e *apiEnv) do(method, path, token string, body any) (int, envelope) {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(req)
}

func (e *apiEnv) serve(req *http.Request) (int, envelope) {
	e.t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (e *apiEnv) ok(method, path string, body any, want int, out any) {
	e.t.Helper()
	status, env := e.do(method, path, e.token, body)
	require.Equal(e.t, want, status, "%s %s: %+v", method, path, env.Error)
	require.True(e.t, env.Success)
	if out != nil {
		require.NoError(e.t, json.Unmarshal(env.Data, out))
	}
}

func (e *apiEnv) fails(method, path string, body any, want int, code string) {
	e.t.Helper()
	status, env := e.do(method, path, e.token, body)
	require.Equal(e.t, want, status, "%s %s", method, path)
	require.NotNil(e.t, env.Error)
	assert.False(e.t, env.Success)
	if code != "" {
		assert.Equal(e.t, code, env.Error.Code)
	}
}

func (e *apiEnv) login(email, password string) string {
	e.t.Helper()
	var resp identity.LoginResponse
	status, env := e.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(e.t, http.StatusOK, status)
	require.NoError(e.t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(e.t, resp.AccessToken)
	return resp.AccessToken
}

func TestAPI_PromissorySaleLifecycle(t *testing.T) {
	env := newAPIEnv(t)

	var client partner.ClientResponse
	env.ok(http.MethodPost, "/api/v1/clients", map[string]any{
		"name": "Maria Souza", "phone": "5511988887777",
	}, http.StatusCreated, &client)

	var product catalog.ProductResponse
	productBody := map[string]any{
		"brand": "honda", "model": "cg 160", "year": 2024, "chassis": "9C2KC2200RR000001",
		"color": "Preta", "cost_price": "9000", "sale_price": "12000",
	}
	env.ok(http.MethodPost, "/api/v1/products", productBody, http.StatusCreated, &product)
	assert.Equal(t, "IN_STOCK", product.Status)
	env.fails(http.MethodPost, "/api/v1/products", productBody, http.StatusConflict, "CHASSIS_TAKEN")

	saleBody := map[string]any{
		"client_id": client.ID, "product_id": product.ID,
		"total": "12000", "entry_amount": "2000", "payment_type": "PROMISSORY",
		"installments_count": 3, "first_due_date": "2026-02-28",
	}
	var created sales.CreateSaleResult
	env.ok(http.MethodPost, "/api/v1/sales", saleBody, http.StatusCreated, &created)
	require.NotNil(t, created.Promissory)
	assert.Equal(t, "10000", created.Promissory.Financed.String())
	env.fails(http.MethodPost, "/api/v1/sales", saleBody, http.StatusConflict, "")

	env.ok(http.MethodGet, "/api/v1/products/"+product.ID.String(), nil, http.StatusOK, &product)
	assert.Equal(t, "SOLD", product.Status)

	notePath := "/api/v1/promissories/" + created.Promissory.ID.String()
	var note promissory.NoteResponse
	env.ok(http.MethodPost, notePath+"/issue", nil, http.StatusOK, &note)
	assert.Equal(t, "ISSUED", note.Status)
	env.ok(http.MethodPost, notePath+"/issue", nil, http.StatusOK, &note)
	assert.Equal(t, "ISSUED", note.Status)

	env.fails(http.MethodGet, notePath+"/booklet", nil, http.StatusServiceUnavailable, "PRINTING_DISABLED")

	env.ok(http.MethodGet, notePath, nil, http.StatusOK, &note)
	require.Len(t, note.Installments, 3)
	for i, inst := range note.Installments {
		var paid promissory.PayInstallmentResult
		env.ok(http.MethodPost, "/api/v1/installments/"+inst.ID.String()+"/pay", nil, http.StatusOK, &paid)
		assert.Equal(t, "PAID", paid.Installment.Status)
		if i < 2 {
			assert.Equal(t, "ISSUED", paid.Note.Status)
		} else {
			assert.Equal(t, "PAID", paid.Note.Status)
		}
	}

	env.fails(http.MethodPatch, notePath+"/cancel", nil, http.StatusConflict, "")

	var sale sales.SaleResponse
	salePath := "/api/v1/sales/" + created.Sale.ID.String()
	env.ok(http.MethodPatch, salePath+"/status", map[string]string{"status": "CONFIRMED"}, http.StatusOK, &sale)
	assert.Equal(t, "CONFIRMED", sale.Status)
	env.fails(http.MethodPatch, salePath+"/status", map[string]string{"status": "DRAFT"}, http.StatusUnprocessableEntity, "")

	var page []sales.SaleResponse
	status, list := env.do(http.MethodGet, "/api/v1/sales?page=1&page_size=10", env.token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(list.Data, &page))
	assert.Len(t, page, 1)
	assert.EqualValues(t, 1, list.Meta["total"])
}

func TestAPI_FinanceEntry(t *testing.T) {
	env := newAPIEnv(t)

	var entry finance.EntryResponse
	env.ok(http.MethodPost, "/api/v1/finance", map[string]any{
		"company": "Moto Peças LTDA", "amount": "850.50", "due_date": "2026-02-05",
	}, http.StatusCreated, &entry)
	assert.Equal(t, "PENDING", entry.Status)

	env.ok(http.MethodPut, "/api/v1/finance/"+entry.ID.String(), map[string]any{"due_date": "2026-02-10"}, http.StatusOK, &entry)
	assert.Equal(t, "2026-02-10", entry.DueDate)

	env.ok(http.MethodPost, "/api/v1/finance/"+entry.ID.String()+"/pay", nil, http.StatusOK, &entry)
	assert.Equal(t, "PAID", entry.Status)

	var entries []finance.EntryResponse
	env.ok(http.MethodGet, "/api/v1/finance?status=PAID", nil, http.StatusOK, &entries)
	assert.Len(t, entries, 1)
}

func TestAPI_ProductImageUpload(t *testing.T) {
	env := newAPIEnv(t)
	product := env.fx.Product("9C2KC2200RR000002")

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var pngData bytes.Buffer
	require.NoError(t, png.Encode(&pngData, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="cover.png"`, handler.ImageFormField))
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(pngData.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID.String()+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	status, resp := env.serve(req)
	require.Equal(t, http.StatusOK, status, "%+v", resp.Error)

	var updated catalog.ProductResponse
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	require.NotNil(t, updated.ImageKey)
	assert.Contains(t, *updated.ImageKey, "products/"+product.ID.String()+"/")
	assert.NotEmpty(t, updated.ImageURL)

	// missing file field
	req = httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID.String()+"/image", nil)
	req.Header.Set("Authorization", "Bearer "+env.token)
	status, _ = env.serve(req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_AuthAndRoles(t *testing.T) {
	env := newAPIEnv(t)

	status, resp := env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)

	status, resp = env.do(http.MethodGet, "/api/v1/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)

	var staff identity.UserResponse
	env.ok(http.MethodPost, "/api/v1/users", map[string]string{
		"name": "Vendedor", "email": "vendas@wimotos.test", "password": "vendas-123",
	}, http.StatusCreated, &staff)
	assert.Equal(t, "STAFF", staff.Role)
	env.fails(http.MethodPost, "/api/v1/users", map[string]string{
		"name": "Vendedor", "email": "VENDAS@wimotos.test", "password": "vendas-123",
	}, http.StatusConflict, "")

	staffToken := env.login("vendas@wimotos.test", "vendas-123")
	status, resp = env.do(http.MethodPost, "/api/v1/users", staffToken, map[string]string{
		"name": "Outro", "email": "outro@wimotos.test", "password": "outro-123",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	status, _ = env.do(http.MethodGet, "/api/v1/users", staffToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_RequestErrors(t *testing.T) {
	env := newAPIEnv(t)

	env.fails(http.MethodGet, "/api/v1/promissories/not-a-uuid", nil, http.StatusBadRequest, "VALIDATION_ERROR")
	env.fails(http.MethodGet, "/api/v1/clients/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound, "NOT_FOUND")
	env.fails(http.MethodPost, "/api/v1/clients", map[string]any{"name": "X"}, http.StatusBadRequest, "VALIDATION_ERROR")
	env.fails(http.MethodGet, "/api/v1/finance?limit=1000", nil, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAPI_Health(t *testing.T) {
	env := newAPIEnv(t)

	status, resp := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	var health handler.HealthData
	require.NoError(t, json.Unmarshal(resp.Data, &health))
	assert.Equal(t, "ok", health.Database)
}
