package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/BigazyGalym/Diplom/internal/handler/dto"
)

var openAPIPath = filepath.Join("..", "..", "docs", "api", "openapi.yaml")

// loadOpenAPI loads and validates the document and builds a router that
// matches any host.
func loadOpenAPI(t *testing.T) routers.Router {
	t.Helper()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(openAPIPath)
	if err != nil {
		t.Fatalf("load %s: %v", openAPIPath, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("openapi document invalid: %v", err)
	}

	doc.Servers = nil
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		t.Fatalf("build openapi router: %v", err)
	}
	return router
}

// conforms checks that rec is a documented response for method and path.
func conforms(t *testing.T, router routers.Router, method, path string, rec *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, "http://localhost"+path, nil)
	route, params, err := router.FindRoute(req)
	if err != nil {
		t.Fatalf("%s %s is not documented: %v", method, path, err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: params,
			Route:      route,
		},
		Status:  rec.Code,
		Header:  rec.Header(),
		Body:    io.NopCloser(strings.NewReader(rec.Body.String())),
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
		t.Errorf("%s %s -> %d does not match the document: %v\nbody: %s",
			method, path, rec.Code, err, rec.Body.String())
	}
}

func TestOpenAPI_DocumentIsValid(t *testing.T) {
	t.Parallel()
	loadOpenAPI(t)
}

func TestOpenAPI_ResponsesConform(t *testing.T) {
	t.Parallel()

	router := loadOpenAPI(t)
	api := newTestAPI(t)
	key, wallets := api.register(t, "contract@example.com")
	cash := wallets["Cash"].ID

	steps := []struct {
		method string
		path   string
		key    string
		body   any
		status int
	}{
		{http.MethodGet, "/", "", nil, http.StatusOK},
		{http.MethodGet, "/healthz", "", nil, http.StatusOK},
		{http.MethodGet, "/readyz", "", nil, http.StatusOK},
		{http.MethodGet, "/metrics", "", nil, http.StatusOK},
		{http.MethodPost, "/api/v1/register", "", dto.RegisterRequest{Email: "second@example.com"}, http.StatusCreated},
		{http.MethodPost, "/api/v1/register", "", dto.RegisterRequest{Email: "contract@example.com"}, http.StatusConflict},
		{http.MethodPost, "/api/v1/register", "", `{"email":"nope"}`, http.StatusBadRequest},
		{http.MethodGet, "/api/v1/wallets", "", nil, http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/wallets", key, `{"name":"Savings","balance":"250.5"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/wallets", key, nil, http.StatusOK},
		{http.MethodPost, "/api/v1/transactions", key, `{"wallet":"` + cash + `","type":"income","amount":1000}`, http.StatusCreated},
		{http.MethodPost, "/api/v1/transactions", key, `{"wallet":"` + cash + `","type":"expense","category":"Food","amount":"42.10"}`, http.StatusCreated},
		{http.MethodPost, "/api/v1/transactions", key, `{"wallet":"missing","type":"expense","amount":"1"}`, http.StatusNotFound},
		{http.MethodPost, "/api/v1/transactions", key, `{"wallet":"` + cash + `","type":"gift","amount":"0"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/budgets", key, `{"category":"Food","limit":"300"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/budgets", key, nil, http.StatusOK},
		{http.MethodPost, "/api/v1/debts", key, `{"type":"lent","counterparty":"Dana","amount":"75","due_date":"2026-11-01"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/debts", key, nil, http.StatusOK},
		{http.MethodGet, "/api/v1/finance", key, nil, http.StatusOK},
		{http.MethodGet, "/api/v1/user", key, nil, http.StatusOK},
		{http.MethodPatch, "/api/v1/user", key, `{"last_name":"Serik"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/api-keys", key, nil, http.StatusOK},
		{http.MethodPost, "/api/v1/api-keys", key, `{"name":"ci","scopes":["read"]}`, http.StatusCreated},
		{http.MethodDelete, "/api/v1/api-keys/unknown", key, nil, http.StatusNotFound},
		{http.MethodPost, "/api/v1/logout", key, nil, http.StatusOK},
		{http.MethodGet, "/api/v1/finance", key, nil, http.StatusUnauthorized},
	}

	// Steps share one user and run in order.
	for _, step := range steps {
		rec := api.do(t, step.method, step.path, step.key, step.body)
		expectStatus(t, rec, step.status)
		conforms(t, router, step.method, step.path, rec)
	}
}

func TestOpenAPI_ForbiddenAndRevokeConform(t *testing.T) {
	t.Parallel()

	router := loadOpenAPI(t)
	api := newTestAPI(t)
	key, _ := api.register(t, "scopes@example.com")

	rec := api.do(t, http.MethodPost, "/api/v1/api-keys", key, `{"scopes":["read"]}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[dto.CreatedAPIKeyResponse](t, rec)

	rec = api.do(t, http.MethodPost, "/api/v1/wallets", created.Key, `{"name":"Nope"}`)
	expectStatus(t, rec, http.StatusForbidden)
	conforms(t, router, http.MethodPost, "/api/v1/wallets", rec)

	path := "/api/v1/api-keys/" + created.ID
	rec = api.do(t, http.MethodDelete, path, key, nil)
	expectStatus(t, rec, http.StatusNoContent)
	conforms(t, router, http.MethodDelete, path, rec)
}
