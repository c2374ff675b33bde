package handler

import (
	"net/http"
	"testing"

	"github.com/simyalab/coatline/internal/shopfloor/repository"
	"github.com/simyalab/coatline/internal/shopfloor/service"
	"github.com/simyalab/coatline/internal/shopfloor/testutil"
)

func setupStockTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	h := NewStockHandler(service.NewStockService(repos.Stock, repos.Catalog))

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/stocks", h.List)
	api.GET("/stocks/alerts", h.Alerts)
	api.GET("/stocks/:chemicalId", h.Get)
	api.POST("/stocks/:chemicalId/consume", h.Consume)
	api.POST("/stocks/:chemicalId/replenish", h.Replenish)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func TestConsumeOverHTTP(t *testing.T) {
	env := setupStockTest(t)
	chem := testutil.SeedChemical(t, env.DB, "Zinc chloride", 100, 10)
	op := testutil.SeedOperator(t, env.DB, "Ada")
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stocks/"+chem.ID+"/consume", map[string]interface{}{
		"operator_id": op.ID,
		"quantity":    25,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("consume: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/stocks/"+chem.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("get stock: expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["on_hand"].(float64) != 75 {
		t.Fatalf("expected 75 on hand, got %v", data["on_hand"])
	}

	// Overdraw is a conflict, not a partial decrement.
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stocks/"+chem.ID+"/consume", map[string]interface{}{
		"quantity": 1000,
	}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("overdraw: expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReplenishAndAlertsOverHTTP(t *testing.T) {
	env := setupStockTest(t)
	chem := testutil.SeedChemical(t, env.DB, "Brightener", 2, 10)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/stocks/alerts", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("alerts: expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(items))
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/stocks/"+chem.ID+"/replenish", map[string]interface{}{
		"quantity":  50,
		"unit_cost": 3.2,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("replenish: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/stocks/alerts", nil, token)
	resp = testutil.ParseResponse(w)
	items = resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 0 {
		t.Fatalf("expected no alerts after replenish, got %d", len(items))
	}
}
