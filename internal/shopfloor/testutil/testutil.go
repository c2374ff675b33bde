package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/simyalab/coatline/internal/config"
	"github.com/simyalab/coatline/internal/middleware"
	"github.com/simyalab/coatline/internal/shopfloor/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_coatline"
	JWTSecret  = "coatline-test-jwt-secret"
)

// TestEnv holds test environment resources.
type TestEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	T      *testing.T
}

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens a connection scoped to a fresh schema. Each test
// gets its own schema, dropped on cleanup, so tests can run in
// parallel against one database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := config.GetEnvOrDefault("DB_HOST", "127.0.0.1")
	port := config.GetEnvOrDefault("DB_PORT", "5432")
	user := config.GetEnvOrDefault("DB_USER", "coatline")
	password := config.GetEnvOrDefault("DB_PASSWORD", "coatline123")
	dbname := config.GetEnvOrDefault("DB_NAME", "coatline")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	// search_path in the DSN so every pooled connection uses the schema
	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.Customer{},
		&entity.Order{},
		&entity.OrderLine{},
		&entity.StageRecord{},
		&entity.LossRecord{},
		&entity.OutgoingQCRecord{},
		&entity.Process{},
		&entity.BathStep{},
		&entity.ProductionPlan{},
		&entity.PlanStep{},
		&entity.Movement{},
		&entity.Chemical{},
		&entity.ChemicalStock{},
		&entity.StockReceipt{},
		&entity.StockConsumption{},
		&entity.Shipment{},
		&entity.Return{},
		&entity.User{},
		&entity.Operator{},
		&entity.Notice{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router.
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group with JWT auth middleware for testing.
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid JWT token for testing.
func GenerateTestToken(userID, name, role string) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"iss":  "coatline",
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
		"jti":  fmt.Sprintf("test-jti-%d", now.UnixNano()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DefaultTestToken returns a token for a default admin test user.
func DefaultTestToken() string {
	return GenerateTestToken("test-user-001", "Test Admin", entity.RoleAdmin)
}

// DoRequest executes an HTTP request against the test router.
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body into a map.
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedLine creates a customer, order and one line ready for intake
// stages.
func SeedLine(t *testing.T, db *gorm.DB, qty float64) *entity.OrderLine {
	t.Helper()

	customer := &entity.Customer{
		ID:   fmt.Sprintf("cust-%d", time.Now().UnixNano()),
		Name: fmt.Sprintf("Customer %d", time.Now().UnixNano()),
		Code: fmt.Sprintf("C-%d", time.Now().UnixNano()%1000000),
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}

	order := &entity.Order{
		ID:         fmt.Sprintf("order-%d", time.Now().UnixNano()),
		Code:       fmt.Sprintf("ORD-%d", time.Now().UnixNano()),
		CustomerID: customer.ID,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}

	line := &entity.OrderLine{
		ID:         fmt.Sprintf("line-%d", time.Now().UnixNano()),
		OrderID:    order.ID,
		PartName:   "Bracket",
		Quantity:   qty,
		DrawingRef: "drawings/bracket.pdf",
	}
	if err := db.Create(line).Error; err != nil {
		t.Fatalf("Failed to seed order line: %v", err)
	}
	return line
}

// SeedOperator creates an active operator.
func SeedOperator(t *testing.T, db *gorm.DB, name string) *entity.Operator {
	t.Helper()
	op := &entity.Operator{
		ID:       fmt.Sprintf("op-%d", time.Now().UnixNano()),
		FullName: name,
		Status:   "active",
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("Failed to seed operator: %v", err)
	}
	return op
}

// SeedProcess creates a process and a bath step with a target range.
func SeedProcess(t *testing.T, db *gorm.DB, name string, minMin, maxMin int) (*entity.Process, *entity.BathStep) {
	t.Helper()
	proc := &entity.Process{
		ID:   fmt.Sprintf("proc-%d", time.Now().UnixNano()),
		Name: name,
	}
	if err := db.Create(proc).Error; err != nil {
		t.Fatalf("Failed to seed process: %v", err)
	}
	bath := &entity.BathStep{
		ID:         fmt.Sprintf("bath-%d", time.Now().UnixNano()),
		Name:       name + " bath",
		MinMinutes: &minMin,
		MaxMinutes: &maxMin,
	}
	if err := db.Create(bath).Error; err != nil {
		t.Fatalf("Failed to seed bath step: %v", err)
	}
	return proc, bath
}

// SeedChemical creates a chemical with an initial stock level.
func SeedChemical(t *testing.T, db *gorm.DB, name string, onHand, threshold float64) *entity.Chemical {
	t.Helper()
	chem := &entity.Chemical{
		ID:           fmt.Sprintf("chem-%d", time.Now().UnixNano()),
		Name:         fmt.Sprintf("%s %d", name, time.Now().UnixNano()),
		Unit:         "L",
		MinThreshold: threshold,
	}
	if err := db.Create(chem).Error; err != nil {
		t.Fatalf("Failed to seed chemical: %v", err)
	}
	stock := &entity.ChemicalStock{
		ID:         fmt.Sprintf("stock-%d", time.Now().UnixNano()),
		ChemicalID: chem.ID,
		OnHand:     onHand,
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("Failed to seed chemical stock: %v", err)
	}
	return chem
}

// SetupTestRedis opens a client on a dedicated test database and flushes
// it, so cached state never leaks between runs.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	loadEnv()

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s",
			config.GetEnvOrDefault("REDIS_HOST", "127.0.0.1"),
			config.GetEnvOrDefault("REDIS_PORT", "6379")),
		DB: 15,
	})
	rdb.FlushDB(context.Background())
	t.Cleanup(func() { rdb.Close() })
	return rdb
}
