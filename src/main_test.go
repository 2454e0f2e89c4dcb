package main

import (
	"encoding/json"
	"errors"
	"etix/src/common"
	"etix/src/db"
	"etix/src/lib"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock *sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", eventDateTimeValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
		v.RegisterValidation("ltdate", ltfield)
	}

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = &mock

	lib.NewPublisher(lib.NoopPublisher{})
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAuthRoutes() {
	router := setupRouter()
	guestAuthRoutes(router)

	s.Run("Should reject registration with missing fields", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"email": "someone@example.com",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		errMsg := gjson.Get(w.Body.String(), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})

	s.Run("Should reject registration with unknown role", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"name":     "Test User",
			"email":    "someone@example.com",
			"password": "password123",
			"role":     "superadmin",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject login without a password", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"email": "someone@example.com",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestAllocationFailureStatuses() {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"unknown ticket type", common.ErrTicketTypeNotFound, 400, "ticket type not found"},
		{"exhausted pool", common.ErrNoTicketAvailable, 400, "no ticket available"},
		{"rejected promo", &common.PromoError{Code: "EARLYBIRD", Reason: common.PromoBudgetExhausted}, 400, "invalid promo code"},
		{"persistence failure", errors.New("driver: bad connection"), 500, "something went wrong"},
	}
	for _, c := range cases {
		s.Run(c.name, func() {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			allocationFailure(ctx, "PurchaseTicket", c.err)

			assert.Equal(s.T(), c.status, w.Code)
			assert.Equal(s.T(), c.body, gjson.Get(w.Body.String(), "error").String())
		})
	}
}

func (s *TestSuite) TestTicketRoutesRequireAuth() {
	router := setupRouter()
	ticketRoutes(router)

	s.Run("Purchase without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{"ticketTypeId": 1}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/tickets/purchase", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Waitlist without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{"ticketTypeId": 1}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/tickets/waitlist", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Waitlist listing without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/waitlist", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})
}

func (s *TestSuite) TestOrganizerRoutesRequireAuth() {
	router := setupRouter()
	organizerEventRoutes(router)
	ticketTypeRoutes(router)
	promoRoutes(router)
	checkInRoutes(router)

	s.Run("Event creation without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/events", strings.NewReader("{}"))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Ticket type creation without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/ticket-types", strings.NewReader("{}"))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Promo creation without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/promos", strings.NewReader("{}"))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Check-in without a token is unauthorized", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/check-ins", strings.NewReader("{}"))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
