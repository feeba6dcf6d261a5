// internal/router/router_test.go
package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/testutil"
	"github.com/javajoker/rental-backend/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type RouterSuite struct {
	suite.Suite
	db      *gorm.DB
	svc     *Services
	engine  *gin.Engine
	listing *testutil.Listing
	now     time.Time
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "router-test-secret"},
		Contract: config.ContractConfig{
			TenantSignWindow:   72 * time.Hour,
			ModificationWindow: 24 * time.Hour,
			SweepSchedule:      "@every 1h",
		},
		Notification: config.NotificationConfig{Workers: 1},
		Frontend:     config.FrontendConfig{BaseURL: "http://app.test"},
		RateLimit:    config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, VisitorTTL: time.Minute},
	}

	s.db = testutil.NewDB(s.T())
	svc, err := NewServices(s.db, cfg)
	s.Require().NoError(err)
	s.svc = svc

	s.now = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	s.svc.Contracts.WithClock(func() time.Time { return s.now })

	s.engine = Initialize(svc, cfg)
	s.listing = testutil.NewListing(s.T(), s.db)
}

func (s *RouterSuite) TearDownTest() {
	s.svc.Close()
}

func (s *RouterSuite) call(method, path string, userID uuid.UUID, body interface{}) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if userID != uuid.Nil {
		token, err := utils.GenerateJWT(userID, "", 1)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *RouterSuite) createContract() uuid.UUID {
	code, env := s.call(http.MethodPost, "/v1/contracts", s.listing.OwnerID, gin.H{"offer_id": s.listing.Offer.ID})
	s.Require().Equal(http.StatusCreated, code)

	var data struct {
		Contract models.Contract `json:"contract"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	return data.Contract.ID
}

func (s *RouterSuite) sign(contractID uuid.UUID, userID uuid.UUID, role string) (int, envelope) {
	return s.call(http.MethodPut, "/v1/contracts/"+contractID.String()+"/sign", userID,
		gin.H{"role": role, "signature": "data:image/png;base64,AAAA"})
}

func (s *RouterSuite) TestHealthIsPublic() {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, w.Code)

	code, env := s.call(http.MethodGet, "/v1/contracts", uuid.Nil, nil)
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("UNAUTHORIZED", env.Error.Code)
}

func (s *RouterSuite) TestSigningFlowOverHTTP() {
	contractID := s.createContract()
	path := "/v1/contracts/" + contractID.String()

	code, env := s.sign(contractID, s.listing.TenantID, "tenant")
	s.Equal(http.StatusConflict, code, "tenant cannot sign a draft")
	s.Equal("CONFLICT", env.Error.Code)

	code, _ = s.sign(contractID, s.listing.OwnerID, "owner")
	s.Require().Equal(http.StatusOK, code)

	code, _ = s.sign(contractID, s.listing.TenantID, "tenant")
	s.Require().Equal(http.StatusOK, code)

	code, env = s.call(http.MethodGet, path, s.listing.TenantID, nil)
	s.Require().Equal(http.StatusOK, code)
	var contract models.Contract
	s.Require().NoError(json.Unmarshal(env.Data, &contract))
	s.Equal(models.ContractStatusActive, contract.Status)

	code, _ = s.call(http.MethodGet, path+"/download", s.listing.OwnerID, nil)
	s.Equal(http.StatusOK, code)

	code, env = s.call(http.MethodGet, "/v1/contracts?role=owner", s.listing.OwnerID, nil)
	s.Equal(http.StatusOK, code)
	var listed []models.Contract
	s.Require().NoError(json.Unmarshal(env.Data, &listed))
	s.Len(listed, 1)
}

func (s *RouterSuite) TestErrorMapping() {
	contractID := s.createContract()
	path := "/v1/contracts/" + contractID.String()

	code, env := s.call(http.MethodPost, "/v1/contracts", s.listing.OwnerID, gin.H{})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("VALIDATION_ERROR", env.Error.Code)

	code, env = s.call(http.MethodGet, "/v1/contracts/not-a-uuid", s.listing.OwnerID, nil)
	s.Equal(http.StatusBadRequest, code)
	s.Equal("BAD_REQUEST", env.Error.Code)

	code, env = s.call(http.MethodGet, "/v1/contracts/"+uuid.NewString(), s.listing.OwnerID, nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("NOT_FOUND", env.Error.Code)

	code, env = s.call(http.MethodGet, path, uuid.New(), nil)
	s.Equal(http.StatusForbidden, code)
	s.Equal("FORBIDDEN", env.Error.Code)

	code, _ = s.sign(contractID, s.listing.OwnerID, "owner")
	s.Require().Equal(http.StatusOK, code)

	code, env = s.sign(contractID, s.listing.OwnerID, "owner")
	s.Equal(http.StatusConflict, code, "owner already signed")
	s.Equal("CONFLICT", env.Error.Code)

	s.now = s.now.Add(73 * time.Hour)
	code, env = s.sign(contractID, s.listing.TenantID, "tenant")
	s.Equal(http.StatusGone, code)
	s.Equal("EXPIRED", env.Error.Code)

	code, env = s.call(http.MethodPost, "/v1/contracts/expire-check", s.listing.OwnerID, nil)
	s.Equal(http.StatusOK, code)
	s.True(env.Success)

	var reloaded models.Contract
	s.Require().NoError(s.db.First(&reloaded, "id = ?", contractID).Error)
	s.Equal(models.ContractStatusExpired, reloaded.Status)
}

func (s *RouterSuite) TestModificationRequestOverHTTP() {
	contractID := s.createContract()
	s.sign(contractID, s.listing.OwnerID, "owner")
	s.sign(contractID, s.listing.TenantID, "tenant")
	path := "/v1/contracts/" + contractID.String()

	code, _ := s.call(http.MethodPost, path+"/request-modification", s.listing.TenantID, gin.H{
		"modification_reason": "Loyer renegocie",
		"fields_to_modify":    []string{"monthly_rent"},
	})
	s.Equal(http.StatusForbidden, code, "only the owner proposes changes")

	code, env := s.call(http.MethodPost, path+"/request-modification", s.listing.OwnerID, gin.H{
		"modification_reason": "Loyer renegocie",
		"fields_to_modify":    []string{"monthly_rent"},
	})
	s.Require().Equal(http.StatusCreated, code)
	var created struct {
		Request models.ChangeRequest `json:"request"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &created))

	code, _ = s.call(http.MethodPost, path+"/request-modification", s.listing.OwnerID, gin.H{
		"modification_reason": "x",
		"fields_to_modify":    []string{"garden_size"},
	})
	s.Equal(http.StatusBadRequest, code, "unknown contract field")

	code, env = s.call(http.MethodGet, path+"/pending-requests", s.listing.OwnerID, nil)
	s.Require().Equal(http.StatusOK, code)
	var pending []models.ChangeRequest
	s.Require().NoError(json.Unmarshal(env.Data, &pending))
	s.Len(pending, 1)

	respond := "/v1/change-requests/" + created.Request.ID.String() + "/respond"
	code, _ = s.call(http.MethodPut, respond, s.listing.OwnerID, gin.H{"response": "accepted"})
	s.Equal(http.StatusForbidden, code, "only the tenant answers a request")

	code, _ = s.call(http.MethodPut, respond, s.listing.TenantID, gin.H{"response": "maybe"})
	s.Equal(http.StatusBadRequest, code)

	code, env = s.call(http.MethodGet, "/v1/users/me/requests?role=tenant", s.listing.TenantID, nil)
	s.Require().Equal(http.StatusOK, code)
	var mine []models.ChangeRequest
	s.Require().NoError(json.Unmarshal(env.Data, &mine))
	s.Len(mine, 1)

	code, _ = s.call(http.MethodPut, respond, s.listing.TenantID, gin.H{"response": "rejected", "tenant_response": "Non merci"})
	s.Equal(http.StatusOK, code)

	code, env = s.call(http.MethodPut, respond, s.listing.TenantID, gin.H{"response": "rejected"})
	s.Equal(http.StatusConflict, code)
	s.Equal("CONFLICT", env.Error.Code)

	code, _ = s.call(http.MethodGet, "/v1/users/me/requests?role=admin", s.listing.TenantID, nil)
	s.Equal(http.StatusBadRequest, code)
}
