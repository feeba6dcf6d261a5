// internal/utils/utils_test.go
package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("utils-test-secret")
	userID := uuid.New()

	token, err := GenerateJWT(userID, "owner@example.com", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)

	SetJWTSecret("rotated")
	_, err = ValidateJWT(token)
	assert.Error(t, err, "signature no longer matches")
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	SetJWTSecret("utils-test-secret")

	expired, err := GenerateJWT(uuid.New(), "", -1)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	assert.Error(t, err)

	bogus := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: "not-a-uuid"})
	signed, err := bogus.SignedString([]byte("utils-test-secret"))
	require.NoError(t, err)
	_, err = ValidateJWT(signed)
	assert.Error(t, err)
}

func TestFingerprintIsKeyOrderIndependent(t *testing.T) {
	a := map[string]interface{}{"monthlyRent": 4500, "tenantName": "Salma"}
	b := map[string]interface{}{"tenantName": "Salma", "monthlyRent": 4500}

	hashA, err := FingerprintDocument(a)
	require.NoError(t, err)
	hashB, err := FingerprintDocument(b)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
	assert.Len(t, hashA, 64)
	assert.True(t, VerifyFingerprint(b, hashA))

	b["monthlyRent"] = 5000
	assert.False(t, VerifyFingerprint(b, hashA))
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(query string) PaginationParams {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/contracts?"+query, nil)
		return GetPaginationParams(c)
	}

	assert.Equal(t, PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}, parse(""))
	assert.Equal(t, PaginationParams{Page: 3, Limit: 50, Sort: "status", Order: "asc"}, parse("page=3&limit=50&sort=status&order=asc"))
	assert.Equal(t, PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}, parse("page=-2&limit=500&order=sideways"))
}

func TestCreatePaginationResult(t *testing.T) {
	result := CreatePaginationResult([]int{1, 2}, 41, PaginationParams{Page: 2, Limit: 20})
	assert.Equal(t, 3, result.TotalPages)

	result = CreatePaginationResult(nil, 5, PaginationParams{})
	assert.Equal(t, 0, result.TotalPages)
}

type signRequest struct {
	Role      string   `validate:"required,oneof=owner tenant"`
	Signature string   `validate:"required,signature"`
	Fields    []string `validate:"required,min=1,dive,contract_field"`
}

func TestCustomValidators(t *testing.T) {
	ok := signRequest{Role: "owner", Signature: "data:image/png;base64,AA", Fields: []string{"monthly_rent"}}
	require.NoError(t, ValidateStruct(ok))

	bad := signRequest{Role: "admin", Signature: "   ", Fields: []string{"garden_size"}}
	errs := GetValidationErrors(ValidateStruct(bad))
	require.Len(t, errs, 3)

	tags := map[string]string{}
	for _, e := range errs {
		tags[e.Field] = e.Tag
	}
	assert.Equal(t, "oneof", tags["role"])
	assert.Equal(t, "signature", tags["signature"])
	assert.Equal(t, "contract_field", tags["fields[0]"])
}
