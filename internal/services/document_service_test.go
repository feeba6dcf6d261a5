// internal/services/document_service_test.go
package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/models"
)

func TestContractFilename(t *testing.T) {
	id := uuid.MustParse("7b0c1c4e-9f1a-4d7e-9d55-1c6f3f0d2a11")

	cases := map[string]string{
		"Villa / Route de l'Ourika": "contrat_" + id.String() + "_Villa_Route_de_l_Ourika.pdf",
		"":                          "contrat_" + id.String() + ".pdf",
		"***":                       "contrat_" + id.String() + ".pdf",
	}
	for title, want := range cases {
		contract := &models.Contract{ContractData: models.JSONB{"propertyTitle": title}}
		contract.ID = id
		assert.Equal(t, want, ContractFilename(contract), title)
	}
}

func TestDocumentServiceLocalFallback(t *testing.T) {
	service, err := NewDocumentService(&config.Config{Frontend: config.FrontendConfig{BaseURL: "http://app.test"}})
	require.NoError(t, err)

	contract := &models.Contract{}
	contract.ID = uuid.New()

	download, err := service.DownloadLink(context.Background(), contract)
	require.NoError(t, err)
	assert.Equal(t, "http://app.test/contracts/"+contract.ID.String()+"/pdf", download.DownloadURL)
	assert.Nil(t, download.ExpiresAt)
}

func TestDocumentServicePresignsS3Object(t *testing.T) {
	cfg := &config.Config{AWS: config.AWSConfig{
		Region:          "eu-west-3",
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		S3Bucket:        "rental-contracts",
		ContractPrefix:  "contracts",
		PresignTTL:      15 * time.Minute,
	}}
	service, err := NewDocumentService(cfg)
	require.NoError(t, err)

	contract := &models.Contract{ContractData: models.JSONB{"propertyTitle": "Studio"}}
	contract.ID = uuid.New()

	download, err := service.DownloadLink(context.Background(), contract)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(download.DownloadURL, "https://"))
	assert.Contains(t, download.DownloadURL, "rental-contracts")
	assert.Contains(t, download.DownloadURL, "contracts/"+contract.ID.String()+".pdf")
	assert.Contains(t, download.DownloadURL, "X-Amz-Signature=")
	assert.NotNil(t, download.ExpiresAt)

	contract.PdfURL = "/rendered/abc.pdf"
	assert.Equal(t, "rendered/abc.pdf", service.objectKey(contract))
	contract.PdfURL = "https://cdn.example.com/abc.pdf"
	assert.Equal(t, "contracts/"+contract.ID.String()+".pdf", service.objectKey(contract))
}
