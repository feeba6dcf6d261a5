// internal/services/document_service.go
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/models"
)

// DocumentProvider hands out download links for rendered contract PDFs.
type DocumentProvider interface {
	DownloadLink(ctx context.Context, contract *models.Contract) (*ContractDownload, error)
}

type ContractDownload struct {
	DownloadURL string     `json:"download_url"`
	Filename    string     `json:"filename"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// DocumentService presigns S3 URLs for contract PDFs. Without AWS
// credentials it links to the frontend renderer instead.
type DocumentService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewDocumentService(cfg *config.Config) (*DocumentService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &DocumentService{config: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &DocumentService{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

func (s *DocumentService) DownloadLink(ctx context.Context, contract *models.Contract) (*ContractDownload, error) {
	filename := ContractFilename(contract)

	if s.s3Client == nil {
		return &ContractDownload{
			DownloadURL: fmt.Sprintf("%s/contracts/%s/pdf", s.config.Frontend.BaseURL, contract.ID),
			Filename:    filename,
		}, nil
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket:                     aws.String(s.config.AWS.S3Bucket),
		Key:                        aws.String(s.objectKey(contract)),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
		ResponseContentType:        aws.String("application/pdf"),
	})
	req.SetContext(ctx)

	url, err := req.Presign(s.config.AWS.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign contract download: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.config.AWS.PresignTTL)
	return &ContractDownload{
		DownloadURL: url,
		Filename:    filename,
		ExpiresAt:   &expiresAt,
	}, nil
}

// objectKey prefers the key recorded on the contract by the renderer.
func (s *DocumentService) objectKey(contract *models.Contract) string {
	if contract.PdfURL != "" && !strings.Contains(contract.PdfURL, "://") {
		return strings.TrimPrefix(contract.PdfURL, "/")
	}
	return fmt.Sprintf("%s/%s.pdf", s.config.AWS.ContractPrefix, contract.ID)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ContractFilename builds contrat_<id>_<property title>.pdf.
func ContractFilename(contract *models.Contract) string {
	title, _ := contract.ContractData["propertyTitle"].(string)
	title = strings.Trim(unsafeFilenameChars.ReplaceAllString(title, "_"), "_")
	if title == "" {
		return fmt.Sprintf("contrat_%s.pdf", contract.ID)
	}
	return fmt.Sprintf("contrat_%s_%s.pdf", contract.ID, title)
}
