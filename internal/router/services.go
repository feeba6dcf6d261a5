// internal/router/services.go
package router

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/scheduler"
	"github.com/javajoker/rental-backend/internal/services"
)

// Services is the wired application graph shared by the HTTP server and the
// CLI commands.
type Services struct {
	Listings       *services.ListingService
	Documents      *services.DocumentService
	Notifications  *services.NotificationService
	Contracts      *services.ContractService
	ChangeRequests *services.ChangeRequestService
	Sweeper        *scheduler.Sweeper
}

func NewServices(db *gorm.DB, cfg *config.Config) (*Services, error) {
	documents, err := services.NewDocumentService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document service: %w", err)
	}

	listings := services.NewListingService(db)
	notifications := services.NewNotificationService(db, cfg, nil)
	contracts := services.NewContractService(db, listings, listings, documents, notifications, cfg.Contract)

	return &Services{
		Listings:       listings,
		Documents:      documents,
		Notifications:  notifications,
		Contracts:      contracts,
		ChangeRequests: services.NewChangeRequestService(db, listings, notifications, cfg.Contract),
		Sweeper:        scheduler.NewSweeper(contracts, cfg.Contract),
	}, nil
}

// Close stops the sweeper and drains queued notifications.
func (s *Services) Close() {
	s.Sweeper.Stop()
	s.Notifications.Close()
}
