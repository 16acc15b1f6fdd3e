// workers/wearable_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mkof14/dishcore-sub001/models"
	"github.com/mkof14/dishcore-sub001/services"
	"github.com/mkof14/dishcore-sub001/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WearableSyncClient polls the wearable-integration service for newly linked
// devices and mirrors them locally.
type WearableSyncClient struct {
	BaseURL     string
	Token       string
	DB          *gorm.DB
	Progression *services.ProgressionService
}

func NewWearableSyncClient(db *gorm.DB, progression *services.ProgressionService) *WearableSyncClient {
	baseURL := os.Getenv("WEARABLE_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("WEARABLE_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("DIET_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("DIET_SERVICE_TOKEN environment variable is required for wearable sync")
	}

	return &WearableSyncClient{
		BaseURL:     baseURL,
		Token:       token,
		DB:          db,
		Progression: progression,
	}
}

// remoteWearableLink matches the integration service response shape.
type remoteWearableLink struct {
	UserID      string     `json:"user_id"`
	Provider    string     `json:"provider"`
	ConnectedAt *time.Time `json:"connected_at"`
}

func (c *WearableSyncClient) GetChangedLinks(ctx context.Context, since time.Time) ([]remoteWearableLink, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/wearables", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call wearable service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("wearable service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Links []remoteWearableLink `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode wearable service response: %w", err)
	}
	return response.Links, nil
}

// PollWearables mirrors link changes and fires the wearable_connected award
// once per user, the first time a connected link lands.
func PollWearables(ctx context.Context, client *WearableSyncClient, pollInterval time.Duration) {
	log.Println("Starting wearable polling (DB-backed)...")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Wearable polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			links, err := client.GetChangedLinks(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling wearables: %v", err)
				continue
			}
			if len(links) == 0 {
				continue
			}

			var failed bool
			for _, remote := range links {
				if err := client.upsertLink(remote); err != nil {
					log.Printf("❌ Failed to upsert wearable link for %s: %v", remote.UserID, err)
					failed = true
				}
			}
			if failed {
				// Do NOT advance lastSyncTime — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Processed %d wearable link change(s).", len(links))
		}
	}
}

func (c *WearableSyncClient) upsertLink(remote remoteWearableLink) error {
	link := models.WearableLink{
		ID:             uuid.NewString(),
		ExternalUserID: remote.UserID,
		Provider:       remote.Provider,
		ConnectedAt:    remote.ConnectedAt,
	}
	if err := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "connected_at"}),
	}).Create(&link).Error; err != nil {
		return err
	}

	if remote.ConnectedAt == nil {
		return nil
	}

	// Award once per user. The Awarded flag is our own bookkeeping, so read
	// back the row the upsert left behind.
	var stored models.WearableLink
	if err := c.DB.Where("external_user_id = ?", remote.UserID).First(&stored).Error; err != nil {
		return err
	}
	if stored.Awarded {
		return nil
	}
	if _, err := c.Progression.AwardAction(remote.UserID, services.Action{Kind: services.ActionWearableConnected}); err != nil {
		return err
	}
	stored.Awarded = true
	return c.DB.Save(&stored).Error
}
