// internal/services/directory.go
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/centmarde/Eco-Barangay/internal/models"
)

// UserDirectory is the slice of the user store the directory needs.
type UserDirectory interface {
	FindEntries(ctx context.Context, ids []primitive.ObjectID) ([]models.DirectoryEntry, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.DirectoryEntry, error)
	ListActive(ctx context.Context) ([]models.DirectoryEntry, error)
}

// DirectoryService resolves user ids to display identities. Local accounts
// are authoritative; ids without a local record fall back to the external
// identity provider's admin API when one is configured.
type DirectoryService struct {
	users  UserDirectory
	client *resty.Client
	apiKey string
	log    *logrus.Logger
}

func NewDirectoryService(users UserDirectory, providerURL, providerKey string, log *logrus.Logger) *DirectoryService {
	var client *resty.Client
	if providerURL != "" {
		client = resty.New().
			SetBaseURL(providerURL).
			SetTimeout(5 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(300 * time.Millisecond)
	}
	return &DirectoryService{
		users:  users,
		client: client,
		apiKey: providerKey,
		log:    log,
	}
}

type providerUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

// Resolve returns the directory entry for one user id, or nil when the id
// is unknown both locally and upstream. Absence is not an error.
func (s *DirectoryService) Resolve(ctx context.Context, id primitive.ObjectID) (*models.DirectoryEntry, error) {
	entries, err := s.users.FindEntries(ctx, []primitive.ObjectID{id})
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		entry := entries[0]
		return &entry, nil
	}
	return s.resolveExternal(ctx, id)
}

// ResolveMany batch-resolves ids for list enrichment. Unknown ids are
// simply absent from the result map.
func (s *DirectoryService) ResolveMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.DirectoryEntry, error) {
	result := make(map[primitive.ObjectID]models.DirectoryEntry, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	seen := make(map[primitive.ObjectID]bool, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	entries, err := s.users.FindEntries(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		result[entry.ID] = entry
	}

	for _, id := range unique {
		if _, ok := result[id]; ok {
			continue
		}
		entry, err := s.resolveExternal(ctx, id)
		if err != nil || entry == nil {
			continue
		}
		result[id] = *entry
	}
	return result, nil
}

// ListByRole lists active directory entries holding the given role.
func (s *DirectoryService) ListByRole(ctx context.Context, role models.UserRole) ([]models.DirectoryEntry, error) {
	return s.users.ListByRole(ctx, role)
}

// ListActive lists every non-blocked directory entry.
func (s *DirectoryService) ListActive(ctx context.Context) ([]models.DirectoryEntry, error) {
	return s.users.ListActive(ctx)
}

func (s *DirectoryService) resolveExternal(ctx context.Context, id primitive.ObjectID) (*models.DirectoryEntry, error) {
	if s.client == nil {
		return nil, nil
	}

	var user providerUser
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("apikey", s.apiKey).
		SetAuthToken(s.apiKey).
		SetResult(&user).
		Get(fmt.Sprintf("/admin/users/%s", id.Hex()))
	if err != nil {
		s.log.WithError(err).WithField("user_id", id.Hex()).Warn("Identity provider lookup failed")
		return nil, nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		s.log.WithFields(logrus.Fields{
			"user_id": id.Hex(),
			"status":  resp.StatusCode(),
		}).Warn("Identity provider returned error")
		return nil, nil
	}
	if user.Email == "" {
		return nil, nil
	}

	name := user.Metadata.FullName
	if name == "" {
		name = user.Email
	}
	return &models.DirectoryEntry{
		ID:          id,
		Email:       user.Email,
		DisplayName: name,
	}, nil
}
