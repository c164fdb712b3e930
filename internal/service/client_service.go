package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/internal/cache"
	apperrors "portal/internal/errors"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/storage"
)

// ClientService manages the registry of allowed client emails.
type ClientService interface {
	AddClient(ctx context.Context, email string) (*model.AllowedClient, error)
	ListClients(ctx context.Context) ([]model.AllowedClient, error)
	UpdateClientEmail(ctx context.Context, id uuid.UUID, newEmail string) (*model.AllowedClient, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ToggleStatus(ctx context.Context, id uuid.UUID) (*model.AllowedClient, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	store      storage.BlobStore
	cache      *cache.Client
}

// NewClientService creates a new client registry service.
func NewClientService(clientRepo repository.ClientRepository, store storage.BlobStore, cache *cache.Client) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		store:      store,
		cache:      cache,
	}
}

// AddClient registers a new active client email.
func (s *clientService) AddClient(ctx context.Context, email string) (*model.AllowedClient, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}

	existing, err := s.clientRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrClientExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check client existence: %w", err)
	}

	client := &model.AllowedClient{
		Email:  email,
		Status: model.ClientStatusActive,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// ListClients returns all clients, most recently added first.
func (s *clientService) ListClients(ctx context.Context) ([]model.AllowedClient, error) {
	return s.clientRepo.List(ctx)
}

// UpdateClientEmail changes a client's email address.
func (s *clientService) UpdateClientEmail(ctx context.Context, id uuid.UUID, newEmail string) (*model.AllowedClient, error) {
	newEmail = normalizeEmail(newEmail)
	if newEmail == "" {
		return nil, apperrors.ErrEmailRequired
	}

	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	oldEmail := client.Email
	client.Email = newEmail
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.invalidate(ctx, oldEmail, newEmail)
	return client, nil
}

// DeleteClient removes the client and cascades to its projects, reports,
// comments, and stored blobs.
func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrClientNotFound
		}
		return fmt.Errorf("find client: %w", err)
	}

	storageKeys, err := s.clientRepo.DeleteCascade(ctx, client)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	// Rows are gone; blob cleanup is best effort.
	for _, key := range storageKeys {
		if err := s.store.Remove(key); err != nil {
			log.Printf("cleanup blob %s: %v", key, err)
		}
	}

	s.invalidate(ctx, client.Email)
	return nil
}

// ToggleStatus flips a client between active and inactive.
func (s *clientService) ToggleStatus(ctx context.Context, id uuid.UUID) (*model.AllowedClient, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	client.Status = client.Status.Toggle()
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.invalidate(ctx, client.Email)
	return client, nil
}

func (s *clientService) invalidate(ctx context.Context, emails ...string) {
	for _, email := range emails {
		_ = s.cache.Delete(ctx, clientCacheKey(email))
	}
}
