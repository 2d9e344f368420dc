package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

// ClientService manages customer records.
type ClientService struct {
	clients  repository.ClientRepository
	sales    repository.SaleRepository
	recorder ActivityRecorder
}

func NewClientService(clients repository.ClientRepository, sales repository.SaleRepository, recorder ActivityRecorder) *ClientService {
	return &ClientService{clients: clients, sales: sales, recorder: recorder}
}

func (s *ClientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	client := &model.Client{
		ExternalID:  ids.New(ids.PrefixClient),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Birthdate:   req.Birthdate,
		IsConsignor: req.IsConsignor,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	s.recorder.Record(req.CreatedBy, "clients", "create",
		fmt.Sprintf("Client %s (%s %s) added", client.ExternalID, client.FirstName, client.LastName),
		client.ExternalID)
	return toClientResponse(client), nil
}

func (s *ClientService) FindOne(ctx context.Context, extID string) (*dto.ClientResponse, error) {
	client, err := s.clients.FindByExtID(ctx, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, extID)
		}
		return nil, err
	}
	return toClientResponse(client), nil
}

func (s *ClientService) FindAll(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error) {
	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		data = append(data, *toClientResponse(&clients[i]))
	}
	return &dto.ClientListResponse{
		Data: data,
		Meta: pageMeta(filter.Page, filter.Limit, total),
	}, nil
}

func (s *ClientService) Update(ctx context.Context, extID string, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := s.clients.FindByExtID(ctx, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, extID)
		}
		return nil, err
	}

	client.FirstName = req.FirstName
	client.LastName = req.LastName
	client.Email = req.Email
	client.PhoneNumber = req.PhoneNumber
	client.Address = req.Address
	client.Birthdate = req.Birthdate
	client.IsConsignor = req.IsConsignor
	client.UpdatedBy = &req.UpdatedBy
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}

	s.recorder.Record(req.UpdatedBy, "clients", "update",
		fmt.Sprintf("Client %s updated", extID), extID)
	return toClientResponse(client), nil
}

// Remove soft-deletes a client. Refused when the client has sales history:
// past transactions must keep resolving to a customer.
func (s *ClientService) Remove(ctx context.Context, extID string, req dto.DeleteClientRequest) error {
	if _, err := s.clients.FindByExtID(ctx, extID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: client %s", ErrNotFound, extID)
		}
		return err
	}

	used, err := s.sales.HasClientTransactions(ctx, extID)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("%w: client %s has sales transactions and cannot be deleted", ErrConflict, extID)
	}

	if err := s.clients.SoftDelete(ctx, extID, req.DeletedBy); err != nil {
		return err
	}
	s.recorder.Record(req.DeletedBy, "clients", "delete",
		fmt.Sprintf("Client %s deleted", extID), extID)
	return nil
}

func toClientResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ExternalID:  c.ExternalID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		Birthdate:   c.Birthdate,
		IsConsignor: c.IsConsignor,
		CreatedAt:   c.CreatedAt,
		CreatedBy:   c.CreatedBy,
	}
}
