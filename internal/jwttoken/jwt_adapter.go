package jwttoken

import "multigremial/internal/platform/middleware"

// ServiceAdapter bridges the token service to the auth middleware contract.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) ValidateToken(tokenString string) (*middleware.AdminClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.AdminClaims{
		AdminID: claims.AdminID,
		Rol:     claims.Rol,
	}, nil
}
