package inventory

import (
	"context"
	"strings"

	"github.com/dev-centersport/wms-sub000/internal/application/dto"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
// El tipo se normaliza a mayúsculas; el actor es el usuario autenticado.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	input := MovementInputDTO{
		UserID:                userID,
		ProductID:             strings.TrimSpace(in.ProductID),
		Type:                  strings.ToUpper(strings.TrimSpace(in.Type)),
		Quantity:              in.Quantity,
		OriginLocationID:      strings.TrimSpace(in.OriginLocationID),
		DestinationLocationID: strings.TrimSpace(in.DestinationLocationID),
		UnitCost:              in.UnitCost,
		Reference:             in.Reference,
	}
	mov, err := uc.RegisterMovement(ctx, input)
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(mov)
	return &out, nil
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                    m.ID,
		Type:                  m.Type,
		ProductID:             m.ProductID,
		OriginLocationID:      m.OriginLocationID,
		DestinationLocationID: m.DestinationLocationID,
		Quantity:              m.Quantity,
		UnitCost:              m.UnitCost,
		TotalCost:             m.TotalCost(),
		Reference:             m.Reference,
		CreatedBy:             m.CreatedBy,
		CreatedAt:             m.CreatedAt,
	}
}
