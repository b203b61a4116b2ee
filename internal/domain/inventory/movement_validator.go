package inventory

import (
	"fmt"

	"github.com/dev-centersport/wms-sub000/internal/domain"
	"github.com/dev-centersport/wms-sub000/internal/domain/entity"
)

// Reglas violables; cada error de ValidateEndpoints envuelve domain.ErrInvalidMovement con una de ellas.
const (
	RuleUnknownType          = "tipo de movimiento desconocido"
	RuleNonPositiveQuantity  = "la cantidad debe ser un entero positivo"
	RuleEntryHasOrigin       = "los movimientos de entrada no deben indicar origen"
	RuleEntryNoDestination   = "los movimientos de entrada requieren destino"
	RuleExitNoOrigin         = "los movimientos de salida requieren origen"
	RuleExitHasDestination   = "los movimientos de salida no deben indicar destino"
	RuleTransferNoOrigin     = "los traslados requieren origen"
	RuleTransferNoDest       = "los traslados requieren destino"
	RuleTransferSameLocation = "el origen y el destino de un traslado deben ser distintos"
)

func invalid(rule string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidMovement, rule)
}

// ValidateBasics comprueba el tipo y la cantidad, válidos para cualquier movimiento.
func ValidateBasics(movementType string, quantity int64) error {
	switch movementType {
	case entity.MovementTypeENTRY, entity.MovementTypeEXIT, entity.MovementTypeTRANSFER:
	default:
		return invalid(RuleUnknownType)
	}
	if quantity <= 0 {
		return invalid(RuleNonPositiveQuantity)
	}
	return nil
}

// ValidateEndpoints aplica la combinación origen/destino exigida por el tipo:
//
//	ENTRY    origen ausente,  destino requerido
//	EXIT     origen requerido, destino ausente
//	TRANSFER ambos requeridos y distintos
func ValidateEndpoints(movementType, origin, destination string) error {
	switch movementType {
	case entity.MovementTypeENTRY:
		if origin != entity.NoLocation {
			return invalid(RuleEntryHasOrigin)
		}
		if destination == entity.NoLocation {
			return invalid(RuleEntryNoDestination)
		}
	case entity.MovementTypeEXIT:
		if origin == entity.NoLocation {
			return invalid(RuleExitNoOrigin)
		}
		if destination != entity.NoLocation {
			return invalid(RuleExitHasDestination)
		}
	case entity.MovementTypeTRANSFER:
		if origin == entity.NoLocation {
			return invalid(RuleTransferNoOrigin)
		}
		if destination == entity.NoLocation {
			return invalid(RuleTransferNoDest)
		}
		if origin == destination {
			return invalid(RuleTransferSameLocation)
		}
	default:
		return invalid(RuleUnknownType)
	}
	return nil
}

// ValidateMovement ejecuta ValidateBasics y luego ValidateEndpoints.
func ValidateMovement(movementType string, quantity int64, origin, destination string) error {
	if err := ValidateBasics(movementType, quantity); err != nil {
		return err
	}
	return ValidateEndpoints(movementType, origin, destination)
}
