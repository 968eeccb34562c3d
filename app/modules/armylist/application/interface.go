package armylistservice

import (
	"context"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
)

// Service defines the interface for the ArmyListService.
type Service interface {
	// Builds one army record per recognized block of the document's sections.
	BuildArmies(ctx context.Context, doc *armytypes.SourceDocument) (diagnostics.Outcome[armytypes.ArmyEntry], error)
}

var _ Service = (*ArmyListService)(nil)
