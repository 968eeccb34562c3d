package sources

import (
	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
)

// Adapter translates one source format into a SourceDocument.
type Adapter interface {
	Parse(data []byte) (*armytypes.SourceDocument, error)
}

// AdapterFactory picks the adapter for a file.
type AdapterFactory interface {
	GetAdapter(filename string, data []byte) (Adapter, error)
}
