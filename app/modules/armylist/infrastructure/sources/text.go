package sources

import (
	"fmt"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
)

// TextAdapter reads plain extracted document text: one section, no participant ids.
type TextAdapter struct {
	name string
}

// NewTextAdapter creates a TextAdapter; name is recorded as the document source.
func NewTextAdapter(name string) *TextAdapter {
	return &TextAdapter{name: name}
}

func (a *TextAdapter) Parse(data []byte) (*armytypes.SourceDocument, error) {
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	text, err := DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return &armytypes.SourceDocument{
		Source:   a.name,
		Sections: []armytypes.Section{{Lines: NormalizeLines(text)}},
	}, nil
}
