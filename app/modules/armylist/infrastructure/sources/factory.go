package sources

import (
	"bytes"
	"fmt"
	"strings"
)

// Factory creates the appropriate adapter based on file extension
type Factory struct {
	dates *DateParser
}

// NewFactory creates a new adapter factory. A nil DateParser uses the system clock.
func NewFactory(dates *DateParser) *Factory {
	if dates == nil {
		dates = NewDateParser(nil, nil)
	}
	return &Factory{dates: dates}
}

var _ AdapterFactory = (*Factory)(nil)

// GetAdapter returns the adapter for filename. JSON files are sniffed: a platform
// export carries a "participants" array, anything else is treated as a form submission.
func (f *Factory) GetAdapter(filename string, data []byte) (Adapter, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case "", ".txt", ".text":
		return NewTextAdapter(filename), nil
	case ".json":
		if isPlatformExport(data) {
			return NewPlatformAdapter(f.dates), nil
		}
		return NewFormAdapter(FormatJSON, f.dates), nil
	case ".yaml", ".yml":
		return NewFormAdapter(FormatYAML, f.dates), nil
	case ".csv", ".tsv":
		return NewResultsSheetAdapter(SheetCSV), nil
	case ".xlsx", ".xls":
		return NewResultsSheetAdapter(SheetXLSX), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
}

// getFileExtension extracts the file extension from a filename
func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 || strings.ContainsAny(filename[idx:], `/\`) {
		return ""
	}
	return filename[idx:]
}

func isPlatformExport(data []byte) bool {
	return bytes.Contains(data, []byte(`"participants"`))
}
