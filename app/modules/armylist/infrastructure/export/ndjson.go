package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
)

// Sink receives finished army records.
type Sink interface {
	Export(ctx context.Context, armies []armytypes.ArmyEntry) error
}

// NDJSONWriter writes one JSON object per line, the format bulk loaders ingest.
type NDJSONWriter struct {
	w io.Writer
}

// NewNDJSONWriter wraps w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{w: w}
}

var _ Sink = (*NDJSONWriter)(nil)

func (n *NDJSONWriter) Export(ctx context.Context, armies []armytypes.ArmyEntry) error {
	buf := bufio.NewWriter(n.w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	for i := range armies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(&armies[i]); err != nil {
			return fmt.Errorf("encode army %q: %w", armies[i].ID, err)
		}
	}
	return buf.Flush()
}
