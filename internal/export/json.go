package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter serializes the document model as indented JSON. It is the
// default sink and the interchange format for external pptx writers.
type JSONExporter struct{}

// Export implements Exporter.
func (JSONExporter) Export(doc *Document) ([]byte, string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode document: %w", err)
	}
	return data, "json", nil
}
