// Package output serializes record sets and pipeline results to JSON.
package output

import (
	"bytes"
	"encoding/json"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
)

// ToJSON serializes a RecordSet to a JSON array. The bytes come straight
// from RecordSet.MarshalJSON: json.Marshal would re-escape &, < and >.
func ToJSON(rs *models.RecordSet, pretty bool) ([]byte, error) {
	data, err := rs.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if !pretty {
		return data, nil
	}
	return indent(data)
}

// ResultToJSON serializes a PipelineResult.
func ResultToJSON(result models.PipelineResult, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}

func indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
