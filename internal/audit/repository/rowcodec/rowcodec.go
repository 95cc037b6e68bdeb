// Package rowcodec converts the JSON and binary columns shared by the SQL event repositories.
package rowcodec

import (
	"encoding/json"

	auditDomain "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/audit/domain"
	apperrors "github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/errors"
)

// Row holds the nullable columns of an audit_events row.
type Row struct {
	Before    []byte
	After     []byte
	Metadata  []byte
	Signature []byte
}

// Encode marshals the event payloads. Empty maps and signatures become NULL.
func Encode(event *auditDomain.Event) (*Row, error) {
	var row Row
	var err error

	if row.Before, err = marshalMap(event.Before); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event before state")
	}
	if row.After, err = marshalMap(event.After); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event after state")
	}
	if row.Metadata, err = marshalMap(event.Metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit event metadata")
	}
	if len(event.Signature) > 0 {
		row.Signature = event.Signature
	}
	return &row, nil
}

// Decode fills the event payloads from a scanned row. NULL stays nil.
func Decode(row *Row, event *auditDomain.Event) error {
	if err := unmarshalMap(row.Before, &event.Before); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal audit event before state")
	}
	if err := unmarshalMap(row.After, &event.After); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal audit event after state")
	}
	if err := unmarshalMap(row.Metadata, &event.Metadata); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal audit event metadata")
	}
	if len(row.Signature) > 0 {
		event.Signature = row.Signature
	}
	return nil
}

func marshalMap(data map[string]any) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return json.Marshal(data)
}

func unmarshalMap(raw []byte, target *map[string]any) error {
	if raw == nil {
		return nil
	}
	return json.Unmarshal(raw, target)
}
