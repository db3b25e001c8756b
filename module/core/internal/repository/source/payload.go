package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kasunhdu/elephant-tracker-wildlife/module/core/domain"
)

// DecodeSnapshot parses the movement store wire form: a JSON object keyed by
// string-encoded timestamps whose values carry "latitude" and "longitude".
// Member order is kept. Members with missing or unparsable fields are kept as
// records with nil coordinates so reduction can discard them; only a payload
// that is not a JSON object is an error. null decodes to an empty snapshot.
func DecodeSnapshot(entityID string, payload []byte) (domain.Snapshot, error) {
	snap := domain.Snapshot{EntityID: entityID}

	dec := json.NewDecoder(bytes.NewReader(payload))
	tok, err := dec.Token()
	if err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	if tok == nil {
		return snap, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return snap, fmt.Errorf("decode snapshot: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return snap, fmt.Errorf("decode snapshot key: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return snap, fmt.Errorf("decode snapshot record %q: %w", key, err)
		}
		snap.Records = append(snap.Records, decodeRecord(key, raw))
	}

	if _, err := dec.Token(); err != nil {
		return snap, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func decodeRecord(key string, raw json.RawMessage) domain.PositionRecord {
	rec := domain.PositionRecord{Key: key}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rec
	}
	rec.Latitude = decodeFloat(fields["latitude"])
	rec.Longitude = decodeFloat(fields["longitude"])
	return rec
}

func decodeFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

type wireRecord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EncodeSnapshot writes positions in the movement store wire form, in the
// given order.
func EncodeSnapshot(positions []domain.Position) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range positions {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.FormatInt(p.Timestamp, 10)))
		buf.WriteByte(':')
		body, err := json.Marshal(wireRecord{Latitude: p.Lat, Longitude: p.Lon})
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", p.Timestamp, err)
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
