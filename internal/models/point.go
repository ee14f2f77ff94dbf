package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Point is a canvas-local coordinate handed over by the input layer.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// To satisfy postgres jsonb data type
type Points []Point

func (p *Points) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, p)
}

func (p Points) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Clone returns a copy that shares no backing array with p.
func (p Points) Clone() Points {
	if p == nil {
		return nil
	}
	out := make(Points, len(p))
	copy(out, p)
	return out
}
