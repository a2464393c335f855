package utils

import (
	"encoding/json"
)

// Marshal generic struct to JSON
func MarshalToJSON[T any](input T) (string, error) {
	jsonData, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// Unmarshal JSON to generic struct
func UnmarshalFromJSON[T any](data []byte, output *T) error {
	return json.Unmarshal(data, output)
}

// ToFieldMap round-trips a struct through JSON into a generic field map.
// Document-store writes go through this so that decimal fields keep their
// string form and omitempty pointers drop unset keys.
func ToFieldMap[T any](input T) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(jsonData, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromFieldMap is the inverse of ToFieldMap.
func FromFieldMap[T any](data map[string]interface{}, output *T) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, output)
}
