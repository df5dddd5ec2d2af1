// Package bsonjson converts between the JSON form of payloads and BSON
// documents, so Mongo documents keep the same field names as the API.
package bsonjson

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FromValue encodes v as JSON and parses it into an ordered BSON document.
func FromValue(v any) (bson.D, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return FromJSON(raw)
}

// FromJSON parses a JSON object into an ordered BSON document.
func FromJSON(raw []byte) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, fmt.Errorf("parse extended json: %w", err)
	}
	return doc, nil
}

// ToJSON renders a BSON document (bson.D, bson.Raw) as relaxed JSON.
func ToJSON(doc any) ([]byte, error) {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("render extended json: %w", err)
	}
	return raw, nil
}

// Decode renders doc as JSON and unmarshals it into out.
func Decode(doc any, out any) error {
	raw, err := ToJSON(doc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
