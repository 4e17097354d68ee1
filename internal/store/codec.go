package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvoronin/spendlog/internal/geo"
	"github.com/dvoronin/spendlog/internal/ledger"
)

// The persisted documents come from an untrusted blob store, so every
// collection is decoded by hand: parse into loosely-typed JSON, rehydrate
// any date field from its wire representation (older snapshots stored epoch
// milliseconds, current ones RFC 3339 strings), then check every field
// before anything is installed. A document either validates in full or is
// rejected in full.

// parseWireDate coerces a raw decoded JSON value into a timestamp.
func parseWireDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", d)
	case float64:
		return time.UnixMilli(int64(d)), nil
	default:
		return time.Time{}, fmt.Errorf("date is %T, want string or number", v)
	}
}

func getString(obj map[string]interface{}, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, v)
	}
	return s, nil
}

func getFloat(obj map[string]interface{}, key string) (float64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, want number", key, v)
	}
	return f, nil
}

// getNullableFloat requires the key to be present but accepts an explicit
// null, mirroring the nullable members of a geolocation fix.
func getNullableFloat(obj map[string]interface{}, key string) (*float64, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	if v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil, fmt.Errorf("field %q is %T, want number or null", key, v)
	}
	return &f, nil
}

func asArray(v interface{}) ([]interface{}, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("document is %T, want array", v)
	}
	return arr, nil
}

func decodeTransactionData(v interface{}) (ledger.TransactionData, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return ledger.TransactionData{}, fmt.Errorf("element is %T, want object", v)
	}
	rawDate, ok := obj["date"]
	if !ok {
		return ledger.TransactionData{}, fmt.Errorf("missing field %q", "date")
	}
	date, err := parseWireDate(rawDate)
	if err != nil {
		return ledger.TransactionData{}, err
	}
	amount, err := getFloat(obj, "amount")
	if err != nil {
		return ledger.TransactionData{}, err
	}
	category, err := getString(obj, "category")
	if err != nil {
		return ledger.TransactionData{}, err
	}
	info, err := getString(obj, "info")
	if err != nil {
		return ledger.TransactionData{}, err
	}
	return ledger.TransactionData{Date: date, Amount: amount, Category: category, Info: info}, nil
}

func decodeTransactionList(v interface{}) ([]ledger.TransactionData, error) {
	arr, err := asArray(v)
	if err != nil {
		return nil, err
	}
	result := make([]ledger.TransactionData, 0, len(arr))
	for i, item := range arr {
		d, err := decodeTransactionData(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		result = append(result, d)
	}
	return result, nil
}

func decodeTransactions(text string) ([]ledger.TransactionData, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decodeTransactions: %w", err)
	}
	result, err := decodeTransactionList(raw)
	if err != nil {
		return nil, fmt.Errorf("decodeTransactions: %w", err)
	}
	return result, nil
}

func decodeArchive(text string) ([][]ledger.TransactionData, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decodeArchive: %w", err)
	}
	arr, err := asArray(raw)
	if err != nil {
		return nil, fmt.Errorf("decodeArchive: %w", err)
	}
	result := make([][]ledger.TransactionData, 0, len(arr))
	for i, batch := range arr {
		list, err := decodeTransactionList(batch)
		if err != nil {
			return nil, fmt.Errorf("decodeArchive: batch %d: %w", i, err)
		}
		result = append(result, list)
	}
	return result, nil
}

func decodeCoordinates(v interface{}) (geo.Coordinates, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return geo.Coordinates{}, fmt.Errorf("coords is %T, want object", v)
	}
	var c geo.Coordinates
	var err error
	if c.Latitude, err = getFloat(obj, "latitude"); err != nil {
		return geo.Coordinates{}, err
	}
	if c.Longitude, err = getFloat(obj, "longitude"); err != nil {
		return geo.Coordinates{}, err
	}
	if c.Accuracy, err = getFloat(obj, "accuracy"); err != nil {
		return geo.Coordinates{}, err
	}
	if c.Altitude, err = getNullableFloat(obj, "altitude"); err != nil {
		return geo.Coordinates{}, err
	}
	if c.AltitudeAccuracy, err = getNullableFloat(obj, "altitudeAccuracy"); err != nil {
		return geo.Coordinates{}, err
	}
	if c.Heading, err = getNullableFloat(obj, "heading"); err != nil {
		return geo.Coordinates{}, err
	}
	if c.Speed, err = getNullableFloat(obj, "speed"); err != nil {
		return geo.Coordinates{}, err
	}
	return c, nil
}

func decodeLocations(text string) ([]geo.LocationData, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decodeLocations: %w", err)
	}
	arr, err := asArray(raw)
	if err != nil {
		return nil, fmt.Errorf("decodeLocations: %w", err)
	}
	result := make([]geo.LocationData, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("decodeLocations: element %d is %T, want object", i, item)
		}
		var d geo.LocationData
		if d.Coords, err = decodeCoordinates(obj["coords"]); err != nil {
			return nil, fmt.Errorf("decodeLocations: element %d: %w", i, err)
		}
		if d.Category, err = getString(obj, "category"); err != nil {
			return nil, fmt.Errorf("decodeLocations: element %d: %w", i, err)
		}
		if d.Info, err = getString(obj, "info"); err != nil {
			return nil, fmt.Errorf("decodeLocations: element %d: %w", i, err)
		}
		result = append(result, d)
	}
	return result, nil
}

func decodeCategories(text string) ([]string, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decodeCategories: %w", err)
	}
	arr, err := asArray(raw)
	if err != nil {
		return nil, fmt.Errorf("decodeCategories: %w", err)
	}
	result := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("decodeCategories: element %d is %T, want string", i, item)
		}
		result = append(result, s)
	}
	return result, nil
}

func decodeParameters(text string) (ledger.Parameters, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return ledger.Parameters{}, fmt.Errorf("decodeParameters: %w", err)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return ledger.Parameters{}, fmt.Errorf("decodeParameters: document is %T, want object", raw)
	}
	maxDistance, err := getFloat(obj, "maxDistance")
	if err != nil {
		return ledger.Parameters{}, fmt.Errorf("decodeParameters: %w", err)
	}
	return ledger.Parameters{MaxDistance: maxDistance}, nil
}
