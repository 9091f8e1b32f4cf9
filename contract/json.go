package contract

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var operationJSON = []byte(`{"kind":"operation"}`)

// MarshalJSON implements custom JSON marshaling for Operation
func (o Operation) MarshalJSON() ([]byte, error) {
	result := operationJSON

	var err error
	result, err = sjson.SetBytes(result, "name", o.Name)
	if err != nil {
		return nil, err
	}

	if o.Description != "" {
		result, err = sjson.SetBytes(result, "description", o.Description)
		if err != nil {
			return nil, err
		}
	}

	if o.Topic != "" {
		result, err = sjson.SetBytes(result, "topic", o.Topic)
		if err != nil {
			return nil, err
		}
	}

	if len(o.Publishes) > 0 {
		result, err = sjson.SetBytes(result, "publishes", o.Publishes)
		if err != nil {
			return nil, err
		}
	}

	if o.Input != nil {
		inputBytes, err := json.Marshal(o.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input schema: %w", err)
		}
		result, err = sjson.SetRawBytes(result, "input", inputBytes)
		if err != nil {
			return nil, err
		}
	}

	if o.Output != nil {
		outputBytes, err := json.Marshal(o.Output)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal output schema: %w", err)
		}
		result, err = sjson.SetRawBytes(result, "output", outputBytes)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Operation
func (o *Operation) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	kind := gjson.GetBytes(data, "kind")
	if !kind.Exists() || kind.String() != "operation" {
		return fmt.Errorf("missing or invalid kind, expected 'operation'")
	}

	name := gjson.GetBytes(data, "name")
	if !name.Exists() {
		return fmt.Errorf("missing required field 'name'")
	}
	o.Name = name.String()

	if description := gjson.GetBytes(data, "description"); description.Exists() {
		o.Description = description.String()
	}

	if topic := gjson.GetBytes(data, "topic"); topic.Exists() {
		o.Topic = topic.String()
	}

	if publishes := gjson.GetBytes(data, "publishes"); publishes.Exists() {
		for _, p := range publishes.Array() {
			o.Publishes = append(o.Publishes, p.String())
		}
	}

	if input := gjson.GetBytes(data, "input"); input.Exists() {
		o.Input = &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(input.Raw), o.Input); err != nil {
			return fmt.Errorf("invalid input schema: %w", err)
		}
	}

	if output := gjson.GetBytes(data, "output"); output.Exists() {
		o.Output = &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(output.Raw), o.Output); err != nil {
			return fmt.Errorf("invalid output schema: %w", err)
		}
	}

	return nil
}
