package events

import (
	"encoding/json"
	"fmt"
)

// SetRunStartedData sets the Data field with RunStartedData in a type-safe way.
func (e *Event) SetRunStartedData(data RunStartedData) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert RunStartedData: %w", err)
	}
	e.Data = dataMap
	return nil
}

// GetRunStartedData retrieves RunStartedData from the Data field.
func (e *Event) GetRunStartedData() (*RunStartedData, error) {
	var data RunStartedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse RunStartedData: %w", err)
	}
	return &data, nil
}

// SetTaskData sets the Data field with TaskData in a type-safe way.
func (e *Event) SetTaskData(data TaskData) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert TaskData: %w", err)
	}
	e.Data = dataMap
	return nil
}

// GetTaskData retrieves TaskData from the Data field.
func (e *Event) GetTaskData() (*TaskData, error) {
	var data TaskData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse TaskData: %w", err)
	}
	return &data, nil
}

// SetRunFinishedData sets the Data field with RunFinishedData in a type-safe way.
func (e *Event) SetRunFinishedData(data RunFinishedData) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert RunFinishedData: %w", err)
	}
	e.Data = dataMap
	return nil
}

// GetRunFinishedData retrieves RunFinishedData from the Data field.
func (e *Event) GetRunFinishedData() (*RunFinishedData, error) {
	var data RunFinishedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse RunFinishedData: %w", err)
	}
	return &data, nil
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(data interface{}) (map[string]interface{}, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// mapToStruct converts a map[string]interface{} to a struct using JSON unmarshaling.
func mapToStruct(dataMap map[string]interface{}, target interface{}) error {
	bytes, err := json.Marshal(dataMap)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, target)
}
