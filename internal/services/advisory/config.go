package advisory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agri-ai/portal/internal/model"
)

// LoadFields reads the field config JSON: a list of fields with their
// sensors embedded. Sensor FieldID is filled from the parent field.
func LoadFields(path string) (map[string]model.Field, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []model.Field
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	out := make(map[string]model.Field, len(list))
	for _, f := range list {
		if f.ID == "" {
			return nil, fmt.Errorf("field without id in %s", path)
		}
		for i := range f.Sensors {
			if f.Sensors[i].ID == "" {
				return nil, fmt.Errorf("sensor without id in field %s", f.ID)
			}
			f.Sensors[i].FieldID = f.ID
		}
		out[f.ID] = f
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no fields configured in %s", path)
	}
	return out, nil
}

// LoadPolicies reads the per-crop policy JSON keyed by crop name.
func LoadPolicies(path string) (map[string]model.CropPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []model.CropPolicy
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	out := make(map[string]model.CropPolicy, len(list))
	for _, p := range list {
		if p.Crop == "" {
			return nil, fmt.Errorf("policy without crop in %s", path)
		}
		if p.DailyAlertBudget <= 0 {
			p.DailyAlertBudget = 5
		}
		out[p.Crop] = p
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no policies configured in %s", path)
	}
	return out, nil
}
