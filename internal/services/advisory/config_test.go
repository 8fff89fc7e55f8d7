package advisory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFields(t *testing.T) {
	path := writeTemp(t, "fields.json", `[
  {"id":"field1","crop_type":"paddy","district":"Ernakulam",
   "sensors":[{"id":"s1","kind":"soil","latitude":9.93,"longitude":76.26,"depth_cm":10}]}
]`)

	fields, err := LoadFields(path)
	require.NoError(t, err)
	require.Len(t, fields, 1)

	f := fields["field1"]
	assert.Equal(t, "paddy", f.CropType)
	require.Len(t, f.Sensors, 1)
	assert.Equal(t, "field1", f.Sensors[0].FieldID, "sensor inherits the field id")
	assert.Equal(t, 9.93, f.Sensors[0].Latitude)
}

func TestLoadFieldsRejectsMissingIDs(t *testing.T) {
	path := writeTemp(t, "fields.json", `[{"crop_type":"paddy"}]`)
	_, err := LoadFields(path)
	assert.Error(t, err)

	path = writeTemp(t, "fields2.json", `[{"id":"f1","sensors":[{"kind":"soil"}]}]`)
	_, err = LoadFields(path)
	assert.Error(t, err)

	path = writeTemp(t, "empty.json", `[]`)
	_, err = LoadFields(path)
	assert.Error(t, err)
}

func TestLoadPolicies(t *testing.T) {
	path := writeTemp(t, "policies.json", `[
  {"crop":"paddy","moisture_floor_pct":35,"temperature_ceil_c":38,
   "humidity_disease_min_pct":85,"humidity_disease_max_pct":95,"daily_alert_budget":6},
  {"crop":"banana","moisture_floor_pct":30,"temperature_ceil_c":36,
   "humidity_disease_min_pct":80,"humidity_disease_max_pct":92}
]`)

	policies, err := LoadPolicies(path)
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, 6.0, policies["paddy"].DailyAlertBudget)
	assert.Equal(t, 5.0, policies["banana"].DailyAlertBudget, "missing budget gets the default")
}

func TestLoadPoliciesRejectsMissingCrop(t *testing.T) {
	path := writeTemp(t, "policies.json", `[{"moisture_floor_pct":35}]`)
	_, err := LoadPolicies(path)
	assert.Error(t, err)
}
