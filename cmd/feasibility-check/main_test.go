package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feasibleYAML = `timing:
  activeDays: [Sunday, monday, tuesday, wednesday, thursday]
  periodsPerDay: 7
classCount: 1
subjects:
  - id: math
    name: Mathematics
    periodsPerClass: 4
teachers:
  - id: t-1
    name: Budi
    quotaLimit: 24
settings:
  substitution:
    method: auto
    maxTotalQuota: 24
    maxDailyTotal: 5
`

const blockedJSON = `{
  "timing": {"activeDays": ["sunday", "monday", "tuesday", "wednesday", "thursday"], "periodsPerDay": 7},
  "classCount": 1,
  "subjects": [{"id": "math", "name": "Mathematics", "periodsPerClass": 4}],
  "teachers": [{"id": "t-over", "name": "Sari", "quotaLimit": 40}],
  "settings": {"substitution": {"method": "auto", "maxTotalQuota": 24, "maxDailyTotal": 5}}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateFeasibleYAML(t *testing.T) {
	path := writeFile(t, "snapshot.yaml", feasibleYAML)

	out, err := execute(t, "validate", "--snapshot", path)

	require.NoError(t, err)
	assert.Contains(t, out, "all-clear")
	assert.Contains(t, out, "0 error(s), 0 warning(s), 1 info")
}

func TestValidateBlockedJSON(t *testing.T) {
	path := writeFile(t, "snapshot.json", blockedJSON)

	out, err := execute(t, "validate", "--snapshot", path, "--format", "json")

	require.ErrorIs(t, err, errBlocked)
	var decoded validationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, decoded.Summary.Blocked)
	ids := make([]string, 0, len(decoded.Warnings))
	for _, w := range decoded.Warnings {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"quota-conflict-t-over", "sub-ceiling-t-over"}, ids)
}

const capitalizedDaysYAML = `timing:
  activeDays: [Sunday]
  periodsPerDay: 2
teachers:
  - id: t1
    name: Rina
    quotaLimit: 2
settings:
  teacherConstraints:
    - teacherId: t1
      excludedSlots:
        Sunday: [1, 2]
`

func TestValidateMatchesDayKeysCaseInsensitively(t *testing.T) {
	path := writeFile(t, "snapshot.yaml", capitalizedDaysYAML)

	out, err := execute(t, "validate", "--snapshot", path)

	require.ErrorIs(t, err, errBlocked)
	assert.Contains(t, out, "quota-conflict-t1")
}

func TestValidateRejectsUnboundedTiming(t *testing.T) {
	for name, body := range map[string]string{
		"periods":   `{"timing": {"activeDays": ["sunday"], "periodsPerDay": 200000000}}`,
		"day name":  `{"timing": {"activeDays": ["funday"], "periodsPerDay": 7}}`,
		"duplicate": `{"timing": {"activeDays": ["sunday", "Sunday"], "periodsPerDay": 7}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, "validate", "--snapshot", writeFile(t, "snapshot.json", body))
			assert.ErrorContains(t, err, "invalid snapshot")
		})
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	_, err := execute(t, "validate", "--snapshot", writeFile(t, "snapshot.txt", feasibleYAML))
	assert.ErrorContains(t, err, "unsupported snapshot extension")

	_, err = execute(t, "validate", "--snapshot", writeFile(t, "snapshot.yaml", feasibleYAML), "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = execute(t, "validate", "--snapshot", writeFile(t, "snapshot.json", `{"classCount": -1}`))
	assert.ErrorContains(t, err, "invalid snapshot")

	_, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "describe", "--periods", "8", "--days", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "8 periods / 5 days")
	assert.Contains(t, out, "max per day:  2")
	assert.Contains(t, out, "heavy days:   3")

	out, err = execute(t, "describe", "--periods", "12", "--days", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "repeats a period slot")

	_, err = execute(t, "describe", "--periods", "4", "--days", "9")
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestTokenRequiresKnownRole(t *testing.T) {
	out, err := execute(t, "token", "--user", "ops-1", "--role", "admin")
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)

	_, err = execute(t, "token", "--user", "ops-1", "--role", "janitor")
	assert.Error(t, err)
}
