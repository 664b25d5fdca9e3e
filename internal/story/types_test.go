package story

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStepID(t *testing.T) {
	tests := []struct {
		in      string
		want    StepID
		wantErr bool
	}{
		{"intro/0", StepID{Challenge: "intro", Index: 0}, false},
		{"chapter/12/3", StepID{Challenge: "chapter/12", Index: 3}, false},
		{"intro", StepID{}, true},
		{"/1", StepID{}, true},
		{"intro/", StepID{}, true},
		{"intro/x", StepID{}, true},
		{"intro/-1", StepID{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStepID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepID_AsJSONMapKey(t *testing.T) {
	in := map[StepID]int{{Challenge: "intro", Index: 1}: 3}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"intro/1": 3}`, string(b))

	var out map[StepID]int
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}
