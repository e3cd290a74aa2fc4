package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickertag/pkg/geometry"
)

func TestResultJSON_Skipped(t *testing.T) {
	data, err := json.Marshal(Result{Skipped: true})
	require.NoError(t, err)
	assert.JSONEq(t, `"skipped by annotator"`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Skipped)
	assert.Empty(t, decoded.Annotations)
}

func TestResultJSON_Annotations(t *testing.T) {
	original := Result{
		Annotations: []Annotation{
			{
				Polygon: []geometry.Point2D{
					{X: 1.5, Y: 2}, {X: 30, Y: 2}, {X: 15, Y: 44.25},
				},
				Label: "demolished",
			},
			{
				Polygon: []geometry.Point2D{
					{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 6}, {X: 0, Y: 6},
				},
				Label: "new building",
			},
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"polygon": [[1.5, 2], [30, 2], [15, 44.25]], "label": "demolished"},
		{"polygon": [[0, 0], [8, 0], [8, 6], [0, 6]], "label": "new building"}
	]`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Skipped)
	assert.Equal(t, original.Annotations, decoded.Annotations)
}

func TestResultJSON_EmptyAnnotationList(t *testing.T) {
	data, err := json.Marshal(Result{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Skipped)
}

func TestResultJSON_RejectsUnknownSentinel(t *testing.T) {
	var decoded Result
	err := json.Unmarshal([]byte(`"abandoned"`), &decoded)
	require.Error(t, err)
}

func TestResultJSON_RejectsMalformedDocument(t *testing.T) {
	var decoded Result
	err := json.Unmarshal([]byte(`{"polygon": []}`), &decoded)
	require.Error(t, err)
}

func TestClassSet(t *testing.T) {
	classes, err := NewClassSet([]ChangeClass{
		{Name: "  demolished "},
		{Name: "new building"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, classes.Len())
	assert.True(t, classes.Contains("demolished"))
	assert.False(t, classes.Contains("flooded"))

	_, err = NewClassSet(nil)
	assert.Error(t, err)

	_, err = NewClassSet([]ChangeClass{{Name: "   "}})
	assert.Error(t, err)

	_, err = NewClassSet([]ChangeClass{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)
}
