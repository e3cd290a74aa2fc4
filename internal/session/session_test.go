package session

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flickertag/internal/pairing"
	"flickertag/pkg/geometry"
)

func testClasses(t *testing.T) *ClassSet {
	t.Helper()
	classes, err := NewClassSet([]ChangeClass{
		{Name: "demolished", Color: color.RGBA{R: 255, A: 255}},
		{Name: "new building", Color: color.RGBA{G: 255, A: 255}},
	})
	require.NoError(t, err)
	return classes
}

func testSession(t *testing.T, view geometry.AffineTransform) *Session {
	t.Helper()
	pair := pairing.Pair{Key: "patch17.tif", OutputPath: "/tmp/out/patch17.json"}
	s, err := New(pair, testClasses(t), view)
	require.NoError(t, err)
	return s
}

func TestNew_RejectsSingularView(t *testing.T) {
	_, err := New(pairing.Pair{}, testClasses(t), geometry.Scale(0, 0))
	require.Error(t, err)
}

func TestNew_RequiresClasses(t *testing.T) {
	_, err := New(pairing.Pair{}, nil, geometry.Identity())
	require.Error(t, err)

	empty := &ClassSet{}
	_, err = New(pairing.Pair{}, empty, geometry.Identity())
	require.Error(t, err)
}

func TestClosePolygon_MapsVerticesToImageSpace(t *testing.T) {
	// Image pixels are shown at 2x with a (10, 20) letterbox offset.
	view := geometry.Translation(10, 20).Compose(geometry.Scale(2, 2))
	s := testSession(t, view)

	// Canvas clicks at the transformed positions of image-space corners
	// (0,0), (50,0), (50,40), (0,40).
	corners := []geometry.Point2D{
		geometry.NewPoint2D(0, 0),
		geometry.NewPoint2D(50, 0),
		geometry.NewPoint2D(50, 40),
		geometry.NewPoint2D(0, 40),
	}
	for _, c := range corners {
		require.NoError(t, s.AddVertex(view.Apply(c)))
	}
	require.NoError(t, s.ClosePolygon("demolished"))

	annotations := s.Annotations()
	require.Len(t, annotations, 1)
	assert.Equal(t, "demolished", annotations[0].Label)
	require.Len(t, annotations[0].Polygon, 4)
	for i, c := range corners {
		assert.InDelta(t, c.X, annotations[0].Polygon[i].X, 1e-9)
		assert.InDelta(t, c.Y, annotations[0].Polygon[i].Y, 1e-9)
	}
	assert.Empty(t, s.PendingVertices())
}

func TestClosePolygon_TooFewVertices(t *testing.T) {
	s := testSession(t, geometry.Identity())

	require.NoError(t, s.AddVertex(geometry.NewPoint2D(1, 1)))
	require.NoError(t, s.AddVertex(geometry.NewPoint2D(2, 2)))

	err := s.ClosePolygon("demolished")
	require.ErrorIs(t, err, ErrTooFewVertices)

	// The pending polygon and annotation list are left untouched.
	assert.Len(t, s.PendingVertices(), 2)
	assert.Empty(t, s.Annotations())
}

func TestClosePolygon_UnknownLabel(t *testing.T) {
	s := testSession(t, geometry.Identity())
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddVertex(geometry.NewPoint2D(float64(i), float64(i*i))))
	}

	err := s.ClosePolygon("flooded")
	require.ErrorIs(t, err, ErrUnknownLabel)
	assert.Len(t, s.PendingVertices(), 3)
	assert.Empty(t, s.Annotations())
}

func TestUndo_DropsPendingBeforeAnnotations(t *testing.T) {
	s := testSession(t, geometry.Identity())
	addTriangle(t, s)
	require.NoError(t, s.ClosePolygon("demolished"))

	require.NoError(t, s.AddVertex(geometry.NewPoint2D(9, 9)))
	s.Undo()
	assert.Empty(t, s.PendingVertices())
	assert.Len(t, s.Annotations(), 1)

	s.Undo()
	assert.Empty(t, s.Annotations())

	// Undo with nothing left is a no-op.
	s.Undo()
	assert.Empty(t, s.Annotations())
}

func TestSkip_IsTerminalAndDiscardsWork(t *testing.T) {
	s := testSession(t, geometry.Identity())
	addTriangle(t, s)
	require.NoError(t, s.ClosePolygon("new building"))
	require.NoError(t, s.AddVertex(geometry.NewPoint2D(5, 5)))

	require.NoError(t, s.Skip())
	assert.True(t, s.Done())

	result, err := s.Result()
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, result.Annotations)

	// Every mutation after the terminal call fails the same way.
	assert.ErrorIs(t, s.AddVertex(geometry.NewPoint2D(0, 0)), ErrSessionClosed)
	assert.ErrorIs(t, s.ClosePolygon("demolished"), ErrSessionClosed)
	assert.ErrorIs(t, s.Finish(), ErrSessionClosed)
	assert.ErrorIs(t, s.Skip(), ErrSessionClosed)

	// The result does not change either.
	result, err = s.Result()
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestFinish_EmptyAnnotationListIsValid(t *testing.T) {
	s := testSession(t, geometry.Identity())
	require.NoError(t, s.Finish())

	result, err := s.Result()
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Empty(t, result.Annotations)
}

func TestFinish_KeepsAnnotationOrder(t *testing.T) {
	s := testSession(t, geometry.Identity())

	addTriangle(t, s)
	require.NoError(t, s.ClosePolygon("demolished"))
	addTriangle(t, s)
	require.NoError(t, s.ClosePolygon("new building"))

	require.NoError(t, s.Finish())

	result, err := s.Result()
	require.NoError(t, err)
	require.Len(t, result.Annotations, 2)
	assert.Equal(t, "demolished", result.Annotations[0].Label)
	assert.Equal(t, "new building", result.Annotations[1].Label)
}

func TestResult_BeforeTerminalCall(t *testing.T) {
	s := testSession(t, geometry.Identity())
	_, err := s.Result()
	require.ErrorIs(t, err, ErrSessionOpen)
}

func addTriangle(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.AddVertex(geometry.NewPoint2D(0, 0)))
	require.NoError(t, s.AddVertex(geometry.NewPoint2D(10, 0)))
	require.NoError(t, s.AddVertex(geometry.NewPoint2D(5, 8)))
}
