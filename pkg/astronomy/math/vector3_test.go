package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorOperations(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: 5, Z: 6}

	assert.Equal(t, 32.0, a.Dot(b))
	assert.Equal(t, Vector3{X: -3, Y: 6, Z: -3}, a.Cross(b))
	assert.Equal(t, Vector3{X: 3, Y: 3, Z: 3}, b.Sub(a))
	assert.InDelta(t, 5.0, Vector3{X: 3, Y: 4}.Magnitude(), 1e-15)
	assert.InDelta(t, 3*1.7320508075688772, a.Distance(b), 1e-12)
}
