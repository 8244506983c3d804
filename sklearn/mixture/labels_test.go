package mixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestAssignLabels(t *testing.T) {
	resp := mat.NewDense(4, 3, []float64{
		0.1, 0.7, 0.2,
		0.5, 0.25, 0.25,
		0.4, 0.2, 0.4, // tie goes to the lowest index
		0, 0, 1,
	})
	assert.Equal(t, []int{1, 0, 0, 2}, AssignLabels(resp))
}

func TestAssignLabelsUniformRows(t *testing.T) {
	resp := mat.NewDense(2, 4, []float64{
		0.25, 0.25, 0.25, 0.25,
		0.25, 0.25, 0.25, 0.25,
	})
	assert.Equal(t, []int{0, 0}, AssignLabels(resp))
}
