package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// singularThreshold is the ratio of smallest to largest singular value below which a matrix is
// treated as rank deficient.
const singularThreshold = 1e-9

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 row major elements.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	return rm, nil
}

// NewIdentityRotationMatrix returns the rotation matrix representing no rotation.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// RotationMatrixFromDense copies a 3x3 gonum matrix into a RotationMatrix.
func RotationMatrixFromDense(m mat.Matrix) (*RotationMatrix, error) {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return nil, errors.Errorf("matrix is %dx%d, need 3x3", r, c)
	}
	rm := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rm.mat[3*row+col] = m.At(row, col)
		}
	}
	return rm, nil
}

// At returns the element at the given row and column.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the given row as a vector.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the given column as a vector.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[col+3], Z: rm.mat[col+6]}
}

// Rotate applies the rotation to the given vector.
func (rm *RotationMatrix) Rotate(v r3.Vector) r3.Vector {
	return r3.Vector{X: rm.Row(0).Dot(v), Y: rm.Row(1).Dot(v), Z: rm.Row(2).Dot(v)}
}

// Dense returns a copy of the matrix as a gonum dense matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, rm.mat[:])
	return mat.NewDense(3, 3, data)
}

// Quaternion returns the orientation in quaternion representation. The input is assumed to be a
// proper rotation; other matrices give a quaternion that is not unit length.
func (rm *RotationMatrix) Quaternion() quat.Number {
	// mgl64 matrices are column major.
	m := mgl64.Mat3{
		rm.mat[0], rm.mat[3], rm.mat[6],
		rm.mat[1], rm.mat[4], rm.mat[7],
		rm.mat[2], rm.mat[5], rm.mat[8],
	}
	q := mgl64.Mat4ToQuat(m.Mat4())
	return quat.Number{Real: q.W, Imag: q.V[0], Jmag: q.V[1], Kmag: q.V[2]}
}

// Det returns the determinant of the matrix.
func (rm *RotationMatrix) Det() float64 {
	return mat.Det(rm.Dense())
}

// OrthonormalError returns the largest absolute deviation of RᵀR from the identity and of the
// determinant from 1. A proper rotation has an error of 0.
func (rm *RotationMatrix) OrthonormalError() float64 {
	dense := rm.Dense()
	var rtr mat.Dense
	rtr.Mul(dense.T(), dense)

	worst := math.Abs(mat.Det(dense) - 1)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.
			if i == j {
				want = 1
			}
			worst = math.Max(worst, math.Abs(rtr.At(i, j)-want))
		}
	}
	return worst
}

// IsOrthonormal reports whether the matrix is a proper rotation within the given tolerance.
func (rm *RotationMatrix) IsOrthonormal(tolerance float64) bool {
	return rm.OrthonormalError() <= tolerance
}

// NearestRotation projects the matrix onto the closest proper rotation in the Frobenius norm,
// R' = U·Vᵀ from the SVD R = U·Σ·Vᵀ. Singular matrices and reflections (det <= 0) have no
// meaningful projection and return an error.
func (rm *RotationMatrix) NearestRotation() (*RotationMatrix, error) {
	dense := rm.Dense()
	if det := mat.Det(dense); det <= 0 || math.IsNaN(det) {
		return nil, errors.Errorf("matrix determinant %g is not positive", det)
	}

	var svd mat.SVD
	if ok := svd.Factorize(dense, mat.SVDFull); !ok {
		return nil, errors.New("singular value decomposition failed")
	}
	values := svd.Values(nil)
	if values[len(values)-1] < singularThreshold*values[0] {
		return nil, errors.Errorf("matrix is rank deficient, singular values %v", values)
	}

	var u, v, r mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	r.Mul(&u, v.T())
	return RotationMatrixFromDense(&r)
}

// AlmostEqual reports whether every element of the two matrices is within tolerance.
func (rm *RotationMatrix) AlmostEqual(other *RotationMatrix, tolerance float64) bool {
	for i := range rm.mat {
		if !scalar.EqualWithinAbs(rm.mat[i], other.mat[i], tolerance) {
			return false
		}
	}
	return true
}

// QuatToRotationMatrix converts a quaternion to a rotation matrix. The quaternion is normalized
// first.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	q = Normalize(q)
	m := mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Mat4()
	rm := &RotationMatrix{}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			rm.mat[3*row+col] = m.At(row, col)
		}
	}
	return rm
}
