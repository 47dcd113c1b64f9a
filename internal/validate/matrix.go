package validate

import (
	"fmt"
	"math"
)

// symmetryTolerance is the floating-point tolerance for matrix symmetry and
// diagonal checks.
const symmetryTolerance = 1e-9

// MatrixReport is the outcome of validating a correlation matrix.
type MatrixReport struct {
	IsValid       bool     `json:"isValid"`
	SymmetryValid bool     `json:"symmetryValid"`
	Issues        []string `json:"issues,omitempty"`
}

// CorrelationMatrix checks that the matrix is square, has a unit diagonal,
// has entries in [-1, 1], and is symmetric within tolerance. Labels, when
// supplied, must match the matrix dimension. The matrix is never mutated.
func CorrelationMatrix(matrix [][]float64, labels []string) MatrixReport {
	report := MatrixReport{IsValid: true, SymmetryValid: true}

	n := len(matrix)
	if n == 0 {
		report.IsValid = false
		report.SymmetryValid = false
		report.Issues = append(report.Issues, "empty matrix")
		return report
	}
	if len(labels) > 0 && len(labels) != n {
		report.IsValid = false
		report.Issues = append(report.Issues,
			fmt.Sprintf("label count %d does not match matrix dimension %d", len(labels), n))
	}

	for i, row := range matrix {
		if len(row) != n {
			report.IsValid = false
			report.SymmetryValid = false
			report.Issues = append(report.Issues, fmt.Sprintf("row %d has %d entries, want %d", i, len(row), n))
			continue
		}
		if math.Abs(row[i]-1.0) > symmetryTolerance {
			report.IsValid = false
			report.Issues = append(report.Issues, fmt.Sprintf("diagonal [%d][%d] = %v, want 1", i, i, row[i]))
		}
		for j, v := range row {
			if v < -1-symmetryTolerance || v > 1+symmetryTolerance {
				report.IsValid = false
				report.Issues = append(report.Issues, fmt.Sprintf("entry [%d][%d] = %v outside [-1, 1]", i, j, v))
			}
			if j < i && math.Abs(v-matrix[j][i]) > symmetryTolerance {
				report.IsValid = false
				report.SymmetryValid = false
				report.Issues = append(report.Issues,
					fmt.Sprintf("asymmetry: [%d][%d] = %v but [%d][%d] = %v", i, j, v, j, i, matrix[j][i]))
			}
		}
	}

	return report
}
