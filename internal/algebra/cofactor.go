package algebra

import "fmt"

// Minor returns m without row skipRow and column skipCol. m must be square
// and non-empty; the minor of a 1x1 matrix is empty.
func Minor[T Number](m Matrix[T], skipRow, skipCol int) (Matrix[T], error) {
	n, err := square(m)
	if err != nil {
		return nil, opErr(opMinor, err)
	}
	if skipRow < 0 || skipRow >= n || skipCol < 0 || skipCol >= n {
		return nil, opErr(opMinor, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrIndexOutOfRange, skipRow, skipCol, n, n))
	}
	return minor(m, skipRow, skipCol), nil
}

// minor assumes m is square.
func minor[T Number](m Matrix[T], skipRow, skipCol int) Matrix[T] {
	n := len(m)
	if n <= 1 {
		return Matrix[T]{}
	}
	sub := make(Matrix[T], 0, n-1)
	for i := range n {
		if i == skipRow {
			continue
		}
		row := make([]T, 0, n-1)
		for j := range n {
			if j == skipCol {
				continue
			}
			row = append(row, m[i][j])
		}
		sub = append(sub, row)
	}
	return sub
}

// Determinant computes det(m) by cofactor expansion along the first row.
func Determinant[T Number](m Matrix[T]) (float64, error) {
	if _, err := square(m); err != nil {
		return 0, opErr(opDet, err)
	}
	return det(m), nil
}

// det assumes m is square and non-empty.
func det[T Number](m Matrix[T]) float64 {
	switch len(m) {
	case 1:
		return float64(m[0][0])
	case 2:
		return float64(m[0][0])*float64(m[1][1]) - float64(m[0][1])*float64(m[1][0])
	}

	var sum float64
	sign := 1.0
	for j := range m[0] {
		sum += sign * float64(m[0][j]) * det(minor(m, 0, j))
		sign = -sign
	}
	return sum
}

// Adjugate returns the transposed cofactor matrix of m. The adjugate of a
// 1x1 matrix is [[1]].
func Adjugate[T Number](m Matrix[T]) (Matrix[T], error) {
	n, err := square(m)
	if err != nil {
		return nil, opErr(opAdjugate, err)
	}
	return adjugate(m, n), nil
}

func adjugate[T Number](m Matrix[T], n int) Matrix[T] {
	adj := filled[T](n, n, 0)
	if n == 1 {
		adj[0][0] = 1
		return adj
	}
	for i := range n {
		for j := range n {
			c := det(minor(m, i, j))
			if (i+j)%2 != 0 && c != 0 {
				c = -c
			}
			adj[j][i] = T(c)
		}
	}
	return adj
}

// Inverse returns adj(m)/det(m). The result is float64 regardless of T. A
// determinant of exactly zero is reported as ErrSingular; there is no
// tolerance. Zero entries stay positive zero.
func Inverse[T Number](m Matrix[T]) (Matrix[float64], error) {
	n, err := square(m)
	if err != nil {
		return nil, opErr(opInverse, err)
	}

	fm := Convert[float64](m)
	d := det(fm)
	if d == 0 {
		return nil, opErr(opInverse, ErrSingular)
	}

	inv := adjugate(fm, n)
	for i := range n {
		for j := range n {
			if inv[i][j] != 0 {
				inv[i][j] /= d
			}
		}
	}
	return inv, nil
}
