package engine

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterVectorFunctions registers vec_l2sq and vec_l2 with the driver so
// they are available on connections opened after this call. It is safe to
// call more than once.
func RegisterVectorFunctions() error {
	var err error
	registerOnce.Do(func() {
		if err = sqlite.RegisterDeterministicScalarFunction("vec_l2sq", 2, vecL2SquaredImpl); err != nil {
			return
		}
		err = sqlite.RegisterDeterministicScalarFunction("vec_l2", 2, vecL2Impl)
	})
	return err
}

func asVector(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeVector(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for vector; want BLOB", arg)
	}
}

func vectorArgs(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asVector(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asVector(args[1])
	if err != nil {
		return nil, nil, err
	}
	if a != nil && b != nil && len(a) != len(b) {
		return nil, nil, fmt.Errorf("%s: dim mismatch %d vs %d", name, len(a), len(b))
	}
	return a, b, nil
}

func vecL2SquaredImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := vectorArgs("vec_l2sq", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return l2sq(a, b), nil
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := vectorArgs("vec_l2", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	return math.Sqrt(l2sq(a, b)), nil
}

// Local minimal helpers to avoid an import cycle with package vector, whose
// tests open databases through this package.
func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vec: invalid vector blob length %d", len(b))
	}
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

func l2sq(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
