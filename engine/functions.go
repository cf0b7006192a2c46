package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/DanielSebasCM/research-stay-2024/vector"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_cosine with the driver so
// they are available on connections opened after this call. It is safe to
// call repeatedly; only the first call registers.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl); err != nil {
			registerErr = fmt.Errorf("engine: register vec_cosine: %w", err)
		}
	})
	return registerErr
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("engine: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

// embeddingArgs decodes both BLOB arguments; ok is false when either is NULL.
func embeddingArgs(name string, args []driver.Value) (a, b []float32, ok bool, err error) {
	if len(args) != 2 {
		return nil, nil, false, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	if a, err = asEmbedding(args[0]); err != nil {
		return nil, nil, false, err
	}
	if b, err = asEmbedding(args[1]); err != nil {
		return nil, nil, false, err
	}
	return a, b, a != nil && b != nil, nil
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, ok, err := embeddingArgs("vec_cosine", args)
	if err != nil || !ok {
		return nil, err
	}
	sim, err := vector.CosineSimilarity(a, b)
	if err != nil {
		// zero-magnitude rows rank last instead of failing the whole query
		return nil, nil
	}
	return sim, nil
}
