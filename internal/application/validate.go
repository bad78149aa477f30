package application

import (
	"context"

	"github.com/oksasatya/go-realestate-listings/pkg/validation"
)

var validate = validation.New()

// fieldErrors runs struct validation and returns the field messages, or an
// empty map when the input is valid.
func fieldErrors(in any) map[string]string {
	if err := validate.Struct(in); err != nil {
		return validation.ToDetails(err)
	}
	return map[string]string{}
}

func asValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// withinTx runs fn in a transaction when a TxManager is configured.
func (d Deps) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.Tx == nil {
		return fn(ctx)
	}
	return d.Tx.WithinTx(ctx, fn)
}
