package handler

import apperrors "github.com/homebooks/ledger/internal/shared/errors"

var (
	errAmbiguousAmount     = apperrors.BadRequest("set either magnitude or amount, not both")
	errFractionalMagnitude = apperrors.BadRequest("magnitude must be an integer number of minor units")
)

func badAmount(err error) error {
	return apperrors.BadRequest(err.Error())
}
