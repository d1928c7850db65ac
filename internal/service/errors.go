package service

import (
	"fmt"

	"github.com/neighborly/engage/internal/database"
	"github.com/neighborly/engage/internal/model"
)

// mapStoreErr converts low-level store failures into the error kinds
// clients can act on. Serialization aborts become Conflict so the client
// can re-fetch and retry once; everything else passes through.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsSerializationFailure(err) {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	return err
}
