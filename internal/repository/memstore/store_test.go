package memstore

import (
	"testing"

	"storefront-backend/internal/repository"
	"storefront-backend/internal/repository/repotest"
)

func TestContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repository.Repositories {
		return New().Repositories()
	})
}
