package triprepo

import (
	"testing"

	"github.com/triphive/triphive-api/internal/adapters/contracttest"
	"github.com/triphive/triphive-api/internal/adapters/postgres/testutil"
	triprepoport "github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

func TestContract_PostgresTripRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunTripRepo(t, func(t *testing.T) (triprepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
