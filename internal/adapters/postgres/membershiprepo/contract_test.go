package membershiprepo

import (
	"testing"

	"github.com/triphive/triphive-api/internal/adapters/contracttest"
	"github.com/triphive/triphive-api/internal/adapters/postgres/testutil"
	pgtriprepo "github.com/triphive/triphive-api/internal/adapters/postgres/triprepo"
	membershiprepoport "github.com/triphive/triphive-api/internal/ports/out/membershiprepo"
	triprepoport "github.com/triphive/triphive-api/internal/ports/out/triprepo"
)

func TestContract_PostgresMembershipRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunMembershipRepo(
		t,
		func(t *testing.T) (triprepoport.Repository, func()) {
			t.Helper()
			return pgtriprepo.NewRepo(pool), nil
		},
		func(t *testing.T) (membershiprepoport.Repository, func()) {
			t.Helper()
			return NewRepo(pool), nil
		},
	)
}
