package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/coverline/internal/contracts"
)

func policy(id string, end time.Time) contracts.AutoPolicy {
	return contracts.AutoPolicy{
		ID:            id,
		InsuredPerson: contracts.Driver{ID: "d-1", UserID: "u-1"},
		UserID:        "u-1",
		StartDate:     end.AddDate(-1, 0, 0),
		EndDate:       end,
	}
}

func TestStore_UserCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.FindUserByID(ctx, "u-1")
	assert.ErrorIs(t, err, contracts.ErrUserNotFound)

	require.NoError(t, s.SaveUser(ctx, contracts.User{ID: "u-1", Name: "Ada"}))
	require.NoError(t, s.SaveUser(ctx, contracts.User{ID: "u-2", Name: "Bob"}))
	require.NoError(t, s.SaveUser(ctx, contracts.User{ID: "u-1", Name: "Ada L."}))

	u, err := s.FindUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", u.Name)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u-1", users[0].ID, "an update keeps the original position")

	require.NoError(t, s.DeleteUserByID(ctx, "u-1"))
	assert.ErrorIs(t, s.DeleteUserByID(ctx, "u-1"), contracts.ErrUserNotFound)
}

func TestStore_DeleteUserRemovesOwnedRecords(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveUser(ctx, contracts.User{ID: "u-1", Name: "Ada"}))
	require.NoError(t, s.SaveUser(ctx, contracts.User{ID: "u-2", Name: "Bob"}))
	require.NoError(t, s.SaveDriver(ctx, contracts.Driver{ID: "d-1", UserID: "u-1", Age: 30}))
	require.NoError(t, s.SaveVehicle(ctx, contracts.Vehicle{ID: "v-1", UserID: "u-1", Year: 2020}))
	require.NoError(t, s.SaveVehicle(ctx, contracts.Vehicle{ID: "v-2", UserID: "u-2", Year: 2018}))
	require.NoError(t, s.SaveAutoPolicy(ctx, contracts.AutoPolicy{ID: "p-1", UserID: "u-1"}))

	require.NoError(t, s.DeleteUserByID(ctx, "u-1"))

	_, err := s.FindDriverByUserID(ctx, "u-1")
	assert.ErrorIs(t, err, contracts.ErrRiskProfileNotFound)
	_, err = s.FindAutoPolicyByID(ctx, "p-1")
	assert.ErrorIs(t, err, contracts.ErrPolicyNotFound)

	vehicles, err := s.ListVehiclesByUserID(ctx, "u-2")
	require.NoError(t, err)
	assert.Len(t, vehicles, 1, "other users keep their records")
}

func TestStore_SaveRequiresID(t *testing.T) {
	err := New().SaveVehicle(context.Background(), contracts.Vehicle{})
	assert.ErrorIs(t, err, contracts.ErrInvalidInput)
}

func TestStore_OneRiskProfilePerUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveDriver(ctx, contracts.Driver{ID: "d-1", UserID: "u-1", Age: 30}))
	// updating the same profile is fine
	require.NoError(t, s.SaveDriver(ctx, contracts.Driver{ID: "d-1", UserID: "u-1", Age: 31}))

	err := s.SaveDriver(ctx, contracts.Driver{ID: "d-2", UserID: "u-1", Age: 40})
	assert.ErrorIs(t, err, contracts.ErrRiskProfileExists)

	d, err := s.FindDriverByUserID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 31, d.Age)

	_, err = s.FindDriverByUserID(ctx, "u-2")
	assert.ErrorIs(t, err, contracts.ErrRiskProfileNotFound)

	require.NoError(t, s.SaveHomeOwner(ctx, contracts.HomeOwner{ID: "o-1", UserID: "u-1"}))
	err = s.SaveHomeOwner(ctx, contracts.HomeOwner{ID: "o-2", UserID: "u-1"})
	assert.ErrorIs(t, err, contracts.ErrRiskProfileExists)
}

func TestStore_ListByUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveHome(ctx, contracts.Home{ID: fmt.Sprintf("h-%d", i), UserID: "u-1"}))
	}
	require.NoError(t, s.SaveHome(ctx, contracts.Home{ID: "h-x", UserID: "u-2"}))

	homes, err := s.ListHomesByUserID(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, homes, 3)
	assert.Equal(t, []string{"h-0", "h-1", "h-2"}, []string{homes[0].ID, homes[1].ID, homes[2].ID})

	none, err := s.ListHomesByUserID(ctx, "u-3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ReplaceAutoPolicy(t *testing.T) {
	ctx := context.Background()
	s := New()
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAutoPolicy(ctx, policy("p-1", end)))
	require.NoError(t, s.ReplaceAutoPolicy(ctx, "p-1", policy("p-2", end.AddDate(1, 0, 0))))

	_, err := s.FindAutoPolicyByID(ctx, "p-1")
	assert.ErrorIs(t, err, contracts.ErrPolicyNotFound)
	_, err = s.FindAutoPolicyByID(ctx, "p-2")
	assert.NoError(t, err)

	// predecessor already replaced: nothing is inserted
	err = s.ReplaceAutoPolicy(ctx, "p-1", policy("p-3", end.AddDate(1, 0, 0)))
	assert.ErrorIs(t, err, contracts.ErrPolicyNotFound)
	_, err = s.FindAutoPolicyByID(ctx, "p-3")
	assert.ErrorIs(t, err, contracts.ErrPolicyNotFound)
}

func TestStore_ReplaceIsSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := New()
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveAutoPolicy(ctx, policy("p-0", end)))

	var wins int32
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.ReplaceAutoPolicy(ctx, "p-0", policy(fmt.Sprintf("p-%d", i), end)); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	live, err := s.ListAutoPoliciesByUserID(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestStore_HomePolicyReplaceAfterCancel(t *testing.T) {
	ctx := context.Background()
	s := New()
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	p := contracts.HomePolicy{ID: "hp-1", UserID: "u-1", EndDate: end}

	require.NoError(t, s.SaveHomePolicy(ctx, p))
	require.NoError(t, s.DeleteHomePolicyByID(ctx, "hp-1"))

	next := p
	next.ID = "hp-2"
	assert.ErrorIs(t, s.ReplaceHomePolicy(ctx, "hp-1", next), contracts.ErrPolicyNotFound)

	all, err := s.ListHomePoliciesByUserID(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, all, "a cancelled policy is never resurrected")
}

func TestStore_ListPoliciesEndingBefore(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAutoPolicy(ctx, policy("soon", base.AddDate(0, 0, 10))))
	require.NoError(t, s.SaveAutoPolicy(ctx, policy("later", base.AddDate(0, 0, 90))))
	require.NoError(t, s.SaveHomePolicy(ctx, contracts.HomePolicy{ID: "home-soon", EndDate: base.AddDate(0, 0, 30)}))

	autos, err := s.ListAutoPoliciesEndingBefore(ctx, base.AddDate(0, 0, 60))
	require.NoError(t, err)
	require.Len(t, autos, 1)
	assert.Equal(t, "soon", autos[0].ID)

	homes, err := s.ListHomePoliciesEndingBefore(ctx, base.AddDate(0, 0, 60))
	require.NoError(t, err)
	assert.Len(t, homes, 1)
}

func TestStore_NotFoundSentinels(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.FindVehicleByID(ctx, "x")
	assert.ErrorIs(t, err, contracts.ErrAssetNotFound)
	_, err = s.FindHomeByID(ctx, "x")
	assert.ErrorIs(t, err, contracts.ErrAssetNotFound)
	_, err = s.FindAutoQuoteByID(ctx, "x")
	assert.ErrorIs(t, err, contracts.ErrQuoteNotFound)
	_, err = s.FindHomeQuoteByID(ctx, "x")
	assert.ErrorIs(t, err, contracts.ErrQuoteNotFound)
	_, err = s.FindHomeOwnerByID(ctx, "x")
	assert.ErrorIs(t, err, contracts.ErrRiskProfileNotFound)
	assert.ErrorIs(t, s.DeleteHomeQuoteByID(ctx, "x"), contracts.ErrQuoteNotFound)
	assert.NoError(t, s.Ping(ctx))
}
