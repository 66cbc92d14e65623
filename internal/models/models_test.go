package models

import (
	"testing"
	"time"

	"github.com/hardbound/stacks/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityValidate(t *testing.T) {
	t.Run("valid identity passes and keeps its role", func(t *testing.T) {
		identity := Identity{ID: "u-1", Username: "alice", Email: "a@example.com", Role: RoleLibrarian}
		require.NoError(t, identity.Validate())
		assert.Equal(t, RoleLibrarian, identity.Role)
	})

	t.Run("missing role defaults to member", func(t *testing.T) {
		identity := Identity{ID: "u-1", Username: "alice", Email: "a@example.com"}
		require.NoError(t, identity.Validate())
		assert.Equal(t, RoleMember, identity.Role)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		identity := Identity{ID: "u-1", Username: "alice", Email: "a@example.com", Role: "superuser"}
		assert.ErrorIs(t, identity.Validate(), shared.ErrInvalidInput)
	})

	t.Run("missing required fields are rejected", func(t *testing.T) {
		for _, identity := range []Identity{
			{Username: "alice", Email: "a@example.com"},
			{ID: "u-1", Email: "a@example.com"},
			{ID: "u-1", Username: "alice"},
		} {
			assert.Error(t, identity.Validate())
		}
	})
}

func TestIdentityDisplayName(t *testing.T) {
	full := Identity{Username: "alice", FirstName: "Alice", LastName: "Liddell"}
	assert.Equal(t, "Alice Liddell", full.DisplayName())

	bare := Identity{Username: "alice"}
	assert.Equal(t, "alice", bare.DisplayName())
}

func TestIdentityIsStaff(t *testing.T) {
	for role, staff := range map[string]bool{
		RoleLibrarian: true,
		RoleAdmin:     true,
		RoleMember:    false,
	} {
		identity := Identity{Role: role}
		assert.Equal(t, staff, identity.IsStaff(), "role %s", role)
	}
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{Username: "bob", Email: "bob@example.com", Password: "hunter2"}
	require.NoError(t, valid.Validate())

	for _, reg := range []Registration{
		{Email: "bob@example.com", Password: "x"},
		{Username: "bob", Password: "x"},
		{Username: "bob", Email: "bob@example.com"},
	} {
		assert.Error(t, reg.Validate())
	}
}

func TestLoan(t *testing.T) {
	now := time.Now()

	t.Run("open loan past due is overdue", func(t *testing.T) {
		loan := Loan{DueAt: now.AddDate(0, 0, -1)}
		assert.False(t, loan.Returned())
		assert.True(t, loan.Overdue(now))
	})

	t.Run("returned loan is never overdue", func(t *testing.T) {
		returned := now.AddDate(0, 0, -2)
		loan := Loan{DueAt: now.AddDate(0, 0, -1), ReturnedAt: &returned}
		assert.True(t, loan.Returned())
		assert.False(t, loan.Overdue(now))
	})

	t.Run("loan due later is not overdue", func(t *testing.T) {
		loan := Loan{DueAt: now.AddDate(0, 0, 7)}
		assert.False(t, loan.Overdue(now))
	})
}

func TestCatalogStats(t *testing.T) {
	now := time.Now()
	returned := now.AddDate(0, 0, -1)

	catalog := Catalog{
		Books:   []Book{{ID: "b-1"}, {ID: "b-2"}},
		Authors: []Author{{ID: "a-1"}},
		Loans: []Loan{
			{ID: "l-1", DueAt: now.AddDate(0, 0, 7)},
			{ID: "l-2", DueAt: now.AddDate(0, 0, -3)},
			{ID: "l-3", DueAt: now.AddDate(0, 0, -3), ReturnedAt: &returned},
		},
	}

	stats := catalog.Stats(now)
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 1, stats.TotalAuthors)
	assert.Equal(t, 2, stats.ActiveLoans)
	assert.Equal(t, 1, stats.OverdueLoans)
}

func TestBookValidate(t *testing.T) {
	require.NoError(t, (&Book{Title: "Dune", AuthorID: "a-1"}).Validate())
	assert.Error(t, (&Book{AuthorID: "a-1"}).Validate())
	assert.Error(t, (&Book{Title: "Dune"}).Validate())
}
