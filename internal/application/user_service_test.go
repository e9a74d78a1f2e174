package application

import (
	"context"
	"errors"
	"testing"
)

func TestUserService_ResolvePrincipal(t *testing.T) {
	t.Parallel()

	users, _, _, _ := seedDomain()
	disabled := users.users["student-2"]
	disabled.IsActive = false
	users.users["student-2"] = disabled
	svc := NewUserService(users, fixedNow)

	principal, err := svc.ResolvePrincipal(context.Background(), "recruiter-1")
	if err != nil {
		t.Fatalf("ResolvePrincipal failed: %v", err)
	}
	if principal != companyPrincipal {
		t.Fatalf("expected %+v, got %+v", companyPrincipal, principal)
	}

	tests := map[string]struct {
		userID string
		want   error
	}{
		"blank id":      {userID: " ", want: ErrUnauthenticated},
		"unknown user":  {userID: "ghost", want: ErrUnauthenticated},
		"disabled user": {userID: "student-2", want: ErrAccountDisabled},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.ResolvePrincipal(context.Background(), tc.userID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUserService_ListUsers(t *testing.T) {
	t.Parallel()

	users, _, _, _ := seedDomain()
	svc := NewUserService(users, fixedNow)

	if _, err := svc.ListUsers(context.Background(), studentPrincipal); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	listed, err := svc.ListUsers(context.Background(), adminPrincipal)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	for i := 1; i < len(listed); i++ {
		if listed[i-1].Email > listed[i].Email {
			t.Fatalf("expected users ordered by email, got %q before %q", listed[i-1].Email, listed[i].Email)
		}
	}
}

func TestUserService_UpdateRole(t *testing.T) {
	t.Parallel()

	t.Run("administrators change roles", func(t *testing.T) {
		t.Parallel()
		users, _, _, _ := seedDomain()
		svc := NewUserService(users, fixedNow)

		user, err := svc.UpdateRole(context.Background(), adminPrincipal, "student-2", " Company ")
		if err != nil {
			t.Fatalf("UpdateRole failed: %v", err)
		}
		if user.Role != RoleCompany || users.users["student-2"].Role != RoleCompany {
			t.Fatalf("expected stored role company, got %q", users.users["student-2"].Role)
		}
		if !user.UpdatedAt.Equal(testNow) {
			t.Fatalf("expected updatedAt to be stamped")
		}
	})

	t.Run("rejects unknown roles and missing users", func(t *testing.T) {
		t.Parallel()
		users, _, _, _ := seedDomain()
		svc := NewUserService(users, fixedNow)

		var vErr *ValidationError
		if _, err := svc.UpdateRole(context.Background(), adminPrincipal, "student-2", "owner"); !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, err := svc.UpdateRole(context.Background(), adminPrincipal, "ghost", RoleStudent); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("non administrators are rejected", func(t *testing.T) {
		t.Parallel()
		users, _, _, _ := seedDomain()
		svc := NewUserService(users, fixedNow)

		if _, err := svc.UpdateRole(context.Background(), companyPrincipal, "student-2", RoleAdmin); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
