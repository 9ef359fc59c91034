package repository

import "testing"

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(&User{IsAdmin: true}); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if err := RequireAdmin(&User{Role: RoleAdmin}); err == nil {
		t.Fatal("the admin role alone is not enough without the admin flag")
	}
	if err := RequireAdmin(nil); err == nil {
		t.Fatal("nil user should be rejected")
	}
}

func TestRequireRoleMatchesRole(t *testing.T) {
	if err := RequireRole(&User{Role: RoleProvider}, RoleProvider); err != nil {
		t.Fatalf("matching role should pass: %v", err)
	}
	if err := RequireRole(&User{Role: RoleClient}, RoleProvider); err == nil {
		t.Fatal("mismatched role should be rejected")
	}
	if err := RequireRole(nil, RoleClient); err == nil {
		t.Fatal("nil user should be rejected")
	}
}

func TestRequireRoleAdminActsInAnyRole(t *testing.T) {
	admin := &User{Role: RoleAdmin, IsAdmin: true}
	if err := RequireRole(admin, RoleClient); err != nil {
		t.Fatalf("admin should pass the client guard: %v", err)
	}
	if err := RequireRole(admin, RoleProvider); err != nil {
		t.Fatalf("admin should pass the provider guard: %v", err)
	}
}
