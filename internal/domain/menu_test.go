package domain_test

import (
	"testing"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

func TestMenuFirstItem_ReturnsFirstMatch(t *testing.T) {
	menu := domain.Menu{Items: []domain.MenuItem{
		{Key: "k1", ProductName: "Pizza", Price: 9.5},
		{Key: "k2", ProductName: "Pizza", Price: 11},
	}}

	item, ok := menu.FirstItem("Pizza")
	if !ok {
		t.Fatal("expected Pizza to be found")
	}
	if item.Key != "k1" {
		t.Fatalf("expected first match k1, got %s", item.Key)
	}

	if _, ok := menu.FirstItem("Soda"); ok {
		t.Fatal("Soda must not be found")
	}
}

func TestMenuItemPatch_Apply(t *testing.T) {
	item := domain.MenuItem{ProductName: "Pizza", Price: 9.5, Detail: "Cheese"}

	price := 12.0
	updated, changed := domain.MenuItemPatch{Price: &price}.Apply(item)
	if !changed {
		t.Fatal("expected change")
	}
	if updated.Price != 12 || updated.Detail != "Cheese" {
		t.Fatalf("unexpected item after patch: %+v", updated)
	}

	same := 9.5
	if _, changed := (domain.MenuItemPatch{Price: &same}).Apply(item); changed {
		t.Fatal("identical price must not count as change")
	}

	if !(domain.MenuItemPatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}
}

func TestCloneMenu_CopiesItems(t *testing.T) {
	src := domain.Menu{Items: []domain.MenuItem{{ProductName: "Pizza"}}}
	dst := domain.CloneMenu(src)
	dst.Items[0].ProductName = "Soda"

	if src.Items[0].ProductName != "Pizza" {
		t.Fatal("clone must not share the items slice")
	}
}

func TestUserPatch_Apply(t *testing.T) {
	user := domain.User{Name: "Ann", Email: "ann@example.com", Role: domain.RoleCustomer}

	name := "Ann"
	if _, changed := (domain.UserPatch{Name: &name}).Apply(user); changed {
		t.Fatal("same name must not count as change")
	}

	role := domain.RoleAdmin
	updated, changed := domain.UserPatch{Role: &role}.Apply(user)
	if !changed || updated.Role != domain.RoleAdmin {
		t.Fatalf("expected role change, got %+v", updated)
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []domain.Role{
		domain.RoleCustomer,
		domain.RoleRestaurantOwner,
		domain.RoleDeliveryPersonnel,
		domain.RoleAdmin,
	} {
		if !role.Valid() {
			t.Errorf("role %q must be valid", role)
		}
	}
	if domain.Role("chef").Valid() {
		t.Error("unknown role must be invalid")
	}
}
