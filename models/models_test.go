package models

import "testing"

func TestCategoryBeforeSaveRecomputesOnNameChange(t *testing.T) {
	c := &Category{Name: "Café Crème!! 2024"}
	c.BeforeSave(true)
	if c.Slug != "cafe-creme-2024" {
		t.Fatalf("unexpected slug %q", c.Slug)
	}

	c.Name = "Liquid Compost"
	c.BeforeSave(true)
	if c.Slug != "liquid-compost" {
		t.Fatalf("slug should follow the new name, got %q", c.Slug)
	}
}

func TestCategoryBeforeSaveKeepsSlugWhenNameUntouched(t *testing.T) {
	c := &Category{Name: "Bone Meal", Slug: "bone-meal"}
	c.Description = "slow release phosphorus"
	c.BeforeSave(false)
	if c.Slug != "bone-meal" {
		t.Fatalf("slug changed without a name change: %q", c.Slug)
	}
}

func TestCategoryBeforeSaveFillsMissingSlug(t *testing.T) {
	c := &Category{Name: "Worm Castings"}
	c.BeforeSave(false)
	if c.Slug != "worm-castings" {
		t.Fatalf("expected slug to be filled, got %q", c.Slug)
	}
}

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusDelivered, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.ok, got)
		}
	}
}

func TestEnumValidation(t *testing.T) {
	if !RoleModerator.Valid() || Role("root").Valid() {
		t.Fatalf("role validation mismatch")
	}
	if !UnitLitre.Valid() || Unit("lb").Valid() {
		t.Fatalf("unit validation mismatch")
	}
	if !ReturnStatusApproved.Valid() || ReturnStatus("ANSWERED").Valid() {
		t.Fatalf("return status validation mismatch")
	}
}
