package merchantdata

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stellar-p2p/backend/internal/models"
)

func TestFixtureActiveListingsFilter(t *testing.T) {
	ctx := context.Background()
	d := NewFixtureDirectory()

	m, err := d.GetPublicMerchantBySlug(ctx, "aurora-exchange")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil {
		t.Fatal("seeded merchant missing")
	}

	// the seed holds active, paused and completed listings for this merchant
	listings, err := d.GetActiveListings(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) == 0 {
		t.Fatal("expected at least one active listing")
	}
	for _, l := range listings {
		if l.Status != models.ListingStatusActive {
			t.Errorf("listing %s has status %q", l.ID, l.Status)
		}
	}

	all, err := d.GetMyListings(ctx, m.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) <= len(listings) {
		t.Errorf("seed should contain non-active listings too: all=%d active=%d", len(all), len(listings))
	}
}

func TestFixtureUnknownSlugIsNilNil(t *testing.T) {
	d := NewFixtureDirectory()
	m, err := d.GetPublicMerchantBySlug(context.Background(), "no-such-merchant")
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("got %+v, want nil", m)
	}
}

func TestFixtureUpsertProfile(t *testing.T) {
	ctx := context.Background()
	d := NewFixtureDirectory()
	userID := uuid.New()

	m := &models.Merchant{
		UserID:      userID,
		Slug:        "new-desk",
		DisplayName: "New Desk",
		IsPublic:    true,
	}
	if err := d.UpsertMyMerchantProfile(ctx, m); err != nil {
		t.Fatal(err)
	}
	if m.ID == uuid.Nil {
		t.Fatal("id not assigned")
	}
	if m.VerificationStatus != models.MerchantStatusPending {
		t.Errorf("new merchant status = %q", m.VerificationStatus)
	}

	// second upsert must keep identity and verification status
	m2 := &models.Merchant{
		UserID:      userID,
		Slug:        "new-desk",
		DisplayName: "New Desk Renamed",
		IsPublic:    false,
	}
	if err := d.UpsertMyMerchantProfile(ctx, m2); err != nil {
		t.Fatal(err)
	}
	if m2.ID != m.ID {
		t.Errorf("upsert created a second merchant: %s vs %s", m2.ID, m.ID)
	}

	got, err := d.GetMyMerchant(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "New Desk Renamed" || got.IsPublic {
		t.Errorf("profile not updated: %+v", got)
	}
}
