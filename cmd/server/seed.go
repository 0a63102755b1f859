package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etorin/event-seat-booking/internal/model"
	"github.com/etorin/event-seat-booking/internal/repository"
)

// seedDemo creates a small set of venues and events on an empty
// database so the service is browseable out of the box.  The second
// event deliberately has no explicit tier prices, exercising the
// base-price fallback (premium = base * 1.5, vip = base * 2).
func seedDemo(ctx context.Context, venues *repository.VenueRepo, events *repository.EventRepo) error {
	existing, err := venues.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hallID, err := venues.CreateWithSeats(ctx, "Grand Hall", "Amsterdam", 8, 12)
	if err != nil {
		return err
	}
	clubID, err := venues.CreateWithSeats(ctx, "River Club", "Utrecht", 5, 10)
	if err != nil {
		return err
	}

	premium := decimal.NewNullDecimal(decimal.NewFromInt(75))
	vip := decimal.NewNullDecimal(decimal.NewFromInt(120))
	seedEvents := []model.Event{
		{
			VenueID:      hallID,
			Name:         "Autumn Symphony",
			Category:     "concert",
			StartsAt:     time.Now().UTC().AddDate(0, 1, 0),
			BasePrice:    decimal.NewFromInt(50),
			PremiumPrice: premium,
			VIPPrice:     vip,
			Status:       model.EventActive,
		},
		{
			VenueID:   clubID,
			Name:      "Late Night Standup",
			Category:  "comedy",
			StartsAt:  time.Now().UTC().AddDate(0, 0, 14),
			BasePrice: decimal.NewFromInt(20),
			Status:    model.EventActive,
		},
	}
	for i := range seedEvents {
		if err := events.Create(ctx, &seedEvents[i]); err != nil {
			return err
		}
	}
	log.Printf("seeded %d venues and %d events", 2, len(seedEvents))
	return nil
}
