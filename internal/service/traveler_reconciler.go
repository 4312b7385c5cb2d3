package service

import (
	"context"
	"log"

	"github.com/voyagehub/reservation-checkout/internal/model"
)

// TravelerStore is the traveler persistence surface the reconciler needs.
type TravelerStore interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.Traveler, error)
	Create(ctx context.Context, t *model.Traveler) error
	Delete(ctx context.Context, id uint64) error
}

// PassengerTotalsWriter stores the authoritative traveler count on the
// aggregate after a reconciliation pass.
type PassengerTotalsWriter interface {
	UpdateTotalPassengers(ctx context.Context, id uint64, count int) error
}

// TravelerReconciler keeps the persisted traveler rows of a reservation in
// line with the counts the shopper selected. Creates fill up from the next
// contiguous traveler number; deletes only ever take from the tail and
// never remove the lead traveler, so numbering stays contiguous without
// renumbering survivors.
type TravelerReconciler struct {
	travelers TravelerStore
	totals    PassengerTotalsWriter
}

// NewTravelerReconciler constructs a TravelerReconciler.
func NewTravelerReconciler(travelers TravelerStore, totals PassengerTotalsWriter) *TravelerReconciler {
	return &TravelerReconciler{travelers: travelers, totals: totals}
}

// ComputeDelta returns desired - existing: positive means create that many
// travelers, negative means delete, zero means nothing to do.
func ComputeDelta(existing, desired int) int {
	return desired - existing
}

// ApplyResult summarizes one reconciliation pass.
type ApplyResult struct {
	Created int `json:"created"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
	Total   int `json:"total"` // authoritative traveler count after the pass
}

// Apply reconciles the persisted travelers of a reservation against the
// desired counts, always landing on exactly desired.Total() rows. The pass
// is driven by the scalar delta: when the shopper shifts travelers between
// age groups without enough headroom, the row count wins over composition
// and surplus rows of other groups stay in place. Individual create/delete
// failures do not roll back successfully applied siblings; they are counted
// and surfaced as a PartialApplyError so the caller re-fetches the
// authoritative list.
func (r *TravelerReconciler) Apply(ctx context.Context, reservationID uint64, desired model.TravelerCounts) (ApplyResult, error) {
	existing, err := r.travelers.ListByReservation(ctx, reservationID)
	if err != nil {
		return ApplyResult{}, err
	}

	var result ApplyResult
	delta := ComputeDelta(len(existing), desired.Total())
	switch {
	case delta > 0:
		result = r.create(ctx, reservationID, existing, desired, delta)
	case delta < 0:
		result = r.delete(ctx, existing, -delta)
	}

	result.Total = len(existing) + result.Created - result.Deleted
	if err := r.totals.UpdateTotalPassengers(ctx, reservationID, result.Total); err != nil {
		return result, err
	}
	if result.Failed > 0 {
		return result, &PartialApplyError{Applied: result.Created + result.Deleted, Failed: result.Failed}
	}
	return result, nil
}

// create adds exactly budget travelers (the scalar delta), assigning
// contiguous numbers after the current maximum. Under-represented age
// groups fill in the order adults, children, infants; the budget bounds
// the pass so a composition shift never grows the reservation past the
// desired total. A failed attempt still consumes budget, mirroring the
// delete quota.
func (r *TravelerReconciler) create(ctx context.Context, reservationID uint64, existing []model.Traveler, desired model.TravelerCounts, budget int) ApplyResult {
	have := map[model.AgeGroup]int{}
	nextNumber := 0
	for _, t := range existing {
		have[t.AgeGroup]++
		if t.TravelerNumber > nextNumber {
			nextNumber = t.TravelerNumber
		}
	}
	nextNumber++

	want := []struct {
		group model.AgeGroup
		count int
	}{
		{model.AgeGroupAdult, desired.Adults},
		{model.AgeGroupChild, desired.Children},
		{model.AgeGroupInfant, desired.Infants},
	}

	var result ApplyResult
	hasLead := hasLeadTraveler(existing)
	for _, w := range want {
		for missing := w.count - have[w.group]; missing > 0 && budget > 0; missing-- {
			budget--
			t := model.Traveler{
				ReservationID:  reservationID,
				TravelerNumber: nextNumber,
				AgeGroup:       w.group,
				IsLead:         !hasLead,
			}
			if err := r.travelers.Create(ctx, &t); err != nil {
				log.Printf("traveler-reconciler: create traveler %d for reservation %d failed: %v", nextNumber, reservationID, err)
				result.Failed++
				continue
			}
			hasLead = true
			nextNumber++
			result.Created++
		}
	}
	return result
}

// delete removes n travelers from the tail of the numbering, skipping the
// lead traveler.
func (r *TravelerReconciler) delete(ctx context.Context, existing []model.Traveler, n int) ApplyResult {
	var result ApplyResult
	for i := len(existing) - 1; i >= 0 && result.Deleted+result.Failed < n; i-- {
		t := existing[i]
		if t.IsLead {
			continue
		}
		if err := r.travelers.Delete(ctx, t.ID); err != nil {
			log.Printf("traveler-reconciler: delete traveler %d failed: %v", t.ID, err)
			result.Failed++
			continue
		}
		result.Deleted++
	}
	return result
}

func hasLeadTraveler(travelers []model.Traveler) bool {
	for _, t := range travelers {
		if t.IsLead {
			return true
		}
	}
	return false
}
