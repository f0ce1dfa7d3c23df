package pricing

import (
	"fmt"
	"sort"

	"bitesquicky/internal/models"
)

type IssueKind string

const (
	IssueInverted  IssueKind = "inverted"
	IssueOverlap   IssueKind = "overlap"
	IssueGap       IssueKind = "gap"
	IssueNoZero    IssueKind = "no_zero_tier"
	IssueBoundedUp IssueKind = "bounded_top"
)

// TierIssue describes a hole or overlap in the tier table. Issues are advisory;
// resolution still uses first match in list order.
type TierIssue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// CheckTiers reports where tiers fail to partition [0, ∞).
func CheckTiers(tiers []models.DeliveryFeeTier) []TierIssue {
	issues := make([]TierIssue, 0)
	if len(tiers) == 0 {
		return issues
	}

	sorted := make([]models.DeliveryFeeTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinAmount < sorted[j].MinAmount
	})

	for _, tier := range sorted {
		if tier.MaxAmount != nil && *tier.MaxAmount < tier.MinAmount {
			issues = append(issues, TierIssue{
				Kind:    IssueInverted,
				Message: fmt.Sprintf("tier %s has max %d below min %d", tierLabel(tier), *tier.MaxAmount, tier.MinAmount),
			})
		}
	}

	if sorted[0].MinAmount > 0 {
		issues = append(issues, TierIssue{
			Kind:    IssueNoZero,
			Message: fmt.Sprintf("subtotals below %d match no tier", sorted[0].MinAmount),
		})
	}

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.MaxAmount == nil {
			issues = append(issues, TierIssue{
				Kind:    IssueOverlap,
				Message: fmt.Sprintf("open-ended tier from %d overlaps tier from %d", prev.MinAmount, cur.MinAmount),
			})
			continue
		}
		switch {
		case cur.MinAmount <= *prev.MaxAmount:
			issues = append(issues, TierIssue{
				Kind:    IssueOverlap,
				Message: fmt.Sprintf("tiers overlap between %d and %d", cur.MinAmount, *prev.MaxAmount),
			})
		case cur.MinAmount > *prev.MaxAmount+1:
			issues = append(issues, TierIssue{
				Kind:    IssueGap,
				Message: fmt.Sprintf("subtotals %d to %d match no tier", *prev.MaxAmount+1, cur.MinAmount-1),
			})
		}
	}

	open := false
	for _, tier := range sorted {
		if tier.MaxAmount == nil {
			open = true
			break
		}
	}
	if !open {
		issues = append(issues, TierIssue{
			Kind:    IssueBoundedUp,
			Message: "no open-ended tier; large orders pay no delivery fee",
		})
	}

	return issues
}

func tierLabel(t models.DeliveryFeeTier) string {
	if t.ID.IsZero() {
		return fmt.Sprintf("from %d", t.MinAmount)
	}
	return t.ID.Hex()
}
