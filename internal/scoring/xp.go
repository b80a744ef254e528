package scoring

import "math"

// Rules is the scoring configuration read at completion time
type Rules struct {
	XPBasePerLot           int     `json:"xpBasePerLot" validate:"min=0"`
	XPPerOrder             int     `json:"xpPerOrder" validate:"min=0"`
	XPPerItem              int     `json:"xpPerItem" validate:"min=0"`
	SpeedTargetItemsPerMin float64 `json:"speedTargetItemsPerMin" validate:"min=0"`
	Bonus10Threshold       float64 `json:"bonus10Threshold" validate:"min=0"`
	Bonus20Threshold       float64 `json:"bonus20Threshold" validate:"min=0"`
}

// DefaultRules applies when no rules were ever stored
var DefaultRules = Rules{
	XPBasePerLot:           50,
	XPPerOrder:             10,
	XPPerItem:              2,
	SpeedTargetItemsPerMin: 5,
	Bonus10Threshold:       1.0,
	Bonus20Threshold:       1.2,
}

// Split shares for lots worked by a distinct separator and scanner
const (
	SeparatorShare = 0.6
	ScannerShare   = 0.4
)

// Totals are the frozen counts of a lot
type Totals struct {
	Orders int `json:"orders"`
	Items  int `json:"items"`
}

// LotXP is the breakdown of XP earned by a lot
type LotXP struct {
	Base         int     `json:"base"`
	OrderXP      int     `json:"orderXp"`
	ItemXP       int     `json:"itemXp"`
	Bonus        int     `json:"bonus"`
	BonusPercent int     `json:"bonusPercent"`
	Total        int     `json:"total"`
	Speed        float64 `json:"speed"`
	SpeedMet     bool    `json:"speedMet"`
}

// ComputeLotXP scores a lot from its totals and separation duration.
// Tier thresholds compare the unrounded speed; the returned speed is rounded to 2 decimals.
func ComputeLotXP(totals Totals, durationMs int64, rules Rules) LotXP {
	base := rules.XPBasePerLot
	orderXP := rules.XPPerOrder * totals.Orders
	itemXP := rules.XPPerItem * totals.Items
	subtotal := base + orderXP + itemXP

	durationMin := float64(durationMs) / 60000
	speed := 0.0
	if durationMin > 0 {
		speed = float64(totals.Items) / durationMin
	}

	bonusPercent := bonusTier(speed, rules)
	bonus := int(math.Round(float64(subtotal) * float64(bonusPercent) / 100))

	return LotXP{
		Base:         base,
		OrderXP:      orderXP,
		ItemXP:       itemXP,
		Bonus:        bonus,
		BonusPercent: bonusPercent,
		Total:        subtotal + bonus,
		Speed:        math.Round(speed*100) / 100,
		SpeedMet:     bonusPercent > 0,
	}
}

// bonusTier checks 20% before 10%; tiers never stack
func bonusTier(speed float64, rules Rules) int {
	target := rules.SpeedTargetItemsPerMin
	if target <= 0 {
		return 0
	}
	switch {
	case speed >= target*rules.Bonus20Threshold:
		return 20
	case speed >= target*rules.Bonus10Threshold:
		return 10
	}
	return 0
}

// ComputeSingleOrderXP scores a single order as a one-order lot
func ComputeSingleOrderXP(items int, durationMs int64, rules Rules) LotXP {
	return ComputeLotXP(Totals{Orders: 1, Items: items}, durationMs, rules)
}

// ComputeTaskXP scores a logged task
func ComputeTaskXP(taskTypeXP, quantity int) int {
	return taskTypeXP * quantity
}

// SplitXP divides total between separator and scanner. Each share is rounded
// on its own, so the parts may differ from total by one.
func SplitXP(total int) (separator, scanner int) {
	separator = int(math.Round(float64(total) * SeparatorShare))
	scanner = int(math.Round(float64(total) * ScannerShare))
	return separator, scanner
}
