package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HitCount is the number of a ticket's values present in the drawn combination
type HitCount int

// Winning hit counts. Anything below HitsThree is not a winner.
const (
	HitsThree HitCount = 3
	HitsFour  HitCount = 4
	HitsFive  HitCount = 5
	HitsSix   HitCount = 6
)

// WinningHitCounts lists every winning hit count, highest first. Payout
// groups are processed in this order.
var WinningHitCounts = []HitCount{HitsSix, HitsFive, HitsFour, HitsThree}

// IsWinning reports whether the hit count qualifies for a prize group
func (h HitCount) IsWinning() bool {
	return h >= HitsThree && h <= HitsSix
}

// RewardTable maps a hit count to the prize pool shared by that group,
// in whole native-currency units (RON)
type RewardTable map[HitCount]float64

// DefaultRewardTable returns the standard prize pools
func DefaultRewardTable() RewardTable {
	return RewardTable{
		HitsSix:   200,
		HitsFive:  50,
		HitsFour:  25,
		HitsThree: 4,
	}
}

// Reward returns the pool for the given hit count, 0 when not a winner
func (t RewardTable) Reward(hits HitCount) float64 {
	if !hits.IsWinning() {
		return 0
	}
	return t[hits]
}

// ParseRewardTable parses "6:200,5:50,4:25,3:4"
func ParseRewardTable(s string) (RewardTable, error) {
	table := RewardTable{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid reward entry %q", pair)
		}

		hits, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid hit count in %q: %w", pair, err)
		}
		if !HitCount(hits).IsWinning() {
			return nil, fmt.Errorf("hit count %d is not a winning hit count", hits)
		}

		pool, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid reward in %q: %w", pair, err)
		}
		if pool < 0 {
			return nil, fmt.Errorf("reward for %d hits cannot be negative", hits)
		}

		table[HitCount(hits)] = pool
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("reward table is empty")
	}
	return table, nil
}

// String formats the table in ParseRewardTable form
func (t RewardTable) String() string {
	keys := make([]int, 0, len(t))
	for hits := range t {
		keys = append(keys, int(hits))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	pairs := make([]string, 0, len(keys))
	for _, hits := range keys {
		pairs = append(pairs, fmt.Sprintf("%d:%s", hits, strconv.FormatFloat(t[HitCount(hits)], 'f', -1, 64)))
	}
	return strings.Join(pairs, ",")
}
