package entities

// WinningEntry is a ticket that matched at least three drawn numbers.
// It only lives for one settlement pass.
type WinningEntry struct {
	TicketID int64
	Wallet   string
	Hits     HitCount
}

// WinningGroups partitions winners by hit count, preserving scan order
// within each group
type WinningGroups map[HitCount][]*WinningEntry

// Add appends the entry to its hit-count group. Non-winning entries are ignored.
func (g WinningGroups) Add(entry *WinningEntry) {
	if !entry.Hits.IsWinning() {
		return
	}
	g[entry.Hits] = append(g[entry.Hits], entry)
}

// Total returns the number of winners across all groups
func (g WinningGroups) Total() int {
	total := 0
	for _, hits := range WinningHitCounts {
		total += len(g[hits])
	}
	return total
}

// WinnerAnnouncement is the payload sent to the notification sink
type WinnerAnnouncement struct {
	RoundID     int64
	TicketID    int64
	Wallet      string
	Hits        HitCount
	Amount      float64
	TxHash      string
	ExplorerURL string
}
