package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/minelog/minelog/internal/aggregate"
	"github.com/minelog/minelog/internal/domain"
)

// DeathsTable renders the full death history, one row per death, in player
// order
func DeathsTable(w io.Writer, deaths map[string][]aggregate.Death) error {
	table := tablewriter.NewTable(w)
	table.Header("Player", "Cause", "Time")
	for _, player := range sortedKeys(deaths) {
		for _, death := range deaths[player] {
			if err := table.Append(player, death.Cause, death.Timestamp.Format(domain.TimeLayout)); err != nil {
				return err
			}
		}
	}
	return table.Render()
}

// LatestDeathsTable renders each player's most recent death
func LatestDeathsTable(w io.Writer, latest *aggregate.LatestDeaths) error {
	table := tablewriter.NewTable(w)
	table.Header("Player", "Cause", "Time")
	for _, player := range sortedKeys(latest.Deaths) {
		death := latest.Deaths[player]
		if err := table.Append(player, death.Cause, death.Timestamp.Format(domain.TimeLayout)); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if latest.LastPerson != "" {
		fmt.Fprintf(w, "Most recent death: %s\n", latest.LastPerson)
	}
	return nil
}

// TimestampsTable renders a player → timestamp map (last seen, achievement
// completions)
func TimestampsTable(w io.Writer, header string, m map[string]domain.Timestamp) error {
	table := tablewriter.NewTable(w)
	table.Header("Player", header)
	for _, player := range sortedKeys(m) {
		if err := table.Append(player, m[player].Format(domain.TimeLayout)); err != nil {
			return err
		}
	}
	return table.Render()
}

// WorldSeenTable renders the merged multi-world last-seen map
func WorldSeenTable(w io.Writer, m map[string]aggregate.WorldSeen) error {
	table := tablewriter.NewTable(w)
	table.Header("Player", "Last seen", "World")
	for _, player := range sortedKeys(m) {
		seen := m[player]
		if err := table.Append(player, seen.Time.Format(domain.TimeLayout), seen.World); err != nil {
			return err
		}
	}
	return table.Render()
}

// SessionsTable renders uptime windows with their sessions, one row per
// session (or one bare row for an empty window)
func SessionsTable(w io.Writer, windows []domain.UptimeWindow) error {
	table := tablewriter.NewTable(w)
	table.Header("Uptime start", "Uptime end", "Version", "Player", "Join", "Leave", "Reason")
	for _, window := range windows {
		start := window.StartTime.Format(domain.TimeLayout)
		end := ""
		if window.EndTime != nil {
			end = window.EndTime.Format(domain.TimeLayout)
		}
		if len(window.Sessions) == 0 {
			if err := table.Append(start, end, window.Version, "", "", "", ""); err != nil {
				return err
			}
			continue
		}
		for _, s := range window.Sessions {
			leave := ""
			if s.LeaveTime != nil {
				leave = s.LeaveTime.Format(domain.TimeLayout)
			}
			err := table.Append(start, end, window.Version,
				s.Person, s.JoinTime.Format(domain.TimeLayout), leave, string(s.LeaveReason))
			if err != nil {
				return err
			}
		}
	}
	return table.Render()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
