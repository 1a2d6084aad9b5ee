package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minelog/minelog/internal/domain"
	"github.com/minelog/minelog/internal/filter"
	"github.com/minelog/minelog/internal/logdir"
	"github.com/minelog/minelog/internal/output"
)

// EventsCmd streams the classified event stream of a world's log history
type EventsCmd struct {
	From    string   `help:"Only logs from this date on (YYYY-MM-DD, inclusive)"`
	To      string   `help:"Only logs before this date (YYYY-MM-DD, exclusive)"`
	Reverse bool     `short:"r" help:"Newest events first"`
	Type    string   `short:"t" help:"Comma-separated event types to include"`
	Player  []string `short:"p" help:"Only events attributed to these players"`
	Match   string   `short:"m" help:"Only events whose text matches this regex"`
}

// Run executes the events command
func (c *EventsCmd) Run(globals *Globals) error {
	env := newWorldEnv(globals, "")

	chain := filter.NewChain()
	if c.Type != "" {
		tf, err := filter.NewTypeFilter(c.Type)
		if err != nil {
			return outputErrorCommon(globals, "BAD_TYPE", err.Error())
		}
		chain.Add(tf)
	}
	if len(c.Player) > 0 {
		chain.Add(filter.NewPlayerFilter(c.Player))
	}
	if c.Match != "" {
		rf, err := filter.NewRegexFilter(c.Match)
		if err != nil {
			return outputErrorCommon(globals, "BAD_PATTERN", err.Error())
		}
		chain.Add(rf)
	}

	reader := env.reader
	from, to, err := parseDateRange(c.From, c.To)
	if err != nil {
		return outputErrorCommon(globals, "BAD_DATE", err.Error())
	}
	if !from.IsZero() || !to.IsZero() {
		reader, err = reader.Slice(from, to)
		if err != nil {
			return readerError(globals, err)
		}
	}
	if c.Reverse {
		reader = reader.Reversed()
	}

	var emit func(domain.Event) error
	if globals.ResolveFormat(true) == "table" {
		emit = func(ev domain.Event) error {
			_, err := fmt.Fprintln(globals.Stdout, formatEventText(ev))
			return err
		}
	} else {
		writer := output.NewNDJSONWriter(globals.Stdout)
		emit = writer.WriteEvent
	}

	err = reader.Events(context.Background(), func(ev domain.Event) error {
		if !chain.Match(&ev) {
			return nil
		}
		return emit(ev)
	})
	if err != nil {
		return readerError(globals, err)
	}
	return nil
}

// formatEventText renders one event as a human-readable line
func formatEventText(ev domain.Event) string {
	ts := ""
	if !ev.Time.IsZero() {
		ts = ev.Time.UTC().Format(domain.TimeLayout) + " "
	}
	switch ev.Type {
	case domain.EventAchievement:
		return fmt.Sprintf("%s%s earned [%s]", ts, ev.Player, ev.Achievement)
	case domain.EventChatAction:
		return fmt.Sprintf("%s* %s %s", ts, ev.Player, ev.Message)
	case domain.EventChatMessage:
		return fmt.Sprintf("%s<%s> %s", ts, ev.Player, ev.Message)
	case domain.EventDeath:
		return fmt.Sprintf("%s%s %s", ts, ev.Player, ev.Cause)
	case domain.EventJoin:
		return fmt.Sprintf("%s%s joined", ts, ev.Player)
	case domain.EventLeave:
		return fmt.Sprintf("%s%s left", ts, ev.Player)
	case domain.EventRestart:
		return ts + "server restarted"
	case domain.EventStart:
		return fmt.Sprintf("%sserver started (version %s)", ts, ev.Version)
	case domain.EventStop:
		return ts + "server stopped"
	case domain.EventGibberish:
		return "??? " + ev.Text
	default:
		return fmt.Sprintf("%s[%s/%s] %s", ts, ev.OriginThread, ev.LogLevel, ev.Text)
	}
}

// parseDateRange parses the --from/--to day bounds
func parseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	if fromStr != "" {
		from, err = time.ParseInLocation("2006-01-02", fromStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if toStr != "" {
		to, err = time.ParseInLocation("2006-01-02", toStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date: %w", err)
		}
	}
	return from, to, nil
}

// readerError maps log reading failures to typed command errors
func readerError(globals *Globals, err error) error {
	if errors.Is(err, logdir.ErrNoLatestLog) {
		return outputErrorCommon(globals, "WORLD_NOT_FOUND", err.Error())
	}
	return outputErrorCommon(globals, "READ_ERROR", err.Error())
}
