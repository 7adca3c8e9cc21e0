package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-daytime/internal/config"
	"github.com/tartampluch/go-daytime/internal/day"
	"github.com/teambition/rrule-go"
)

// Translator supplies localized texts for the feed.
// *i18n.Translator satisfies it.
type Translator interface {
	Message(d day.Day) string
	Label(d day.Day) string
	FeedName() string
}

// Generator renders the period table as a daily recurring iCalendar feed.
type Generator struct {
	Clock      Clock      // Interface for time mocking.
	Translator Translator // Optional; canonical texts are used when nil.

	// ReminderTrigger is an ISO8601 duration (e.g. "-PT5M"). Empty disables alarms.
	ReminderTrigger string
}

// Run builds the ICS feed and the matching list of entries.
func (g *Generator) Run(ctx context.Context) ([]byte, []GreetingEntry, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	now := g.Clock.Now()

	entries, err := g.entries(ctx, now)
	if err != nil {
		return nil, nil, err
	}

	ics, err := g.encodeCalendar(now)
	if err != nil {
		return nil, nil, err
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, len(entries),
		config.LogKeySizeBytes, len(ics),
	)
	slog.Debug("Generation finished",
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return ics, entries, nil
}

// Entries returns one entry per period in table order, relative to the generator clock.
func (g *Generator) Entries(ctx context.Context) ([]GreetingEntry, error) {
	return g.entries(ctx, g.Clock.Now())
}

func (g *Generator) entries(ctx context.Context, now time.Time) ([]GreetingEntry, error) {
	all := day.All()
	entries := make([]GreetingEntry, 0, len(all))

	for _, d := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := nextOccurrence(now, d.Hour())
		if err != nil {
			return nil, err
		}

		entries = append(entries, GreetingEntry{
			Day:            d,
			Label:          g.label(d),
			Hour:           d.Hour(),
			Message:        g.message(d),
			NextOccurrence: next,
		})
	}
	return entries, nil
}

// encodeCalendar builds one VEVENT per period, anchored on the clock's current date.
func (g *Generator) encodeCalendar(now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, g.feedName())
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, d := range day.All() {
		event := g.createEvent(d, now)
		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) createEvent(d day.Day, now time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, eventUID(d))

	summary := g.message(d)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropDescription, g.label(d))

	// Floating local time (no TZID, no Z): the event fires at the period hour
	// in whatever zone the calendar client runs.
	year, month, date := now.Date()
	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetValueType(ical.ValueDateTime)
	dtStartProp.Value = time.Date(year, month, date, d.Hour(), 0, 0, 0, time.UTC).Format(config.DateFormatFloating)
	event.Props.Set(dtStartProp)

	event.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.DAILY})

	if g.ReminderTrigger != "" {
		addAlarm(event, g.ReminderTrigger, summary)
	}
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// eventUID derives a UID that stays stable across regenerations.
func eventUID(d day.Day) string {
	input := fmt.Sprintf(config.FormatHashInput, d, d.Hour(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}

// nextOccurrence returns the first instant at or after now whose clock reads hour:00.
func nextOccurrence(now time.Time, hour int) (time.Time, error) {
	year, month, date := now.Date()
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: time.Date(year, month, date, hour, 0, 0, 0, now.Location()),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrRecurrence, err)
	}
	return rule.After(now, true), nil
}

func (g *Generator) message(d day.Day) string {
	if g.Translator == nil {
		return d.Message()
	}
	return g.Translator.Message(d)
}

func (g *Generator) label(d day.Day) string {
	if g.Translator == nil {
		return d.String()
	}
	return g.Translator.Label(d)
}

func (g *Generator) feedName() string {
	if g.Translator == nil {
		return config.ICalCalName
	}
	return g.Translator.FeedName()
}
