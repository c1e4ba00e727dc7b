// Package stubsource is a local stand-in for the groupware calendar
// API, used to exercise the bridge end to end without real credentials.
// It generates a plausible mix of timed, all-day and recurring events
// and serves them over the same endpoints the source client consumes.
package stubsource

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/yymzk/calbridge/internal/domain/schedule"
)

// Event shape cases.
const (
	caseTimedMeeting = 0
	caseAllDayBanner = 1
	caseTentative    = 2
	caseWeeklyRepeat = 3
	caseDailyRepeat  = 4
)

const shapeCount = 5

var summaries = []string{
	"Weekly planning", "1on1", "Design review", "Customer call",
	"Release go/no-go", "Office move", "Team offsite", "Interview",
}

var rooms = []string{"Meeting room A", "Meeting room B", "Huddle 3"}

func randomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// Generate builds count events spread across the window starting at
// from. Ids are sequential so re-generation with a higher version
// simulates edits to the same calendar.
func Generate(from time.Time, count int) []schedule.SourceEvent {
	events := make([]schedule.SourceEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, makeEvent(i, from))
	}
	return events
}

func makeEvent(i int, from time.Time) schedule.SourceEvent {
	id := strconv.Itoa(1000 + i)
	start := from.Add(time.Duration(randomInt(21*24)) * time.Hour).Truncate(time.Hour)
	ev := schedule.SourceEvent{
		ID:         id,
		Version:    "1",
		EventType:  "normal",
		PublicType: "public",
		Detail:     summaries[randomInt(len(summaries))],
		Timezone:   "Asia/Tokyo",
		Members: []schedule.SourceMember{
			{User: &schedule.MemberRef{ID: "u" + id, Name: "User " + id}},
		},
	}

	switch i % shapeCount {
	case caseAllDayBanner:
		ev.EventType = "banner"
		ev.When = &schedule.SourceWhen{Dates: []schedule.SourcePeriod{{
			Start: start.Format("2006-01-02"),
			End:   start.AddDate(0, 0, 1+randomInt(3)).Format("2006-01-02"),
		}}}
	case caseTentative:
		ev.EventType = "temporary"
		ev.PublicType = "private"
		ev.When = timedPeriod(start)
	case caseWeeklyRepeat:
		ev.EventType = "repeat"
		week := 1 + randomInt(5)
		ev.RepeatInfo = &schedule.RepeatInfo{Condition: schedule.RepeatCondition{
			Type:      "week",
			Week:      &week,
			StartDate: start.Format("2006-01-02"),
			EndDate:   start.AddDate(0, 3, 0).Format("2006-01-02"),
			StartTime: "10:00:00",
			EndTime:   "11:00:00",
		}}
	case caseDailyRepeat:
		ev.EventType = "repeat"
		ev.RepeatInfo = &schedule.RepeatInfo{Condition: schedule.RepeatCondition{
			Type:      "day",
			StartDate: start.Format("2006-01-02"),
			EndDate:   start.AddDate(0, 1, 0).Format("2006-01-02"),
		}}
	default:
		ev.Members = append(ev.Members, schedule.SourceMember{
			Facility: &schedule.MemberRef{ID: "f1", Name: rooms[randomInt(len(rooms))]},
		})
		ev.When = timedPeriod(start)
	}
	return ev
}

func timedPeriod(start time.Time) *schedule.SourceWhen {
	return &schedule.SourceWhen{Datetimes: []schedule.SourcePeriod{{
		Start: start.Format(time.RFC3339),
		End:   start.Add(time.Hour).Format(time.RFC3339),
	}}}
}
