package domain

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EventType identifies an activity feed event.
type EventType string

// Event types.
const (
	EventNewAccount              EventType = "new_account"
	EventAwardReceived           EventType = "award_received"
	EventPointsMilestone         EventType = "points_milestone"
	EventVersesStartedMilestone  EventType = "verses_started_milestone"
	EventVersesFinishedMilestone EventType = "verses_finished_milestone"
	EventVerseSetCreated         EventType = "verse_set_created"
	EventStartedLearningVerseSet EventType = "started_learning_verse_set"
	EventGroupJoined             EventType = "group_joined"
	EventGroupCreated            EventType = "group_created"
	EventNewComment              EventType = "new_comment"
)

// Dashboard tuning.
const (
	DashboardWindow       = 30 * 24 * time.Hour
	DashboardCandidates   = 200
	DashboardMaxPerActor  = 3
	DashboardHalfLife     = 24 * time.Hour
	DashboardAffinityGain = 2.0
)

// Weight is the base importance of an event type in the dashboard.
func (t EventType) Weight() int {
	switch t {
	case EventAwardReceived:
		return 10
	case EventPointsMilestone, EventVersesStartedMilestone, EventVersesFinishedMilestone:
		return 8
	case EventVerseSetCreated, EventGroupCreated:
		return 6
	case EventNewAccount:
		return 5
	}
	return 4
}

// Event is an entry in the activity feed.
type Event struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	AccountID     uuid.UUID      `json:"account_id" db:"account_id"`
	Type          EventType      `json:"type" db:"event_type"`
	Message       string         `json:"message" db:"message"`
	EventData     types.JSONText `json:"data" db:"event_data"`
	Weight        int            `json:"weight" db:"weight"`
	Created       time.Time      `json:"created" db:"created"`
	ParentEventID uuid.NullUUID  `json:"parent_event_id" db:"parent_event_id"`
	URL           string         `json:"url" db:"url"`

	// Populated by feed queries.
	AccountUsername   string `json:"username,omitempty" db:"account_username"`
	AccountHellbanned bool   `json:"-" db:"account_hellbanned"`
}

var printer = message.NewPrinter(language.English)

func newEvent(accountID uuid.UUID, t EventType, msg, url string, data any, now time.Time) *Event {
	raw, err := json.Marshal(data)
	if err != nil || data == nil {
		raw = []byte("{}")
	}
	return &Event{
		ID:        uuid.New(),
		AccountID: accountID,
		Type:      t,
		Message:   msg,
		EventData: types.JSONText(raw),
		Weight:    t.Weight(),
		Created:   now.UTC(),
		URL:       url,
	}
}

// NewAccountEvent announces a new account.
func NewAccountEvent(a *Account, now time.Time) *Event {
	return newEvent(a.ID, EventNewAccount,
		printer.Sprintf("%s signed up", a.Username), "/user/"+a.Username+"/", nil, now)
}

// NewAwardReceivedEvent announces an award level.
func NewAwardReceivedEvent(a *Account, award *Award, now time.Time) *Event {
	def, _ := LookupAward(award.Type)
	msg := printer.Sprintf("%s earned %s level %d", a.Username, def.Name, award.Level)
	if def.MaxLevel() == 1 {
		msg = printer.Sprintf("%s earned %s", a.Username, def.Name)
	}
	return newEvent(a.ID, EventAwardReceived, msg, "/user/"+a.Username+"/awards/",
		map[string]any{"award_type": award.Type, "level": award.Level}, now)
}

// NewPointsMilestoneEvent announces a points milestone.
func NewPointsMilestoneEvent(a *Account, points int, now time.Time) *Event {
	return newEvent(a.ID, EventPointsMilestone,
		printer.Sprintf("%s reached %d points", a.Username, points), "/user/"+a.Username+"/",
		map[string]any{"points": points}, now)
}

// NewVersesStartedMilestoneEvent announces a number of verses started.
func NewVersesStartedMilestoneEvent(a *Account, count int, now time.Time) *Event {
	return newEvent(a.ID, EventVersesStartedMilestone,
		printer.Sprintf("%s has started learning %d verses", a.Username, count), "/user/"+a.Username+"/",
		map[string]any{"count": count}, now)
}

// NewVersesFinishedMilestoneEvent announces a number of verses learnt.
func NewVersesFinishedMilestoneEvent(a *Account, count int, now time.Time) *Event {
	return newEvent(a.ID, EventVersesFinishedMilestone,
		printer.Sprintf("%s has learnt %d verses", a.Username, count), "/user/"+a.Username+"/",
		map[string]any{"count": count}, now)
}

// NewVerseSetCreatedEvent announces a public verse set.
func NewVerseSetCreatedEvent(a *Account, vs *VerseSet, now time.Time) *Event {
	return newEvent(a.ID, EventVerseSetCreated,
		printer.Sprintf("%s created verse set %q", a.Username, vs.Name), "/verse-set/"+vs.Slug+"/",
		map[string]any{"verse_set_id": vs.ID}, now)
}

// NewStartedLearningVerseSetEvent announces that a learner started a set.
func NewStartedLearningVerseSetEvent(a *Account, vs *VerseSet, now time.Time) *Event {
	return newEvent(a.ID, EventStartedLearningVerseSet,
		printer.Sprintf("%s started learning %q", a.Username, vs.Name), "/verse-set/"+vs.Slug+"/",
		map[string]any{"verse_set_id": vs.ID}, now)
}

// NewGroupCreatedEvent announces a group.
func NewGroupCreatedEvent(a *Account, g *Group, now time.Time) *Event {
	return newEvent(a.ID, EventGroupCreated,
		printer.Sprintf("%s created group %q", a.Username, g.Name), "/groups/"+g.Slug+"/",
		map[string]any{"group_id": g.ID}, now)
}

// NewGroupJoinedEvent announces a new member.
func NewGroupJoinedEvent(a *Account, g *Group, now time.Time) *Event {
	return newEvent(a.ID, EventGroupJoined,
		printer.Sprintf("%s joined group %q", a.Username, g.Name), "/groups/"+g.Slug+"/",
		map[string]any{"group_id": g.ID}, now)
}

// NewCommentEvent announces a comment on another event.
func NewCommentEvent(a *Account, c *Comment, parent *Event, now time.Time) *Event {
	e := newEvent(a.ID, EventNewComment,
		printer.Sprintf("%s commented", a.Username), parent.URL,
		map[string]any{"comment_id": c.ID}, now)
	e.ParentEventID = uuid.NullUUID{UUID: parent.ID, Valid: true}
	return e
}

// DashboardScore is the decayed, affinity-adjusted importance of e for a viewer.
func (e *Event) DashboardScore(now time.Time, affinity bool) float64 {
	ageHours := now.Sub(e.Created).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	score := float64(e.Weight) * math.Pow(0.5, ageHours/DashboardHalfLife.Hours())
	if affinity {
		score *= DashboardAffinityGain
	}
	return score
}

// VisibleTo reports whether viewer may see the event. Events of hellbanned
// accounts are only shown to those accounts.
func (e *Event) VisibleTo(viewer uuid.UUID) bool {
	return !e.AccountHellbanned || e.AccountID == viewer
}

// RankDashboard orders candidate events for viewer. related holds the accounts
// sharing a group with the viewer. Hellbanned actors are only shown to
// themselves and no actor gets more than DashboardMaxPerActor entries.
func RankDashboard(viewer uuid.UUID, candidates []*Event, related map[uuid.UUID]bool, now time.Time, limit int) []*Event {
	type scored struct {
		e     *Event
		score float64
	}
	list := make([]scored, 0, len(candidates))
	for _, e := range candidates {
		if !e.VisibleTo(viewer) {
			continue
		}
		affinity := e.AccountID == viewer || related[e.AccountID]
		list = append(list, scored{e: e, score: e.DashboardScore(now, affinity)})
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].e.Created.After(list[j].e.Created)
	})

	perActor := make(map[uuid.UUID]int)
	out := make([]*Event, 0, limit)
	for _, s := range list {
		if len(out) >= limit {
			break
		}
		if perActor[s.e.AccountID] >= DashboardMaxPerActor {
			continue
		}
		perActor[s.e.AccountID]++
		out = append(out, s.e)
	}
	return out
}
