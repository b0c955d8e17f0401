// Package model defines the entities persisted by rosterstore and the pure
// rules both backends share: composite uniqueness keys, tri-state patches,
// and cross-field binding validation.
package model

import "time"

// Meta carries the fields managed by the store rather than the caller.
// Embed it in every entity type.
type Meta struct {
	ID        string    `json:"id" dynamodbav:"id"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// EntityID returns the opaque generated id.
func (m Meta) EntityID() string { return m.ID }

// MetaRef exposes the embedded Meta for generic store code.
func (m *Meta) MetaRef() *Meta { return m }

// Entity is the base interface for all storable types.
type Entity interface {
	// EntityID returns the opaque generated id.
	EntityID() string

	// EntityType returns the entity type name (e.g., "team").
	EntityType() string

	// UniqueKey returns the composite uniqueness key derived from the
	// entity's name and contextual bindings. No two live entities of the
	// same type may share it.
	UniqueKey() string

	// Validate checks field and cross-field rules on the entity's final
	// state. It must be called on merged state, never on a bare patch.
	Validate() error
}

// Ref constrains a pointer to an entity that embeds Meta. It lets generic
// store code stamp ids and timestamps without per-type closures.
type Ref[T any] interface {
	*T
	MetaRef() *Meta
}

// WithMeta returns a copy of e with its managed fields replaced.
func WithMeta[T any, PT Ref[T]](e T, m Meta) T {
	*PT(&e).MetaRef() = m
	return e
}

// MetaOf returns the managed fields of e.
func MetaOf[T any, PT Ref[T]](e T) Meta {
	return *PT(&e).MetaRef()
}

// Game types a collection entity may bind to.
const (
	GameTypeRegular    = "regular"
	GameTypePlayoff    = "playoff"
	GameTypeTournament = "tournament"
	GameTypeScrimmage  = "scrimmage"
)

// Player is a roster member.
type Player struct {
	Meta
	Name   string `json:"name" dynamodbav:"name"`
	Number string `json:"number,omitempty" dynamodbav:"number,omitempty"`
	Notes  string `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

func (p Player) EntityType() string { return "player" }
func (p Player) UniqueKey() string  { return Key(p.Name) }
func (p Player) Validate() error    { return validateName("player", p.Name) }

// Team is a named group of players, optionally bound to a season, a
// tournament, a tournament series, and a game type. A series binding is
// only valid alongside a tournament binding.
type Team struct {
	Meta
	Name         string `json:"name" dynamodbav:"name"`
	SeasonID     string `json:"seasonId,omitempty" dynamodbav:"season_id,omitempty"`
	TournamentID string `json:"tournamentId,omitempty" dynamodbav:"tournament_id,omitempty"`
	SeriesID     string `json:"seriesId,omitempty" dynamodbav:"series_id,omitempty"`
	GameType     string `json:"gameType,omitempty" dynamodbav:"game_type,omitempty"`
}

func (t Team) EntityType() string { return "team" }
func (t Team) UniqueKey() string {
	return Key(t.Name, t.SeasonID, t.TournamentID, t.SeriesID, t.GameType)
}

func (t Team) Validate() error {
	if err := validateName("team", t.Name); err != nil {
		return err
	}
	if t.SeriesID != "" && t.TournamentID == "" {
		return &FieldError{
			EntityType: "team",
			Field:      "seriesId",
			Reason:     "a series binding requires a tournament binding",
		}
	}
	return nil
}

// Season is a named span of play. Its uniqueness key includes the period
// label derived from its dates, so two "Winter League" seasons in
// different years do not collide.
type Season struct {
	Meta
	Name      string    `json:"name" dynamodbav:"name"`
	StartDate time.Time `json:"startDate,omitempty" dynamodbav:"start_date,omitempty"`
	EndDate   time.Time `json:"endDate,omitempty" dynamodbav:"end_date,omitempty"`
}

func (s Season) EntityType() string { return "season" }
func (s Season) UniqueKey() string  { return Key(s.Name, s.PeriodLabel()) }

// PeriodLabel derives the human span of the season from its dates:
// "2025" for a single-year season, "2025-2026" when it crosses years,
// and empty when no start date is set.
func (s Season) PeriodLabel() string {
	if s.StartDate.IsZero() {
		return ""
	}
	start := s.StartDate.UTC().Format("2006")
	if s.EndDate.IsZero() || s.EndDate.UTC().Format("2006") == start {
		return start
	}
	return start + "-" + s.EndDate.UTC().Format("2006")
}

func (s Season) Validate() error {
	if err := validateName("season", s.Name); err != nil {
		return err
	}
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate) {
		return &FieldError{
			EntityType: "season",
			Field:      "endDate",
			Reason:     "end date precedes start date",
		}
	}
	return nil
}

// Tournament is a named competition, optionally bound to a season and a
// game type.
type Tournament struct {
	Meta
	Name     string `json:"name" dynamodbav:"name"`
	SeasonID string `json:"seasonId,omitempty" dynamodbav:"season_id,omitempty"`
	GameType string `json:"gameType,omitempty" dynamodbav:"game_type,omitempty"`
}

func (t Tournament) EntityType() string { return "tournament" }
func (t Tournament) UniqueKey() string  { return Key(t.Name, t.SeasonID, t.GameType) }
func (t Tournament) Validate() error    { return validateName("tournament", t.Name) }

// Personnel is a non-player participant (coach, scorekeeper, referee).
// Personnel ids are referenced from games, which is why deleting one is a
// cascading operation.
type Personnel struct {
	Meta
	Name string `json:"name" dynamodbav:"name"`
	Role string `json:"role,omitempty" dynamodbav:"role,omitempty"`
}

func (p Personnel) EntityType() string { return "personnel" }
func (p Personnel) UniqueKey() string  { return Key(p.Name, p.Role) }
func (p Personnel) Validate() error    { return validateName("personnel", p.Name) }

// StatAdjustment is a named correction applied to recorded stats,
// optionally scoped to a game type.
type StatAdjustment struct {
	Meta
	Name     string `json:"name" dynamodbav:"name"`
	GameType string `json:"gameType,omitempty" dynamodbav:"game_type,omitempty"`
	Points   int    `json:"points" dynamodbav:"points"`
}

func (a StatAdjustment) EntityType() string { return "statAdjustment" }
func (a StatAdjustment) UniqueKey() string  { return Key(a.Name, a.GameType) }
func (a StatAdjustment) Validate() error    { return validateName("statAdjustment", a.Name) }
