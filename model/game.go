package model

import "time"

// Game is the aggregate root for one recorded game: the root record plus
// the child records it owns. It is the only type edited concurrently from
// multiple clients, so it carries a version for optimistic concurrency.
// The version is owned by whichever backend last wrote the game; clients
// only cache it.
type Game struct {
	Meta
	Name         string    `json:"name" dynamodbav:"name"`
	Date         time.Time `json:"date,omitempty" dynamodbav:"date,omitempty"`
	TeamID       string    `json:"teamId,omitempty" dynamodbav:"team_id,omitempty"`
	OpponentName string    `json:"opponentName,omitempty" dynamodbav:"opponent_name,omitempty"`
	SeasonID     string    `json:"seasonId,omitempty" dynamodbav:"season_id,omitempty"`
	TournamentID string    `json:"tournamentId,omitempty" dynamodbav:"tournament_id,omitempty"`
	GameType     string    `json:"gameType,omitempty" dynamodbav:"game_type,omitempty"`

	// Version increments exactly once per successful persisted save.
	Version int64 `json:"version" dynamodbav:"-"`

	// Personnel lists the ids of personnel working this game. Deleting a
	// personnel record cascades into this list.
	Personnel []string `json:"personnel,omitempty" dynamodbav:"personnel,omitempty"`

	Events      []GameEvent  `json:"events,omitempty" dynamodbav:"events,omitempty"`
	Roster      []RosterSpot `json:"roster,omitempty" dynamodbav:"roster,omitempty"`
	Assessments []Assessment `json:"assessments,omitempty" dynamodbav:"assessments,omitempty"`
}

// GameEvent is one recorded stat event within a game.
type GameEvent struct {
	ID       string `json:"id" dynamodbav:"id"`
	Kind     string `json:"kind" dynamodbav:"kind"`
	PlayerID string `json:"playerId,omitempty" dynamodbav:"player_id,omitempty"`
	Period   int    `json:"period" dynamodbav:"period"`
	ClockSec int    `json:"clockSec" dynamodbav:"clock_sec"`
	Value    int    `json:"value" dynamodbav:"value"`
}

// RosterSpot is one entry in a game's roster snapshot.
type RosterSpot struct {
	PlayerID string `json:"playerId" dynamodbav:"player_id"`
	Number   string `json:"number,omitempty" dynamodbav:"number,omitempty"`
	Position string `json:"position,omitempty" dynamodbav:"position,omitempty"`
	Starter  bool   `json:"starter" dynamodbav:"starter"`
}

// Assessment is a personnel-authored evaluation attached to a game.
type Assessment struct {
	ID          string `json:"id" dynamodbav:"id"`
	PersonnelID string `json:"personnelId" dynamodbav:"personnel_id"`
	PlayerID    string `json:"playerId,omitempty" dynamodbav:"player_id,omitempty"`
	Rating      int    `json:"rating" dynamodbav:"rating"`
	Note        string `json:"note,omitempty" dynamodbav:"note,omitempty"`
}

func (g Game) EntityType() string { return "game" }

func (g Game) Validate() error {
	return validateName("game", g.Name)
}

// Clone returns a deep copy of the game, so callers can hand games across
// store boundaries without aliasing the owned child slices.
func (g Game) Clone() Game {
	out := g
	out.Personnel = append([]string(nil), g.Personnel...)
	out.Events = append([]GameEvent(nil), g.Events...)
	out.Roster = append([]RosterSpot(nil), g.Roster...)
	out.Assessments = append([]Assessment(nil), g.Assessments...)
	return out
}

// ReferencesPersonnel reports whether the game references the given
// personnel id, either on its crew list or through an assessment.
func (g Game) ReferencesPersonnel(id string) bool {
	for _, p := range g.Personnel {
		if p == id {
			return true
		}
	}
	for _, a := range g.Assessments {
		if a.PersonnelID == id {
			return true
		}
	}
	return false
}

// StripPersonnel returns a copy of the game with every reference to the
// given personnel id removed, and reports whether anything changed.
func (g Game) StripPersonnel(id string) (Game, bool) {
	out := g.Clone()
	changed := false

	crew := out.Personnel[:0]
	for _, p := range out.Personnel {
		if p == id {
			changed = true
			continue
		}
		crew = append(crew, p)
	}
	out.Personnel = crew

	kept := out.Assessments[:0]
	for _, a := range out.Assessments {
		if a.PersonnelID == id {
			changed = true
			continue
		}
		kept = append(kept, a)
	}
	out.Assessments = kept

	return out, changed
}
