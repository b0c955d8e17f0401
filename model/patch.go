package model

import "time"

// Field is a tri-state patch value. The zero Field leaves the current value
// untouched; Set replaces it; Clear removes it. The distinction between
// "cleared" and "not mentioned" matters: an update that never mentions a
// binding must preserve it, while an explicit clear must drop it.
type Field[T any] struct {
	value   T
	set     bool
	cleared bool
}

// Set returns a Field that replaces the current value with v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Clear returns a Field that resets the current value to its zero value.
func Clear[T any]() Field[T] {
	return Field[T]{cleared: true}
}

// Touched reports whether the field was mentioned at all.
func (f Field[T]) Touched() bool { return f.set || f.cleared }

// Overlay applies the field to the current value.
func (f Field[T]) Overlay(cur T) T {
	if f.cleared {
		var zero T
		return zero
	}
	if f.set {
		return f.value
	}
	return cur
}

// Patch overlays requested changes onto an entity's current values,
// producing the resulting state. Implementations never touch managed
// fields; validation and uniqueness checks run against the merged result.
type Patch[T any] interface {
	Apply(cur T) T
}

// PlayerPatch describes a partial update to a Player.
type PlayerPatch struct {
	Name   Field[string]
	Number Field[string]
	Notes  Field[string]
}

func (p PlayerPatch) Apply(cur Player) Player {
	cur.Name = p.Name.Overlay(cur.Name)
	cur.Number = p.Number.Overlay(cur.Number)
	cur.Notes = p.Notes.Overlay(cur.Notes)
	return cur
}

// TeamPatch describes a partial update to a Team. Clearing TournamentID
// without also clearing SeriesID produces a Validation failure when the
// merged state is checked.
type TeamPatch struct {
	Name         Field[string]
	SeasonID     Field[string]
	TournamentID Field[string]
	SeriesID     Field[string]
	GameType     Field[string]
}

func (p TeamPatch) Apply(cur Team) Team {
	cur.Name = p.Name.Overlay(cur.Name)
	cur.SeasonID = p.SeasonID.Overlay(cur.SeasonID)
	cur.TournamentID = p.TournamentID.Overlay(cur.TournamentID)
	cur.SeriesID = p.SeriesID.Overlay(cur.SeriesID)
	cur.GameType = p.GameType.Overlay(cur.GameType)
	return cur
}

// SeasonPatch describes a partial update to a Season.
type SeasonPatch struct {
	Name      Field[string]
	StartDate Field[time.Time]
	EndDate   Field[time.Time]
}

func (p SeasonPatch) Apply(cur Season) Season {
	cur.Name = p.Name.Overlay(cur.Name)
	cur.StartDate = p.StartDate.Overlay(cur.StartDate)
	cur.EndDate = p.EndDate.Overlay(cur.EndDate)
	return cur
}

// TournamentPatch describes a partial update to a Tournament.
type TournamentPatch struct {
	Name     Field[string]
	SeasonID Field[string]
	GameType Field[string]
}

func (p TournamentPatch) Apply(cur Tournament) Tournament {
	cur.Name = p.Name.Overlay(cur.Name)
	cur.SeasonID = p.SeasonID.Overlay(cur.SeasonID)
	cur.GameType = p.GameType.Overlay(cur.GameType)
	return cur
}

// PersonnelPatch describes a partial update to a Personnel record.
type PersonnelPatch struct {
	Name Field[string]
	Role Field[string]
}

func (p PersonnelPatch) Apply(cur Personnel) Personnel {
	cur.Name = p.Name.Overlay(cur.Name)
	cur.Role = p.Role.Overlay(cur.Role)
	return cur
}

// StatAdjustmentPatch describes a partial update to a StatAdjustment.
type StatAdjustmentPatch struct {
	Name     Field[string]
	GameType Field[string]
	Points   Field[int]
}

func (p StatAdjustmentPatch) Apply(cur StatAdjustment) StatAdjustment {
	cur.Name = p.Name.Overlay(cur.Name)
	cur.GameType = p.GameType.Overlay(cur.GameType)
	cur.Points = p.Points.Overlay(cur.Points)
	return cur
}
